package commands

import (
	"fmt"
	"strconv"

	"github.com/leapstack-labs/incomeshare/pkg/core"
	"github.com/spf13/cobra"
)

// NewRegionsCommand creates the regions command and its subcommands.
func NewRegionsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "regions",
		Short: "Compare shares across regions and sub-regions",
	}

	cmd.AddCommand(newRegionsListCommand())
	cmd.AddCommand(newRegionsRankCommand())
	cmd.AddCommand(newRegionsMaxCommand())
	return cmd
}

func newRegionsListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List sub-regions with the region they belong to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			regions, err := cc.Store.ListRegions(cmd.Context())
			if err != nil {
				return err
			}
			subRegions, err := cc.Store.ListSubRegions(cmd.Context())
			if err != nil {
				return err
			}

			names := make(map[string]string, len(regions))
			for _, r := range regions {
				names[r.Code] = r.Name
			}
			rows := make([][]string, len(subRegions))
			for i, sr := range subRegions {
				rows[i] = []string{sr.Code, sr.Name, names[sr.RegionCode]}
			}
			if subRegions == nil {
				subRegions = []core.SubRegion{}
			}
			return cc.Renderer.Render(subRegions, []string{"Code", "Sub Region", "Region"}, rows)
		},
	}
}

func newRegionsRankCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "rank <sub-region> <year>",
		Short:   "Rank the countries of a sub-region for one year",
		Example: `  incomeshare regions rank 155 2020`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			period, err := parsePeriod(args[1])
			if err != nil {
				return err
			}

			cc, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			results, err := cc.Store.RankSubRegion(cmd.Context(), args[0], period)
			if err != nil {
				return err
			}

			rows := make([][]string, len(results))
			for i, r := range results {
				rows[i] = []string{r.Entity.Code, r.Entity.Name, r.Value.String() + "%"}
			}
			if results == nil {
				results = []core.LatestObservation{}
			}
			return cc.Renderer.Render(results, []string{"Code", "Country", fmt.Sprintf("Share (%d)", period)}, rows)
		},
	}
}

func newRegionsMaxCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "max <region> <year>",
		Short:   "Show the highest share of each sub-region of a region",
		Example: `  incomeshare regions max 150 2020`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			period, err := parsePeriod(args[1])
			if err != nil {
				return err
			}

			cc, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			maxima, err := cc.Store.MaxShareBySubRegion(cmd.Context(), args[0], period)
			if err != nil {
				return err
			}

			rows := make([][]string, len(maxima))
			for i, m := range maxima {
				rows[i] = []string{m.SubRegion.Name, m.ValueLabel()}
			}
			if maxima == nil {
				maxima = []core.SubRegionMax{}
			}
			return cc.Renderer.Render(maxima, []string{"Sub Region", "Max Share"}, rows)
		},
	}
}

func parsePeriod(s string) (int, error) {
	period, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("year %q is not a whole number", s)
	}
	return period, nil
}
