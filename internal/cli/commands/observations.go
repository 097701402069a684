package commands

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/leapstack-labs/incomeshare/internal/records"
	"github.com/leapstack-labs/incomeshare/pkg/core"
	"github.com/spf13/cobra"
)

// NewObservationsCommand creates the observations command and its subcommands.
func NewObservationsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "observations",
		Aliases: []string{"obs"},
		Short:   "List and correct a country's recorded shares",
		Long: `Work with the observations of one country from the terminal.

Countries are named the same way as in the UI: a code, an exact name, or a
fragment matching exactly one name.`,
	}

	cmd.AddCommand(newObservationsListCommand())
	cmd.AddCommand(newObservationsNextCommand())
	cmd.AddCommand(newObservationsAddCommand())
	cmd.AddCommand(newObservationsSetCommand())
	cmd.AddCommand(newObservationsRemoveCommand())
	cmd.AddCommand(newObservationsRemoveRangeCommand())
	return cmd
}

// resolveEntity names the entity the text resolves to, with the resolver's
// user-facing message on failure.
func resolveEntity(ctx context.Context, cc *CommandContext, text string) (core.Entity, error) {
	entity, err := records.NewResolver(cc.Store, cc.Logger).Resolve(ctx, text)
	if err != nil {
		return core.Entity{}, errors.New(records.ResolutionMessage(err))
	}
	return entity, nil
}

func newObservationsListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list <country>",
		Short: "List a country's observations, oldest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			entity, err := resolveEntity(cmd.Context(), cc, args[0])
			if err != nil {
				return err
			}
			obs, err := cc.Store.GetObservations(cmd.Context(), entity.Code)
			if err != nil {
				return err
			}

			rows := make([][]string, len(obs))
			for i, o := range obs {
				rows[i] = []string{strconv.FormatInt(o.ID, 10), strconv.Itoa(o.Period), o.ValueLabel()}
			}
			if obs == nil {
				obs = []core.Observation{}
			}
			return cc.Renderer.Render(obs, []string{"ID", "Year", "Top 1% Share"}, rows)
		},
	}
}

func newObservationsNextCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "next <country>",
		Short: "Show the period the next appended observation would get",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			entity, err := resolveEntity(cmd.Context(), cc, args[0])
			if err != nil {
				return err
			}
			period, err := records.NewAdvancer(cc.Store, cc.Cfg.BaselinePeriod).NextPeriod(cmd.Context(), entity.Code)
			if err != nil {
				return err
			}
			return cc.Renderer.Message(map[string]any{"code": entity.Code, "period": period},
				"Next year for %s: %d", entity.Label(), period)
		},
	}
}

func newObservationsAddCommand() *cobra.Command {
	var period int

	cmd := &cobra.Command{
		Use:   "add <country> <value>",
		Short: "Append an observation at the next period",
		Long: `Append an observation to a country's series.

The period defaults to one after the latest recorded year, or the baseline
period for a country without records. A period that is already recorded
is rejected.`,
		Example: `  incomeshare observations add USA 20.9
  incomeshare observations add France 11.4 --period 2022`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			ctx := cmd.Context()
			entity, err := resolveEntity(ctx, cc, args[0])
			if err != nil {
				return err
			}
			value, err := records.ParseValue(args[1])
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("period") {
				if period, err = records.NewAdvancer(cc.Store, cc.Cfg.BaselinePeriod).NextPeriod(ctx, entity.Code); err != nil {
					return err
				}
			}

			o, err := cc.Store.InsertObservation(ctx, entity.Code, period, value)
			if errors.Is(err, core.ErrDuplicatePeriod) {
				return fmt.Errorf("%s already has a record for %d", entity.Label(), period)
			}
			if err != nil {
				return err
			}
			return cc.Renderer.Message(o, "Added %s for %s in %d (id %d).", o.ValueLabel(), entity.Label(), o.Period, o.ID)
		},
	}

	cmd.Flags().IntVar(&period, "period", 0, "Year to record instead of the next one")
	return cmd
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid record id %q", s)
	}
	return id, nil
}

func newObservationsSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set <id> <value>",
		Short: "Change the value of an observation",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			value, err := records.ParseValue(args[1])
			if err != nil {
				return err
			}

			o, err := records.NewRows(cc.Store, cc.Logger).Commit(cmd.Context(), id, value)
			if err != nil {
				return err
			}
			return cc.Renderer.Message(o, "Record %d (%d) is now %s.", o.ID, o.Period, o.ValueLabel())
		},
	}
}

func newObservationsRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete one observation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			deleted, err := cc.Store.DeleteObservation(cmd.Context(), id)
			if err != nil {
				return err
			}
			if !deleted {
				return cc.Renderer.Message(map[string]any{"id": id, "deleted": false}, "Record %d was already deleted.", id)
			}
			return cc.Renderer.Message(map[string]any{"id": id, "deleted": true}, "Record %d deleted.", id)
		},
	}
}

func newObservationsRemoveRangeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rm-range <country> <start> <end>",
		Short: "Delete a country's observations between two years, inclusive",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			ctx := cmd.Context()
			entity, err := resolveEntity(ctx, cc, args[0])
			if err != nil {
				return err
			}
			start, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("start year %q is not a whole number", args[1])
			}
			end, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("end year %q is not a whole number", args[2])
			}
			if start > end {
				return fmt.Errorf("start year %d is after end year %d", start, end)
			}

			affected, err := cc.Store.DeleteObservationRange(ctx, entity.Code, start, end)
			if err != nil {
				return err
			}
			return cc.Renderer.Message(map[string]any{"code": entity.Code, "deleted": affected},
				"Deleted %d records of %s.", affected, entity.Label())
		},
	}
}
