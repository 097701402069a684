package commands

import (
	"errors"

	"github.com/leapstack-labs/incomeshare/internal/records"
	"github.com/spf13/cobra"
)

// NewResolveCommand creates the resolve command.
func NewResolveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <text>",
		Short: "Resolve free text to a single country",
		Long: `Resolve a country name, code or unique name fragment to one entity.

Exact name or code matches win. Otherwise the text must be a case-insensitive
fragment of exactly one name.`,
		Example: `  incomeshare resolve USA
  incomeshare resolve "kingdom"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			entity, err := records.NewResolver(cc.Store, cc.Logger).Resolve(cmd.Context(), args[0])
			if err != nil {
				var rerr *records.ResolutionError
				if errors.As(err, &rerr) {
					return errors.New(records.ResolutionMessage(err))
				}
				return err
			}
			return cc.Renderer.Render(entity,
				[]string{"Code", "Name", "Region"},
				[][]string{{entity.Code, entity.Name, entity.RegionGroup}})
		},
	}
}
