package commands

import (
	"fmt"
	"os"

	"github.com/leapstack-labs/incomeshare/internal/seed"
	"github.com/spf13/cobra"
)

// NewSeedCommand creates the seed command.
func NewSeedCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed [file]",
		Short: "Load entities and observations from a YAML file",
		Long: `Load entities and observations into the record store.

Without a file the bundled sample dataset is loaded. Entities are upserted
by code; observations for periods already recorded are skipped.`,
		Example: `  # Load the bundled sample
  incomeshare seed

  # Load a custom dataset
  incomeshare seed ./data/top1.yaml`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			f := seed.Sample()
			source := "bundled sample"
			if len(args) == 1 {
				source = args[0]
				file, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("failed to open seed file: %w", err)
				}
				defer func() { _ = file.Close() }()
				if f, err = seed.Load(file); err != nil {
					return err
				}
			}

			res, err := seed.Apply(cmd.Context(), cc.Store, f, cc.Logger)
			if err != nil {
				return err
			}
			return cc.Renderer.Message(res, "Seeded %d entities from %s: %d observations inserted, %d skipped.",
				res.Entities, source, res.Inserted, res.Skipped)
		},
	}
	return cmd
}
