package commands

import (
	"github.com/spf13/cobra"
)

// NewMigrateCommand creates the migrate command.
func NewMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Long: `Create or upgrade the record store schema.

Every command that opens the store migrates it first; this command does
only that and exits.`,
		Example: `  # Migrate the default SQLite database
  incomeshare migrate

  # Migrate a PostgreSQL database
  incomeshare migrate --driver postgres`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			return cc.Renderer.Message(map[string]string{"status": "ok", "driver": cc.Cfg.Database.Driver},
				"Database is up to date (%s).", cc.Cfg.Database.Driver)
		},
	}
}
