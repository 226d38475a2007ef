package cli

import (
	"errors"
	"fmt"

	"github.com/rogerio-castellano/order-tracker/internal/db"
	"github.com/spf13/cobra"
)

var errNoDatabase = errors.New("database.url is required")

// NewInitSchemaCommand creates the init-schema command.
func NewInitSchemaCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "init-schema",
		Short: "Create the database tables if they do not exist",
		Long: `Execute the embedded schema against the configured database.

Every statement is idempotent, so running it on an existing database only adds
what is missing. It is not a migration tool.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := rootOpts.load()
			if err != nil {
				return err
			}
			defer logger.Sync()

			if cfg.Database.URL == "" {
				return errNoDatabase
			}
			database, err := db.Connect(cfg.Database.URL)
			if err != nil {
				return fmt.Errorf("could not connect to database: %w", err)
			}
			defer database.Close()

			if err := db.EnsureSchema(cmd.Context(), database); err != nil {
				return err
			}
			logger.Info("schema ready")
			fmt.Fprintln(cmd.OutOrStdout(), "schema ready")
			return nil
		},
	}
}
