package cli

import (
	"errors"
	"fmt"

	"github.com/rogerio-castellano/order-tracker/internal/db"
	"github.com/rogerio-castellano/order-tracker/internal/ledger"
	"github.com/rogerio-castellano/order-tracker/internal/repo"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// BackfillOptions holds flags for the backfill-inventory command.
type BackfillOptions struct {
	*RootOptions
	StoreID int
}

// NewBackfillCommand creates the backfill-inventory command.
func NewBackfillCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BackfillOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "backfill-inventory",
		Short: "Create missing inventory rows for a store",
		Long: `Create an inventory row for every product of the store that has none,
seeded with the product's stock counter. Existing rows are never changed.

Example:
  order-tracker backfill-inventory --store 3`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.StoreID <= 0 {
				return errors.New("--store must be a positive store id")
			}

			cfg, logger, err := opts.load()
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

			l := ledger.New(repo.NewPostgresStore(database, cfg.Orders.LockTimeout), logger)
			result, err := l.Backfill(cmd.Context(), opts.StoreID)
			if err != nil {
				return err
			}

			logger.Info("inventory backfilled",
				zap.Int("store_id", opts.StoreID),
				zap.Int("created", result.Created),
				zap.Int("total_products", result.TotalProducts),
			)
			fmt.Fprintf(cmd.OutOrStdout(), "created %d inventory rows for %d products\n", result.Created, result.TotalProducts)
			return nil
		},
	}

	cmd.Flags().IntVar(&opts.StoreID, "store", 0, "store id to backfill (required)")
	_ = cmd.MarkFlagRequired("store")

	return cmd
}
