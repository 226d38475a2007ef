package cli

import (
	"fmt"

	"github.com/rogerio-castellano/order-tracker/internal/config"
	"github.com/rogerio-castellano/order-tracker/internal/observability"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
}

// NewRootCommand creates the root command for the order-tracker CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "order-tracker",
		Short: "Order tracker service",
		Long:  "Store catalogs, stock counters and the order lifecycle over a REST API.",
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "path to config file (default: ./config.yaml or /etc/order-tracker/config.yaml)")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewBackfillCommand(opts))
	cmd.AddCommand(NewInitSchemaCommand(opts))

	return cmd
}

// load reads the configuration and builds the logger every command shares.
func (o *RootOptions) load() (config.Config, *zap.Logger, error) {
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return config.Config{}, nil, err
	}

	if cfg.Otel.ServiceName != "" {
		observability.ServiceName = cfg.Otel.ServiceName
	}
	logger, err := observability.NewLogger(cfg.Log.Level)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return cfg, logger, nil
}
