package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rogerio-castellano/order-tracker/internal/auth"
	"github.com/rogerio-castellano/order-tracker/internal/config"
	"github.com/rogerio-castellano/order-tracker/internal/db"
	"github.com/rogerio-castellano/order-tracker/internal/events"
	api "github.com/rogerio-castellano/order-tracker/internal/http"
	"github.com/rogerio-castellano/order-tracker/internal/http/ban"
	"github.com/rogerio-castellano/order-tracker/internal/http/handlers"
	rl "github.com/rogerio-castellano/order-tracker/internal/http/rate_limiter"
	"github.com/rogerio-castellano/order-tracker/internal/ledger"
	"github.com/rogerio-castellano/order-tracker/internal/observability"
	"github.com/rogerio-castellano/order-tracker/internal/orders"
	"github.com/rogerio-castellano/order-tracker/internal/redissvc"
	"github.com/rogerio-castellano/order-tracker/internal/repo"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the HTTP API until interrupted.

Without database.url the service keeps everything in memory, which is meant
for local trials only. Without a reachable Redis, refresh tokens stay in
memory and bans are disabled.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := rootOpts.load()
			if err != nil {
				return err
			}
			defer logger.Sync()

			return serve(cmd.Context(), cfg, logger)
		},
	}
}

func serve(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	if cfg.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret is required")
	}
	auth.Configure(cfg.Auth.JWTSecret, cfg.Auth.AccessTTL)

	tp, shutdownTracing, err := observability.SetupTracing(ctx, cfg.Otel.Endpoint)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			logger.Warn("tracer shutdown failed", zap.Error(err))
		}
	}()

	repos, closeRepos, err := wireRepositories(cfg, logger)
	if err != nil {
		return err
	}
	defer closeRepos()

	if rs, err := redissvc.Connect(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB); err != nil {
		logger.Warn("redis unavailable, using in-memory refresh tokens and no bans", zap.Error(err))
		refresh := auth.NewMemoryRefreshStore(cfg.Auth.RefreshTTL)
		go refresh.StartRefreshTokenCleaner(ctx, 30*time.Minute)
		handlers.SetRefreshStore(refresh)
	} else {
		defer rs.Close()
		handlers.SetRefreshStore(auth.NewRedisRefreshStore(rs.Rdb(), cfg.Auth.RefreshTTL))
		ban.SetRedisService(rs)
		go ban.StartDailyBanSummary()
	}
	ban.Configure(cfg.Ban.Strikes, cfg.Ban.Duration)
	rl.Configure(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	go rl.StartVisitorCleanupLoop(ctx, time.Minute, 5*time.Minute)

	var publisher events.Publisher = events.NoopPublisher{}
	if len(cfg.Kafka.Brokers) > 0 {
		kp, err := events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, tp)
		if err != nil {
			return err
		}
		publisher = kp
	}
	defer publisher.Close()

	engine := orders.NewEngine(repos.tx, publisher, logger)
	handlers.SetOrderService(orders.NewService(engine, repos.orders, repos.inventories, repos.stores, cfg.Orders.ReceiptWindow))
	handlers.SetLedger(ledger.New(repos.tx, logger))
	api.SetLogger(logger)

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           api.NewRouter(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server running", zap.String("addr", cfg.HTTP.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

type repositories struct {
	tx          repo.TxStore
	orders      repo.OrderRepository
	inventories repo.InventoryRepository
	stores      repo.StoreRepository
}

// wireRepositories installs the Postgres repositories, or in-memory ones
// when no database is configured.
func wireRepositories(cfg config.Config, logger *zap.Logger) (repositories, func(), error) {
	if cfg.Database.URL == "" {
		logger.Warn("database.url not set, keeping all data in memory")
		s := repo.NewMemoryStore(cfg.Orders.LockTimeout)
		handlers.SetProductRepo(repo.NewInMemoryProductRepository(s))
		handlers.SetMovementRepo(repo.NewInMemoryMovementRepository(s))
		handlers.SetUserRepo(repo.NewInMemoryUserRepository(s))
		handlers.SetStoreRepo(repo.NewInMemoryStoreRepository(s))
		handlers.SetPersonRepo(repo.NewInMemoryPersonRepository(s))
		handlers.SetMetricsRepo(repo.NewInMemoryMetricsRepository(s))
		return repositories{
			tx:          s,
			orders:      repo.NewInMemoryOrderRepository(s),
			inventories: repo.NewInMemoryInventoryRepository(s),
			stores:      repo.NewInMemoryStoreRepository(s),
		}, func() {}, nil
	}

	database, err := db.Connect(cfg.Database.URL)
	if err != nil {
		return repositories{}, nil, fmt.Errorf("could not connect to database: %w", err)
	}

	handlers.SetProductRepo(repo.NewPostgresProductRepository(database))
	handlers.SetMovementRepo(repo.NewPostgresMovementRepository(database))
	handlers.SetUserRepo(repo.NewPostgresUserRepository(database))
	handlers.SetStoreRepo(repo.NewPostgresStoreRepository(database))
	handlers.SetPersonRepo(repo.NewPostgresPersonRepository(database))
	handlers.SetMetricsRepo(repo.NewPostgresMetricsRepository(database))
	return repositories{
		tx:          repo.NewPostgresStore(database, cfg.Orders.LockTimeout),
		orders:      repo.NewPostgresOrderRepository(database),
		inventories: repo.NewPostgresInventoryRepository(database),
		stores:      repo.NewPostgresStoreRepository(database),
	}, func() { database.Close() }, nil
}
