// Package server initializes and runs the application: config, database and
// migrations, the chain client, the services, and the HTTP endpoint with
// graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"ziplink/internal/chain"
	"ziplink/internal/logging"
	"ziplink/internal/server/config"
	"ziplink/internal/server/httpapi"
	"ziplink/internal/server/metrics"
	"ziplink/internal/server/repositories/repomanager"
	"ziplink/internal/server/services"
	"ziplink/internal/server/sessions"
)

const shutdownTimeout = 10 * time.Second

// balanceCacheSize is the freecache arena for chain balance reads.
const balanceCacheSize = 1 << 20

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	router http.Handler
}

// NewApp wires the full dependency graph. An empty DatabaseDSN selects the
// in-memory repositories, useful for local development and tests.
func NewApp(cfg *config.Config) (*App, error) {
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	var db *sql.DB
	var manager repomanager.RepositoryManager
	if cfg.DatabaseDSN != "" {
		var err error
		db, err = sql.Open("pgx", cfg.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("db init error: %w", err)
		}
		pm := repomanager.NewPostgresRepositoryManager()
		if err := pm.RunMigrations(context.Background(), db); err != nil {
			return nil, fmt.Errorf("migrations error: %w", err)
		}
		manager = pm
	} else {
		manager = repomanager.NewInMemoryRepositoryManager()
	}

	rpcClient := chain.NewRPCClient(cfg.RPCEndpoint, logger, cfg.BroadcastTimeout, uint64(cfg.ConfirmRetries))
	chainClient := chain.NewCachedClient(rpcClient, balanceCacheSize, cfg.BalanceCacheTTL)

	m := metrics.New()
	linkService := services.NewLinkService(db, manager, chainClient, logger, cfg, m.LinksCreated.Inc)
	settlementService := services.NewSettlementService(db, manager, chainClient, logger, cfg,
		m.ClaimsSettled.Inc, func(code string) { m.ClaimFailures.WithLabelValues(code).Inc() })
	bridgeService := services.NewBridgeService(sessions.NewInMemoryStore(cfg.SessionTTL), logger, cfg)
	analyticsService := services.NewAnalyticsService(db, manager)

	handler := httpapi.NewHandler(linkService, settlementService, bridgeService, analyticsService, logger, m)

	return &App{
		config: cfg,
		logger: logger,
		db:     db,
		router: httpapi.NewRouter(handler),
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run serves HTTP until the context is cancelled or a signal arrives, then
// shuts down gracefully.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "starting server", "addr", app.config.EndpointAddr)

	app.initSignalHandler(cancelFunc)

	srv := &http.Server{
		Addr:    app.config.EndpointAddr,
		Handler: app.router,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.logger.Error(ctx, "server error", "error", err)
		}
	case <-ctx.Done():
		app.logger.Info(ctx, "shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			app.logger.Error(ctx, "shutdown error", "error", err)
		}
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error(ctx, "db close error", "error", err)
		}
	}
}
