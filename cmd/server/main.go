package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fixture-graph/internal/config"
	"fixture-graph/internal/db"
	"fixture-graph/internal/facade"
	"fixture-graph/internal/food"
	"fixture-graph/internal/graph"
	"fixture-graph/internal/logger"
	"fixture-graph/internal/metrics"
	"fixture-graph/internal/middleware"
	"fixture-graph/internal/migrate"
	"fixture-graph/internal/rates"
	"fixture-graph/internal/seed"
	"fixture-graph/internal/store"
	"fixture-graph/internal/store/sqlstore"
	"fixture-graph/internal/wallet"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

var (
	openDatabase    = db.NewDatabase
	startServerFunc = func(srv *http.Server) error { return srv.ListenAndServe() }
)

func main() {
	if err := run(); err != nil {
		logger.L().Fatal("server stopped", zap.Error(err))
	}
}

// app is everything the router serves.
type app struct {
	food     *facade.Facade
	wallet   *facade.Facade
	registry *prometheus.Registry
	limiter  *middleware.Limiter
	close    func()
}

func run() error {
	cfg := config.LoadConfig()
	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.close()
	go a.limiter.Run(ctx)

	router, err := setupRouter(a, cfg)
	if err != nil {
		return err
	}
	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- startServerFunc(srv) }()
	logger.L().Info("GraphQL server running",
		zap.String("food", "http://localhost:"+cfg.AppPort+"/food"),
		zap.String("wallet", "http://localhost:"+cfg.AppPort+"/wallet"),
	)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	logger.L().Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}

// newApp wires storage, rates, both domains and the fixtures.
func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	st, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	src, err := rateSource(cfg)
	if err != nil {
		closeStore()
		return nil, err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	foodSvc := food.NewService(st)
	walletSvc := wallet.NewService(st, src)

	foodFc, err := facade.New(graph.Food, st, nil, food.Operations(foodSvc), facade.WithMetrics(m))
	if err != nil {
		closeStore()
		return nil, err
	}
	walletFc, err := facade.New(graph.Wallet, st, src, wallet.Operations(walletSvc, cfg.BaseCurrency), facade.WithMetrics(m))
	if err != nil {
		closeStore()
		return nil, err
	}

	if cfg.Seed {
		if err := loadFixtures(ctx, st, src); err != nil {
			closeStore()
			return nil, err
		}
	}

	return &app{
		food:     foodFc,
		wallet:   walletFc,
		registry: reg,
		limiter:  middleware.NewLimiter(),
		close:    closeStore,
	}, nil
}

func openStore(ctx context.Context, cfg *config.Config) (*store.Store, func(), error) {
	if cfg.StorageDriver == "" || cfg.StorageDriver == "memory" {
		return store.New(), func() {}, nil
	}

	conn, dialect, err := openDatabase(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	closeConn := func() { _ = conn.Close() }

	if cfg.AutoMigrate {
		if err := autoMigrate(ctx, conn, dialect); err != nil {
			closeConn()
			return nil, nil, err
		}
	}

	codec := store.Codec{}
	food.Register(codec)
	wallet.Register(codec)

	st, err := store.Open(ctx, codec,
		store.WithBackend(sqlstore.New(conn, dialect)),
		store.WithCommitTimeout(cfg.StorageTimeout),
	)
	if err != nil {
		closeConn()
		return nil, nil, err
	}
	return st, closeConn, nil
}

func autoMigrate(ctx context.Context, conn *sql.DB, d db.Dialect) error {
	migrations, err := migrate.Embedded()
	if err != nil {
		return err
	}
	return migrate.Run(ctx, conn, d, "up", migrations)
}

func rateSource(cfg *config.Config) (rates.Source, error) {
	switch {
	case cfg.RateSourceURL != "":
		return rates.WithTimeout(rates.NewHTTP(cfg.RateSourceURL, cfg.RateTimeout), cfg.RateTimeout), nil
	case cfg.Rates != "":
		t, err := rates.ParseTable(cfg.Rates)
		if err != nil {
			return nil, fmt.Errorf("RATES: %w", err)
		}
		return t, nil
	default:
		return rates.Identity{}, nil
	}
}

// loadFixtures seeds each domain that has no data yet. A domain is written
// in one commit, so a failed seed leaves nothing behind.
func loadFixtures(ctx context.Context, st *store.Store, src rates.Source) error {
	fx, err := seed.Default()
	if err != nil {
		return err
	}
	if _, err := seed.Into(ctx, st, seed.FoodKinds, func(scratch *store.Store) error {
		return seed.Food(ctx, food.NewService(scratch), fx.Food)
	}); err != nil {
		return err
	}
	_, err = seed.Into(ctx, st, seed.WalletKinds, func(scratch *store.Store) error {
		return seed.Wallet(ctx, wallet.NewService(scratch, src), fx.Wallet)
	})
	return err
}

func setupRouter(a *app, cfg *config.Config) (http.Handler, error) {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	mux.Handle("/metrics", promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}))

	for _, fc := range []*facade.Facade{a.food, a.wallet} {
		domain := fc.Domain()
		h, err := graph.Handler(fc)
		if err != nil {
			return nil, err
		}
		mux.Handle("/"+domain, graph.Playground(domain, "/"+domain+"/query"))
		mux.Handle("/"+domain+"/query", logger.DomainMiddleware(domain, a.limiter.Middleware(h)))
	}

	return logger.RequestIDMiddleware(
		middleware.LoggingMiddleware(
			middleware.CORS(cfg.CORSOrigin)(mux),
		),
	), nil
}
