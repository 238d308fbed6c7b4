package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/godilite/termosti/internal/catalog"
	"github.com/godilite/termosti/internal/config"
	"github.com/godilite/termosti/internal/repository"
	"github.com/godilite/termosti/internal/service"
	"github.com/godilite/termosti/internal/web"
	dbbuilder "github.com/godilite/termosti/pkg/database"
	"github.com/godilite/termosti/pkg/httpserver"
	"github.com/godilite/termosti/pkg/mongodb"
	"github.com/godilite/termosti/pkg/probe"
)

const (
	metricsNamespace = "termosti"
	storeComponent   = "store"
	sqliteBusyMillis = 5000
)

// writeTimeoutSlack keeps the server write deadline past the router timeout.
const writeTimeoutSlack = 5 * time.Second

// Store is a RecordStore together with the connection it owns.
type Store struct {
	service.RecordStore
	close func(ctx context.Context) error
}

func (s *Store) Close(ctx context.Context) error {
	if s.close == nil {
		return nil
	}
	return s.close(ctx)
}

// OpenStore connects to the record store selected by cfg.StoreDriver.
func OpenStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Store, error) {
	switch cfg.StoreDriver {
	case config.DriverMongo:
		client, err := mongodb.New(ctx,
			mongodb.WithURI(cfg.MongoURI),
			mongodb.WithDatabase(cfg.MongoDatabase),
		)
		if err != nil {
			return nil, fmt.Errorf("mongodb init failed: %w", err)
		}
		logger.Info("MongoDB client initialized",
			zap.String("database", cfg.MongoDatabase),
			zap.String("collection", cfg.MongoCollection))

		return &Store{
			RecordStore: repository.NewMongoRecordStore(client.Collection(cfg.MongoCollection)),
			close:       client.Close,
		}, nil

	case config.DriverSQLite:
		opts := []dbbuilder.Option{
			dbbuilder.WithDriver(config.DriverSQLite),
			dbbuilder.WithDataSource(sqliteDSN(cfg.DBPath)),
		}
		// Every connection to :memory: opens a separate database.
		if strings.Contains(cfg.DBPath, ":memory:") {
			opts = append(opts, dbbuilder.WithMaxOpenConns(1))
		}

		db, err := dbbuilder.New(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("database init failed: %w", err)
		}

		store := repository.NewSQLRecordStore(db)
		if err := store.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("database schema init failed: %w", err)
		}
		logger.Info("Database pool initialized", zap.String("path", cfg.DBPath))

		return &Store{
			RecordStore: store,
			close:       func(context.Context) error { return db.Close() },
		}, nil
	}

	return nil, fmt.Errorf("unsupported store driver %q", cfg.StoreDriver)
}

// sqliteDSN sets per-connection options through the DSN so every pooled
// connection gets them.
func sqliteDSN(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return fmt.Sprintf("%s%s_busy_timeout=%d", path, sep, sqliteBusyMillis)
}

// NewReportService loads the catalog and builds the report service over store.
func NewReportService(cfg *config.Config, logger *zap.Logger, store service.RecordStore) (*service.ReportService, error) {
	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		return nil, fmt.Errorf("catalog init failed: %w", err)
	}

	return service.NewReportService(store, cat, logger,
		service.WithStoreTimeout(cfg.RequestTimeout),
		service.WithTopTermsLimit(cfg.TopTermsLimit),
	), nil
}

type App struct {
	cfg        *config.Config
	logger     *zap.Logger
	store      *Store
	httpServer *httpserver.Server
	probe      *probe.Server
}

func NewApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	store, err := OpenStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	a, err := newApp(cfg, logger, store)
	if err != nil {
		_ = store.Close(ctx)
		return nil, err
	}
	return a, nil
}

func newApp(cfg *config.Config, logger *zap.Logger, store *Store) (*App, error) {
	reports, err := NewReportService(cfg, logger, store)
	if err != nil {
		return nil, err
	}

	handlers := web.NewHandlers(reports, logger, cfg.RequestTimeout)
	metrics := httpserver.NewMetrics(metricsNamespace)

	router := web.NewRouter(handlers,
		web.WithMiddleware(httpserver.RequestLogger(logger.Named("http")), metrics.Middleware),
		web.WithMetricsHandler(metrics.Handler()),
		web.WithCORSOrigins(cfg.CORSOrigins...),
		web.WithRequestTimeout(cfg.RequestTimeout),
	)

	httpServer, err := httpserver.New(
		httpserver.WithPort(cfg.HTTPPort),
		httpserver.WithLogger(logger),
		httpserver.WithHandler(router),
		httpserver.WithTimeouts(cfg.RequestTimeout, cfg.RequestTimeout+writeTimeoutSlack),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP server: %w", err)
	}

	a := &App{
		cfg:        cfg,
		logger:     logger,
		store:      store,
		httpServer: httpServer,
	}

	if cfg.ProbeEnabled {
		probeServer, err := probe.New(
			probe.WithPort(cfg.ProbePort),
			probe.WithLogger(logger),
			probe.WithReflection(cfg.AppEnv != "production"),
			probe.WithLogging(cfg.AppEnv != "production"),
			probe.WithServices(storeComponent),
		)
		if err != nil {
			_ = httpServer.Shutdown(context.Background())
			return nil, fmt.Errorf("failed to create probe server: %w", err)
		}
		a.probe = probeServer
	}

	return a, nil
}

// HTTPAddr returns the address the report server listens on.
func (a *App) HTTPAddr() net.Addr {
	return a.httpServer.Addr()
}

// Run serves until ctx is done or a shutdown signal is received.
func (a *App) Run(ctx context.Context) error {
	a.logger.Info("application starting")

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(a.httpServer.Serve)
	if a.probe != nil {
		a.probe.SetServing(storeComponent, true)
		g.Go(a.probe.Serve)
	}

	g.Go(func() error {
		<-gctx.Done()
		return a.shutdown()
	})

	err := g.Wait()

	if syncErr := a.logger.Sync(); syncErr != nil {
		a.logger.Debug("logger sync failed", zap.Error(syncErr))
	}
	return err
}

func (a *App) shutdown() error {
	a.logger.Info("application shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	if a.probe != nil {
		a.probe.SetServing(storeComponent, false)
	}

	var errs []error
	if err := a.httpServer.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("http shutdown: %w", err))
	}
	if a.probe != nil {
		if err := a.probe.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("probe shutdown: %w", err))
		}
	}
	if err := a.store.Close(ctx); err != nil {
		a.logger.Error("store shutdown error", zap.Error(err))
	}

	if ctx.Err() == context.DeadlineExceeded {
		a.logger.Warn("shutdown completed but deadline exceeded")
	} else {
		a.logger.Info("graceful shutdown completed successfully")
	}

	return errors.Join(errs...)
}
