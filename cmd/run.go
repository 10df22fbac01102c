package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/geowfs/wfs-gateway/internal/catalog"
	"github.com/geowfs/wfs-gateway/internal/config"
	"github.com/geowfs/wfs-gateway/internal/handlers"
	"github.com/geowfs/wfs-gateway/internal/postgis"
	"github.com/geowfs/wfs-gateway/internal/server"
	"github.com/geowfs/wfs-gateway/internal/services"
	"github.com/geowfs/wfs-gateway/internal/store"
	"github.com/geowfs/wfs-gateway/internal/store/migrations"
	"github.com/geowfs/wfs-gateway/pkg/filter"
	"github.com/geowfs/wfs-gateway/pkg/scheduler"
)

const shutdownTimeout = 10 * time.Second

func NewRunCommand(cfg *config.Configuration) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start the WFS gateway",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateConfiguration(cfg); err != nil {
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}

	registerRunFlags(cmd, cfg)

	return cmd
}

func registerRunFlags(cmd *cobra.Command, cfg *config.Configuration) {
	cmd.Flags().IntVar(&cfg.Server.HTTPPort, "server-http-port", cfg.Server.HTTPPort, "HTTP port")
	cmd.Flags().StringVar(&cfg.Server.ServerMode, "server-mode", cfg.Server.ServerMode, "Server mode (dev or prod); prod serves HTTPS")
	cmd.Flags().StringVar(&cfg.Server.TLSCertFile, "server-tls-cert", cfg.Server.TLSCertFile, "TLS certificate file, self-signed when empty")
	cmd.Flags().StringVar(&cfg.Server.TLSKeyFile, "server-tls-key", cfg.Server.TLSKeyFile, "TLS key file")
	cmd.Flags().DurationVar(&cfg.Server.MaxRequestTime, "server-max-request-time", cfg.Server.MaxRequestTime, "Maximum duration of a request")

	cmd.Flags().BoolVar(&cfg.Auth.Enabled, "authentication-enabled", cfg.Auth.Enabled, "Require HS256 bearer tokens")
	cmd.Flags().StringVar(&cfg.Auth.JWTFilePath, "authentication-jwt-filepath", cfg.Auth.JWTFilePath, "File holding the token signing secret")

	registerCatalogFlags(cmd, cfg)
	cmd.Flags().BoolVar(&cfg.Catalog.Watch, "catalog-watch", cfg.Catalog.Watch, "Reload the catalog file when it changes")

	registerPostGISFlags(cmd, cfg)
	cmd.Flags().BoolVar(&cfg.PostGIS.SyncOnStart, "postgis-sync-on-start", cfg.PostGIS.SyncOnStart, "Introspect PostGIS layers at start")

	cmd.Flags().StringVar(&cfg.Filter.Dialect, "filter-dialect", cfg.Filter.Dialect, "Spatial function names (legacy or postgis)")
	cmd.Flags().IntVar(&cfg.Filter.MaxDepth, "filter-max-depth", cfg.Filter.MaxDepth, "Maximum filter nesting depth")
	cmd.Flags().Uint64Var(&cfg.Filter.MaxFeatures, "filter-max-features", cfg.Filter.MaxFeatures, "Maximum features per GetFeature response, 0 for no limit")

	cmd.Flags().IntVar(&cfg.NumWorkers, "num-workers", cfg.NumWorkers, "Concurrent PostGIS queries")
}

func validateConfiguration(cfg *config.Configuration) error {
	if cfg.Server.HTTPPort <= 0 || cfg.Server.HTTPPort > 65535 {
		return fmt.Errorf("invalid http-port: %d", cfg.Server.HTTPPort)
	}

	switch cfg.Server.ServerMode {
	case server.DevServer, server.ProductionServer:
	default:
		return fmt.Errorf("invalid server mode: %q", cfg.Server.ServerMode)
	}

	if (cfg.Server.TLSCertFile == "") != (cfg.Server.TLSKeyFile == "") {
		return errors.New("server-tls-cert and server-tls-key must be set together")
	}

	if cfg.NumWorkers <= 0 {
		return fmt.Errorf("invalid num-workers: %d", cfg.NumWorkers)
	}

	if cfg.Auth.Enabled && cfg.Auth.JWTFilePath == "" {
		return errors.New("authentication-jwt-filepath must be set when authentication is enabled")
	}

	if _, err := filter.ParseDialect(cfg.Filter.Dialect); err != nil {
		return fmt.Errorf("invalid filter-dialect: %w", err)
	}

	if cfg.Catalog.Watch && cfg.Catalog.File == "" {
		return errors.New("catalog-watch requires catalog-file")
	}

	if cfg.PostGIS.SyncOnStart && cfg.PostGIS.DSN == "" {
		return errors.New("postgis-sync-on-start requires postgis-dsn")
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	return nil
}

func run(ctx context.Context, cfg *config.Configuration) error {
	logger := zap.S().Named("run")

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		_ = st.Close()
	}()

	sched := scheduler.NewScheduler(cfg.NumWorkers)
	defer sched.Close()

	checks := map[string]handlers.HealthCheck{"catalog": st.Ping}

	var source services.FeatureSource
	if cfg.PostGIS.DSN != "" {
		pg, err := postgis.Connect(ctx, cfg.PostGIS.DSN, cfg.PostGIS.MaxConns)
		if err != nil {
			return fmt.Errorf("failed to connect to postgis: %w", err)
		}
		defer pg.Close()

		source = pg
		checks["postgis"] = pg.Ping
	} else {
		logger.Warn("no postgis-dsn set, GetFeature and catalog sync are disabled")
	}

	dialect, _ := filter.ParseDialect(cfg.Filter.Dialect)
	translator := filter.NewTranslator(st.Catalog(), filter.WithDialect(dialect), filter.WithMaxDepth(cfg.Filter.MaxDepth))

	catalogSrv := services.NewCatalogService(sched, st, source, services.SyncOptions{
		Schema: cfg.PostGIS.Schema,
		Tables: cfg.PostGIS.Tables,
	})
	defer catalogSrv.Stop()
	featureSrv := services.NewFeatureService(sched, st, translator, source, cfg.Filter.MaxFeatures)

	if cfg.Catalog.File != "" {
		layers, err := catalog.Load(cfg.Catalog.File)
		if err != nil {
			return err
		}
		if err := catalogSrv.Import(ctx, layers); err != nil {
			return err
		}

		if cfg.Catalog.Watch {
			watcher := catalog.NewWatcher(cfg.Catalog.File, catalogSrv.Import)
			go func() {
				if err := watcher.Run(ctx); err != nil {
					logger.Errorw("catalog watcher stopped", "error", err)
				}
			}()
		}
	}

	if cfg.PostGIS.SyncOnStart {
		if err := catalogSrv.Start(ctx); err != nil {
			return fmt.Errorf("failed to start catalog sync: %w", err)
		}
	}

	h := handlers.New(catalogSrv, featureSrv, checks)
	srv, err := server.NewServer(cfg, func(router *gin.RouterGroup) {
		router.GET("/wfs", h.WFS)
		h.Register(router.Group(server.APIV1))
	})
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infow("server listening", "port", cfg.Server.HTTPPort, "mode", cfg.Server.ServerMode, "dialect", dialect)
		errCh <- srv.Start(ctx)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	srv.Stop(shutdownCtx)

	return nil
}

// openStore opens the catalog database and applies the migrations.
func openStore(ctx context.Context, cfg *config.Configuration) (*store.Store, error) {
	db, err := store.NewDB(cfg.Catalog.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog database: %w", err)
	}
	if err := migrations.Run(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate catalog database: %w", err)
	}

	return store.NewStore(db), nil
}
