package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Skufu/healthapi/internal/catalog"
)

var version = "dev" // Overwritten at build time

type HealthChecker interface {
	Ping(ctx context.Context) error
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "healthapi",
		Short: "Symptom to disease and treatment lookup service",
		Long: `healthapi maps free-text symptoms to the diseases linked to them and the
treatments recorded for each disease. Without a subcommand it runs the HTTP server.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runServe,
	}
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the HTTP server",
			RunE:  runServe,
		},
		newResolveCmd(),
		&cobra.Command{
			Use:   "version",
			Short: "Print the version",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "healthapi version %s\n", version)
			},
		},
	)

	return rootCmd
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	logger := newLogger(cfg)
	if cfg.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := cmd.Context()
	cat, pool, err := loadCatalog(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load catalog")
	}

	var db HealthChecker
	if pool != nil {
		db = pool
		defer pool.Close()
	}

	logCatalog(logger, cfg, cat)

	router := setupRouter(db, cat, logger)
	server := &http.Server{
		Addr:              net.JoinHostPort(cfg.Host, cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	logger.Info().Str("addr", server.Addr).Msg("server listening")
	waitForShutdown(server, logger)
	return nil
}

// loadCatalog picks the catalog source from cfg. The returned pool is non-nil
// only for the Postgres source and is owned by the caller.
func loadCatalog(ctx context.Context, cfg *Config) (*catalog.Catalog, *pgxpool.Pool, error) {
	switch {
	case cfg.EnableDB:
		pool, err := connectDB(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("database connection failed: %w", err)
		}
		if err := catalog.Bootstrap(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, err
		}
		cat, err := catalog.LoadPostgres(ctx, pool)
		if err != nil {
			pool.Close()
			return nil, nil, err
		}
		return cat, pool, nil
	case cfg.CatalogFile != "":
		cat, err := catalog.LoadFile(cfg.CatalogFile)
		return cat, nil, err
	default:
		cat, err := catalog.Default()
		return cat, nil, err
	}
}

func logCatalog(logger zerolog.Logger, cfg *Config, cat *catalog.Catalog) {
	for _, ref := range cat.Dangling() {
		logger.Warn().Str("reference", ref).Msg("dangling catalog reference")
	}
	logger.Info().
		Str("source", cfg.catalogSource()).
		Int("diseases", len(cat.Diseases)).
		Int("symptoms", len(cat.Symptoms)).
		Int("links", len(cat.Links)).
		Int("treatments", len(cat.Treatments)).
		Msg("catalog loaded")
}

func connectDB(ctx context.Context, url string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse db url: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	return pool, nil
}

func waitForShutdown(server *http.Server, logger zerolog.Logger) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info().Msg("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
}
