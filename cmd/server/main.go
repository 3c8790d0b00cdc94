package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"idcardgen/internal/config"
	"idcardgen/internal/generator/process"
	"idcardgen/internal/handler"
	"idcardgen/internal/logging"
	"idcardgen/internal/router"
	"idcardgen/internal/service"
	"idcardgen/internal/storage/local"
)

var envFile string

var rootCmd = &cobra.Command{
	Use:          "idcardgen",
	Short:        "Serve the ID card generation API",
	Long:         "Accepts document uploads over HTTP, runs the external ID card generator and streams the resulting image back to the caller.",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return run(cmd.Context())
	},
}

func init() {
	rootCmd.Flags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading configuration")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := logging.New(cfg.Log)

	if cfg.Server.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize storage
	store, err := local.NewStore(&cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to initialize scratch storage: %w", err)
	}
	if err := store.Prepare(); err != nil {
		return fmt.Errorf("failed to prepare scratch directories: %w", err)
	}

	generator := process.NewGenerator(&cfg.Generator)
	if err := generator.Check(ctx); err != nil {
		logger.Warn().Err(err).Str("command", cfg.Generator.Command).Msg("generator command not found, /readyz will report unavailable")
	}

	// Initialize services and handlers
	generateSvc := service.NewGenerateService(store, generator, &cfg.Upload, &cfg.Templates)
	generateH := handler.NewGenerateHandler(generateSvc, &cfg.Upload)
	healthH := handler.NewHealthHandler(store, generator)

	r := router.Setup(cfg, logger, generateH, healthH)

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info().
			Str("addr", cfg.Server.Port).
			Str("environment", cfg.Server.Environment).
			Int64("max_upload_mb", cfg.Upload.MaxFileSizeMB).
			Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		logger.Info().Msg("server stopped")
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error().Err(err).Msg("server exited with error")
		return err
	}
	return nil
}
