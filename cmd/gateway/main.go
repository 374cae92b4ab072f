package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pricofy/omnicode/internal/config"
	"github.com/pricofy/omnicode/internal/gateway"
	"github.com/pricofy/omnicode/internal/handler"
	"github.com/pricofy/omnicode/internal/languages"
	"github.com/pricofy/omnicode/internal/oracle"
	"github.com/pricofy/omnicode/internal/server"
)

// shutdownTimeout bounds the drain of in-flight conversions on exit.
const shutdownTimeout = 30 * time.Second

var rootCmd = &cobra.Command{
	Use:   "omnicode",
	Short: "OmniCode code conversion gateway",
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		// .env is optional; a missing file is not an error.
		_ = godotenv.Load()
		return nil
	},
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}
		return serve(cmd.Context(), cfg, logger)
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("environment", "dev", `runtime environment, "dev" or "prod"`)
	flags.String("addr", "", "address to listen on")
	flags.Int("port", 8080, "port to listen on")
	flags.String("oracle-backend", oracle.BackendGemini, "model backend (gemini, openai, lambda)")
	flags.String("oracle-model", "", "model name override")
	flags.String("db-driver", "", "database driver for history (sqlite, postgres)")
	flags.String("db-dsn", "", "database source name")

	bindings := map[string]string{
		"environment":    "environment",
		"addr":           "addr",
		"port":           "port",
		"oracle.backend": "oracle-backend",
		"oracle.model":   "oracle-model",
		"db.driver":      "db-driver",
		"db.dsn":         "db-dsn",
	}
	for key, flag := range bindings {
		if err := viper.BindPFlag(key, flags.Lookup(flag)); err != nil {
			panic(err)
		}
	}

	rootCmd.AddCommand(convertCmd, historyCmd)
}

func loadConfig() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, nil, err
	}
	logger := config.NewLogger(cfg, os.Stderr)
	slog.SetDefault(logger)
	return cfg, logger, nil
}

func serve(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	registry := languages.Default()
	reg := prometheus.NewRegistry()

	var h *handler.Handler
	if err := cfg.Validate(); err != nil {
		logger.Error("gateway misconfigured", "error", err)
		h = handler.Unavailable(err, logger)
	} else {
		o, err := oracle.New(ctx, cfg.Oracle)
		if err != nil {
			return fmt.Errorf("failed to create oracle: %w", err)
		}
		gw := gateway.New(o, gateway.Options{
			Registry:        registry,
			MaxSourceTokens: cfg.MaxSourceTokens,
			Timeout:         cfg.Oracle.Timeout,
			Metrics:         gateway.NewMetrics(reg),
			Logger:          logger,
		})
		h = handler.New(gw, logger)
		logger.Info("conversion gateway ready", "oracle", o.Name())
	}

	srv := server.New(server.Options{
		Handler:   h,
		Registry:  registry,
		Gatherer:  reg,
		RateLimit: cfg.RateLimit,
		RateBurst: cfg.RateBurst,
		Logger:    logger,
	})

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start(cfg.ListenAddr()) }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
