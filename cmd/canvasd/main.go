package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dyluth/canvas/internal/config"
	"github.com/dyluth/canvas/internal/logging"
	"github.com/dyluth/canvas/internal/server"
	"github.com/dyluth/canvas/pkg/canvas"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	// 1. Load configuration: canvas.yml, then environment overrides
	cfg, err := loadConfig(os.Getenv)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New("canvasd", cfg.Server.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := run(cfg, logger); err != nil {
		logger.Error().Err(err).Msg("canvasd stopped")
		os.Exit(1)
	}
}

// loadConfig reads CANVAS_CONFIG (default canvas.yml, optional) and applies
// CANVAS_INSTANCE_NAME, REDIS_URL and CANVAS_ADDR. The daemon needs both a
// Redis URL and an instance name.
func loadConfig(getenv func(string) string) (*config.CanvasConfig, error) {
	path := getenv("CANVAS_CONFIG")
	if path == "" {
		path = "canvas.yml"
	}

	cfg, err := config.LoadOrDefault(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(getenv); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if cfg.Redis.URL == "" || cfg.Redis.Instance == "" {
		return nil, errors.New("REDIS_URL and CANVAS_INSTANCE_NAME must be set (or redis.url and redis.instance in canvas.yml)")
	}

	return cfg, nil
}

func run(cfg *config.CanvasConfig, logger zerolog.Logger) error {
	redisOpts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		return fmt.Errorf("invalid REDIS_URL: %w", err)
	}

	client, err := canvas.NewClient(redisOpts, cfg.Redis.Instance)
	if err != nil {
		return fmt.Errorf("failed to create canvas client: %w", err)
	}
	defer client.Close()

	ctx := context.Background()
	if err := client.Ping(ctx); err != nil {
		return fmt.Errorf("redis not accessible: %w", err)
	}

	if err := ensureGenesis(ctx, client, cfg.Canvas.Owner, logger); err != nil {
		return err
	}

	srv := server.New(client, client, logger.With().Str("instance", cfg.Redis.Instance).Logger())
	if err := srv.Start(cfg.Server.Addr); err != nil {
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	sig := <-sigCh
	logger.Info().Str("signal", sig.String()).Msg("shutting down gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// ensureGenesis initializes the canvas on first start. A canvas created by
// another process in the meantime is fine.
func ensureGenesis(ctx context.Context, client *canvas.Client, owner string, logger zerolog.Logger) error {
	initialized, err := client.Initialized(ctx)
	if err != nil {
		return err
	}
	if initialized {
		return nil
	}

	err = client.Genesis(ctx, owner)
	switch {
	case err == nil:
		logger.Info().Str("owner", owner).Str("instance", client.InstanceName()).Msg("canvas initialized")
		return nil
	case errors.Is(err, canvas.ErrAlreadyInitialized):
		return nil
	default:
		return fmt.Errorf("genesis failed: %w", err)
	}
}
