package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/dyluth/canvas/internal/config"
	dockerpkg "github.com/dyluth/canvas/internal/docker"
	"github.com/dyluth/canvas/internal/instance"
	"github.com/dyluth/canvas/internal/printer"
	"github.com/dyluth/canvas/pkg/canvas"
	"github.com/redis/go-redis/v9"
)

// fallbackInstance names the key namespace when a Redis URL is given
// explicitly and no instance name is.
const fallbackInstance = "default-1"

// target is a resolved canvas: which Redis, which namespace.
type target struct {
	cfg          *config.CanvasConfig
	instanceName string
	redisURL     string
	source       instance.Source
}

func loadConfig() (*config.CanvasConfig, error) {
	cfg, err := config.LoadOrDefault(configPath)
	if err != nil {
		return nil, printer.Error(
			"invalid configuration",
			fmt.Sprintf("Failed to load %s: %v", configPath, err),
			[]string{"Fix the file or remove it to use defaults"},
		)
	}
	return cfg, nil
}

// resolveTarget applies the resolution order: --redis-url, then redis.url in
// canvas.yml, then the published port of the instance's Redis container.
// Docker is only contacted when no URL is configured. With a URL but no
// instance name the namespace is default-1.
func resolveTarget(ctx context.Context) (*target, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	name := instanceName
	if name == "" {
		name = cfg.Redis.Instance
	}
	url := redisURL
	if url == "" {
		url = cfg.Redis.URL
	}

	if name == "" && url != "" {
		name = fallbackInstance
	}

	var lister instance.ContainerLister
	if url == "" {
		cli, err := dockerpkg.NewClient(ctx)
		if err != nil {
			return nil, printer.Error(
				"cannot locate canvas",
				fmt.Sprintf("No Redis URL configured and Docker is not reachable: %v", err),
				[]string{
					"Pass a Redis URL:\n  canvas --redis-url redis://localhost:6379 ...",
					"Start Docker and an instance:\n  canvas up",
				},
			)
		}
		defer cli.Close()
		lister = cli

		if name == "" {
			name, err = instance.InferInstance(ctx, lister)
			if err != nil {
				return nil, instanceInferenceError(err)
			}
		}
	}

	if err := instance.ValidateName(name); err != nil {
		return nil, err
	}

	resolved, source, err := instance.ResolveRedisURL(ctx, redisURL, cfg.Redis.URL, lister, name)
	if err != nil {
		return nil, printer.Error(
			fmt.Sprintf("instance '%s' is not reachable", name),
			fmt.Sprintf("Error: %v", err),
			[]string{fmt.Sprintf("Start the instance:\n  canvas up --name %s", name)},
		)
	}

	return &target{cfg: cfg, instanceName: name, redisURL: resolved, source: source}, nil
}

func instanceInferenceError(err error) error {
	switch {
	case errors.Is(err, instance.ErrNoInstances):
		return printer.Error(
			"no canvas instances found",
			"No canvas instances are running.",
			[]string{"Start an instance first:\n  canvas up"},
		)
	case errors.Is(err, instance.ErrMultipleInstances):
		return printer.Error(
			"multiple instances found",
			err.Error(),
			[]string{
				"Specify which instance to use:\n  canvas --name <instance-name> ...",
				"List instances:\n  canvas list",
			},
		)
	default:
		return fmt.Errorf("failed to infer instance: %w", err)
	}
}

// connect resolves the target and opens a client, verifying connectivity.
func connect(ctx context.Context) (*canvas.Client, *target, error) {
	t, err := resolveTarget(ctx)
	if err != nil {
		return nil, nil, err
	}

	opts, err := redis.ParseURL(t.redisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid Redis URL %q: %w", t.redisURL, err)
	}

	client, err := canvas.NewClient(opts, t.instanceName)
	if err != nil {
		return nil, nil, err
	}

	if err := client.Ping(ctx); err != nil {
		client.Close()
		return nil, nil, printer.ErrorWithContext(
			"failed to connect to Redis",
			fmt.Sprintf("Error: %v", err),
			map[string]string{
				"Instance":  t.instanceName,
				"Redis URL": t.redisURL,
				"Source":    string(t.source),
			},
			[]string{"Check that the instance is running:\n  canvas list"},
		)
	}

	return client, t, nil
}

// notInitializedError is returned by commands that need genesis to have run.
func notInitializedError(instanceName string) error {
	return printer.Error(
		"canvas not initialized",
		fmt.Sprintf("Instance '%s' has no canvas yet.", instanceName),
		[]string{fmt.Sprintf("Run genesis:\n  canvas genesis --name %s", instanceName)},
	)
}
