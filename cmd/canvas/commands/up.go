package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/client"
	"github.com/docker/go-connections/nat"
	"github.com/dyluth/canvas/internal/config"
	dockerpkg "github.com/dyluth/canvas/internal/docker"
	"github.com/dyluth/canvas/internal/instance"
	"github.com/dyluth/canvas/internal/printer"
	"github.com/dyluth/canvas/pkg/canvas"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// redisReadyTimeout bounds how long up waits for a new Redis container.
const redisReadyTimeout = 15 * time.Second

var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Start a canvas instance",
	Long: `Start a new canvas instance.

Creates and starts:
  • Isolated Docker network
  • Redis container (canvas storage), published on 127.0.0.1

then runs genesis with the owner from canvas.yml.

The instance name is auto-generated (default-N) unless specified with --name.`,
	Args: cobra.NoArgs,
	RunE: runUp,
}

func init() {
	rootCmd.AddCommand(upCmd)
}

func runUp(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	cli, err := dockerpkg.NewClient(ctx)
	if err != nil {
		return err
	}
	defer cli.Close()

	targetInstanceName := instanceName
	if targetInstanceName == "" {
		targetInstanceName, err = instance.GenerateDefaultName(ctx, cli)
		if err != nil {
			return fmt.Errorf("failed to generate instance name: %w", err)
		}
	}

	if err := instance.ValidateName(targetInstanceName); err != nil {
		return err
	}

	nameCollision, err := instance.CheckNameCollision(ctx, cli, targetInstanceName)
	if err != nil {
		return err
	}
	if nameCollision {
		return printer.Error(
			fmt.Sprintf("instance '%s' already exists", targetInstanceName),
			"Found existing containers with this instance name.",
			[]string{
				fmt.Sprintf("Stop the existing instance: canvas down --name %s", targetInstanceName),
				"Choose a different name: canvas up --name other-name",
			},
		)
	}

	runID := dockerpkg.GenerateRunID()
	redisPort, err := createInstance(ctx, cli, cfg, targetInstanceName, runID)
	if err != nil {
		printer.Warning("Resource creation failed. Rolling back...\n")
		if rollbackErr := removeInstance(ctx, cli, targetInstanceName); rollbackErr != nil {
			printer.Warning("rollback encountered errors: %v\n", rollbackErr)
		}
		return fmt.Errorf("failed to create instance: %w", err)
	}

	if err := initializeCanvas(ctx, redisPort, targetInstanceName, cfg.Canvas.Owner); err != nil {
		return err
	}

	printUpSuccess(targetInstanceName, redisPort)
	return nil
}

func createInstance(ctx context.Context, cli *client.Client, cfg *config.CanvasConfig, instanceName, runID string) (int, error) {
	redisPort, err := instance.FindNextAvailablePort(ctx, cli)
	if err != nil {
		return 0, fmt.Errorf("failed to allocate Redis port: %w", err)
	}
	printer.Success("Allocated Redis port: %d\n", redisPort)

	networkName := dockerpkg.NetworkName(instanceName)
	_, err = cli.NetworkCreate(ctx, networkName, types.NetworkCreate{
		Driver: "bridge",
		Labels: dockerpkg.BuildLabels(instanceName, runID, cfg.Canvas.Owner, ""),
	})
	if err != nil {
		return 0, fmt.Errorf("failed to create network '%s': %w", networkName, err)
	}
	printer.Success("Created network: %s\n", networkName)

	redisName := dockerpkg.RedisContainerName(instanceName)
	redisLabels := dockerpkg.BuildLabels(instanceName, runID, cfg.Canvas.Owner, dockerpkg.ComponentRedis)
	redisLabels[dockerpkg.LabelRedisPort] = fmt.Sprintf("%d", redisPort)

	redisResp, err := cli.ContainerCreate(ctx, &container.Config{
		Image:  cfg.Services.Redis.Image,
		Labels: redisLabels,
		ExposedPorts: nat.PortSet{
			"6379/tcp": struct{}{},
		},
	}, &container.HostConfig{
		NetworkMode: container.NetworkMode(networkName),
		PortBindings: nat.PortMap{
			"6379/tcp": []nat.PortBinding{
				{
					HostIP:   "127.0.0.1",
					HostPort: fmt.Sprintf("%d", redisPort),
				},
			},
		},
	}, nil, nil, redisName)
	if err != nil {
		return 0, fmt.Errorf("failed to create Redis container: %w", err)
	}

	if err := cli.ContainerStart(ctx, redisResp.ID, container.StartOptions{}); err != nil {
		return 0, fmt.Errorf("failed to start Redis container: %w", err)
	}
	printer.Success("Started Redis container: %s (port %d)\n", redisName, redisPort)

	return redisPort, nil
}

// initializeCanvas waits for Redis to answer and runs genesis.
func initializeCanvas(ctx context.Context, redisPort int, instanceName, owner string) error {
	opts, err := redis.ParseURL(instance.GetRedisURL(redisPort))
	if err != nil {
		return err
	}
	client, err := canvas.NewClient(opts, instanceName)
	if err != nil {
		return err
	}
	defer client.Close()

	printer.Step("Waiting for Redis...\n")
	if err := waitForRedis(ctx, client, redisReadyTimeout); err != nil {
		return printer.Error(
			"Redis did not become ready",
			fmt.Sprintf("Error: %v", err),
			[]string{fmt.Sprintf("Inspect the container:\n  docker logs %s", dockerpkg.RedisContainerName(instanceName))},
		)
	}

	if err := client.Genesis(ctx, owner); err != nil && !errors.Is(err, canvas.ErrAlreadyInitialized) {
		return fmt.Errorf("genesis failed: %w", err)
	}
	printer.Success("Canvas initialized (owner: %s)\n", owner)

	return nil
}

// waitForRedis pings every 200ms until Redis answers or timeout elapses.
func waitForRedis(ctx context.Context, client *canvas.Client, timeout time.Duration) error {
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	timeoutCh := time.After(timeout)
	var lastErr error

	for {
		if lastErr = client.Ping(ctx); lastErr == nil {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timeoutCh:
			return fmt.Errorf("timeout after %v: %w", timeout, lastErr)
		case <-ticker.C:
		}
	}
}

func printUpSuccess(instanceName string, redisPort int) {
	printer.Success("\nInstance '%s' started successfully\n\n", instanceName)
	printer.Printf("Containers:\n")
	printer.Printf("  • %s (running)\n", dockerpkg.RedisContainerName(instanceName))
	printer.Printf("\n")
	printer.Printf("Network:\n")
	printer.Printf("  • %s\n", dockerpkg.NetworkName(instanceName))
	printer.Printf("\n")
	printer.Printf("Redis: %s\n", instance.GetRedisURL(redisPort))
	printer.Printf("\n")
	printer.Printf("Next steps:\n")
	printer.Printf("  1. Run 'canvas buy 0 0 --color \"#FF0000\" --as <identity> --name %s' to buy a pixel\n", instanceName)
	printer.Printf("  2. Run 'canvas render --name %s' to see the canvas\n", instanceName)
	printer.Printf("  3. Run 'canvas down --name %s' when finished\n", instanceName)
}
