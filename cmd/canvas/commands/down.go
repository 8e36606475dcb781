package commands

import (
	"context"
	"fmt"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/client"
	dockerpkg "github.com/dyluth/canvas/internal/docker"
	"github.com/dyluth/canvas/internal/instance"
	"github.com/dyluth/canvas/internal/printer"
	"github.com/spf13/cobra"
)

var downCmd = &cobra.Command{
	Use:   "down",
	Short: "Stop a canvas instance",
	Long: `Stop and remove all Docker resources associated with a canvas instance:
the Redis container (and with it the canvas) and the Docker network.

The instance name is auto-inferred when exactly one instance exists.
The command does not prompt for confirmation and executes immediately.

Examples:
  # Stop the only instance
  canvas down

  # Stop a specific instance
  canvas down --name prod`,
	Args: cobra.NoArgs,
	RunE: runDown,
}

func init() {
	rootCmd.AddCommand(downCmd)
}

func runDown(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cli, err := dockerpkg.NewClient(ctx)
	if err != nil {
		return err
	}
	defer cli.Close()

	targetInstanceName := instanceName
	if targetInstanceName == "" {
		targetInstanceName, err = instance.InferInstance(ctx, cli)
		if err != nil {
			return instanceInferenceError(err)
		}
	}

	exists, err := instance.CheckNameCollision(ctx, cli, targetInstanceName)
	if err != nil {
		return err
	}
	if !exists {
		return printer.Error(
			fmt.Sprintf("instance '%s' not found", targetInstanceName),
			fmt.Sprintf("No containers found with instance name '%s'.", targetInstanceName),
			[]string{"Run 'canvas list' to see available instances"},
		)
	}

	if err := removeInstance(ctx, cli, targetInstanceName); err != nil {
		return err
	}

	printer.Success("\nInstance '%s' removed successfully\n", targetInstanceName)
	return nil
}

// removeInstance stops and removes every container and network of an
// instance. up uses it to roll back a partial start.
func removeInstance(ctx context.Context, cli *client.Client, instanceName string) error {
	containers, err := cli.ContainerList(ctx, container.ListOptions{
		All:     true,
		Filters: dockerpkg.InstanceFilter(instanceName),
	})
	if err != nil {
		return fmt.Errorf("failed to list containers: %w", err)
	}

	// 10s graceful timeout
	timeout := 10
	for _, c := range containers {
		containerName := c.Names[0]
		printer.Step("Stopping %s...\n", containerName)
		if err := cli.ContainerStop(ctx, c.ID, container.StopOptions{Timeout: &timeout}); err != nil {
			// Container might already be stopped
			printer.Warning("failed to stop %s: %v\n", containerName, err)
		}
	}

	for _, c := range containers {
		containerName := c.Names[0]
		printer.Step("Removing %s...\n", containerName)
		if err := cli.ContainerRemove(ctx, c.ID, container.RemoveOptions{Force: true, RemoveVolumes: true}); err != nil {
			return fmt.Errorf("failed to remove %s: %w", containerName, err)
		}
	}

	networks, err := cli.NetworkList(ctx, types.NetworkListOptions{
		Filters: dockerpkg.InstanceFilter(instanceName),
	})
	if err != nil {
		return fmt.Errorf("failed to list networks: %w", err)
	}

	for _, net := range networks {
		printer.Step("Removing network %s...\n", net.Name)
		if err := cli.NetworkRemove(ctx, net.ID); err != nil {
			return fmt.Errorf("failed to remove network %s: %w", net.Name, err)
		}
	}

	return nil
}
