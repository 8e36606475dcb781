package docker

import (
	"context"
	"fmt"

	"github.com/docker/docker/client"
)

// NewClient connects to the Docker daemon from the environment and pings it.
// Only up, down and list need Docker; every other canvas command can run
// against an explicit --redis-url instead.
func NewClient(ctx context.Context) (*client.Client, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("failed to create Docker client: %w", err)
	}

	if _, err := cli.Ping(ctx); err != nil {
		cli.Close()
		return nil, daemonUnreachable(err)
	}

	return cli, nil
}

func daemonUnreachable(err error) error {
	return fmt.Errorf(`Docker daemon not accessible: %w

Canvas instances run Redis in Docker. Either start Docker:
  • macOS: Docker Desktop
  • Linux: sudo systemctl start docker

or point commands at an existing Redis:
  canvas --redis-url redis://localhost:6379 <command>`, err)
}
