package instance

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/docker/docker/api/types/container"
	dockerpkg "github.com/dyluth/canvas/internal/docker"
)

var (
	// ErrNoInstances is returned by InferInstance when no canvas is running.
	ErrNoInstances = errors.New("no canvas instances found")

	// ErrMultipleInstances is returned by InferInstance when the choice is ambiguous.
	ErrMultipleInstances = errors.New("multiple canvas instances found, use --name to specify which one")
)

// InferInstance returns the name of the only canvas instance.
func InferInstance(ctx context.Context, cli ContainerLister) (string, error) {
	containers, err := cli.ContainerList(ctx, container.ListOptions{
		All:     true,
		Filters: dockerpkg.ProjectFilter(),
	})
	if err != nil {
		return "", fmt.Errorf("failed to list containers: %w", err)
	}

	seen := make(map[string]bool)
	var names []string
	for _, c := range containers {
		name := c.Labels[dockerpkg.LabelInstanceName]
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}

	switch len(names) {
	case 0:
		return "", ErrNoInstances
	case 1:
		return names[0], nil
	default:
		sort.Strings(names)
		return "", fmt.Errorf("%w: %v", ErrMultipleInstances, names)
	}
}

// GetInstanceRedisPort retrieves the Redis port for the given instance from Docker labels.
func GetInstanceRedisPort(ctx context.Context, cli ContainerLister, instanceName string) (int, error) {
	filter := dockerpkg.InstanceFilter(instanceName)
	filter.Add("label", fmt.Sprintf("%s=%s", dockerpkg.LabelComponent, dockerpkg.ComponentRedis))

	containers, err := cli.ContainerList(ctx, container.ListOptions{
		All:     true,
		Filters: filter,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to list containers: %w", err)
	}

	if len(containers) == 0 {
		return 0, fmt.Errorf("Redis container not found for instance '%s'", instanceName)
	}

	portStr, ok := containers[0].Labels[dockerpkg.LabelRedisPort]
	if !ok {
		return 0, fmt.Errorf("Redis port label missing for instance '%s'", instanceName)
	}

	port, err := strconv.Atoi(portStr)
	if err != nil {
		return 0, fmt.Errorf("invalid Redis port '%s': %w", portStr, err)
	}

	return port, nil
}

// VerifyInstanceRunning checks that the instance's Redis container is running.
func VerifyInstanceRunning(ctx context.Context, cli ContainerLister, instanceName string) error {
	containers, err := cli.ContainerList(ctx, container.ListOptions{
		All:     true,
		Filters: dockerpkg.InstanceFilter(instanceName),
	})
	if err != nil {
		return fmt.Errorf("failed to list containers: %w", err)
	}

	if len(containers) == 0 {
		return fmt.Errorf("instance '%s' not found", instanceName)
	}

	for _, c := range containers {
		if c.Labels[dockerpkg.LabelComponent] != dockerpkg.ComponentRedis {
			continue
		}
		if c.State != "running" {
			return fmt.Errorf("instance '%s' is not running (component '%s' is %s)", instanceName, dockerpkg.ComponentRedis, c.State)
		}
		return nil
	}

	return fmt.Errorf("instance '%s' is missing essential component '%s'", instanceName, dockerpkg.ComponentRedis)
}
