package instance

import (
	"context"
	"fmt"
	"os"
)

// GetRedisHost returns the appropriate Redis hostname for the current environment.
// In Docker-in-Docker scenarios, it returns "host.docker.internal" to access
// the host's published ports. Otherwise, it returns "localhost".
func GetRedisHost() string {
	if _, err := os.Stat("/.dockerenv"); err == nil {
		return "host.docker.internal"
	}
	return "localhost"
}

// GetRedisURL constructs the full Redis URL for a given port.
func GetRedisURL(port int) string {
	return fmt.Sprintf("redis://%s:%d", GetRedisHost(), port)
}

// Source names where a Redis URL came from.
type Source string

const (
	SourceFlag   Source = "flag"
	SourceConfig Source = "config"
	SourceDocker Source = "docker"
)

// ResolveRedisURL picks the Redis URL for instanceName: flagURL if set, then
// configURL, then the published port of the instance's Redis container.
// cli is only consulted in the last case and may be nil otherwise.
func ResolveRedisURL(ctx context.Context, flagURL, configURL string, cli ContainerLister, instanceName string) (string, Source, error) {
	if flagURL != "" {
		return flagURL, SourceFlag, nil
	}
	if configURL != "" {
		return configURL, SourceConfig, nil
	}
	if cli == nil {
		return "", "", fmt.Errorf("no Redis URL configured and Docker is unavailable")
	}

	if err := VerifyInstanceRunning(ctx, cli, instanceName); err != nil {
		return "", "", err
	}
	port, err := GetInstanceRedisPort(ctx, cli, instanceName)
	if err != nil {
		return "", "", err
	}
	return GetRedisURL(port), SourceDocker, nil
}
