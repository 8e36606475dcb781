package instance

import (
	"context"
	"errors"
	"strings"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	dockerpkg "github.com/dyluth/canvas/internal/docker"
)

// fakeLister serves ContainerList from memory, honouring label filters.
type fakeLister struct {
	containers []types.Container
	err        error
}

func (f *fakeLister) ContainerList(_ context.Context, options container.ListOptions) ([]types.Container, error) {
	if f.err != nil {
		return nil, f.err
	}

	var out []types.Container
	for _, c := range f.containers {
		if matchesLabels(c.Labels, options.Filters.Get("label")) {
			out = append(out, c)
		}
	}
	return out, nil
}

func matchesLabels(labels map[string]string, wanted []string) bool {
	for _, w := range wanted {
		key, value, _ := strings.Cut(w, "=")
		if labels[key] != value {
			return false
		}
	}
	return true
}

var errDocker = errors.New("docker unavailable")

func redisContainer(instanceName, port, state string, created int64) types.Container {
	labels := dockerpkg.BuildLabels(instanceName, "run-"+instanceName, "creator", dockerpkg.ComponentRedis)
	if port != "" {
		labels[dockerpkg.LabelRedisPort] = port
	}
	return types.Container{
		ID:      "id-" + instanceName,
		Names:   []string{"/" + dockerpkg.RedisContainerName(instanceName)},
		Labels:  labels,
		State:   state,
		Created: created,
	}
}
