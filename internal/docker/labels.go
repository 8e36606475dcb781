package docker

import (
	"fmt"

	"github.com/docker/docker/api/types/filters"
	"github.com/google/uuid"
)

// Label keys used for canvas resources
const (
	LabelProject       = "canvas.project"
	LabelInstanceName  = "canvas.instance.name"
	LabelInstanceRunID = "canvas.instance.run_id"
	LabelOwner         = "canvas.owner"
	LabelComponent     = "canvas.component"
	LabelRedisPort     = "canvas.redis.port"
)

// ComponentRedis labels the Redis container backing an instance.
const ComponentRedis = "redis"

// BuildLabels creates the standard label set for all canvas resources.
// component is optional; networks carry no component label.
func BuildLabels(instanceName, runID, owner, component string) map[string]string {
	labels := map[string]string{
		LabelProject:       "true",
		LabelInstanceName:  instanceName,
		LabelInstanceRunID: runID,
		LabelOwner:         owner,
	}

	if component != "" {
		labels[LabelComponent] = component
	}

	return labels
}

// GenerateRunID creates a new UUID for an instance run.
// Each invocation of `canvas up` gets a unique run ID.
func GenerateRunID() string {
	return uuid.New().String()
}

// ProjectFilter matches every canvas resource.
func ProjectFilter() filters.Args {
	return filters.NewArgs(filters.Arg("label", LabelProject+"=true"))
}

// InstanceFilter matches the resources of one instance.
func InstanceFilter(instanceName string) filters.Args {
	f := ProjectFilter()
	f.Add("label", fmt.Sprintf("%s=%s", LabelInstanceName, instanceName))
	return f
}

// NetworkName returns the Docker network name for an instance
func NetworkName(instanceName string) string {
	return fmt.Sprintf("canvas-network-%s", instanceName)
}

// RedisContainerName returns the Redis container name for an instance
func RedisContainerName(instanceName string) string {
	return fmt.Sprintf("canvas-redis-%s", instanceName)
}
