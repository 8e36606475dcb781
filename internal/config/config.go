package config

import (
	"fmt"
	"os"
	"regexp"

	"github.com/redis/go-redis/v9"
	"gopkg.in/yaml.v3"
)

// Defaults applied by Validate when a field is omitted.
const (
	DefaultAddr       = ":8080"
	DefaultLogFormat  = "console"
	DefaultRedisImage = "redis:7-alpine"
	DefaultOwner      = "creator"
)

// instanceNamePattern mirrors the DNS-compatible rule used for instance names.
var instanceNamePattern = regexp.MustCompile(`^[a-z0-9]([-a-z0-9]*[a-z0-9])?$`)

// CanvasConfig represents the top-level canvas.yml configuration
type CanvasConfig struct {
	Version  string          `yaml:"version"`
	Canvas   *CanvasSettings `yaml:"canvas,omitempty"`
	Redis    *RedisConfig    `yaml:"redis,omitempty"`
	Server   *ServerConfig   `yaml:"server,omitempty"`
	Services *ServicesConfig `yaml:"services,omitempty"`
}

// CanvasSettings specifies genesis settings
type CanvasSettings struct {
	Owner string `yaml:"owner"` // Identity recorded as canvas owner at genesis (informational)
}

// RedisConfig specifies how to reach the Redis backing store
type RedisConfig struct {
	URL      string `yaml:"url,omitempty"`      // Optional: resolved from the Docker instance when empty
	Instance string `yaml:"instance,omitempty"` // Key namespace / instance name
}

// ServerConfig specifies the canvasd HTTP surface
type ServerConfig struct {
	Addr      string `yaml:"addr,omitempty"`
	LogFormat string `yaml:"log_format,omitempty"` // "console" or "json"
}

// ServicesConfig specifies service-level overrides
type ServicesConfig struct {
	Redis *ServiceOverride `yaml:"redis,omitempty"`
}

// ServiceOverride allows overriding default service images
type ServiceOverride struct {
	Image string `yaml:"image,omitempty"`
}

// Default returns the configuration used when no canvas.yml exists.
func Default() *CanvasConfig {
	cfg := &CanvasConfig{Version: "1.0"}
	// Validate only fills defaults on an empty config
	_ = cfg.Validate()
	return cfg
}

// Validate performs strict validation on the configuration and fills in defaults
func (c *CanvasConfig) Validate() error {
	// Required: version
	if c.Version != "1.0" {
		return fmt.Errorf("unsupported version: %s (expected: 1.0)", c.Version)
	}

	if c.Canvas == nil {
		c.Canvas = &CanvasSettings{}
	}
	if c.Canvas.Owner == "" {
		c.Canvas.Owner = DefaultOwner
	}

	if c.Redis == nil {
		c.Redis = &RedisConfig{}
	}
	if c.Redis.URL != "" {
		if _, err := redis.ParseURL(c.Redis.URL); err != nil {
			return fmt.Errorf("redis.url is invalid: %w", err)
		}
	}
	if c.Redis.Instance != "" && !instanceNamePattern.MatchString(c.Redis.Instance) {
		return fmt.Errorf("redis.instance '%s' must be lowercase alphanumeric with hyphens (not at start/end)", c.Redis.Instance)
	}

	if c.Server == nil {
		c.Server = &ServerConfig{}
	}
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
	if c.Server.LogFormat == "" {
		c.Server.LogFormat = DefaultLogFormat
	}
	if c.Server.LogFormat != "console" && c.Server.LogFormat != "json" {
		return fmt.Errorf("invalid server.log_format: %s (must be 'console' or 'json')", c.Server.LogFormat)
	}

	if c.Services == nil {
		c.Services = &ServicesConfig{}
	}
	if c.Services.Redis == nil {
		c.Services.Redis = &ServiceOverride{}
	}
	if c.Services.Redis.Image == "" {
		c.Services.Redis.Image = DefaultRedisImage
	}

	return nil
}

// Load reads and validates canvas.yml from the specified path
func Load(path string) (*CanvasConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var config CanvasConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// LoadOrDefault loads path if it exists and returns Default() otherwise.
// A file that exists but fails to load is still an error.
func LoadOrDefault(path string) (*CanvasConfig, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}
	return Load(path)
}

// ApplyEnv overrides file settings with CANVAS_INSTANCE_NAME, REDIS_URL and
// CANVAS_ADDR when they are set, then re-validates.
func (c *CanvasConfig) ApplyEnv(getenv func(string) string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if v := getenv("CANVAS_INSTANCE_NAME"); v != "" {
		c.Redis.Instance = v
	}
	if v := getenv("REDIS_URL"); v != "" {
		c.Redis.URL = v
	}
	if v := getenv("CANVAS_ADDR"); v != "" {
		c.Server.Addr = v
	}
	return c.Validate()
}
