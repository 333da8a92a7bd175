package galera

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v10"
	"gopkg.in/yaml.v3"
)

// DefaultDriverName is the name a Driver is registered under with "database/sql" when none is configured
const DefaultDriverName = "galera"

// Config holds the process-wide settings used to install a Driver.
type Config struct {
	// Name is the "database/sql" driver name the routing driver is registered under
	Name string `yaml:"name" env:"GALERA_DRIVER_NAME"`
	// Hosts is a comma-separated list of cluster nodes
	Hosts string `yaml:"hosts" env:"GALERA_HOSTS"`
	// Driver is the "database/sql" name of the delegate driver that makes the physical connections
	Driver string `yaml:"driver" env:"GALERA_DBMS_DRIVER"`
	// DSN is a templated DSN, e.g. "galera:root@tcp(<galera-host>:3306)/test"
	DSN string `yaml:"dsn" env:"GALERA_DSN"`

	Scheme      string `yaml:"scheme" env:"GALERA_SCHEME"`
	Tag         string `yaml:"tag" env:"GALERA_TAG"`
	Placeholder string `yaml:"placeholder" env:"GALERA_PLACEHOLDER"`

	LogLevel string `yaml:"logLevel" env:"GALERA_LOG_LEVEL"`
}

// DefaultConfig returns a Config with the default driver name and template.
func DefaultConfig() *Config {
	return &Config{
		Name:        DefaultDriverName,
		Scheme:      DefaultScheme,
		Tag:         DefaultTag,
		Placeholder: DefaultPlaceholder,
		LogLevel:    "info",
	}
}

// LoadConfig builds a Config from the defaults, the YAML file at path (if path is not empty), and finally
// environment variable overrides.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env config: %w", err)
	}
	return cfg, nil
}

// Template returns the DSN template described by the config
func (c *Config) Template() Template {
	return Template{Scheme: c.Scheme, Tag: c.Tag, Placeholder: c.Placeholder}
}
