// Package config loads the server configuration.
package config

import (
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config for the rate registry server.
type Config struct {
	Addr        string `yaml:"addr" env:"REGISTRY_ADDR" env-default:":8080"`
	MetricsPath string `yaml:"metrics_path" env:"REGISTRY_METRICS_PATH" env-default:"/metrics"`
}

// Load reads configuration from the optional YAML file named by
// REGISTRY_CONFIG_PATH, falling back to environment variables. With nothing
// set the defaults apply, so the server starts without any flags.
func Load() (*Config, error) {
	var cfg Config

	if path := os.Getenv("REGISTRY_CONFIG_PATH"); path != "" {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("reading config file [%v]: %w", path, err)
		}
		return &cfg, nil
	}

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("reading config from env: %w", err)
	}
	return &cfg, nil
}
