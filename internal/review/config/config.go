package config

import (
	"go-stock-newsroom/pkg/config"
)

// Review holds the review gate capability lists. An empty list grants the
// capability to everyone, which keeps local setups friction free.
type Review struct {
	Reviewers  []string `mapstructure:"reviewers"`
	Publishers []string `mapstructure:"publishers"`
}

// Config holds the full configuration for the review service.
type Config struct {
	App      config.App      `mapstructure:"app"`
	Logger   config.Logger   `mapstructure:"logger"`
	Database config.Database `mapstructure:"database"`
	Redis    config.Redis    `mapstructure:"redis"`
	API      config.API      `mapstructure:"api"`
	Review   Review          `mapstructure:"review"`
}

// Load loads the review service configuration from the given path.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := config.Load(path, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
