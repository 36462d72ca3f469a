// Package config loads tool configuration from defaults and an optional
// YAML file.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Config is the complete configuration of the diffpack tool.
type Config struct {
	// SimilarityThreshold is passed to the tree builder; clamped to [0, 1]
	// there.
	SimilarityThreshold float64 `yaml:"similarityThreshold" mapstructure:"similarityThreshold"`
	// ListenAddr is the host bridge bind address.
	ListenAddr string `yaml:"listenAddr" mapstructure:"listenAddr"`
	// FetchTimeout bounds one tarball download.
	FetchTimeout time.Duration `yaml:"fetchTimeout" mapstructure:"fetchTimeout"`
	// UserAgent is sent on registry requests; empty uses Go's default.
	UserAgent string `yaml:"userAgent" mapstructure:"userAgent"`
	// Exclude lists base-name prefixes skipped in local-directory mode.
	Exclude []string `yaml:"exclude" mapstructure:"exclude"`
}

// Load reads configuration from path when it exists, falling back to
// defaults. An empty path skips the file lookup entirely.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			v.SetConfigType("yaml")
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("similarityThreshold", 0.7)
	v.SetDefault("listenAddr", "127.0.0.1:8137")
	v.SetDefault("fetchTimeout", time.Minute)
	v.SetDefault("userAgent", "diffpack")
	v.SetDefault("exclude", []string{
		".git", "node_modules", "dist", "build", "out", "target", ".idea", ".vscode", ".DS_Store",
	})
}
