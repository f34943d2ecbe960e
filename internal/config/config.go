// Package config loads bptreectl's YAML configuration the way novasql's
// internal config loader does: a typed struct populated through viper.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config is bptreectl's on-disk configuration.
type Config struct {
	Tree struct {
		PageBytes      int `mapstructure:"page_bytes"`
		MinFanoutFloor int `mapstructure:"min_fanout_floor"`
	} `mapstructure:"tree"`
	History struct {
		Path string `mapstructure:"path"`
		Max  int    `mapstructure:"max"`
	} `mapstructure:"history"`
}

// Default returns the configuration bptreectl runs with when no config file
// is given.
func Default() *Config {
	cfg := &Config{}
	cfg.Tree.PageBytes = 1024
	cfg.Tree.MinFanoutFloor = 4
	cfg.History.Path = defaultHistoryPath()
	cfg.History.Max = 2000
	return cfg
}

// Load reads a YAML config file at path and merges it over the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("bptreectl: read config: %w", err)
	}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("bptreectl: unmarshal config: %w", err)
	}
	return cfg, nil
}

func defaultHistoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ".bptreectl_history"
	}
	return filepath.Join(home, ".bptreectl_history")
}
