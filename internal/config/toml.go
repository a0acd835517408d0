// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Trace TraceConfig `toml:"trace"`
}

// TraceConfig maps trace-related settings.
type TraceConfig struct {
	Shape           *string  `toml:"shape"`
	CanvasWidth     *float64 `toml:"canvas-width"`
	CanvasHeight    *float64 `toml:"canvas-height"`
	PathTolerance   *float64 `toml:"path-tolerance"`
	ProximityRadius *float64 `toml:"proximity-radius"`
	CornerRadius    *float64 `toml:"corner-radius"`
	Narrator        *bool    `toml:"narrator"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}
