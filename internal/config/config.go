// Package config handles generator configuration loading and management.
package config

import (
	"github.com/Faultbox/objbench/internal/mesh"
	"github.com/Faultbox/objbench/pkg/obj"
)

// Config holds all generator settings.
type Config struct {
	Grid    GridConfig    `yaml:"grid"`
	Output  OutputConfig  `yaml:"output"`
	Logging LoggingConfig `yaml:"logging"`
}

// GridConfig holds tile resolution and layout.
type GridConfig struct {
	NX      int     `yaml:"nx"`      // quads per tile along X
	NY      int     `yaml:"ny"`      // quads per tile along Y
	Scale   float64 `yaml:"scale"`   // vertex spacing
	Columns int     `yaml:"columns"` // tiles per raster row
}

// OutputConfig holds write settings.
type OutputConfig struct {
	BufferBytes int `yaml:"buffer_bytes"`
	Precision   int `yaml:"precision"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Grid: GridConfig{
			NX:      128,
			NY:      128,
			Scale:   1.0,
			Columns: mesh.DefaultColumns,
		},
		Output: OutputConfig{
			BufferBytes: obj.DefaultBufferSize,
			Precision:   obj.DefaultPrecision,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Options builds generation options for a destination and byte budget.
func (c *Config) Options(path string, targetBytes int64) mesh.Options {
	return mesh.Options{
		Path:        path,
		TargetBytes: targetBytes,
		Grid: mesh.Grid{
			NX:    c.Grid.NX,
			NY:    c.Grid.NY,
			Scale: c.Grid.Scale,
		},
		Columns:     c.Grid.Columns,
		BufferBytes: c.Output.BufferBytes,
		Precision:   c.Output.Precision,
	}
}
