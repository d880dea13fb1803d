package config

import (
	"flag"
	"fmt"
	"math"

	"github.com/Faultbox/objbench/internal/mesh"
)

// Flags holds command-line overrides bound to a FlagSet.
type Flags struct {
	fs *flag.FlagSet

	Config      string
	Path        string
	TargetBytes int64
	TargetGB    float64
	NX          int
	NY          int
	Scale       float64
	Debug       bool
	LogFile     string
}

// RegisterFlags binds the generator flags to fs.
func RegisterFlags(fs *flag.FlagSet) *Flags {
	f := &Flags{fs: fs}
	fs.StringVar(&f.Config, "config", "", "Path to config file")
	fs.StringVar(&f.Path, "path", "", "Output .obj path (required)")
	fs.Int64Var(&f.TargetBytes, "target-bytes", 0, "Target size in bytes")
	fs.Float64Var(&f.TargetGB, "target-gb", 0, "Target size in GiB (1 GiB = 1024^3 bytes)")
	fs.IntVar(&f.NX, "nx", 0, "Tile quads in X (default 128)")
	fs.IntVar(&f.NY, "ny", 0, "Tile quads in Y (default 128)")
	fs.Float64Var(&f.Scale, "scale", 0, "Grid spacing (default 1.0)")
	fs.BoolVar(&f.Debug, "debug", false, "Enable debug logging")
	fs.StringVar(&f.LogFile, "log-file", "", "Also log to this file")
	return f
}

// isSet reports whether the named flag was given on the command line.
func (f *Flags) isSet(name string) bool {
	set := false
	f.fs.Visit(func(fl *flag.Flag) {
		if fl.Name == name {
			set = true
		}
	})
	return set
}

// Target resolves the byte budget. Exactly one of -target-bytes and
// -target-gb must be given.
func (f *Flags) Target() (int64, error) {
	bytesSet := f.isSet("target-bytes")
	gbSet := f.isSet("target-gb")

	switch {
	case bytesSet && gbSet:
		return 0, fmt.Errorf("%w: -target-bytes and -target-gb are mutually exclusive", mesh.ErrInvalidArgument)
	case bytesSet:
		if f.TargetBytes <= 0 {
			return 0, fmt.Errorf("%w: -target-bytes must be positive, got %d", mesh.ErrInvalidArgument, f.TargetBytes)
		}
		return f.TargetBytes, nil
	case gbSet:
		target := f.TargetGB * mesh.GiB
		if !(target >= 1) || target >= math.MaxInt64 {
			return 0, fmt.Errorf("%w: -target-gb out of range, got %v", mesh.ErrInvalidArgument, f.TargetGB)
		}
		return int64(target), nil
	default:
		return 0, fmt.Errorf("%w: one of -target-bytes or -target-gb is required", mesh.ErrInvalidArgument)
	}
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config, f *Flags) {
	if f.isSet("nx") {
		cfg.Grid.NX = f.NX
	}
	if f.isSet("ny") {
		cfg.Grid.NY = f.NY
	}
	if f.isSet("scale") {
		cfg.Grid.Scale = f.Scale
	}
	if f.Debug {
		cfg.Logging.Level = "debug"
	}
	if f.LogFile != "" {
		cfg.Logging.LogFile = f.LogFile
	}
}
