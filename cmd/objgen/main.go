// objgen generates large Wavefront OBJ meshes for parser benchmarks.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/objbench/internal/config"
	"github.com/Faultbox/objbench/internal/logger"
	"github.com/Faultbox/objbench/internal/mesh"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run dispatches a command and returns the process exit code.
func run(args []string) int {
	if len(args) < 1 {
		printUsage()
		return 2
	}

	// Bare flags mean "generate".
	if strings.HasPrefix(args[0], "-") && args[0] != "-h" && args[0] != "--help" {
		return cmdGenerate(args)
	}

	command, rest := args[0], args[1:]
	switch command {
	case "generate", "gen":
		return cmdGenerate(rest)
	case "config":
		return cmdConfig(rest)
	case "help", "-h", "--help":
		printUsage()
		return 0
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		return 2
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `objgen - large OBJ mesh generator for parser benchmarks

Usage:
  objgen [generate] -path <file.obj> (-target-bytes N | -target-gb G) [options]
  objgen config [-config file] [-write path]

Generate options:
  -nx N          Tile quads in X (default 128)
  -ny N          Tile quads in Y (default 128)
  -scale S       Grid spacing (default 1.0)
  -config FILE   Config file (default ./objgen.yaml or user config dir)
  -debug         Debug logging
  -log-file FILE Also log to a rotated file

Examples:
  objgen -path data/input/5k.obj -target-bytes 5000 -nx 2 -ny 2
  objgen generate -path data/input/2g.obj -target-gb 2
  objgen config -write objgen.yaml`)
}

func cmdGenerate(args []string) int {
	fs := flag.NewFlagSet("generate", flag.ContinueOnError)
	flags := config.RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	if flags.Path == "" {
		fmt.Fprintln(os.Stderr, "Error: -path is required")
		return 2
	}
	target, err := flags.Target()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}

	cfg, err := config.Load(flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logger: %v\n", err)
		return 1
	}
	defer logger.Sync()
	logger.Sugar.Debugf("config: %+v", *cfg)

	res, err := mesh.Generate(cfg.Options(flags.Path, target))
	if err != nil {
		logger.Error("generation failed", zap.Error(err))
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if errors.Is(err, mesh.ErrInvalidArgument) {
			return 2
		}
		return 1
	}

	fmt.Fprintf(os.Stderr, "[done] %s: %d bytes (~%.2f GiB)\n", res.Path, res.Bytes, res.GiB())
	return 0
}

func cmdConfig(args []string) int {
	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	flags := config.RegisterFlags(fs)
	writePath := fs.String("write", "", "Write the effective config to this path instead of stdout")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	cfg, err := config.Load(flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	if *writePath == "" {
		if err := cfg.Encode(os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		return 0
	}

	if err := cfg.SaveTo(*writePath); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing config: %v\n", err)
		return 1
	}
	fmt.Fprintf(os.Stderr, "Wrote: %s\n", *writePath)
	return 0
}
