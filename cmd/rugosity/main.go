// rugosity estimates terrain roughness of digital elevation models: a
// whole-grid surface complexity ratio and a chain-and-tape rugosity
// distribution sampled from randomly placed chains.
package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/Faultbox/rugosity/internal/config"
	"github.com/Faultbox/rugosity/internal/logger"
	"github.com/Faultbox/rugosity/pkg/dem"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "info":
		cmdInfo(args)
	case "convert":
		cmdConvert(args)
	case "complexity", "sc":
		cmdComplexity(args)
	case "sample", "chain":
		cmdSample(args)
	case "interactive", "i":
		cmdInteractive(args)
	case "plot":
		cmdPlot(args)
	case "history", "hist":
		cmdHistory(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
	logger.Sync()
}

func printUsage() {
	fmt.Println(`rugosity - DEM surface complexity and chain rugosity tool

Usage:
  rugosity <command> [options] <dem>

Commands:
  info <dem>                   Show grid dimensions and elevation statistics
  convert <dem.asc> [out]      Write the compressed .rdem cache of an ASCII grid
  complexity <dem>             Whole-grid surface complexity (3D / 2D area)
  sample [options] <dem>       Chain rugosity distribution from random chains
  interactive <dem>            Prompt for sampling settings, then sample
  plot [options] <dem>         Render the grid, or a histogram of saved values
  history [options]            List or show archived sessions

Common options:
  -config <file>   Config file (default ./rugosity.yaml, then user config dir)
  -debug           Debug logging
  -log <file>      Also log to a rotated file
  -db <file>       SQLite result archive
  -save-config     Save the resulting settings as user defaults

Sample options:
  -n <trials>          Number of chains
  -length <m|min-max>  Chain length in metres, or a random range
  -orientation <deg|R> Chain angle from the row axis, or R for random
  -seed <n>            Random seed for a reproducible session
  -csv -plot -out <dir>
  -csv-name <name>     CSV file name (default <dem>_rugosity)

Examples:
  rugosity info DEMS/reef.asc
  rugosity complexity DEMS/reef.asc
  rugosity sample -n 500 -length 10 -orientation R -csv DEMS/reef.asc
  rugosity sample -length 5-20 -seed 42 -db results.db DEMS/reef.asc
  rugosity plot -values OUTPUT/reef_rugosity.csv DEMS/reef.asc
  rugosity history -db results.db`)
}

// fail reports err and exits.
func fail(err error) {
	logger.Sync()
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

// setup parses the shared flags, loads configuration and starts logging.
// Commands add their own flags to fs before calling it.
func setup(fs *flag.FlagSet, args []string) (*config.Config, *config.Flags) {
	flags := config.BindFlags(fs)
	fs.Parse(args)

	cfg, err := flags.Load()
	if err != nil {
		fail(err)
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fail(err)
	}
	if *flags.SaveConfig {
		if err := cfg.Save(); err != nil {
			fail(err)
		}
		fmt.Printf("Saved settings to %s\n", config.UserPath())
	}
	return cfg, flags
}

// openDEM loads the grid named by the first positional argument.
func openDEM(fs *flag.FlagSet, cfg *config.Config, usage string) (*dem.Grid, string) {
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: rugosity "+usage)
		os.Exit(1)
	}
	path := fs.Arg(0)

	var (
		g         *dem.Grid
		fromCache bool
		err       error
	)
	if cfg.Output.CacheDEM {
		logger.Debug("loading through grid cache", zap.String("cache", dem.CachePath(path)))
		g, fromCache, err = dem.LoadCached(path)
	} else {
		g, err = dem.Load(path)
	}
	if err != nil {
		if g == nil {
			fail(err)
		}
		logger.Warn("grid loaded but cache not written", zap.Error(err))
	}
	logger.Info("loaded grid",
		zap.String("path", path),
		zap.Int("rows", g.Rows),
		zap.Int("cols", g.Cols),
		zap.Float64("cell_size", g.CellSize),
		zap.Bool("from_cache", fromCache))
	return g, dem.Name(path)
}

func cmdInfo(args []string) {
	fs := flag.NewFlagSet("info", flag.ExitOnError)
	cfg, _ := setup(fs, args)
	g, name := openDEM(fs, cfg, "info <dem>")

	st := g.Stats()
	fmt.Printf("DEM:       %s\n", name)
	fmt.Printf("Size:      %d rows x %d cols\n", g.Rows, g.Cols)
	fmt.Printf("Cell size: %g m\n", g.CellSize)
	fmt.Printf("Extent:    %g m x %g m\n", float64(g.Rows)*g.CellSize, float64(g.Cols)*g.CellSize)
	fmt.Printf("Valid:     %d of %d cells (%d no-data)\n", st.Valid, st.Cells, st.NoData)
	if st.Valid > 0 {
		fmt.Printf("Elevation: %.3f to %.3f, mean %.3f\n", st.Min, st.Max, st.Mean)
	}
}

func cmdConvert(args []string) {
	fs := flag.NewFlagSet("convert", flag.ExitOnError)
	setup(fs, args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: rugosity convert <dem.asc> [out.rdem]")
		os.Exit(1)
	}
	src := fs.Arg(0)
	dst := dem.CachePath(src)
	if fs.NArg() > 1 {
		dst = fs.Arg(1)
	}

	g, err := dem.Load(src)
	if err != nil {
		fail(err)
	}
	if err := dem.WriteBinaryFile(dst, g); err != nil {
		fail(err)
	}
	fmt.Printf("Wrote %s (%d x %d)\n", dst, g.Rows, g.Cols)
}
