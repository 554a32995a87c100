package main

import (
	"flag"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/Faultbox/rugosity/internal/config"
	"github.com/Faultbox/rugosity/internal/logger"
	"github.com/Faultbox/rugosity/internal/render"
	"github.com/Faultbox/rugosity/internal/rugosity"
	"github.com/Faultbox/rugosity/internal/store"
	"github.com/Faultbox/rugosity/pkg/dem"
)

func cmdComplexity(args []string) {
	fs := flag.NewFlagSet("complexity", flag.ExitOnError)
	cfg, _ := setup(fs, args)
	g, name := openDEM(fs, cfg, "complexity [options] <dem>")

	c, err := rugosity.EstimateComplexity(g, logger.Progress("complexity", 10))
	if err != nil {
		fail(err)
	}

	fmt.Printf("DEM:        %s\n", name)
	fmt.Printf("Complexity: %.6f\n", c.Ratio)
	fmt.Printf("3D area:    %.3f m²\n", c.Area3D)
	fmt.Printf("2D area:    %.3f m²\n", c.Area2D)
	fmt.Printf("Windows:    %d (%d skipped for no-data)\n", c.Windows, c.Skipped)

	if cfg.Output.Database != "" {
		archive(cfg, func(s *store.Store) (string, error) {
			return s.SaveComplexity(name, c)
		})
	}
}

func cmdSample(args []string) {
	fs := flag.NewFlagSet("sample", flag.ExitOnError)
	cfg, _ := setup(fs, args)
	g, name := openDEM(fs, cfg, "sample [options] <dem>")

	if err := runSample(cfg, g, name); err != nil {
		fail(err)
	}
}

// sessionParams converts configured sampling settings.
func sessionParams(s config.SamplingConfig) rugosity.SessionParams {
	return rugosity.SessionParams{
		Trials:            s.Trials,
		LengthM:           s.LengthM,
		RandomLength:      s.RandomLength,
		MinLengthM:        s.MinLengthM,
		MaxLengthM:        s.MaxLengthM,
		OrientationDeg:    s.OrientationDeg,
		RandomOrientation: s.RandomOrientation,
	}
}

// runSample runs one sampling session and writes every configured output.
func runSample(cfg *config.Config, g *dem.Grid, name string) error {
	seed := cfg.Sampling.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	params := sessionParams(cfg.Sampling)

	sampler := rugosity.NewSampler(g, seed)
	sampler.StallAttempts = cfg.Placement.StallAttempts
	sampler.Log = logger.Named("sampler")
	sampler.Progress = logger.Progress("sampling", 10)

	var traces *render.Traces
	if cfg.Output.Plot {
		traces = render.NewTraces(cfg.Output.MaxPlot)
		sampler.Trace = traces.Add
	}

	logger.Info("sampling",
		zap.String("dem", name),
		zap.String("settings", cfg.Sampling.Describe()),
		zap.Uint64("seed", seed))

	dist, err := sampler.Run(params)
	if err != nil {
		return err
	}

	fmt.Printf("DEM:      %s\n", name)
	fmt.Printf("Settings: %s\n", cfg.Sampling.Describe())
	fmt.Printf("Seed:     %d\n", seed)
	fmt.Printf("Chains:   %d kept of %d (%d discarded)\n", len(dist.Values), dist.Trials, dist.Discarded)
	fmt.Printf("Mean:     %.6f\n", dist.Mean)
	fmt.Printf("Std dev:  %.6f\n", dist.StdDev)
	fmt.Printf("Median:   %.6f (5%%: %.6f, 95%%: %.6f)\n", dist.Median, dist.P05, dist.P95)

	if cfg.Output.CSV {
		path, err := store.WriteCSVFile(filepath.Join(cfg.Output.Dir, csvName(cfg.Output, name)), dist.Values)
		if err != nil {
			return fmt.Errorf("writing CSV: %w", err)
		}
		fmt.Printf("CSV:      %s\n", path)
	} else {
		fmt.Println("Values:")
		if err := store.WriteCSV(os.Stdout, dist.Values); err != nil {
			return err
		}
	}

	if cfg.Output.Plot {
		if err := os.MkdirAll(cfg.Output.Dir, 0755); err != nil {
			return err
		}
		if n := traces.Dropped(); n > 0 {
			logger.Warn("too many chains to draw, plotting the first ones",
				zap.Int("drawn", cfg.Output.MaxPlot), zap.Int("skipped", n))
		}
		demPlot := filepath.Join(cfg.Output.Dir, name+"_chains.png")
		if err := render.DEM(g, name+" chains", traces, demPlot); err != nil {
			return err
		}
		histPlot := filepath.Join(cfg.Output.Dir, name+"_rugosity.png")
		if err := render.Histogram(dist.Values, name+" rugosity", 20, histPlot); err != nil {
			return err
		}
		fmt.Printf("Plots:    %s, %s\n", demPlot, histPlot)
	}

	if cfg.Output.Database != "" {
		archive(cfg, func(s *store.Store) (string, error) {
			return s.SaveSample(name, seed, params, dist)
		})
	}
	return nil
}

// csvName is the configured CSV name, or <dem>_rugosity.
func csvName(out config.OutputConfig, demName string) string {
	if out.CSVName != "" {
		return out.CSVName
	}
	return demName + "_rugosity"
}

// archive opens the configured result archive and runs save against it.
// A failure is reported but does not discard the printed result.
func archive(cfg *config.Config, save func(*store.Store) (string, error)) {
	s, err := store.Open(cfg.Output.Database, logger.Named("store"))
	if err != nil {
		logger.Error("failed to open result archive", zap.String("path", cfg.Output.Database), zap.Error(err))
		return
	}
	defer s.Close()

	id, err := save(s)
	if err != nil {
		logger.Error("failed to archive session", zap.Error(err))
		return
	}
	fmt.Printf("Session:  %s\n", id)
}
