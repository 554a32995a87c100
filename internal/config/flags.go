package config

import (
	"flag"
	"fmt"
	"strconv"
	"strings"
)

// Flags holds command-line overrides bound to one flag set.
type Flags struct {
	Config      *string
	Debug       *bool
	LogFile     *string
	Trials      *int
	Length      *string
	Orientation *string
	Seed        *uint64
	OutputDir   *string
	CSV         *bool
	CSVName     *string
	Plot        *bool
	Database    *string
	SaveConfig  *bool
}

// BindFlags registers the shared flags on fs.
func BindFlags(fs *flag.FlagSet) *Flags {
	return &Flags{
		Config:      fs.String("config", "", "Path to config file"),
		Debug:       fs.Bool("debug", false, "Enable debug logging"),
		LogFile:     fs.String("log", "", "Also log to this file (rotated)"),
		Trials:      fs.Int("n", 0, "Number of chain trials"),
		Length:      fs.String("length", "", "Chain length in metres, or MIN-MAX for random"),
		Orientation: fs.String("orientation", "", "Chain orientation in degrees [0,180), or R for random"),
		Seed:        fs.Uint64("seed", 0, "Random seed (0 = fresh)"),
		OutputDir:   fs.String("out", "", "Output directory"),
		CSV:         fs.Bool("csv", false, "Write sampled values to CSV"),
		CSVName:     fs.String("csv-name", "", "CSV file name without extension (implies -csv)"),
		Plot:        fs.Bool("plot", false, "Render heatmap with chain traces"),
		Database:    fs.String("db", "", "SQLite result archive"),
		SaveConfig:  fs.Bool("save-config", false, "Save the resulting settings as user defaults"),
	}
}

// Apply applies flag overrides to cfg. Only flags that were set change it.
func (f *Flags) Apply(cfg *Config) error {
	if *f.Debug {
		cfg.Logging.Level = "debug"
	}
	if *f.LogFile != "" {
		cfg.Logging.LogFile = *f.LogFile
	}
	if *f.Trials > 0 {
		cfg.Sampling.Trials = *f.Trials
	}
	if *f.Length != "" {
		if err := applyLength(&cfg.Sampling, *f.Length); err != nil {
			return err
		}
	}
	if *f.Orientation != "" {
		if err := applyOrientation(&cfg.Sampling, *f.Orientation); err != nil {
			return err
		}
	}
	if *f.Seed != 0 {
		cfg.Sampling.Seed = *f.Seed
	}
	if *f.OutputDir != "" {
		cfg.Output.Dir = *f.OutputDir
	}
	if *f.CSV {
		cfg.Output.CSV = true
	}
	if *f.CSVName != "" {
		cfg.Output.CSV = true
		cfg.Output.CSVName = *f.CSVName
	}
	if *f.Plot {
		cfg.Output.Plot = true
	}
	if *f.Database != "" {
		cfg.Output.Database = *f.Database
	}
	return nil
}

// applyLength accepts "12.5" for a fixed length or "5-20" for a random range.
func applyLength(s *SamplingConfig, v string) error {
	if lo, hi, ok := strings.Cut(v, "-"); ok {
		min, err1 := strconv.Atoi(strings.TrimSpace(lo))
		max, err2 := strconv.Atoi(strings.TrimSpace(hi))
		if err1 != nil || err2 != nil {
			return fmt.Errorf("%w: length range %q", ErrInvalid, v)
		}
		s.RandomLength = true
		s.MinLengthM, s.MaxLengthM = min, max
		return nil
	}
	length, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fmt.Errorf("%w: length %q", ErrInvalid, v)
	}
	s.RandomLength = false
	s.LengthM = length
	return nil
}

// applyOrientation accepts degrees or R/r for random.
func applyOrientation(s *SamplingConfig, v string) error {
	if strings.EqualFold(v, "r") {
		s.RandomOrientation = true
		return nil
	}
	deg, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fmt.Errorf("%w: orientation %q", ErrInvalid, v)
	}
	s.RandomOrientation = false
	s.OrientationDeg = deg
	return nil
}

// Load loads configuration with priority: defaults < file < flags, and
// validates the result.
func (f *Flags) Load() (*Config, error) {
	cfg, err := Load(*f.Config)
	if err != nil {
		return nil, err
	}
	if err := f.Apply(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
