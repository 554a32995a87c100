// Package config handles rugosity tool configuration loading and management.
package config

import (
	"errors"
	"fmt"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Config holds all tool settings.
type Config struct {
	Sampling  SamplingConfig  `yaml:"sampling"`
	Placement PlacementConfig `yaml:"placement"`
	Output    OutputConfig    `yaml:"output"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// SamplingConfig holds chain sampling settings.
type SamplingConfig struct {
	Trials            int     `yaml:"trials"`
	LengthM           float64 `yaml:"length_m"`
	RandomLength      bool    `yaml:"random_length"`
	MinLengthM        int     `yaml:"min_length_m"`
	MaxLengthM        int     `yaml:"max_length_m"`
	OrientationDeg    float64 `yaml:"orientation_deg"` // from the row axis toward increasing column
	RandomOrientation bool    `yaml:"random_orientation"`
	Seed              uint64  `yaml:"seed"` // 0 picks a fresh seed per run
}

// PlacementConfig holds site placement settings.
type PlacementConfig struct {
	StallAttempts int `yaml:"stall_attempts"`
}

// OutputConfig holds result destinations.
type OutputConfig struct {
	Dir      string `yaml:"dir"`      // CSV and plot output directory
	CSV      bool   `yaml:"csv"`      // write sampled values to <dir>/<csv_name>.csv
	CSVName  string `yaml:"csv_name"` // empty means <dem>_rugosity
	Plot     bool   `yaml:"plot"`     // render heatmap with chain traces
	MaxPlot  int    `yaml:"max_plot"` // only the first max_plot chains are drawn
	Database string `yaml:"database"` // SQLite result archive; empty disables
	CacheDEM bool   `yaml:"cache_dem"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Sampling: SamplingConfig{
			Trials:            100,
			LengthM:           10,
			MinLengthM:        5,
			MaxLengthM:        20,
			OrientationDeg:    0,
			RandomOrientation: true,
		},
		Placement: PlacementConfig{
			StallAttempts: 10000,
		},
		Output: OutputConfig{
			Dir:      "OUTPUT",
			MaxPlot:  100,
			CacheDEM: true,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate checks the configuration for values no run can use.
func (c *Config) Validate() error {
	if err := c.Sampling.Validate(); err != nil {
		return err
	}
	if c.Placement.StallAttempts <= 0 {
		return fmt.Errorf("%w: stall_attempts must be positive, got %d", ErrInvalid, c.Placement.StallAttempts)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: unknown log level %q", ErrInvalid, c.Logging.Level)
	}
	return nil
}

// Validate checks the sampling settings.
func (s SamplingConfig) Validate() error {
	if s.Trials <= 0 {
		return fmt.Errorf("%w: trials must be positive, got %d", ErrInvalid, s.Trials)
	}
	if s.RandomLength {
		if s.MinLengthM <= 0 || s.MaxLengthM <= s.MinLengthM {
			return fmt.Errorf("%w: length range [%d, %d) is empty or non-positive",
				ErrInvalid, s.MinLengthM, s.MaxLengthM)
		}
	} else if s.LengthM <= 0 {
		return fmt.Errorf("%w: length_m must be positive, got %v", ErrInvalid, s.LengthM)
	}
	if !s.RandomOrientation && (s.OrientationDeg < 0 || s.OrientationDeg >= 180) {
		return fmt.Errorf("%w: orientation_deg must be in [0, 180), got %v", ErrInvalid, s.OrientationDeg)
	}
	return nil
}

// Describe returns a one-line summary of the sampling settings.
func (s SamplingConfig) Describe() string {
	length := fmt.Sprintf("%gm", s.LengthM)
	if s.RandomLength {
		length = fmt.Sprintf("random %d-%dm", s.MinLengthM, s.MaxLengthM)
	}
	orientation := fmt.Sprintf("%g°", s.OrientationDeg)
	if s.RandomOrientation {
		orientation = "random 0-179°"
	}
	return fmt.Sprintf("%d trials, length %s, orientation %s", s.Trials, length, orientation)
}
