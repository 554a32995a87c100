package config

import (
	"errors"
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	// Test sampling defaults
	if cfg.Sampling.Trials != 100 {
		t.Errorf("expected 100 trials, got %d", cfg.Sampling.Trials)
	}
	if cfg.Sampling.LengthM != 10 {
		t.Errorf("expected length 10, got %v", cfg.Sampling.LengthM)
	}
	if cfg.Sampling.RandomLength {
		t.Error("expected fixed length by default")
	}
	if !cfg.Sampling.RandomOrientation {
		t.Error("expected random orientation by default")
	}

	// Test placement defaults
	if cfg.Placement.StallAttempts != 10000 {
		t.Errorf("expected stall attempts 10000, got %d", cfg.Placement.StallAttempts)
	}

	// Test output defaults
	if cfg.Output.Dir != "OUTPUT" {
		t.Errorf("expected output dir OUTPUT, got %s", cfg.Output.Dir)
	}
	if cfg.Output.Database != "" {
		t.Errorf("expected no database, got %s", cfg.Output.Database)
	}

	// Test logging defaults
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "" {
		t.Errorf("expected empty log file, got %s", cfg.Logging.LogFile)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("expected defaults to validate, got %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "rugosity.yaml")

	yamlContent := `
sampling:
  trials: 250
  random_length: true
  min_length_m: 8
  max_length_m: 30
  random_orientation: false
  orientation_deg: 45
  seed: 42

placement:
  stall_attempts: 500

output:
  dir: "results"
  csv: true
  database: "runs.db"

logging:
  level: "debug"
  log_file: "rugosity.log"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	want := SamplingConfig{
		Trials:            250,
		LengthM:           10, // untouched default
		RandomLength:      true,
		MinLengthM:        8,
		MaxLengthM:        30,
		OrientationDeg:    45,
		RandomOrientation: false,
		Seed:              42,
	}
	if diff := cmp.Diff(want, cfg.Sampling); diff != "" {
		t.Errorf("sampling mismatch (-want +got):\n%s", diff)
	}
	if cfg.Placement.StallAttempts != 500 {
		t.Errorf("expected stall attempts 500, got %d", cfg.Placement.StallAttempts)
	}
	if cfg.Output.Dir != "results" || !cfg.Output.CSV || cfg.Output.Database != "runs.db" {
		t.Errorf("unexpected output section: %+v", cfg.Output)
	}
	if !cfg.Output.CacheDEM {
		t.Error("expected cache_dem default to survive a file without it")
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "rugosity.log" {
		t.Errorf("expected log file 'rugosity.log', got %s", cfg.Logging.LogFile)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	invalidYAML := `
sampling:
  trials: not a number
  invalid syntax here
`

	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	if err := loadFromFile(cfg, "/nonexistent/path/rugosity.yaml"); err == nil {
		t.Error("expected error loading missing file, got nil")
	}
	if _, err := Load("/nonexistent/path/rugosity.yaml"); err == nil {
		t.Error("expected error from Load with an explicit missing path")
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()

	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)

	tmpDir := t.TempDir()
	os.Chdir(tmpDir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "xdg"))
	t.Setenv("HOME", tmpDir)

	if path := findConfigFile(); path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	configPath := filepath.Join(tmpDir, FileName)
	if err := os.WriteFile(configPath, []byte("sampling:\n  trials: 7\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}

	if path := findConfigFile(); path == "" {
		t.Error("expected to find rugosity.yaml in current directory")
	}

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Sampling.Trials != 7 {
		t.Errorf("expected 7 trials from discovered file, got %d", cfg.Sampling.Trials)
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name   string
		args   []string
		verify func(*testing.T, *Config)
	}{
		{
			name: "debug flag",
			args: []string{"-debug"},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
			},
		},
		{
			name: "fixed length",
			args: []string{"-length", "12.5"},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Sampling.RandomLength || cfg.Sampling.LengthM != 12.5 {
					t.Errorf("expected fixed length 12.5, got %+v", cfg.Sampling)
				}
			},
		},
		{
			name: "length range",
			args: []string{"-length", "4-16"},
			verify: func(t *testing.T, cfg *Config) {
				s := cfg.Sampling
				if !s.RandomLength || s.MinLengthM != 4 || s.MaxLengthM != 16 {
					t.Errorf("expected random length 4-16, got %+v", s)
				}
			},
		},
		{
			name: "fixed orientation",
			args: []string{"-orientation", "30"},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Sampling.RandomOrientation || cfg.Sampling.OrientationDeg != 30 {
					t.Errorf("expected orientation 30, got %+v", cfg.Sampling)
				}
			},
		},
		{
			name: "trials seed and outputs",
			args: []string{"-n", "12", "-seed", "99", "-csv", "-plot", "-db", "x.db", "-out", "o"},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Sampling.Trials != 12 || cfg.Sampling.Seed != 99 {
					t.Errorf("unexpected sampling: %+v", cfg.Sampling)
				}
				want := OutputConfig{Dir: "o", CSV: true, Plot: true, MaxPlot: 100, Database: "x.db", CacheDEM: true}
				if diff := cmp.Diff(want, cfg.Output); diff != "" {
					t.Errorf("output mismatch (-want +got):\n%s", diff)
				}
			},
		},
		{
			name: "csv name implies csv",
			args: []string{"-csv-name", "reef_a"},
			verify: func(t *testing.T, cfg *Config) {
				if !cfg.Output.CSV || cfg.Output.CSVName != "reef_a" {
					t.Errorf("expected CSV to reef_a, got %+v", cfg.Output)
				}
			},
		},
		{
			name: "no flags keeps defaults",
			args: nil,
			verify: func(t *testing.T, cfg *Config) {
				if diff := cmp.Diff(Default(), cfg); diff != "" {
					t.Errorf("config changed without flags (-want +got):\n%s", diff)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := flag.NewFlagSet("test", flag.ContinueOnError)
			flags := BindFlags(fs)
			if err := fs.Parse(tt.args); err != nil {
				t.Fatalf("failed to parse flags: %v", err)
			}

			cfg := Default()
			if err := flags.Apply(cfg); err != nil {
				t.Fatalf("apply failed: %v", err)
			}
			tt.verify(t, cfg)
		})
	}
}

func TestApplyFlagsInvalid(t *testing.T) {
	for _, args := range [][]string{
		{"-length", "long"},
		{"-length", "a-b"},
		{"-orientation", "north"},
	} {
		fs := flag.NewFlagSet("test", flag.ContinueOnError)
		flags := BindFlags(fs)
		if err := fs.Parse(args); err != nil {
			t.Fatalf("failed to parse flags: %v", err)
		}
		if err := flags.Apply(Default()); !errors.Is(err, ErrInvalid) {
			t.Errorf("%v: expected ErrInvalid, got %v", args, err)
		}
	}
}

func TestLoadPriority(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "rugosity.yaml")

	yamlContent := `
sampling:
  trials: 40
  length_m: 15
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	flags := BindFlags(fs)
	if err := fs.Parse([]string{"-config", configPath, "-n", "80"}); err != nil {
		t.Fatalf("failed to parse flags: %v", err)
	}

	cfg, err := flags.Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Trials from flag, not file
	if cfg.Sampling.Trials != 80 {
		t.Errorf("expected 80 trials from flag, got %d", cfg.Sampling.Trials)
	}
	// Length from file since no flag override
	if cfg.Sampling.LengthM != 15 {
		t.Errorf("expected length 15 from file, got %v", cfg.Sampling.LengthM)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	flags := BindFlags(fs)
	if err := fs.Parse([]string{"-config", "", "-length", "0", "-orientation", "10"}); err != nil {
		t.Fatalf("failed to parse flags: %v", err)
	}
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)
	os.Chdir(t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	if _, err := flags.Load(); !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid for zero length, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero trials", func(c *Config) { c.Sampling.Trials = 0 }},
		{"negative length", func(c *Config) { c.Sampling.LengthM = -1 }},
		{"empty range", func(c *Config) {
			c.Sampling.RandomLength = true
			c.Sampling.MinLengthM, c.Sampling.MaxLengthM = 10, 10
		}},
		{"orientation 180", func(c *Config) {
			c.Sampling.RandomOrientation = false
			c.Sampling.OrientationDeg = 180
		}},
		{"no stall attempts", func(c *Config) { c.Placement.StallAttempts = 0 }},
		{"bad level", func(c *Config) { c.Logging.Level = "loud" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalid) {
				t.Errorf("expected ErrInvalid, got %v", err)
			}
		})
	}
}

func TestSaveTo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", FileName)

	cfg := Default()
	cfg.Sampling.Trials = 321
	cfg.Output.Database = "archive.db"
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("failed to save config: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("failed to reload config: %v", err)
	}
	if diff := cmp.Diff(cfg, loaded); diff != "" {
		t.Errorf("saved config mismatch (-want +got):\n%s", diff)
	}
}

func TestUserPath(t *testing.T) {
	if got, want := UserPath(), filepath.Join(ConfigDir(), FileName); got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
}

func TestBuildSampling(t *testing.T) {
	base := Default().Sampling

	tests := []struct {
		name    string
		answers SamplingAnswers
		want    func(SamplingConfig) SamplingConfig
		wantErr bool
	}{
		{
			name:    "fixed length and orientation",
			answers: SamplingAnswers{Trials: "50", Length: "25", Orientation: "90"},
			want: func(s SamplingConfig) SamplingConfig {
				s.Trials, s.LengthM, s.RandomLength = 50, 25, false
				s.OrientationDeg, s.RandomOrientation = 90, false
				return s
			},
		},
		{
			name:    "random length and orientation",
			answers: SamplingAnswers{Trials: " 10 ", Length: "r", MinLength: "5", MaxLength: "12", Orientation: "R"},
			want: func(s SamplingConfig) SamplingConfig {
				s.Trials, s.RandomLength, s.MinLengthM, s.MaxLengthM = 10, true, 5, 12
				s.RandomOrientation = true
				return s
			},
		},
		{name: "zero trials", answers: SamplingAnswers{Trials: "0", Length: "5", Orientation: "R"}, wantErr: true},
		{name: "fractional length", answers: SamplingAnswers{Trials: "1", Length: "2.5", Orientation: "R"}, wantErr: true},
		{name: "orientation 180", answers: SamplingAnswers{Trials: "1", Length: "5", Orientation: "180"}, wantErr: true},
		{name: "negative orientation", answers: SamplingAnswers{Trials: "1", Length: "5", Orientation: "-1"}, wantErr: true},
		{name: "inverted range", answers: SamplingAnswers{Trials: "1", Length: "R", MinLength: "9", MaxLength: "3", Orientation: "R"}, wantErr: true},
		{name: "missing max", answers: SamplingAnswers{Trials: "1", Length: "R", MinLength: "9", Orientation: "R"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BuildSampling(tt.answers, base)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalid) {
					t.Fatalf("expected ErrInvalid, got %v", err)
				}
				if diff := cmp.Diff(base, got); diff != "" {
					t.Errorf("base should be returned on error (-want +got):\n%s", diff)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want(base), got); diff != "" {
				t.Errorf("sampling mismatch (-want +got):\n%s", diff)
			}
			if err := got.Validate(); err != nil {
				t.Errorf("built settings should validate: %v", err)
			}
		})
	}
}
