// Package config loads and persists testlens configuration.
// Configuration lives at .testlens/config.yaml inside the analyzed workspace;
// environment variables prefixed TESTLENS_ override individual settings.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Dir is the workspace-relative directory testlens keeps its state in.
const Dir = ".testlens"

// FileName is the config file name inside Dir.
const FileName = "config.yaml"

// Config holds all testlens configuration.
type Config struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	Analyzer AnalyzerConfig `yaml:"analyzer"`
	Plan     PlanConfig     `yaml:"plan"`
	Tracker  TrackerConfig  `yaml:"tracker"`
	Store    StoreConfig    `yaml:"store"`
	Watch    WatchConfig    `yaml:"watch"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// AnalyzerConfig configures the source scanner and report builder.
type AnalyzerConfig struct {
	// Directory names skipped during the walk, in addition to bin/ and obj/.
	ExcludeDirs []string `yaml:"exclude_dirs"`

	// Files larger than this are skipped (bytes).
	MaxFileSize int64 `yaml:"max_file_size"`

	// Parallel parser workers. 0 means GOMAXPROCS.
	Workers int `yaml:"workers"`

	// Classes below this testability score are flagged in the report.
	ScoreThreshold int `yaml:"score_threshold"`
}

// PlanConfig configures learning plan generation.
type PlanConfig struct {
	DefaultDays  int    `yaml:"default_days"`
	DefaultSkill string `yaml:"default_skill"` // beginner, intermediate, advanced
	OutputFile   string `yaml:"output_file"`
}

// TrackerConfig configures the CSV progress tracker.
type TrackerConfig struct {
	CSVPath string `yaml:"csv_path"`
}

// StoreConfig configures the snapshot database.
type StoreConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// WatchConfig configures the filesystem watcher.
type WatchConfig struct {
	Debounce string `yaml:"debounce"`
}

// LoggingConfig configures categorized file logging.
type LoggingConfig struct {
	DebugMode  bool            `yaml:"debug_mode"`
	Categories map[string]bool `yaml:"categories"`
	Level      string          `yaml:"level"` // debug, info, warn, error
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name:    "testlens",
		Version: "1.0.0",

		Analyzer: AnalyzerConfig{
			ExcludeDirs:    []string{"bin", "obj", ".git", ".vs", "packages", "node_modules", Dir},
			MaxFileSize:    1 << 20,
			Workers:        0,
			ScoreThreshold: 60,
		},

		Plan: PlanConfig{
			DefaultDays:  5,
			DefaultSkill: "beginner",
			OutputFile:   "LEARNING_PLAN.md",
		},

		Tracker: TrackerConfig{
			CSVPath: filepath.Join(Dir, "progress.csv"),
		},

		Store: StoreConfig{
			DatabasePath: filepath.Join(Dir, "snapshots.db"),
		},

		Watch: WatchConfig{
			Debounce: "500ms",
		},

		Logging: LoggingConfig{
			DebugMode: false,
			Level:     "info",
		},
	}
}

// Load loads configuration for a workspace, falling back to defaults when the
// config file is absent.
func Load(workspace string) (*Config, error) {
	cfg := DefaultConfig()

	path := filepath.Join(workspace, Dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save writes configuration to .testlens/config.yaml in the workspace.
func (c *Config) Save(workspace string) error {
	dir := filepath.Join(workspace, Dir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, FileName), data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("TESTLENS_DB"); v != "" {
		c.Store.DatabasePath = v
	}
	if v := os.Getenv("TESTLENS_CSV"); v != "" {
		c.Tracker.CSVPath = v
	}
	if v := os.Getenv("TESTLENS_PLAN_DAYS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Plan.DefaultDays = n
		}
	}
	if v := os.Getenv("TESTLENS_PLAN_SKILL"); v != "" {
		c.Plan.DefaultSkill = v
	}
	if v := os.Getenv("TESTLENS_DEBUG"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Logging.DebugMode = b
		}
	}
	if v := os.Getenv("TESTLENS_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

// GetDebounce returns the watcher debounce as a duration.
func (c *Config) GetDebounce() time.Duration {
	d, err := time.ParseDuration(c.Watch.Debounce)
	if err != nil {
		return 500 * time.Millisecond
	}
	return d
}
