// Package config carries the tool configuration: built-in defaults, an
// optional YAML file, and environment overrides for the external
// binaries. Per-command flag overrides are applied by the CLI on top of
// the loaded Config.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/recontriage/recontriage/pkg/defaults"
	"github.com/recontriage/recontriage/pkg/duration"
	"github.com/recontriage/recontriage/pkg/finding"
)

// Duration wraps time.Duration so YAML files can use "15m" syntax.
type Duration time.Duration

// UnmarshalYAML parses a Go duration string.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("%w: duration %q: %v", ErrInvalidConfig, raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML renders the duration in Go syntax.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// EngineConfig configures the first-stage discovery engine.
type EngineConfig struct {
	// Path is the engine binary. The RECON_BIN_PATH environment
	// variable overrides the built-in default.
	Path string `yaml:"path"`

	// Args are extra arguments placed before the target domain.
	Args []string `yaml:"args,omitempty"`

	// Timeout bounds one discovery run.
	Timeout Duration `yaml:"timeout"`
}

// ScannerConfig configures the second-stage vulnerability scanner.
type ScannerConfig struct {
	// Path is the scanner binary. The RECON_SCANNER_PATH environment
	// variable overrides the built-in default.
	Path string `yaml:"path"`

	// Args are extra arguments appended after the fixed flag set.
	Args []string `yaml:"args,omitempty"`

	// Timeout bounds one scan batch.
	Timeout Duration `yaml:"timeout"`
}

// ReportConfig configures report assembly.
type ReportConfig struct {
	// Template is a custom template file; empty selects the builtin
	// markdown report.
	Template string `yaml:"template,omitempty"`

	// MinSeverity drops findings below the given level. Empty keeps
	// everything.
	MinSeverity string `yaml:"min_severity,omitempty"`

	// OutputDir is where report_<target>.md files land. Empty means
	// the working directory.
	OutputDir string `yaml:"output_dir,omitempty"`
}

// Config is the full tool configuration.
type Config struct {
	Engine  EngineConfig  `yaml:"engine"`
	Scanner ScannerConfig `yaml:"scanner"`

	// History is the asset-history JSON file backing novelty detection.
	History string `yaml:"history"`

	// Archive is the SQLite run-archive database.
	Archive string `yaml:"archive"`

	Report ReportConfig `yaml:"report"`
}

// DefaultConfig returns the built-in configuration: binaries resolved
// from the environment or their defaults, state files under the
// operator's home directory.
func DefaultConfig() *Config {
	return &Config{
		Engine: EngineConfig{
			Path:    envOr(defaults.EngineBinaryEnv, defaults.EngineBinary),
			Timeout: Duration(duration.Discovery),
		},
		Scanner: ScannerConfig{
			Path:    envOr(defaults.ScannerBinaryEnv, defaults.ScannerBinary),
			Timeout: Duration(duration.ScanBatch),
		},
		History: StatePath(defaults.HistoryFile),
		Archive: StatePath(defaults.ArchiveFile),
	}
}

// DefaultPath returns the default config file location. The file is
// optional; Load falls back to DefaultConfig when it is absent.
func DefaultPath() string {
	return StatePath("config.yaml")
}

// StatePath places a state file under ~/.recontriage. When the home
// directory cannot be resolved the bare name is returned, landing the
// file in the working directory.
func StatePath(name string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return name
	}
	return filepath.Join(home, "."+defaults.ToolName, name)
}

// Load reads the YAML config at path layered over DefaultConfig. An
// empty path means the default location, where a missing file is fine;
// an explicit path must exist.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}

	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for semantic errors.
func (c *Config) Validate() error {
	if c.Engine.Path == "" {
		return fmt.Errorf("%w: engine.path", ErrMissingRequired)
	}
	if c.Scanner.Path == "" {
		return fmt.Errorf("%w: scanner.path", ErrMissingRequired)
	}
	if c.History == "" {
		return fmt.Errorf("%w: history", ErrMissingRequired)
	}
	if c.Engine.Timeout <= 0 {
		return fmt.Errorf("%w: engine.timeout must be positive", ErrInvalidConfig)
	}
	if c.Scanner.Timeout <= 0 {
		return fmt.Errorf("%w: scanner.timeout must be positive", ErrInvalidConfig)
	}
	if s := c.Report.MinSeverity; s != "" && !finding.Severity(strings.ToLower(s)).IsValid() {
		return fmt.Errorf("%w: report.min_severity %q", ErrInvalidConfig, s)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
