package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recontriage/recontriage/pkg/duration"
)

func TestDefaultConfig(t *testing.T) {
	t.Setenv("RECON_BIN_PATH", "")
	t.Setenv("RECON_SCANNER_PATH", "")

	cfg := DefaultConfig()
	assert.Equal(t, "./bin/recon-engine", cfg.Engine.Path)
	assert.Equal(t, "nuclei", cfg.Scanner.Path)
	assert.Equal(t, duration.Discovery, cfg.Engine.Timeout.Std())
	assert.Equal(t, duration.ScanBatch, cfg.Scanner.Timeout.Std())
	assert.Contains(t, cfg.History, "asset_history.json")
	assert.Contains(t, cfg.Archive, "recontriage.db")
	assert.NoError(t, cfg.Validate())
}

func TestDefaultConfigEnvOverrides(t *testing.T) {
	t.Setenv("RECON_BIN_PATH", "/opt/engine")
	t.Setenv("RECON_SCANNER_PATH", "/opt/nuclei")

	cfg := DefaultConfig()
	assert.Equal(t, "/opt/engine", cfg.Engine.Path)
	assert.Equal(t, "/opt/nuclei", cfg.Scanner.Path)
}

func TestLoadLayersOverDefaults(t *testing.T) {
	t.Setenv("RECON_BIN_PATH", "")
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
engine:
  path: /usr/local/bin/recon-engine
  args: ["-sources", "crtsh"]
  timeout: 45m
scanner:
  path: /usr/local/bin/nuclei
history: /var/lib/recontriage/history.json
report:
  min_severity: high
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/usr/local/bin/recon-engine", cfg.Engine.Path)
	assert.Equal(t, []string{"-sources", "crtsh"}, cfg.Engine.Args)
	assert.Equal(t, 45*time.Minute, cfg.Engine.Timeout.Std())
	assert.Equal(t, "/var/lib/recontriage/history.json", cfg.History)
	assert.Equal(t, "high", cfg.Report.MinSeverity)

	// Fields absent from the file keep their defaults.
	assert.Equal(t, duration.ScanBatch, cfg.Scanner.Timeout.Std())
	assert.Contains(t, cfg.Archive, "recontriage.db")
}

func TestLoadExplicitPathMustExist(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoadBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("engine: ["), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestLoadBadDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("engine:\n  timeout: soon\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{"missing engine path", func(c *Config) { c.Engine.Path = "" }, ErrMissingRequired},
		{"missing scanner path", func(c *Config) { c.Scanner.Path = "" }, ErrMissingRequired},
		{"missing history", func(c *Config) { c.History = "" }, ErrMissingRequired},
		{"zero engine timeout", func(c *Config) { c.Engine.Timeout = 0 }, ErrInvalidConfig},
		{"negative scanner timeout", func(c *Config) { c.Scanner.Timeout = -1 }, ErrInvalidConfig},
		{"bogus min severity", func(c *Config) { c.Report.MinSeverity = "urgent" }, ErrInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), tt.wantErr)
		})
	}
}

func TestValidateAcceptsMixedCaseSeverity(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Report.MinSeverity = "High"
	assert.NoError(t, cfg.Validate())
}

func TestStatePath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path := StatePath("thing.json")
	assert.Equal(t, filepath.Join(home, ".recontriage", "thing.json"), path)
}

func TestDurationRoundTrip(t *testing.T) {
	d := Duration(90 * time.Second)
	out, err := d.MarshalYAML()
	require.NoError(t, err)
	assert.Equal(t, "1m30s", out)
}
