package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-cropadvice/internal/config"
)

func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg, err := config.Load("")
	require.NoError(t, err)

	require.Equal(t, ":8383", cfg.Server.Addr)
	require.Equal(t, 5*time.Second, cfg.Server.ShutdownGrace)
	require.Equal(t, int64(10<<20), cfg.Server.MaxUploadBytes)
	require.Equal(t, config.ModeRemote, cfg.Classifier.Mode)
	require.Equal(t, "http://localhost:8000", cfg.Classifier.Endpoint)
	require.Equal(t, 60*time.Second, cfg.Classifier.Timeout)
	require.Equal(t, "vanilla", cfg.Render.DefaultRenderer)
	require.Equal(t, "light", cfg.Render.ThemeVariant)
	require.False(t, cfg.History.Enabled())
	require.Equal(t, "info", cfg.Log.Level)
	require.False(t, cfg.Log.Development)

	require.Equal(t, cfg, config.Default())
}

func TestLoadFileAndEnv(t *testing.T) {
	isolate(t)

	path := filepath.Join(t.TempDir(), "cropadvice.yaml")
	data := []byte(`server:
  addr: ":9000"
  shutdown_grace: 2s
classifier:
  mode: STATIC
  fixtures: ./fixtures.yaml
history:
  dsn: /tmp/cropadvice.db
log:
  development: true
`)
	require.NoError(t, os.WriteFile(path, data, 0o600))

	t.Setenv("CROPADVICE_SERVER_MAX_UPLOAD_BYTES", "1024")
	t.Setenv("CROPADVICE_RENDER_THEME_VARIANT", "dark")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	require.Equal(t, ":9000", cfg.Server.Addr)
	require.Equal(t, 2*time.Second, cfg.Server.ShutdownGrace)
	require.Equal(t, int64(1024), cfg.Server.MaxUploadBytes)
	require.Equal(t, config.ModeStatic, cfg.Classifier.Mode)
	require.Equal(t, "./fixtures.yaml", cfg.Classifier.Fixtures)
	require.Equal(t, "dark", cfg.Render.ThemeVariant)
	require.True(t, cfg.History.Enabled())
	require.True(t, cfg.Log.Development)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	isolate(t)
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestLoadFromConfigDir(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	dir := filepath.Join(xdg, "cropadvice")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cropadvice.yaml"), []byte("render:\n  default_renderer: markdown\n"), 0o600))

	cfg, err := config.Load("")
	require.NoError(t, err)
	require.Equal(t, "markdown", cfg.Render.DefaultRenderer)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"unknown mode", func(c *config.Config) { c.Classifier.Mode = "gpu" }},
		{"remote without endpoint", func(c *config.Config) { c.Classifier.Endpoint = "" }},
		{"zero timeout", func(c *config.Config) { c.Classifier.Timeout = 0 }},
		{"negative upload", func(c *config.Config) { c.Server.MaxUploadBytes = -1 }},
		{"zero grace", func(c *config.Config) { c.Server.ShutdownGrace = 0 }},
		{"empty addr", func(c *config.Config) { c.Server.Addr = " " }},
		{"empty renderer", func(c *config.Config) { c.Render.DefaultRenderer = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			require.NoError(t, cfg.Validate())
			tt.mutate(cfg)
			require.Error(t, cfg.Validate())
		})
	}
}

func TestValidateStaticSkipsEndpoint(t *testing.T) {
	cfg := config.Default()
	cfg.Classifier.Mode = config.ModeStatic
	cfg.Classifier.Endpoint = ""
	require.NoError(t, cfg.Validate())
}

func TestLoadRejectsInvalidEnv(t *testing.T) {
	isolate(t)
	t.Setenv("CROPADVICE_CLASSIFIER_MODE", "telepathy")
	_, err := config.Load("")
	require.Error(t, err)
}
