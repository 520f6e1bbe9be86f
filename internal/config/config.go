// Package config loads cropadvice settings from defaults, an optional YAML
// file and CROPADVICE_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix scopes environment overrides, e.g. CROPADVICE_SERVER_ADDR.
const EnvPrefix = "CROPADVICE"

// Classifier modes.
const (
	ModeRemote = "remote"
	ModeStatic = "static"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Classifier ClassifierConfig `mapstructure:"classifier"`
	Render     RenderConfig     `mapstructure:"render"`
	History    HistoryConfig    `mapstructure:"history"`
	Log        LogConfig        `mapstructure:"log"`
}

type ServerConfig struct {
	Addr           string        `mapstructure:"addr"`
	ShutdownGrace  time.Duration `mapstructure:"shutdown_grace"`
	MaxUploadBytes int64         `mapstructure:"max_upload_bytes"`
}

type ClassifierConfig struct {
	Mode     string        `mapstructure:"mode"` // remote or static
	Endpoint string        `mapstructure:"endpoint"`
	Timeout  time.Duration `mapstructure:"timeout"`
	Fixtures string        `mapstructure:"fixtures"` // optional YAML for static mode
}

type RenderConfig struct {
	DefaultRenderer string `mapstructure:"default_renderer"`
	ThemeVariant    string `mapstructure:"theme_variant"`
	TemplatesDir    string `mapstructure:"templates_dir"`
}

// HistoryConfig enables the analysis log when DSN is set.
type HistoryConfig struct {
	DSN string `mapstructure:"dsn"`
}

type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// Enabled reports whether history recording is configured.
func (h HistoryConfig) Enabled() bool {
	return strings.TrimSpace(h.DSN) != ""
}

// Load reads configuration. path may be empty, in which case cropadvice.yaml
// is looked up in the working directory and the user config dir; a missing
// file is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("cropadvice")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if dir, err := configDir(); err == nil {
			v.AddConfigPath(dir)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetDefaults registers every key with its default value. AutomaticEnv only
// sees keys viper already knows about, so all keys are listed here.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8383")
	v.SetDefault("server.shutdown_grace", "5s")
	v.SetDefault("server.max_upload_bytes", 10<<20)
	v.SetDefault("classifier.mode", ModeRemote)
	v.SetDefault("classifier.endpoint", "http://localhost:8000")
	v.SetDefault("classifier.timeout", "60s")
	v.SetDefault("classifier.fixtures", "")
	v.SetDefault("render.default_renderer", "vanilla")
	v.SetDefault("render.theme_variant", "light")
	v.SetDefault("render.templates_dir", "")
	v.SetDefault("history.dsn", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	v := viper.New()
	SetDefaults(v)
	var cfg Config
	// defaults always decode
	_ = v.Unmarshal(&cfg)
	return &cfg
}

func (c *Config) normalize() {
	c.Classifier.Mode = strings.ToLower(strings.TrimSpace(c.Classifier.Mode))
	c.Classifier.Endpoint = strings.TrimSpace(c.Classifier.Endpoint)
	c.Render.DefaultRenderer = strings.TrimSpace(c.Render.DefaultRenderer)
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	c.History.DSN = expandHome(strings.TrimSpace(c.History.DSN))
	c.Classifier.Fixtures = expandHome(strings.TrimSpace(c.Classifier.Fixtures))
	c.Render.TemplatesDir = expandHome(strings.TrimSpace(c.Render.TemplatesDir))
}

// Validate rejects unknown modes and non-positive limits.
func (c *Config) Validate() error {
	var errs []error
	switch c.Classifier.Mode {
	case ModeRemote:
		if c.Classifier.Endpoint == "" {
			errs = append(errs, errors.New("classifier.endpoint is required in remote mode"))
		}
	case ModeStatic:
	default:
		errs = append(errs, fmt.Errorf("classifier.mode %q must be %q or %q", c.Classifier.Mode, ModeRemote, ModeStatic))
	}
	if c.Classifier.Timeout <= 0 {
		errs = append(errs, errors.New("classifier.timeout must be positive"))
	}
	if c.Server.MaxUploadBytes <= 0 {
		errs = append(errs, errors.New("server.max_upload_bytes must be positive"))
	}
	if c.Server.ShutdownGrace <= 0 {
		errs = append(errs, errors.New("server.shutdown_grace must be positive"))
	}
	if strings.TrimSpace(c.Server.Addr) == "" {
		errs = append(errs, errors.New("server.addr is required"))
	}
	if c.Render.DefaultRenderer == "" {
		errs = append(errs, errors.New("render.default_renderer is required"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: invalid: %w", errors.Join(errs...))
	}
	return nil
}

func configDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "cropadvice"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "cropadvice"), nil
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}
