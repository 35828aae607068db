// Package config loads the demo configuration: an optional YAML file
// followed by QUILL_* environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/iw2rmb/quill/provider"
)

var ErrInvalidConfig = errors.New("config: invalid")

type Config struct {
	Provider    ProviderConfig `yaml:"provider"`
	Editor      EditorConfig   `yaml:"editor"`
	Log         LogConfig      `yaml:"log"`
	MetricsAddr string         `yaml:"metrics_addr"`
}

type ProviderConfig struct {
	Kind      string        `yaml:"kind"`
	APIKey    string        `yaml:"api_key"`
	Endpoint  string        `yaml:"endpoint"`
	Region    string        `yaml:"region"`
	Model     string        `yaml:"model"`
	MaxTokens int           `yaml:"max_tokens"`
	Interval  time.Duration `yaml:"interval"`
}

type EditorConfig struct {
	// Content is the initial document as HTML. ContentFile wins when set.
	Content     string `yaml:"content"`
	ContentFile string `yaml:"content_file"`

	SystemPrompt   string `yaml:"system_prompt"`
	Fuzzy          bool   `yaml:"fuzzy"`
	PaletteMaxRows int    `yaml:"palette_max_rows"`
	HistoryLimit   int    `yaml:"history_limit"`
	ReadOnly       bool   `yaml:"read_only"`
}

type LogConfig struct {
	File  string `yaml:"file"`
	Level string `yaml:"level"`
}

func Default() Config {
	return Config{
		Provider: ProviderConfig{
			Kind:      string(provider.KindScripted),
			MaxTokens: provider.DefaultMaxTokens,
			Interval:  120 * time.Millisecond,
		},
		Editor: EditorConfig{
			Content:        "<h1>Welcome to quill</h1><p>Type / for commands.</p>",
			PaletteMaxRows: 8,
		},
		Log: LogConfig{
			File:  filepath.Join(os.TempDir(), "quill", "quill.log"),
			Level: "info",
		},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/quill/config.yaml (or the platform
// equivalent).
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config dir: %w", err)
	}
	return filepath.Join(dir, "quill", "config.yaml"), nil
}

// Load reads path over the defaults and applies environment overrides. An
// empty path uses DefaultPath, which may be missing.
func Load(path string) (Config, error) {
	return load(path, os.LookupEnv)
}

func load(path string, lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()

	optional := path == ""
	if optional {
		p, err := DefaultPath()
		if err != nil {
			return cfg, err
		}
		path = p
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	case optional && errors.Is(err, os.ErrNotExist):
	default:
		return cfg, fmt.Errorf("read config: %w", err)
	}

	if err := applyEnv(&cfg, lookup); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	str := func(dst *string, keys ...string) {
		for _, k := range keys {
			if v, ok := lookup(k); ok && v != "" {
				*dst = v
				return
			}
		}
	}
	str(&cfg.Provider.Kind, "QUILL_PROVIDER")
	str(&cfg.Provider.APIKey, "QUILL_API_KEY", "ANTHROPIC_API_KEY")
	str(&cfg.Provider.Endpoint, "QUILL_ENDPOINT")
	str(&cfg.Provider.Region, "QUILL_REGION", "AWS_REGION")
	str(&cfg.Provider.Model, "QUILL_MODEL")
	str(&cfg.MetricsAddr, "QUILL_METRICS_ADDR")
	str(&cfg.Log.File, "QUILL_LOG_FILE")
	str(&cfg.Log.Level, "QUILL_LOG_LEVEL")
	str(&cfg.Editor.ContentFile, "QUILL_CONTENT_FILE")

	if v, ok := lookup("QUILL_MAX_TOKENS"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: QUILL_MAX_TOKENS=%q: %v", ErrInvalidConfig, v, err)
		}
		cfg.Provider.MaxTokens = n
	}
	if v, ok := lookup("QUILL_FUZZY"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: QUILL_FUZZY=%q: %v", ErrInvalidConfig, v, err)
		}
		cfg.Editor.Fuzzy = b
	}
	return nil
}

// Validate reports the first invalid field.
func (c Config) Validate() error {
	if _, err := provider.ParseKind(c.Provider.Kind); err != nil {
		return fmt.Errorf("%w: provider.kind: %v", ErrInvalidConfig, err)
	}
	if c.Provider.MaxTokens < 0 {
		return fmt.Errorf("%w: provider.max_tokens must be >= 0", ErrInvalidConfig)
	}
	if c.Provider.Interval < 0 {
		return fmt.Errorf("%w: provider.interval must be >= 0", ErrInvalidConfig)
	}
	if c.Editor.PaletteMaxRows < 0 {
		return fmt.Errorf("%w: editor.palette_max_rows must be >= 0", ErrInvalidConfig)
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: log.level %q", ErrInvalidConfig, c.Log.Level)
	}
	return nil
}

// ProviderOptions converts the provider section for provider.New.
func (c Config) ProviderOptions() (provider.Config, error) {
	kind, err := provider.ParseKind(c.Provider.Kind)
	if err != nil {
		return provider.Config{}, err
	}
	return provider.Config{
		Kind:      kind,
		APIKey:    c.Provider.APIKey,
		Endpoint:  c.Provider.Endpoint,
		Region:    c.Provider.Region,
		Model:     c.Provider.Model,
		MaxTokens: c.Provider.MaxTokens,
		Interval:  c.Provider.Interval,
	}, nil
}

// InitialContent returns the HTML the editor starts with.
func (c Config) InitialContent() (string, error) {
	if c.Editor.ContentFile == "" {
		return c.Editor.Content, nil
	}
	data, err := os.ReadFile(c.Editor.ContentFile)
	if err != nil {
		return "", fmt.Errorf("read content file: %w", err)
	}
	return string(data), nil
}
