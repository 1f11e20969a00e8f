package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	// EnvPrefix is the prefix for environment variable overrides,
	// e.g. REVISIO_SERVER_PORT=8080.
	EnvPrefix = "REVISIO_"
	delimiter = "."
)

// Load builds the configuration from, in rising priority: defaults, the
// YAML config file (explicit path, or ~/.revisio/config.yaml if present),
// environment variables, and programmatic overrides.
func Load(path string, overrides map[string]any) (Config, error) {
	k := koanf.New(delimiter)

	if err := k.Load(confmap.Provider(defaultsMap(), delimiter), nil); err != nil {
		return Config{}, fmt.Errorf("load defaults: %w", err)
	}

	if path == "" {
		path = defaultConfigPath()
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, delimiter, func(s string) string {
		// REVISIO_SERVER_PORT -> server.port
		s = strings.TrimPrefix(s, EnvPrefix)
		return strings.Replace(strings.ToLower(s), "_", delimiter, 1)
	}), nil); err != nil {
		return Config{}, fmt.Errorf("load env: %w", err)
	}

	if len(overrides) > 0 {
		if err := k.Load(confmap.Provider(overrides, delimiter), nil); err != nil {
			return Config{}, fmt.Errorf("apply overrides: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return Config{}, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// defaultsMap flattens Default() into koanf's key space so file and env
// overrides merge per-key instead of replacing whole sections.
func defaultsMap() map[string]any {
	d := Default()
	return map[string]any{
		"server.bind":         d.Server.Bind,
		"server.port":         d.Server.Port,
		"database.path":       d.Database.Path,
		"quiz.provider":       d.Quiz.Provider,
		"quiz.model":          d.Quiz.Model,
		"quiz.ollama_url":     d.Quiz.OllamaURL,
		"quiz.ollama_model":   d.Quiz.OllamaModel,
		"quiz.anthropic_key":  d.Quiz.AnthropicKey,
		"quiz.questions":      d.Quiz.Questions,
		"goals.daily_minutes": d.Goals.DailyMinutes,
	}
}

// defaultConfigPath returns ~/.revisio/config.yaml if it exists, else "".
func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	p := filepath.Join(home, ".revisio", "config.yaml")
	if _, err := os.Stat(p); err != nil {
		return ""
	}
	return p
}
