package config

import "fmt"

// Config holds all revisio configuration.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Quiz     QuizConfig     `koanf:"quiz"`
	Goals    GoalsConfig    `koanf:"goals"`
}

type ServerConfig struct {
	Bind string `koanf:"bind" validate:"required"`
	Port int    `koanf:"port" validate:"gte=1,lte=65535"`
}

type DatabaseConfig struct {
	Path string `koanf:"path"`
}

// QuizConfig selects and configures the question-generation provider.
type QuizConfig struct {
	Provider     string `koanf:"provider" validate:"omitempty,oneof=anthropic ollama mock"`
	Model        string `koanf:"model"`
	OllamaURL    string `koanf:"ollama_url"`
	OllamaModel  string `koanf:"ollama_model"`
	AnthropicKey string `koanf:"anthropic_key"`
	Questions    int    `koanf:"questions" validate:"gte=1,lte=50"`
}

// GoalsConfig carries display-level goals. The daily goal feeds the
// dashboard progress widget only; streaks count any day with >0 minutes
// regardless of this value.
type GoalsConfig struct {
	DailyMinutes int `koanf:"daily_minutes" validate:"gte=0"`
}

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Bind: "127.0.0.1",
			Port: 39393,
		},
		Database: DatabaseConfig{
			Path: "", // resolved at runtime via store.DefaultDBPath()
		},
		Quiz: QuizConfig{
			Provider:    "", // disabled until configured
			OllamaURL:   "http://localhost:11434",
			OllamaModel: "llama3.2",
			Questions:   5,
		},
		Goals: GoalsConfig{
			DailyMinutes: 0,
		},
	}
}

// ListenAddr returns the bind:port address string.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Bind, c.Server.Port)
}
