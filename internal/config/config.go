package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// defaultSystemPrompt steers the backend into hosting a brain-teaser
// game: pose a riddle when the user says start, then answer only
// yes/no/irrelevant.
const defaultSystemPrompt = "你是脑筋急转弯主持人。用户说开始时出题，之后只回答是/否/无关。"

// Config holds everything the server needs. Values are read from
// RIDDLEGATE_* environment variables, with defaults for local use
// against an Ollama-style endpoint.
type Config struct {
	Addr             string        `mapstructure:"addr"`
	OpenAIBaseURL    string        `mapstructure:"openai_base_url"`
	OpenAIAPIKey     string        `mapstructure:"openai_api_key"`
	Model            string        `mapstructure:"model"`
	SystemPrompt     string        `mapstructure:"system_prompt"`
	InferenceTimeout time.Duration `mapstructure:"inference_timeout"`
	WebDir           string        `mapstructure:"web_dir"`
}

func Load() (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("RIDDLEGATE")
	v.AutomaticEnv()

	v.SetDefault("addr", ":8080")
	v.SetDefault("openai_base_url", "http://localhost:11434/v1/")
	v.SetDefault("openai_api_key", "")
	v.SetDefault("model", "llama3.1:8b")
	v.SetDefault("system_prompt", defaultSystemPrompt)
	v.SetDefault("inference_timeout", 30*time.Second)
	v.SetDefault("web_dir", "web")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if cfg.InferenceTimeout <= 0 {
		return Config{}, fmt.Errorf("inference_timeout must be positive, got %s", cfg.InferenceTimeout)
	}
	return cfg, nil
}
