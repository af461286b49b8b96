package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	APIPort  string `yaml:"api_port"`
	LogLevel string `yaml:"log_level"`

	GeminiAPIKey      string  `yaml:"gemini_api_key"`
	GeminiModel       string  `yaml:"gemini_model"`
	GeminiTemperature float64 `yaml:"gemini_temperature"`

	OllamaURL        string `yaml:"ollama_url"`
	OllamaEmbedModel string `yaml:"ollama_embed_model"`

	YahooBaseURL     string `yaml:"yahoo_base_url"`
	YahooRateLimit   int    `yaml:"yahoo_rate_limit"`
	NewsBaseURL      string `yaml:"news_base_url"`
	NewsItemsPerPage int    `yaml:"news_items_per_page"`

	FallbackTickers    []string `yaml:"fallback_tickers"`
	SearchTopK         int      `yaml:"search_top_k"`
	CallTimeoutSeconds int      `yaml:"call_timeout_seconds"`

	SpeechEnabled bool   `yaml:"speech_enabled"`
	SpeechBaseURL string `yaml:"speech_base_url"`
	SpeechAPIKey  string `yaml:"speech_api_key"`
	SpeechModel   string `yaml:"speech_model"`
	SpeechVoice   string `yaml:"speech_voice"`
	StoragePath   string `yaml:"storage_path"`

	NATSEnabled bool   `yaml:"nats_enabled"`
	NATSURL     string `yaml:"nats_url"`
	NATSSubject string `yaml:"nats_subject"`
}

func defaults() Config {
	return Config{
		APIPort:  "8080",
		LogLevel: "info",

		GeminiModel:       "gemini-2.0-flash",
		GeminiTemperature: 0.3,

		OllamaURL:        "http://localhost:11434",
		OllamaEmbedModel: "nomic-embed-text",

		YahooBaseURL:     "https://query1.finance.yahoo.com",
		YahooRateLimit:   5,
		NewsBaseURL:      "https://finance.yahoo.com",
		NewsItemsPerPage: 3,

		SearchTopK:         3,
		CallTimeoutSeconds: 30,

		SpeechModel: "tts-1",
		SpeechVoice: "alloy",
		StoragePath: "./data/artifacts",

		NATSURL:     "nats://localhost:4222",
		NATSSubject: "briefs.completed",
	}
}

// Load builds the configuration in three layers: compiled defaults,
// then an optional YAML file (CONFIG_FILE), then environment variables.
// Later layers win.
func Load() (Config, error) {
	cfg := defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file: %w", err)
		}
	}

	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	envString(&cfg.APIPort, "API_PORT")
	envString(&cfg.LogLevel, "LOG_LEVEL")

	envString(&cfg.GeminiAPIKey, "GEMINI_API_KEY")
	envString(&cfg.GeminiModel, "GEMINI_MODEL")
	envFloat(&cfg.GeminiTemperature, "GEMINI_TEMPERATURE")

	envString(&cfg.OllamaURL, "OLLAMA_URL")
	envString(&cfg.OllamaEmbedModel, "OLLAMA_EMBED_MODEL")

	envString(&cfg.YahooBaseURL, "YAHOO_BASE_URL")
	envInt(&cfg.YahooRateLimit, "YAHOO_RATE_LIMIT")
	envString(&cfg.NewsBaseURL, "NEWS_BASE_URL")
	envInt(&cfg.NewsItemsPerPage, "NEWS_ITEMS_PER_PAGE")

	envList(&cfg.FallbackTickers, "FALLBACK_TICKERS")
	envInt(&cfg.SearchTopK, "SEARCH_TOP_K")
	envInt(&cfg.CallTimeoutSeconds, "CALL_TIMEOUT_SECONDS")

	envBool(&cfg.SpeechEnabled, "SPEECH_ENABLED")
	envString(&cfg.SpeechBaseURL, "SPEECH_BASE_URL")
	envString(&cfg.SpeechAPIKey, "SPEECH_API_KEY")
	envString(&cfg.SpeechModel, "SPEECH_MODEL")
	envString(&cfg.SpeechVoice, "SPEECH_VOICE")
	envString(&cfg.StoragePath, "STORAGE_PATH")

	envBool(&cfg.NATSEnabled, "NATS_ENABLED")
	envString(&cfg.NATSURL, "NATS_URL")
	envString(&cfg.NATSSubject, "NATS_SUBJECT")
}

// CallTimeout is the per-collaborator deadline inside one run.
func (c Config) CallTimeout() time.Duration {
	return time.Duration(c.CallTimeoutSeconds) * time.Second
}

func envString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func envInt(dst *int, key string) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return
	}
	if n, err := strconv.Atoi(v); err == nil {
		*dst = n
	}
}

func envFloat(dst *float64, key string) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		*dst = f
	}
}

func envBool(dst *bool, key string) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return
	}
	if parsed, err := strconv.ParseBool(v); err == nil {
		*dst = parsed
	}
}

func envList(dst *[]string, key string) {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) > 0 {
		*dst = out
	}
}
