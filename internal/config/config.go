package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	DefaultModel         = "gpt-3.5-turbo"
	DefaultSearchBaseURL = "https://www.skyscanner.co.in/transport/flights"
)

var DefaultModels = []string{"o3-mini", "gpt-4o", "gpt-3.5-turbo"}

type Config struct {
	Port string

	ScraperAPIKey       string
	ScraperBaseURL      string
	ScraperTimeout      time.Duration
	ExtractPollInterval time.Duration
	ScraperRPS          float64
	ScraperBurst        int

	LLMAPIKey     string
	LLMBaseURL    string
	LLMTimeout    time.Duration
	LLMRPS        float64
	LLMBurst      int
	DefaultModel  string
	AllowedModels []string

	SearchBaseURL string

	LogLevel       string
	LogDevelopment bool

	TracingEnabled bool
	OTLPEndpoint   string
	ServiceName    string
}

var keys = map[string]string{
	"port":                  "PORT",
	"scraper.api_key":       "FIRECRAWL_API_KEY",
	"scraper.base_url":      "FIRECRAWL_BASE_URL",
	"scraper.timeout":       "SCRAPER_TIMEOUT",
	"scraper.poll_interval": "EXTRACT_POLL_INTERVAL",
	"scraper.rps":           "SCRAPER_RPS",
	"scraper.burst":         "SCRAPER_BURST",
	"llm.api_key":           "OPENAI_API_KEY",
	"llm.base_url":          "OPENAI_BASE_URL",
	"llm.timeout":           "LLM_TIMEOUT",
	"llm.rps":               "LLM_RPS",
	"llm.burst":             "LLM_BURST",
	"llm.model":             "OPENAI_MODEL",
	"llm.allowed_models":    "ALLOWED_MODELS",
	"search.base_url":       "SEARCH_BASE_URL",
	"log.level":             "LOG_LEVEL",
	"log.development":       "LOG_DEVELOPMENT",
	"tracing.enabled":       "TRACING_ENABLED",
	"tracing.endpoint":      "OTLP_ENDPOINT",
	"tracing.service_name":  "SERVICE_NAME",
}

// SetDefaults registers defaults and environment bindings on v. Call it
// before reading a config file or binding flags.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("scraper.base_url", "https://api.firecrawl.dev")
	v.SetDefault("scraper.timeout", "60s")
	v.SetDefault("scraper.poll_interval", "2s")
	v.SetDefault("scraper.rps", 2.0)
	v.SetDefault("scraper.burst", 5)
	v.SetDefault("llm.base_url", "https://api.openai.com")
	v.SetDefault("llm.timeout", "120s")
	v.SetDefault("llm.rps", 5.0)
	v.SetDefault("llm.burst", 10)
	v.SetDefault("llm.model", DefaultModel)
	v.SetDefault("search.base_url", DefaultSearchBaseURL)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)
	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.endpoint", "localhost:4318")
	v.SetDefault("tracing.service_name", "flightadvisor")

	for key, env := range keys {
		_ = v.BindEnv(key, env)
	}
}

func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	return v
}

func Load(v *viper.Viper) (Config, error) {
	cfg := Config{
		Port:           v.GetString("port"),
		ScraperAPIKey:  strings.TrimSpace(v.GetString("scraper.api_key")),
		ScraperBaseURL: strings.TrimRight(v.GetString("scraper.base_url"), "/"),
		ScraperRPS:     v.GetFloat64("scraper.rps"),
		ScraperBurst:   v.GetInt("scraper.burst"),
		LLMAPIKey:      strings.TrimSpace(v.GetString("llm.api_key")),
		LLMBaseURL:     strings.TrimRight(v.GetString("llm.base_url"), "/"),
		LLMRPS:         v.GetFloat64("llm.rps"),
		LLMBurst:       v.GetInt("llm.burst"),
		DefaultModel:   v.GetString("llm.model"),
		AllowedModels:  appendUnique(DefaultModels, splitList(v.GetStringSlice("llm.allowed_models"))...),
		SearchBaseURL:  strings.TrimRight(v.GetString("search.base_url"), "/"),
		LogLevel:       v.GetString("log.level"),
		LogDevelopment: v.GetBool("log.development"),
		TracingEnabled: v.GetBool("tracing.enabled"),
		OTLPEndpoint:   v.GetString("tracing.endpoint"),
		ServiceName:    v.GetString("tracing.service_name"),
	}

	var err error
	if cfg.ScraperTimeout, err = duration(v, "scraper.timeout"); err != nil {
		return Config{}, err
	}
	if cfg.ExtractPollInterval, err = duration(v, "scraper.poll_interval"); err != nil {
		return Config{}, err
	}
	if cfg.LLMTimeout, err = duration(v, "llm.timeout"); err != nil {
		return Config{}, err
	}

	if cfg.ScraperBaseURL == "" || cfg.LLMBaseURL == "" || cfg.SearchBaseURL == "" {
		return Config{}, errors.New("config: base URLs must not be empty")
	}
	if cfg.DefaultModel == "" {
		cfg.DefaultModel = DefaultModel
	}
	cfg.AllowedModels = appendUnique(cfg.AllowedModels, cfg.DefaultModel)

	return cfg, nil
}

func (c Config) ModelAllowed(model string) bool {
	for _, m := range c.AllowedModels {
		if m == model {
			return true
		}
	}
	return false
}

func duration(v *viper.Viper, key string) (time.Duration, error) {
	d, err := time.ParseDuration(v.GetString(key))
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("config: %s must be positive", key)
	}
	return d, nil
}

// splitList accepts both list values and a single comma separated string,
// which is how list values arrive from the environment.
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// appendUnique returns a new slice holding base followed by the extras not
// already present.
func appendUnique(base []string, extras ...string) []string {
	out := make([]string, 0, len(base)+len(extras))
	seen := make(map[string]bool, len(base)+len(extras))
	for _, m := range append(append([]string{}, base...), extras...) {
		if seen[m] {
			continue
		}
		seen[m] = true
		out = append(out, m)
	}
	return out
}
