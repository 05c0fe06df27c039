package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultBaseURL             = "https://api.perplexity.ai"
	DefaultChatCompletionsPath = "/chat/completions"
	DefaultModel               = "sonar"
	DefaultTemperature         = 0.7
	DefaultMaxTokens           = 2000
)

func (d *Duration) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "" || s == "null" {
		d.Duration = 0
		return nil
	}
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		u, err := strconv.Unquote(s)
		if err != nil {
			return err
		}
		return d.parse(u)
	}

	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("duration must be a JSON string like \"5s\" or an int nanoseconds: %w", err)
	}
	d.Duration = time.Duration(n)
	return nil
}

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("duration must be a scalar, line %d", node.Line)
	}
	if node.Tag == "!!int" {
		n, err := strconv.ParseInt(node.Value, 10, 64)
		if err != nil {
			return err
		}
		d.Duration = time.Duration(n)
		return nil
	}
	return d.parse(node.Value)
}

func (d *Duration) parse(s string) error {
	s = strings.TrimSpace(s)
	if s == "" || s == "null" {
		d.Duration = 0
		return nil
	}
	dd, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	d.Duration = dd
	return nil
}

func defaultConfig() *Config {
	return &Config{
		Env: "development",
		HTTP: HTTPConfig{
			Addr:              ":8080",
			ReadHeaderTimeout: Duration{Duration: 5 * time.Second},
			IdleTimeout:       Duration{Duration: 2 * time.Minute},
			ShutdownTimeout:   Duration{Duration: 15 * time.Second},
			MaxRequestBytes:   64 << 10,
			CORSOrigins: []string{
				"http://localhost:3000",
				"http://localhost:5173",
				"http://127.0.0.1:3000",
				"http://127.0.0.1:5173",
			},
		},
		Engine: EngineConfig{
			Type:                "oai_http",
			BaseURL:             DefaultBaseURL,
			ChatCompletionsPath: DefaultChatCompletionsPath,
			Model:               DefaultModel,
			Temperature:         DefaultTemperature,
			MaxTokens:           DefaultMaxTokens,
			Retry:               RetryConfig{MaxAttempts: 1},
		},
		Otel: OtelConfig{
			ServiceName: "debate-motions",
			SampleRatio: 0.1,
		},
	}
}

// Load builds the configuration from defaults, an optional config file and
// environment overrides. A missing API key is not an error here; the engine
// reports it on each request.
func Load() (*Config, error) {
	return load(os.Getenv)
}

func load(getenv func(string) string) (*Config, error) {
	env := func(key string) string { return strings.TrimSpace(getenv(key)) }
	cfg := defaultConfig()

	cfgPath := env("MOTIONS_CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = discoverConfigFile()
	}
	if cfgPath != "" {
		if err := decodeFile(cfgPath, cfg); err != nil {
			return nil, err
		}
	}

	if v := env("LOG_MODE"); v != "" {
		cfg.Env = v
	}
	if v := env("MOTIONS_HTTP_ADDR"); v != "" {
		cfg.HTTP.Addr = v
	}
	if v := env("MOTIONS_ENGINE"); v != "" {
		cfg.Engine.Type = v
	}
	if v := env("PERPLEXITY_API_KEY"); v != "" {
		cfg.Engine.APIKey = v
	}
	if v := env("PERPLEXITY_BASE_URL"); v != "" {
		cfg.Engine.BaseURL = v
	}
	if v := env("PERPLEXITY_MODEL"); v != "" {
		cfg.Engine.Model = v
	}
	if v := env("OTEL_ENABLED"); v != "" {
		cfg.Otel.Enabled = parseBool(v)
	}
	if v := env("OTEL_EXPORTER_OTLP_ENDPOINT"); v != "" {
		cfg.Otel.Endpoint = v
	}
	if v := env("OTEL_EXPORTER_OTLP_INSECURE"); v != "" {
		cfg.Otel.Insecure = parseBool(v)
	}
	if v := env("OTEL_SAMPLER_RATIO"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid OTEL_SAMPLER_RATIO %q: %w", v, err)
		}
		cfg.Otel.SampleRatio = f
	}

	if err := normalize(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func discoverConfigFile() string {
	wd, err := os.Getwd()
	if err != nil {
		return ""
	}
	for _, name := range []string{"config.yaml", "config.yml", "config.json"} {
		p := filepath.Join(wd, "config", name)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

func decodeFile(path string, cfg *Config) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return fmt.Errorf("decode config %s: %w", path, err)
		}
	default:
		if err := json.Unmarshal(b, cfg); err != nil {
			return fmt.Errorf("decode config %s: %w", path, err)
		}
	}
	return nil
}

func normalize(cfg *Config) error {
	cfg.Env = strings.TrimSpace(cfg.Env)
	if cfg.Env == "" {
		cfg.Env = "development"
	}
	if strings.TrimSpace(cfg.HTTP.Addr) == "" {
		cfg.HTTP.Addr = ":8080"
	}
	if cfg.HTTP.MaxRequestBytes <= 0 {
		cfg.HTTP.MaxRequestBytes = 64 << 10
	}
	if cfg.HTTP.ShutdownTimeout.Duration <= 0 {
		cfg.HTTP.ShutdownTimeout = Duration{Duration: 15 * time.Second}
	}

	e := &cfg.Engine
	e.Type = strings.ToLower(strings.TrimSpace(e.Type))
	e.APIKey = strings.TrimSpace(e.APIKey)
	e.BaseURL = strings.TrimRight(strings.TrimSpace(e.BaseURL), "/")
	e.ChatCompletionsPath = strings.TrimSpace(e.ChatCompletionsPath)
	e.Model = strings.TrimSpace(e.Model)

	switch e.Type {
	case "mock":
	case "", "oai_http", "openai_http", "perplexity":
		e.Type = "oai_http"
		if e.BaseURL == "" {
			e.BaseURL = DefaultBaseURL
		}
		if e.ChatCompletionsPath == "" {
			e.ChatCompletionsPath = DefaultChatCompletionsPath
		}
		if !strings.HasPrefix(e.ChatCompletionsPath, "/") {
			e.ChatCompletionsPath = "/" + e.ChatCompletionsPath
		}
	default:
		return fmt.Errorf("unsupported engine.type %q", e.Type)
	}

	if e.Model == "" {
		e.Model = DefaultModel
	}
	if e.Temperature < 0 || e.Temperature > 2 {
		return fmt.Errorf("invalid engine.temperature %v", e.Temperature)
	}
	if e.MaxTokens < 0 {
		return errors.New("invalid engine.max_tokens")
	}
	if e.MaxTokens == 0 {
		e.MaxTokens = DefaultMaxTokens
	}
	if e.Timeout.Duration < 0 {
		return errors.New("invalid engine.timeout")
	}

	if e.Retry.MaxAttempts < 0 {
		return errors.New("invalid engine.retry.max_attempts")
	}
	if e.Retry.MaxAttempts == 0 {
		e.Retry.MaxAttempts = 1
	}
	if e.Retry.BaseDelay.Duration <= 0 {
		e.Retry.BaseDelay = Duration{Duration: time.Second}
	}
	if e.Retry.MaxDelay.Duration <= 0 {
		e.Retry.MaxDelay = Duration{Duration: 10 * time.Second}
	}

	if strings.TrimSpace(cfg.Otel.ServiceName) == "" {
		cfg.Otel.ServiceName = "debate-motions"
	}
	if cfg.Otel.SampleRatio < 0 {
		cfg.Otel.SampleRatio = 0
	}
	if cfg.Otel.SampleRatio > 1 {
		cfg.Otel.SampleRatio = 1
	}
	return nil
}

func parseBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "t", "true", "y", "yes", "on":
		return true
	default:
		return false
	}
}
