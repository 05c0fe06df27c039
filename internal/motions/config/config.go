package config

import "time"

type Duration struct {
	Duration time.Duration
}

type HTTPConfig struct {
	Addr              string   `json:"addr" yaml:"addr"`
	ReadHeaderTimeout Duration `json:"read_header_timeout" yaml:"read_header_timeout"`
	IdleTimeout       Duration `json:"idle_timeout" yaml:"idle_timeout"`
	ShutdownTimeout   Duration `json:"shutdown_timeout" yaml:"shutdown_timeout"`
	MaxRequestBytes   int64    `json:"max_request_bytes" yaml:"max_request_bytes"`

	// CORSOrigins lists the browser origins allowed to call the API.
	CORSOrigins []string `json:"cors_origins,omitempty" yaml:"cors_origins,omitempty"`
}

type RetryConfig struct {
	// MaxAttempts is the total number of inference attempts. 1 disables retries.
	MaxAttempts int      `json:"max_attempts,omitempty" yaml:"max_attempts,omitempty"`
	BaseDelay   Duration `json:"base_delay,omitempty" yaml:"base_delay,omitempty"`
	MaxDelay    Duration `json:"max_delay,omitempty" yaml:"max_delay,omitempty"`
}

type EngineConfig struct {
	// Type is "oai_http" (Perplexity or any OpenAI-compatible server) or "mock".
	Type string `json:"type" yaml:"type"`

	BaseURL             string `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	ChatCompletionsPath string `json:"chat_completions_path,omitempty" yaml:"chat_completions_path,omitempty"`

	// APIKey is sent as `Authorization: Bearer <api_key>`. It may be empty at
	// load time; the engine reports that per request.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	Model       string  `json:"model,omitempty" yaml:"model,omitempty"`
	Temperature float64 `json:"temperature,omitempty" yaml:"temperature,omitempty"`
	MaxTokens   int     `json:"max_tokens,omitempty" yaml:"max_tokens,omitempty"`

	// Timeout bounds the HTTP client. Zero leaves cancellation to the caller.
	Timeout Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`

	Retry RetryConfig `json:"retry,omitempty" yaml:"retry,omitempty"`
}

type OtelConfig struct {
	Enabled     bool    `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	ServiceName string  `json:"service_name,omitempty" yaml:"service_name,omitempty"`
	Endpoint    string  `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
	Insecure    bool    `json:"insecure,omitempty" yaml:"insecure,omitempty"`
	SampleRatio float64 `json:"sample_ratio,omitempty" yaml:"sample_ratio,omitempty"`
}

type Config struct {
	Env    string       `json:"env" yaml:"env"`
	HTTP   HTTPConfig   `json:"http" yaml:"http"`
	Engine EngineConfig `json:"engine" yaml:"engine"`
	Otel   OtelConfig   `json:"otel,omitempty" yaml:"otel,omitempty"`
}
