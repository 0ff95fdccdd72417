// Package config provides configuration management for Nova.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the global configuration for the Nova backend.
type Config struct {
	// App is the application configuration.
	App AppConfig `mapstructure:"app" validate:"required"`

	// Server is the HTTP server configuration.
	Server ServerConfig `mapstructure:"server" validate:"required"`

	// Log is the logging configuration.
	Log LogConfig `mapstructure:"log" validate:"required"`

	// Storage is the persistence configuration.
	Storage StorageConfig `mapstructure:"storage"`

	// Voice is the response gating configuration.
	Voice VoiceConfig `mapstructure:"voice"`

	// Model is the external language-model configuration.
	Model ModelConfig `mapstructure:"model"`

	// Metrics is the observability configuration.
	Metrics MetricsConfig `mapstructure:"metrics"`

	// Tracing is the distributed tracing configuration.
	Tracing TracingConfig `mapstructure:"tracing"`
}

// AppConfig holds application metadata and settings.
type AppConfig struct {
	// Name is the application name.
	Name string `mapstructure:"name" validate:"required"`

	// Version is the application version.
	Version string `mapstructure:"version"`

	// Environment is the runtime environment (development, staging, production).
	Environment string `mapstructure:"environment" validate:"oneof=development staging production"`

	// Debug enables debug mode with verbose logging.
	Debug bool `mapstructure:"debug"`
}

// ServerConfig holds the HTTP server configuration.
type ServerConfig struct {
	// Host is the bind address.
	Host string `mapstructure:"host"`

	// Port is the HTTP API port.
	Port int `mapstructure:"port" validate:"required,min=1,max=65535"`

	// HTTP is the HTTP server tuning configuration.
	HTTP HTTPConfig `mapstructure:"http"`

	// CORS is the CORS configuration.
	CORS CORSConfig `mapstructure:"cors"`

	// RateLimit is the per-user request rate limit configuration.
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

// HTTPConfig holds HTTP-specific settings.
type HTTPConfig struct {
	// ReadTimeout is the maximum duration for reading the entire request.
	ReadTimeout time.Duration `mapstructure:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out writes.
	WriteTimeout time.Duration `mapstructure:"write_timeout"`

	// IdleTimeout is the maximum amount of time to wait for the next request.
	IdleTimeout time.Duration `mapstructure:"idle_timeout"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown.
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`

	// MaxHeaderBytes limits the size of request headers.
	MaxHeaderBytes int `mapstructure:"max_header_bytes"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	// Enabled enables CORS support.
	Enabled bool `mapstructure:"enabled"`

	// AllowedOrigins is the list of allowed origins.
	AllowedOrigins []string `mapstructure:"allowed_origins"`

	// AllowedMethods is the list of allowed HTTP methods.
	AllowedMethods []string `mapstructure:"allowed_methods"`

	// AllowedHeaders is the list of allowed headers.
	AllowedHeaders []string `mapstructure:"allowed_headers"`

	// AllowCredentials indicates whether credentials are allowed.
	AllowCredentials bool `mapstructure:"allow_credentials"`

	// MaxAge is the maximum age of CORS preflight cache in seconds.
	MaxAge int `mapstructure:"max_age"`
}

// RateLimitConfig holds per-user rate limiting settings for the chat route.
type RateLimitConfig struct {
	// Enabled enables rate limiting.
	Enabled bool `mapstructure:"enabled"`

	// RequestsPerSecond is the sustained per-user request rate.
	RequestsPerSecond float64 `mapstructure:"requests_per_second" validate:"min=0"`

	// Burst is the per-user burst allowance.
	Burst int `mapstructure:"burst" validate:"min=0"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	// Level is the log level (debug, info, warn, error).
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`

	// Format is the output format (json, text).
	Format string `mapstructure:"format" validate:"oneof=json text"`

	// Output is the output destination (stdout, stderr, or file path).
	Output string `mapstructure:"output"`
}

// StorageConfig holds persistence settings.
type StorageConfig struct {
	// Type selects the storage backend (memory, badger).
	Type string `mapstructure:"type" validate:"oneof=memory badger"`

	// Badger holds Badger-specific settings.
	Badger BadgerConfig `mapstructure:"badger"`

	// Redis holds Redis connection settings (cooldown backend).
	Redis RedisConfig `mapstructure:"redis"`
}

// BadgerConfig holds Badger storage settings.
type BadgerConfig struct {
	// Path is the on-disk database directory.
	Path string `mapstructure:"path"`

	// SyncWrites forces fsync on every write.
	SyncWrites bool `mapstructure:"sync_writes"`

	// ValueLogFileSize is the maximum value log file size in bytes.
	ValueLogFileSize int64 `mapstructure:"value_log_file_size"`
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	// Address is the Redis server address.
	Address string `mapstructure:"address"`

	// Password is the Redis password.
	Password string `mapstructure:"password"`

	// DB is the Redis database number.
	DB int `mapstructure:"db"`
}

// VoiceConfig holds response gating settings. The section is hot-reloadable
// via the config watcher.
type VoiceConfig struct {
	// SystemPrompt is the base system prompt sent on model calls.
	SystemPrompt string `mapstructure:"system_prompt"`

	// ReflectionCooldown is the minimum gap between reflection lines for one
	// conversation.
	ReflectionCooldown time.Duration `mapstructure:"reflection_cooldown"`

	// ContinuityCooldown is the minimum gap between memory references for one
	// conversation.
	ContinuityCooldown time.Duration `mapstructure:"continuity_cooldown"`

	// CooldownBackend selects the cooldown store backend (memory, redis).
	CooldownBackend string `mapstructure:"cooldown_backend" validate:"oneof=memory redis"`

	// DecisionLogPath is the durable NDJSON decision log file.
	DecisionLogPath string `mapstructure:"decision_log_path"`

	// DecisionBuffer caps the in-memory decision records kept per user.
	DecisionBuffer int `mapstructure:"decision_buffer" validate:"min=1"`
}

// ModelConfig holds the external language-model settings.
type ModelConfig struct {
	// Provider selects the model caller (openai, gemini).
	Provider string `mapstructure:"provider" validate:"oneof=openai gemini"`

	// Timeout bounds a single completion call.
	Timeout time.Duration `mapstructure:"timeout"`

	// OpenAI holds settings for OpenAI-compatible endpoints.
	OpenAI OpenAIConfig `mapstructure:"openai"`

	// Gemini holds settings for the Gemini API.
	Gemini GeminiConfig `mapstructure:"gemini"`
}

// OpenAIConfig holds settings for an OpenAI-compatible chat completions API.
type OpenAIConfig struct {
	// BaseURL is the API base URL.
	BaseURL string `mapstructure:"base_url"`

	// APIKey is the bearer token.
	APIKey string `mapstructure:"api_key"`

	// Model is the model identifier.
	Model string `mapstructure:"model"`
}

// GeminiConfig holds settings for the Gemini API.
type GeminiConfig struct {
	// APIKey is the API key.
	APIKey string `mapstructure:"api_key"`

	// Model is the model identifier.
	Model string `mapstructure:"model"`
}

// MetricsConfig holds Prometheus settings.
type MetricsConfig struct {
	// Enabled enables the metrics endpoint.
	Enabled bool `mapstructure:"enabled"`

	// Port is the metrics listener port.
	Port int `mapstructure:"port" validate:"min=0,max=65535"`

	// Path is the metrics endpoint path.
	Path string `mapstructure:"path"`
}

// TracingConfig holds OpenTelemetry settings.
type TracingConfig struct {
	// Enabled enables trace export.
	Enabled bool `mapstructure:"enabled"`

	// Endpoint is the OTLP/gRPC collector endpoint.
	Endpoint string `mapstructure:"endpoint"`

	// Timeout bounds span export.
	Timeout time.Duration `mapstructure:"timeout"`

	// SampleRate is the trace sampling ratio in [0,1].
	SampleRate float64 `mapstructure:"sample_rate" validate:"min=0,max=1"`
}

// String renders the configuration for debug logging with secrets redacted.
func (c *Config) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "app=%s env=%s ", c.App.Name, c.App.Environment)
	fmt.Fprintf(&sb, "server=%s:%d ", c.Server.Host, c.Server.Port)
	fmt.Fprintf(&sb, "log=%s/%s ", c.Log.Level, c.Log.Format)
	fmt.Fprintf(&sb, "storage=%s ", c.Storage.Type)
	fmt.Fprintf(&sb, "model=%s timeout=%s ", c.Model.Provider, c.Model.Timeout)
	fmt.Fprintf(&sb, "cooldowns=%s/%s ", c.Voice.ReflectionCooldown, c.Voice.ContinuityCooldown)
	fmt.Fprintf(&sb, "metrics=%t tracing=%t", c.Metrics.Enabled, c.Tracing.Enabled)
	return sb.String()
}
