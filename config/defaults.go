package config

import "time"

// DefaultSystemPrompt is the base prompt used when none is configured.
const DefaultSystemPrompt = "You are Nova, a steady, plain-spoken companion. " +
	"Keep replies short and grounded. Never interrogate."

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		App: AppConfig{
			Name:        "nova",
			Version:     "dev",
			Environment: "development",
			Debug:       false,
		},
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
			HTTP: HTTPConfig{
				ReadTimeout:     30 * time.Second,
				WriteTimeout:    60 * time.Second,
				IdleTimeout:     120 * time.Second,
				ShutdownTimeout: 15 * time.Second,
				MaxHeaderBytes:  1 << 20, // 1MB
			},
			CORS: CORSConfig{
				Enabled:        true,
				AllowedOrigins: []string{"*"},
				AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
				AllowedHeaders: []string{"Content-Type", "Authorization", "X-Request-ID"},
				MaxAge:         300,
			},
			RateLimit: RateLimitConfig{
				Enabled:           true,
				RequestsPerSecond: 2,
				Burst:             5,
			},
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Storage: StorageConfig{
			Type: "memory",
			Badger: BadgerConfig{
				Path:             "./data/badger",
				SyncWrites:       true,
				ValueLogFileSize: 256 << 20, // 256MB
			},
			Redis: RedisConfig{
				Address: "localhost:6379",
				DB:      0,
			},
		},
		Voice: VoiceConfig{
			SystemPrompt:       DefaultSystemPrompt,
			ReflectionCooldown: 45 * time.Second,
			ContinuityCooldown: 10 * time.Minute,
			CooldownBackend:    "memory",
			DecisionLogPath:    "./data/decisions.ndjson",
			DecisionBuffer:     200,
		},
		Model: ModelConfig{
			Provider: "openai",
			Timeout:  20 * time.Second,
			OpenAI: OpenAIConfig{
				BaseURL: "https://api.openai.com/v1",
				Model:   "gpt-4o-mini",
			},
			Gemini: GeminiConfig{
				Model: "gemini-2.0-flash",
			},
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Port:    9091,
			Path:    "/metrics",
		},
		Tracing: TracingConfig{
			Enabled:    false,
			Endpoint:   "localhost:4317",
			Timeout:    10 * time.Second,
			SampleRate: 0.1,
		},
	}
}
