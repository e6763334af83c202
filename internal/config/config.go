package config

import (
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// readSecret reads a Docker secret from a file path specified by an env var
// with _FILE suffix. If FOO is already set directly, the file is skipped.
// If FOO_FILE is set, reads the file content and sets FOO.
func readSecret(envKey string) {
	if os.Getenv(envKey) != "" {
		return
	}
	fileKey := envKey + "_FILE"
	filePath := os.Getenv(fileKey)
	if filePath == "" {
		return
	}
	data, err := os.ReadFile(filePath)
	if err != nil {
		return
	}
	val := strings.TrimSpace(string(data))
	os.Setenv(envKey, val)
}

type Config struct {
	Server    ServerConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	LLM       LLMConfig
	Groq      GroqConfig
	OpenAI    OpenAIConfig
	Gemini    GeminiConfig
	Ollama    OllamaConfig
	Sentry    SentryConfig
	Langfuse  LangfuseConfig
	Composer  ComposerConfig
}

type ServerConfig struct {
	Port     string
	Env      string
	LogLevel string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type RateLimitConfig struct {
	SoundtrackPerMin int
	MetadataPerMin   int
	ComposePerMin    int
}

// LLMConfig selects the provider used by both flows.
type LLMConfig struct {
	Provider string
	Timeout  int // seconds, 0 disables the transport timeout
}

type GroqConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

type GeminiConfig struct {
	APIKey string
	Model  string
}

type OllamaConfig struct {
	BaseURL string
	Model   string
	Timeout time.Duration
}

type SentryConfig struct {
	DSN        string
	SampleRate float64
}

type LangfuseConfig struct {
	Enabled   bool
	PublicKey string
	SecretKey string
	Host      string
}

type ComposerConfig struct {
	SessionTTL   int // minutes
	SubmitPolicy string
}

// IsProduction reports whether the server runs with env=production.
func (c *ServerConfig) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

func Load() (*Config, error) {
	// Read Docker Swarm secrets from _FILE env vars before Viper binds
	readSecret("REDIS_PASSWORD")
	readSecret("GROQ_API_KEY")
	readSecret("OPENAI_API_KEY")
	readSecret("GEMINI_API_KEY")
	readSecret("SENTRY_DSN")
	readSecret("LANGFUSE_SECRET_KEY")

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	// Environment variables
	v.AutomaticEnv()

	// Bind environment variables with underscores to nested config keys
	_ = v.BindEnv("server.port", "SERVER_PORT")
	_ = v.BindEnv("server.env", "SERVER_ENV")
	_ = v.BindEnv("server.log_level", "LOG_LEVEL")
	_ = v.BindEnv("redis.addr", "REDIS_ADDR")
	_ = v.BindEnv("redis.password", "REDIS_PASSWORD")
	_ = v.BindEnv("redis.db", "REDIS_DB")
	_ = v.BindEnv("ratelimit.soundtrack_per_min", "RATELIMIT_SOUNDTRACK_PER_MIN")
	_ = v.BindEnv("ratelimit.metadata_per_min", "RATELIMIT_METADATA_PER_MIN")
	_ = v.BindEnv("ratelimit.compose_per_min", "RATELIMIT_COMPOSE_PER_MIN")
	_ = v.BindEnv("llm.provider", "LLM_PROVIDER")
	_ = v.BindEnv("llm.timeout", "LLM_TIMEOUT")
	_ = v.BindEnv("groq.api_key", "GROQ_API_KEY")
	_ = v.BindEnv("groq.base_url", "GROQ_BASE_URL")
	_ = v.BindEnv("groq.model", "GROQ_MODEL")
	_ = v.BindEnv("openai.api_key", "OPENAI_API_KEY")
	_ = v.BindEnv("openai.base_url", "OPENAI_BASE_URL")
	_ = v.BindEnv("openai.model", "OPENAI_MODEL")
	_ = v.BindEnv("gemini.api_key", "GEMINI_API_KEY")
	_ = v.BindEnv("gemini.model", "GEMINI_MODEL")
	_ = v.BindEnv("ollama.base_url", "OLLAMA_BASE_URL")
	_ = v.BindEnv("ollama.model", "OLLAMA_MODEL")
	_ = v.BindEnv("sentry.dsn", "SENTRY_DSN")
	_ = v.BindEnv("sentry.sample_rate", "SENTRY_SAMPLE_RATE")
	_ = v.BindEnv("langfuse.enabled", "LANGFUSE_ENABLED")
	_ = v.BindEnv("langfuse.public_key", "LANGFUSE_PUBLIC_KEY")
	_ = v.BindEnv("langfuse.secret_key", "LANGFUSE_SECRET_KEY")
	_ = v.BindEnv("langfuse.host", "LANGFUSE_HOST")
	_ = v.BindEnv("composer.session_ttl", "COMPOSER_SESSION_TTL")
	_ = v.BindEnv("composer.submit_policy", "COMPOSER_SUBMIT_POLICY")

	// Defaults
	v.SetDefault("server.port", "8000")
	v.SetDefault("server.env", "development")
	v.SetDefault("server.log_level", "info")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("ratelimit.soundtrack_per_min", 20)
	v.SetDefault("ratelimit.metadata_per_min", 30)
	v.SetDefault("ratelimit.compose_per_min", 10)

	// Provider defaults
	v.SetDefault("llm.provider", "groq")
	v.SetDefault("llm.timeout", 120)
	v.SetDefault("groq.base_url", "https://api.groq.com/openai/v1")
	v.SetDefault("groq.model", "llama-3.3-70b-versatile")
	v.SetDefault("openai.model", "gpt-4.1-mini")
	v.SetDefault("gemini.model", "gemini-2.5-flash")
	v.SetDefault("ollama.base_url", "http://localhost:11434")
	v.SetDefault("ollama.model", "qwen3:8b")

	// Observability defaults
	v.SetDefault("sentry.sample_rate", 1.0)
	v.SetDefault("langfuse.enabled", false)
	v.SetDefault("langfuse.host", "https://cloud.langfuse.com")

	// Composer defaults
	v.SetDefault("composer.session_ttl", 30)
	v.SetDefault("composer.submit_policy", "reject")

	// Try to read config file (optional)
	_ = v.ReadInConfig()

	timeout := time.Duration(v.GetInt("llm.timeout")) * time.Second

	cfg := &Config{
		Server: ServerConfig{
			Port:     v.GetString("server.port"),
			Env:      v.GetString("server.env"),
			LogLevel: v.GetString("server.log_level"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("redis.addr"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		RateLimit: RateLimitConfig{
			SoundtrackPerMin: v.GetInt("ratelimit.soundtrack_per_min"),
			MetadataPerMin:   v.GetInt("ratelimit.metadata_per_min"),
			ComposePerMin:    v.GetInt("ratelimit.compose_per_min"),
		},
		LLM: LLMConfig{
			Provider: strings.ToLower(v.GetString("llm.provider")),
			Timeout:  v.GetInt("llm.timeout"),
		},
		Groq: GroqConfig{
			APIKey:  v.GetString("groq.api_key"),
			BaseURL: v.GetString("groq.base_url"),
			Model:   v.GetString("groq.model"),
			Timeout: timeout,
		},
		OpenAI: OpenAIConfig{
			APIKey:  v.GetString("openai.api_key"),
			BaseURL: v.GetString("openai.base_url"),
			Model:   v.GetString("openai.model"),
		},
		Gemini: GeminiConfig{
			APIKey: v.GetString("gemini.api_key"),
			Model:  v.GetString("gemini.model"),
		},
		Ollama: OllamaConfig{
			BaseURL: v.GetString("ollama.base_url"),
			Model:   v.GetString("ollama.model"),
			Timeout: timeout,
		},
		Sentry: SentryConfig{
			DSN:        v.GetString("sentry.dsn"),
			SampleRate: v.GetFloat64("sentry.sample_rate"),
		},
		Langfuse: LangfuseConfig{
			Enabled:   v.GetBool("langfuse.enabled"),
			PublicKey: v.GetString("langfuse.public_key"),
			SecretKey: v.GetString("langfuse.secret_key"),
			Host:      v.GetString("langfuse.host"),
		},
		Composer: ComposerConfig{
			SessionTTL:   v.GetInt("composer.session_ttl"),
			SubmitPolicy: strings.ToLower(v.GetString("composer.submit_policy")),
		},
	}

	return cfg, nil
}
