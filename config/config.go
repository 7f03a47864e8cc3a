package config

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config represents the complete application configuration
type Config struct {
	Server        ServerConfig
	Database      DatabaseConfig
	Auth          AuthConfig
	Providers     ProvidersConfig
	Gateway       GatewayConfig
	RateLimit     RateLimitConfig
	Observability ObservabilityConfig
	CORS          CORSConfig
	Environment   string
	Version       string
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// DatabaseConfig holds PostgreSQL database configuration.
// When ConnectionString (from DATABASE_URL) is set, it takes precedence over individual fields.
type DatabaseConfig struct {
	ConnectionString string // From DATABASE_URL when set
	Host             string
	Port             int
	User             string
	Password         string
	Database         string
	SSLMode          string
	MaxOpenConns     int
	MaxIdleConns     int
	ConnMaxLifetime  time.Duration
}

// AuthConfig holds token signing and password hashing settings
type AuthConfig struct {
	JWTSecret  string
	TokenTTL   time.Duration
	BcryptCost int
}

// ProvidersConfig holds inference provider credentials and endpoints
type ProvidersConfig struct {
	HuggingFace HuggingFaceConfig
	Groq        GroqConfig
	Gemini      GeminiConfig
	// Timeout bounds a single provider invocation, not the whole chain.
	Timeout time.Duration
}

// HuggingFaceConfig holds Hugging Face router settings
type HuggingFaceConfig struct {
	Token string
	// ChatBaseURL serves the OpenAI-compatible /chat/completions endpoint.
	ChatBaseURL string
	// InferenceBaseURL serves task models at <InferenceBaseURL>/<model>.
	InferenceBaseURL string
}

// GroqConfig holds Groq settings
type GroqConfig struct {
	APIKey  string
	BaseURL string
}

// GeminiConfig holds Gemini settings. The adapter is only registered when APIKey is set.
type GeminiConfig struct {
	APIKey string
	Model  string
}

// GatewayConfig holds input limits and the model id for each chain step
type GatewayConfig struct {
	SummarizeMinChars   int
	SummarizeMaxChars   int
	TranscribeMinChars  int
	ChatContextMaxChars int
	MaxUploadBytes      int64

	ChatModel          string
	ChatBackupModel    string
	SummarizationModel string
	VisionModel        string
}

// RateLimitConfig holds the Redis-backed AI rate limiter settings.
// An empty RedisAddr disables rate limiting.
type RateLimitConfig struct {
	RedisAddr         string
	RedisPassword     string
	RedisDB           int
	RequestsPerMinute int
}

// Enabled reports whether a Redis address was configured
func (c *RateLimitConfig) Enabled() bool {
	return c.RedisAddr != ""
}

// ObservabilityConfig holds monitoring and logging configuration
type ObservabilityConfig struct {
	LogLevel       string
	LogFormat      string // json or console
	MetricsEnabled bool
}

// CORSConfig holds allowed browser origins
type CORSConfig struct {
	AllowedOrigins []string
}

// New creates a new Config instance by loading environment variables
func New(ctx context.Context) (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load(".env")

	cfg := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Version:     getEnv("APP_VERSION", "1.0.0"),
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getPort(),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 120*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Database: loadDatabaseConfig(),
		Auth: AuthConfig{
			JWTSecret:  getEnv("JWT_SECRET", ""),
			TokenTTL:   getEnvAsDuration("JWT_TTL", 2*time.Hour),
			BcryptCost: getEnvAsInt("BCRYPT_COST", 10),
		},
		Providers: ProvidersConfig{
			HuggingFace: HuggingFaceConfig{
				Token:            getEnv("HF_ACCESS_TOKEN", ""),
				ChatBaseURL:      getEnv("HF_CHAT_BASE_URL", "https://router.huggingface.co/v1"),
				InferenceBaseURL: getEnv("HF_INFERENCE_BASE_URL", "https://router.huggingface.co/hf-inference/models"),
			},
			Groq: GroqConfig{
				APIKey:  getEnv("GROQ_API_KEY", ""),
				BaseURL: getEnv("GROQ_BASE_URL", "https://api.groq.com/openai/v1"),
			},
			Gemini: GeminiConfig{
				APIKey: getEnv("GEMINI_API_KEY", ""),
				Model:  getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
			},
			Timeout: getEnvAsDuration("PROVIDER_TIMEOUT", 30*time.Second),
		},
		Gateway: GatewayConfig{
			SummarizeMinChars:   getEnvAsInt("GATEWAY_SUMMARIZE_MIN_CHARS", 20),
			SummarizeMaxChars:   getEnvAsInt("GATEWAY_SUMMARIZE_MAX_CHARS", 12000),
			TranscribeMinChars:  getEnvAsInt("GATEWAY_TRANSCRIBE_MIN_CHARS", 50),
			ChatContextMaxChars: getEnvAsInt("GATEWAY_CHAT_CONTEXT_MAX_CHARS", 3000),
			MaxUploadBytes:      int64(getEnvAsInt("MAX_UPLOAD_BYTES", 10<<20)),
			ChatModel:           getEnv("GATEWAY_CHAT_MODEL", "Qwen/Qwen2.5-72B-Instruct"),
			ChatBackupModel:     getEnv("GATEWAY_CHAT_BACKUP_MODEL", "microsoft/Phi-3-mini-4k-instruct"),
			SummarizationModel:  getEnv("GATEWAY_SUMMARIZATION_MODEL", "sshleifer/distilbart-cnn-12-6"),
			VisionModel:         getEnv("GATEWAY_VISION_MODEL", "meta-llama/llama-4-scout-17b-16e-instruct"),
		},
		RateLimit: RateLimitConfig{
			RedisAddr:         getEnv("REDIS_ADDR", ""),
			RedisPassword:     getEnv("REDIS_PASSWORD", ""),
			RedisDB:           getEnvAsInt("REDIS_DB", 0),
			RequestsPerMinute: getEnvAsInt("AI_REQUESTS_PER_MINUTE", 30),
		},
		Observability: ObservabilityConfig{
			LogLevel:       getEnv("LOG_LEVEL", "info"),
			LogFormat:      getEnv("LOG_FORMAT", ""),
			MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173", "http://localhost:3000"}),
		},
	}

	// Validate the configuration
	if cfg.Observability.LogFormat == "" {
		cfg.Observability.LogFormat = "json"
		if cfg.IsDevelopment() {
			cfg.Observability.LogFormat = "console"
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// minProductionSecretLen is the HS256 key size floor outside development
const minProductionSecretLen = 32

// Validate checks if all required configuration fields are set
func (c *Config) Validate() error {
	// Database validation (DATABASE_URL or DB_* vars)
	if c.Database.ConnectionString == "" && c.Database.Host == "" {
		return fmt.Errorf("database configuration required: set DATABASE_URL or DB_HOST")
	}
	if c.Database.ConnectionString == "" {
		if c.Database.User == "" {
			return fmt.Errorf("database user is required")
		}
		if c.Database.Database == "" {
			return fmt.Errorf("database name is required")
		}
	}

	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("token TTL must be positive")
	}

	if c.Providers.HuggingFace.Token == "" {
		return fmt.Errorf("HF_ACCESS_TOKEN is required")
	}
	if c.Providers.Groq.APIKey == "" {
		return fmt.Errorf("GROQ_API_KEY is required")
	}
	if c.Providers.Timeout <= 0 {
		return fmt.Errorf("provider timeout must be positive")
	}

	if c.Gateway.SummarizeMinChars <= 0 || c.Gateway.SummarizeMaxChars <= 0 ||
		c.Gateway.TranscribeMinChars <= 0 || c.Gateway.ChatContextMaxChars <= 0 {
		return fmt.Errorf("gateway text limits must be positive")
	}
	if c.Gateway.SummarizeMinChars > c.Gateway.SummarizeMaxChars {
		return fmt.Errorf("summarize min chars exceeds max chars")
	}
	if c.Gateway.MaxUploadBytes <= 0 {
		return fmt.Errorf("max upload bytes must be positive")
	}

	if c.RateLimit.Enabled() && c.RateLimit.RequestsPerMinute <= 0 {
		return fmt.Errorf("AI_REQUESTS_PER_MINUTE must be positive when REDIS_ADDR is set")
	}

	// Observability validation
	if c.Observability.LogLevel == "" {
		return fmt.Errorf("log level is required")
	}

	if c.IsProduction() {
		if len(c.Auth.JWTSecret) < minProductionSecretLen {
			return fmt.Errorf("JWT_SECRET must be at least %d bytes in production", minProductionSecretLen)
		}
		for _, origin := range c.CORS.AllowedOrigins {
			if origin == "*" {
				return fmt.Errorf("CORS_ALLOWED_ORIGINS must not contain * in production")
			}
		}
	}

	return nil
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.Environment == "production" || c.Environment == "prod"
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development" || c.Environment == "dev"
}

// DSN returns the PostgreSQL connection string.
// Uses ConnectionString (from DATABASE_URL) when set; otherwise builds from individual fields.
func (c *DatabaseConfig) DSN() string {
	if c.ConnectionString != "" {
		return c.ConnectionString
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// LogString returns a safe string for logging (no password). Parses ConnectionString when set.
func (c *DatabaseConfig) LogString() string {
	if c.ConnectionString != "" {
		u, err := url.Parse(c.ConnectionString)
		if err == nil {
			host := u.Hostname()
			port := u.Port()
			if port == "" {
				port = "5432"
			}
			db := strings.TrimPrefix(u.Path, "/")
			return fmt.Sprintf("host=%s port=%s database=%s", host, port, db)
		}
		return "host=<from DATABASE_URL>"
	}
	return fmt.Sprintf("host=%s port=%d database=%s", c.Host, c.Port, c.Database)
}

func loadDatabaseConfig() DatabaseConfig {
	dbURL := getEnv("DATABASE_URL", "")
	if dbURL != "" {
		return DatabaseConfig{
			ConnectionString: dbURL,
			MaxOpenConns:     getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:     getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime:  getEnvAsDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		}
	}
	return DatabaseConfig{
		Host:            getEnv("DB_HOST", "localhost"),
		Port:            getEnvAsInt("DB_PORT", 5432),
		User:            getEnv("DB_USER", "synapse"),
		Password:        getEnv("DB_PASSWORD", "synapse"),
		Database:        getEnv("DB_NAME", "synapse"),
		SSLMode:         getEnv("DB_SSLMODE", "disable"),
		MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
		MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
		ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
	}
}

// Address returns the HTTP server address
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Helper functions

// getPort returns the server port from PORT or SERVER_PORT env vars (default: 3000)
func getPort() int {
	if value := os.Getenv("PORT"); value != "" {
		if p, err := strconv.Atoi(value); err == nil {
			return p
		}
	}
	if value := os.Getenv("SERVER_PORT"); value != "" {
		if p, err := strconv.Atoi(value); err == nil {
			return p
		}
	}
	return 3000
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsList splits a comma separated value, dropping blank entries
func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
