package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	ServerPort  string
	ServerHost  string
	BaseURL     string
	CORSOrigins []string
	LogLevel    string

	// Credential store (relational)
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	DBPath     string

	// Profile and conversation stores (document)
	MongoURI      string
	MongoDatabase string

	// Redis configuration
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	RedisURL      string

	// Session configuration
	SessionSecret     string
	SessionTTL        time.Duration
	SessionCookieName string
	CookieSecure      bool

	// Google OAuth configuration
	GoogleClientID     string
	GoogleClientSecret string

	// Text generation configuration
	LLMAPIKey  string
	LLMBaseURL string
	LLMModel   string
	LLMTimeout time.Duration

	// Chat rate limiting
	ChatRateLimit  int
	ChatRateWindow time.Duration
}

// GoogleCallbackURL is the absolute redirect URL registered with Google.
func (c *Config) GoogleCallbackURL() string {
	return strings.TrimRight(c.BaseURL, "/") + "/auth/google/callback"
}

// GoogleEnabled reports whether federated login can be offered.
func (c *Config) GoogleEnabled() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != ""
}

// PostgresDSN builds the connection string for the credential store.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}

// LoadConfig creates a new Config instance with values from environment variables or secrets
func LoadConfig() (*Config, error) {
	env := GetEnvironment()

	// A missing .env is normal outside local development
	if env == Development || env == Test {
		_ = godotenv.Load()
	}

	cfg := &Config{
		ServerPort:  getEnv("SERVER_PORT", "5000"),
		ServerHost:  getEnv("SERVER_HOST", "0.0.0.0"),
		BaseURL:     getEnv("BASE_URL", "http://localhost:5000"),
		CORSOrigins: splitList(getEnv("CORS_ORIGINS", "http://localhost:5000")),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		DBDriver:  getEnv("DB_DRIVER", "postgres"),
		DBHost:    getEnv("DB_HOST", "localhost"),
		DBPort:    getEnv("DB_PORT", "5432"),
		DBUser:    getSecret("DB_USER", "db_user", "postgres"),
		DBName:    getEnv("DB_NAME", "vitalchat"),
		DBSSLMode: getEnv("DB_SSL_MODE", "disable"),
		DBPath:    getEnv("DB_PATH", "vitalchat.db"),

		MongoURI:      getSecret("MONGO_URI", "mongo_uri", "mongodb://localhost:27017"),
		MongoDatabase: getEnv("MONGO_DATABASE", "vitalchat"),

		RedisHost: getEnv("REDIS_HOST", "localhost"),
		RedisPort: getEnv("REDIS_PORT", "6379"),
		RedisURL:  getSecret("REDIS_URL", "redis_url", ""),

		SessionCookieName: getEnv("SESSION_COOKIE_NAME", "vitalchat.sid"),
		CookieSecure:      env == Production,

		GoogleClientID: getEnv("GOOGLE_CLIENT_ID", ""),

		LLMBaseURL: getEnv("LLM_BASE_URL", "https://generativelanguage.googleapis.com/v1beta/openai/"),
		LLMModel:   getEnv("LLM_MODEL", "gemini-2.5-flash"),
	}

	// Secrets: environment first, then Docker secrets
	cfg.DBPassword = getSecret("DB_PASSWORD", "db_password", "")
	cfg.RedisPassword = getSecret("REDIS_PASSWORD", "redis_password", "")
	cfg.SessionSecret = getSecret("SESSION_SECRET", "session_secret", "")
	cfg.GoogleClientSecret = getSecret("GOOGLE_CLIENT_SECRET", "google_client_secret", "")
	cfg.LLMAPIKey = getSecret("GOOGLE_API_KEY", "google_api_key", "")

	var err error
	if cfg.RedisDB, err = getInt("REDIS_DB", 0); err != nil {
		return nil, err
	}
	if cfg.ChatRateLimit, err = getInt("CHAT_RATE_LIMIT", 30); err != nil {
		return nil, err
	}
	if cfg.SessionTTL, err = getDuration("SESSION_TTL", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.LLMTimeout, err = getDuration("LLM_TIMEOUT", 20*time.Second); err != nil {
		return nil, err
	}
	if cfg.ChatRateWindow, err = getDuration("CHAT_RATE_WINDOW", time.Minute); err != nil {
		return nil, err
	}

	if cfg.SessionSecret == "" && IsLocal() {
		cfg.SessionSecret = "change-me-local-development-secret"
	}

	// Validate the configuration
	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// getSecret prefers the environment variable and falls back to the Docker secret file.
func getSecret(envKey, secretName, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(envKey)); v != "" {
		return v
	}
	if v := readSecret(secretName); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	secretPath := filepath.Join(secretsDir, name)
	if data, err := os.ReadFile(secretPath); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}
