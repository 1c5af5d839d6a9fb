package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors collects every problem found in one pass.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	lines := make([]string, len(e))
	for i, v := range e {
		lines[i] = v.Error()
	}
	return strings.Join(lines, "\n")
}

// minSessionSecretLen is the shortest HS256 key accepted outside local development.
const minSessionSecretLen = 32

// ValidateConfig checks if the configuration meets the requirements for the current environment
func ValidateConfig(cfg *Config) error {
	env := GetEnvironment()
	var errs ValidationErrors

	switch cfg.DBDriver {
	case "postgres":
		if cfg.DBHost == "" || cfg.DBName == "" {
			errs = append(errs, ValidationError{"DB_HOST/DB_NAME", "required for the postgres driver"})
		}
	case "sqlite":
		if env == Production {
			errs = append(errs, ValidationError{"DB_DRIVER", "sqlite is not allowed in production"})
		}
		if cfg.DBPath == "" {
			errs = append(errs, ValidationError{"DB_PATH", "required for the sqlite driver"})
		}
	default:
		errs = append(errs, ValidationError{"DB_DRIVER", fmt.Sprintf("unsupported driver %q", cfg.DBDriver)})
	}

	if cfg.MongoURI == "" {
		errs = append(errs, ValidationError{"MONGO_URI", "is required"})
	}
	if cfg.RedisURL == "" && cfg.RedisHost == "" {
		errs = append(errs, ValidationError{"REDIS_URL", "REDIS_URL or REDIS_HOST is required"})
	}

	// Local runs may start without secrets; everything else must be fully provisioned
	if env == Production || env == CI {
		if len(cfg.SessionSecret) < minSessionSecretLen {
			errs = append(errs, ValidationError{"SESSION_SECRET", fmt.Sprintf("must be at least %d characters", minSessionSecretLen)})
		}
		if cfg.LLMAPIKey == "" {
			errs = append(errs, ValidationError{"GOOGLE_API_KEY", "is required"})
		}
		if cfg.DBDriver == "postgres" && cfg.DBPassword == "" {
			errs = append(errs, ValidationError{"DB_PASSWORD", "is required"})
		}
	}

	if (cfg.GoogleClientID == "") != (cfg.GoogleClientSecret == "") {
		errs = append(errs, ValidationError{"GOOGLE_CLIENT_ID", "client id and secret must be set together"})
	}
	if cfg.SessionTTL <= 0 {
		errs = append(errs, ValidationError{"SESSION_TTL", "must be positive"})
	}
	if cfg.LLMTimeout <= 0 {
		errs = append(errs, ValidationError{"LLM_TIMEOUT", "must be positive"})
	}
	if cfg.ChatRateLimit <= 0 || cfg.ChatRateWindow <= 0 {
		errs = append(errs, ValidationError{"CHAT_RATE_LIMIT", "limit and window must be positive"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
