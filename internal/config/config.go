// Package config provides configuration for the chat backend.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the backend configuration.
type Config struct {
	// Server settings
	HTTPPort   int
	CORSOrigin string

	// Database
	DBDriver string
	DBName   string
	DBUser   string
	DBPass   string
	DBHost   string
	DBPort   int

	// Language model
	ChatMode   string
	LLMBaseURL string
	LLMAPIKey  string
	ModelName  string
	LLMTimeout time.Duration

	// Query execution
	QueryTimeout      time.Duration
	AllowedStatements []string

	// Session lifecycle
	SessionIdleTTL  time.Duration
	SweepInterval   time.Duration
	SessionMaxTurns int
}

// Load reads configuration from environment variables. Missing required
// variables are a startup error, never a per-request one.
func Load() (*Config, error) {
	cfg := &Config{
		HTTPPort:          getEnvInt("HTTP_PORT", 8080),
		CORSOrigin:        getEnv("CORS_ORIGIN", "*"),
		DBDriver:          getEnv("DB_DRIVER", "postgres"),
		DBName:            os.Getenv("DB_NAME"),
		DBUser:            os.Getenv("DB_USER"),
		DBPass:            os.Getenv("DB_PASS"),
		DBHost:            os.Getenv("DB_HOST"),
		DBPort:            getEnvInt("DB_PORT", 5432),
		ChatMode:          getEnv("CHAT_MODE", ""),
		LLMBaseURL:        getEnv("LLM_BASE_URL", "https://api.groq.com/openai"),
		LLMAPIKey:         os.Getenv("LLM_API_KEY"),
		ModelName:         os.Getenv("MODEL_NAME"),
		LLMTimeout:        time.Duration(getEnvInt("LLM_TIMEOUT_MS", 30000)) * time.Millisecond,
		QueryTimeout:      time.Duration(getEnvInt("QUERY_TIMEOUT_MS", 10000)) * time.Millisecond,
		AllowedStatements: splitList(getEnv("SQL_ALLOWED_STATEMENTS", "SELECT")),
		SessionIdleTTL:    time.Duration(getEnvInt("SESSION_IDLE_TTL_MIN", 60)) * time.Minute,
		SweepInterval:     time.Duration(getEnvInt("SWEEP_INTERVAL_MIN", 5)) * time.Minute,
		SessionMaxTurns:   getEnvInt("SESSION_MAX_TURNS", 100),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	var missing []string

	switch c.DBDriver {
	case "postgres":
		for _, v := range []struct{ name, val string }{
			{"DB_NAME", c.DBName},
			{"DB_USER", c.DBUser},
			{"DB_PASS", c.DBPass},
			{"DB_HOST", c.DBHost},
		} {
			if v.val == "" {
				missing = append(missing, v.name)
			}
		}
	case "sqlite":
		if c.DBName == "" {
			missing = append(missing, "DB_NAME")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}

	if c.ChatMode != "mock" {
		if c.LLMAPIKey == "" {
			missing = append(missing, "LLM_API_KEY")
		}
		if c.ModelName == "" {
			missing = append(missing, "MODEL_NAME")
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	return nil
}

// DSN builds the connection string for the configured driver.
func (c *Config) DSN() string {
	if c.DBDriver == "sqlite" {
		return c.DBName
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=disable",
		c.DBHost, c.DBUser, c.DBPass, c.DBName, c.DBPort)
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, strings.ToUpper(trimmed))
		}
	}
	return out
}
