// ABOUTME: Centralized configuration for the foresight relay bot
// ABOUTME: Loads from environment variables with validation and defaults
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// History backend selectors.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
)

// Config holds all configuration for the relay
type Config struct {
	// Platform settings
	DiscordToken string

	// Completion API settings
	APIKey      string
	APIEndpoint string
	Model       string
	Temperature float32
	Timeout     time.Duration

	// Conversation settings
	HistoryDepth   int
	HistoryBackend string
	HistoryDBPath  string
	ChunkLimit     int

	// Prompt file overrides, keyed by role
	SystemPromptPath       string
	EconomicPromptPath     string
	GeopoliticalPromptPath string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		DiscordToken:           os.Getenv("DISCORD_TOKEN"),
		APIKey:                 os.Getenv("GROK_API_KEY"),
		APIEndpoint:            os.Getenv("GROK_API_ENDPOINT"),
		Model:                  getEnv("GROK_MODEL", "grok-3-mini"),
		Temperature:            0.7,
		Timeout:                getEnvDuration("GROK_TIMEOUT", 120*time.Second),
		HistoryDepth:           getEnvInt("HISTORY_DEPTH", 10),
		HistoryBackend:         getEnv("HISTORY_BACKEND", BackendMemory),
		HistoryDBPath:          getEnv("HISTORY_DB_PATH", "foresight.db"),
		ChunkLimit:             getEnvInt("CHUNK_LIMIT", 1990),
		SystemPromptPath:       getEnv("SYSTEM_PROMPT_PATH", "system_prompt.txt"),
		EconomicPromptPath:     getEnv("ECONOMIC_PROMPT_PATH", "economic_prompt.txt"),
		GeopoliticalPromptPath: getEnv("GEOPOLITICAL_PROMPT_PATH", "geopolitical_prompt.txt"),
	}

	return cfg, cfg.Validate()
}

// Validate fails fast on missing credentials so the process never serves
// with an incomplete configuration.
func (c *Config) Validate() error {
	if c.DiscordToken == "" {
		return fmt.Errorf("DISCORD_TOKEN is required")
	}
	if c.APIKey == "" {
		return fmt.Errorf("GROK_API_KEY is required")
	}
	if c.APIEndpoint == "" {
		return fmt.Errorf("GROK_API_ENDPOINT is required")
	}
	if c.HistoryDepth < 1 {
		return fmt.Errorf("HISTORY_DEPTH must be >= 1, got %d", c.HistoryDepth)
	}
	if c.ChunkLimit < 1 {
		return fmt.Errorf("CHUNK_LIMIT must be >= 1, got %d", c.ChunkLimit)
	}
	if c.HistoryBackend != BackendMemory && c.HistoryBackend != BackendSQLite {
		return fmt.Errorf("HISTORY_BACKEND must be %q or %q, got %q", BackendMemory, BackendSQLite, c.HistoryBackend)
	}
	return nil
}

// Helper functions
func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
