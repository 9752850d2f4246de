// Package config loads process configuration from environment variables
// with sane defaults. A .env file in the working directory is honored
// when present, so a packaged install can ship its settings next to the
// binary.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/text/language"
)

// Config holds everything the server needs at startup.
type Config struct {
	// HTTP server
	Port        string
	CORSOrigins []string

	// Data
	DataDir    string
	ArchiveDir string

	// Display locale for name collation (BCP 47 tag)
	Locale string

	// View limits
	RecentCommitmentsLimit int
	PersonsLimit           int
	SearchLimit            int

	// Announcement expiry sweep
	SweepInterval time.Duration
}

// Load reads configuration from the environment, after loading .env if
// one exists. Missing keys fall back to defaults.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:        getEnv("PORT", "8090"),
		CORSOrigins: splitList(getEnv("CORS_ORIGINS", "http://localhost:5173,http://localhost:8090")),

		DataDir:    getEnv("DATA_DIR", "./data"),
		ArchiveDir: getEnv("ARCHIVE_DIR", "./archives"),

		Locale: getEnv("LOCALE", "he"),

		RecentCommitmentsLimit: getEnvInt("RECENT_COMMITMENTS_LIMIT", 200),
		PersonsLimit:           getEnvInt("PERSONS_LIMIT", 500),
		SearchLimit:            getEnvInt("SEARCH_LIMIT", 50),

		SweepInterval: getEnvDuration("SWEEP_INTERVAL", 30*time.Second),
	}
}

// Validate checks the configuration and returns a combined error for
// every invalid setting.
func (c *Config) Validate() error {
	var problems []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		problems = append(problems, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.DataDir == "" {
		problems = append(problems, "data directory cannot be empty")
	}

	if _, err := language.Parse(c.Locale); err != nil {
		problems = append(problems, fmt.Sprintf("invalid locale '%s': %v", c.Locale, err))
	}

	if c.RecentCommitmentsLimit < 1 {
		problems = append(problems, fmt.Sprintf("invalid recent commitments limit %d: must be at least 1", c.RecentCommitmentsLimit))
	}
	if c.PersonsLimit < 1 {
		problems = append(problems, fmt.Sprintf("invalid persons limit %d: must be at least 1", c.PersonsLimit))
	}
	if c.SearchLimit < 1 {
		problems = append(problems, fmt.Sprintf("invalid search limit %d: must be at least 1", c.SearchLimit))
	}

	if c.SweepInterval < time.Second {
		problems = append(problems, fmt.Sprintf("invalid sweep interval %v: must be at least 1 second", c.SweepInterval))
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(problems, "\n- "))
	}
	return nil
}

// LocaleTag parses the configured locale. Call Validate first.
func (c *Config) LocaleTag() language.Tag {
	tag, err := language.Parse(c.Locale)
	if err != nil {
		return language.Hebrew
	}
	return tag
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
