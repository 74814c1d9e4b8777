// internal/config/config.go
//
// Process configuration from the environment (after godotenv has loaded .env).

package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/wordbuddy/puzzle-server/internal/dictionary"
)

// Config is everything the server and CLI need.
type Config struct {
	Port              string
	LogLevel          string
	LogPretty         bool
	DBDriver          string
	DBPath            string
	DictionaryURL     string
	DictionaryTimeout time.Duration
	SessionSecret     string
	ClientOrigin      string
	PickSalt          string
	FallbackWordsFile string
	SessionIdle       time.Duration
	Production        bool
}

const devSecret = "dev_secret_change_me"

// Load reads the environment, applying defaults for anything unset.
func Load() (Config, error) {
	c := Config{
		Port:              getEnv("PORT", "5175"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		DBDriver:          getEnv("DB_DRIVER", "sqlite3"),
		DBPath:            getEnv("DB_PATH", "./data/words.db"),
		DictionaryURL:     getEnv("DICTIONARY_URL", dictionary.DefaultBaseURL),
		SessionSecret:     getEnv("SESSION_SECRET", devSecret),
		ClientOrigin:      getEnv("CLIENT_ORIGIN", "http://localhost:5173"),
		PickSalt:          getEnv("PICK_SALT", "word-buddy"),
		FallbackWordsFile: os.Getenv("FALLBACK_WORDS_FILE"),
		Production:        os.Getenv("NODE_ENV") == "production",
	}

	var err error
	if c.LogPretty, err = envBool("LOG_PRETTY", false); err != nil {
		return c, err
	}
	if c.DictionaryTimeout, err = envDuration("DICTIONARY_TIMEOUT", 5*time.Second); err != nil {
		return c, err
	}
	if c.SessionIdle, err = envDuration("SESSION_IDLE", 2*time.Hour); err != nil {
		return c, err
	}
	if c.Production && c.SessionSecret == devSecret {
		return c, fmt.Errorf("SESSION_SECRET must be set in production")
	}
	return c, nil
}

// Addr is the listen address.
func (c Config) Addr() string { return ":" + c.Port }

// getEnv returns the value of k or def if unset/empty.
func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envBool(k string, def bool) (bool, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def, fmt.Errorf("%s: %w", k, err)
	}
	return b, nil
}

// envDuration accepts Go durations ("3s") or plain milliseconds ("3000").
func envDuration(k string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	if ms, err := strconv.Atoi(v); err == nil {
		return time.Duration(ms) * time.Millisecond, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def, fmt.Errorf("%s: %w", k, err)
	}
	return d, nil
}
