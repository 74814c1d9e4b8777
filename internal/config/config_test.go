package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var keys = []string{
	"PORT", "LOG_LEVEL", "LOG_PRETTY", "DB_DRIVER", "DB_PATH", "DICTIONARY_URL",
	"DICTIONARY_TIMEOUT", "SESSION_SECRET", "CLIENT_ORIGIN", "PICK_SALT",
	"FALLBACK_WORDS_FILE", "SESSION_IDLE", "NODE_ENV",
}

func clearEnv(t *testing.T) {
	for _, k := range keys {
		t.Setenv(k, "")
	}
}

func TestDefaults(t *testing.T) {
	clearEnv(t)
	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":5175", c.Addr())
	assert.Equal(t, "sqlite3", c.DBDriver)
	assert.Equal(t, "./data/words.db", c.DBPath)
	assert.Equal(t, 5*time.Second, c.DictionaryTimeout)
	assert.Equal(t, 2*time.Hour, c.SessionIdle)
	assert.False(t, c.LogPretty)
	assert.False(t, c.Production)
}

func TestOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "8080")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("LOG_PRETTY", "1")
	t.Setenv("DICTIONARY_TIMEOUT", "2500")
	t.Setenv("SESSION_IDLE", "15m")
	t.Setenv("FALLBACK_WORDS_FILE", "/tmp/words.txt")

	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", c.Addr())
	assert.Equal(t, "sqlite", c.DBDriver)
	assert.True(t, c.LogPretty)
	assert.Equal(t, 2500*time.Millisecond, c.DictionaryTimeout)
	assert.Equal(t, 15*time.Minute, c.SessionIdle)
	assert.Equal(t, "/tmp/words.txt", c.FallbackWordsFile)
}

func TestInvalidValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("LOG_PRETTY", "sometimes")
	_, err := Load()
	assert.ErrorContains(t, err, "LOG_PRETTY")

	clearEnv(t)
	t.Setenv("DICTIONARY_TIMEOUT", "soon")
	_, err = Load()
	assert.ErrorContains(t, err, "DICTIONARY_TIMEOUT")
}

func TestProductionNeedsSecret(t *testing.T) {
	clearEnv(t)
	t.Setenv("NODE_ENV", "production")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("SESSION_SECRET", "s3cret")
	c, err := Load()
	require.NoError(t, err)
	assert.True(t, c.Production)
}
