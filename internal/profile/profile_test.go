package profile

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnvVars(t *testing.T) {
	t.Helper()
	vars := []string{
		"DB_DRIVER", "DATABASE_URL", "DB_HOST", "DB_PORT", "DB_NAME", "DB_USER",
		"DB_PASSWORD", "DB_SSLMODE", "SQLITE_PATH", "REDIS_URL",
		"ADMIN_ACCESS_TOKEN", "PLATFORM_ACCESS_TOKEN", "CONVERSATION_STATE_TTL",
		"PROCESSING_LOCK_TTL", "MAX_CONVERSATION_AGE_HOURS", "AI_PROCESSING_TIMEOUT",
		"DB_POOL_SIZE", "DB_MAX_OVERFLOW", "TELEGRAM_BOT_TOKEN",
	}
	for _, v := range vars {
		os.Unsetenv(v)
	}
}

func TestFromEnvDefaults(t *testing.T) {
	clearEnvVars(t)

	p := &Profile{}
	p.FromEnv()

	assert.Equal(t, "postgres", p.Driver)
	assert.Equal(t, "redis://localhost:6379/0", p.RedisURL)
	assert.Equal(t, 86400, p.ConversationStateTTLSeconds)
	assert.Equal(t, 30, p.ProcessingLockTTLSeconds)
	assert.Equal(t, 24, p.MaxConversationAgeHours)
	assert.Equal(t, 30, p.AIProcessingTimeout)
	assert.Equal(t, 5, p.DBPoolSize)
	assert.Equal(t, 10, p.DBMaxOverflow)
	assert.Contains(t, p.DSN, "postgres://")
}

func TestFromEnvSQLite(t *testing.T) {
	clearEnvVars(t)
	os.Setenv("DB_DRIVER", "sqlite")
	os.Setenv("SQLITE_PATH", "/tmp/chatrelay-test.db")
	defer clearEnvVars(t)

	p := &Profile{}
	p.FromEnv()

	assert.Equal(t, "sqlite", p.Driver)
	assert.Equal(t, "/tmp/chatrelay-test.db", p.DSN)
}

func TestFromEnvDatabaseURLOverride(t *testing.T) {
	clearEnvVars(t)
	os.Setenv("DATABASE_URL", "postgres://u:p@db:5432/chatrelay?sslmode=require")
	defer clearEnvVars(t)

	p := &Profile{}
	p.FromEnv()

	assert.Equal(t, "postgres://u:p@db:5432/chatrelay?sslmode=require", p.DSN)
}

func TestValidateRejectsUnknownDriver(t *testing.T) {
	p := &Profile{Mode: "dev", Driver: "mysql", DSN: "x"}
	err := p.Validate()
	require.Error(t, err)
}

func TestValidateNormalizesMode(t *testing.T) {
	p := &Profile{Mode: "bogus", Driver: "sqlite", DSN: "x"}
	require.NoError(t, p.Validate())
	assert.Equal(t, "demo", p.Mode)
}
