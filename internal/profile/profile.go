// Package profile holds the process-wide configuration resolved from
// flags and environment variables at startup.
package profile

import (
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Profile is the configuration needed to start the gateway.
type Profile struct {
	Mode     string // "dev", "demo" or "prod"
	Addr     string
	Port     int
	UNIXSock string
	Version  string

	// Driver is the store backend: "postgres" or "sqlite".
	Driver string
	DSN    string

	// RedisURL is the shared-store connection string (redis://...).
	RedisURL string

	AdminAccessToken    string
	PlatformAccessToken string

	// ConversationStateTTLSeconds is recognized per spec §6.6 but not
	// wired into the core's message lock (which is fixed at 3600s).
	ConversationStateTTLSeconds int
	// ProcessingLockTTLSeconds is recognized per spec §6.6 but unused by
	// the core; kept only so the env var is not silently ignored.
	ProcessingLockTTLSeconds int
	MaxConversationAgeHours  int
	AIProcessingTimeout      int
	DBPoolSize               int
	DBMaxOverflow            int

	// TelegramBotToken configures the optional Telegram intake channel.
	TelegramBotToken string
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvOrDefaultInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// FromEnv loads configuration from environment variables. Driver, DSN and
// RedisURL keep any value already set on the Profile (e.g. from flags);
// every other field is always set from its env var or documented default.
// Unknown env keys are ignored.
func (p *Profile) FromEnv() {
	if p.Driver == "" {
		p.Driver = getEnvOrDefault("DB_DRIVER", "postgres")
	}
	if p.DSN == "" {
		p.DSN = resolveDSN(p.Driver)
	}
	if p.RedisURL == "" {
		p.RedisURL = getEnvOrDefault("REDIS_URL", "redis://localhost:6379/0")
	}

	p.AdminAccessToken = getEnvOrDefault("ADMIN_ACCESS_TOKEN", "")
	p.PlatformAccessToken = getEnvOrDefault("PLATFORM_ACCESS_TOKEN", "")

	p.ConversationStateTTLSeconds = getEnvOrDefaultInt("CONVERSATION_STATE_TTL", 86400)
	p.ProcessingLockTTLSeconds = getEnvOrDefaultInt("PROCESSING_LOCK_TTL", 30)
	p.MaxConversationAgeHours = getEnvOrDefaultInt("MAX_CONVERSATION_AGE_HOURS", 24)
	p.AIProcessingTimeout = getEnvOrDefaultInt("AI_PROCESSING_TIMEOUT", 30)
	p.DBPoolSize = getEnvOrDefaultInt("DB_POOL_SIZE", 5)
	p.DBMaxOverflow = getEnvOrDefaultInt("DB_MAX_OVERFLOW", 10)

	p.TelegramBotToken = getEnvOrDefault("TELEGRAM_BOT_TOKEN", "")
}

// resolveDSN builds a DSN from discrete host/port/db/user/password
// variables when DATABASE_URL is not set directly.
func resolveDSN(driver string) string {
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		return dsn
	}

	switch driver {
	case "sqlite":
		return getEnvOrDefault("SQLITE_PATH", "chatrelay.db")
	default:
		host := getEnvOrDefault("DB_HOST", "localhost")
		port := getEnvOrDefault("DB_PORT", "5432")
		name := getEnvOrDefault("DB_NAME", "chatrelay")
		user := getEnvOrDefault("DB_USER", "postgres")
		password := os.Getenv("DB_PASSWORD")
		sslmode := getEnvOrDefault("DB_SSLMODE", "disable")

		var b strings.Builder
		b.WriteString("postgres://")
		b.WriteString(user)
		if password != "" {
			b.WriteString(":")
			b.WriteString(password)
		}
		b.WriteString("@")
		b.WriteString(host)
		b.WriteString(":")
		b.WriteString(port)
		b.WriteString("/")
		b.WriteString(name)
		b.WriteString("?sslmode=")
		b.WriteString(sslmode)
		return b.String()
	}
}

// Validate checks the profile is internally consistent.
func (p *Profile) Validate() error {
	if p.Mode != "demo" && p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "demo"
	}
	if p.Driver != "postgres" && p.Driver != "sqlite" {
		return errors.Errorf("unsupported database driver %q", p.Driver)
	}
	if p.DSN == "" {
		return errors.New("database DSN must not be empty")
	}
	return nil
}
