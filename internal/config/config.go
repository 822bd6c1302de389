package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime settings, sourced from environment variables.
type Config struct {
	AppEnv   string
	LogLevel string

	BotToken      string
	OwnerIDs      []int64
	LogChannelID  int64
	EscrowGroupID []int64

	DatabaseDriver string
	DatabaseURL    string
	SQLitePath     string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisTLS      bool

	HTTPListenAddr   string
	HTTPBasePath     string
	MetricsNamespace string

	ReportingOffset time.Duration
	BaseTotalVolume float64
	BaseTotalCount  int64
	BadgeToken      string
}

// Load reads configuration from environment variables, applying defaults for
// everything except the bot token.
func Load() (*Config, error) {
	cfg := &Config{
		AppEnv:           getEnv("APP_ENV", "development"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		BotToken:         os.Getenv("BOT_TOKEN"),
		DatabaseDriver:   getEnv("DATABASE_DRIVER", "postgres"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		SQLitePath:       getEnv("SQLITE_PATH", "./escrow.db"),
		RedisAddr:        getEnv("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPassword:    os.Getenv("REDIS_PASSWORD"),
		HTTPListenAddr:   getEnv("HTTP_LISTEN_ADDR", ":8080"),
		HTTPBasePath:     os.Getenv("HTTP_BASE_PATH"),
		MetricsNamespace: getEnv("METRICS_NAMESPACE", "escrow_bot"),
		BadgeToken:       getEnv("BADGE_TOKEN", "✅"),
	}

	var err error
	if cfg.BotToken == "" {
		return nil, fmt.Errorf("BOT_TOKEN is required")
	}

	switch cfg.DatabaseDriver {
	case "postgres":
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required with the postgres driver")
		}
	case "sqlite":
	default:
		return nil, fmt.Errorf("unsupported DATABASE_DRIVER %q", cfg.DatabaseDriver)
	}

	if cfg.RedisDB, err = getEnvInt("REDIS_DB", 0); err != nil {
		return nil, err
	}
	if cfg.RedisTLS, err = getEnvBool("REDIS_TLS", false); err != nil {
		return nil, err
	}
	if cfg.ReportingOffset, err = getEnvDuration("REPORTING_OFFSET", 5*time.Hour+30*time.Minute); err != nil {
		return nil, err
	}
	if cfg.BaseTotalVolume, err = getEnvFloat("BASE_TOTAL_VOLUME", 531713.64); err != nil {
		return nil, err
	}
	if cfg.BaseTotalCount, err = getEnvInt64("BASE_TOTAL_COUNT", 797); err != nil {
		return nil, err
	}
	if cfg.LogChannelID, err = getEnvInt64("LOG_CHANNEL_ID", 0); err != nil {
		return nil, err
	}
	if cfg.OwnerIDs, err = getEnvInt64List("OWNER_IDS"); err != nil {
		return nil, err
	}
	if cfg.EscrowGroupID, err = getEnvInt64List("ESCROW_GROUP_IDS"); err != nil {
		return nil, err
	}

	return cfg, nil
}

// IsOwner reports whether the given Telegram user id is a configured owner.
func (c *Config) IsOwner(userID int64) bool {
	for _, id := range c.OwnerIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// IsEscrowGroup reports whether the chat is an allowed escrow group. An empty
// list allows every group.
func (c *Config) IsEscrowGroup(chatID int64) bool {
	if len(c.EscrowGroupID) == 0 {
		return true
	}
	for _, id := range c.EscrowGroupID {
		if id == chatID {
			return true
		}
	}
	return false
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return n, nil
}

func getEnvInt64(key string, defaultValue int64) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return n, nil
}

func getEnvFloat(key string, defaultValue float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return f, nil
}

func getEnvBool(key string, defaultValue bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("parse %s: %w", key, err)
	}
	return b, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return d, nil
}

func getEnvInt64List(key string) ([]int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return nil, nil
	}
	parts := strings.Split(v, ",")
	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		n, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse %s entry %q: %w", key, p, err)
		}
		ids = append(ids, n)
	}
	return ids, nil
}
