package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port             int
	TelegramToken    string
	TelegramAPIBase  string
	DirectLineSecret string
	DirectLineBase   string
	DatabaseURL      string
	SQLitePath       string
	NatsURL          string
	NatsToken        string
	LogLevel         string
	EnableGroupChat  bool
	ResponseDelay    time.Duration
	WatcherTimeout   time.Duration
	WatcherInterval  time.Duration
	DedupCapacity    int
}

func Load() Config {
	return Config{
		Port:             envInt("PORT", 8080),
		TelegramToken:    envStr("TELEGRAM_API_TOKEN", ""),
		TelegramAPIBase:  envStr("TELEGRAM_API_BASE", "https://api.telegram.org"),
		DirectLineSecret: envStr("DIRECT_LINE_SECRET", ""),
		DirectLineBase:   envStr("DIRECT_LINE_BASE", "https://directline.botframework.com/v3/directline"),
		DatabaseURL:      envStr("DATABASE_URL", ""),
		SQLitePath:       envStr("SQLITE_PATH", "chat_settings.db"),
		NatsURL:          envStr("NATS_URL", ""),
		NatsToken:        envStr("NATS_TOKEN", ""),
		LogLevel:         envStr("LOG_LEVEL", "info"),
		EnableGroupChat:  envBool("ENABLE_GROUP_CHAT_PROCESSING", false),
		ResponseDelay:    envDur("RESPONSE_DELAY", 1200*time.Millisecond),
		WatcherTimeout:   envDur("WATCHER_TIMEOUT", 120*time.Second),
		WatcherInterval:  envDur("WATCHER_INTERVAL", time.Second),
		DedupCapacity:    envInt("DEDUP_CAPACITY", 100),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDur(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
