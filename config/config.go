// Package config loads application configuration from environment
// variables.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all application configuration.
type Config struct {
	// Angel One credentials. Required only when live trading is enabled.
	AngelAPIKey     string
	AngelClientCode string
	AngelPIN        string
	AngelTOTPSecret string

	// LiveTrading routes entry orders to the broker instead of simulating.
	LiveTrading bool

	// Risk defaults applied at startup; adjustable at runtime.
	StopLossPct  float64
	TargetPct    float64
	MaxDailyLoss float64
	Qty          int64

	// StartBalance is the wallet balance shown on the dashboard.
	StartBalance float64

	// Infrastructure
	RedisAddr      string // empty disables the redis snapshot store
	RedisPassword  string
	SQLitePath     string
	MetricsAddr    string
	ScripMasterURL string // empty uses the published scrip master

	// Notifications. Empty values disable the channel.
	TelegramBotToken string
	TelegramChatID   string
	WebhookURL       string

	LogLevel string
}

// Load reads configuration from environment variables with defaults.
func Load() (*Config, error) {
	cfg := &Config{
		AngelAPIKey:     getEnv("ANGEL_API_KEY", ""),
		AngelClientCode: getEnv("ANGEL_CLIENT_CODE", ""),
		AngelPIN:        getEnv("ANGEL_PIN", ""),
		AngelTOTPSecret: getEnv("ANGEL_TOTP_SECRET", ""),

		LiveTrading: getEnvBool("LIVE_TRADING", false),

		StopLossPct:  getEnvFloat("STOP_LOSS_PCT", 1.0),
		TargetPct:    getEnvFloat("TARGET_PCT", 2.0),
		MaxDailyLoss: getEnvFloat("MAX_DAILY_LOSS", 5000),
		Qty:          int64(getEnvInt("TRADE_QTY", 50)),
		StartBalance: getEnvFloat("START_BALANCE", 100000),

		RedisAddr:      getEnv("REDIS_ADDR", ""),
		RedisPassword:  getEnv("REDIS_PASSWORD", ""),
		SQLitePath:     getEnv("SQLITE_PATH", "data/trades.db"),
		MetricsAddr:    getEnv("METRICS_ADDR", ":9090"),
		ScripMasterURL: getEnv("SCRIP_MASTER_URL", ""),

		TelegramBotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
		TelegramChatID:   getEnv("TELEGRAM_CHAT_ID", ""),
		WebhookURL:       getEnv("WEBHOOK_URL", ""),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	if cfg.LiveTrading {
		for key, v := range map[string]string{
			"ANGEL_API_KEY":     cfg.AngelAPIKey,
			"ANGEL_CLIENT_CODE": cfg.AngelClientCode,
			"ANGEL_PIN":         cfg.AngelPIN,
			"ANGEL_TOTP_SECRET": cfg.AngelTOTPSecret,
		} {
			if v == "" {
				return nil, fmt.Errorf("config: %s required when LIVE_TRADING=true", key)
			}
		}
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func getEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
