package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type Config struct {
	DBDriver      string
	DBHost        string
	DBPort        string
	DBUser        string
	DBPassword    string
	DBName        string
	SessionStore  string
	RedisHost     string
	RedisPort     string
	SessionSecret string
	GinMode       string
	HTTPPort      string
	CORSOrigins   []string
	LogLevel      string

	// PTO accounting
	HoursPerDay     int64
	ReserveOnCreate bool

	// Notification channels; each is optional
	ResendAPIKey     string
	MailFrom         string
	TelegramBotToken string
	TelegramChatID   int64

	OpenAIAPIKey string
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logrus.WithError(err).Warn("Failed to load .env file")
	}

	return &Config{
		DBDriver:         getEnv("DB_DRIVER", "mysql"),
		DBHost:           getEnv("DB_HOST", "localhost"),
		DBPort:           getEnv("DB_PORT", "3306"),
		DBUser:           getEnv("DB_USER", "ptouser"),
		DBPassword:       getEnv("DB_PASSWORD", "ptopassword"),
		DBName:           getEnv("DB_NAME", "pto_approval"),
		SessionStore:     getEnv("SESSION_STORE", "redis"),
		RedisHost:        getEnv("REDIS_HOST", "localhost"),
		RedisPort:        getEnv("REDIS_PORT", "6379"),
		SessionSecret:    getEnv("SESSION_SECRET", "default-secret-key-change-me"),
		GinMode:          getEnv("GIN_MODE", "debug"),
		HTTPPort:         getEnv("HTTP_PORT", "8080"),
		CORSOrigins:      getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		HoursPerDay:      getEnvAsInt("PTO_HOURS_PER_DAY", 8),
		ReserveOnCreate:  getEnvAsBool("PTO_RESERVE_ON_CREATE", false),
		ResendAPIKey:     getEnv("RESEND_API_KEY", ""),
		MailFrom:         getEnv("MAIL_FROM", "PTO-matic <onboarding@resend.dev>"),
		TelegramBotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
		TelegramChatID:   getEnvAsInt("TELEGRAM_CHAT_ID", 0),
		OpenAIAPIKey:     getEnv("OPENAI_API_KEY", ""),
	}
}

// IsProduction reports whether gin runs in release mode
func (c *Config) IsProduction() bool {
	return c.GinMode == "release"
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int64) int64 {
	value, err := strconv.ParseInt(getEnv(key, ""), 10, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsList(key string, defaultValue []string) []string {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue
	}

	var values []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			values = append(values, part)
		}
	}
	if len(values) == 0 {
		return defaultValue
	}
	return values
}
