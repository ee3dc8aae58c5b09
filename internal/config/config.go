package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all runtime settings
type Config struct {
	Port     string
	DBPath   string
	ModelDir string

	JWTSecret string

	LineChannelSecret string
	LineChannelToken  string

	ReinfolibAPIKey string

	TrainCron  string
	NotifyCron string

	BargainThreshold float64

	LogLevel  string
	LogFormat string
}

// Load reads configuration from the environment, with .env as a fallback
func Load() *Config {
	godotenv.Load()

	return &Config{
		Port:              getEnv("PORT", ":8080"),
		DBPath:            getEnv("DB_PATH", "./data/rentwatch.db"),
		ModelDir:          getEnv("MODEL_DIR", "./data/models"),
		JWTSecret:         getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
		LineChannelSecret: getEnv("LINE_CHANNEL_SECRET", ""),
		LineChannelToken:  getEnv("LINE_CHANNEL_ACCESS_TOKEN", ""),
		ReinfolibAPIKey:   getEnv("REINFOLIB_API_KEY", ""),
		TrainCron:         getEnv("TRAIN_CRON", "0 4 * * *"),
		NotifyCron:        getEnv("NOTIFY_CRON", "0 8 * * *"),
		BargainThreshold:  getEnvFloat("BARGAIN_THRESHOLD", 0.85),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		LogFormat:         getEnv("LOG_FORMAT", "json"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
