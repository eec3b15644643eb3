package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	Port                 string
	JWTSecret            string
	JWTAccessExpiration  time.Duration
	JWTRefreshExpiration time.Duration
	FrontendURL          string
	MongoDBURI           string
	MongoDBDatabase      string
	RequestTimeout       time.Duration

	LogLevel  string
	LogFormat string // "console" or "json"

	// Legacy Google Sheets attendance source
	SheetsCredentialsFile string
	SheetsSpreadsheetID   string
	SheetsRange           string
	SheetsSyncInterval    time.Duration // 0 disables the background worker
}

func Load() *Config {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Info().Msg("No .env file found, using environment variables")
	}

	return &Config{
		Port:                  getEnv("PORT", "8080"),
		JWTSecret:             getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
		JWTAccessExpiration:   getDuration("JWT_ACCESS_EXPIRATION", 15*time.Minute),
		JWTRefreshExpiration:  getDuration("JWT_REFRESH_EXPIRATION", 168*time.Hour),
		FrontendURL:           getEnv("FRONTEND_URL", "http://localhost:3000"),
		MongoDBURI:            getEnv("MONGODB_URI", "mongodb://localhost:27017"),
		MongoDBDatabase:       getEnv("MONGODB_DATABASE", "meetingtracker"),
		RequestTimeout:        getDuration("REQUEST_TIMEOUT", 5*time.Second),
		LogLevel:              getEnv("LOG_LEVEL", "info"),
		LogFormat:             getEnv("LOG_FORMAT", "console"),
		SheetsCredentialsFile: getEnv("GOOGLE_SHEETS_CREDENTIALS_FILE", ""),
		SheetsSpreadsheetID:   getEnv("GOOGLE_SHEETS_SPREADSHEET_ID", ""),
		SheetsRange:           getEnv("GOOGLE_SHEETS_RANGE", "Attendance!A2:F"),
		SheetsSyncInterval:    getDuration("SHEETS_SYNC_INTERVAL", 0),
	}
}

// SheetsEnabled reports whether enough configuration is present to reach the spreadsheet.
func (c *Config) SheetsEnabled() bool {
	return c.SheetsCredentialsFile != "" && c.SheetsSpreadsheetID != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		log.Warn().Str("key", key).Str("value", raw).Msg("invalid duration, using default")
		return defaultValue
	}
	return d
}
