package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config holds all runtime configuration, loaded once at startup.
type Config struct {
	Port          string
	MongoURI      string
	MongoDBName   string
	JWTSecret     string
	TokenExpiry   time.Duration
	UploadDir     string
	AllowedOrigin string
	// VerifyBaseURL is the frontend base used in verification links.
	VerifyBaseURL string
}

// LoadConfig reads configuration from the environment, with a .env file
// as fallback for local development.
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found, relying on environment variables")
	}

	return &Config{
		Port:          getEnv("PORT", "8080"),
		MongoURI:      getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDBName:   getEnv("MONGO_DB", "foodshare"),
		JWTSecret:     getEnv("JWT_SECRET", ""),
		TokenExpiry:   time.Duration(getEnvInt("TOKEN_EXPIRY_HOURS", 720)) * time.Hour,
		UploadDir:     getEnv("UPLOAD_DIR", "uploads"),
		AllowedOrigin: getEnv("ALLOWED_ORIGIN", "http://localhost:3000"),
		VerifyBaseURL: getEnv("VERIFY_BASE_URL", "http://localhost:3000/verify-email"),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
		logrus.WithField("key", key).Warn("Invalid integer in environment, using fallback")
	}
	return fallback
}
