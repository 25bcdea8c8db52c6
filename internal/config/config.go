package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config holds all environment-driven settings for the server.
type Config struct {
	Port        string
	MongoURI    string
	MongoDB     string
	JWTSecret   string
	TokenExpiry time.Duration

	// Radius around a location within which an activity counts as a visit.
	LocationMatchRadiusMeters float64

	// Number of leaderboard rows kept per highlight key.
	HighlightTopN int
}

// LoadConfig reads configuration from a .env file and the environment.
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		logrus.Warn("No .env file found, relying on environment variables")
	}

	return &Config{
		Port:                      getEnv("PORT", "8080"),
		MongoURI:                  getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:                   getEnv("MONGO_DB", "stride"),
		JWTSecret:                 getEnv("JWT_SECRET", "dev-secret"),
		TokenExpiry:               getEnvDuration("TOKEN_EXPIRY", 24*time.Hour),
		LocationMatchRadiusMeters: getEnvFloat("LOCATION_MATCH_RADIUS_METERS", 250),
		HighlightTopN:             getEnvInt("HIGHLIGHT_TOP_N", 3),
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
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
		logrus.WithField("key", key).Warn("Invalid integer in environment, using fallback")
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
		logrus.WithField("key", key).Warn("Invalid float in environment, using fallback")
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
		logrus.WithField("key", key).Warn("Invalid duration in environment, using fallback")
	}
	return fallback
}
