package config

import (
	"os"
	"strconv"
)

type Config struct {
	Port             string
	Env              string
	JWTSecret        string
	JWTExpiry        int // in hours
	LogLevel         string
	MaxMessageLength int
	CORSOrigin       string

	// MySQLDSN selects the durable store; empty means in-memory.
	MySQLDSN string

	// RedisAddr enables the reaction cache and the mirror-repair worker;
	// empty disables both.
	RedisAddr     string
	RedisPassword string
}

func Load() Config {
	return Config{
		Port:             getEnv("PORT", "5000"),
		Env:              getEnv("APP_ENV", "development"),
		JWTSecret:        getEnv("JWT_SECRET", "dev-super-secret-change-me"),
		JWTExpiry:        getEnvAsInt("JWT_EXPIRY", 168),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		MaxMessageLength: getEnvAsInt("MAX_MESSAGE_LENGTH", 1000),
		CORSOrigin:       getEnv("CORS_ORIGIN", "*"),
		MySQLDSN:         getEnv("MYSQL_DSN", ""),
		RedisAddr:        getEnv("REDIS_ADDR", ""),
		RedisPassword:    getEnv("REDIS_PASSWORD", ""),
	}
}

func (c Config) IsProduction() bool { return c.Env == "production" }

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
