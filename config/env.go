package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

type AppEnv struct {
	LogLvl string

	PgHost     string
	PgPort     string
	PgUser     string
	PgPassword string
	PgDbName   string
	SSLMode    string
	TimeZone   string

	JWTSecret string

	AdminEmail    string
	AdminPassword string
}

// GetEnvironment reads process env. A .env file in the working directory is
// loaded first when present; it never overrides variables already set.
func GetEnvironment() (env AppEnv, err error) {
	if _, statErr := os.Stat(".env"); statErr == nil {
		if err := godotenv.Load(); err != nil {
			return env, fmt.Errorf("failed to load .env: %w", err)
		}
	}

	env = AppEnv{
		LogLvl:        getEnv("LOG_LEVEL", "debug"),
		PgHost:        getEnv("POSTGRES_HOST", ""),
		PgPort:        getEnv("POSTGRES_PORT", ""),
		PgUser:        getEnv("POSTGRES_USER", ""),
		PgPassword:    getEnv("POSTGRES_PASSWORD", ""),
		PgDbName:      getEnv("POSTGRES_DB", ""),
		SSLMode:       getEnv("POSTGRES_SSL_MODE", "disable"),
		TimeZone:      getEnv("POSTGRES_TIMEZONE", "UTC"),
		JWTSecret:     getEnv("JWT_SECRET", ""),
		AdminEmail:    getEnv("ADMIN_EMAIL", ""),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),
	}

	if env.PgHost == "" || env.PgPort == "" || env.PgUser == "" ||
		env.PgPassword == "" || env.PgDbName == "" {
		return env, fmt.Errorf("incorrect environment params: postgres connection is not configured")
	}

	if env.JWTSecret == "" {
		return env, fmt.Errorf("incorrect environment params: JWT_SECRET is empty")
	}

	return env, nil
}

func getEnv(key string, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}

	return defaultVal
}
