// Package config loads and validates application configuration from
// environment variables. Required variables, defaults, and parse failures are
// collected into a single aggregated error so a misconfigured deployment
// reports everything that is wrong at once instead of failing piecemeal.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// DBConfig holds settings for the PostgreSQL connection pool.
type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	MaxConns int
}

// AuthConfig holds authentication-related configuration.
type AuthConfig struct {
	JWTSecret            string        // secret key for signing JWTs
	AccessTokenDuration  time.Duration // lifetime of access tokens
	RefreshTokenDuration time.Duration // lifetime of refresh tokens
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port string
}

// ChatConfig holds settings for the chat module.
type ChatConfig struct {
	HistoryLimit int // default number of messages returned by GET /chat/messages
}

// AppConfig is the top-level configuration structure for the application.
type AppConfig struct {
	DB     *DBConfig
	Auth   *AuthConfig
	Server *ServerConfig
	Chat   *ChatConfig
}

// getRequiredEnv reads a required environment variable, recording an error
// when it is absent.
func getRequiredEnv(key string, errs *[]string) string {
	value, exists := os.LookupEnv(key)
	if !exists {
		*errs = append(*errs, fmt.Sprintf("missing required environment variable: %s", key))
		return ""
	}
	return value
}

// getOptionalEnv reads an optional environment variable with a default.
func getOptionalEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getOptionalEnvInt reads an optional integer environment variable. A value
// that fails to parse records an error and falls back to the default.
func getOptionalEnvInt(key string, defaultValue int, errs *[]string) int {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	valueInt, err := strconv.Atoi(valueStr)
	if err != nil {
		*errs = append(*errs, fmt.Sprintf("invalid value for %s: expected integer, got '%s': %v", key, valueStr, err))
		return defaultValue
	}
	return valueInt
}

// getOptionalEnvDuration reads an optional duration environment variable
// (e.g. "15m", "168h").
func getOptionalEnvDuration(key string, defaultValue time.Duration, errs *[]string) time.Duration {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	valueDuration, err := time.ParseDuration(valueStr)
	if err != nil {
		*errs = append(*errs, fmt.Sprintf("invalid value for %s: expected duration string, got '%s': %v", key, valueStr, err))
		return defaultValue
	}
	return valueDuration
}

// clampPoolSize keeps the connection pool size within sane bounds.
func clampPoolSize(size int, varName string, errs *[]string) int {
	if size < 2 {
		*errs = append(*errs, fmt.Sprintf("pool size for %s (%d) is less than minimum 2, clamping to 2", varName, size))
		return 2
	}
	if size > 100 {
		*errs = append(*errs, fmt.Sprintf("pool size for %s (%d) is greater than maximum 100, clamping to 100", varName, size))
		return 100
	}
	return size
}

// LoadConfig builds an AppConfig from the environment. All problems found
// while loading are returned as one error.
func LoadConfig() (*AppConfig, error) {
	var errs []string

	// Database configuration.
	dbUser := getRequiredEnv("DB_USER", &errs)
	dbPassword := getRequiredEnv("DB_PASSWORD", &errs)
	dbName := getRequiredEnv("DB_NAME", &errs)
	dbHost := getOptionalEnv("DB_HOST", "localhost")
	dbPort := getOptionalEnvInt("DB_PORT", 5432, &errs)
	dbMaxConns := clampPoolSize(getOptionalEnvInt("DB_MAX_CONNS", 10, &errs), "DB_MAX_CONNS", &errs)

	dbConfig := &DBConfig{
		Host:     dbHost,
		Port:     dbPort,
		User:     dbUser,
		Password: dbPassword,
		DBName:   dbName,
		MaxConns: dbMaxConns,
	}

	// Auth configuration.
	jwtSecret := getRequiredEnv("JWT_SECRET", &errs)
	accessTokenDuration := getOptionalEnvDuration("JWT_ACCESS_TOKEN_DURATION", 15*time.Minute, &errs)
	refreshTokenDuration := getOptionalEnvDuration("JWT_REFRESH_TOKEN_DURATION", 168*time.Hour, &errs) // 7 days

	authConfig := &AuthConfig{
		JWTSecret:            jwtSecret,
		AccessTokenDuration:  accessTokenDuration,
		RefreshTokenDuration: refreshTokenDuration,
	}

	// Server configuration. The port stays a string because it is only ever
	// interpolated into a listen address.
	serverConfig := &ServerConfig{
		Port: getOptionalEnv("PORT", "8080"),
	}

	// Chat configuration.
	chatHistory := getOptionalEnvInt("CHAT_HISTORY_LIMIT", 50, &errs)
	if chatHistory < 1 {
		errs = append(errs, fmt.Sprintf("CHAT_HISTORY_LIMIT (%d) must be at least 1", chatHistory))
		chatHistory = 50
	}
	chatConfig := &ChatConfig{HistoryLimit: chatHistory}

	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration errors:\n- %s", strings.Join(errs, "\n- "))
	}

	return &AppConfig{
		DB:     dbConfig,
		Auth:   authConfig,
		Server: serverConfig,
		Chat:   chatConfig,
	}, nil
}
