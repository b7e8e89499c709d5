package config

import (
	"os"
	"strconv"
	"time"
	_ "time/tzdata"
)

// DatabaseConfig holds PostgreSQL database connection settings.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
}

// MinIOConfig holds object storage settings for MinIO.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// RedisConfig holds the extraction cache settings.
// An empty URL disables the cache.
type RedisConfig struct {
	URL       string
	TTLSec    int
	KeyPrefix string
}

// LLMConfig holds settings for the Gemini API used for placeholder
// extraction and chat.
type LLMConfig struct {
	APIKey        string
	Model         string
	Temperature   float64
	MaxInputChars int
	TimeoutSec    int
	HistoryLimit  int
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost        string
	Port           string
	LogMode        string
	Timezone       string
	SnippetPadding int
	MaxUploadBytes int
	Database       DatabaseConfig
	MinIO          MinIOConfig
	Redis          RedisConfig
	LLM            LLMConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	return &AppConfig{
		AppHost:        getEnv("APP_HOST", "localhost:8080"),
		Port:           getEnv("PORT", "8080"),
		LogMode:        getEnv("LOG_MODE", "production"),
		Timezone:       getEnv("APP_TIMEZONE", "UTC"),
		SnippetPadding: getEnvInt("SNIPPET_PADDING", 80),
		MaxUploadBytes: getEnvInt("MAX_UPLOAD_BYTES", 20<<20),
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", ""),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		Redis: RedisConfig{
			URL:       getEnv("REDIS_URL", ""),
			TTLSec:    getEnvInt("CACHE_TTL_SEC", 7*24*3600),
			KeyPrefix: getEnv("CACHE_KEY_PREFIX", "jurisflo:extract:"),
		},
		LLM: LLMConfig{
			APIKey:        getEnv("GEMINI_API_KEY", ""),
			Model:         getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
			Temperature:   getEnvFloat("LLM_TEMPERATURE", 0.2),
			MaxInputChars: getEnvInt("LLM_MAX_INPUT_CHARS", 120000),
			TimeoutSec:    getEnvInt("LLM_TIMEOUT_SEC", 120),
			HistoryLimit:  getEnvInt("CHAT_HISTORY_LIMIT", 20),
		},
	}
}

// Location resolves Timezone, falling back to UTC when it is unknown.
func (c *AppConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err == nil {
			return f
		}
	}
	return def
}
