package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config stores the engine and adapter configuration. Engine defaults are
// chosen so the library is usable with an empty environment.
type Config struct {
	// Engine
	SampleRate   int           // Samples per second for decode and processing
	FFTSize      int           // Analyzer FFT window, power of two
	PollInterval time.Duration // Playhead poll driving auto-advance
	HistoryLimit int           // Max retained listen-history entries
	LoadTimeout  time.Duration // Per-load fetch+decode bound, 0 disables
	SettingsPath string        // Optional audio settings file watched for changes

	// Redis (persistence adapter)
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// MySQL (catalog adapter)
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// MinIO (media fetch adapter)
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioRegion    string
	MinioUseSSL    bool

	// Logging
	LogLevel string
	LogPath  string
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt gets an environment variable as int or returns a default value.
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

// getEnvBool gets an environment variable as bool or returns a default value.
func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}

// getEnvDuration gets an environment variable as a duration or returns a
// default value.
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

// Load loads configuration from environment variables (via .env file) or defaults.
func Load() *Config {
	// godotenv.Load will not override variables already set in the environment.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on existing environment variables and defaults.")
	}

	return &Config{
		SampleRate:   getEnvInt("ECHOFM_SAMPLE_RATE", 44100),
		FFTSize:      getEnvInt("ECHOFM_FFT_SIZE", 2048),
		PollInterval: getEnvDuration("ECHOFM_POLL_INTERVAL", time.Second),
		HistoryLimit: getEnvInt("ECHOFM_HISTORY_LIMIT", 200),
		LoadTimeout:  getEnvDuration("ECHOFM_LOAD_TIMEOUT", 30*time.Second),
		SettingsPath: getEnv("ECHOFM_SETTINGS_PATH", ""),

		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "3306"),
		DBUser:     getEnv("DB_USER", "echofm"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "echofm"),

		MinioEndpoint:  getEnv("MINIO_ENDPOINT", "localhost:9000"),
		MinioAccessKey: getEnv("MINIO_ACCESS_KEY", ""),
		MinioSecretKey: getEnv("MINIO_SECRET_KEY", ""),
		MinioBucket:    getEnv("MINIO_BUCKET", "echofm"),
		MinioRegion:    getEnv("MINIO_REGION", "us-east-1"),
		MinioUseSSL:    getEnvBool("MINIO_USE_SSL", false),

		LogLevel: getEnv("LOG_LEVEL", "info"),
		LogPath:  getEnv("LOG_PATH", ""),
	}
}
