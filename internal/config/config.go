package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

var DefaultEnvConfig *envConfig

type envConfig struct {
	// database config
	DB_HOST              string
	DB_PORT              int
	DB_USER              string
	DB_PASSWORD          string
	DB_NAME              string
	DB_SSL_MODE          string
	DB_CONN_MAX_LIFETIME time.Duration
	DB_MAX_IDLE_CONNS    int
	DB_MAX_OPEN_CONNS    int
	// logger config
	LOG_FILE_PATH string
	LOG_LEVEL     string
	// http config
	APP_PORT string
	// workbook config
	EXPORT_SHEET_NAME     string
	SCHEMA_OVERRIDES_PATH string
	IMPORT_BATCH_SIZE     int
	MAX_UPLOAD_BYTES      int64
}

// LoadEnvConfig reads .env files when present and fills DefaultEnvConfig
// from the environment. A missing file is not an error.
func LoadEnvConfig(filenames ...string) error {
	if err := godotenv.Load(filenames...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	DefaultEnvConfig = &envConfig{
		DB_HOST:               getEnvString("DB_HOST", "localhost"),
		DB_PORT:               getEnvInt("DB_PORT", 5432),
		DB_USER:               getEnvString("DB_USER", "postgres"),
		DB_PASSWORD:           getEnvString("DB_PASSWORD", "postgres"),
		DB_NAME:               getEnvString("DB_NAME", "postgres"),
		DB_SSL_MODE:           getEnvString("DB_SSL_MODE", "disable"),
		DB_CONN_MAX_LIFETIME:  getEnvDuration("DB_CONN_MAX_LIFETIME", 20*time.Minute),
		DB_MAX_IDLE_CONNS:     getEnvInt("DB_MAX_IDLE_CONNS", 10),
		DB_MAX_OPEN_CONNS:     getEnvInt("DB_MAX_OPEN_CONNS", 100),
		LOG_FILE_PATH:         getEnvString("LOG_FILE_PATH", ""),
		LOG_LEVEL:             getEnvString("LOG_LEVEL", "info"),
		APP_PORT:              getEnvString("APP_PORT", "8080"),
		EXPORT_SHEET_NAME:     getEnvString("EXPORT_SHEET_NAME", "Employees"),
		SCHEMA_OVERRIDES_PATH: getEnvString("SCHEMA_OVERRIDES_PATH", ""),
		IMPORT_BATCH_SIZE:     getEnvInt("IMPORT_BATCH_SIZE", 1000),
		MAX_UPLOAD_BYTES:      int64(getEnvInt("MAX_UPLOAD_BYTES", 10<<20)),
	}
	return nil
}

func getEnvString(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
		if i, err := strconv.Atoi(val); err == nil {
			return time.Duration(i) * time.Second
		}
	}
	return fallback
}
