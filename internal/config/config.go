package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort string
	AppEnv  string

	// StorageDriver is memory, sqlite or postgres.
	StorageDriver  string
	DBPath         string
	DBURL          string
	DBHost         string
	DBUser         string
	DBPassword     string
	DBName         string
	DBPort         string
	AutoMigrate    bool
	StorageTimeout time.Duration

	Seed bool

	RateSourceURL string
	Rates         string
	RateTimeout   time.Duration
	// BaseCurrency is what Currency.rate quotes against.
	BaseCurrency string

	CORSOrigin string
}

// LoadConfig reads .env when present, then the process environment.
func LoadConfig() *Config {
	_ = godotenv.Load()

	return &Config{
		AppPort:        getEnv("APP_PORT", "8080"),
		AppEnv:         getEnv("APP_ENV", "development"),
		StorageDriver:  getEnv("STORAGE_DRIVER", "memory"),
		DBPath:         getEnv("DB_PATH", "data/fixtures.db"),
		DBURL:          os.Getenv("DB_URL"),
		DBHost:         os.Getenv("DB_HOST"),
		DBUser:         os.Getenv("DB_USER"),
		DBPassword:     os.Getenv("DB_PASSWORD"),
		DBName:         os.Getenv("DB_NAME"),
		DBPort:         getEnv("DB_PORT", "5432"),
		AutoMigrate:    getBool("AUTO_MIGRATE", false),
		StorageTimeout: getDuration("STORAGE_TIMEOUT", 5*time.Second),
		Seed:           getBool("SEED", true),
		RateSourceURL:  os.Getenv("RATE_SOURCE_URL"),
		Rates:          os.Getenv("RATES"),
		RateTimeout:    getDuration("RATE_TIMEOUT", 2*time.Second),
		BaseCurrency:   strings.ToUpper(getEnv("BASE_CURRENCY", "USD")),
		CORSOrigin:     getEnv("CORS_ORIGIN", "*"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
