package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type HoldStoreKind string

const (
	HoldStoreMemory   HoldStoreKind = "memory"
	HoldStorePostgres HoldStoreKind = "postgres"
)

type Config struct {
	AppEnv     string
	AppPort    string
	TerminalID string
	OutletID   string
	Timezone   string
	UIOrigin   string

	BackendURL     string
	BackendToken   string
	BackendTimeout time.Duration
	PrinterURL     string

	ClampDiscounts        bool
	RecallRequiresConfirm bool

	HoldStore  HoldStoreKind
	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string

	RedisAddr string

	ProductCacheSize int
	ProductCacheTTL  time.Duration
}

func LoadConfig() *Config {
	_ = godotenv.Load()

	return &Config{
		AppEnv:     getEnv("APP_ENV", "development"),
		AppPort:    getEnv("APP_PORT", "8090"),
		TerminalID: getEnv("TERMINAL_ID", "till-01"),
		OutletID:   os.Getenv("OUTLET_ID"),
		Timezone:   getEnv("TIMEZONE", "Asia/Jakarta"),
		UIOrigin:   getEnv("UI_ORIGIN", "http://localhost:3000"),

		BackendURL:     getEnv("BACKEND_URL", "http://localhost:8080/api"),
		BackendToken:   os.Getenv("BACKEND_TOKEN"),
		BackendTimeout: getDuration("BACKEND_TIMEOUT", 15*time.Second),
		PrinterURL:     os.Getenv("PRINTER_URL"),

		ClampDiscounts:        getBool("CLAMP_DISCOUNTS", false),
		RecallRequiresConfirm: getBool("RECALL_REQUIRES_CONFIRM", true),

		HoldStore:  HoldStoreKind(getEnv("HOLD_STORE", string(HoldStoreMemory))),
		DBHost:     os.Getenv("DB_HOST"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),
		DBPort:     getEnv("DB_PORT", "5432"),

		RedisAddr: os.Getenv("REDIS_ADDR"),

		ProductCacheSize: getInt("PRODUCT_CACHE_SIZE", 256),
		ProductCacheTTL:  getDuration("PRODUCT_CACHE_TTL", 30*time.Second),
	}
}

// Location resolves the configured timezone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
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

func getInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}
