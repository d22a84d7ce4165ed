package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds the runtime knobs loaded from environment variables.
type Config struct {
	PostgresEnabled  bool
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	MaxConcurrency int
	RateLimitMs    int
	MaxRetries     int

	RawCSVPath   string
	CleanCSVPath string
	SQLitePath   string
	CookiePath   string
	ChromeBin    string

	// Which raw field supplies the price for historical batches. Listing
	// pages expose both the final sold price and the last asking price, and
	// the two disagree on negotiated sales, so the choice is explicit
	// configuration rather than a hardcoded pick.
	SoldPriceField string
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		PostgresEnabled:  getEnvBool("POSTGRES_ENABLED", false),
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "scraper"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "scraper123"),
		PostgresDB:       getEnv("POSTGRES_DB", "funda_db"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		MaxConcurrency: getEnvInt("MAX_CONCURRENCY", 4),
		RateLimitMs:    getEnvInt("RATE_LIMIT_MS", 1500),
		MaxRetries:     getEnvInt("MAX_RETRIES", 3),

		RawCSVPath:   getEnv("RAW_CSV_PATH", "./data/raw_listings.csv"),
		CleanCSVPath: getEnv("CLEAN_CSV_PATH", "./data/clean_listings.csv"),
		SQLitePath:   getEnv("SQLITE_PATH", "./data/funda.db"),
		CookiePath:   getEnv("COOKIE_PATH", "./data/cookies.json"),
		ChromeBin:    getEnv("CHROME_BIN", ""),

		SoldPriceField: getEnv("SOLD_PRICE_FIELD", "price_sold"),
	}
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		b, err := strconv.ParseBool(val)
		if err == nil {
			return b
		}
	}
	return fallback
}
