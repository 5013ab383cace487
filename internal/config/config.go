package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

// AccountSource selects how ledger accounts for tax charge rows are
// resolved: from the company record or from the resolved tax template.
const (
	AccountSourceCompany  = "company"
	AccountSourceTemplate = "template"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	HTTPAddr    string

	LogLevel string

	// CurrencyPrecision is the number of decimal places monetary outputs
	// are rounded to before being stored.
	CurrencyPrecision int32

	// AccountSource is AccountSourceCompany or AccountSourceTemplate.
	AccountSource string

	// RefDataCacheTTLSeconds bounds the reference-data read cache.
	RefDataCacheTTLSeconds int

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		AppName:     getenv("APP_SERVICE", "taxcore"),
		AppVersion:  getenv("APP_VERSION", "0.1.0"),
		Environment: getenv("ENVIRONMENT", "development"),
		HTTPAddr:    getenv("HTTP_ADDR", ":8080"),

		LogLevel: getenv("LOG_LEVEL", "info"),

		CurrencyPrecision: int32(getenvInt("CURRENCY_PRECISION", 2)),
		AccountSource:     normalizeAccountSource(getenv("ACCOUNT_SOURCE", AccountSourceTemplate)),

		RefDataCacheTTLSeconds: getenvInt("REFDATA_CACHE_TTL_SECONDS", 600),

		DBType:     getenv("DATABASE_TYPE", "postgres"),
		DBHost:     getenv("DATABASE_HOST", "localhost"),
		DBPort:     getenv("DATABASE_PORT", "5432"),
		DBName:     getenv("DATABASE_NAME", "taxcore"),
		DBUser:     getenv("DATABASE_USER", "postgres"),
		DBPassword: getenv("DATABASE_PASSWORD", ""),
		DBSSLMode:  getenv("DATABASE_SSLMODE", "disable"),

		DBMaxIdleConn:     getenvInt("DATABASE_MAX_IDLE_CONN", 5),
		DBMaxOpenConn:     getenvInt("DATABASE_MAX_OPEN_CONN", 25),
		DBConnMaxLifetime: getenvInt("DATABASE_CONN_MAX_LIFETIME", 300),
	}
}

// Module provides Config to the fx graph.
var Module = fx.Module("config",
	fx.Provide(Load),
)

func normalizeAccountSource(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case AccountSourceCompany:
		return AccountSourceCompany
	default:
		return AccountSourceTemplate
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}
