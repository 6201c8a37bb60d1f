package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	DatabaseURL       string `mapstructure:"DATABASE_URL"`
	DatabaseName      string `mapstructure:"DATABASE_NAME"`
	Env               string `mapstructure:"ENV"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// Redis configuration.
	RedisAddr        string `mapstructure:"REDIS_ADDR"`
	RedisPassword    string `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB     int    `mapstructure:"REDIS_CACHE_DB"`
	RedisSelectionDB int    `mapstructure:"REDIS_SELECTION_DB"`

	// Delivery slot engine.
	Timezone                 string        `mapstructure:"TIMEZONE"`
	InvoiceFee               float64       `mapstructure:"INVOICE_FEE"`
	SlotReevaluationInterval time.Duration `mapstructure:"SLOT_REEVALUATION_INTERVAL"`
	CatalogFetchTimeout      time.Duration `mapstructure:"CATALOG_FETCH_TIMEOUT"`
	SlotCatalogCacheTTL      time.Duration `mapstructure:"SLOT_CATALOG_CACHE_TTL"`
	SelectionTTL             time.Duration `mapstructure:"SELECTION_TTL"`
	SessionIdleTimeout       time.Duration `mapstructure:"SESSION_IDLE_TIMEOUT"`
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func setDefaults() {
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 200)
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("DATABASE_NAME", "basketly")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_CACHE_DB", 0)
	viper.SetDefault("REDIS_SELECTION_DB", 1)

	viper.SetDefault("TIMEZONE", "Asia/Kolkata")
	viper.SetDefault("INVOICE_FEE", 4.0)
	viper.SetDefault("SLOT_REEVALUATION_INTERVAL", "60s")
	viper.SetDefault("CATALOG_FETCH_TIMEOUT", "5s")
	viper.SetDefault("SLOT_CATALOG_CACHE_TTL", "60s")
	viper.SetDefault("SELECTION_TTL", "168h")
	viper.SetDefault("SESSION_IDLE_TIMEOUT", "30m")
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}

// Location resolves the configured time zone, falling back to UTC.
func Location() *time.Location {
	loc, err := time.LoadLocation(AppConfig.Timezone)
	if err != nil {
		log.Printf("Unknown TIMEZONE %q, using UTC", AppConfig.Timezone)
		return time.UTC
	}
	return loc
}
