package config

import (
	"log"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	POS      POSConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
	Schema   string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret        string
	AccessExpiry  int // in minutes
	RefreshExpiry int // in days
}

// POSConfig carries register policy: the jurisdiction tax rate, the
// category whose gram sizes count toward the regulated aggregate, the
// legal ceiling for that aggregate, and the scan-buffer idle window.
type POSConfig struct {
	TaxRate           float64
	RegulatedCategory string
	EquivalentLimitG  float64
	ScanIdleMillis    int
	SessionTTLHours   int
}

func Load() *Config {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SERVER_ENV", "development")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_SCHEMA", "public")
	viper.SetDefault("REDIS_HOST", "localhost")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("JWT_ACCESS_EXPIRY", 15)
	viper.SetDefault("JWT_REFRESH_EXPIRY", 7)
	viper.SetDefault("POS_TAX_RATE", 0.13)
	viper.SetDefault("POS_REGULATED_CATEGORY", "Flower")
	viper.SetDefault("POS_EQUIVALENT_LIMIT_G", 30.0)
	viper.SetDefault("POS_SCAN_IDLE_MS", 300)
	viper.SetDefault("POS_SESSION_TTL_HOURS", 12)

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: Could not read config file: %v", err)
	}

	return &Config{
		Server: ServerConfig{
			Port: viper.GetString("SERVER_PORT"),
			Env:  viper.GetString("SERVER_ENV"),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			Database: viper.GetString("DB_DATABASE"),
			Schema:   viper.GetString("DB_SCHEMA"),
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		JWT: JWTConfig{
			Secret:        viper.GetString("JWT_SECRET"),
			AccessExpiry:  viper.GetInt("JWT_ACCESS_EXPIRY"),
			RefreshExpiry: viper.GetInt("JWT_REFRESH_EXPIRY"),
		},
		POS: POSConfig{
			TaxRate:           viper.GetFloat64("POS_TAX_RATE"),
			RegulatedCategory: viper.GetString("POS_REGULATED_CATEGORY"),
			EquivalentLimitG:  viper.GetFloat64("POS_EQUIVALENT_LIMIT_G"),
			ScanIdleMillis:    viper.GetInt("POS_SCAN_IDLE_MS"),
			SessionTTLHours:   viper.GetInt("POS_SESSION_TTL_HOURS"),
		},
	}
}
