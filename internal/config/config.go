package config

import (
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Scraper  ScraperConfig
	Currency string
}

type ServerConfig struct {
	Port           string
	Env            string
	AllowedOrigins []string
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

type ScraperConfig struct {
	BaseURL           string
	TimeoutSeconds    int
	RequestsPerMinute int
	Retailers         []string
}

func Load() *Config {
	// Export .env entries into the process environment so AutomaticEnv sees
	// them alongside real environment variables.
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: no .env file loaded: %v", err)
	}

	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SERVER_ENV", "development")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:5174")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_SCHEMA", "public")
	// Empty REDIS_HOST leaves the rate limiter disabled.
	viper.SetDefault("REDIS_HOST", "")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("SCRAPER_BASE_URL", "http://localhost:8600")
	viper.SetDefault("SCRAPER_TIMEOUT_SECONDS", 30)
	viper.SetDefault("SCRAPER_REQUESTS_PER_MINUTE", 30)
	viper.SetDefault("SCRAPER_RETAILERS", "jumbo,santaisabel,lider")
	viper.SetDefault("DEFAULT_CURRENCY", "CLP")

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: Could not read config file: %v", err)
	}

	return &Config{
		Server: ServerConfig{
			Port:           viper.GetString("SERVER_PORT"),
			Env:            viper.GetString("SERVER_ENV"),
			AllowedOrigins: splitList(viper.GetString("CORS_ALLOWED_ORIGINS")),
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
		Scraper: ScraperConfig{
			BaseURL:           viper.GetString("SCRAPER_BASE_URL"),
			TimeoutSeconds:    viper.GetInt("SCRAPER_TIMEOUT_SECONDS"),
			RequestsPerMinute: viper.GetInt("SCRAPER_REQUESTS_PER_MINUTE"),
			Retailers:         splitList(viper.GetString("SCRAPER_RETAILERS")),
		},
		Currency: viper.GetString("DEFAULT_CURRENCY"),
	}
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
