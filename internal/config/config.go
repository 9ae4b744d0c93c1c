package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Provider ProviderConfig
	Deploy   DeployConfig
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
	Secret string
}

// ProviderConfig points at the external payment processor. API keys are
// per environment; connected merchant accounts come from the database.
type ProviderConfig struct {
	BaseURL     string
	TestAPIKey  string
	LiveAPIKey  string
	CallTimeout time.Duration
}

// DeployConfig tunes the promotion pipeline.
type DeployConfig struct {
	BatchPacing      time.Duration // delay between batch items
	PromotionTimeout time.Duration // overall deadline per promotion
	RateLimitPerMin  int           // promotion requests per creator per minute
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
	viper.SetDefault("PROVIDER_BASE_URL", "https://api.payprovider.test")
	viper.SetDefault("PROVIDER_CALL_TIMEOUT_SECONDS", 20)
	viper.SetDefault("DEPLOY_BATCH_PACING_MS", 500)
	viper.SetDefault("DEPLOY_PROMOTION_TIMEOUT_SECONDS", 120)
	viper.SetDefault("DEPLOY_RATE_LIMIT_PER_MIN", 30)

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
			Secret: viper.GetString("JWT_SECRET"),
		},
		Provider: ProviderConfig{
			BaseURL:     viper.GetString("PROVIDER_BASE_URL"),
			TestAPIKey:  viper.GetString("PROVIDER_TEST_API_KEY"),
			LiveAPIKey:  viper.GetString("PROVIDER_LIVE_API_KEY"),
			CallTimeout: time.Duration(viper.GetInt("PROVIDER_CALL_TIMEOUT_SECONDS")) * time.Second,
		},
		Deploy: DeployConfig{
			BatchPacing:      time.Duration(viper.GetInt("DEPLOY_BATCH_PACING_MS")) * time.Millisecond,
			PromotionTimeout: time.Duration(viper.GetInt("DEPLOY_PROMOTION_TIMEOUT_SECONDS")) * time.Second,
			RateLimitPerMin:  viper.GetInt("DEPLOY_RATE_LIMIT_PER_MIN"),
		},
	}
}
