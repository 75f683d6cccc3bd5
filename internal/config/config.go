// Package config provides application configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const defaultJWTSecret = "your-secret-key-change-in-production"

// Config holds application configuration values loaded from file or environment variables.
type Config struct {
	JWTSecret                string  `mapstructure:"JWT_SECRET"`
	Port                     string  `mapstructure:"PORT"`
	Env                      string  `mapstructure:"APP_ENV"`
	DBDriver                 string  `mapstructure:"DB_DRIVER"`
	DBPath                   string  `mapstructure:"DB_PATH"`
	DBHost                   string  `mapstructure:"DB_HOST"`
	DBPort                   string  `mapstructure:"DB_PORT"`
	DBUser                   string  `mapstructure:"DB_USER"`
	DBPassword               string  `mapstructure:"DB_PASSWORD"`
	DBName                   string  `mapstructure:"DB_NAME"`
	DBSSLMode                string  `mapstructure:"DB_SSLMODE"`
	DBReadHost               string  `mapstructure:"DB_READ_HOST"`
	DBReadPort               string  `mapstructure:"DB_READ_PORT"`
	DBReadUser               string  `mapstructure:"DB_READ_USER"`
	DBReadPassword           string  `mapstructure:"DB_READ_PASSWORD"`
	DBMaxOpenConns           int     `mapstructure:"DB_MAX_OPEN_CONNS"`
	DBMaxIdleConns           int     `mapstructure:"DB_MAX_IDLE_CONNS"`
	DBConnMaxLifetimeMinutes int     `mapstructure:"DB_CONN_MAX_LIFETIME_MINUTES"`
	RedisURL                 string  `mapstructure:"REDIS_URL"`
	AllowedOrigins           string  `mapstructure:"ALLOWED_ORIGINS"`
	PostCreatedAtDaysAgo     int     `mapstructure:"POST_CREATED_AT_DAYS_AGO"`
	PageSize                 int     `mapstructure:"PAGE_SIZE"`
	MediaRoot                string  `mapstructure:"MEDIA_ROOT"`
	MediaURL                 string  `mapstructure:"MEDIA_URL"`
	MediaMaxUploadMB         int     `mapstructure:"MEDIA_MAX_UPLOAD_MB"`
	TracingEnabled           bool    `mapstructure:"TRACING_ENABLED"`
	TracingExporter          string  `mapstructure:"TRACING_EXPORTER"`
	OTLPEndpoint             string  `mapstructure:"OTLP_ENDPOINT"`
	TracingSamplerRatio      float64 `mapstructure:"TRACING_SAMPLER_RATIO"`
	DevBootstrapStaff        bool    `mapstructure:"DEV_BOOTSTRAP_STAFF"`
	DevStaffUsername         string  `mapstructure:"DEV_STAFF_USERNAME"`
	DevStaffEmail            string  `mapstructure:"DEV_STAFF_EMAIL"`
	DevStaffPassword         string  `mapstructure:"DEV_STAFF_PASSWORD"`
}

// LoadConfig loads application configuration from .env, config files and environment variables.
func LoadConfig() (*Config, error) {
	// A missing .env is normal outside local development.
	for _, location := range []string{".env", "../.env", "../../.env"} {
		if err := godotenv.Load(location); err == nil {
			break
		}
	}

	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.AddConfigPath("../..")
	viper.SetConfigName("config")
	viper.SetConfigType("yml")
	viper.AutomaticEnv()

	// The base config file is optional.
	_ = viper.ReadInConfig()

	env := viper.GetString("APP_ENV")
	if env == "" {
		env = "development"
	}

	if env != "development" && env != "test" {
		viper.SetConfigName("config." + env)
		if err := viper.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("required profile-specific config 'config.%s.yml' not found: %w", env, err)
		}
		log.Printf("Loaded profile-specific configuration: config.%s.yml", env)
	}

	SetDefaults()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	config.normalize()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// SetDefaults registers development defaults with viper.
func SetDefaults() {
	viper.SetDefault("PORT", "8375")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("DB_DRIVER", "postgres")
	viper.SetDefault("DB_PATH", "agora.db")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_USER", "user")
	viper.SetDefault("DB_PASSWORD", "password")
	viper.SetDefault("DB_NAME", "agora")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("DB_READ_HOST", "")
	viper.SetDefault("DB_READ_PORT", "5432")
	viper.SetDefault("DB_READ_USER", "user")
	viper.SetDefault("DB_READ_PASSWORD", "password")
	viper.SetDefault("DB_MAX_OPEN_CONNS", 25)
	viper.SetDefault("DB_MAX_IDLE_CONNS", 5)
	viper.SetDefault("DB_CONN_MAX_LIFETIME_MINUTES", 5)
	viper.SetDefault("REDIS_URL", "localhost:6379")
	viper.SetDefault("JWT_SECRET", defaultJWTSecret)
	viper.SetDefault("ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173")
	viper.SetDefault("POST_CREATED_AT_DAYS_AGO", 30)
	viper.SetDefault("PAGE_SIZE", 10)
	viper.SetDefault("MEDIA_ROOT", "./media")
	viper.SetDefault("MEDIA_URL", "/media")
	viper.SetDefault("MEDIA_MAX_UPLOAD_MB", 10)
	viper.SetDefault("TRACING_ENABLED", false)
	viper.SetDefault("TRACING_EXPORTER", "stdout")
	viper.SetDefault("OTLP_ENDPOINT", "localhost:4318")
	viper.SetDefault("TRACING_SAMPLER_RATIO", 1.0)
	viper.SetDefault("DEV_BOOTSTRAP_STAFF", false)
	viper.SetDefault("DEV_STAFF_USERNAME", "agora_staff")
	viper.SetDefault("DEV_STAFF_EMAIL", "staff@agora.local")
}

func (c *Config) normalize() {
	c.DBDriver = strings.ToLower(strings.TrimSpace(c.DBDriver))
	c.DBSSLMode = strings.ToLower(strings.TrimSpace(c.DBSSLMode))
	c.Env = strings.ToLower(strings.TrimSpace(c.Env))
	c.MediaURL = "/" + strings.Trim(c.MediaURL, "/")
}

// IsProduction reports whether the config targets a production deployment.
func (c *Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}

// RecencyWindow is how far back the all-posts and followed feeds look. Zero disables the filter.
func (c *Config) RecencyWindow() time.Duration {
	if c.PostCreatedAtDaysAgo <= 0 {
		return 0
	}
	return time.Duration(c.PostCreatedAtDaysAgo) * 24 * time.Hour
}

// Validate ensures that required configuration values are present and meet security standards.
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT is required")
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	switch c.DBDriver {
	case "", "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q (use postgres or sqlite)", c.DBDriver)
	}
	if c.PageSize < 0 || c.PageSize > 100 {
		return errors.New("PAGE_SIZE must be between 0 and 100")
	}
	if c.MediaMaxUploadMB < 0 {
		return errors.New("MEDIA_MAX_UPLOAD_MB must not be negative")
	}
	if c.DBConnMaxLifetimeMinutes < 0 {
		return errors.New("DB_CONN_MAX_LIFETIME_MINUTES must not be negative")
	}

	// Strict checks for production
	if c.IsProduction() {
		if c.JWTSecret == defaultJWTSecret {
			return errors.New("JWT_SECRET must be changed from the default value in production")
		}
		if len(c.JWTSecret) < 32 {
			return errors.New("JWT_SECRET must be at least 32 characters in production")
		}
		if c.DBDriver == "sqlite" {
			return errors.New("DB_DRIVER sqlite is not supported in production")
		}
		if c.DBPassword == "password" || c.DBPassword == "" {
			return errors.New("a strong DB_PASSWORD is required in production")
		}
		if c.DBSSLMode == "disable" || c.DBSSLMode == "" {
			return errors.New("DB_SSLMODE must enable TLS in production")
		}
		if c.AllowedOrigins == "*" {
			log.Println("WARNING: ALLOWED_ORIGINS is set to '*' in production. This is insecure.")
		}
	} else if len(c.JWTSecret) < 32 {
		log.Println("WARNING: JWT_SECRET is shorter than 32 characters. Consider using a stronger secret for production.")
	}

	return nil
}
