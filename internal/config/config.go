package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"questioner.dev/reference-db/internal/logger"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

var defaultSeedFiles = []string{
	"database/seed_data.sql",
	"database/corrected_seed_data.sql",
	"database/additional_seed_data.sql",
}

type Config struct {
	HTTPPort        string
	Environment     string
	DatabaseURL     string
	LogLevel        string
	SeedFiles       []string
	CORSOrigins     []string
	RateLimitRPS    float64
	RateLimitBurst  int
	ShutdownTimeout time.Duration
}

// IsProduction reports whether error details must be hidden from clients.
func (c Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

// LoadConfig reads an optional .env file and then the process environment.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Println("No .env file found, relying on environment variables")
	}

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", "3000")
	v.SetDefault("NODE_ENV", EnvDevelopment)
	v.SetDefault("DATABASE_URL", "database/questioner.db")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("SEED_FILES", strings.Join(defaultSeedFiles, ","))
	v.SetDefault("CORS_ORIGIN", "")
	v.SetDefault("RATE_LIMIT_RPS", 20)
	v.SetDefault("RATE_LIMIT_BURST", 40)
	v.SetDefault("SHUTDOWN_TIMEOUT", 30)

	env := strings.ToLower(strings.TrimSpace(v.GetString("APP_ENV")))
	if env == "" {
		env = strings.ToLower(strings.TrimSpace(v.GetString("NODE_ENV")))
	}

	cfg := &Config{
		HTTPPort:        v.GetString("PORT"),
		Environment:     env,
		DatabaseURL:     v.GetString("DATABASE_URL"),
		LogLevel:        v.GetString("LOG_LEVEL"),
		SeedFiles:       splitList(v.GetString("SEED_FILES")),
		CORSOrigins:     splitList(v.GetString("CORS_ORIGIN")),
		RateLimitRPS:    v.GetFloat64("RATE_LIMIT_RPS"),
		RateLimitBurst:  v.GetInt("RATE_LIMIT_BURST"),
		ShutdownTimeout: time.Duration(v.GetInt("SHUTDOWN_TIMEOUT")) * time.Second,
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Environment != EnvDevelopment && c.Environment != EnvProduction {
		return fmt.Errorf("unknown environment %q (want %s or %s)", c.Environment, EnvDevelopment, EnvProduction)
	}
	if strings.TrimSpace(c.HTTPPort) == "" {
		return fmt.Errorf("PORT must not be empty")
	}
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("DATABASE_URL must not be empty")
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0 {
		return fmt.Errorf("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive")
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = 30 * time.Second
	}
	return nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
