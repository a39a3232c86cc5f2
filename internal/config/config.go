package config

import (
	"log"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all runtime settings, read from the environment.
type Config struct {
	Port               string        `env:"PORT" env-default:"8080"`
	DBPath             string        `env:"DB_PATH" env-default:"./retro_pricer.db"`
	DataDir            string        `env:"DATA_DIR" env-default:"./data"`
	AnthropicAPIKey    string        `env:"ANTHROPIC_API_KEY"`
	CORSAllowedOrigins string        `env:"CORS_ALLOWED_ORIGINS"`
	PriceCacheTTL      time.Duration `env:"PRICE_CACHE_TTL" env-default:"24h"`
	BuylistTTL         time.Duration `env:"BUYLIST_TTL" env-default:"1h"`
}

// MustLoad reads configuration from the environment and exits on failure.
func MustLoad() *Config {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		log.Fatalf("cannot read config: %v", err)
	}
	return &cfg
}
