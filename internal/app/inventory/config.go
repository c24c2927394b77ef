package inventory

import (
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/Apurer/go-order-saga/internal/app/ordering"
)

// Config carries environment-driven settings for the inventory authority process.
type Config struct {
	Port        string
	PostgresDSN string
	SeedCatalog bool
}

func LoadConfig() Config {
	_ = godotenv.Load()
	return Config{
		Port:        ordering.EnvDefault("PORT", "5001"),
		PostgresDSN: strings.TrimSpace(os.Getenv("POSTGRES_DSN")),
		SeedCatalog: ordering.IsTruthy(ordering.EnvDefault("SEED_CATALOG", "true")),
	}
}
