package api

import (
	"github.com/Apurer/go-order-saga/internal/app/ordering"
)

// Config carries environment-driven settings for the orders API process.
type Config struct {
	Port   string
	Orders ordering.Config
}

// LoadConfig reads the orders settings plus the listen port.
func LoadConfig() (Config, error) {
	orders, err := ordering.LoadConfig()
	if err != nil {
		return Config{}, err
	}
	return Config{
		Port:   ordering.EnvDefault("PORT", "8080"),
		Orders: orders,
	}, nil
}
