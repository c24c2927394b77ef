// Package ordering builds the orders service shared by the API and worker processes.
package ordering

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.temporal.io/sdk/client"

	inventorygw "github.com/Apurer/go-order-saga/internal/domains/orders/adapters/external/inventory"
)

// Config carries environment-driven settings for the orders saga and its adapters.
type Config struct {
	PostgresDSN       string
	InventoryURL      string
	InventoryTimeout  time.Duration
	ReleaseMode       inventorygw.ReleaseMode
	RedisAddr         string
	IdempotencyTTL    time.Duration
	KafkaBrokers      []string
	KafkaOrderTopic   string
	TemporalAddress   string
	TemporalNamespace string
	TemporalDisabled  bool
	RollbackTimeout   time.Duration
}

// LoadConfig reads an optional .env file and the environment, then applies defaults.
func LoadConfig() (Config, error) {
	_ = godotenv.Load()

	releaseMode, err := inventorygw.ParseReleaseMode(strings.ToLower(envDefault("INVENTORY_RELEASE_MODE", "http")))
	if err != nil {
		return Config{}, fmt.Errorf("INVENTORY_RELEASE_MODE: %w", err)
	}
	cfg := Config{
		PostgresDSN:       strings.TrimSpace(os.Getenv("POSTGRES_DSN")),
		InventoryURL:      strings.TrimRight(envDefault("INVENTORY_URL", "http://localhost:5001"), "/"),
		ReleaseMode:       releaseMode,
		RedisAddr:         strings.TrimSpace(os.Getenv("REDIS_ADDR")),
		KafkaBrokers:      splitList(os.Getenv("KAFKA_BROKERS")),
		KafkaOrderTopic:   envDefault("KAFKA_ORDER_TOPIC", "orders.confirmed"),
		TemporalAddress:   envDefault("TEMPORAL_ADDRESS", client.DefaultHostPort),
		TemporalNamespace: envDefault("TEMPORAL_NAMESPACE", client.DefaultNamespace),
		TemporalDisabled:  isTruthy(os.Getenv("TEMPORAL_DISABLED")),
	}
	if cfg.InventoryTimeout, err = positiveDuration("INVENTORY_TIMEOUT_MS", 5000, time.Millisecond); err != nil {
		return Config{}, err
	}
	if cfg.RollbackTimeout, err = positiveDuration("ROLLBACK_TIMEOUT_MS", 10000, time.Millisecond); err != nil {
		return Config{}, err
	}
	if cfg.IdempotencyTTL, err = positiveDuration("IDEMPOTENCY_TTL_HOURS", 24, time.Hour); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func positiveDuration(key string, fallback int, unit time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return time.Duration(fallback) * unit, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer", key)
	}
	return time.Duration(n) * unit, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// EnvDefault returns the trimmed value of key, or fallback when unset.
func EnvDefault(key, fallback string) string {
	return envDefault(key, fallback)
}

// IsTruthy accepts 1, true and yes in any case.
func IsTruthy(value string) bool {
	return isTruthy(value)
}

func envDefault(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func isTruthy(value string) bool {
	value = strings.TrimSpace(strings.ToLower(value))
	return value == "1" || value == "true" || value == "yes"
}
