package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultServiceName       = "minishop-checkout"
	DefaultHTTPAddr          = ":8080"
	DefaultOrderTopic        = "order.created"
	DefaultEmailTopic        = "order.confirmation_requested"
	DefaultPaymentTimeout    = 5 * time.Second
	DefaultSideEffectTimeout = 2 * time.Second
	DefaultIdempotencyTTL    = 24 * time.Hour
	DefaultShutdownTimeout   = 10 * time.Second
)

// Config is read once at startup. Empty backend addresses select the in-memory adapters.
type Config struct {
	ServiceName string
	Env         string
	HTTPAddr    string
	LogFile     string

	DatabaseURL string
	RedisAddr   string

	KafkaBrokers    []string
	KafkaOrderTopic string
	KafkaEmailTopic string

	PaymentGatewayURL string
	PaymentTimeout    time.Duration

	SideEffectTimeout time.Duration
	IdempotencyTTL    time.Duration
	SeedProducts      bool

	OtelEndpoint    string
	ShutdownTimeout time.Duration
}

func Load() (*Config, error) {
	cfg := &Config{
		ServiceName:       getenvDefault("SERVICE_NAME", DefaultServiceName),
		Env:               getenvDefault("ENV", "dev"),
		HTTPAddr:          getenvDefault("HTTP_ADDR", DefaultHTTPAddr),
		LogFile:           os.Getenv("LOG_FILE"),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		RedisAddr:         os.Getenv("REDIS_ADDR"),
		KafkaBrokers:      splitList(os.Getenv("KAFKA_BROKERS")),
		KafkaOrderTopic:   getenvDefault("KAFKA_ORDER_TOPIC", DefaultOrderTopic),
		KafkaEmailTopic:   getenvDefault("KAFKA_EMAIL_TOPIC", DefaultEmailTopic),
		PaymentGatewayURL: os.Getenv("PAYMENT_GATEWAY_URL"),
		OtelEndpoint:      os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
	}

	var err error
	if cfg.PaymentTimeout, err = durationEnv("PAYMENT_TIMEOUT", DefaultPaymentTimeout); err != nil {
		return nil, err
	}
	if cfg.SideEffectTimeout, err = durationEnv("SIDE_EFFECT_TIMEOUT", DefaultSideEffectTimeout); err != nil {
		return nil, err
	}
	if cfg.IdempotencyTTL, err = durationEnv("IDEMPOTENCY_TTL", DefaultIdempotencyTTL); err != nil {
		return nil, err
	}
	if cfg.ShutdownTimeout, err = durationEnv("SHUTDOWN_TIMEOUT", DefaultShutdownTimeout); err != nil {
		return nil, err
	}
	if cfg.SeedProducts, err = boolEnv("SEED_PRODUCTS", true); err != nil {
		return nil, err
	}
	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %s", key, raw)
	}
	return d, nil
}

func boolEnv(key string, def bool) (bool, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
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
