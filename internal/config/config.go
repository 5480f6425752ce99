package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds gateway configuration loaded from the environment.
type Config struct {
	AppName   string
	LogLevel  string
	LogFormat string
	HTTPAddr  string

	RabbitURL      string
	ExchangeName   string
	EmailQueue     string
	PushQueue      string
	FailedQueue    string
	ConnectTimeout time.Duration
	InitialBackoff time.Duration
	MaxBackoff     time.Duration

	RedisURL       string
	RedisPoolSize  int
	IdempotencyTTL time.Duration
	StatusTTL      time.Duration

	UserServiceURL     string
	TemplateServiceURL string
	LookupTimeout      time.Duration
	EnrichMessages     bool

	// Optional durable status history; disabled when DatabaseURL is empty.
	DatabaseURL string
	StatusTable string
}

// Load loads configuration and performs basic validation.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		AppName:   getEnv("APP_NAME", "api_gateway"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
		HTTPAddr:  getEnv("HTTP_ADDR", "0.0.0.0:8080"),

		RabbitURL:      getEnv("RABBITMQ_URL", ""),
		ExchangeName:   getEnv("EXCHANGE_NAME", "notifications.direct"),
		EmailQueue:     getEnv("EMAIL_QUEUE", "email.queue"),
		PushQueue:      getEnv("PUSH_QUEUE", "push.queue"),
		FailedQueue:    getEnv("FAILED_QUEUE", "failed.queue"),
		ConnectTimeout: getEnvAsDuration("AMQP_CONNECT_TIMEOUT", 60*time.Second),
		InitialBackoff: getEnvAsDuration("AMQP_INITIAL_BACKOFF", time.Second),
		MaxBackoff:     getEnvAsDuration("AMQP_MAX_BACKOFF", 10*time.Second),

		RedisURL:       getEnv("REDIS_URL", "redis://localhost:6379/0"),
		RedisPoolSize:  getEnvAsInt("REDIS_POOL_SIZE", 20),
		IdempotencyTTL: getEnvAsDuration("IDEM_TTL", 24*time.Hour),
		StatusTTL:      getEnvAsDuration("STATUS_TTL", 24*time.Hour),

		UserServiceURL:     getEnv("USER_SVC_URL", ""),
		TemplateServiceURL: getEnv("TEMPLATE_SVC_URL", ""),
		LookupTimeout:      getEnvAsDuration("LOOKUP_TIMEOUT", 5*time.Second),
		EnrichMessages:     getEnvAsBool("ENRICH_MESSAGES", false),

		DatabaseURL: getEnv("DATABASE_URL", ""),
		StatusTable: getEnv("STATUS_TABLE", "notification_statuses"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	var missing []string
	if c.RabbitURL == "" {
		missing = append(missing, "RABBITMQ_URL")
	}
	if c.RedisURL == "" {
		missing = append(missing, "REDIS_URL")
	}
	if c.EnrichMessages {
		if c.UserServiceURL == "" {
			missing = append(missing, "USER_SVC_URL")
		}
		if c.TemplateServiceURL == "" {
			missing = append(missing, "TEMPLATE_SVC_URL")
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %v", missing)
	}
	return nil
}

func getEnv(key, def string) string {
	value, ok := os.LookupEnv(key)
	if !ok {
		return def
	}
	return value
}

func getEnvAsInt(key string, def int) int {
	if value, ok := os.LookupEnv(key); ok {
		i, err := strconv.Atoi(value)
		if err != nil {
			log.Printf("invalid int for %s, using default %d: %v", key, def, err)
			return def
		}
		return i
	}
	return def
}

func getEnvAsBool(key string, def bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		b, err := strconv.ParseBool(value)
		if err != nil {
			log.Printf("invalid bool for %s, using default %t: %v", key, def, err)
			return def
		}
		return b
	}
	return def
}

func getEnvAsDuration(key string, def time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		d, err := time.ParseDuration(value)
		if err != nil {
			log.Printf("invalid duration for %s, using default %s: %v", key, def, err)
			return def
		}
		return d
	}
	return def
}
