package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	App       AppConfig
	Server    ServerConfig
	Store     StoreConfig
	Redis     RedisConfig
	Database  DatabaseConfig
	RabbitMQ  RabbitMQConfig
	Worker    WorkerConfig
	Retention RetentionConfig
	Elks      ElksConfig
}

type AppConfig struct {
	Name          string
	Version       string
	LogLevel      string
	WebhookSecret string // optional; enables signature verification on POST /webhooks
}

type ServerConfig struct {
	Host string
	Port string
}

// StoreConfig selects the item store backend: "redis", "postgres" or "memory".
type StoreConfig struct {
	Backend string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RabbitMQConfig struct {
	URL      string
	Host     string
	Port     string
	User     string
	Password string
	VHost    string
}

type WorkerConfig struct {
	TaskQueue     string
	RetryQueue    string
	Exchange      string
	PrefetchCount int
	MaxRetries    int
	HardTimeout   time.Duration
	SoftTimeout   time.Duration
}

type RetentionConfig struct {
	Days          int
	SweepInterval time.Duration
	ScanLimit     int
}

// ElksConfig holds 46elks API credentials for outbound replies.
// All fields optional; without credentials replies are logged only.
type ElksConfig struct {
	APIUsername string
	APIPassword string
	FromNumber  string
}

func Load() (*Config, error) {
	config := &Config{
		App: AppConfig{
			Name:          getEnv("APP_NAME", "Skippy"),
			Version:       getEnv("APP_VERSION", "1.0.0"),
			LogLevel:      getEnv("LOG_LEVEL", "info"),
			WebhookSecret: os.Getenv("WEBHOOK_SECRET"),
		},
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnv("SERVER_PORT", "8000"),
		},
		Store: StoreConfig{
			Backend: getEnv("STORE_BACKEND", "redis"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "skippy"),
			Password: os.Getenv("DB_PASSWORD"),
			DBName:   getEnv("DB_NAME", "skippy"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		RabbitMQ: RabbitMQConfig{
			URL:      os.Getenv("RABBITMQ_URL"),
			Host:     getEnv("RABBITMQ_HOST", "localhost"),
			Port:     getEnv("RABBITMQ_PORT", "5672"),
			User:     getEnv("RABBITMQ_USER", "guest"),
			Password: getEnv("RABBITMQ_PASSWORD", "guest"),
			VHost:    getEnv("RABBITMQ_VHOST", "/"),
		},
		Worker: WorkerConfig{
			TaskQueue:     getEnv("TASK_QUEUE", "skippy.tasks"),
			RetryQueue:    getEnv("RETRY_QUEUE", "skippy.tasks.retry"),
			Exchange:      getEnv("TASK_EXCHANGE", "skippy"),
			PrefetchCount: getEnvInt("WORKER_PREFETCH_COUNT", 1),
			MaxRetries:    getEnvInt("WORKER_MAX_RETRIES", 3),
			HardTimeout:   getEnvDuration("WORKER_HARD_TIMEOUT", 30*time.Minute),
			SoftTimeout:   getEnvDuration("WORKER_SOFT_TIMEOUT", 25*time.Minute),
		},
		Retention: RetentionConfig{
			Days:          getEnvInt("RETENTION_DAYS", 30),
			SweepInterval: getEnvDuration("RETENTION_SWEEP_INTERVAL", time.Hour),
			ScanLimit:     getEnvInt("RETENTION_SCAN_LIMIT", 1000),
		},
		Elks: ElksConfig{
			APIUsername: os.Getenv("ELKS_API_USERNAME"),
			APIPassword: os.Getenv("ELKS_API_PASSWORD"),
			FromNumber:  os.Getenv("ELKS_SMS_FROM_NUMBER"),
		},
	}

	if config.Worker.SoftTimeout >= config.Worker.HardTimeout {
		return nil, fmt.Errorf("soft timeout (%s) must be below hard timeout (%s)",
			config.Worker.SoftTimeout, config.Worker.HardTimeout)
	}

	switch config.Store.Backend {
	case "redis", "postgres", "memory":
	default:
		return nil, fmt.Errorf("unknown store backend: %q", config.Store.Backend)
	}

	return config, nil
}

// ConnectionString returns a DSN string for GORM
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		c.Host, c.User, c.Password, c.DBName, c.Port, c.SSLMode)
}

func (c *RabbitMQConfig) ConnectionURL() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf("amqp://%s:%s@%s:%s%s",
		c.User, c.Password, c.Host, c.Port, c.VHost)
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return fallback
	}
	return d
}
