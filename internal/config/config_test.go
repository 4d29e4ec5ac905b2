package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "Skippy", cfg.App.Name)
	assert.Equal(t, "redis", cfg.Store.Backend)
	assert.Equal(t, "skippy.tasks", cfg.Worker.TaskQueue)
	assert.Equal(t, "skippy.tasks.retry", cfg.Worker.RetryQueue)
	assert.Equal(t, 3, cfg.Worker.MaxRetries)
	assert.Equal(t, 30*time.Minute, cfg.Worker.HardTimeout)
	assert.Equal(t, 25*time.Minute, cfg.Worker.SoftTimeout)
	assert.Equal(t, 30, cfg.Retention.Days)
	assert.Equal(t, time.Hour, cfg.Retention.SweepInterval)
	assert.Equal(t, 1000, cfg.Retention.ScanLimit)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("STORE_BACKEND", "memory")
	t.Setenv("WORKER_MAX_RETRIES", "5")
	t.Setenv("RETENTION_SWEEP_INTERVAL", "15m")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.Store.Backend)
	assert.Equal(t, 5, cfg.Worker.MaxRetries)
	assert.Equal(t, 15*time.Minute, cfg.Retention.SweepInterval)
}

func TestLoadInvalidBackend(t *testing.T) {
	t.Setenv("STORE_BACKEND", "dynamo")
	_, err := Load()
	assert.Error(t, err)
}

func TestLoadTimeoutOrdering(t *testing.T) {
	t.Setenv("WORKER_SOFT_TIMEOUT", "40m")
	_, err := Load()
	assert.Error(t, err)
}

func TestRabbitMQConnectionURL(t *testing.T) {
	cfg := RabbitMQConfig{Host: "mq", Port: "5672", User: "u", Password: "p", VHost: "/"}
	assert.Equal(t, "amqp://u:p@mq:5672/", cfg.ConnectionURL())

	cfg.URL = "amqp://explicit:5672/"
	assert.Equal(t, "amqp://explicit:5672/", cfg.ConnectionURL())
}
