package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadForService_Overrides(t *testing.T) {
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("ORDERS_DB_HOST", "orders-db.internal")
	t.Setenv("ORDERS_STORAGE", "MEMORY")
	t.Setenv("EVENTS_BACKEND", "Kafka")
	t.Setenv("DB_TIMEOUT", "5")
	t.Setenv("APP_ENV", "development")

	cfg := LoadForService("orders")

	assert.Equal(t, "orders", cfg.ServiceName)
	assert.Equal(t, "orders-db.internal", cfg.DBHost)
	assert.Equal(t, StorageMemory, cfg.Storage)
	assert.Equal(t, EventsKafka, cfg.EventsBackend)
	assert.Equal(t, 5*time.Second, cfg.DBTimeout)
	assert.True(t, cfg.Debug())
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("METRICS_ENABLED", "not-a-bool")

	cfg := Load()

	assert.Equal(t, StoragePostgres, cfg.Storage)
	assert.True(t, cfg.MetricsEnabled)
	assert.False(t, cfg.Debug())
	assert.Equal(t, 30*time.Second, cfg.HTTPTimeout)
}
