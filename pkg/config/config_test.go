package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "memory")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StorageMemory, cfg.DB.Driver)
	assert.Equal(t, "warn", cfg.Sale.ExpiredLotPolicy)
	assert.Equal(t, 3, cfg.Sale.MaxAttempts)
	assert.Equal(t, "inventory.events", cfg.RabbitMQ.Exchange)
	assert.False(t, cfg.Redis.Enabled())
	assert.False(t, cfg.RabbitMQ.Enabled())
	assert.Equal(t, time.Duration(0), cfg.Alerts.Interval)
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("SALE_EXPIRED_LOT_POLICY", "BLOCK")
	t.Setenv("SALE_MAX_ATTEMPTS", "5")
	t.Setenv("ALERTS_INTERVAL", "15m")
	t.Setenv("HTTP_SHUTDOWN_TIMEOUT", "3")
	t.Setenv("REDIS_ADDR", "localhost:6379")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "block", cfg.Sale.ExpiredLotPolicy)
	assert.Equal(t, 5, cfg.Sale.MaxAttempts)
	assert.Equal(t, 15*time.Minute, cfg.Alerts.Interval)
	assert.Equal(t, 3*time.Second, cfg.HTTP.ShutdownTimeout)
	assert.True(t, cfg.Redis.Enabled())
}

func TestLoad_Invalido(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "mongo")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("SALE_EXPIRED_LOT_POLICY", "ignorar")
	_, err = Load()
	assert.Error(t, err)
}

func TestDBConfig_ConnectionString(t *testing.T) {
	c := DBConfig{Host: "db", Port: 5432, User: "u", Password: "p@ss", DBName: "farmacia", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p%40ss@db:5432/farmacia?sslmode=disable", c.ConnectionString())

	c.DatabaseURL = "postgres://x"
	assert.Equal(t, "postgres://x", c.ConnectionString())
}
