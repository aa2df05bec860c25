package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/jhoicas/Farmacia-api/internal/domain/cart"
	"github.com/jhoicas/Farmacia-api/internal/infrastructure/cache"
	"github.com/jhoicas/Farmacia-api/pkg/config"
)

func newRedisConfig(t *testing.T) config.RedisConfig {
	t.Helper()
	if testing.Short() {
		t.Skip("integración con Redis omitida en modo -short")
	}
	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err, "no se pudo iniciar Redis")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)
	return config.RedisConfig{Addr: endpoint}
}

func TestRedis_CartStore(t *testing.T) {
	cfg := newRedisConfig(t)
	ctx := context.Background()
	client, err := cache.NewClient(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	store := cache.NewCartStore(client, time.Minute)

	empty, err := store.Get(ctx, "caja")
	require.NoError(t, err)
	assert.True(t, empty.IsEmpty())
	assert.Equal(t, "caja", empty.Owner)

	c := cart.New("caja")
	require.NoError(t, c.Add("p-1", 2))
	require.NoError(t, c.Add("p-2", 1))
	require.NoError(t, store.Save(ctx, c))

	got, err := store.Get(ctx, "caja")
	require.NoError(t, err)
	assert.Equal(t, c.Items, got.Items)

	require.NoError(t, store.Delete(ctx, "caja"))
	got, err = store.Get(ctx, "caja")
	require.NoError(t, err)
	assert.True(t, got.IsEmpty())
}

func TestRedis_RevocationStore(t *testing.T) {
	cfg := newRedisConfig(t)
	ctx := context.Background()
	client, err := cache.NewClient(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	store := cache.NewRevocationStore(client)

	revoked, err := store.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, store.Revoke(ctx, "jti-1", time.Minute))
	revoked, err = store.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	// ttl no positivo: el token ya venció, no hace falta guardarlo
	require.NoError(t, store.Revoke(ctx, "jti-2", 0))
	revoked, err = store.IsRevoked(ctx, "jti-2")
	require.NoError(t, err)
	assert.False(t, revoked)
}
