// Package cache guarda en Redis el estado de sesión que no pertenece al kardex:
// carritos por operador y tokens revocados.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/Farmacia-api/internal/domain"
	"github.com/jhoicas/Farmacia-api/internal/domain/cart"
	"github.com/jhoicas/Farmacia-api/internal/domain/repository"
	"github.com/jhoicas/Farmacia-api/pkg/config"
)

var (
	_ repository.CartRepository  = (*CartStore)(nil)
	_ repository.RevocationStore = (*RevocationStore)(nil)
)

const (
	cartPrefix    = "farmacia:cart:"
	revokedPrefix = "farmacia:token:revoked:"
)

// NewClient crea el cliente y verifica la conexión.
func NewClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     10,
		MinIdleConns: 2,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("conectar a Redis: %w", err)
	}
	return client, nil
}

// CartStore carritos serializados en JSON, uno por operador, con TTL deslizante.
type CartStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCartStore construye el almacén. ttl <= 0 guarda sin vencimiento.
func NewCartStore(client *redis.Client, ttl time.Duration) *CartStore {
	return &CartStore{client: client, ttl: ttl}
}

// Get devuelve el carrito del operador o uno vacío.
func (s *CartStore) Get(ctx context.Context, owner string) (*cart.Cart, error) {
	raw, err := s.client.Get(ctx, cartPrefix+owner).Bytes()
	if errors.Is(err, redis.Nil) {
		return cart.New(owner), nil
	}
	if err != nil {
		return nil, fmt.Errorf("leer carrito: %w: %w", domain.ErrPersistence, err)
	}
	c := cart.New(owner)
	if err := json.Unmarshal(raw, &c.Items); err != nil {
		return nil, fmt.Errorf("decodificar carrito: %w: %w", domain.ErrPersistence, err)
	}
	return c, nil
}

// Save reemplaza el carrito y renueva su TTL.
func (s *CartStore) Save(ctx context.Context, c *cart.Cart) error {
	raw, err := json.Marshal(c.Items)
	if err != nil {
		return fmt.Errorf("codificar carrito: %w", err)
	}
	if err := s.client.Set(ctx, cartPrefix+c.Owner, raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("guardar carrito: %w: %w", domain.ErrPersistence, err)
	}
	return nil
}

// Delete elimina el carrito.
func (s *CartStore) Delete(ctx context.Context, owner string) error {
	if err := s.client.Del(ctx, cartPrefix+owner).Err(); err != nil {
		return fmt.Errorf("borrar carrito: %w: %w", domain.ErrPersistence, err)
	}
	return nil
}

// RevocationStore lista de jti revocados; cada clave vence junto con su token.
type RevocationStore struct {
	client *redis.Client
}

// NewRevocationStore construye la lista de revocación.
func NewRevocationStore(client *redis.Client) *RevocationStore {
	return &RevocationStore{client: client}
}

// Revoke marca tokenID como revocado durante ttl.
func (s *RevocationStore) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := s.client.Set(ctx, revokedPrefix+tokenID, "1", ttl).Err(); err != nil {
		return fmt.Errorf("revocar token: %w: %w", domain.ErrPersistence, err)
	}
	return nil
}

// IsRevoked indica si el token está en la lista.
func (s *RevocationStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := s.client.Exists(ctx, revokedPrefix+tokenID).Result()
	if err != nil {
		return false, fmt.Errorf("consultar revocación: %w: %w", domain.ErrPersistence, err)
	}
	return n > 0, nil
}
