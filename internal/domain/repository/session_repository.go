package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Farmacia-api/internal/domain/cart"
)

// CartRepository guarda el carrito de cada operador entre peticiones.
type CartRepository interface {
	// Get devuelve el carrito del dueño; si no existe devuelve uno vacío.
	Get(ctx context.Context, owner string) (*cart.Cart, error)
	Save(ctx context.Context, c *cart.Cart) error
	Delete(ctx context.Context, owner string) error
}

// RevocationStore lista de tokens revocados (logout) hasta su expiración.
type RevocationStore interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}
