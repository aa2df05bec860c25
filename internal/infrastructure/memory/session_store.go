package memory

import (
	"context"
	"sync"
	"time"

	"github.com/jhoicas/Farmacia-api/internal/domain/cart"
	"github.com/jhoicas/Farmacia-api/internal/domain/repository"
)

var (
	_ repository.CartRepository  = (*CartStore)(nil)
	_ repository.RevocationStore = (*RevocationStore)(nil)
)

// CartStore carritos por operador en memoria.
type CartStore struct {
	mu    sync.RWMutex
	carts map[string]cart.Cart
}

// NewCartStore crea el almacén de carritos.
func NewCartStore() *CartStore {
	return &CartStore{carts: make(map[string]cart.Cart)}
}

// Get devuelve una copia del carrito o uno vacío.
func (s *CartStore) Get(_ context.Context, owner string) (*cart.Cart, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.carts[owner]
	if !ok {
		return cart.New(owner), nil
	}
	c.Items = append([]cart.Item{}, c.Items...)
	return &c, nil
}

// Save reemplaza el carrito del dueño.
func (s *CartStore) Save(_ context.Context, c *cart.Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *c
	cp.Items = append([]cart.Item{}, c.Items...)
	s.carts[c.Owner] = cp
	return nil
}

// Delete elimina el carrito.
func (s *CartStore) Delete(_ context.Context, owner string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, owner)
	return nil
}

// RevocationStore tokens revocados en memoria con vencimiento.
type RevocationStore struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	now     func() time.Time
}

// NewRevocationStore crea la lista de revocación.
func NewRevocationStore() *RevocationStore {
	return &RevocationStore{revoked: make(map[string]time.Time), now: time.Now}
}

// Revoke marca tokenID como revocado durante ttl.
func (s *RevocationStore) Revoke(_ context.Context, tokenID string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for id, exp := range s.revoked {
		if !exp.After(now) {
			delete(s.revoked, id)
		}
	}
	if ttl <= 0 {
		return nil
	}
	s.revoked[tokenID] = now.Add(ttl)
	return nil
}

// IsRevoked indica si el token sigue en la lista.
func (s *RevocationStore) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	exp, ok := s.revoked[tokenID]
	return ok && exp.After(s.now()), nil
}
