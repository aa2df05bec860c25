// Package memory implementa los puertos de persistencia en memoria. Sirve para desarrollo
// (STORAGE_DRIVER=memory) y para pruebas; no sobrevive a un reinicio.
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/Farmacia-api/internal/application/inventory"
	"github.com/jhoicas/Farmacia-api/internal/domain/entity"
	"github.com/jhoicas/Farmacia-api/internal/domain/repository"
)

var _ inventory.TxRunner = (*TxRunner)(nil)

// Store estado compartido por todos los repositorios en memoria.
// Las transacciones toman mu en exclusiva durante toda su duración; los repositorios
// atados a una transacción no vuelven a bloquear.
type Store struct {
	mu         sync.RWMutex
	products   map[string]entity.Product
	categories map[string]entity.Category
	lots       map[string]entity.Lot
	movements  []entity.Movement
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{
		products:   make(map[string]entity.Product),
		categories: make(map[string]entity.Category),
		lots:       make(map[string]entity.Lot),
		movements:  make([]entity.Movement, 0, 128),
	}
}

type snapshot struct {
	products   map[string]entity.Product
	categories map[string]entity.Category
	lots       map[string]entity.Lot
	movements  int
}

func (s *Store) snapshot() snapshot {
	snap := snapshot{
		products:   make(map[string]entity.Product, len(s.products)),
		categories: make(map[string]entity.Category, len(s.categories)),
		lots:       make(map[string]entity.Lot, len(s.lots)),
		movements:  len(s.movements),
	}
	for k, v := range s.products {
		snap.products[k] = v
	}
	for k, v := range s.categories {
		snap.categories[k] = v
	}
	for k, v := range s.lots {
		snap.lots[k] = v
	}
	return snap
}

// restore vuelve al estado de snap. El kardex es solo-append, basta truncarlo.
func (s *Store) restore(snap snapshot) {
	s.products = snap.products
	s.categories = snap.categories
	s.lots = snap.lots
	s.movements = s.movements[:snap.movements]
}

func (s *Store) rlock(inTx bool) func() {
	if inTx {
		return func() {}
	}
	s.mu.RLock()
	return s.mu.RUnlock
}

func (s *Store) lock(inTx bool) func() {
	if inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

// TxRunner ejecuta callbacks como transacciones serializadas sobre el Store.
type TxRunner struct {
	s *Store
}

// NewTxRunner construye el runner.
func NewTxRunner(s *Store) *TxRunner {
	return &TxRunner{s: s}
}

// Run ejecuta fn con repositorios atados a la transacción. Si fn falla se restaura
// el estado previo completo (Rollback).
func (r *TxRunner) Run(ctx context.Context, fn func(
	movRepo repository.MovementRepository,
	lotRepo repository.LotRepository,
	productRepo repository.ProductRepository,
) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	snap := r.s.snapshot()
	err := fn(
		&MovementRepo{s: r.s, inTx: true},
		&LotRepo{s: r.s, inTx: true},
		&ProductRepo{s: r.s, inTx: true},
	)
	if err != nil {
		r.s.restore(snap)
		return err
	}
	return nil
}
