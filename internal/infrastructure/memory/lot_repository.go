package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/jhoicas/Farmacia-api/internal/domain"
	"github.com/jhoicas/Farmacia-api/internal/domain/entity"
	"github.com/jhoicas/Farmacia-api/internal/domain/inventory"
	"github.com/jhoicas/Farmacia-api/internal/domain/repository"
)

var _ repository.LotRepository = (*LotRepo)(nil)

// LotRepo lotes en memoria.
type LotRepo struct {
	s    *Store
	inTx bool
}

// NewLotRepository construye el adaptador sobre el Store.
func NewLotRepository(s *Store) *LotRepo {
	return &LotRepo{s: s}
}

// Create guarda un lote. El código es único por producto.
func (r *LotRepo) Create(_ context.Context, lot *entity.Lot) error {
	defer r.s.lock(r.inTx)()
	if lot.Quantity < 0 {
		return domain.Invalid("quantity", "no puede ser negativa")
	}
	if _, ok := r.s.products[lot.ProductID]; !ok {
		return fmt.Errorf("product %s: %w", lot.ProductID, domain.ErrNotFound)
	}
	for _, l := range r.s.lots {
		if l.ID == lot.ID || (l.ProductID == lot.ProductID && l.Code == lot.Code) {
			return fmt.Errorf("lot %s: %w", lot.Code, domain.ErrDuplicate)
		}
	}
	r.s.lots[lot.ID] = *lot
	return nil
}

// GetByID devuelve una copia del lote.
func (r *LotRepo) GetByID(_ context.Context, id string) (*entity.Lot, error) {
	defer r.s.rlock(r.inTx)()
	return r.get(id)
}

// GetByIDForUpdate igual que GetByID; el bloqueo lo da la transacción en curso.
func (r *LotRepo) GetByIDForUpdate(_ context.Context, id string) (*entity.Lot, error) {
	defer r.s.rlock(r.inTx)()
	return r.get(id)
}

func (r *LotRepo) get(id string) (*entity.Lot, error) {
	l, ok := r.s.lots[id]
	if !ok {
		return nil, fmt.Errorf("lot %s: %w", id, domain.ErrNotFound)
	}
	return &l, nil
}

// Update reemplaza el lote.
func (r *LotRepo) Update(_ context.Context, lot *entity.Lot) error {
	defer r.s.lock(r.inTx)()
	if lot.Quantity < 0 {
		return domain.Invalid("quantity", "no puede ser negativa")
	}
	if _, ok := r.s.lots[lot.ID]; !ok {
		return fmt.Errorf("lot %s: %w", lot.ID, domain.ErrNotFound)
	}
	for _, l := range r.s.lots {
		if l.ID != lot.ID && l.ProductID == lot.ProductID && l.Code == lot.Code {
			return fmt.Errorf("lot %s: %w", lot.Code, domain.ErrDuplicate)
		}
	}
	r.s.lots[lot.ID] = *lot
	return nil
}

// ListByProduct lotes del producto en orden FEFO.
func (r *LotRepo) ListByProduct(_ context.Context, productID string, activeOnly bool) ([]entity.Lot, error) {
	defer r.s.rlock(r.inTx)()
	return r.collect(func(l *entity.Lot) bool {
		return l.ProductID == productID && (!activeOnly || l.Active)
	}), nil
}

// ListActiveByProduct lotes activos con existencia en orden FEFO.
func (r *LotRepo) ListActiveByProduct(_ context.Context, productID string) ([]entity.Lot, error) {
	defer r.s.rlock(r.inTx)()
	return r.collect(func(l *entity.Lot) bool {
		return l.ProductID == productID && l.Eligible()
	}), nil
}

// ListActive todos los lotes activos.
func (r *LotRepo) ListActive(_ context.Context) ([]entity.Lot, error) {
	defer r.s.rlock(r.inTx)()
	return r.collect(func(l *entity.Lot) bool { return l.Active }), nil
}

// LockActiveByProducts devuelve los lotes vendibles de cada producto. Dentro de una
// transacción el Store ya está bloqueado en exclusiva.
func (r *LotRepo) LockActiveByProducts(_ context.Context, productIDs []string) (map[string][]entity.Lot, error) {
	defer r.s.rlock(r.inTx)()
	ids := append([]string(nil), productIDs...)
	sort.Strings(ids)
	out := make(map[string][]entity.Lot, len(ids))
	for _, id := range ids {
		pid := id
		out[pid] = r.collect(func(l *entity.Lot) bool { return l.ProductID == pid && l.Eligible() })
	}
	return out, nil
}

// Decrement resta qty si el lote sigue activo con quantity >= qty.
func (r *LotRepo) Decrement(_ context.Context, lotID string, qty int) error {
	defer r.s.lock(r.inTx)()
	if qty <= 0 {
		return domain.Invalid("quantity", "debe ser mayor que cero")
	}
	l, ok := r.s.lots[lotID]
	if !ok {
		return fmt.Errorf("lot %s: %w", lotID, domain.ErrNotFound)
	}
	if !l.Active || l.Quantity < qty {
		return fmt.Errorf("lot %s: %w", lotID, domain.ErrConcurrencyConflict)
	}
	l.Quantity -= qty
	r.s.lots[lotID] = l
	return nil
}

func (r *LotRepo) collect(keep func(*entity.Lot) bool) []entity.Lot {
	out := make([]entity.Lot, 0)
	for _, l := range r.s.lots {
		if keep(&l) {
			out = append(out, l)
		}
	}
	inventory.SortFEFO(out)
	return out
}
