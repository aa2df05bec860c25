package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/jhoicas/Farmacia-api/internal/domain"
	"github.com/jhoicas/Farmacia-api/internal/domain/entity"
	"github.com/jhoicas/Farmacia-api/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

// MovementRepo kardex en memoria (solo-append).
type MovementRepo struct {
	s    *Store
	inTx bool
}

// NewMovementRepository construye el adaptador sobre el Store.
func NewMovementRepository(s *Store) *MovementRepo {
	return &MovementRepo{s: s}
}

// Create agrega un movimiento al kardex.
func (r *MovementRepo) Create(_ context.Context, movement *entity.Movement) error {
	defer r.s.lock(r.inTx)()
	if !movement.Kind.Valid() {
		return domain.Invalid("kind", "tipo de movimiento desconocido")
	}
	if _, ok := r.s.lots[movement.LotID]; !ok {
		return fmt.Errorf("lot %s: %w", movement.LotID, domain.ErrNotFound)
	}
	r.s.movements = append(r.s.movements, *movement)
	return nil
}

// List filtra el kardex, más recientes primero.
func (r *MovementRepo) List(_ context.Context, f entity.MovementFilter, limit int) ([]entity.Movement, error) {
	defer r.s.rlock(r.inTx)()
	type indexed struct {
		i int
		m entity.Movement
	}
	var hits []indexed
	for i, m := range r.s.movements {
		switch {
		case f.Kind != "" && m.Kind != f.Kind,
			f.ProductID != "" && m.ProductID != f.ProductID,
			f.LotID != "" && m.LotID != f.LotID,
			f.SaleID != "" && m.SaleID != f.SaleID,
			f.From != nil && m.CreatedAt.Before(*f.From),
			f.To != nil && m.CreatedAt.After(*f.To):
			continue
		}
		hits = append(hits, indexed{i, m})
	}
	sort.SliceStable(hits, func(a, b int) bool {
		if !hits[a].m.CreatedAt.Equal(hits[b].m.CreatedAt) {
			return hits[a].m.CreatedAt.After(hits[b].m.CreatedAt)
		}
		return hits[a].i > hits[b].i
	})
	out := make([]entity.Movement, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.m)
	}
	return paginate(out, limit, 0), nil
}
