package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/Farmacia-api/internal/domain"
	"github.com/jhoicas/Farmacia-api/internal/domain/entity"
	"github.com/jhoicas/Farmacia-api/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

// MovementRepo kardex sobre PostgreSQL. Solo INSERT y SELECT.
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

// Create agrega un movimiento al kardex.
func (r *MovementRepo) Create(ctx context.Context, m *entity.Movement) error {
	if !m.Kind.Valid() {
		return domain.Invalid("kind", "tipo de movimiento desconocido")
	}
	query := `
		INSERT INTO movements (id, sale_id, lot_id, product_id, kind, quantity, unit_price, unit_cost, total, notes, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(ctx, query,
		m.ID, nullString(m.SaleID), m.LotID, m.ProductID, string(m.Kind), m.Quantity,
		m.UnitPrice, m.UnitCost, m.Total, m.Notes, m.CreatedBy, m.CreatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("lot %s: %w", m.LotID, domain.ErrNotFound)
		}
		return wrapErr("insert movement", err)
	}
	return nil
}

// List filtra el kardex, más recientes primero. limit <= 0 no limita.
func (r *MovementRepo) List(ctx context.Context, f entity.MovementFilter, limit int) ([]entity.Movement, error) {
	var w where
	if f.Kind != "" {
		w.add("kind = $%d", string(f.Kind))
	}
	if f.ProductID != "" {
		w.add("product_id = $%d", f.ProductID)
	}
	if f.LotID != "" {
		w.add("lot_id = $%d", f.LotID)
	}
	if f.SaleID != "" {
		w.add("sale_id = $%d", f.SaleID)
	}
	if f.From != nil {
		w.add("created_at >= $%d", *f.From)
	}
	if f.To != nil {
		w.add("created_at <= $%d", *f.To)
	}
	query := `
		SELECT id, sale_id::text, lot_id, product_id, kind, quantity, unit_price, unit_cost, total, notes, created_by, created_at
		FROM movements` + w.sql() + ` ORDER BY created_at DESC, seq DESC`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := r.q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, wrapErr("list movements", err)
	}
	defer rows.Close()
	out := make([]entity.Movement, 0)
	for rows.Next() {
		var m entity.Movement
		var saleID *string
		var kind string
		if err := rows.Scan(
			&m.ID, &saleID, &m.LotID, &m.ProductID, &kind, &m.Quantity,
			&m.UnitPrice, &m.UnitCost, &m.Total, &m.Notes, &m.CreatedBy, &m.CreatedAt,
		); err != nil {
			return nil, wrapErr("scan movement", err)
		}
		m.SaleID = derefString(saleID)
		m.Kind = entity.MovementKind(kind)
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("list movements", err)
	}
	return out, nil
}
