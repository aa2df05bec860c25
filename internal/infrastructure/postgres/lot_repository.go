package postgres

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Farmacia-api/internal/domain"
	"github.com/jhoicas/Farmacia-api/internal/domain/entity"
	"github.com/jhoicas/Farmacia-api/internal/domain/repository"
)

var _ repository.LotRepository = (*LotRepo)(nil)

const (
	lotColumns = `id, product_id, code, expiration, quantity, unit_cost, unit_price, active, created_at, updated_at`
	fefoOrder  = ` ORDER BY expiration, id`
)

// LotRepo implementación de LotRepository sobre PostgreSQL (usable con pool o tx).
type LotRepo struct {
	q Querier
}

// NewLotRepository construye el adaptador de lotes. Pasar pool o tx (Querier).
func NewLotRepository(q Querier) *LotRepo {
	return &LotRepo{q: q}
}

// Create persiste un lote. (product_id, code) es único.
func (r *LotRepo) Create(ctx context.Context, l *entity.Lot) error {
	query := `
		INSERT INTO lots (` + lotColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		l.ID, l.ProductID, l.Code, l.Expiration, l.Quantity, l.UnitCost, l.UnitPrice, l.Active, l.CreatedAt, l.UpdatedAt,
	)
	switch {
	case err == nil:
		return nil
	case isUniqueViolation(err):
		return fmt.Errorf("lot %s: %w", l.Code, domain.ErrDuplicate)
	case isForeignKeyViolation(err):
		return fmt.Errorf("product %s: %w", l.ProductID, domain.ErrNotFound)
	case isCheckViolation(err):
		return domain.Invalid("quantity", "cantidad, costo y precio no pueden ser negativos")
	}
	return wrapErr("insert lot", err)
}

// GetByID obtiene un lote por ID.
func (r *LotRepo) GetByID(ctx context.Context, id string) (*entity.Lot, error) {
	return r.getOne(ctx, `SELECT `+lotColumns+` FROM lots WHERE id = $1`, id)
}

// GetByIDForUpdate obtiene el lote y bloquea la fila (SELECT FOR UPDATE).
func (r *LotRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.Lot, error) {
	return r.getOne(ctx, `SELECT `+lotColumns+` FROM lots WHERE id = $1 FOR UPDATE`, id)
}

func (r *LotRepo) getOne(ctx context.Context, query, id string) (*entity.Lot, error) {
	l, err := scanLot(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("lot %s: %w", id, domain.ErrNotFound)
		}
		return nil, wrapErr("get lot", err)
	}
	return l, nil
}

// Update reemplaza los campos editables del lote.
func (r *LotRepo) Update(ctx context.Context, l *entity.Lot) error {
	query := `
		UPDATE lots
		SET code = $2, expiration = $3, quantity = $4, unit_cost = $5, unit_price = $6, active = $7, updated_at = $8
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, l.ID, l.Code, l.Expiration, l.Quantity, l.UnitCost, l.UnitPrice, l.Active, l.UpdatedAt)
	if err != nil {
		switch {
		case isUniqueViolation(err):
			return fmt.Errorf("lot %s: %w", l.Code, domain.ErrDuplicate)
		case isCheckViolation(err):
			return domain.Invalid("quantity", "cantidad, costo y precio no pueden ser negativos")
		}
		return wrapErr("update lot", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("lot %s: %w", l.ID, domain.ErrNotFound)
	}
	return nil
}

// ListByProduct lotes de un producto en orden FEFO.
func (r *LotRepo) ListByProduct(ctx context.Context, productID string, activeOnly bool) ([]entity.Lot, error) {
	query := `SELECT ` + lotColumns + ` FROM lots WHERE product_id = $1`
	if activeOnly {
		query += ` AND active`
	}
	return r.list(ctx, query+fefoOrder, productID)
}

// ListActiveByProduct lotes vendibles de un producto en orden FEFO.
func (r *LotRepo) ListActiveByProduct(ctx context.Context, productID string) ([]entity.Lot, error) {
	return r.list(ctx, `SELECT `+lotColumns+` FROM lots WHERE product_id = $1 AND active AND quantity > 0`+fefoOrder, productID)
}

// ListActive todos los lotes activos en orden FEFO.
func (r *LotRepo) ListActive(ctx context.Context) ([]entity.Lot, error) {
	return r.list(ctx, `SELECT `+lotColumns+` FROM lots WHERE active`+fefoOrder)
}

// LockActiveByProducts bloquea con FOR UPDATE los lotes vendibles de los productos.
// Las filas se toman en orden (product_id, expiration, id) para que dos ventas
// concurrentes no se bloqueen en orden cruzado.
func (r *LotRepo) LockActiveByProducts(ctx context.Context, productIDs []string) (map[string][]entity.Lot, error) {
	ids := append([]string(nil), productIDs...)
	sort.Strings(ids)
	out := make(map[string][]entity.Lot, len(ids))
	for _, id := range ids {
		out[id] = []entity.Lot{}
	}
	if len(ids) == 0 {
		return out, nil
	}
	lots, err := r.list(ctx, `
		SELECT `+lotColumns+` FROM lots
		WHERE product_id = ANY($1::uuid[]) AND active AND quantity > 0
		ORDER BY product_id, expiration, id
		FOR UPDATE`, ids)
	if err != nil {
		return nil, err
	}
	for _, l := range lots {
		out[l.ProductID] = append(out[l.ProductID], l)
	}
	return out, nil
}

// Decrement resta qty si el lote sigue activo y alcanza. Si otra transacción lo
// consumió primero, ninguna fila cumple la condición y se devuelve ErrConcurrencyConflict.
func (r *LotRepo) Decrement(ctx context.Context, lotID string, qty int) error {
	if qty <= 0 {
		return domain.Invalid("quantity", "debe ser mayor que cero")
	}
	tag, err := r.q.Exec(ctx, `
		UPDATE lots SET quantity = quantity - $2, updated_at = now()
		WHERE id = $1 AND active AND quantity >= $2`, lotID, qty)
	if err != nil {
		return wrapErr("decrement lot", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("lot %s: %w", lotID, domain.ErrConcurrencyConflict)
	}
	return nil
}

func (r *LotRepo) list(ctx context.Context, query string, args ...any) ([]entity.Lot, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, wrapErr("list lots", err)
	}
	defer rows.Close()
	out := make([]entity.Lot, 0)
	for rows.Next() {
		l, err := scanLot(rows)
		if err != nil {
			return nil, wrapErr("scan lot", err)
		}
		out = append(out, *l)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("list lots", err)
	}
	return out, nil
}

func scanLot(row pgx.Row) (*entity.Lot, error) {
	var l entity.Lot
	err := row.Scan(
		&l.ID, &l.ProductID, &l.Code, &l.Expiration, &l.Quantity, &l.UnitCost, &l.UnitPrice,
		&l.Active, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &l, nil
}
