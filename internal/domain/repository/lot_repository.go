package repository

import (
	"context"

	"github.com/jhoicas/Farmacia-api/internal/domain/entity"
)

// LotRepository define el puerto de persistencia para lotes.
// Los listados se devuelven en orden FEFO: vencimiento ascendente, luego ID ascendente.
type LotRepository interface {
	Create(ctx context.Context, lot *entity.Lot) error
	GetByID(ctx context.Context, id string) (*entity.Lot, error)
	// GetByIDForUpdate bloquea la fila del lote hasta el fin de la transacción (SELECT FOR UPDATE).
	GetByIDForUpdate(ctx context.Context, id string) (*entity.Lot, error)
	Update(ctx context.Context, lot *entity.Lot) error

	// ListByProduct lotes de un producto; activeOnly omite los inactivos.
	ListByProduct(ctx context.Context, productID string, activeOnly bool) ([]entity.Lot, error)
	// ListActiveByProduct lotes activos con cantidad > 0.
	ListActiveByProduct(ctx context.Context, productID string) ([]entity.Lot, error)
	// ListActive todos los lotes activos (agregados del catálogo y KPIs).
	ListActive(ctx context.Context) ([]entity.Lot, error)

	// LockActiveByProducts bloquea (FOR UPDATE) los lotes activos con cantidad > 0 de los
	// productos dados, en orden de productID, y los devuelve agrupados por producto.
	// Debe usarse dentro de una transacción.
	LockActiveByProducts(ctx context.Context, productIDs []string) (map[string][]entity.Lot, error)
	// Decrement resta qty solo si el lote sigue activo y tiene quantity >= qty.
	// Si la condición no se cumple devuelve domain.ErrConcurrencyConflict.
	Decrement(ctx context.Context, lotID string, qty int) error
}
