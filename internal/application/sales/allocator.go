// Package sales contiene la asignación FEFO sobre lotes bloqueados, la venta atómica
// de un carrito completo y el carrito de sesión.
package sales

import (
	"context"
	"time"

	"github.com/jhoicas/Farmacia-api/internal/domain/entity"
	"github.com/jhoicas/Farmacia-api/internal/domain/inventory"
	"github.com/jhoicas/Farmacia-api/internal/domain/repository"
)

// Allocator arma planes FEFO leyendo los lotes vigentes del producto. Dentro de una
// transacción ve los descuentos ya aplicados por líneas anteriores del mismo carrito.
type Allocator struct {
	policy inventory.ExpiredLotPolicy
}

// NewAllocator construye el asignador con la política de lotes vencidos.
func NewAllocator(policy inventory.ExpiredLotPolicy) *Allocator {
	return &Allocator{policy: policy}
}

// Policy devuelve la política configurada.
func (a *Allocator) Policy() inventory.ExpiredLotPolicy { return a.policy }

// Plan lee los lotes activos con existencia y calcula el plan sin modificar nada.
// Devuelve *inventory.ShortageError si el stock elegible no alcanza.
func (a *Allocator) Plan(ctx context.Context, lotRepo repository.LotRepository, productID string, qty int, now time.Time) (*entity.AllocationPlan, error) {
	lots, err := lotRepo.ListActiveByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	return inventory.PlanFEFO(productID, lots, qty, a.policy, now)
}

// Apply descuenta cada ítem del plan de su lote. El descuento es condicional
// (activo y cantidad suficiente); si otro proceso se adelantó devuelve ErrConcurrencyConflict.
func (a *Allocator) Apply(ctx context.Context, lotRepo repository.LotRepository, plan *entity.AllocationPlan) error {
	for _, it := range plan.Items {
		if err := lotRepo.Decrement(ctx, it.LotID, it.Quantity); err != nil {
			return err
		}
	}
	return nil
}

// Available stock elegible del producto según la política (para mensajes y vistas).
func (a *Allocator) Available(ctx context.Context, lotRepo repository.LotRepository, productID string, now time.Time) (int, error) {
	lots, err := lotRepo.ListActiveByProduct(ctx, productID)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, l := range inventory.EligibleLots(lots, a.policy, now) {
		total += l.Quantity
	}
	return total, nil
}
