package sales

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	appinv "github.com/jhoicas/Farmacia-api/internal/application/inventory"
	"github.com/jhoicas/Farmacia-api/internal/application/ports"
	"github.com/jhoicas/Farmacia-api/internal/domain"
	"github.com/jhoicas/Farmacia-api/internal/domain/cart"
	"github.com/jhoicas/Farmacia-api/internal/domain/entity"
	"github.com/jhoicas/Farmacia-api/internal/domain/inventory"
	"github.com/jhoicas/Farmacia-api/internal/domain/repository"
	"github.com/jhoicas/Farmacia-api/pkg/logger"
)

// DefaultMaxAttempts intentos de una venta ante conflictos de concurrencia.
const DefaultMaxAttempts = 3

// SaleOrchestrator confirma un carrito completo en una sola transacción: o se registran
// todas las líneas o ninguna.
type SaleOrchestrator struct {
	txRunner    appinv.TxRunner
	allocator   *Allocator
	events      ports.EventPublisher
	log         *logger.Logger
	maxAttempts int
	now         func() time.Time
}

// NewSaleOrchestrator construye el orquestador. events y log pueden ser nil.
func NewSaleOrchestrator(
	txRunner appinv.TxRunner,
	allocator *Allocator,
	events ports.EventPublisher,
	log *logger.Logger,
	maxAttempts int,
) *SaleOrchestrator {
	if events == nil {
		events = ports.NoopPublisher{}
	}
	if log == nil {
		log = logger.Nop()
	}
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	return &SaleOrchestrator{
		txRunner:    txRunner,
		allocator:   allocator,
		events:      events,
		log:         log,
		maxAttempts: maxAttempts,
		now:         time.Now,
	}
}

// WithClock reemplaza el reloj (pruebas).
func (o *SaleOrchestrator) WithClock(now func() time.Time) *SaleOrchestrator {
	o.now = now
	return o
}

// Sell vende una sola línea; equivale a un carrito de un ítem.
func (o *SaleOrchestrator) Sell(ctx context.Context, soldBy, productID string, qty int) (*entity.Sale, error) {
	c := cart.New(soldBy)
	if err := c.Add(productID, qty); err != nil {
		return nil, err
	}
	return o.Checkout(ctx, soldBy, c)
}

// Checkout revalida el carrito contra el stock vigente y lo confirma atómicamente.
// Los conflictos de concurrencia (descuento condicional fallido, serialización, deadlock)
// reintentan la venta completa hasta maxAttempts veces.
func (o *SaleOrchestrator) Checkout(ctx context.Context, soldBy string, c *cart.Cart) (*entity.Sale, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 1; attempt <= o.maxAttempts; attempt++ {
		sale, err := o.checkoutOnce(ctx, soldBy, c.Items)
		if err == nil {
			o.log.Info().
				Str("sale_id", sale.ID).
				Str("sold_by", soldBy).
				Int("lines", len(sale.Lines)).
				Str("revenue", sale.Revenue.StringFixed(2)).
				Int("attempt", attempt).
				Msg("venta confirmada")
			o.publish(ctx, sale)
			return sale, nil
		}
		lastErr = err
		if !errors.Is(err, domain.ErrConcurrencyConflict) || ctx.Err() != nil {
			break
		}
		o.log.Warn().Err(err).Int("attempt", attempt).Str("sold_by", soldBy).Msg("venta revertida por conflicto, reintentando")
	}

	o.log.Warn().Err(lastErr).Str("sold_by", soldBy).Int("lines", len(c.Items)).Msg("venta revertida")
	return nil, lastErr
}

func (o *SaleOrchestrator) checkoutOnce(ctx context.Context, soldBy string, items []cart.Item) (*entity.Sale, error) {
	now := o.now()
	sale := &entity.Sale{
		ID:        uuid.New().String(),
		SoldBy:    soldBy,
		Revenue:   decimal.Zero,
		Cost:      decimal.Zero,
		CreatedAt: now,
	}

	err := o.txRunner.Run(ctx, func(
		movRepo repository.MovementRepository,
		lotRepo repository.LotRepository,
		productRepo repository.ProductRepository,
	) error {
		// Bloquear primero los lotes de todos los productos, siempre en el mismo orden,
		// para que dos carritos con productos cruzados no se bloqueen mutuamente.
		if _, err := lotRepo.LockActiveByProducts(ctx, productIDs(items)); err != nil {
			return err
		}

		for i, it := range items {
			line, err := o.commitLine(ctx, movRepo, lotRepo, productRepo, sale, i, it, now)
			if err != nil {
				return err
			}
			sale.Lines = append(sale.Lines, *line)
			sale.Revenue = sale.Revenue.Add(line.Plan.Revenue())
			sale.Cost = sale.Cost.Add(line.Plan.Cost())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sale, nil
}

// commitLine asigna y aplica una línea del carrito, y registra una VENTA por cada lote tocado.
func (o *SaleOrchestrator) commitLine(
	ctx context.Context,
	movRepo repository.MovementRepository,
	lotRepo repository.LotRepository,
	productRepo repository.ProductRepository,
	sale *entity.Sale,
	index int,
	it cart.Item,
	now time.Time,
) (*entity.SaleLine, error) {
	lineErr := func(name string, available int, err error) error {
		return &domain.SaleLineError{
			Line:        index,
			ProductID:   it.ProductID,
			ProductName: name,
			Requested:   it.Quantity,
			Available:   available,
			Err:         err,
		}
	}

	product, err := productRepo.GetByID(ctx, it.ProductID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, lineErr("", 0, err)
		}
		return nil, err
	}
	if !product.Active {
		return nil, lineErr(product.Name, 0, domain.Invalid("product_id", "el producto está inactivo"))
	}

	plan, err := o.allocator.Plan(ctx, lotRepo, product.ID, it.Quantity, now)
	if err != nil {
		var shortage *inventory.ShortageError
		if errors.As(err, &shortage) {
			return nil, lineErr(product.Name, shortage.Available, err)
		}
		return nil, err
	}
	if err := o.allocator.Apply(ctx, lotRepo, plan); err != nil {
		return nil, err
	}

	for _, pi := range plan.Items {
		qty := decimal.NewFromInt(int64(-pi.Quantity))
		mov := &entity.Movement{
			ID:        uuid.New().String(),
			SaleID:    sale.ID,
			LotID:     pi.LotID,
			ProductID: product.ID,
			Kind:      entity.MovementVenta,
			Quantity:  -pi.Quantity,
			UnitPrice: pi.UnitPrice,
			UnitCost:  pi.UnitCost,
			Total:     qty.Mul(pi.UnitPrice),
			Notes:     fmt.Sprintf("venta %s línea %d", sale.ID, index+1),
			CreatedBy: sale.SoldBy,
			CreatedAt: now,
		}
		if err := movRepo.Create(ctx, mov); err != nil {
			return nil, err
		}
	}

	for _, exp := range inventory.ExpiredItems(plan, now) {
		sale.Warnings = append(sale.Warnings, fmt.Sprintf(
			"%s: se vendieron %d unidades del lote %s vencido el %s",
			product.Name, exp.Quantity, exp.LotCode, exp.Expiration.Format("2006-01-02")))
	}

	return &entity.SaleLine{
		ProductID:   product.ID,
		ProductName: product.Name,
		Quantity:    it.Quantity,
		Plan:        *plan,
		Total:       plan.Revenue(),
	}, nil
}

func (o *SaleOrchestrator) publish(ctx context.Context, sale *entity.Sale) {
	lines := make([]map[string]any, 0, len(sale.Lines))
	for _, l := range sale.Lines {
		lines = append(lines, map[string]any{"product_id": l.ProductID, "quantity": l.Quantity, "total": l.Total})
	}
	err := o.events.Publish(ctx, ports.Event{
		Type:       ports.EventSaleCompleted,
		OccurredAt: sale.CreatedAt,
		Payload: map[string]any{
			"sale_id": sale.ID,
			"sold_by": sale.SoldBy,
			"revenue": sale.Revenue,
			"lines":   lines,
		},
	})
	if err != nil {
		o.log.Warn().Err(err).Str("sale_id", sale.ID).Msg("no se pudo publicar sale.completed")
	}
}

// productIDs devuelve los productos distintos del carrito ordenados.
func productIDs(items []cart.Item) []string {
	seen := make(map[string]struct{}, len(items))
	ids := make([]string, 0, len(items))
	for _, it := range items {
		if _, ok := seen[it.ProductID]; ok {
			continue
		}
		seen[it.ProductID] = struct{}{}
		ids = append(ids, it.ProductID)
	}
	sort.Strings(ids)
	return ids
}
