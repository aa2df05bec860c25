package sales

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Farmacia-api/internal/application/dto"
	"github.com/jhoicas/Farmacia-api/internal/domain"
	"github.com/jhoicas/Farmacia-api/internal/domain/cart"
	"github.com/jhoicas/Farmacia-api/internal/domain/entity"
	"github.com/jhoicas/Farmacia-api/internal/domain/inventory"
	"github.com/jhoicas/Farmacia-api/internal/domain/repository"
)

// CartUseCase administra el carrito de la sesión. Agregar al carrito no reserva stock:
// las cantidades se revalidan contra los lotes vigentes al confirmar.
type CartUseCase struct {
	carts        repository.CartRepository
	productRepo  repository.ProductRepository
	lotRepo      repository.LotRepository
	allocator    *Allocator
	orchestrator *SaleOrchestrator
	now          func() time.Time
}

// NewCartUseCase construye el caso de uso.
func NewCartUseCase(
	carts repository.CartRepository,
	productRepo repository.ProductRepository,
	lotRepo repository.LotRepository,
	allocator *Allocator,
	orchestrator *SaleOrchestrator,
) *CartUseCase {
	return &CartUseCase{
		carts:        carts,
		productRepo:  productRepo,
		lotRepo:      lotRepo,
		allocator:    allocator,
		orchestrator: orchestrator,
		now:          time.Now,
	}
}

// View devuelve el carrito con disponibilidad y precio estimado por línea.
func (uc *CartUseCase) View(ctx context.Context, owner string) (*dto.CartResponse, error) {
	c, err := uc.carts.Get(ctx, owner)
	if err != nil {
		return nil, err
	}
	return uc.render(ctx, c)
}

// AddItem agrega (o fusiona) una línea. El producto debe existir y estar activo.
func (uc *CartUseCase) AddItem(ctx context.Context, owner string, in dto.CartItemRequest) (*dto.CartResponse, error) {
	product, err := uc.productRepo.GetByID(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}
	if !product.Active {
		return nil, domain.Invalid("product_id", "el producto está inactivo")
	}
	c, err := uc.carts.Get(ctx, owner)
	if err != nil {
		return nil, err
	}
	if err := c.Add(product.ID, in.Quantity); err != nil {
		return nil, err
	}
	if err := uc.carts.Save(ctx, c); err != nil {
		return nil, err
	}
	return uc.render(ctx, c)
}

// SetItem fija la cantidad de una línea; 0 la elimina.
func (uc *CartUseCase) SetItem(ctx context.Context, owner, productID string, qty int) (*dto.CartResponse, error) {
	c, err := uc.carts.Get(ctx, owner)
	if err != nil {
		return nil, err
	}
	if err := c.SetQuantity(productID, qty); err != nil {
		return nil, err
	}
	if err := uc.carts.Save(ctx, c); err != nil {
		return nil, err
	}
	return uc.render(ctx, c)
}

// RemoveItem quita una línea.
func (uc *CartUseCase) RemoveItem(ctx context.Context, owner, productID string) (*dto.CartResponse, error) {
	c, err := uc.carts.Get(ctx, owner)
	if err != nil {
		return nil, err
	}
	if err := c.Remove(productID); err != nil {
		return nil, err
	}
	if err := uc.carts.Save(ctx, c); err != nil {
		return nil, err
	}
	return uc.render(ctx, c)
}

// Clear vacía el carrito.
func (uc *CartUseCase) Clear(ctx context.Context, owner string) error {
	return uc.carts.Delete(ctx, owner)
}

// Checkout confirma el carrito completo. Si la venta falla el carrito queda intacto
// para que el operador lo revise; si se confirma, se vacía.
func (uc *CartUseCase) Checkout(ctx context.Context, owner string) (*entity.Sale, error) {
	c, err := uc.carts.Get(ctx, owner)
	if err != nil {
		return nil, err
	}
	sale, err := uc.orchestrator.Checkout(ctx, owner, c)
	if err != nil {
		return nil, err
	}
	if err := uc.carts.Delete(ctx, owner); err != nil {
		// La venta ya quedó confirmada.
		uc.orchestrator.log.Warn().Err(err).Str("owner", owner).Msg("no se pudo vaciar el carrito")
	}
	return sale, nil
}

func (uc *CartUseCase) render(ctx context.Context, c *cart.Cart) (*dto.CartResponse, error) {
	now := uc.now()
	out := &dto.CartResponse{Items: make([]dto.CartLineResponse, 0, len(c.Items)), Total: decimal.Zero}
	for _, it := range c.Items {
		line := dto.CartLineResponse{ProductID: it.ProductID, Quantity: it.Quantity, UnitPrice: decimal.Zero, Subtotal: decimal.Zero}
		if p, err := uc.productRepo.GetByID(ctx, it.ProductID); err == nil {
			line.ProductName = p.Name
		} else if !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}

		lots, err := uc.lotRepo.ListActiveByProduct(ctx, it.ProductID)
		if err != nil {
			return nil, err
		}
		eligible := inventory.EligibleLots(lots, uc.allocator.Policy(), now)
		for _, l := range eligible {
			line.Available += l.Quantity
		}
		if len(eligible) > 0 {
			line.UnitPrice = eligible[0].UnitPrice
		}
		if plan, err := inventory.PlanFEFO(it.ProductID, eligible, it.Quantity, uc.allocator.Policy(), now); err == nil {
			line.Sufficient = true
			line.Subtotal = plan.Revenue()
		} else {
			line.Subtotal = line.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))
		}

		out.Items = append(out.Items, line)
		out.Units += it.Quantity
		out.Total = out.Total.Add(line.Subtotal)
	}
	return out, nil
}
