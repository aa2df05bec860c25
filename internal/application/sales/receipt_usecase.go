package sales

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Farmacia-api/internal/application/dto"
	"github.com/jhoicas/Farmacia-api/internal/domain"
	"github.com/jhoicas/Farmacia-api/internal/domain/entity"
	"github.com/jhoicas/Farmacia-api/internal/domain/expiration"
	"github.com/jhoicas/Farmacia-api/internal/domain/repository"
)

// ReceiptRenderer genera la representación imprimible de una venta (PDF).
type ReceiptRenderer interface {
	RenderSaleReceipt(ctx context.Context, sale *entity.Sale) ([]byte, error)
}

// ReceiptUseCase reconstruye una venta confirmada desde el kardex y genera su comprobante.
type ReceiptUseCase struct {
	movRepo     repository.MovementRepository
	lotRepo     repository.LotRepository
	productRepo repository.ProductRepository
	renderer    ReceiptRenderer
}

// NewReceiptUseCase construye el caso de uso.
func NewReceiptUseCase(
	movRepo repository.MovementRepository,
	lotRepo repository.LotRepository,
	productRepo repository.ProductRepository,
	renderer ReceiptRenderer,
) *ReceiptUseCase {
	return &ReceiptUseCase{movRepo: movRepo, lotRepo: lotRepo, productRepo: productRepo, renderer: renderer}
}

// GetSale arma la venta a partir de sus VENTA. Las líneas se reconstruyen agrupando
// movimientos consecutivos del mismo producto, en el orden en que se registraron.
func (uc *ReceiptUseCase) GetSale(ctx context.Context, saleID string) (*entity.Sale, error) {
	movs, err := uc.movRepo.List(ctx, entity.MovementFilter{SaleID: saleID, Kind: entity.MovementVenta}, 0)
	if err != nil {
		return nil, err
	}
	if len(movs) == 0 {
		return nil, fmt.Errorf("venta %s: %w", saleID, domain.ErrNotFound)
	}

	// List devuelve lo más reciente primero.
	for i, j := 0, len(movs)-1; i < j; i, j = i+1, j-1 {
		movs[i], movs[j] = movs[j], movs[i]
	}

	sale := &entity.Sale{
		ID:        saleID,
		SoldBy:    movs[0].CreatedBy,
		Revenue:   decimal.Zero,
		Cost:      decimal.Zero,
		CreatedAt: movs[0].CreatedAt,
	}
	names := make(map[string]string)
	for _, m := range movs {
		name, ok := names[m.ProductID]
		if !ok {
			name = m.ProductID
			if p, err := uc.productRepo.GetByID(ctx, m.ProductID); err == nil {
				name = p.Name
			}
			names[m.ProductID] = name
		}

		item := entity.AllocationItem{
			LotID:     m.LotID,
			Quantity:  m.AbsQuantity(),
			UnitCost:  m.UnitCost,
			UnitPrice: m.UnitPrice,
		}
		if lot, err := uc.lotRepo.GetByID(ctx, m.LotID); err == nil {
			item.LotCode = lot.Code
			item.Expiration = lot.Expiration
			if expiration.IsExpired(lot.Expiration, m.CreatedAt) {
				sale.Warnings = append(sale.Warnings, fmt.Sprintf(
					"%s: se vendieron %d unidades del lote %s vencido el %s",
					name, item.Quantity, lot.Code, lot.Expiration.Format("2006-01-02")))
			}
		}

		n := len(sale.Lines)
		if n == 0 || sale.Lines[n-1].ProductID != m.ProductID {
			sale.Lines = append(sale.Lines, entity.SaleLine{
				ProductID:   m.ProductID,
				ProductName: name,
				Plan:        entity.AllocationPlan{ProductID: m.ProductID},
			})
			n++
		}
		line := &sale.Lines[n-1]
		line.Plan.Items = append(line.Plan.Items, item)
		line.Quantity += item.Quantity
		line.Plan.Requested = line.Quantity
	}

	for i := range sale.Lines {
		l := &sale.Lines[i]
		l.Total = l.Plan.Revenue()
		sale.Revenue = sale.Revenue.Add(l.Total)
		sale.Cost = sale.Cost.Add(l.Plan.Cost())
	}
	return sale, nil
}

// DownloadReceipt genera el PDF del comprobante. Devuelve bytes y nombre de archivo.
func (uc *ReceiptUseCase) DownloadReceipt(ctx context.Context, saleID string) ([]byte, string, error) {
	sale, err := uc.GetSale(ctx, saleID)
	if err != nil {
		return nil, "", err
	}
	pdf, err := uc.renderer.RenderSaleReceipt(ctx, sale)
	if err != nil {
		return nil, "", fmt.Errorf("comprobante: generación fallida: %w", err)
	}
	return pdf, fmt.Sprintf("venta_%s.pdf", shortID(sale.ID)), nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// ToSaleResponse mapea la venta al DTO del comprobante.
func ToSaleResponse(s *entity.Sale) dto.SaleResponse {
	out := dto.SaleResponse{
		ID:        s.ID,
		SoldBy:    s.SoldBy,
		Lines:     make([]dto.SaleLineResponse, 0, len(s.Lines)),
		Total:     s.Revenue,
		Warnings:  s.Warnings,
		CreatedAt: s.CreatedAt,
	}
	for _, l := range s.Lines {
		line := dto.SaleLineResponse{
			ProductID:   l.ProductID,
			ProductName: l.ProductName,
			Quantity:    l.Quantity,
			Allocations: make([]dto.AllocationResponse, 0, len(l.Plan.Items)),
			Total:       l.Total,
		}
		for _, it := range l.Plan.Items {
			line.Allocations = append(line.Allocations, dto.AllocationResponse{
				LotID:      it.LotID,
				LotCode:    it.LotCode,
				Expiration: it.Expiration,
				Quantity:   it.Quantity,
				UnitPrice:  it.UnitPrice,
				Subtotal:   it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity))),
			})
		}
		out.Lines = append(out.Lines, line)
	}
	return out
}
