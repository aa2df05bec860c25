package analytics

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Farmacia-api/internal/application/dto"
	"github.com/jhoicas/Farmacia-api/internal/domain"
	"github.com/jhoicas/Farmacia-api/internal/domain/entity"
	"github.com/jhoicas/Farmacia-api/internal/domain/expiration"
	"github.com/jhoicas/Farmacia-api/internal/domain/inventory"
	"github.com/jhoicas/Farmacia-api/internal/domain/repository"
)

// DefaultExpiringDays ventana por defecto del reporte de vencimientos.
const DefaultExpiringDays = 90

// ReportsUseCase reportes de lotes por vencer y de rentabilidad por producto.
type ReportsUseCase struct {
	productRepo repository.ProductRepository
	lotRepo     repository.LotRepository
	movRepo     repository.MovementRepository
	now         func() time.Time
}

// NewReportsUseCase construye el caso de uso.
func NewReportsUseCase(
	productRepo repository.ProductRepository,
	lotRepo repository.LotRepository,
	movRepo repository.MovementRepository,
) *ReportsUseCase {
	return &ReportsUseCase{productRepo: productRepo, lotRepo: lotRepo, movRepo: movRepo, now: time.Now}
}

// WithClock reemplaza el reloj (pruebas).
func (uc *ReportsUseCase) WithClock(now func() time.Time) *ReportsUseCase {
	uc.now = now
	return uc
}

// ExpiringLots lotes activos con existencia que vencen en menos de days días,
// incluidos los ya vencidos. Ordenados por días restantes ascendente.
func (uc *ReportsUseCase) ExpiringLots(ctx context.Context, days int) ([]dto.ExpiringLotDTO, error) {
	if days < 0 {
		return nil, domain.Invalid("days", "no puede ser negativo")
	}
	if days == 0 {
		days = DefaultExpiringDays
	}
	lots, err := uc.lotRepo.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	now := uc.now()
	names := make(map[string]string)
	out := make([]dto.ExpiringLotDTO, 0)
	for _, l := range lots {
		if l.Quantity <= 0 {
			continue
		}
		d := expiration.DaysUntil(l.Expiration, now)
		if d >= days {
			continue
		}
		name, ok := names[l.ProductID]
		if !ok {
			name = l.ProductID
			if p, err := uc.productRepo.GetByID(ctx, l.ProductID); err == nil {
				name = p.Name
			}
			names[l.ProductID] = name
		}
		exp := l.Expiration
		out = append(out, dto.ExpiringLotDTO{
			LotID:        l.ID,
			LotCode:      l.Code,
			ProductID:    l.ProductID,
			ProductName:  name,
			Expiration:   l.Expiration,
			DaysToExpire: d,
			Status:       string(expiration.Classify(&exp, now)),
			Quantity:     l.Quantity,
			ValueAtCost:  l.UnitCost.Mul(decimal.NewFromInt(int64(l.Quantity))).Round(2),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].DaysToExpire != out[j].DaysToExpire {
			return out[i].DaysToExpire < out[j].DaysToExpire
		}
		return out[i].LotID < out[j].LotID
	})
	return out, nil
}

// ProfitReport rentabilidad por producto desde las VENTA del período, ordenada por utilidad.
func (uc *ReportsUseCase) ProfitReport(ctx context.Context, from, to *time.Time) (*dto.ProfitReportDTO, error) {
	movs, err := uc.movRepo.List(ctx, entity.MovementFilter{Kind: entity.MovementVenta, From: from, To: to}, 0)
	if err != nil {
		return nil, err
	}
	total := inventory.SalesFinancials(movs)
	out := &dto.ProfitReportDTO{
		Products: make([]dto.ProductProfitDTO, 0),
		Revenue:  total.Revenue.Round(2),
		Cost:     total.Cost.Round(2),
		Profit:   total.Profit.Round(2),
	}
	for productID, f := range inventory.SalesByProduct(movs) {
		name := productID
		if p, err := uc.productRepo.GetByID(ctx, productID); err == nil {
			name = p.Name
		}
		out.Products = append(out.Products, dto.ProductProfitDTO{
			ProductID:   productID,
			ProductName: name,
			UnitsSold:   f.UnitsSold,
			Revenue:     f.Revenue.Round(2),
			Cost:        f.Cost.Round(2),
			Profit:      f.Profit.Round(2),
			MarginPct:   f.MarginPct(),
		})
	}
	sort.Slice(out.Products, func(i, j int) bool {
		a, b := out.Products[i], out.Products[j]
		if !a.Profit.Equal(b.Profit) {
			return a.Profit.GreaterThan(b.Profit)
		}
		return a.ProductID < b.ProductID
	})
	return out, nil
}
