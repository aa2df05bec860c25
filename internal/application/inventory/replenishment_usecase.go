package inventory

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Farmacia-api/internal/application/dto"
	"github.com/jhoicas/Farmacia-api/internal/domain/entity"
	domaininv "github.com/jhoicas/Farmacia-api/internal/domain/inventory"
	"github.com/jhoicas/Farmacia-api/internal/domain/repository"
)

const salesHistoryDays = 90

// ReplenishmentUseCase genera la lista de reposición: productos activos en estado BAJO
// con la cantidad sugerida de pedido y una prioridad basada en margen y rotación.
type ReplenishmentUseCase struct {
	productRepo repository.ProductRepository
	lotRepo     repository.LotRepository
	movRepo     repository.MovementRepository
	now         func() time.Time
}

// NewReplenishmentUseCase construye el caso de uso de reposición.
func NewReplenishmentUseCase(
	productRepo repository.ProductRepository,
	lotRepo repository.LotRepository,
	movRepo repository.MovementRepository,
) *ReplenishmentUseCase {
	return &ReplenishmentUseCase{
		productRepo: productRepo,
		lotRepo:     lotRepo,
		movRepo:     movRepo,
		now:         time.Now,
	}
}

// WithClock reemplaza el reloj (pruebas).
func (uc *ReplenishmentUseCase) WithClock(now func() time.Time) *ReplenishmentUseCase {
	uc.now = now
	return uc
}

// GenerateReplenishmentList devuelve los productos bajo su stock mínimo, ordenados por prioridad.
func (uc *ReplenishmentUseCase) GenerateReplenishmentList(ctx context.Context) ([]dto.LowStockItemDTO, error) {
	now := uc.now()

	// 1. Productos activos y sus lotes activos
	products, err := uc.productRepo.List(ctx, repository.ProductFilter{ActiveOnly: true})
	if err != nil {
		return nil, err
	}
	lots, err := uc.lotRepo.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	lotsByProduct := make(map[string][]entity.Lot, len(products))
	for _, l := range lots {
		lotsByProduct[l.ProductID] = append(lotsByProduct[l.ProductID], l)
	}

	// 2. Historial de ventas por producto (últimos 90 días)
	from := now.AddDate(0, 0, -salesHistoryDays)
	movs, err := uc.movRepo.List(ctx, entity.MovementFilter{Kind: entity.MovementVenta, From: &from, To: &now}, 0)
	if err != nil {
		return nil, err
	}
	sales := domaininv.SalesByProduct(movs)

	// 3. Sugerencias para los productos en BAJO
	items := make([]dto.LowStockItemDTO, 0)
	for _, p := range products {
		s := domaininv.Summarize(p, lotsByProduct[p.ID], now)
		if s.StockStatus != domaininv.StockLow {
			continue
		}
		ideal := (3*p.MinStock + 1) / 2 // ceil(min * 1.5)
		suggested := max(ideal-s.Available, 0)
		f := sales[p.ID]
		items = append(items, dto.LowStockItemDTO{
			ProductID:           p.ID,
			ProductName:         p.Name,
			Available:           s.Available,
			MinStock:            p.MinStock,
			Deficit:             p.MinStock - s.Available,
			IdealStock:          ideal,
			SuggestedOrderQty:   suggested,
			UnitCost:            s.AverageCost.Round(2),
			EstimatedOrderCost:  s.AverageCost.Mul(decimal.NewFromInt(int64(suggested))).Round(2),
			GrossMarginPct:      f.MarginPct(),
			UnitsSoldLast90Days: f.UnitsSold,
		})
	}

	// 4. Ordenar: mayor margen histórico, luego mayor rotación, luego mayor déficit
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if !a.GrossMarginPct.Equal(b.GrossMarginPct) {
			return a.GrossMarginPct.GreaterThan(b.GrossMarginPct)
		}
		if a.UnitsSoldLast90Days != b.UnitsSoldLast90Days {
			return a.UnitsSoldLast90Days > b.UnitsSoldLast90Days
		}
		return a.Deficit > b.Deficit
	})

	// 5. Prioridad (1 = más urgente)
	for i := range items {
		items[i].Priority = i + 1
	}
	return items, nil
}
