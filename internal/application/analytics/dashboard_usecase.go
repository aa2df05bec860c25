// Package analytics contiene los KPIs del tablero, los reportes de vencimiento y
// rentabilidad, y el escáner de alertas. Todo se recalcula desde lotes y kardex.
package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/Farmacia-api/internal/application/dto"
	"github.com/jhoicas/Farmacia-api/internal/domain/entity"
	"github.com/jhoicas/Farmacia-api/internal/domain/expiration"
	"github.com/jhoicas/Farmacia-api/internal/domain/inventory"
	"github.com/jhoicas/Farmacia-api/internal/domain/repository"
	"github.com/jhoicas/Farmacia-api/pkg/money"
)

// DashboardUseCase genera los KPIs del tablero.
//
// Fuentes: lotes activos (valor de inventario, stock, vencimientos) y el kardex
// (ingresos, costo, utilidad). No existe un acumulado aparte que pueda desincronizarse.
type DashboardUseCase struct {
	productRepo repository.ProductRepository
	lotRepo     repository.LotRepository
	movRepo     repository.MovementRepository
	now         func() time.Time
}

// NewDashboardUseCase construye el caso de uso.
func NewDashboardUseCase(
	productRepo repository.ProductRepository,
	lotRepo repository.LotRepository,
	movRepo repository.MovementRepository,
) *DashboardUseCase {
	return &DashboardUseCase{productRepo: productRepo, lotRepo: lotRepo, movRepo: movRepo, now: time.Now}
}

// WithClock reemplaza el reloj (pruebas).
func (uc *DashboardUseCase) WithClock(now func() time.Time) *DashboardUseCase {
	uc.now = now
	return uc
}

// GetKPIs calcula los KPIs. from/to acotan solo las métricas financieras del kardex.
//
// Tres lecturas en paralelo:
//  1. productos activos
//  2. lotes activos
//  3. VENTA del período
func (uc *DashboardUseCase) GetKPIs(ctx context.Context, from, to *time.Time) (*dto.DashboardKPIsDTO, error) {
	now := uc.now()

	type productsResult struct {
		products []*entity.Product
		err      error
	}
	type lotsResult struct {
		lots []entity.Lot
		err  error
	}
	type movsResult struct {
		movs []entity.Movement
		err  error
	}

	productsCh := make(chan productsResult, 1)
	lotsCh := make(chan lotsResult, 1)
	movsCh := make(chan movsResult, 1)

	go func() {
		p, err := uc.productRepo.List(ctx, repository.ProductFilter{ActiveOnly: true})
		productsCh <- productsResult{p, err}
	}()
	go func() {
		l, err := uc.lotRepo.ListActive(ctx)
		lotsCh <- lotsResult{l, err}
	}()
	go func() {
		m, err := uc.movRepo.List(ctx, entity.MovementFilter{Kind: entity.MovementVenta, From: from, To: to}, 0)
		movsCh <- movsResult{m, err}
	}()

	products := <-productsCh
	lots := <-lotsCh
	movs := <-movsCh

	if products.err != nil {
		return nil, fmt.Errorf("dashboard: productos: %w", products.err)
	}
	if lots.err != nil {
		return nil, fmt.Errorf("dashboard: lotes: %w", lots.err)
	}
	if movs.err != nil {
		return nil, fmt.Errorf("dashboard: kardex: %w", movs.err)
	}

	// ── Stock y vencimientos ──────────────────────────────────────────────────
	byProduct := make(map[string][]entity.Lot)
	expiringSoon, expired := 0, 0
	for _, l := range lots.lots {
		byProduct[l.ProductID] = append(byProduct[l.ProductID], l)
		if l.Quantity <= 0 {
			continue
		}
		switch {
		case expiration.IsExpired(l.Expiration, now):
			expired++
		case expiration.IsNearExpiration(l.Expiration, now, expiration.CriticalDays):
			expiringSoon++
		}
	}
	lowStock := 0
	for _, p := range products.products {
		if inventory.Summarize(p, byProduct[p.ID], now).StockStatus == inventory.StockLow {
			lowStock++
		}
	}

	// ── Financieros desde el kardex ───────────────────────────────────────────
	fin := inventory.SalesFinancials(movs.movs)
	value := inventory.InventoryValue(lots.lots)

	return &dto.DashboardKPIsDTO{
		InventoryValue:     value.Round(2),
		TotalRevenue:       fin.Revenue.Round(2),
		TotalCost:          fin.Cost.Round(2),
		NetProfit:          fin.Profit.Round(2),
		MarginPct:          fin.MarginPct(),
		UnitsSold:          fin.UnitsSold,
		ActiveProducts:     len(products.products),
		LowStockProducts:   lowStock,
		ExpiringSoonLots:   expiringSoon,
		ExpiredActiveLots:  expired,
		From:               from,
		To:                 to,
		FormattedInventory: money.FormatBs(value),
		FormattedProfit:    money.FormatBs(fin.Profit),
	}, nil
}
