package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// DashboardKPIsDTO respuesta de GET /api/dashboard/kpis.
// Los montos financieros salen solo del kardex; el valor de inventario de los lotes activos.
type DashboardKPIsDTO struct {
	InventoryValue     decimal.Decimal `json:"inventory_value"` // Σ cantidad × precio de lotes activos
	TotalRevenue       decimal.Decimal `json:"total_revenue"`
	TotalCost          decimal.Decimal `json:"total_cost"`
	NetProfit          decimal.Decimal `json:"net_profit"`
	MarginPct          decimal.Decimal `json:"margin_pct"`
	UnitsSold          int             `json:"units_sold"`
	ActiveProducts     int             `json:"active_products"`
	LowStockProducts   int             `json:"low_stock_products"`
	ExpiringSoonLots   int             `json:"expiring_soon_lots"` // vencen en menos de 30 días
	ExpiredActiveLots  int             `json:"expired_active_lots"`
	From               *time.Time      `json:"from,omitempty"`
	To                 *time.Time      `json:"to,omitempty"`
	FormattedInventory string          `json:"formatted_inventory_value"`
	FormattedProfit    string          `json:"formatted_net_profit"`
}

// LowStockItemDTO producto por debajo de su mínimo, con la sugerencia de reposición.
type LowStockItemDTO struct {
	ProductID           string          `json:"product_id"`
	ProductName         string          `json:"product_name"`
	Available           int             `json:"available"`
	MinStock            int             `json:"min_stock"`
	Deficit             int             `json:"deficit"`             // MinStock - Available
	IdealStock          int             `json:"ideal_stock"`         // ceil(MinStock * 1.5)
	SuggestedOrderQty   int             `json:"suggested_order_qty"` // IdealStock - Available
	UnitCost            decimal.Decimal `json:"unit_cost"`           // costo promedio ponderado de los lotes activos
	EstimatedOrderCost  decimal.Decimal `json:"estimated_order_cost"`
	GrossMarginPct      decimal.Decimal `json:"gross_margin_pct"` // margen histórico, 0 si no hubo ventas
	UnitsSoldLast90Days int             `json:"units_sold_last_90d"`
	Priority            int             `json:"priority"` // 1 = más urgente
}

// ExpiringLotDTO lote activo con existencia que vence dentro de la ventana consultada.
type ExpiringLotDTO struct {
	LotID        string          `json:"lot_id"`
	LotCode      string          `json:"lot_code"`
	ProductID    string          `json:"product_id"`
	ProductName  string          `json:"product_name"`
	Expiration   time.Time       `json:"expiration"`
	DaysToExpire int             `json:"days_to_expire"`
	Status       string          `json:"status"`
	Quantity     int             `json:"quantity"`
	ValueAtCost  decimal.Decimal `json:"value_at_cost"`
}

// ProductProfitDTO diagnóstico de rentabilidad de un producto.
type ProductProfitDTO struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	UnitsSold   int             `json:"units_sold"`
	Revenue     decimal.Decimal `json:"revenue"`
	Cost        decimal.Decimal `json:"cost"`
	Profit      decimal.Decimal `json:"profit"`
	MarginPct   decimal.Decimal `json:"margin_pct"`
}

// ProfitReportDTO respuesta de GET /api/reports/profit.
type ProfitReportDTO struct {
	Products []ProductProfitDTO `json:"products"`
	Revenue  decimal.Decimal    `json:"revenue"`
	Cost     decimal.Decimal    `json:"cost"`
	Profit   decimal.Decimal    `json:"profit"`
}
