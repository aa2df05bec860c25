package inventory

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Farmacia-api/internal/domain/entity"
	"github.com/jhoicas/Farmacia-api/internal/domain/expiration"
)

// StockStatus nivel de stock frente al mínimo del producto.
type StockStatus string

const (
	StockLow    StockStatus = "BAJO"
	StockMedium StockStatus = "MEDIO"
	StockHigh   StockStatus = "ALTO"
)

// ClassifyStock BAJO si available < min; MEDIO si available < min*1.5; si no ALTO.
func ClassifyStock(available, minStock int) StockStatus {
	// available < min*1.5  ⇔  2*available < 3*min, sin flotantes.
	switch {
	case available < minStock:
		return StockLow
	case 2*available < 3*minStock:
		return StockMedium
	default:
		return StockHigh
	}
}

// ProductStock agregados derivados de los lotes de un producto.
type ProductStock struct {
	ProductID        string
	Available        int
	ActiveLots       int
	NextExpiration   *time.Time
	ReferencePrice   decimal.Decimal // precio del primer lote en orden FEFO
	AverageCost      decimal.Decimal
	StockStatus      StockStatus
	ExpirationStatus expiration.Status
}

// Summarize recalcula los agregados de un producto a partir de sus lotes (cualquier estado).
// Solo cuentan los lotes activos; el próximo vencimiento considera lotes activos con cantidad > 0.
func Summarize(p *entity.Product, lots []entity.Lot, now time.Time) ProductStock {
	out := ProductStock{ProductID: p.ID, ReferencePrice: decimal.Zero, AverageCost: decimal.Zero}

	active := make([]entity.Lot, 0, len(lots))
	for _, l := range lots {
		if l.ProductID != p.ID || !l.Active {
			continue
		}
		active = append(active, l)
		out.Available += l.Quantity
	}
	SortFEFO(active)

	for _, l := range active {
		if l.Quantity <= 0 {
			continue
		}
		out.ActiveLots++
		if out.NextExpiration == nil {
			exp := l.Expiration
			out.NextExpiration = &exp
			out.ReferencePrice = l.UnitPrice
		}
	}
	out.AverageCost = WeightedAverageCost(active)
	out.StockStatus = ClassifyStock(out.Available, p.MinStock)
	out.ExpirationStatus = expiration.Classify(out.NextExpiration, now)
	return out
}

// WeightedAverageCost costo promedio ponderado de los lotes con existencia.
// Acumula lote a lote: ((stock * costo) + (cant * costoLote)) / (stock + cant).
func WeightedAverageCost(lots []entity.Lot) decimal.Decimal {
	stock := decimal.Zero
	cost := decimal.Zero
	for _, l := range lots {
		if l.Quantity <= 0 {
			continue
		}
		qty := decimal.NewFromInt(int64(l.Quantity))
		sum := stock.Add(qty)
		cost = stock.Mul(cost).Add(qty.Mul(l.UnitCost)).Div(sum)
		stock = sum
	}
	return cost
}

// InventoryValue Σ cantidad × precio de venta de los lotes activos.
func InventoryValue(lots []entity.Lot) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lots {
		if !l.Active || l.Quantity <= 0 {
			continue
		}
		total = total.Add(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return total
}

// Financials resultados de ventas calculados desde el kardex.
type Financials struct {
	UnitsSold int
	Revenue   decimal.Decimal
	Cost      decimal.Decimal
	Profit    decimal.Decimal
}

// MarginPct margen bruto sobre ingresos en porcentaje, 0 si no hubo ingresos.
func (f Financials) MarginPct() decimal.Decimal {
	if f.Revenue.IsZero() {
		return decimal.Zero
	}
	return f.Profit.Div(f.Revenue).Mul(decimal.NewFromInt(100)).Round(2)
}

// SalesFinancials suma las VENTA del kardex: ingresos = Σ|cant|×precio, costo = Σ|cant|×costo al vender.
// Otros tipos de movimiento se ignoran. Profit = Revenue - Cost exacto (decimal).
func SalesFinancials(movements []entity.Movement) Financials {
	f := Financials{Revenue: decimal.Zero, Cost: decimal.Zero}
	for i := range movements {
		m := &movements[i]
		if m.Kind != entity.MovementVenta {
			continue
		}
		qty := decimal.NewFromInt(int64(m.AbsQuantity()))
		f.UnitsSold += m.AbsQuantity()
		f.Revenue = f.Revenue.Add(qty.Mul(m.UnitPrice))
		f.Cost = f.Cost.Add(qty.Mul(m.UnitCost))
	}
	f.Profit = f.Revenue.Sub(f.Cost)
	return f
}

// SalesByProduct agrupa SalesFinancials por producto.
func SalesByProduct(movements []entity.Movement) map[string]Financials {
	groups := make(map[string][]entity.Movement)
	for _, m := range movements {
		if m.Kind != entity.MovementVenta {
			continue
		}
		groups[m.ProductID] = append(groups[m.ProductID], m)
	}
	out := make(map[string]Financials, len(groups))
	for id, movs := range groups {
		out[id] = SalesFinancials(movs)
	}
	return out
}
