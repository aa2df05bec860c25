package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// AllocationItem es la porción de una línea de venta tomada de un lote.
type AllocationItem struct {
	LotID      string
	LotCode    string
	Expiration time.Time
	Quantity   int
	UnitCost   decimal.Decimal
	UnitPrice  decimal.Decimal
}

// AllocationPlan lotes elegidos (en orden FEFO) para satisfacer una línea. No se persiste.
type AllocationPlan struct {
	ProductID string
	Requested int
	Items     []AllocationItem
}

// Total cantidad tomada entre todos los lotes.
func (p *AllocationPlan) Total() int {
	n := 0
	for _, it := range p.Items {
		n += it.Quantity
	}
	return n
}

// Revenue ingreso de la línea: Σ cantidad × precio del lote.
func (p *AllocationPlan) Revenue() decimal.Decimal {
	sum := decimal.Zero
	for _, it := range p.Items {
		sum = sum.Add(it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return sum
}

// Cost costo de la línea: Σ cantidad × costo del lote.
func (p *AllocationPlan) Cost() decimal.Decimal {
	sum := decimal.Zero
	for _, it := range p.Items {
		sum = sum.Add(it.UnitCost.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return sum
}
