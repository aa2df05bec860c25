package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// SaleLine resultado comprometido de una línea del carrito.
type SaleLine struct {
	ProductID   string
	ProductName string
	Quantity    int
	Plan        AllocationPlan
	Total       decimal.Decimal
}

// Sale comprobante de una venta confirmada (todas las líneas en una sola transacción).
type Sale struct {
	ID        string
	SoldBy    string
	Lines     []SaleLine
	Revenue   decimal.Decimal
	Cost      decimal.Decimal
	Warnings  []string // p.ej. lotes vencidos vendidos bajo la política "warn"
	CreatedAt time.Time
}
