package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Lot representa un lote recibido de un producto, con su propio vencimiento, costo y precio.
// Quantity nunca es negativo. Un lote inactivo no se vende ni suma al stock, pero nunca se borra
// porque los movimientos lo referencian.
type Lot struct {
	ID         string
	ProductID  string
	Code       string
	Expiration time.Time
	Quantity   int
	UnitCost   decimal.Decimal // costo de compra
	UnitPrice  decimal.Decimal // precio de venta
	Active     bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Eligible indica si el lote puede consumirse en una venta.
// El vencimiento no bloquea por sí mismo; eso lo decide la política de venta.
func (l *Lot) Eligible() bool {
	return l.Active && l.Quantity > 0
}
