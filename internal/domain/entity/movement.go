package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// MovementKind tipo de movimiento del kardex.
type MovementKind string

// Tipos de movimiento de inventario.
const (
	MovementEntrada MovementKind = "ENTRADA" // recepción de lote, cantidad positiva
	MovementVenta   MovementKind = "VENTA"   // venta, cantidad negativa
	MovementMerma   MovementKind = "MERMA"   // baja por vencimiento o daño, cantidad negativa
)

// Valid indica si el tipo es uno de los conocidos.
func (k MovementKind) Valid() bool {
	switch k {
	case MovementEntrada, MovementVenta, MovementMerma:
		return true
	}
	return false
}

// Movement es un registro inmutable del kardex. Es la única fuente para los KPIs financieros.
type Movement struct {
	ID        string
	SaleID    string // agrupa las VENTA de un mismo carrito; vacío en ENTRADA/MERMA
	LotID     string
	ProductID string
	Kind      MovementKind
	Quantity  int             // con signo: + ENTRADA, - VENTA/MERMA
	UnitPrice decimal.Decimal // precio unitario al momento del movimiento
	UnitCost  decimal.Decimal // costo del lote al momento del movimiento
	Total     decimal.Decimal // Quantity * UnitPrice (mismo signo que Quantity)
	Notes     string
	CreatedBy string
	CreatedAt time.Time
}

// AbsQuantity devuelve la cantidad sin signo.
func (m *Movement) AbsQuantity() int {
	if m.Quantity < 0 {
		return -m.Quantity
	}
	return m.Quantity
}

// MovementFilter filtros para consultar el kardex. Campos vacíos no filtran.
type MovementFilter struct {
	Kind      MovementKind
	ProductID string
	LotID     string
	SaleID    string
	From      *time.Time
	To        *time.Time
}
