package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartItemRequest body para POST /api/cart y PUT /api/cart/items/:productId.
type CartItemRequest struct {
	ProductID string `json:"product_id" validate:"omitempty,uuid"`
	Quantity  int    `json:"quantity" validate:"min=0,max=1000000"`
}

// CartLineResponse línea del carrito con datos vivos del catálogo (sin reservar stock).
type CartLineResponse struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	Available   int             `json:"available"`
	UnitPrice   decimal.Decimal `json:"unit_price"` // precio del lote FEFO actual, referencial
	Subtotal    decimal.Decimal `json:"subtotal"`
	Sufficient  bool            `json:"sufficient"`
}

// CartResponse carrito de la sesión.
type CartResponse struct {
	Items []CartLineResponse `json:"items"`
	Units int                `json:"units"`
	Total decimal.Decimal    `json:"total"`
}

// SaleRequest body para POST /api/sales (venta directa sin carrito de sesión).
type SaleRequest struct {
	Items []SaleItemRequest `json:"items" validate:"required,min=1,dive"`
}

// SaleItemRequest línea de una venta directa.
type SaleItemRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"required,gt=0,max=1000000"`
}

// AllocationResponse porción de una línea tomada de un lote.
type AllocationResponse struct {
	LotID      string          `json:"lot_id"`
	LotCode    string          `json:"lot_code"`
	Expiration time.Time       `json:"expiration"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	Subtotal   decimal.Decimal `json:"subtotal"`
}

// SaleLineResponse línea comprometida de la venta.
type SaleLineResponse struct {
	ProductID   string               `json:"product_id"`
	ProductName string               `json:"product_name"`
	Quantity    int                  `json:"quantity"`
	Allocations []AllocationResponse `json:"allocations"`
	Total       decimal.Decimal      `json:"total"`
}

// SaleResponse comprobante de venta.
type SaleResponse struct {
	ID        string             `json:"id"`
	SoldBy    string             `json:"sold_by"`
	Lines     []SaleLineResponse `json:"lines"`
	Total     decimal.Decimal    `json:"total"`
	Warnings  []string           `json:"warnings,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
}
