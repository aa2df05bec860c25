package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateLotRequest body para POST /api/lots (recepción de mercadería).
type CreateLotRequest struct {
	ProductID  string           `json:"product_id" validate:"required,uuid"`
	Code       string           `json:"code" validate:"required,min=1,max=60"`
	Expiration time.Time        `json:"expiration" validate:"required"`
	Quantity   int              `json:"quantity" validate:"required,gt=0,max=1000000"`
	UnitCost   *decimal.Decimal `json:"unit_cost" validate:"required"`
	UnitPrice  *decimal.Decimal `json:"unit_price" validate:"required"`
}

// UpdateLotRequest body para PUT /api/lots/:id. No genera movimiento.
type UpdateLotRequest struct {
	Code       *string          `json:"code" validate:"omitempty,min=1,max=60"`
	Expiration *time.Time       `json:"expiration"`
	Quantity   *int             `json:"quantity" validate:"omitempty,min=0,max=1000000"`
	UnitCost   *decimal.Decimal `json:"unit_cost"`
	UnitPrice  *decimal.Decimal `json:"unit_price"`
}

// WriteOffRequest body para POST /api/lots/:id/write-off.
type WriteOffRequest struct {
	Reason string `json:"reason" validate:"required,min=3,max=500"`
}

// LotResponse salida de un lote con su estado de vencimiento.
type LotResponse struct {
	ID               string          `json:"id"`
	ProductID        string          `json:"product_id"`
	Code             string          `json:"code"`
	Expiration       time.Time       `json:"expiration"`
	DaysToExpire     int             `json:"days_to_expire"`
	ExpirationStatus string          `json:"expiration_status"`
	Quantity         int             `json:"quantity"`
	UnitCost         decimal.Decimal `json:"unit_cost"`
	UnitPrice        decimal.Decimal `json:"unit_price"`
	Active           bool            `json:"active"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// MovementQuery filtros de GET /api/movements.
type MovementQuery struct {
	Kind      string     `query:"kind" validate:"omitempty,oneof=ENTRADA VENTA MERMA"`
	ProductID string     `query:"product_id" validate:"omitempty,uuid"`
	LotID     string     `query:"lot_id" validate:"omitempty,uuid"`
	SaleID    string     `query:"sale_id" validate:"omitempty,uuid"`
	From      *time.Time `query:"-"`
	To        *time.Time `query:"-"`
	Limit     int        `query:"limit" validate:"min=0,max=1000"`
}

// MovementResponse salida de un registro del kardex.
type MovementResponse struct {
	ID        string          `json:"id"`
	SaleID    string          `json:"sale_id,omitempty"`
	LotID     string          `json:"lot_id"`
	ProductID string          `json:"product_id"`
	Kind      string          `json:"kind"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
	Total     decimal.Decimal `json:"total"`
	Notes     string          `json:"notes,omitempty"`
	CreatedBy string          `json:"created_by,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}
