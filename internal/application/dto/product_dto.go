package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateCategoryRequest entrada para crear una categoría.
type CreateCategoryRequest struct {
	Name string `json:"name" validate:"required,min=1,max=120"`
}

// CategoryResponse salida de una categoría.
type CategoryResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateProductRequest entrada para crear un medicamento del catálogo.
type CreateProductRequest struct {
	Name            string `json:"name" validate:"required,min=1,max=200"`
	Description     string `json:"description" validate:"max=1000"`
	ActiveSubstance string `json:"active_substance" validate:"max=200"`
	Laboratory      string `json:"laboratory" validate:"max=200"`
	CategoryID      string `json:"category_id" validate:"omitempty,uuid"`
	MinStock        int    `json:"min_stock" validate:"min=0"`
}

// UpdateProductRequest entrada para actualizar un producto. Campos nil no se tocan.
type UpdateProductRequest struct {
	Name            *string `json:"name" validate:"omitempty,min=1,max=200"`
	Description     *string `json:"description" validate:"omitempty,max=1000"`
	ActiveSubstance *string `json:"active_substance" validate:"omitempty,max=200"`
	Laboratory      *string `json:"laboratory" validate:"omitempty,max=200"`
	CategoryID      *string `json:"category_id" validate:"omitempty,uuid"`
	MinStock        *int    `json:"min_stock" validate:"omitempty,min=0"`
	Active          *bool   `json:"active"`
}

// ProductResponse salida de un producto con sus agregados de stock recalculados.
type ProductResponse struct {
	ID               string          `json:"id"`
	Name             string          `json:"name"`
	Description      string          `json:"description"`
	ActiveSubstance  string          `json:"active_substance"`
	Laboratory       string          `json:"laboratory"`
	CategoryID       string          `json:"category_id,omitempty"`
	MinStock         int             `json:"min_stock"`
	Active           bool            `json:"active"`
	Available        int             `json:"available"`
	ActiveLots       int             `json:"active_lots"`
	NextExpiration   *time.Time      `json:"next_expiration,omitempty"`
	ReferencePrice   decimal.Decimal `json:"reference_price"`
	AverageCost      decimal.Decimal `json:"average_cost"`
	StockStatus      string          `json:"stock_status"`
	ExpirationStatus string          `json:"expiration_status"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}

// ProductQuery filtros de GET /api/products.
type ProductQuery struct {
	Q          string `query:"q" validate:"max=100"`
	CategoryID string `query:"category_id" validate:"omitempty,uuid"`
	All        bool   `query:"all"` // incluye inactivos (vista administrativa)
	PageRequest
}
