package repository

import (
	"context"

	"github.com/jhoicas/Farmacia-api/internal/domain/entity"
)

// ProductFilter criterios de listado del catálogo. Campos vacíos no filtran.
type ProductFilter struct {
	Query      string // coincide por nombre, principio activo o laboratorio (sin distinguir mayúsculas)
	CategoryID string
	ActiveOnly bool
	Limit      int
	Offset     int
}

// ProductRepository define el puerto de persistencia para Product (DIP).
// No existe Delete: los productos se desactivan porque los lotes y el kardex los referencian.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	Update(ctx context.Context, product *entity.Product) error
	List(ctx context.Context, filter ProductFilter) ([]*entity.Product, error)
}
