package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/jhoicas/Farmacia-api/internal/domain"
	"github.com/jhoicas/Farmacia-api/internal/domain/entity"
	"github.com/jhoicas/Farmacia-api/internal/domain/repository"
)

var (
	_ repository.ProductRepository  = (*ProductRepo)(nil)
	_ repository.CategoryRepository = (*CategoryRepo)(nil)
)

// ProductRepo productos en memoria.
type ProductRepo struct {
	s    *Store
	inTx bool
}

// NewProductRepository construye el adaptador sobre el Store.
func NewProductRepository(s *Store) *ProductRepo {
	return &ProductRepo{s: s}
}

// Create guarda un producto nuevo.
func (r *ProductRepo) Create(_ context.Context, product *entity.Product) error {
	defer r.s.lock(r.inTx)()
	if _, ok := r.s.products[product.ID]; ok {
		return fmt.Errorf("product %s: %w", product.ID, domain.ErrDuplicate)
	}
	r.s.products[product.ID] = *product
	return nil
}

// GetByID devuelve una copia del producto.
func (r *ProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	defer r.s.rlock(r.inTx)()
	p, ok := r.s.products[id]
	if !ok {
		return nil, fmt.Errorf("product %s: %w", id, domain.ErrNotFound)
	}
	return &p, nil
}

// Update reemplaza el producto.
func (r *ProductRepo) Update(_ context.Context, product *entity.Product) error {
	defer r.s.lock(r.inTx)()
	if _, ok := r.s.products[product.ID]; !ok {
		return fmt.Errorf("product %s: %w", product.ID, domain.ErrNotFound)
	}
	r.s.products[product.ID] = *product
	return nil
}

// List devuelve los productos ordenados por nombre.
func (r *ProductRepo) List(_ context.Context, filter repository.ProductFilter) ([]*entity.Product, error) {
	defer r.s.rlock(r.inTx)()
	q := strings.ToLower(strings.TrimSpace(filter.Query))
	out := make([]*entity.Product, 0, len(r.s.products))
	for _, p := range r.s.products {
		if filter.ActiveOnly && !p.Active {
			continue
		}
		if filter.CategoryID != "" && p.CategoryID != filter.CategoryID {
			continue
		}
		if q != "" && !matches(&p, q) {
			continue
		}
		p := p
		out = append(out, &p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return paginate(out, filter.Limit, filter.Offset), nil
}

func matches(p *entity.Product, q string) bool {
	return strings.Contains(strings.ToLower(p.Name), q) ||
		strings.Contains(strings.ToLower(p.ActiveSubstance), q) ||
		strings.Contains(strings.ToLower(p.Laboratory), q)
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset > 0 {
		if offset >= len(items) {
			return items[:0]
		}
		items = items[offset:]
	}
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

// CategoryRepo categorías en memoria.
type CategoryRepo struct {
	s *Store
}

// NewCategoryRepository construye el adaptador sobre el Store.
func NewCategoryRepository(s *Store) *CategoryRepo {
	return &CategoryRepo{s: s}
}

// Create guarda una categoría; el nombre es único sin distinguir mayúsculas.
func (r *CategoryRepo) Create(_ context.Context, category *entity.Category) error {
	defer r.s.lock(false)()
	for _, c := range r.s.categories {
		if strings.EqualFold(c.Name, category.Name) {
			return fmt.Errorf("category %q: %w", category.Name, domain.ErrDuplicate)
		}
	}
	r.s.categories[category.ID] = *category
	return nil
}

// GetByID devuelve una copia de la categoría.
func (r *CategoryRepo) GetByID(_ context.Context, id string) (*entity.Category, error) {
	defer r.s.rlock(false)()
	c, ok := r.s.categories[id]
	if !ok {
		return nil, fmt.Errorf("category %s: %w", id, domain.ErrNotFound)
	}
	return &c, nil
}

// List devuelve las categorías por nombre.
func (r *CategoryRepo) List(_ context.Context) ([]*entity.Category, error) {
	defer r.s.rlock(false)()
	out := make([]*entity.Category, 0, len(r.s.categories))
	for _, c := range r.s.categories {
		c := c
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
