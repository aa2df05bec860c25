// Package catalog contiene los casos de uso del catálogo de medicamentos y categorías.
// Los agregados de stock de cada producto se recalculan desde sus lotes en cada consulta.
package catalog

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Farmacia-api/internal/application/dto"
	"github.com/jhoicas/Farmacia-api/internal/domain"
	"github.com/jhoicas/Farmacia-api/internal/domain/entity"
	"github.com/jhoicas/Farmacia-api/internal/domain/inventory"
	"github.com/jhoicas/Farmacia-api/internal/domain/repository"
)

const searchLimit = 20

// ProductUseCase casos de uso CRUD para productos. El stock no se edita aquí: vive en los lotes.
type ProductUseCase struct {
	repo         repository.ProductRepository
	categoryRepo repository.CategoryRepository
	lotRepo      repository.LotRepository
	now          func() time.Time
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(
	repo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	lotRepo repository.LotRepository,
) *ProductUseCase {
	return &ProductUseCase{repo: repo, categoryRepo: categoryRepo, lotRepo: lotRepo, now: time.Now}
}

// WithClock reemplaza el reloj (pruebas).
func (uc *ProductUseCase) WithClock(now func() time.Time) *ProductUseCase {
	uc.now = now
	return uc
}

// Create crea un producto activo sin stock.
func (uc *ProductUseCase) Create(ctx context.Context, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.Invalid("name", "requerido")
	}
	if in.MinStock < 0 {
		return nil, domain.Invalid("min_stock", "no puede ser negativo")
	}
	if in.CategoryID != "" {
		if _, err := uc.categoryRepo.GetByID(ctx, in.CategoryID); err != nil {
			return nil, err
		}
	}
	now := uc.now()
	product := &entity.Product{
		ID:              uuid.New().String(),
		Name:            name,
		Description:     in.Description,
		ActiveSubstance: in.ActiveSubstance,
		Laboratory:      in.Laboratory,
		CategoryID:      in.CategoryID,
		MinStock:        in.MinStock,
		Active:          true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := uc.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	out := toProductResponse(product, inventory.Summarize(product, nil, now))
	return &out, nil
}

// GetByID obtiene un producto con sus agregados.
func (uc *ProductUseCase) GetByID(ctx context.Context, id string) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return uc.withStock(ctx, product)
}

// Update actualiza los datos del producto. Active=true reactiva un producto dado de baja.
func (uc *ProductUseCase) Update(ctx context.Context, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, domain.Invalid("name", "requerido")
		}
		product.Name = name
	}
	if in.Description != nil {
		product.Description = *in.Description
	}
	if in.ActiveSubstance != nil {
		product.ActiveSubstance = *in.ActiveSubstance
	}
	if in.Laboratory != nil {
		product.Laboratory = *in.Laboratory
	}
	if in.CategoryID != nil {
		if *in.CategoryID != "" {
			if _, err := uc.categoryRepo.GetByID(ctx, *in.CategoryID); err != nil {
				return nil, err
			}
		}
		product.CategoryID = *in.CategoryID
	}
	if in.MinStock != nil {
		if *in.MinStock < 0 {
			return nil, domain.Invalid("min_stock", "no puede ser negativo")
		}
		product.MinStock = *in.MinStock
	}
	if in.Active != nil {
		product.Active = *in.Active
	}
	product.UpdatedAt = uc.now()
	if err := uc.repo.Update(ctx, product); err != nil {
		return nil, err
	}
	return uc.withStock(ctx, product)
}

// Deactivate da de baja lógica el producto. Sus lotes y movimientos siguen consultables.
func (uc *ProductUseCase) Deactivate(ctx context.Context, id string) error {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !product.Active {
		return nil
	}
	product.Active = false
	product.UpdatedAt = uc.now()
	return uc.repo.Update(ctx, product)
}

// List devuelve el catálogo con agregados. Por defecto solo productos activos.
func (uc *ProductUseCase) List(ctx context.Context, q dto.ProductQuery) (*dto.ProductListResponse, error) {
	q.DefaultPage()
	products, err := uc.repo.List(ctx, repository.ProductFilter{
		Query:      q.Q,
		CategoryID: q.CategoryID,
		ActiveOnly: !q.All,
		Limit:      q.Limit,
		Offset:     q.Offset,
	})
	if err != nil {
		return nil, err
	}
	items, err := uc.summarize(ctx, products)
	if err != nil {
		return nil, err
	}
	return &dto.ProductListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: q.Limit, Offset: q.Offset},
	}, nil
}

// Search búsqueda para la pantalla de venta: solo productos activos con stock vendible.
func (uc *ProductUseCase) Search(ctx context.Context, query string) ([]dto.ProductResponse, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []dto.ProductResponse{}, nil
	}
	products, err := uc.repo.List(ctx, repository.ProductFilter{Query: query, ActiveOnly: true})
	if err != nil {
		return nil, err
	}
	items, err := uc.summarize(ctx, products)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ProductResponse, 0, min(len(items), searchLimit))
	for _, it := range items {
		if it.Available <= 0 {
			continue
		}
		out = append(out, it)
		if len(out) == searchLimit {
			break
		}
	}
	return out, nil
}

func (uc *ProductUseCase) withStock(ctx context.Context, product *entity.Product) (*dto.ProductResponse, error) {
	lots, err := uc.lotRepo.ListByProduct(ctx, product.ID, true)
	if err != nil {
		return nil, err
	}
	out := toProductResponse(product, inventory.Summarize(product, lots, uc.now()))
	return &out, nil
}

// summarize calcula los agregados de varios productos con una sola lectura de lotes.
func (uc *ProductUseCase) summarize(ctx context.Context, products []*entity.Product) ([]dto.ProductResponse, error) {
	lots, err := uc.lotRepo.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	byProduct := make(map[string][]entity.Lot)
	for _, l := range lots {
		byProduct[l.ProductID] = append(byProduct[l.ProductID], l)
	}
	now := uc.now()
	out := make([]dto.ProductResponse, 0, len(products))
	for _, p := range products {
		out = append(out, toProductResponse(p, inventory.Summarize(p, byProduct[p.ID], now)))
	}
	return out, nil
}

func toProductResponse(p *entity.Product, s inventory.ProductStock) dto.ProductResponse {
	return dto.ProductResponse{
		ID:               p.ID,
		Name:             p.Name,
		Description:      p.Description,
		ActiveSubstance:  p.ActiveSubstance,
		Laboratory:       p.Laboratory,
		CategoryID:       p.CategoryID,
		MinStock:         p.MinStock,
		Active:           p.Active,
		Available:        s.Available,
		ActiveLots:       s.ActiveLots,
		NextExpiration:   s.NextExpiration,
		ReferencePrice:   s.ReferencePrice,
		AverageCost:      s.AverageCost.Round(2),
		StockStatus:      string(s.StockStatus),
		ExpirationStatus: string(s.ExpirationStatus),
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}
