// Package inventory contiene los servicios de dominio del kardex por lotes:
// asignación FEFO, estado de stock y agregados financieros. Todo es puro (sin IO).
package inventory

import (
	"fmt"
	"sort"
	"time"

	"github.com/jhoicas/Farmacia-api/internal/domain"
	"github.com/jhoicas/Farmacia-api/internal/domain/entity"
	"github.com/jhoicas/Farmacia-api/internal/domain/expiration"
)

// ShortageError stock elegible insuficiente para la cantidad pedida.
type ShortageError struct {
	ProductID string
	Requested int
	Available int
}

func (e *ShortageError) Error() string {
	return fmt.Sprintf("stock insuficiente para %s: solicitado %d, disponible %d", e.ProductID, e.Requested, e.Available)
}

func (e *ShortageError) Unwrap() error { return domain.ErrInsufficientStock }

// ExpiredLotPolicy decide qué pasa con lotes vencidos pero activos al vender.
type ExpiredLotPolicy string

const (
	// PolicyWarn vende lotes vencidos y deja una advertencia (comportamiento por defecto).
	PolicyWarn ExpiredLotPolicy = "warn"
	// PolicyBlock excluye los lotes vencidos del conjunto elegible.
	PolicyBlock ExpiredLotPolicy = "block"
)

// ParsePolicy interpreta el valor de configuración; cualquier valor desconocido es PolicyWarn.
func ParsePolicy(s string) ExpiredLotPolicy {
	if ExpiredLotPolicy(s) == PolicyBlock {
		return PolicyBlock
	}
	return PolicyWarn
}

// SortFEFO ordena in place por vencimiento ascendente; empates por ID ascendente.
func SortFEFO(lots []entity.Lot) {
	sort.SliceStable(lots, func(i, j int) bool {
		a, b := lots[i], lots[j]
		if !a.Expiration.Equal(b.Expiration) {
			return a.Expiration.Before(b.Expiration)
		}
		return a.ID < b.ID
	})
}

// EligibleLots devuelve una copia, en orden FEFO, de los lotes vendibles según la política.
func EligibleLots(lots []entity.Lot, policy ExpiredLotPolicy, now time.Time) []entity.Lot {
	out := make([]entity.Lot, 0, len(lots))
	for _, l := range lots {
		if !l.Eligible() {
			continue
		}
		if policy == PolicyBlock && expiration.IsExpired(l.Expiration, now) {
			continue
		}
		out = append(out, l)
	}
	SortFEFO(out)
	return out
}

// PlanFEFO recorre los lotes elegibles del más próximo a vencer al más lejano y toma
// min(restante, lote.Quantity) de cada uno. Si el total elegible no alcanza devuelve
// *ShortageError y ningún plan. No modifica lots.
func PlanFEFO(productID string, lots []entity.Lot, requested int, policy ExpiredLotPolicy, now time.Time) (*entity.AllocationPlan, error) {
	if requested <= 0 {
		return nil, domain.Invalid("quantity", "debe ser mayor que cero")
	}
	eligible := EligibleLots(lots, policy, now)

	available := 0
	for _, l := range eligible {
		available += l.Quantity
	}
	if available < requested {
		return nil, &ShortageError{ProductID: productID, Requested: requested, Available: available}
	}

	plan := &entity.AllocationPlan{ProductID: productID, Requested: requested}
	remaining := requested
	for _, l := range eligible {
		if remaining == 0 {
			break
		}
		take := min(remaining, l.Quantity)
		plan.Items = append(plan.Items, entity.AllocationItem{
			LotID:      l.ID,
			LotCode:    l.Code,
			Expiration: l.Expiration,
			Quantity:   take,
			UnitCost:   l.UnitCost,
			UnitPrice:  l.UnitPrice,
		})
		remaining -= take
	}
	return plan, nil
}

// ExpiredItems devuelve los ítems del plan que consumen lotes ya vencidos.
func ExpiredItems(plan *entity.AllocationPlan, now time.Time) []entity.AllocationItem {
	var out []entity.AllocationItem
	for _, it := range plan.Items {
		if expiration.IsExpired(it.Expiration, now) {
			out = append(out, it)
		}
	}
	return out
}
