package inventory_test

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Farmacia-api/internal/domain"
	"github.com/jhoicas/Farmacia-api/internal/domain/entity"
	"github.com/jhoicas/Farmacia-api/internal/domain/inventory"
)

var now = time.Date(2024, 12, 1, 12, 0, 0, 0, time.UTC)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func lot(id string, exp time.Time, qty int, price int64) entity.Lot {
	return entity.Lot{
		ID: id, ProductID: "P", Code: "L-" + id, Expiration: exp, Quantity: qty,
		UnitCost: decimal.NewFromInt(price / 2), UnitPrice: decimal.NewFromInt(price), Active: true,
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// PlanFEFO
// ──────────────────────────────────────────────────────────────────────────────

func TestPlanFEFO_EjemploDosLotes(t *testing.T) {
	lots := []entity.Lot{
		lot("B", date(2025, 3, 1), 10, 10),
		lot("A", date(2025, 1, 1), 5, 10),
	}

	plan, err := inventory.PlanFEFO("P", lots, 8, inventory.PolicyWarn, now)
	require.NoError(t, err)

	require.Len(t, plan.Items, 2)
	assert.Equal(t, "A", plan.Items[0].LotID)
	assert.Equal(t, 5, plan.Items[0].Quantity)
	assert.Equal(t, "B", plan.Items[1].LotID)
	assert.Equal(t, 3, plan.Items[1].Quantity)
	assert.Equal(t, 8, plan.Total())
	assert.True(t, decimal.NewFromInt(80).Equal(plan.Revenue()))

	// El slice de entrada no se modifica.
	assert.Equal(t, 10, lots[0].Quantity)
	assert.Equal(t, 5, lots[1].Quantity)
}

func TestPlanFEFO_OrdenEstrictoYSumaExacta(t *testing.T) {
	lots := []entity.Lot{
		lot("3", date(2025, 5, 1), 4, 7),
		lot("1", date(2025, 2, 1), 2, 7),
		lot("2", date(2025, 3, 1), 3, 7),
		lot("4", date(2025, 9, 1), 9, 7),
	}
	for requested := 1; requested <= 18; requested++ {
		plan, err := inventory.PlanFEFO("P", lots, requested, inventory.PolicyWarn, now)
		require.NoError(t, err, "requested=%d", requested)
		assert.Equal(t, requested, plan.Total())

		// Vencimientos no decrecientes y solo el último lote puede quedar parcial.
		for i := 1; i < len(plan.Items); i++ {
			assert.False(t, plan.Items[i].Expiration.Before(plan.Items[i-1].Expiration))
		}
		for i := 0; i < len(plan.Items)-1; i++ {
			for _, l := range lots {
				if l.ID == plan.Items[i].LotID {
					assert.Equal(t, l.Quantity, plan.Items[i].Quantity, "lote %s debe consumirse completo", l.ID)
				}
			}
		}
	}
}

func TestPlanFEFO_EmpatePorID(t *testing.T) {
	same := date(2025, 4, 1)
	lots := []entity.Lot{lot("b", same, 3, 5), lot("a", same, 3, 5)}

	plan, err := inventory.PlanFEFO("P", lots, 4, inventory.PolicyWarn, now)
	require.NoError(t, err)
	assert.Equal(t, "a", plan.Items[0].LotID)
	assert.Equal(t, "b", plan.Items[1].LotID)
}

func TestPlanFEFO_StockInsuficiente(t *testing.T) {
	lots := []entity.Lot{lot("A", date(2025, 1, 1), 5, 10), lot("B", date(2025, 3, 1), 10, 10)}

	plan, err := inventory.PlanFEFO("P", lots, 16, inventory.PolicyWarn, now)
	assert.Nil(t, plan)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))

	var shortage *inventory.ShortageError
	require.True(t, errors.As(err, &shortage))
	assert.Equal(t, 15, shortage.Available)
	assert.Equal(t, 16, shortage.Requested)
}

func TestPlanFEFO_IgnoraInactivosYVacios(t *testing.T) {
	inactive := lot("A", date(2024, 12, 20), 50, 10)
	inactive.Active = false
	lots := []entity.Lot{inactive, lot("B", date(2025, 1, 1), 0, 10), lot("C", date(2025, 2, 1), 4, 10)}

	plan, err := inventory.PlanFEFO("P", lots, 4, inventory.PolicyWarn, now)
	require.NoError(t, err)
	require.Len(t, plan.Items, 1)
	assert.Equal(t, "C", plan.Items[0].LotID)
}

func TestPlanFEFO_CantidadNoPositiva(t *testing.T) {
	for _, q := range []int{0, -3} {
		_, err := inventory.PlanFEFO("P", nil, q, inventory.PolicyWarn, now)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	}
}

func TestPlanFEFO_PoliticaLotesVencidos(t *testing.T) {
	lots := []entity.Lot{
		lot("old", date(2024, 11, 1), 5, 10), // vencido respecto a now
		lot("new", date(2025, 6, 1), 5, 10),
	}

	warn, err := inventory.PlanFEFO("P", lots, 3, inventory.PolicyWarn, now)
	require.NoError(t, err)
	assert.Equal(t, "old", warn.Items[0].LotID, "warn: el vencido sigue siendo vendible y va primero")
	assert.Len(t, inventory.ExpiredItems(warn, now), 1)

	block, err := inventory.PlanFEFO("P", lots, 3, inventory.PolicyBlock, now)
	require.NoError(t, err)
	assert.Equal(t, "new", block.Items[0].LotID)
	assert.Empty(t, inventory.ExpiredItems(block, now))

	_, err = inventory.PlanFEFO("P", lots, 6, inventory.PolicyBlock, now)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
}

func TestParsePolicy(t *testing.T) {
	assert.Equal(t, inventory.PolicyBlock, inventory.ParsePolicy("block"))
	assert.Equal(t, inventory.PolicyWarn, inventory.ParsePolicy("warn"))
	assert.Equal(t, inventory.PolicyWarn, inventory.ParsePolicy(""))
}
