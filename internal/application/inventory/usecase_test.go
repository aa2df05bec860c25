package inventory_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Farmacia-api/internal/application/dto"
	"github.com/jhoicas/Farmacia-api/internal/application/inventory"
	"github.com/jhoicas/Farmacia-api/internal/application/ports"
	"github.com/jhoicas/Farmacia-api/internal/domain"
	"github.com/jhoicas/Farmacia-api/internal/domain/entity"
	"github.com/jhoicas/Farmacia-api/internal/infrastructure/memory"
	"github.com/jhoicas/Farmacia-api/pkg/logger"
)

var now = time.Date(2024, 12, 1, 12, 0, 0, 0, time.UTC)

func clock() time.Time { return now }

func day(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decp(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

// ──────────────────────────────────────────────────────────────────────────────
// Fixture
// ──────────────────────────────────────────────────────────────────────────────

type fixture struct {
	products *memory.ProductRepo
	lots     *memory.LotRepo
	movs     *memory.MovementRepo
	events   *ports.RecordingPublisher
	uc       *inventory.LotUseCase
}

func newFixture() *fixture {
	s := memory.NewStore()
	f := &fixture{
		products: memory.NewProductRepository(s),
		lots:     memory.NewLotRepository(s),
		movs:     memory.NewMovementRepository(s),
		events:   &ports.RecordingPublisher{},
	}
	f.uc = inventory.NewLotUseCase(memory.NewTxRunner(s), f.lots, f.products, f.movs, f.events, nil).WithClock(clock)
	return f
}

func (f *fixture) product(t *testing.T, name string, minStock int, active bool) *entity.Product {
	t.Helper()
	p := &entity.Product{ID: uuid.New().String(), Name: name, MinStock: minStock, Active: active, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, f.products.Create(context.Background(), p))
	return p
}

func (f *fixture) receive(t *testing.T, productID, code string, exp time.Time, qty int, cost, price string) *dto.LotResponse {
	t.Helper()
	lot, err := f.uc.ReceiveLot(context.Background(), "admin", dto.CreateLotRequest{
		ProductID: productID, Code: code, Expiration: exp, Quantity: qty,
		UnitCost: decp(cost), UnitPrice: decp(price),
	})
	require.NoError(t, err)
	return lot
}

func (f *fixture) kardex(t *testing.T) []entity.Movement {
	t.Helper()
	movs, err := f.movs.List(context.Background(), entity.MovementFilter{}, 0)
	require.NoError(t, err)
	return movs
}

// ──────────────────────────────────────────────────────────────────────────────
// ReceiveLot
// ──────────────────────────────────────────────────────────────────────────────

func TestReceiveLot_RegistraEntrada(t *testing.T) {
	f := newFixture()
	p := f.product(t, "Paracetamol", 5, true)

	lot := f.receive(t, p.ID, "L-001", day(2025, 1, 10), 20, "2.50", "4.00")

	assert.Equal(t, 20, lot.Quantity)
	assert.True(t, lot.Active)
	assert.Equal(t, 39, lot.DaysToExpire)
	assert.Equal(t, "ADVERTENCIA", lot.ExpirationStatus)

	movs := f.kardex(t)
	require.Len(t, movs, 1)
	m := movs[0]
	assert.Equal(t, entity.MovementEntrada, m.Kind)
	assert.Equal(t, 20, m.Quantity)
	assert.Equal(t, lot.ID, m.LotID)
	assert.True(t, m.UnitPrice.Equal(dec("2.50")))
	assert.True(t, m.Total.Equal(dec("50")))
	assert.Equal(t, "admin", m.CreatedBy)

	assert.Equal(t, []string{ports.EventLotReceived}, f.events.Types())
}

func TestReceiveLot_Validaciones(t *testing.T) {
	f := newFixture()
	active := f.product(t, "Activo", 5, true)
	inactive := f.product(t, "Inactivo", 5, false)

	cases := []struct {
		name string
		req  dto.CreateLotRequest
	}{
		{"sin código", dto.CreateLotRequest{ProductID: active.ID, Expiration: day(2025, 1, 1), Quantity: 1, UnitCost: decp("1"), UnitPrice: decp("2")}},
		{"sin vencimiento", dto.CreateLotRequest{ProductID: active.ID, Code: "X", Quantity: 1, UnitCost: decp("1"), UnitPrice: decp("2")}},
		{"cantidad cero", dto.CreateLotRequest{ProductID: active.ID, Code: "X", Expiration: day(2025, 1, 1), UnitCost: decp("1"), UnitPrice: decp("2")}},
		{"costo negativo", dto.CreateLotRequest{ProductID: active.ID, Code: "X", Expiration: day(2025, 1, 1), Quantity: 1, UnitCost: decp("-1"), UnitPrice: decp("2")}},
		{"precio negativo", dto.CreateLotRequest{ProductID: active.ID, Code: "X", Expiration: day(2025, 1, 1), Quantity: 1, UnitCost: decp("1"), UnitPrice: decp("-2")}},
		{"producto inactivo", dto.CreateLotRequest{ProductID: inactive.ID, Code: "X", Expiration: day(2025, 1, 1), Quantity: 1, UnitCost: decp("1"), UnitPrice: decp("2")}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.uc.ReceiveLot(context.Background(), "admin", tc.req)
			assert.True(t, errors.Is(err, domain.ErrInvalidInput), "err = %v", err)
		})
	}
	assert.Empty(t, f.kardex(t))
}

func TestReceiveLot_ProductoInexistente(t *testing.T) {
	f := newFixture()
	_, err := f.uc.ReceiveLot(context.Background(), "admin", dto.CreateLotRequest{
		ProductID: uuid.New().String(), Code: "X", Expiration: day(2025, 1, 1), Quantity: 1,
		UnitCost: decp("1"), UnitPrice: decp("2"),
	})
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestReceiveLot_CostoYPrecioRequeridos(t *testing.T) {
	f := newFixture()
	p := f.product(t, "Paracetamol", 5, true)

	cases := []struct {
		name  string
		req   dto.CreateLotRequest
		field string
	}{
		{"sin costo", dto.CreateLotRequest{ProductID: p.ID, Code: "X", Expiration: day(2025, 6, 1), Quantity: 10, UnitPrice: decp("4")}, "unit_cost"},
		{"sin precio", dto.CreateLotRequest{ProductID: p.ID, Code: "X", Expiration: day(2025, 6, 1), Quantity: 10, UnitCost: decp("2")}, "unit_price"},
		{"sin ambos", dto.CreateLotRequest{ProductID: p.ID, Code: "X", Expiration: day(2025, 6, 1), Quantity: 10}, "unit_cost"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.uc.ReceiveLot(context.Background(), "admin", tc.req)
			var verr *domain.ValidationError
			require.True(t, errors.As(err, &verr), "err = %v", err)
			assert.Equal(t, tc.field, verr.Field)
		})
	}
	assert.Empty(t, f.kardex(t))

	// costo cero explícito es válido (muestras médicas)
	lot := f.receive(t, p.ID, "MUESTRA", day(2025, 6, 1), 3, "0", "0")
	assert.True(t, lot.UnitCost.IsZero())
}

func TestReceiveLot_VencimientoComoFecha(t *testing.T) {
	f := newFixture()
	p := f.product(t, "Paracetamol", 5, true)
	caracas := time.FixedZone("VET", -4*60*60)

	lot := f.receive(t, p.ID, "L-HORA", time.Date(2025, 1, 10, 17, 45, 0, 0, caracas), 5, "2", "4")

	assert.Equal(t, day(2025, 1, 10), lot.Expiration)
	assert.Equal(t, 39, lot.DaysToExpire)
	stored, err := f.lots.GetByID(context.Background(), lot.ID)
	require.NoError(t, err)
	assert.Equal(t, day(2025, 1, 10), stored.Expiration)

	exp := time.Date(2025, 3, 2, 9, 30, 0, 0, time.UTC)
	got, err := f.uc.UpdateLot(context.Background(), lot.ID, dto.UpdateLotRequest{Expiration: &exp})
	require.NoError(t, err)
	assert.Equal(t, day(2025, 3, 2), got.Expiration)
}

func TestCalendarDate(t *testing.T) {
	assert.Equal(t, day(2025, 1, 10), inventory.CalendarDate(time.Date(2025, 1, 10, 23, 59, 59, 0, time.UTC)))
	assert.Equal(t, day(2025, 1, 11), inventory.CalendarDate(time.Date(2025, 1, 10, 22, 0, 0, 0, time.FixedZone("VET", -4*60*60))))
	assert.True(t, inventory.CalendarDate(time.Time{}).IsZero())
}

type failingPublisher struct{}

func (failingPublisher) Publish(context.Context, ports.Event) error {
	return errors.New("broker caído")
}

func TestReceiveLot_FalloAlPublicarSeRegistra(t *testing.T) {
	s := memory.NewStore()
	products := memory.NewProductRepository(s)
	lots := memory.NewLotRepository(s)
	var buf bytes.Buffer
	uc := inventory.NewLotUseCase(memory.NewTxRunner(s), lots, products, memory.NewMovementRepository(s),
		failingPublisher{}, logger.NewWithWriter(&buf, "warn")).WithClock(clock)

	p := &entity.Product{ID: uuid.New().String(), Name: "Paracetamol", Active: true, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, products.Create(context.Background(), p))

	lot, err := uc.ReceiveLot(context.Background(), "admin", dto.CreateLotRequest{
		ProductID: p.ID, Code: "L-1", Expiration: day(2025, 6, 1), Quantity: 4,
		UnitCost: decp("2"), UnitPrice: decp("4"),
	})
	require.NoError(t, err, "la recepción confirmada no se revierte por el broker")
	assert.Contains(t, buf.String(), ports.EventLotReceived)
	assert.Contains(t, buf.String(), "broker caído")

	buf.Reset()
	_, err = uc.WriteOff(context.Background(), "admin", lot.ID, dto.WriteOffRequest{Reason: "vencido"})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), ports.EventLotWrittenOff)
}

func TestReceiveLot_CodigoDuplicadoNoDejaMovimiento(t *testing.T) {
	f := newFixture()
	p := f.product(t, "Paracetamol", 5, true)
	f.receive(t, p.ID, "L-001", day(2025, 1, 10), 20, "2", "4")

	_, err := f.uc.ReceiveLot(context.Background(), "admin", dto.CreateLotRequest{
		ProductID: p.ID, Code: "L-001", Expiration: day(2025, 2, 10), Quantity: 5,
		UnitCost: decp("2"), UnitPrice: decp("4"),
	})
	assert.True(t, errors.Is(err, domain.ErrDuplicate))
	assert.Len(t, f.kardex(t), 1)
}

// ──────────────────────────────────────────────────────────────────────────────
// UpdateLot / DeactivateLot
// ──────────────────────────────────────────────────────────────────────────────

func TestUpdateLot_SinMovimiento(t *testing.T) {
	f := newFixture()
	p := f.product(t, "Paracetamol", 5, true)
	lot := f.receive(t, p.ID, "L-001", day(2025, 1, 10), 20, "2", "4")

	qty := 18
	price := dec("4.50")
	got, err := f.uc.UpdateLot(context.Background(), lot.ID, dto.UpdateLotRequest{Quantity: &qty, UnitPrice: &price})
	require.NoError(t, err)
	assert.Equal(t, 18, got.Quantity)
	assert.True(t, got.UnitPrice.Equal(price))
	assert.Len(t, f.kardex(t), 1)
}

func TestUpdateLot_CantidadNegativa(t *testing.T) {
	f := newFixture()
	p := f.product(t, "Paracetamol", 5, true)
	lot := f.receive(t, p.ID, "L-001", day(2025, 1, 10), 20, "2", "4")

	qty := -1
	_, err := f.uc.UpdateLot(context.Background(), lot.ID, dto.UpdateLotRequest{Quantity: &qty})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	stored, err := f.lots.GetByID(context.Background(), lot.ID)
	require.NoError(t, err)
	assert.Equal(t, 20, stored.Quantity)
}

func TestDeactivateLot(t *testing.T) {
	f := newFixture()
	p := f.product(t, "Paracetamol", 5, true)
	lot := f.receive(t, p.ID, "L-001", day(2025, 1, 10), 20, "2", "4")

	require.NoError(t, f.uc.DeactivateLot(context.Background(), lot.ID))
	// idempotente
	require.NoError(t, f.uc.DeactivateLot(context.Background(), lot.ID))

	sellable, err := f.uc.ListLots(context.Background(), p.ID, false)
	require.NoError(t, err)
	assert.Empty(t, sellable)

	all, err := f.uc.ListLots(context.Background(), p.ID, true)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.False(t, all[0].Active)
	assert.Equal(t, 20, all[0].Quantity)
}

// ──────────────────────────────────────────────────────────────────────────────
// WriteOff
// ──────────────────────────────────────────────────────────────────────────────

func TestWriteOff_RegistraMerma(t *testing.T) {
	f := newFixture()
	p := f.product(t, "Paracetamol", 5, true)
	lot := f.receive(t, p.ID, "L-001", day(2024, 11, 10), 6, "2.50", "4")

	mov, err := f.uc.WriteOff(context.Background(), "admin", lot.ID, dto.WriteOffRequest{Reason: "vencido"})
	require.NoError(t, err)
	assert.Equal(t, "MERMA", mov.Kind)
	assert.Equal(t, -6, mov.Quantity)
	assert.True(t, mov.Total.Equal(dec("-15")))
	assert.Equal(t, "vencido", mov.Notes)

	stored, err := f.lots.GetByID(context.Background(), lot.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.Quantity)
	assert.False(t, stored.Active)

	assert.Equal(t, []string{ports.EventLotReceived, ports.EventLotWrittenOff}, f.events.Types())
}

func TestWriteOff_LoteVacio(t *testing.T) {
	f := newFixture()
	p := f.product(t, "Paracetamol", 5, true)
	lot := f.receive(t, p.ID, "L-001", day(2025, 1, 10), 6, "2", "4")
	_, err := f.uc.WriteOff(context.Background(), "admin", lot.ID, dto.WriteOffRequest{Reason: "daño"})
	require.NoError(t, err)

	_, err = f.uc.WriteOff(context.Background(), "admin", lot.ID, dto.WriteOffRequest{Reason: "daño"})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
	assert.Len(t, f.kardex(t), 2)
}

func TestWriteOff_SinMotivo(t *testing.T) {
	f := newFixture()
	_, err := f.uc.WriteOff(context.Background(), "admin", uuid.New().String(), dto.WriteOffRequest{})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

// ──────────────────────────────────────────────────────────────────────────────
// Consultas
// ──────────────────────────────────────────────────────────────────────────────

func TestListLots_OrdenFEFO(t *testing.T) {
	f := newFixture()
	p := f.product(t, "Paracetamol", 5, true)
	f.receive(t, p.ID, "TARDE", day(2025, 6, 1), 5, "2", "4")
	f.receive(t, p.ID, "PRONTO", day(2025, 1, 1), 5, "2", "4")

	lots, err := f.uc.ListLots(context.Background(), p.ID, false)
	require.NoError(t, err)
	require.Len(t, lots, 2)
	assert.Equal(t, "PRONTO", lots[0].Code)
	assert.Equal(t, "TARDE", lots[1].Code)
}

func TestListMovements_Filtros(t *testing.T) {
	f := newFixture()
	p := f.product(t, "Paracetamol", 5, true)
	lot := f.receive(t, p.ID, "L-001", day(2025, 1, 10), 6, "2", "4")
	f.receive(t, p.ID, "L-002", day(2025, 2, 10), 6, "2", "4")
	_, err := f.uc.WriteOff(context.Background(), "admin", lot.ID, dto.WriteOffRequest{Reason: "daño"})
	require.NoError(t, err)

	entradas, err := f.uc.ListMovements(context.Background(), dto.MovementQuery{Kind: "ENTRADA"})
	require.NoError(t, err)
	assert.Len(t, entradas, 2)

	byLot, err := f.uc.ListMovements(context.Background(), dto.MovementQuery{LotID: lot.ID})
	require.NoError(t, err)
	require.Len(t, byLot, 2)
	assert.Equal(t, "MERMA", byLot[0].Kind, "más recientes primero")

	limited, err := f.uc.ListMovements(context.Background(), dto.MovementQuery{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	_, err = f.uc.ListMovements(context.Background(), dto.MovementQuery{Kind: "AJUSTE"})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	later := now.Add(time.Hour)
	_, err = f.uc.ListMovements(context.Background(), dto.MovementQuery{From: &later, To: &now})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}
