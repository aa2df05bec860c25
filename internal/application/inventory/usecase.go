package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Farmacia-api/internal/application/dto"
	"github.com/jhoicas/Farmacia-api/internal/application/ports"
	"github.com/jhoicas/Farmacia-api/internal/domain"
	"github.com/jhoicas/Farmacia-api/internal/domain/entity"
	"github.com/jhoicas/Farmacia-api/internal/domain/expiration"
	"github.com/jhoicas/Farmacia-api/internal/domain/repository"
	"github.com/jhoicas/Farmacia-api/pkg/logger"
)

const defaultMovementLimit = 100

// LotUseCase administra el ciclo de vida de los lotes: recepción (ENTRADA), corrección,
// desactivación y baja por merma. Toda escritura que toca el kardex corre en una transacción.
type LotUseCase struct {
	txRunner    TxRunner
	lotRepo     repository.LotRepository
	productRepo repository.ProductRepository
	movRepo     repository.MovementRepository
	events      ports.EventPublisher
	log         *logger.Logger
	now         func() time.Time
}

// NewLotUseCase construye el caso de uso. events y log pueden ser nil.
func NewLotUseCase(
	txRunner TxRunner,
	lotRepo repository.LotRepository,
	productRepo repository.ProductRepository,
	movRepo repository.MovementRepository,
	events ports.EventPublisher,
	log *logger.Logger,
) *LotUseCase {
	if events == nil {
		events = ports.NoopPublisher{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &LotUseCase{
		txRunner:    txRunner,
		lotRepo:     lotRepo,
		productRepo: productRepo,
		movRepo:     movRepo,
		events:      events,
		log:         log,
		now:         time.Now,
	}
}

// WithClock reemplaza el reloj (pruebas).
func (uc *LotUseCase) WithClock(now func() time.Time) *LotUseCase {
	uc.now = now
	return uc
}

// ReceiveLot registra un lote recibido y su ENTRADA en la misma transacción.
// La ENTRADA se valoriza al costo del lote (precio unitario = costo unitario).
// El vencimiento se guarda como fecha calendario (medianoche UTC).
func (uc *LotUseCase) ReceiveLot(ctx context.Context, userID string, in dto.CreateLotRequest) (*dto.LotResponse, error) {
	if in.UnitCost == nil {
		return nil, domain.Invalid("unit_cost", "requerido")
	}
	if in.UnitPrice == nil {
		return nil, domain.Invalid("unit_price", "requerido")
	}
	exp := CalendarDate(in.Expiration)
	if err := validateLotFields(in.Code, exp, in.Quantity, *in.UnitCost, *in.UnitPrice); err != nil {
		return nil, err
	}
	if in.Quantity <= 0 {
		return nil, domain.Invalid("quantity", "debe ser mayor que cero")
	}
	product, err := uc.productRepo.GetByID(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}
	if !product.Active {
		return nil, domain.Invalid("product_id", "el producto está inactivo")
	}

	now := uc.now()
	lot := &entity.Lot{
		ID:         uuid.New().String(),
		ProductID:  product.ID,
		Code:       in.Code,
		Expiration: exp,
		Quantity:   in.Quantity,
		UnitCost:   *in.UnitCost,
		UnitPrice:  *in.UnitPrice,
		Active:     true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	qty := decimal.NewFromInt(int64(lot.Quantity))
	mov := &entity.Movement{
		ID:        uuid.New().String(),
		LotID:     lot.ID,
		ProductID: lot.ProductID,
		Kind:      entity.MovementEntrada,
		Quantity:  lot.Quantity,
		UnitPrice: lot.UnitCost,
		UnitCost:  lot.UnitCost,
		Total:     qty.Mul(lot.UnitCost),
		Notes:     fmt.Sprintf("recepción lote %s", lot.Code),
		CreatedBy: userID,
		CreatedAt: now,
	}

	err = uc.txRunner.Run(ctx, func(
		movRepo repository.MovementRepository,
		lotRepo repository.LotRepository,
		_ repository.ProductRepository,
	) error {
		if err := lotRepo.Create(ctx, lot); err != nil {
			return err
		}
		return movRepo.Create(ctx, mov)
	})
	if err != nil {
		return nil, err
	}

	uc.publish(ctx, ports.Event{
		Type:       ports.EventLotReceived,
		OccurredAt: now,
		Payload:    map[string]any{"lot_id": lot.ID, "product_id": lot.ProductID, "code": lot.Code, "quantity": lot.Quantity},
	})
	out := ToLotResponse(lot, now)
	return &out, nil
}

// UpdateLot corrige datos de un lote. No genera movimiento en el kardex.
// La fila se bloquea para no pisar un descuento concurrente de una venta.
func (uc *LotUseCase) UpdateLot(ctx context.Context, id string, in dto.UpdateLotRequest) (*dto.LotResponse, error) {
	var updated *entity.Lot
	err := uc.txRunner.Run(ctx, func(
		_ repository.MovementRepository,
		lotRepo repository.LotRepository,
		_ repository.ProductRepository,
	) error {
		lot, err := lotRepo.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if in.Code != nil {
			lot.Code = *in.Code
		}
		if in.Expiration != nil {
			lot.Expiration = CalendarDate(*in.Expiration)
		}
		if in.Quantity != nil {
			lot.Quantity = *in.Quantity
		}
		if in.UnitCost != nil {
			lot.UnitCost = *in.UnitCost
		}
		if in.UnitPrice != nil {
			lot.UnitPrice = *in.UnitPrice
		}
		if err := validateLotFields(lot.Code, lot.Expiration, lot.Quantity, lot.UnitCost, lot.UnitPrice); err != nil {
			return err
		}
		lot.UpdatedAt = uc.now()
		if err := lotRepo.Update(ctx, lot); err != nil {
			return err
		}
		updated = lot
		return nil
	})
	if err != nil {
		return nil, err
	}
	out := ToLotResponse(updated, uc.now())
	return &out, nil
}

// DeactivateLot marca el lote como inactivo (borrado lógico). La cantidad no cambia
// y no se registra movimiento; el lote deja de contar para el stock y la venta.
func (uc *LotUseCase) DeactivateLot(ctx context.Context, id string) error {
	return uc.txRunner.Run(ctx, func(
		_ repository.MovementRepository,
		lotRepo repository.LotRepository,
		_ repository.ProductRepository,
	) error {
		lot, err := lotRepo.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if !lot.Active {
			return nil
		}
		lot.Active = false
		lot.UpdatedAt = uc.now()
		return lotRepo.Update(ctx, lot)
	})
}

// WriteOff da de baja el saldo de un lote (vencido, dañado): registra una MERMA por la
// cantidad restante al costo del lote, deja la cantidad en cero y desactiva el lote.
func (uc *LotUseCase) WriteOff(ctx context.Context, userID, id string, in dto.WriteOffRequest) (*dto.MovementResponse, error) {
	if in.Reason == "" {
		return nil, domain.Invalid("reason", "requerido")
	}
	now := uc.now()
	var mov *entity.Movement
	err := uc.txRunner.Run(ctx, func(
		movRepo repository.MovementRepository,
		lotRepo repository.LotRepository,
		_ repository.ProductRepository,
	) error {
		lot, err := lotRepo.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if lot.Quantity <= 0 {
			return domain.Invalid("quantity", "el lote no tiene existencia para dar de baja")
		}
		qty := lot.Quantity
		mov = &entity.Movement{
			ID:        uuid.New().String(),
			LotID:     lot.ID,
			ProductID: lot.ProductID,
			Kind:      entity.MovementMerma,
			Quantity:  -qty,
			UnitPrice: lot.UnitCost,
			UnitCost:  lot.UnitCost,
			Total:     decimal.NewFromInt(int64(-qty)).Mul(lot.UnitCost),
			Notes:     in.Reason,
			CreatedBy: userID,
			CreatedAt: now,
		}
		lot.Quantity = 0
		lot.Active = false
		lot.UpdatedAt = now
		if err := lotRepo.Update(ctx, lot); err != nil {
			return err
		}
		return movRepo.Create(ctx, mov)
	})
	if err != nil {
		return nil, err
	}

	uc.publish(ctx, ports.Event{
		Type:       ports.EventLotWrittenOff,
		OccurredAt: now,
		Payload:    map[string]any{"lot_id": mov.LotID, "product_id": mov.ProductID, "quantity": mov.AbsQuantity(), "reason": in.Reason},
	})
	out := ToMovementResponse(mov)
	return &out, nil
}

// GetLot obtiene un lote por ID.
func (uc *LotUseCase) GetLot(ctx context.Context, id string) (*dto.LotResponse, error) {
	lot, err := uc.lotRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	out := ToLotResponse(lot, uc.now())
	return &out, nil
}

// ListLots lotes de un producto en orden FEFO. Por defecto solo los vendibles
// (activos con existencia); all=true incluye inactivos y agotados.
func (uc *LotUseCase) ListLots(ctx context.Context, productID string, all bool) ([]dto.LotResponse, error) {
	if _, err := uc.productRepo.GetByID(ctx, productID); err != nil {
		return nil, err
	}
	var (
		lots []entity.Lot
		err  error
	)
	if all {
		lots, err = uc.lotRepo.ListByProduct(ctx, productID, false)
	} else {
		lots, err = uc.lotRepo.ListActiveByProduct(ctx, productID)
	}
	if err != nil {
		return nil, err
	}
	now := uc.now()
	out := make([]dto.LotResponse, 0, len(lots))
	for i := range lots {
		out = append(out, ToLotResponse(&lots[i], now))
	}
	return out, nil
}

// ListMovements consulta el kardex con filtros; más recientes primero.
func (uc *LotUseCase) ListMovements(ctx context.Context, q dto.MovementQuery) ([]dto.MovementResponse, error) {
	kind := entity.MovementKind(q.Kind)
	if kind != "" && !kind.Valid() {
		return nil, domain.Invalid("kind", "debe ser ENTRADA, VENTA o MERMA")
	}
	if q.From != nil && q.To != nil && q.To.Before(*q.From) {
		return nil, domain.Invalid("to", "debe ser posterior a from")
	}
	limit := q.Limit
	if limit <= 0 {
		limit = defaultMovementLimit
	}
	movs, err := uc.movRepo.List(ctx, entity.MovementFilter{
		Kind:      kind,
		ProductID: q.ProductID,
		LotID:     q.LotID,
		SaleID:    q.SaleID,
		From:      q.From,
		To:        q.To,
	}, limit)
	if err != nil {
		return nil, err
	}
	out := make([]dto.MovementResponse, 0, len(movs))
	for i := range movs {
		out = append(out, ToMovementResponse(&movs[i]))
	}
	return out, nil
}

// publish emite el evento; un fallo del broker solo se registra.
func (uc *LotUseCase) publish(ctx context.Context, e ports.Event) {
	if err := uc.events.Publish(ctx, e); err != nil {
		uc.log.Warn().Err(err).Str("event", e.Type).Msg("no se pudo publicar el evento de lote")
	}
}

// CalendarDate reduce t a su fecha en UTC a medianoche, que es lo que guarda la
// columna DATE de PostgreSQL.
func CalendarDate(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func validateLotFields(code string, exp time.Time, qty int, cost, price decimal.Decimal) error {
	switch {
	case code == "":
		return domain.Invalid("code", "requerido")
	case exp.IsZero():
		return domain.Invalid("expiration", "requerida")
	case qty < 0:
		return domain.Invalid("quantity", "no puede ser negativa")
	case cost.IsNegative():
		return domain.Invalid("unit_cost", "no puede ser negativo")
	case price.IsNegative():
		return domain.Invalid("unit_price", "no puede ser negativo")
	}
	return nil
}

// ToLotResponse mapea un lote a DTO con sus días restantes y estado de vencimiento.
func ToLotResponse(l *entity.Lot, now time.Time) dto.LotResponse {
	exp := l.Expiration
	return dto.LotResponse{
		ID:               l.ID,
		ProductID:        l.ProductID,
		Code:             l.Code,
		Expiration:       l.Expiration,
		DaysToExpire:     expiration.DaysUntil(l.Expiration, now),
		ExpirationStatus: string(expiration.Classify(&exp, now)),
		Quantity:         l.Quantity,
		UnitCost:         l.UnitCost,
		UnitPrice:        l.UnitPrice,
		Active:           l.Active,
		CreatedAt:        l.CreatedAt,
		UpdatedAt:        l.UpdatedAt,
	}
}

// ToMovementResponse mapea un movimiento del kardex a DTO.
func ToMovementResponse(m *entity.Movement) dto.MovementResponse {
	return dto.MovementResponse{
		ID:        m.ID,
		SaleID:    m.SaleID,
		LotID:     m.LotID,
		ProductID: m.ProductID,
		Kind:      string(m.Kind),
		Quantity:  m.Quantity,
		UnitPrice: m.UnitPrice,
		UnitCost:  m.UnitCost,
		Total:     m.Total,
		Notes:     m.Notes,
		CreatedBy: m.CreatedBy,
		CreatedAt: m.CreatedAt,
	}
}
