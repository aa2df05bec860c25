package analytics

import (
	"context"
	"time"

	appinv "github.com/jhoicas/Farmacia-api/internal/application/inventory"
	"github.com/jhoicas/Farmacia-api/internal/application/ports"
	"github.com/jhoicas/Farmacia-api/internal/domain/expiration"
	"github.com/jhoicas/Farmacia-api/pkg/logger"
)

// AlertSummary resultado de una pasada del escáner.
type AlertSummary struct {
	LowStock int
	Expiring int
}

// AlertScanner revisa periódicamente stock bajo y lotes próximos a vencer y publica
// un evento por cada hallazgo.
type AlertScanner struct {
	replenishment *appinv.ReplenishmentUseCase
	reports       *ReportsUseCase
	events        ports.EventPublisher
	log           *logger.Logger
	now           func() time.Time
}

// NewAlertScanner construye el escáner. log puede ser nil.
func NewAlertScanner(
	replenishment *appinv.ReplenishmentUseCase,
	reports *ReportsUseCase,
	events ports.EventPublisher,
	log *logger.Logger,
) *AlertScanner {
	if events == nil {
		events = ports.NoopPublisher{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &AlertScanner{replenishment: replenishment, reports: reports, events: events, log: log, now: time.Now}
}

// Scan hace una pasada: stock.low por producto en BAJO y lot.expiring por lote
// con menos de 30 días (incluye vencidos que siguen activos).
func (s *AlertScanner) Scan(ctx context.Context) (AlertSummary, error) {
	var sum AlertSummary
	now := s.now()

	low, err := s.replenishment.GenerateReplenishmentList(ctx)
	if err != nil {
		return sum, err
	}
	for _, it := range low {
		s.publish(ctx, ports.Event{Type: ports.EventStockLow, OccurredAt: now, Payload: it})
	}
	sum.LowStock = len(low)

	expiring, err := s.reports.ExpiringLots(ctx, expiration.CriticalDays)
	if err != nil {
		return sum, err
	}
	for _, it := range expiring {
		s.publish(ctx, ports.Event{Type: ports.EventLotExpiring, OccurredAt: now, Payload: it})
	}
	sum.Expiring = len(expiring)

	s.log.Info().Int("low_stock", sum.LowStock).Int("expiring", sum.Expiring).Msg("alertas revisadas")
	return sum, nil
}

// Run ejecuta Scan cada interval hasta que ctx se cancele.
func (s *AlertScanner) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Scan(ctx); err != nil {
				s.log.Error().Err(err).Msg("escaneo de alertas fallido")
			}
		}
	}
}

func (s *AlertScanner) publish(ctx context.Context, e ports.Event) {
	if err := s.events.Publish(ctx, e); err != nil {
		s.log.Warn().Err(err).Str("type", e.Type).Msg("no se pudo publicar alerta")
	}
}
