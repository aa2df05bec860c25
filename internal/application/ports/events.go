package ports

import (
	"context"
	"sync"
	"time"
)

// Tipos de evento de dominio emitidos por los casos de uso.
const (
	EventLotReceived   = "lot.received"
	EventLotWrittenOff = "lot.written_off"
	EventSaleCompleted = "sale.completed"
	EventStockLow      = "stock.low"
	EventLotExpiring   = "lot.expiring"
)

// Event notificación publicada después de confirmar la transacción que la origina.
// Payload debe ser serializable a JSON.
type Event struct {
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload"`
}

// EventPublisher define el puerto de salida para eventos de dominio (RabbitMQ, log, noop).
// Un fallo al publicar nunca revierte la operación ya confirmada.
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
}

// NoopPublisher descarta los eventos. Se usa cuando no hay broker configurado.
type NoopPublisher struct{}

// Publish no hace nada.
func (NoopPublisher) Publish(context.Context, Event) error { return nil }

// RecordingPublisher guarda los eventos en memoria; útil en pruebas.
type RecordingPublisher struct {
	mu     sync.Mutex
	events []Event
}

// Publish agrega el evento a la lista.
func (p *RecordingPublisher) Publish(_ context.Context, event Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

// Events copia de los eventos publicados en orden.
func (p *RecordingPublisher) Events() []Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Event(nil), p.events...)
}

// Types devuelve los tipos publicados en orden.
func (p *RecordingPublisher) Types() []string {
	events := p.Events()
	out := make([]string, len(events))
	for i, e := range events {
		out[i] = e.Type
	}
	return out
}
