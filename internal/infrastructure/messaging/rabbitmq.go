// Package messaging publica los eventos de dominio en RabbitMQ (exchange topic).
// La routing key es el tipo de evento: "sale.completed", "stock.low"...
package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/jhoicas/Farmacia-api/internal/application/ports"
	"github.com/jhoicas/Farmacia-api/pkg/config"
	"github.com/jhoicas/Farmacia-api/pkg/logger"
)

var _ ports.EventPublisher = (*Publisher)(nil)

// Envelope cuerpo JSON de cada mensaje.
type Envelope struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	Source     string    `json:"source"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload"`
}

// NewEnvelope arma el sobre de un evento con un ID nuevo.
func NewEnvelope(source string, e ports.Event) Envelope {
	occurred := e.OccurredAt
	if occurred.IsZero() {
		occurred = time.Now()
	}
	return Envelope{ID: uuid.New().String(), Type: e.Type, Source: source, OccurredAt: occurred.UTC(), Payload: e.Payload}
}

// Publisher publica eventos en un exchange topic durable.
type Publisher struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
	source   string
	log      *logger.Logger
}

// NewPublisher conecta, abre un canal y declara el exchange.
func NewPublisher(cfg config.RabbitMQConfig, source string, log *logger.Logger) (*Publisher, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("conectar a RabbitMQ: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("abrir canal: %w", err)
	}
	if err := ch.ExchangeDeclare(
		cfg.Exchange, // name
		"topic",      // type
		true,         // durable
		false,        // auto-deleted
		false,        // internal
		false,        // no-wait
		nil,          // arguments
	); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declarar exchange %s: %w", cfg.Exchange, err)
	}
	log.Info().Str("exchange", cfg.Exchange).Msg("conectado a RabbitMQ")
	return &Publisher{conn: conn, channel: ch, exchange: cfg.Exchange, source: source, log: log}, nil
}

// Publish serializa el evento y lo publica como mensaje persistente.
func (p *Publisher) Publish(ctx context.Context, e ports.Event) error {
	env := NewEnvelope(p.source, e)
	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("serializar evento %s: %w", e.Type, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	err = p.channel.PublishWithContext(ctx,
		p.exchange, // exchange
		e.Type,     // routing key
		false,      // mandatory
		false,      // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    env.ID,
			Timestamp:    env.OccurredAt,
			Type:         e.Type,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publicar evento %s: %w", e.Type, err)
	}
	p.log.Debug().Str("event_type", e.Type).Str("event_id", env.ID).Msg("evento publicado")
	return nil
}

// Close cierra canal y conexión.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.channel != nil {
		if err := p.channel.Close(); err != nil {
			p.log.Warn().Err(err).Msg("no se pudo cerrar el canal")
		}
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

// LogPublisher registra los eventos en el log; se usa cuando no hay broker configurado.
type LogPublisher struct {
	log *logger.Logger
}

// NewLogPublisher construye el publicador de log.
func NewLogPublisher(log *logger.Logger) *LogPublisher {
	return &LogPublisher{log: log}
}

// Publish escribe el evento a nivel debug.
func (p *LogPublisher) Publish(_ context.Context, e ports.Event) error {
	p.log.Debug().Str("event_type", e.Type).Interface("payload", e.Payload).Msg("evento")
	return nil
}
