package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"github.com/tm-acme-shop/acme-shop-order-orchestrator/internal/config"
	"github.com/tm-acme-shop/acme-shop-order-orchestrator/internal/models"
	"github.com/tm-acme-shop/acme-shop-order-orchestrator/internal/service"
)

// EventType identifies an order event on the orders topic.
type EventType string

const (
	EventTypeOrderCreated       EventType = "order.created"
	EventTypeOrderStatusChanged EventType = "order.status_changed"
	EventTypeOrderPaid          EventType = "order.paid"
)

// OrderEvent is the envelope for order lifecycle events.
type OrderEvent struct {
	ID        string          `json:"id"`
	Type      EventType       `json:"type"`
	OrderID   string          `json:"order_id"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
}

// KafkaPublisher publishes order events to Kafka.
type KafkaPublisher struct {
	writer *kafka.Writer
	logger zerolog.Logger
}

var _ service.OrderEventPublisher = (*KafkaPublisher)(nil)

// NewKafkaPublisher creates a new Kafka-based order event publisher.
func NewKafkaPublisher(cfg config.KafkaConfig, logger zerolog.Logger) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.OrdersTopic,
		Balancer:     &kafka.LeastBytes{},
		WriteTimeout: 10 * time.Second,
		RequiredAcks: kafka.RequireOne,
	}

	return &KafkaPublisher{
		writer: writer,
		logger: logger.With().Str("component", "order-publisher").Logger(),
	}
}

// PublishOrderCreated publishes an order created event.
func (p *KafkaPublisher) PublishOrderCreated(ctx context.Context, order *models.Order) error {
	data, err := json.Marshal(order)
	if err != nil {
		return err
	}
	return p.publish(ctx, EventTypeOrderCreated, order.ID, data)
}

// PublishOrderStatusChanged publishes an order status change event.
func (p *KafkaPublisher) PublishOrderStatusChanged(ctx context.Context, order *models.Order, previousStatus models.OrderStatus) error {
	payload := struct {
		Order          *models.Order      `json:"order"`
		PreviousStatus models.OrderStatus `json:"previous_status"`
		NewStatus      models.OrderStatus `json:"new_status"`
	}{
		Order:          order,
		PreviousStatus: previousStatus,
		NewStatus:      order.Status,
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return p.publish(ctx, EventTypeOrderStatusChanged, order.ID, data)
}

// PublishOrderPaid publishes an order paid event.
func (p *KafkaPublisher) PublishOrderPaid(ctx context.Context, order *models.Order) error {
	data, err := json.Marshal(order)
	if err != nil {
		return err
	}
	return p.publish(ctx, EventTypeOrderPaid, order.ID, data)
}

func (p *KafkaPublisher) publish(ctx context.Context, eventType EventType, orderID string, data json.RawMessage) error {
	event := OrderEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		OrderID:   orderID,
		Data:      data,
		Timestamp: time.Now().UTC(),
	}

	value, err := json.Marshal(event)
	if err != nil {
		return err
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(orderID),
		Value: value,
	})
	if err != nil {
		p.logger.Error().Err(err).Str("order_id", orderID).Str("type", string(eventType)).Msg("Failed to publish event")
		return err
	}

	p.logger.Debug().Str("order_id", orderID).Str("type", string(eventType)).Msg("Event published")
	return nil
}

// Close flushes and closes the underlying writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
