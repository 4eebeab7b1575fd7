package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"github.com/tm-acme-shop/acme-shop-order-orchestrator/internal/apperrors"
	"github.com/tm-acme-shop/acme-shop-order-orchestrator/internal/config"
	"github.com/tm-acme-shop/acme-shop-order-orchestrator/internal/metrics"
	"github.com/tm-acme-shop/acme-shop-order-orchestrator/internal/models"
)

// PaymentEventType identifies a payment event on the payments topic.
type PaymentEventType string

const (
	PaymentEventSucceeded PaymentEventType = "payment.succeeded"
)

// PaymentSucceededEvent is the payment processor's confirmation that a
// charge for an order went through. Delivery is at-least-once.
type PaymentSucceededEvent struct {
	Type             PaymentEventType `json:"type"`
	OrderID          string           `json:"order_id"`
	PaymentReference string           `json:"payment_reference"`
	Status           string           `json:"status"`
	ReceiptURL       string           `json:"receipt_url"`
}

// PaymentReconciler applies a payment confirmation to an order.
type PaymentReconciler interface {
	MarkOrderPaid(ctx context.Context, orderID, paymentReference, receiptURL string) (*models.Order, error)
}

// KafkaConsumer consumes payment events from Kafka and reconciles orders.
// Offsets are committed only after a message is handled, so unprocessed
// failures are redelivered.
type KafkaConsumer struct {
	reader     *kafka.Reader
	reconciler PaymentReconciler
	logger     zerolog.Logger
	stopCh     chan struct{}
}

// NewKafkaConsumer creates a new Kafka-based payment event consumer.
func NewKafkaConsumer(cfg config.KafkaConfig, reconciler PaymentReconciler, logger zerolog.Logger) *KafkaConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Brokers,
		Topic:    cfg.PaymentsTopic,
		GroupID:  cfg.ConsumerGroup,
		MinBytes: 1,
		MaxBytes: 10e6,
		MaxWait:  time.Second,
	})

	return &KafkaConsumer{
		reader:     reader,
		reconciler: reconciler,
		logger:     logger.With().Str("component", "payment-consumer").Logger(),
		stopCh:     make(chan struct{}),
	}
}

// Start begins consuming events. It blocks until the context is cancelled
// or Stop is called.
func (c *KafkaConsumer) Start(ctx context.Context) error {
	c.logger.Info().Str("topic", c.reader.Config().Topic).Msg("Starting payment event consumer")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.stopCh:
			c.logger.Info().Msg("Payment event consumer stopped")
			return nil
		default:
			msg, err := c.reader.FetchMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				c.logger.Error().Err(err).Msg("Failed to fetch message")
				continue
			}

			if c.handleMessage(ctx, msg) {
				if err := c.reader.CommitMessages(ctx, msg); err != nil {
					c.logger.Error().Err(err).Msg("Failed to commit offset")
				}
			}
		}
	}
}

// Stop stops the consumer.
func (c *KafkaConsumer) Stop() {
	close(c.stopCh)
	c.reader.Close()
}

// handleMessage processes one message and reports whether its offset may be
// committed. Processing failures leave the offset uncommitted so the bus
// redelivers; a malformed payload can never succeed and is committed after
// being surfaced.
func (c *KafkaConsumer) handleMessage(ctx context.Context, msg kafka.Message) bool {
	c.logger.Debug().
		Str("topic", msg.Topic).
		Int("partition", msg.Partition).
		Int64("offset", msg.Offset).
		Msg("Received message")

	var event PaymentSucceededEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		c.logger.Error().Err(err).Int64("offset", msg.Offset).Msg("Failed to unmarshal payment event")
		metrics.PaymentEvents.WithLabelValues(metrics.OutcomeFailed).Inc()
		return true
	}

	if event.Type != PaymentEventSucceeded {
		c.logger.Debug().Str("type", string(event.Type)).Msg("Ignoring event type")
		return true
	}

	return c.handlePaymentSucceeded(ctx, &event)
}

func (c *KafkaConsumer) handlePaymentSucceeded(ctx context.Context, event *PaymentSucceededEvent) bool {
	c.logger.Info().
		Str("order_id", event.OrderID).
		Str("payment_reference", event.PaymentReference).
		Msg("Handling payment succeeded event")

	_, err := c.reconciler.MarkOrderPaid(ctx, event.OrderID, event.PaymentReference, event.ReceiptURL)
	if err == nil {
		return true
	}

	if apperrors.IsNotFound(err) {
		// The confirmation references an order this service has never seen.
		// Surfaced and left uncommitted so the bus redelivers; the duplicate
		// check makes redelivery safe once the order appears.
		c.logger.Error().Err(err).Str("order_id", event.OrderID).Msg("Payment confirmation for unknown order")
		metrics.PaymentEvents.WithLabelValues(metrics.OutcomeOrphaned).Inc()
		return false
	}

	c.logger.Error().Err(err).Str("order_id", event.OrderID).Msg("Failed to reconcile paid order")
	metrics.PaymentEvents.WithLabelValues(metrics.OutcomeFailed).Inc()
	return false
}
