package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"github.com/tm-acme-shop/acme-shop-order-orchestrator/internal/apperrors"
	"github.com/tm-acme-shop/acme-shop-order-orchestrator/internal/models"
)

type fakeReconciler struct {
	err   error
	calls []PaymentSucceededEvent
}

func (f *fakeReconciler) MarkOrderPaid(ctx context.Context, orderID, paymentReference, receiptURL string) (*models.Order, error) {
	f.calls = append(f.calls, PaymentSucceededEvent{
		OrderID:          orderID,
		PaymentReference: paymentReference,
		ReceiptURL:       receiptURL,
	})
	if f.err != nil {
		return nil, f.err
	}
	return &models.Order{ID: orderID, Status: models.OrderStatusPaid, Paid: true}, nil
}

func newTestConsumer(reconciler PaymentReconciler) *KafkaConsumer {
	return &KafkaConsumer{
		reconciler: reconciler,
		logger:     zerolog.Nop(),
		stopCh:     make(chan struct{}),
	}
}

func messageFor(t *testing.T, event PaymentSucceededEvent) kafka.Message {
	t.Helper()
	value, err := json.Marshal(event)
	if err != nil {
		t.Fatal(err)
	}
	return kafka.Message{Topic: "payments", Value: value}
}

func TestHandleMessage_PaymentSucceeded(t *testing.T) {
	reconciler := &fakeReconciler{}
	c := newTestConsumer(reconciler)

	msg := messageFor(t, PaymentSucceededEvent{
		Type:             PaymentEventSucceeded,
		OrderID:          "ord_1",
		PaymentReference: "ch_9",
		Status:           "succeeded",
		ReceiptURL:       "https://r/1",
	})

	if !c.handleMessage(context.Background(), msg) {
		t.Fatal("expected commit after successful reconciliation")
	}

	if len(reconciler.calls) != 1 {
		t.Fatalf("reconciler calls = %d, want 1", len(reconciler.calls))
	}
	call := reconciler.calls[0]
	if call.OrderID != "ord_1" || call.PaymentReference != "ch_9" || call.ReceiptURL != "https://r/1" {
		t.Errorf("unexpected call: %+v", call)
	}
}

func TestHandleMessage_IgnoresOtherEventTypes(t *testing.T) {
	reconciler := &fakeReconciler{}
	c := newTestConsumer(reconciler)

	msg := messageFor(t, PaymentSucceededEvent{Type: "payment.failed", OrderID: "ord_1"})

	if !c.handleMessage(context.Background(), msg) {
		t.Fatal("unhandled event types should still be committed")
	}
	if len(reconciler.calls) != 0 {
		t.Errorf("reconciler calls = %d, want 0", len(reconciler.calls))
	}
}

func TestHandleMessage_MalformedPayload(t *testing.T) {
	reconciler := &fakeReconciler{}
	c := newTestConsumer(reconciler)

	msg := kafka.Message{Topic: "payments", Value: []byte("{broken")}

	// A payload that can never parse is surfaced and committed, not wedged.
	if !c.handleMessage(context.Background(), msg) {
		t.Fatal("malformed payloads should be committed after being surfaced")
	}
	if len(reconciler.calls) != 0 {
		t.Errorf("reconciler calls = %d, want 0", len(reconciler.calls))
	}
}

func TestHandleMessage_UnknownOrderLeavesOffsetUncommitted(t *testing.T) {
	reconciler := &fakeReconciler{err: apperrors.NewNotFoundError("order", "ord_ghost")}
	c := newTestConsumer(reconciler)

	msg := messageFor(t, PaymentSucceededEvent{Type: PaymentEventSucceeded, OrderID: "ord_ghost"})

	if c.handleMessage(context.Background(), msg) {
		t.Fatal("unknown-order failures must not be committed")
	}
}

func TestHandleMessage_ReconciliationFailureLeavesOffsetUncommitted(t *testing.T) {
	reconciler := &fakeReconciler{err: errors.New("db unavailable")}
	c := newTestConsumer(reconciler)

	msg := messageFor(t, PaymentSucceededEvent{Type: PaymentEventSucceeded, OrderID: "ord_1"})

	if c.handleMessage(context.Background(), msg) {
		t.Fatal("processing failures must not be committed, redelivery is the recovery mechanism")
	}
}
