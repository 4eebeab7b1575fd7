package repository

import (
	"context"
	"time"

	"github.com/tm-acme-shop/acme-shop-order-orchestrator/internal/models"
)

// ListFilter narrows and pages a list query. Page is 1-based.
type ListFilter struct {
	Status *models.OrderStatus
	Page   int
	Limit  int
}

// Offset returns the number of records to skip for the requested page.
func (f ListFilter) Offset() int {
	return (f.Page - 1) * f.Limit
}

// OrderRepository is the persistence abstraction for orders and their items.
// The orchestrator owns no connection lifecycle, only this reference.
type OrderRepository interface {
	// Create persists an order and its items as a single atomic unit.
	Create(ctx context.Context, order *models.Order) error

	// GetByID returns the order with its items, or nil when absent.
	GetByID(ctx context.Context, id string) (*models.Order, error)

	// List returns one page of orders (without items) plus the total count
	// over the same filter.
	List(ctx context.Context, filter ListFilter) ([]*models.Order, int, error)

	// UpdateStatus transitions the order from one status to another with a
	// single conditional row update. A lost race surfaces as ConflictError.
	UpdateStatus(ctx context.Context, id string, from, to models.OrderStatus) (*models.Order, error)

	// MarkPaid atomically sets the payment fields and attaches a receipt,
	// conditioned on the order not already being paid. The bool result is
	// false when the order was already paid and nothing was written.
	MarkPaid(ctx context.Context, id, paymentReference, receiptURL string, paidAt time.Time) (*models.Order, bool, error)
}

// OrderCache defines caching operations for single orders.
type OrderCache interface {
	Get(ctx context.Context, id string) (*models.Order, error)
	Set(ctx context.Context, order *models.Order) error
	Delete(ctx context.Context, id string) error
}
