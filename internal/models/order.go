package models

import (
	"time"
)

// OrderStatus represents the lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusPaid      OrderStatus = "PAID"
	OrderStatusDelivered OrderStatus = "DELIVERED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// ValidStatus reports whether s is a known order status.
func ValidStatus(s OrderStatus) bool {
	switch s {
	case OrderStatusPending, OrderStatusPaid, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// Order is a customer purchase record with line items, totals, and a status.
// Items are fixed at creation; only status and payment fields mutate afterward.
type Order struct {
	ID               string      `json:"id"`
	Status           OrderStatus `json:"status"`
	TotalAmount      float64     `json:"total_amount"`
	TotalItems       int         `json:"total_items"`
	Paid             bool        `json:"paid"`
	PaidAt           *time.Time  `json:"paid_at,omitempty"`
	PaymentReference string      `json:"payment_reference,omitempty"`
	Receipt          *Receipt    `json:"receipt,omitempty"`
	Items            []OrderItem `json:"items,omitempty"`
	CreatedAt        time.Time   `json:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at"`
}

// OrderItem is a single line of an order. UnitPrice is the catalog price
// snapshotted at order creation and never re-fetched.
type OrderItem struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name,omitempty"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}

// Receipt references the payment processor's receipt for a paid order.
type Receipt struct {
	ID         string    `json:"id"`
	OrderID    string    `json:"order_id"`
	ReceiptURL string    `json:"receipt_url"`
	CreatedAt  time.Time `json:"created_at"`
}

// Product is a catalog record resolved for a product id.
type Product struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// PaymentSession is the payment processor's handle for a pending charge
// attempt tied to one order.
type PaymentSession struct {
	ID        string `json:"id"`
	OrderID   string `json:"order_id"`
	URL       string `json:"url,omitempty"`
	ExpiresAt int64  `json:"expires_at,omitempty"`
}
