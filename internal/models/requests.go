package models

// CreateOrderRequest is the inbound payload for order creation.
type CreateOrderRequest struct {
	Items []CreateOrderItem `json:"items" binding:"required"`
}

// CreateOrderItem is one requested line: a product reference and a quantity.
// Prices are resolved from the catalog, never taken from the caller.
type CreateOrderItem struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// CreatedOrder is the result of order creation: the persisted order plus the
// payment session requested for it.
type CreatedOrder struct {
	Order          *Order          `json:"order"`
	PaymentSession *PaymentSession `json:"payment_session"`
}

// ChangeOrderStatusRequest is the inbound payload for a manual status change.
type ChangeOrderStatusRequest struct {
	Status OrderStatus `json:"status"`
}

// PageMeta describes the pagination of a list response.
type PageMeta struct {
	Total    int `json:"total"`
	Page     int `json:"page"`
	LastPage int `json:"last_page"`
}

// OrderPage is one page of orders plus its pagination metadata.
type OrderPage struct {
	Data []*Order `json:"data"`
	Meta PageMeta `json:"meta"`
}

// CreatePaymentSessionRequest is the outbound payload for the payment
// processor. Line items carry resolved names and snapshotted prices.
type CreatePaymentSessionRequest struct {
	OrderID  string               `json:"order_id"`
	Currency string               `json:"currency"`
	Items    []PaymentSessionItem `json:"items"`
}

// PaymentSessionItem is one priced line of a payment-session request.
type PaymentSessionItem struct {
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}
