package handlers

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/tm-acme-shop/acme-shop-order-orchestrator/internal/config"
	"github.com/tm-acme-shop/acme-shop-order-orchestrator/internal/models"
)

// OrderService is the orchestrator surface the HTTP layer depends on.
type OrderService interface {
	CreateOrder(ctx context.Context, req *models.CreateOrderRequest) (*models.CreatedOrder, error)
	GetOrder(ctx context.Context, id string) (*models.Order, error)
	ListOrders(ctx context.Context, page, limit int, status *models.OrderStatus) (*models.OrderPage, error)
	ChangeStatus(ctx context.Context, id string, newStatus models.OrderStatus) (*models.Order, error)
}

// Handlers holds all HTTP handlers for the order orchestrator.
type Handlers struct {
	orderService OrderService
	config       *config.Config
	logger       zerolog.Logger
}

// NewHandlers creates a new handlers instance.
func NewHandlers(orderService OrderService, cfg *config.Config, logger zerolog.Logger) *Handlers {
	return &Handlers{
		orderService: orderService,
		config:       cfg,
		logger:       logger.With().Str("component", "handlers").Logger(),
	}
}
