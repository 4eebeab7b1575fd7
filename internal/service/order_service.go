package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tm-acme-shop/acme-shop-order-orchestrator/internal/apperrors"
	"github.com/tm-acme-shop/acme-shop-order-orchestrator/internal/clients"
	"github.com/tm-acme-shop/acme-shop-order-orchestrator/internal/config"
	"github.com/tm-acme-shop/acme-shop-order-orchestrator/internal/metrics"
	"github.com/tm-acme-shop/acme-shop-order-orchestrator/internal/models"
	"github.com/tm-acme-shop/acme-shop-order-orchestrator/internal/repository"
)

// OrderEventPublisher publishes order lifecycle events.
type OrderEventPublisher interface {
	PublishOrderCreated(ctx context.Context, order *models.Order) error
	PublishOrderStatusChanged(ctx context.Context, order *models.Order, previousStatus models.OrderStatus) error
	PublishOrderPaid(ctx context.Context, order *models.Order) error
}

// OrderService drives the order lifecycle: creation, reads, status
// transitions, and payment reconciliation.
type OrderService struct {
	orderRepo      repository.OrderRepository
	orderCache     repository.OrderCache
	catalogClient  clients.CatalogClient
	paymentClient  clients.PaymentClient
	eventPublisher OrderEventPublisher
	config         *config.Config
	logger         zerolog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(
	orderRepo repository.OrderRepository,
	orderCache repository.OrderCache,
	catalogClient clients.CatalogClient,
	paymentClient clients.PaymentClient,
	eventPublisher OrderEventPublisher,
	cfg *config.Config,
	logger zerolog.Logger,
) *OrderService {
	return &OrderService{
		orderRepo:      orderRepo,
		orderCache:     orderCache,
		catalogClient:  catalogClient,
		paymentClient:  paymentClient,
		eventPublisher: eventPublisher,
		config:         cfg,
		logger:         logger.With().Str("component", "order-service").Logger(),
	}
}

// CreateOrder validates the requested items against the catalog, persists the
// order atomically, and requests a payment session for it. A catalog failure
// aborts before anything is persisted. A payment failure after persistence
// leaves the PENDING order without a session; the error still propagates.
func (s *OrderService) CreateOrder(ctx context.Context, req *models.CreateOrderRequest) (*models.CreatedOrder, error) {
	s.logger.Info().Int("item_count", len(req.Items)).Msg("Creating order")

	if err := ValidateCreateOrderRequest(req); err != nil {
		return nil, err
	}

	productIDs := distinctProductIDs(req.Items)

	products, err := s.catalogClient.ValidateProducts(ctx, productIDs)
	if err != nil {
		s.logger.Error().Err(err).Msg("Catalog validation failed")
		return nil, err
	}

	byID := productIndex(products)
	var unresolved []string
	for _, id := range productIDs {
		if _, ok := byID[id]; !ok {
			unresolved = append(unresolved, id)
		}
	}
	if len(unresolved) > 0 {
		return nil, apperrors.NewUnresolvedProductsError(unresolved)
	}

	items := make([]models.OrderItem, len(req.Items))
	for i, reqItem := range req.Items {
		product := byID[reqItem.ProductID]
		items[i] = models.OrderItem{
			ProductID: reqItem.ProductID,
			Name:      product.Name,
			Quantity:  reqItem.Quantity,
			UnitPrice: product.Price,
		}
	}

	totalAmount, totalItems := ComputeTotals(items)

	now := time.Now().UTC()
	order := &models.Order{
		ID:          "ord_" + uuid.NewString(),
		Status:      models.OrderStatusPending,
		TotalAmount: totalAmount,
		TotalItems:  totalItems,
		Items:       items,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.orderRepo.Create(ctx, order); err != nil {
		s.logger.Error().Err(err).Msg("Failed to persist order")
		return nil, err
	}

	metrics.OrdersCreated.Inc()

	sessionReq := &models.CreatePaymentSessionRequest{
		OrderID:  order.ID,
		Currency: s.config.Currency,
		Items:    make([]models.PaymentSessionItem, len(items)),
	}
	for i, item := range items {
		sessionReq.Items[i] = models.PaymentSessionItem{
			Name:     item.Name,
			Price:    item.UnitPrice,
			Quantity: item.Quantity,
		}
	}

	session, err := s.paymentClient.CreatePaymentSession(ctx, sessionReq)
	if err != nil {
		// The order is persisted and stays PENDING without a session; there
		// is no compensating action, redelivery of the create request is up
		// to the caller.
		s.logger.Error().Err(err).Str("order_id", order.ID).Msg("Payment session request failed after order was persisted")
		return nil, err
	}

	s.cacheOrder(ctx, order)
	s.publishOrderCreated(ctx, order)

	s.logger.Info().
		Str("order_id", order.ID).
		Float64("total_amount", order.TotalAmount).
		Int("total_items", order.TotalItems).
		Msg("Order created")

	return &models.CreatedOrder{Order: order, PaymentSession: session}, nil
}

// GetOrder fetches an order with its items and re-resolves item names via
// the catalog. Prices are the stored snapshot, never the current catalog
// price.
func (s *OrderService) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	if s.config.Features.EnableOrderCaching {
		if order, err := s.orderCache.Get(ctx, id); err == nil && order != nil {
			return order, nil
		}
	}

	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, apperrors.NewNotFoundError("order", id)
	}

	if len(order.Items) > 0 {
		productIDs := make([]string, 0, len(order.Items))
		for _, item := range order.Items {
			productIDs = append(productIDs, item.ProductID)
		}

		products, err := s.catalogClient.ValidateProducts(ctx, productIDs)
		if err != nil {
			return nil, err
		}

		byID := productIndex(products)
		for i := range order.Items {
			if product, ok := byID[order.Items[i].ProductID]; ok {
				order.Items[i].Name = product.Name
			}
		}
	}

	s.cacheOrder(ctx, order)

	return order, nil
}

// ListOrders returns one page of orders with pagination metadata, optionally
// filtered by status. Items and names are not joined in list views.
func (s *OrderService) ListOrders(ctx context.Context, page, limit int, status *models.OrderStatus) (*models.OrderPage, error) {
	page, limit = NormalizePagination(page, limit)

	if status != nil && !models.ValidStatus(*status) {
		return nil, apperrors.NewValidationError("status", "unknown status "+string(*status))
	}

	orders, total, err := s.orderRepo.List(ctx, repository.ListFilter{
		Status: status,
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to list orders")
		return nil, err
	}

	return &models.OrderPage{
		Data: orders,
		Meta: models.PageMeta{
			Total:    total,
			Page:     page,
			LastPage: lastPage(total, limit),
		},
	}, nil
}

// ChangeStatus transitions an order to a new status. Setting the current
// status again is an idempotent no-op. PAID is reserved for the payment
// reconciliation path and rejected here.
func (s *OrderService) ChangeStatus(ctx context.Context, id string, newStatus models.OrderStatus) (*models.Order, error) {
	if err := ValidateChangeStatusRequest(&models.ChangeOrderStatusRequest{Status: newStatus}); err != nil {
		return nil, err
	}

	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, apperrors.NewNotFoundError("order", id)
	}

	if order.Status == newStatus {
		return order, nil
	}

	if newStatus == models.OrderStatusPaid {
		return nil, apperrors.NewValidationError("status",
			"PAID is set by payment reconciliation, not by status change")
	}

	updated, err := s.orderRepo.UpdateStatus(ctx, id, order.Status, newStatus)
	if err != nil {
		return nil, err
	}

	metrics.StatusChanges.WithLabelValues(string(newStatus)).Inc()
	s.invalidateCache(ctx, id)
	s.publishStatusChanged(ctx, updated, order.Status)

	return updated, nil
}

// MarkOrderPaid reconciles an order against a payment-succeeded confirmation.
// It is idempotent under redelivery: an already-paid order is returned
// unchanged. The store-level update is a compare-and-swap so concurrent
// deliveries apply exactly once.
func (s *OrderService) MarkOrderPaid(ctx context.Context, orderID, paymentReference, receiptURL string) (*models.Order, error) {
	s.logger.Info().
		Str("order_id", orderID).
		Str("payment_reference", paymentReference).
		Msg("Reconciling paid order")

	order, applied, err := s.orderRepo.MarkPaid(ctx, orderID, paymentReference, receiptURL, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	if !applied {
		s.logger.Info().Str("order_id", orderID).Msg("Order already paid, ignoring duplicate confirmation")
		metrics.PaymentEvents.WithLabelValues(metrics.OutcomeDuplicate).Inc()
		return order, nil
	}

	metrics.PaymentEvents.WithLabelValues(metrics.OutcomeApplied).Inc()
	s.invalidateCache(ctx, orderID)
	s.publishOrderPaid(ctx, order)

	return order, nil
}

func (s *OrderService) cacheOrder(ctx context.Context, order *models.Order) {
	if !s.config.Features.EnableOrderCaching {
		return
	}
	if err := s.orderCache.Set(ctx, order); err != nil {
		// Log but don't fail
		s.logger.Error().Err(err).Str("order_id", order.ID).Msg("Failed to cache order")
	}
}

func (s *OrderService) invalidateCache(ctx context.Context, id string) {
	if !s.config.Features.EnableOrderCaching {
		return
	}
	if err := s.orderCache.Delete(ctx, id); err != nil {
		s.logger.Error().Err(err).Str("order_id", id).Msg("Failed to invalidate cached order")
	}
}

func (s *OrderService) publishOrderCreated(ctx context.Context, order *models.Order) {
	if !s.config.Features.EnableOrderEvents {
		return
	}
	if err := s.eventPublisher.PublishOrderCreated(ctx, order); err != nil {
		// Log but don't fail
		s.logger.Error().Err(err).Str("order_id", order.ID).Msg("Failed to publish order created event")
	}
}

func (s *OrderService) publishStatusChanged(ctx context.Context, order *models.Order, previous models.OrderStatus) {
	if !s.config.Features.EnableOrderEvents {
		return
	}
	if err := s.eventPublisher.PublishOrderStatusChanged(ctx, order, previous); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID).Msg("Failed to publish status change event")
	}
}

func (s *OrderService) publishOrderPaid(ctx context.Context, order *models.Order) {
	if !s.config.Features.EnableOrderEvents {
		return
	}
	if err := s.eventPublisher.PublishOrderPaid(ctx, order); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID).Msg("Failed to publish order paid event")
	}
}

func distinctProductIDs(items []models.CreateOrderItem) []string {
	seen := make(map[string]struct{}, len(items))
	ids := make([]string, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item.ProductID]; ok {
			continue
		}
		seen[item.ProductID] = struct{}{}
		ids = append(ids, item.ProductID)
	}
	return ids
}

func productIndex(products []models.Product) map[string]models.Product {
	byID := make(map[string]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	return byID
}

func lastPage(total, limit int) int {
	if total == 0 {
		return 0
	}
	return (total + limit - 1) / limit
}
