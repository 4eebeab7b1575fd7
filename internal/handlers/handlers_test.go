package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/tm-acme-shop/acme-shop-order-orchestrator/internal/apperrors"
	"github.com/tm-acme-shop/acme-shop-order-orchestrator/internal/config"
	"github.com/tm-acme-shop/acme-shop-order-orchestrator/internal/models"
)

// stubOrderService returns canned results per method.
type stubOrderService struct {
	createResult *models.CreatedOrder
	createErr    error
	getResult    *models.Order
	getErr       error
	listResult   *models.OrderPage
	listErr      error
	changeResult *models.Order
	changeErr    error

	lastPage   int
	lastLimit  int
	lastStatus *models.OrderStatus
}

func (s *stubOrderService) CreateOrder(ctx context.Context, req *models.CreateOrderRequest) (*models.CreatedOrder, error) {
	return s.createResult, s.createErr
}

func (s *stubOrderService) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	return s.getResult, s.getErr
}

func (s *stubOrderService) ListOrders(ctx context.Context, page, limit int, status *models.OrderStatus) (*models.OrderPage, error) {
	s.lastPage, s.lastLimit, s.lastStatus = page, limit, status
	return s.listResult, s.listErr
}

func (s *stubOrderService) ChangeStatus(ctx context.Context, id string, newStatus models.OrderStatus) (*models.Order, error) {
	return s.changeResult, s.changeErr
}

func newTestRouter(svc OrderService) *gin.Engine {
	gin.SetMode(gin.TestMode)

	h := NewHandlers(svc, &config.Config{}, zerolog.Nop())

	r := gin.New()
	r.GET("/health", h.Health)
	r.POST("/api/v1/orders", h.CreateOrder)
	r.GET("/api/v1/orders", h.ListOrders)
	r.GET("/api/v1/orders/:id", h.GetOrder)
	r.PATCH("/api/v1/orders/:id/status", h.ChangeOrderStatus)
	return r
}

func TestHealth(t *testing.T) {
	r := newTestRouter(&stubOrderService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	var resp map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if resp["status"] != "healthy" {
		t.Errorf("Expected status 'healthy', got %v", resp["status"])
	}
}

func TestCreateOrderHandler(t *testing.T) {
	svc := &stubOrderService{
		createResult: &models.CreatedOrder{
			Order:          &models.Order{ID: "ord_1", Status: models.OrderStatusPending, TotalAmount: 10, TotalItems: 2},
			PaymentSession: &models.PaymentSession{ID: "sess_1", OrderID: "ord_1"},
		},
	}
	r := newTestRouter(svc)

	body, _ := json.Marshal(models.CreateOrderRequest{
		Items: []models.CreateOrderItem{{ProductID: "p1", Quantity: 2}},
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", w.Code, w.Body.String())
	}

	var resp models.CreatedOrder
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if resp.Order.ID != "ord_1" || resp.PaymentSession.ID != "sess_1" {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestCreateOrderHandler_InvalidBody(t *testing.T) {
	r := newTestRouter(&stubOrderService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
}

func TestGetOrderHandler_NotFound(t *testing.T) {
	svc := &stubOrderService{getErr: apperrors.NewNotFoundError("order", "ord_missing")}
	r := newTestRouter(svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders/ord_missing", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("Expected status 404, got %d", w.Code)
	}

	var resp map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if resp["kind"] != string(apperrors.KindNotFound) {
		t.Errorf("Expected kind %q, got %v", apperrors.KindNotFound, resp["kind"])
	}
}

func TestListOrdersHandler_QueryParams(t *testing.T) {
	svc := &stubOrderService{
		listResult: &models.OrderPage{
			Data: []*models.Order{},
			Meta: models.PageMeta{Total: 0, Page: 2, LastPage: 0},
		},
	}
	r := newTestRouter(svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders?page=2&limit=5&status=PENDING", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if svc.lastPage != 2 || svc.lastLimit != 5 {
		t.Errorf("page/limit = %d/%d, want 2/5", svc.lastPage, svc.lastLimit)
	}
	if svc.lastStatus == nil || *svc.lastStatus != models.OrderStatusPending {
		t.Errorf("status filter = %v, want PENDING", svc.lastStatus)
	}
}

func TestListOrdersHandler_NoStatusFilter(t *testing.T) {
	svc := &stubOrderService{listResult: &models.OrderPage{}}
	r := newTestRouter(svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if svc.lastStatus != nil {
		t.Errorf("status filter = %v, want nil", svc.lastStatus)
	}
}

func TestChangeOrderStatusHandler(t *testing.T) {
	svc := &stubOrderService{
		changeResult: &models.Order{ID: "ord_1", Status: models.OrderStatusCancelled},
	}
	r := newTestRouter(svc)

	body, _ := json.Marshal(models.ChangeOrderStatusRequest{Status: models.OrderStatusCancelled})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/orders/ord_1/status", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
}

func TestHandleError_Mapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{"validation", apperrors.NewValidationError("items", "bad"), http.StatusBadRequest},
		{"not found", apperrors.NewNotFoundError("order", "x"), http.StatusNotFound},
		{"conflict", apperrors.NewConflictError("order", "x", "race"), http.StatusConflict},
		{"upstream", apperrors.NewUpstreamError("catalog", context.DeadlineExceeded), http.StatusBadGateway},
	}

	gin.SetMode(gin.TestMode)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			handleError(c, tt.err)

			if w.Code != tt.wantCode {
				t.Errorf("status = %d, want %d", w.Code, tt.wantCode)
			}
		})
	}
}
