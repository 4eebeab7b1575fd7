package repository

import (
	"testing"

	"github.com/tm-acme-shop/acme-shop-order-orchestrator/internal/models"
)

func TestListFilter_Offset(t *testing.T) {
	tests := []struct {
		page, limit, want int
	}{
		{1, 10, 0},
		{2, 10, 10},
		{3, 25, 50},
	}

	for _, tt := range tests {
		f := ListFilter{Page: tt.page, Limit: tt.limit}
		if got := f.Offset(); got != tt.want {
			t.Errorf("Offset(page=%d, limit=%d) = %d, want %d", tt.page, tt.limit, got, tt.want)
		}
	}
}

func TestValidStatus(t *testing.T) {
	for _, s := range []models.OrderStatus{
		models.OrderStatusPending,
		models.OrderStatusPaid,
		models.OrderStatusDelivered,
		models.OrderStatusCancelled,
	} {
		if !models.ValidStatus(s) {
			t.Errorf("ValidStatus(%s) = false, want true", s)
		}
	}

	if models.ValidStatus("SHIPPED") {
		t.Error("ValidStatus(SHIPPED) = true, want false")
	}
}

func TestPostgresOrderRepository_Create(t *testing.T) {
	t.Skip("Integration test - requires database")
}

func TestPostgresOrderRepository_MarkPaid(t *testing.T) {
	t.Skip("Integration test - requires database")
}

func TestPostgresOrderRepository_UpdateStatus(t *testing.T) {
	t.Skip("Integration test - requires database")
}

func TestPostgresOrderRepository_List(t *testing.T) {
	t.Skip("Integration test - requires database")
}
