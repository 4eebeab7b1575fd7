package service

import (
	"fmt"

	"github.com/tm-acme-shop/acme-shop-order-orchestrator/internal/apperrors"
	"github.com/tm-acme-shop/acme-shop-order-orchestrator/internal/models"
)

// ValidateCreateOrderRequest validates an order creation request.
func ValidateCreateOrderRequest(req *models.CreateOrderRequest) error {
	if len(req.Items) == 0 {
		return apperrors.NewValidationError("items", "at least one item is required")
	}

	for i, item := range req.Items {
		if item.ProductID == "" {
			return apperrors.NewValidationError("items",
				fmt.Sprintf("product ID is required for item %d", i))
		}
		if item.Quantity < 1 {
			return apperrors.NewValidationError("items",
				fmt.Sprintf("quantity must be at least 1 for item %d", i))
		}
	}

	return nil
}

// ValidateChangeStatusRequest validates a manual status-change request.
func ValidateChangeStatusRequest(req *models.ChangeOrderStatusRequest) error {
	if req.Status == "" {
		return apperrors.NewValidationError("status", "status is required")
	}
	if !models.ValidStatus(req.Status) {
		return apperrors.NewValidationError("status",
			fmt.Sprintf("unknown status %q", req.Status))
	}
	return nil
}

// NormalizePagination applies defaults and bounds to page/limit values.
func NormalizePagination(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit
}
