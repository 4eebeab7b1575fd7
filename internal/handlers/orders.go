package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/tm-acme-shop/acme-shop-order-orchestrator/internal/apperrors"
	"github.com/tm-acme-shop/acme-shop-order-orchestrator/internal/models"
)

// CreateOrder handles POST /api/v1/orders
func (h *Handlers) CreateOrder(c *gin.Context) {
	var req models.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error().Err(err).Msg("Failed to bind request")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "kind": apperrors.KindValidation})
		return
	}

	result, err := h.orderService.CreateOrder(c.Request.Context(), &req)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

// GetOrder handles GET /api/v1/orders/:id
func (h *Handlers) GetOrder(c *gin.Context) {
	order, err := h.orderService.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

// ListOrders handles GET /api/v1/orders?page=&limit=&status=
func (h *Handlers) ListOrders(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	var status *models.OrderStatus
	if raw := c.Query("status"); raw != "" {
		s := models.OrderStatus(raw)
		status = &s
	}

	pageResult, err := h.orderService.ListOrders(c.Request.Context(), page, limit, status)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, pageResult)
}

// ChangeOrderStatus handles PATCH /api/v1/orders/:id/status
func (h *Handlers) ChangeOrderStatus(c *gin.Context) {
	var req models.ChangeOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "kind": apperrors.KindValidation})
		return
	}

	order, err := h.orderService.ChangeStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

// handleError maps taxonomy kinds to HTTP responses. Every failure carries
// a machine-readable kind and a human-readable message.
func handleError(c *gin.Context, err error) {
	switch apperrors.KindOf(err) {
	case apperrors.KindValidation:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "kind": apperrors.KindValidation})
	case apperrors.KindNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error(), "kind": apperrors.KindNotFound})
	case apperrors.KindConflict:
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "kind": apperrors.KindConflict})
	case apperrors.KindUpstream:
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error(), "kind": apperrors.KindUpstream})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
