package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/tm-acme-shop/acme-shop-order-orchestrator/internal/apperrors"
	"github.com/tm-acme-shop/acme-shop-order-orchestrator/internal/config"
	"github.com/tm-acme-shop/acme-shop-order-orchestrator/internal/metrics"
	"github.com/tm-acme-shop/acme-shop-order-orchestrator/internal/models"
)

// PaymentClient requests payment-session creation from the payment processor.
type PaymentClient interface {
	CreatePaymentSession(ctx context.Context, req *models.CreatePaymentSessionRequest) (*models.PaymentSession, error)
}

// HTTPPaymentClient implements PaymentClient over HTTP.
type HTTPPaymentClient struct {
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewHTTPPaymentClient creates a new HTTP-based payment client.
func NewHTTPPaymentClient(cfg config.ServiceConfig, logger zerolog.Logger) *HTTPPaymentClient {
	return &HTTPPaymentClient{
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger.With().Str("component", "payment-client").Logger(),
	}
}

var _ PaymentClient = (*HTTPPaymentClient)(nil)

// CreatePaymentSession requests a session for the given order's line items.
func (c *HTTPPaymentClient) CreatePaymentSession(ctx context.Context, req *models.CreatePaymentSessionRequest) (*models.PaymentSession, error) {
	c.logger.Debug().
		Str("order_id", req.OrderID).
		Int("item_count", len(req.Items)).
		Msg("Creating payment session")

	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/api/v1/payment-sessions", c.baseURL)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Error().Err(err).Str("order_id", req.OrderID).Msg("Payment session request failed")
		metrics.UpstreamFailures.WithLabelValues("payment").Inc()
		return nil, apperrors.NewUpstreamError("payment", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		c.logger.Error().
			Str("order_id", req.OrderID).
			Int("status_code", resp.StatusCode).
			Msg("Payment session request returned error")
		metrics.UpstreamFailures.WithLabelValues("payment").Inc()
		return nil, apperrors.NewUpstreamError("payment",
			fmt.Errorf("payment service returned status %d", resp.StatusCode))
	}

	var session models.PaymentSession
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return nil, apperrors.NewUpstreamError("payment", err)
	}

	c.logger.Info().
		Str("order_id", req.OrderID).
		Str("session_id", session.ID).
		Msg("Payment session created")

	return &session, nil
}
