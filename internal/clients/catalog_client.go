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

// CatalogClient resolves product ids to catalog records. Any id absent from
// the response is treated by callers as unresolved.
type CatalogClient interface {
	ValidateProducts(ctx context.Context, productIDs []string) ([]models.Product, error)
}

// HTTPCatalogClient implements CatalogClient over HTTP.
type HTTPCatalogClient struct {
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewHTTPCatalogClient creates a new HTTP-based catalog client.
func NewHTTPCatalogClient(cfg config.ServiceConfig, logger zerolog.Logger) *HTTPCatalogClient {
	return &HTTPCatalogClient{
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger.With().Str("component", "catalog-client").Logger(),
	}
}

var _ CatalogClient = (*HTTPCatalogClient)(nil)

// ValidateProducts resolves the given product ids in a single batched call.
// Transport failures and timeouts surface as UpstreamError, never as an
// empty product list.
func (c *HTTPCatalogClient) ValidateProducts(ctx context.Context, productIDs []string) ([]models.Product, error) {
	c.logger.Debug().Int("product_count", len(productIDs)).Msg("Validating products")

	body, err := json.Marshal(struct {
		IDs []string `json:"ids"`
	}{IDs: productIDs})
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/api/v1/products/validate", c.baseURL)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Error().Err(err).Msg("Catalog request failed")
		metrics.UpstreamFailures.WithLabelValues("catalog").Inc()
		return nil, apperrors.NewUpstreamError("catalog", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Error().Int("status_code", resp.StatusCode).Msg("Catalog request returned error")
		metrics.UpstreamFailures.WithLabelValues("catalog").Inc()
		return nil, apperrors.NewUpstreamError("catalog",
			fmt.Errorf("catalog service returned status %d", resp.StatusCode))
	}

	var products []models.Product
	if err := json.NewDecoder(resp.Body).Decode(&products); err != nil {
		return nil, apperrors.NewUpstreamError("catalog", err)
	}

	c.logger.Debug().Int("resolved_count", len(products)).Msg("Products validated")
	return products, nil
}
