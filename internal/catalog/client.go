// Package catalog is the HTTP client for the remote product catalog. The
// catalog is an external collaborator: calls are best-effort, retried, and
// fronted by a circuit breaker. Listing degrades to an empty result rather
// than failing the caller.
package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/mtkebuch/skincareWeb/internal/domain"
	apperrors "github.com/mtkebuch/skincareWeb/pkg/errors"
	"github.com/mtkebuch/skincareWeb/pkg/httpclient"
)

// Client talks to the remote catalog service.
type Client struct {
	baseURL string
	http    *httpclient.CircuitBreakerClient
	logger  *slog.Logger
}

// New creates a catalog client for the given base URL.
func New(baseURL string, cfg httpclient.Config, logger *slog.Logger) *Client {
	inner := httpclient.New(cfg)
	cb := httpclient.NewCircuitBreakerClient(inner, httpclient.DefaultCircuitBreakerConfig("catalog"), logger)
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    cb,
		logger:  logger,
	}
}

// List fetches all products. Failures degrade to an empty slice: the
// storefront renders without a catalog rather than erroring.
func (c *Client) List(ctx context.Context) []domain.Product {
	resp, err := c.http.Get(ctx, c.baseURL+"/products")
	if err != nil {
		c.logger.WarnContext(ctx, "catalog list failed, serving empty",
			slog.String("error", err.Error()))
		return []domain.Product{}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.WarnContext(ctx, "catalog list returned non-200, serving empty",
			slog.Int("status", resp.StatusCode))
		return []domain.Product{}
	}

	var products []domain.Product
	if err := json.NewDecoder(resp.Body).Decode(&products); err != nil {
		c.logger.WarnContext(ctx, "catalog list body undecodable, serving empty",
			slog.String("error", err.Error()))
		return []domain.Product{}
	}

	for i := range products {
		products[i].Normalize()
	}
	return products
}

// GetByID fetches a single product.
func (c *Client) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	resp, err := c.http.Get(ctx, c.baseURL+"/products/"+id)
	if err != nil {
		return nil, apperrors.Wrap(err, "catalog get")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, httpclient.ParseResponseError(resp, "catalog")
	}

	var p domain.Product
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return nil, apperrors.Wrap(err, "decode product")
	}
	p.Normalize()
	return &p, nil
}

// Create adds a product to the catalog.
func (c *Client) Create(ctx context.Context, p *domain.Product) (*domain.Product, error) {
	return c.send(ctx, http.MethodPost, c.baseURL+"/products", p, http.StatusCreated)
}

// Update replaces a product in the catalog.
func (c *Client) Update(ctx context.Context, id string, p *domain.Product) (*domain.Product, error) {
	return c.send(ctx, http.MethodPut, c.baseURL+"/products/"+id, p, http.StatusOK)
}

// Delete removes a product from the catalog.
func (c *Client) Delete(ctx context.Context, id string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/products/"+id, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return apperrors.Wrap(err, "catalog delete")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return httpclient.ParseResponseError(resp, "catalog")
	}
	return nil
}

func (c *Client) send(ctx context.Context, method, url string, p *domain.Product, wantStatus int) (*domain.Product, error) {
	body, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshal product: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return nil, apperrors.Wrap(err, "catalog "+strings.ToLower(method))
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		return nil, httpclient.ParseResponseError(resp, "catalog")
	}

	var out domain.Product
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, apperrors.Wrap(err, "decode product")
	}
	out.Normalize()
	return &out, nil
}
