// Package bms implements the HTTP client against the external fulfillment
// platform. It owns authentication, pagination, and the deduplication the
// platform's padded last pages make necessary.
package bms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	domain "github.com/opsdash/backend/internal/domain/bms"
	"github.com/opsdash/backend/internal/infrastructure/config"
)

// maxResponseSize limits the response body size to prevent memory exhaustion
const maxResponseSize = 10 * 1024 * 1024 // 10MB max response

// Client is the HTTP implementation of the platform gateway
type Client struct {
	baseURL    string
	username   string
	password   string
	pageSize   int
	tokenTTL   time.Duration
	httpClient *http.Client
	logger     *zap.Logger

	// Cached bearer token. The platform invalidates tokens server-side
	// after an hour, so we refresh slightly inside the configured TTL.
	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

// NewClient creates a new platform client from configuration
func NewClient(cfg config.BMSConfig, logger *zap.Logger) *Client {
	return &Client{
		baseURL:  cfg.BaseURL,
		username: cfg.Username,
		password: cfg.Password,
		pageSize: cfg.PageSize,
		tokenTTL: cfg.TokenTTL,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger.Named("bms"),
	}
}

// ensureToken returns a valid bearer token, logging in when the cached one
// is missing or expired
func (c *Client) ensureToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && time.Now().Before(c.tokenExpiry) {
		return c.token, nil
	}

	body, err := json.Marshal(loginRequest{Username: c.username, Password: c.password})
	if err != nil {
		return "", fmt.Errorf("bms: failed to marshal login request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/token", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("bms: failed to create login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("bms: login request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return "", fmt.Errorf("bms: failed to read login response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return "", domain.ErrAuthenticationFailed
	case resp.StatusCode >= 400:
		return "", &domain.UpstreamError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	var login loginResponse
	if err := json.Unmarshal(respBody, &login); err != nil {
		return "", fmt.Errorf("bms: failed to parse login response: %w", err)
	}
	if login.Token == "" {
		return "", domain.ErrAuthenticationFailed
	}

	c.token = login.Token
	c.tokenExpiry = time.Now().Add(c.tokenTTL)
	c.logger.Debug("authenticated against platform", zap.Time("token_expiry", c.tokenExpiry))

	return c.token, nil
}

// invalidateToken drops the cached token so the next call re-authenticates
func (c *Client) invalidateToken() {
	c.mu.Lock()
	c.token = ""
	c.mu.Unlock()
}

// call performs an authenticated request and decodes the response into out
func (c *Client) call(ctx context.Context, method, path string, query url.Values, payload, out any) error {
	token, err := c.ensureToken(ctx)
	if err != nil {
		return err
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("bms: failed to marshal request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return fmt.Errorf("bms: failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("bms: request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("bms: failed to read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		c.invalidateToken()
		return domain.ErrAuthenticationFailed
	case resp.StatusCode >= 400:
		return &domain.UpstreamError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("bms: failed to parse response: %w", err)
		}
	}
	return nil
}

func (c *Client) pageQuery(page int) url.Values {
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("limit", strconv.Itoa(c.pageSize))
	return query
}

// pageCount derives the total number of pages from the first page's meta.
// The platform pads short last pages up to the limit, so the page count is
// the only honest signal of where the list really ends.
func (c *Client) pageCount(total int) int {
	if total <= 0 {
		return 1
	}
	return (total + c.pageSize - 1) / c.pageSize
}

// ListPurchaseOrders returns all purchase orders on the platform,
// deduplicated by external id
func (c *Client) ListPurchaseOrders(ctx context.Context) ([]domain.PurchaseOrder, error) {
	var first orderListResponse
	if err := c.call(ctx, http.MethodGet, "/supplier/purchase-orders", c.pageQuery(1), nil, &first); err != nil {
		return nil, err
	}

	all := first.Data
	for page := 2; page <= c.pageCount(first.Meta.Total); page++ {
		var next orderListResponse
		if err := c.call(ctx, http.MethodGet, "/supplier/purchase-orders", c.pageQuery(page), nil, &next); err != nil {
			return nil, err
		}
		all = append(all, next.Data...)
	}

	seen := make(map[string]struct{}, len(all))
	orders := make([]domain.PurchaseOrder, 0, len(all))
	for _, order := range all {
		if _, dup := seen[order.ID]; dup {
			continue
		}
		seen[order.ID] = struct{}{}
		orders = append(orders, order)
	}

	c.logger.Debug("listed purchase orders",
		zap.Int("fetched", len(all)),
		zap.Int("unique", len(orders)))

	return orders, nil
}

// ListReceptions returns all goods-receipt events on the platform,
// deduplicated by external id
func (c *Client) ListReceptions(ctx context.Context) ([]domain.Reception, error) {
	var first receptionListResponse
	if err := c.call(ctx, http.MethodGet, "/supplier/receptions", c.pageQuery(1), nil, &first); err != nil {
		return nil, err
	}

	all := first.Data
	for page := 2; page <= c.pageCount(first.Meta.Total); page++ {
		var next receptionListResponse
		if err := c.call(ctx, http.MethodGet, "/supplier/receptions", c.pageQuery(page), nil, &next); err != nil {
			return nil, err
		}
		all = append(all, next.Data...)
	}

	seen := make(map[string]struct{}, len(all))
	receptions := make([]domain.Reception, 0, len(all))
	for _, reception := range all {
		if _, dup := seen[reception.ID]; dup {
			continue
		}
		seen[reception.ID] = struct{}{}
		receptions = append(receptions, reception)
	}

	return receptions, nil
}

// ListSuppliers returns all suppliers on the platform, deduplicated by
// external id
func (c *Client) ListSuppliers(ctx context.Context) ([]domain.Supplier, error) {
	var first supplierListResponse
	if err := c.call(ctx, http.MethodGet, "/supplier/suppliers", c.pageQuery(1), nil, &first); err != nil {
		return nil, err
	}

	all := first.Data
	for page := 2; page <= c.pageCount(first.Meta.Total); page++ {
		var next supplierListResponse
		if err := c.call(ctx, http.MethodGet, "/supplier/suppliers", c.pageQuery(page), nil, &next); err != nil {
			return nil, err
		}
		all = append(all, next.Data...)
	}

	seen := make(map[string]struct{}, len(all))
	suppliers := make([]domain.Supplier, 0, len(all))
	for _, supplier := range all {
		if _, dup := seen[supplier.ID]; dup {
			continue
		}
		seen[supplier.ID] = struct{}{}
		suppliers = append(suppliers, supplier)
	}

	return suppliers, nil
}

// CreatePurchaseOrder pushes a purchase order to the platform and returns
// the identity it assigned
func (c *Client) CreatePurchaseOrder(ctx context.Context, req domain.CreateOrderRequest) (*domain.CreateOrderResponse, error) {
	var resp domain.CreateOrderResponse
	if err := c.call(ctx, http.MethodPost, "/supplier/purchase-orders", nil, req, &resp); err != nil {
		return nil, err
	}

	c.logger.Info("created purchase order on platform",
		zap.String("external_id", resp.ID),
		zap.String("reference", req.Reference))

	return &resp, nil
}

// Ensure Client implements the gateway contract
var _ domain.Gateway = (*Client)(nil)
