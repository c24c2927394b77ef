package inventory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

var (
	// ErrProductNotFound is returned when the inventory API does not know the product.
	ErrProductNotFound = errors.New("inventory product not found")
	// ErrRejected is returned for any other 4xx answer, including insufficient stock.
	ErrRejected = errors.New("inventory rejected request")
)

// StatusError carries a non-2xx answer from the inventory API.
type StatusError struct {
	StatusCode int
	Detail     string
}

func (e *StatusError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("inventory API status %d: %s", e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("inventory API status %d", e.StatusCode)
}

func (e *StatusError) Unwrap() error {
	switch {
	case e.StatusCode == http.StatusNotFound:
		return ErrProductNotFound
	case e.StatusCode >= 400 && e.StatusCode < 500:
		return ErrRejected
	default:
		return nil
	}
}

// Client wraps the raw APIClient with typed helpers.
type Client struct {
	api *APIClient
}

// NewInventoryClient instantiates the inventory client with sane defaults. Every request carries an
// X-Request-ID and the W3C trace context of the caller.
func NewInventoryClient(baseURL string, httpClient *http.Client) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("inventory base URL is required")
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 5 * time.Second}
	}
	api, err := NewAPIClient(baseURL,
		WithHTTPClient(httpClient),
		WithRequestEditorFn(injectTraceContext),
		WithRequestEditorFn(setRequestID),
	)
	if err != nil {
		return nil, fmt.Errorf("build inventory client: %w", err)
	}
	return &Client{api: api}, nil
}

// Reserve asks the authority to decrement stock. A nil error means the reservation was confirmed.
func (c *Client) Reserve(ctx context.Context, productID int64, quantity int32) (*StockResponse, error) {
	if c == nil || c.api == nil {
		return nil, errors.New("inventory client not configured")
	}
	resp, err := c.api.ReserveStock(ctx, StockRequest{ProductID: productID, Quantity: quantity})
	if err != nil {
		return nil, fmt.Errorf("call inventory API: %w", err)
	}
	return decodeStockResponse(resp)
}

// Release returns stock to the authority.
func (c *Client) Release(ctx context.Context, productID int64, quantity int32) (*StockResponse, error) {
	if c == nil || c.api == nil {
		return nil, errors.New("inventory client not configured")
	}
	resp, err := c.api.ReleaseStock(ctx, StockRequest{ProductID: productID, Quantity: quantity})
	if err != nil {
		return nil, fmt.Errorf("call inventory API: %w", err)
	}
	return decodeStockResponse(resp)
}

// GetProduct loads one catalogue entry.
func (c *Client) GetProduct(ctx context.Context, id int64) (*Product, error) {
	if c == nil || c.api == nil {
		return nil, errors.New("inventory client not configured")
	}
	resp, err := c.api.GetProduct(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("call inventory API: %w", err)
	}
	var product Product
	if err := decode(resp, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// ListProducts loads the whole catalogue.
func (c *Client) ListProducts(ctx context.Context) ([]Product, error) {
	if c == nil || c.api == nil {
		return nil, errors.New("inventory client not configured")
	}
	resp, err := c.api.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("call inventory API: %w", err)
	}
	var products []Product
	if err := decode(resp, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func decodeStockResponse(resp *http.Response) (*StockResponse, error) {
	var body StockResponse
	if err := decode(resp, &body); err != nil {
		return nil, err
	}
	return &body, nil
}

// decode closes the body, maps non-2xx statuses to StatusError and rejects malformed 2xx payloads.
func decode(resp *http.Response, target any) error {
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read inventory response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{StatusCode: resp.StatusCode, Detail: problemDetail(raw, resp.Status)}
	}
	if len(strings.TrimSpace(string(raw))) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("decode inventory response: %w", err)
	}
	return nil
}

func problemDetail(raw []byte, fallback string) string {
	var problem Problem
	if err := json.Unmarshal(raw, &problem); err != nil {
		return fallback
	}
	if detail := strings.TrimSpace(problem.Detail); detail != "" {
		return detail
	}
	if title := strings.TrimSpace(problem.Title); title != "" {
		return title
	}
	return fallback
}

func injectTraceContext(ctx context.Context, req *http.Request) error {
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))
	return nil
}

func setRequestID(_ context.Context, req *http.Request) error {
	if req.Header.Get("X-Request-ID") == "" {
		req.Header.Set("X-Request-ID", uuid.NewString())
	}
	return nil
}
