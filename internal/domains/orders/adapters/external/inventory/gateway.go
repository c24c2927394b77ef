package inventory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	inventoryclient "github.com/Apurer/go-order-saga/internal/clients/http/inventory"
	"github.com/Apurer/go-order-saga/internal/domains/orders/ports"
)

// ReleaseMode selects how compensating releases reach the stock authority.
type ReleaseMode string

const (
	ReleaseModeHTTP ReleaseMode = "http"
	// ReleaseModeNoop is for authorities without a release endpoint. Every skipped release leaks stock.
	ReleaseModeNoop ReleaseMode = "noop"
)

// ParseReleaseMode accepts "http" or "noop"; empty means http.
func ParseReleaseMode(raw string) (ReleaseMode, error) {
	switch ReleaseMode(raw) {
	case "", ReleaseModeHTTP:
		return ReleaseModeHTTP, nil
	case ReleaseModeNoop:
		return ReleaseModeNoop, nil
	default:
		return "", fmt.Errorf("unknown inventory release mode %q", raw)
	}
}

type stockClient interface {
	Reserve(ctx context.Context, productID int64, quantity int32) (*inventoryclient.StockResponse, error)
	Release(ctx context.Context, productID int64, quantity int32) (*inventoryclient.StockResponse, error)
}

var _ ports.InventoryGateway = (*Gateway)(nil)

// Gateway translates saga calls into inventory API requests.
type Gateway struct {
	client      stockClient
	logger      *slog.Logger
	releaseMode ReleaseMode
}

type Option func(*Gateway)

func WithLogger(logger *slog.Logger) Option {
	return func(g *Gateway) {
		if logger != nil {
			g.logger = logger
		}
	}
}

func WithReleaseMode(mode ReleaseMode) Option {
	return func(g *Gateway) {
		if mode != "" {
			g.releaseMode = mode
		}
	}
}

func NewGateway(client stockClient, opts ...Option) *Gateway {
	g := &Gateway{
		client:      client,
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		releaseMode: ReleaseModeHTTP,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// ReserveStock returns true only when the authority answered 2xx. Rejections and transport failures
// are both reported as false; the distinction is only logged.
func (g *Gateway) ReserveStock(ctx context.Context, productID int64, quantity int32) bool {
	_, err := g.client.Reserve(ctx, productID, quantity)
	if err == nil {
		return true
	}
	level := slog.LevelWarn
	if errors.Is(err, inventoryclient.ErrRejected) || errors.Is(err, inventoryclient.ErrProductNotFound) {
		level = slog.LevelInfo
	}
	g.logger.LogAttrs(ctx, level, "stock reservation not confirmed",
		slog.Int64("product_id", productID),
		slog.Int("quantity", int(quantity)),
		slog.String("error", err.Error()),
	)
	return false
}

func (g *Gateway) ReleaseStock(ctx context.Context, productID int64, quantity int32) error {
	if g.releaseMode == ReleaseModeNoop {
		g.logger.LogAttrs(ctx, slog.LevelWarn, "inventory release skipped, reserved stock not returned",
			slog.Int64("product_id", productID),
			slog.Int("quantity", int(quantity)),
			slog.String("release_mode", string(g.releaseMode)),
		)
		return nil
	}
	if _, err := g.client.Release(ctx, productID, quantity); err != nil {
		return fmt.Errorf("release product %d: %w", productID, err)
	}
	return nil
}
