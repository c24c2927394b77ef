package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/go-order-saga/internal/domains/orders/adapters/http/mapper"
	"github.com/Apurer/go-order-saga/internal/domains/orders/adapters/memory"
	"github.com/Apurer/go-order-saga/internal/domains/orders/application"
	apierrors "github.com/Apurer/go-order-saga/internal/shared/errors"
)

type stockStub struct {
	mu    sync.Mutex
	stock map[int64]int32
}

func (s *stockStub) ReserveStock(_ context.Context, productID int64, quantity int32) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stock[productID] < quantity {
		return false
	}
	s.stock[productID] -= quantity
	return true
}

func (s *stockStub) ReleaseStock(_ context.Context, productID int64, quantity int32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stock[productID] += quantity
	return nil
}

func newRouter(stock map[int64]int32) *gin.Engine {
	gin.SetMode(gin.TestMode)
	svc := application.NewService(memory.NewRepository(), &stockStub{stock: stock},
		application.WithIdempotencyStore(memory.NewIdempotencyStore(0)))
	router := gin.New()
	NewOrdersAPI(svc, nil).RegisterRoutes(router)
	return router
}

func send(router http.Handler, method, path, user string, body any, headers map[string]string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		req.Header.Set(HeaderUserID, user)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func orderBody(items ...map[string]any) map[string]any {
	return map[string]any{"items": items}
}

func item(productID int64, name string, qty int, price any) map[string]any {
	return map[string]any{"productId": productID, "productName": name, "quantity": qty, "unitPrice": price}
}

func TestCreateOrder_RequiresUser(t *testing.T) {
	router := newRouter(map[int64]int32{1: 5})

	rec := send(router, http.MethodPost, "/api/orders", "", orderBody(item(1, "Laptop", 1, 10)), nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateOrder_Success(t *testing.T) {
	router := newRouter(map[int64]int32{1: 5, 2: 10})

	rec := send(router, http.MethodPost, "/api/orders", "alice",
		orderBody(item(1, "Laptop", 2, 999.99), item(2, "Mouse", 1, "25.50")), nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp mapper.CreateOrderResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.True(t, resp.Success)
	require.Equal(t, "confirmed", resp.Order.Status)
	require.Equal(t, "2025.48", resp.Order.TotalAmount.String())
	require.Len(t, resp.Order.Items, 2)
	require.Equal(t, "1999.98", resp.Order.Items[0].TotalPrice.String())
}

func TestCreateOrder_StockUnavailable(t *testing.T) {
	router := newRouter(map[int64]int32{1: 5, 2: 0})

	rec := send(router, http.MethodPost, "/api/orders", "alice",
		orderBody(item(1, "Laptop", 2, 10), item(2, "Mouse", 1, 1)), nil)
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Equal(t, apierrors.ContentTypeProblemJSON, rec.Header().Get("Content-Type"))

	var problem apierrors.ProblemDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	require.Equal(t, apierrors.TypeOrderRejected, problem.Type)
	require.Contains(t, problem.Detail, "Mouse")
	require.Equal(t, "stock_unavailable", problem.Extensions["reason"])
}

func TestCreateOrder_EmptyAndMalformed(t *testing.T) {
	router := newRouter(map[int64]int32{1: 5})

	rec := send(router, http.MethodPost, "/api/orders", "alice", orderBody(), nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/orders", bytes.NewBufferString("{"))
	req.Header.Set(HeaderUserID, "alice")
	raw := httptest.NewRecorder()
	router.ServeHTTP(raw, req)
	require.Equal(t, http.StatusBadRequest, raw.Code)
}

func TestCreateOrder_IdempotencyKey(t *testing.T) {
	router := newRouter(map[int64]int32{1: 5})
	headers := map[string]string{HeaderIdempotencyKey: "abc"}

	first := send(router, http.MethodPost, "/api/orders", "alice", orderBody(item(1, "Laptop", 2, 10)), headers)
	require.Equal(t, http.StatusCreated, first.Code)

	second := send(router, http.MethodPost, "/api/orders", "alice", orderBody(item(1, "Laptop", 2, 10)), headers)
	require.Equal(t, http.StatusOK, second.Code)
	require.Equal(t, "true", second.Header().Get(HeaderReplayed))

	conflict := send(router, http.MethodPost, "/api/orders", "alice", orderBody(item(1, "Laptop", 1, 10)), headers)
	require.Equal(t, http.StatusConflict, conflict.Code)
}

func TestGetOrders(t *testing.T) {
	router := newRouter(map[int64]int32{1: 5})

	created := send(router, http.MethodPost, "/api/orders", "alice", orderBody(item(1, "Laptop", 1, 10)), nil)
	require.Equal(t, http.StatusCreated, created.Code)
	var resp mapper.CreateOrderResponse
	require.NoError(t, json.Unmarshal(created.Body.Bytes(), &resp))
	path := "/api/orders/" + strconv.FormatInt(resp.Order.ID, 10)

	rec := send(router, http.MethodGet, path, "alice", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = send(router, http.MethodGet, path, "mallory", nil, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = send(router, http.MethodGet, "/api/orders/999", "alice", nil, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = send(router, http.MethodGet, "/api/orders/zero", "alice", nil, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = send(router, http.MethodGet, "/api/orders", "alice", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []mapper.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)

	rec = send(router, http.MethodGet, "/api/orders/health", "", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
}
