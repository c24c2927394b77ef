package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	appinventory "github.com/Apurer/go-order-saga/internal/app/inventory"
	inventoryclient "github.com/Apurer/go-order-saga/internal/clients/http/inventory"
	inventoryhandler "github.com/Apurer/go-order-saga/internal/domains/inventory/adapters/http/handler"
	inventorymemory "github.com/Apurer/go-order-saga/internal/domains/inventory/adapters/memory"
	inventoryapp "github.com/Apurer/go-order-saga/internal/domains/inventory/application"
	inventoryports "github.com/Apurer/go-order-saga/internal/domains/inventory/ports"
	inventorygw "github.com/Apurer/go-order-saga/internal/domains/orders/adapters/external/inventory"
	ordershandler "github.com/Apurer/go-order-saga/internal/domains/orders/adapters/http/handler"
	"github.com/Apurer/go-order-saga/internal/domains/orders/adapters/http/mapper"
	ordersmemory "github.com/Apurer/go-order-saga/internal/domains/orders/adapters/memory"
	ordersapp "github.com/Apurer/go-order-saga/internal/domains/orders/application"
	apierrors "github.com/Apurer/go-order-saga/internal/shared/errors"
)

type orderFlow struct {
	orders    http.Handler
	inventory *inventoryapp.Service
}

// newOrderFlow runs the orders API against a real inventory API over HTTP.
func newOrderFlow(t *testing.T, catalog []inventoryports.ProvisionInput) orderFlow {
	t.Helper()
	gin.SetMode(gin.TestMode)

	stock := inventoryapp.NewService(inventorymemory.NewLedger(), nil)
	require.NoError(t, inventoryapp.Seed(context.Background(), stock, catalog))
	authority := httptest.NewServer(appinventory.NewRouter(inventoryhandler.NewInventoryAPI(stock)))
	t.Cleanup(authority.Close)

	client, err := inventoryclient.NewInventoryClient(authority.URL, authority.Client())
	require.NoError(t, err)
	service := ordersapp.NewService(ordersmemory.NewRepository(), inventorygw.NewGateway(client))

	return orderFlow{
		orders:    NewRouter(ordershandler.NewOrdersAPI(service, nil)),
		inventory: stock,
	}
}

func (f orderFlow) createOrder(t *testing.T, items ...mapper.LineItemRequest) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(mapper.CreateOrderRequest{Items: items})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/orders", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(ordershandler.HeaderUserID, "alice")
	rec := httptest.NewRecorder()
	f.orders.ServeHTTP(rec, req)
	return rec
}

func (f orderFlow) available(t *testing.T, productID int64) int32 {
	t.Helper()
	entry, err := f.inventory.GetProduct(context.Background(), productID)
	require.NoError(t, err)
	return entry.Available
}

func flowCatalog() []inventoryports.ProvisionInput {
	return []inventoryports.ProvisionInput{
		{ProductID: 1, Name: "P1", Price: decimal.NewFromInt(10), Quantity: 5},
		{ProductID: 2, Name: "P2", Price: decimal.NewFromInt(5), Quantity: 10},
	}
}

func TestOrderFlow_ReservesStockOnAuthority(t *testing.T) {
	flow := newOrderFlow(t, flowCatalog())

	rec := flow.createOrder(t, mapper.LineItemRequest{
		ProductID: 1, ProductName: "P1", Quantity: 2, UnitPrice: decimal.NewFromInt(10),
	})

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var resp mapper.CreateOrderResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.True(t, resp.Success)
	require.True(t, resp.Order.TotalAmount.Equal(decimal.NewFromInt(20)), resp.Order.TotalAmount.String())
	require.Equal(t, int32(3), flow.available(t, 1))
}

func TestOrderFlow_RejectionReleasesEarlierReservation(t *testing.T) {
	flow := newOrderFlow(t, flowCatalog())

	rec := flow.createOrder(t,
		mapper.LineItemRequest{ProductID: 1, ProductName: "P1", Quantity: 2, UnitPrice: decimal.NewFromInt(10)},
		mapper.LineItemRequest{ProductID: 2, ProductName: "P2", Quantity: 100, UnitPrice: decimal.NewFromInt(5)},
	)

	require.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())
	require.Equal(t, apierrors.ContentTypeProblemJSON, rec.Header().Get("Content-Type"))
	var problem apierrors.ProblemDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	require.Equal(t, apierrors.TypeOrderRejected, problem.Type)
	require.Contains(t, problem.Detail, "P2")
	require.Equal(t, "stock_unavailable", problem.Extensions["reason"])

	require.Equal(t, int32(5), flow.available(t, 1))
	require.Equal(t, int32(10), flow.available(t, 2))
}

func TestOrderFlow_UnknownProductRejected(t *testing.T) {
	flow := newOrderFlow(t, flowCatalog())

	rec := flow.createOrder(t,
		mapper.LineItemRequest{ProductID: 1, ProductName: "P1", Quantity: 1, UnitPrice: decimal.NewFromInt(10)},
		mapper.LineItemRequest{ProductID: 999, ProductName: "Ghost", Quantity: 1, UnitPrice: decimal.NewFromInt(1)},
	)

	require.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())
	require.Equal(t, int32(5), flow.available(t, 1))
}
