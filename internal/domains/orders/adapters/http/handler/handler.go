package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Apurer/go-order-saga/internal/domains/orders/adapters/http/mapper"
	"github.com/Apurer/go-order-saga/internal/domains/orders/application"
	types "github.com/Apurer/go-order-saga/internal/domains/orders/application/types"
	"github.com/Apurer/go-order-saga/internal/domains/orders/ports"
	apierrors "github.com/Apurer/go-order-saga/internal/shared/errors"
)

const (
	// HeaderUserID carries the caller identity. Authentication happens upstream.
	HeaderUserID         = "X-User-ID"
	HeaderIdempotencyKey = "Idempotency-Key"
	HeaderReplayed       = "Idempotent-Replayed"
)

// OrdersAPI wires HTTP transport with the orders service and workflows.
type OrdersAPI struct {
	service   ports.Service
	workflows ports.WorkflowOrchestrator
	responder *apierrors.ChainedResponder
}

// NewOrdersAPI creates the API. When workflows is nil, creation calls the service directly.
func NewOrdersAPI(service ports.Service, workflows ports.WorkflowOrchestrator) *OrdersAPI {
	return &OrdersAPI{
		service:   service,
		workflows: workflows,
		responder: apierrors.NewChainedResponder("", mapOrderError),
	}
}

// RegisterRoutes mounts the order endpoints under /api/orders.
func (api *OrdersAPI) RegisterRoutes(r gin.IRouter) {
	group := r.Group("/api/orders")
	group.GET("/health", api.Health)
	group.POST("", api.CreateOrder)
	group.GET("", api.GetUserOrders)
	group.GET("/:id", api.GetOrderByID)
}

// Post /api/orders
func (api *OrdersAPI) CreateOrder(c *gin.Context) {
	userID, ok := api.requireUser(c)
	if !ok {
		return
	}
	var payload mapper.CreateOrderRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		api.responder.BadRequest(c, err.Error())
		return
	}
	key := strings.TrimSpace(c.GetHeader(HeaderIdempotencyKey))
	result, err := api.createOrder(c.Request.Context(), mapper.ToCreateOrderInput(userID, key, payload))
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	if !result.Success {
		api.responder.Respond(c, rejectionProblem(result))
		return
	}
	status := http.StatusCreated
	if result.Replayed {
		c.Header(HeaderReplayed, "true")
		status = http.StatusOK
	}
	c.JSON(status, mapper.CreateOrderResponse{Success: true, Order: mapper.FromDomainOrder(result.Order)})
}

func (api *OrdersAPI) createOrder(ctx context.Context, input types.CreateOrderInput) (*types.CreateOrderResult, error) {
	if api.workflows != nil {
		return api.workflows.CreateOrder(ctx, input)
	}
	return api.service.CreateOrder(ctx, input)
}

// Get /api/orders/:id
// Orders owned by another user are reported as not found.
func (api *OrdersAPI) GetOrderByID(c *gin.Context) {
	userID, ok := api.requireUser(c)
	if !ok {
		return
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		api.responder.BadRequest(c, "order id must be a positive integer")
		return
	}
	order, err := api.service.GetOrderByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			api.responder.NotFound(c, "order", id)
			return
		}
		api.responder.RespondError(c, err)
		return
	}
	if order.UserID != userID {
		api.responder.NotFound(c, "order", id)
		return
	}
	c.JSON(http.StatusOK, mapper.FromDomainOrder(order))
}

// Get /api/orders
func (api *OrdersAPI) GetUserOrders(c *gin.Context) {
	userID, ok := api.requireUser(c)
	if !ok {
		return
	}
	orders, err := api.service.GetUserOrders(c.Request.Context(), userID)
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapper.FromDomainOrders(orders))
}

// Get /api/orders/health
func (api *OrdersAPI) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "orders"})
}

func (api *OrdersAPI) requireUser(c *gin.Context) (string, bool) {
	userID := strings.TrimSpace(c.GetHeader(HeaderUserID))
	if userID == "" {
		api.responder.Respond(c, apierrors.ErrUnauthorized.WithDetail("missing "+HeaderUserID+" header"))
		return "", false
	}
	return userID, true
}

func rejectionProblem(result *types.CreateOrderResult) apierrors.ProblemDetail {
	var problem apierrors.ProblemDetail
	switch result.Failure {
	case types.FailureEmptyOrder, types.FailureInvalidRequest:
		problem = apierrors.ErrValidation
	case types.FailureStockUnavailable:
		problem = apierrors.ErrOrderRejected
	case types.FailureCancelled:
		problem = apierrors.ErrServiceUnavailable
	default:
		problem = apierrors.ErrInternal
	}
	return problem.
		WithDetail(result.ErrorMessage).
		WithExtension("success", false).
		WithExtension("reason", string(result.Failure))
}

func mapOrderError(err error) (apierrors.ProblemDetail, bool) {
	switch {
	case errors.Is(err, ports.ErrIdempotencyConflict):
		return apierrors.ErrConflict.WithDetail(err.Error()), true
	case errors.Is(err, application.ErrInvalidInput):
		return apierrors.ErrValidation.WithDetail(err.Error()), true
	case errors.Is(err, ports.ErrNotFound):
		return apierrors.ErrNotFound.WithDetail(err.Error()), true
	default:
		return apierrors.ProblemDetail{}, false
	}
}
