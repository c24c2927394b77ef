package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Apurer/go-order-saga/internal/domains/inventory/adapters/http/mapper"
	"github.com/Apurer/go-order-saga/internal/domains/inventory/application"
	"github.com/Apurer/go-order-saga/internal/domains/inventory/domain"
	"github.com/Apurer/go-order-saga/internal/domains/inventory/ports"
	apierrors "github.com/Apurer/go-order-saga/internal/shared/errors"
)

// InventoryAPI exposes the stock ledger over HTTP.
type InventoryAPI struct {
	service   ports.Service
	responder *apierrors.ChainedResponder
}

func NewInventoryAPI(service ports.Service) *InventoryAPI {
	return &InventoryAPI{
		service:   service,
		responder: apierrors.NewChainedResponder("", mapInventoryError),
	}
}

// RegisterRoutes mounts the inventory endpoints under /api/inventory.
func (api *InventoryAPI) RegisterRoutes(r gin.IRouter) {
	group := r.Group("/api/inventory")
	group.GET("", api.ListProducts)
	group.POST("", api.ProvisionProduct)
	group.GET("/health", api.Health)
	group.GET("/:id", api.GetProduct)
	group.POST("/reserve", api.ReserveStock)
	group.POST("/release", api.ReleaseStock)
}

// Get /api/inventory
func (api *InventoryAPI) ListProducts(c *gin.Context) {
	products, err := api.service.ListProducts(c.Request.Context())
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapper.FromDomainList(products))
}

// Get /api/inventory/:id
func (api *InventoryAPI) GetProduct(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		api.responder.BadRequest(c, "product id must be a positive integer")
		return
	}
	product, err := api.service.GetProduct(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			api.responder.NotFound(c, "product", id)
			return
		}
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapper.FromDomain(product))
}

// Post /api/inventory
func (api *InventoryAPI) ProvisionProduct(c *gin.Context) {
	var payload mapper.ProvisionRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		api.responder.BadRequest(c, err.Error())
		return
	}
	product, err := api.service.Provision(c.Request.Context(), mapper.ToProvisionInput(payload))
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, mapper.FromDomain(product))
}

// Post /api/inventory/reserve
// 200 when reserved, 404 for an unknown product, 400 for insufficient stock or a bad quantity.
func (api *InventoryAPI) ReserveStock(c *gin.Context) {
	var payload mapper.StockRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		api.responder.BadRequest(c, err.Error())
		return
	}
	result, err := api.service.Reserve(c.Request.Context(), payload.ProductID, payload.Quantity)
	api.respondResult(c, result, err)
}

// Post /api/inventory/release
func (api *InventoryAPI) ReleaseStock(c *gin.Context) {
	var payload mapper.StockRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		api.responder.BadRequest(c, err.Error())
		return
	}
	result, err := api.service.Release(c.Request.Context(), payload.ProductID, payload.Quantity)
	api.respondResult(c, result, err)
}

// Get /api/inventory/health
func (api *InventoryAPI) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "inventory"})
}

func (api *InventoryAPI) respondResult(c *gin.Context, result domain.Result, err error) {
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	switch result.Outcome {
	case domain.OutcomeReserved, domain.OutcomeReleased:
		c.JSON(http.StatusOK, mapper.FromResult(result))
	case domain.OutcomeNotFound:
		api.responder.Respond(c, apierrors.ErrNotFound.
			WithDetail(result.Message()).
			WithExtension("productId", result.ProductID))
	case domain.OutcomeInsufficientStock:
		api.responder.Respond(c, apierrors.ErrInsufficientStock.
			WithDetail(result.Message()).
			WithExtension("productId", result.ProductID).
			WithExtension("availableQuantity", result.Available).
			WithExtension("requestedQuantity", result.Requested))
	default:
		api.responder.InternalError(c, "unexpected ledger outcome")
	}
}

func mapInventoryError(err error) (apierrors.ProblemDetail, bool) {
	switch {
	case errors.Is(err, application.ErrInvalidInput):
		return apierrors.ErrValidation.WithDetail(err.Error()), true
	case errors.Is(err, ports.ErrNotFound):
		return apierrors.ErrNotFound.WithDetail(err.Error()), true
	default:
		return apierrors.ProblemDetail{}, false
	}
}
