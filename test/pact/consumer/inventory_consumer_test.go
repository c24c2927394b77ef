//go:build pact
// +build pact

package consumer_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	pactconsumer "github.com/pact-foundation/pact-go/v2/consumer"
	pactlog "github.com/pact-foundation/pact-go/v2/log"
	"github.com/pact-foundation/pact-go/v2/matchers"
	"github.com/stretchr/testify/require"

	inventoryclient "github.com/Apurer/go-order-saga/internal/clients/http/inventory"
	pacttest "github.com/Apurer/go-order-saga/test/pact"
)

func TestOrdersInventoryContract(t *testing.T) {
	t.Helper()
	pactlog.SetLogLevel("INFO")

	pact, err := pactconsumer.NewV2Pact(pactconsumer.MockHTTPProviderConfig{
		Consumer: pacttest.ConsumerName,
		Provider: pacttest.ProviderName,
		PactDir:  pacttest.PactDir(t),
		LogDir:   pacttest.LogDir(t),
	})
	require.NoError(t, err)

	example := pacttest.ExampleProductPayload()
	productMatcher := matchers.Map{
		"id":                matchers.Like(example["id"]),
		"name":              matchers.Like(example["name"]),
		"price":             matchers.Term("999.99", `^\d+(\.\d+)?$`),
		"availableQuantity": matchers.Like(example["availableQuantity"]),
	}
	jsonContentType := matchers.Regex("application/json; charset=utf-8", "application\\/json(?:;\\s?charset=utf-8)?")
	problemContentType := matchers.S("application/problem+json")

	pact.AddInteraction().
		Given(pacttest.StateProductsExist).
		UponReceiving("a request to list products").
		WithRequest("GET", "/api/inventory").
		WillRespondWith(http.StatusOK, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", jsonContentType)
			b.JSONBody(matchers.EachLike(productMatcher, 1))
		})

	pact.AddInteraction().
		Given(pacttest.StateProductExists).
		UponReceiving("a request to fetch product 1").
		WithRequest("GET", fmt.Sprintf("/api/inventory/%d", pacttest.ExistingProductID)).
		WillRespondWith(http.StatusOK, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", jsonContentType)
			b.JSONBody(productMatcher)
		})

	pact.AddInteraction().
		Given(pacttest.StateSufficientStock).
		UponReceiving("a request to reserve available stock").
		WithRequest("POST", "/api/inventory/reserve", func(b *pactconsumer.V2RequestBuilder) {
			b.Header("Content-Type", matchers.S("application/json"))
			b.JSONBody(matchers.Map{
				"productId": matchers.Like(pacttest.ExistingProductID),
				"quantity":  matchers.Like(pacttest.ReserveQuantity),
			})
		}).
		WillRespondWith(http.StatusOK, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", jsonContentType)
			b.JSONBody(matchers.Map{
				"productId":         matchers.Like(pacttest.ExistingProductID),
				"quantity":          matchers.Like(pacttest.ReserveQuantity),
				"availableQuantity": matchers.Like(8),
				"status":            matchers.S("reserved"),
			})
		})

	pact.AddInteraction().
		Given(pacttest.StateInsufficientStock).
		UponReceiving("a request to reserve more stock than available").
		WithRequest("POST", "/api/inventory/reserve", func(b *pactconsumer.V2RequestBuilder) {
			b.Header("Content-Type", matchers.S("application/json"))
			b.JSONBody(matchers.Map{
				"productId": matchers.Like(pacttest.ExistingProductID),
				"quantity":  matchers.Like(pacttest.ExcessQuantity),
			})
		}).
		WillRespondWith(http.StatusBadRequest, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", problemContentType)
			b.JSONBody(matchers.Map{
				"type":   matchers.S("/problems/insufficient-stock"),
				"title":  matchers.S("Insufficient Stock"),
				"status": matchers.Like(http.StatusBadRequest),
				"detail": matchers.Like("Insufficient stock for product 'Laptop' (ID: 1). Available: 10, Requested: 100"),
			})
		})

	pact.AddInteraction().
		Given(pacttest.StateProductMissing).
		UponReceiving("a request to reserve an unknown product").
		WithRequest("POST", "/api/inventory/reserve", func(b *pactconsumer.V2RequestBuilder) {
			b.Header("Content-Type", matchers.S("application/json"))
			b.JSONBody(matchers.Map{
				"productId": matchers.Like(pacttest.MissingProductID),
				"quantity":  matchers.Like(pacttest.ReserveQuantity),
			})
		}).
		WillRespondWith(http.StatusNotFound, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", problemContentType)
			b.JSONBody(matchers.Map{
				"type":   matchers.S("/problems/not-found"),
				"title":  matchers.S("Resource Not Found"),
				"status": matchers.Like(http.StatusNotFound),
			})
		})

	pact.AddInteraction().
		Given(pacttest.StateProductExists).
		UponReceiving("a request to release reserved stock").
		WithRequest("POST", "/api/inventory/release", func(b *pactconsumer.V2RequestBuilder) {
			b.Header("Content-Type", matchers.S("application/json"))
			b.JSONBody(matchers.Map{
				"productId": matchers.Like(pacttest.ExistingProductID),
				"quantity":  matchers.Like(pacttest.ReserveQuantity),
			})
		}).
		WillRespondWith(http.StatusOK, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", jsonContentType)
			b.JSONBody(matchers.Map{
				"productId":         matchers.Like(pacttest.ExistingProductID),
				"quantity":          matchers.Like(pacttest.ReserveQuantity),
				"availableQuantity": matchers.Like(12),
				"status":            matchers.S("released"),
			})
		})

	err = pact.ExecuteTest(t, func(config pactconsumer.MockServerConfig) error {
		host := config.Host
		if host == "" {
			host = "localhost"
		}
		client, err := inventoryclient.NewInventoryClient(
			fmt.Sprintf("http://%s:%d", host, config.Port),
			&http.Client{Timeout: 10 * time.Second},
		)
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		products, err := client.ListProducts(ctx)
		if err != nil {
			return fmt.Errorf("list products: %w", err)
		}
		if len(products) == 0 {
			return errors.New("expected at least one product")
		}

		product, err := client.GetProduct(ctx, pacttest.ExistingProductID)
		if err != nil {
			return fmt.Errorf("get product: %w", err)
		}
		if product.ID != pacttest.ExistingProductID {
			return fmt.Errorf("expected product %d, got %d", pacttest.ExistingProductID, product.ID)
		}

		reserved, err := client.Reserve(ctx, pacttest.ExistingProductID, pacttest.ReserveQuantity)
		if err != nil {
			return fmt.Errorf("reserve: %w", err)
		}
		if reserved.Status != "reserved" {
			return fmt.Errorf("expected reserved status, got %q", reserved.Status)
		}

		if _, err := client.Reserve(ctx, pacttest.ExistingProductID, pacttest.ExcessQuantity); !errors.Is(err, inventoryclient.ErrRejected) {
			return fmt.Errorf("expected rejection for excess quantity, got %v", err)
		}
		if _, err := client.Reserve(ctx, pacttest.MissingProductID, pacttest.ReserveQuantity); !errors.Is(err, inventoryclient.ErrProductNotFound) {
			return fmt.Errorf("expected not found for product %d, got %v", pacttest.MissingProductID, err)
		}

		released, err := client.Release(ctx, pacttest.ExistingProductID, pacttest.ReserveQuantity)
		if err != nil {
			return fmt.Errorf("release: %w", err)
		}
		if released.Status != "released" {
			return fmt.Errorf("expected released status, got %q", released.Status)
		}
		return nil
	})
	require.NoError(t, err)
}
