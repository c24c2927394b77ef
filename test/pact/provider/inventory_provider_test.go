//go:build pact
// +build pact

package provider_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/pact-foundation/pact-go/v2/models"
	pactprovider "github.com/pact-foundation/pact-go/v2/provider"
	"github.com/stretchr/testify/require"

	inventoryhandler "github.com/Apurer/go-order-saga/internal/domains/inventory/adapters/http/handler"
	inventorymemory "github.com/Apurer/go-order-saga/internal/domains/inventory/adapters/memory"
	inventoryapp "github.com/Apurer/go-order-saga/internal/domains/inventory/application"
	pacttest "github.com/Apurer/go-order-saga/test/pact"
)

func TestInventoryProviderPact(t *testing.T) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	app := newContractProviderApp(t)
	pactFile := filepath.ToSlash(pacttest.PactFile(t))
	if _, err := os.Stat(pactFile); errors.Is(err, os.ErrNotExist) {
		t.Fatalf("pact file not found at %s - run the pact consumer tests first", pactFile)
	} else {
		require.NoError(t, err)
	}

	seeded := func(setup bool, _ models.ProviderState) (models.ProviderStateResponse, error) {
		app.reset(t, true)
		return nil, nil
	}
	verifier := pactprovider.NewVerifier()
	stateHandlers := models.StateHandlers{
		pacttest.StateProductsExist:     seeded,
		pacttest.StateProductExists:     seeded,
		pacttest.StateSufficientStock:   seeded,
		pacttest.StateInsufficientStock: seeded,
		pacttest.StateProductMissing: func(setup bool, _ models.ProviderState) (models.ProviderStateResponse, error) {
			app.reset(t, false)
			return nil, nil
		},
	}

	err := verifier.VerifyProvider(t, pactprovider.VerifyRequest{
		ProviderBaseURL: app.server.URL,
		Provider:        pacttest.ProviderName,
		PactFiles:       []string{pactFile},
		StateHandlers:   stateHandlers,
		BeforeEach: func() error {
			app.reset(t, true)
			return nil
		},
	})
	require.NoError(t, err)
}

// contractProviderApp serves a fresh in-memory ledger per provider state.
type contractProviderApp struct {
	mu     sync.RWMutex
	router *gin.Engine
	server *httptest.Server
}

func newContractProviderApp(t testing.TB) *contractProviderApp {
	t.Helper()
	app := &contractProviderApp{}
	app.reset(t, true)
	app.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		app.mu.RLock()
		router := app.router
		app.mu.RUnlock()
		router.ServeHTTP(w, r)
	}))
	t.Cleanup(app.server.Close)
	return app
}

func (a *contractProviderApp) reset(t testing.TB, seed bool) {
	t.Helper()
	service := inventoryapp.NewService(inventorymemory.NewLedger(), nil)
	if seed {
		require.NoError(t, inventoryapp.Seed(context.Background(), service, inventoryapp.DefaultCatalog))
	}
	router := gin.New()
	router.Use(gin.Recovery())
	inventoryhandler.NewInventoryAPI(service).RegisterRoutes(router)

	a.mu.Lock()
	a.router = router
	a.mu.Unlock()
}
