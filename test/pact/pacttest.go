//go:build pact
// +build pact

package pacttest

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

const (
	ProviderName = "inventory-api"
	ConsumerName = "orders-api"

	StateProductsExist     = "Products exist"
	StateProductExists     = "Product 1 exists"
	StateSufficientStock   = "Product 1 has sufficient stock"
	StateInsufficientStock = "Product 1 has insufficient stock"
	StateProductMissing    = "Product 999 does not exist"
)

const (
	ExistingProductID int64 = 1
	MissingProductID  int64 = 999

	ReserveQuantity int32 = 2
	ExcessQuantity  int32 = 100
)

// PactDir returns the workspace-level directory for generated pact files.
func PactDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "pacts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact dir: %v", err)
	}
	return dir
}

// PactFile returns the canonical pact file path for the orders consumer.
func PactFile(t testing.TB) string {
	t.Helper()
	return filepath.Join(PactDir(t), ConsumerName+"-"+ProviderName+".json")
}

// LogDir returns the log output directory for pact-go.
func LogDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "bin", "pact-logs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact log dir: %v", err)
	}
	return dir
}

// ExampleProductPayload mirrors the first entry of the seed catalogue.
func ExampleProductPayload() map[string]any {
	return map[string]any{
		"id":                ExistingProductID,
		"name":              "Laptop",
		"price":             "999.99",
		"availableQuantity": 10,
	}
}

// projectRoot walks up from this file to the workspace root.
func projectRoot(t testing.TB) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("cannot determine caller for pact paths")
	}
	return filepath.Clean(filepath.Join(filepath.Dir(file), "..", ".."))
}
