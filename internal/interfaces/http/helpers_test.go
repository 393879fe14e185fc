package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Mantenimiento-api/internal/application/inventory"
	"github.com/jhoicas/Mantenimiento-api/internal/application/procurement"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/entity"
	"github.com/jhoicas/Mantenimiento-api/internal/infrastructure/memory"
	infrapdf "github.com/jhoicas/Mantenimiento-api/internal/infrastructure/pdf"
	apphttp "github.com/jhoicas/Mantenimiento-api/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/Mantenimiento-api/pkg/jwt"
	"github.com/jhoicas/Mantenimiento-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testUserID    = "00000000-0000-0000-0000-000000000001"
	testBranchID  = "00000000-0000-0000-0000-0000000000b1"
	testIssuer    = "mantenimiento-test"
	testExpMin    = 60
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// buildApp arma la API completa sobre el store en memoria con un proveedor y dos productos.
func buildApp(t *testing.T) (*fiber.App, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	store.PutSupplier(&entity.Supplier{ID: "sup-1", Code: "S001", Name: "Repuestos Andinos", IsActive: true})
	store.PutProduct(&entity.Product{
		ID: "p-1", BranchID: testBranchID, SKU: "FIL-001", Name: "Filtro de aceite", Unit: "PCS",
		CurrentStock: d("10"), ReorderLevel: d("5"), IsActive: true,
	})
	store.PutProduct(&entity.Product{
		ID: "p-2", BranchID: testBranchID, SKU: "COR-002", Name: "Correa", Unit: "PCS",
		CurrentStock: decimal.Zero, ReorderLevel: d("2"), IsActive: true,
	})

	log := logger.Nop()
	ledger := inventory.NewLedgerUseCase(store, store.Products(), store.Movements(), nil, log)
	grns := procurement.NewGoodsReceiptUseCase(store, ledger, store.PurchaseOrders(), store.Suppliers(), store.GRNs(), nil, log)

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		Ledger:         ledger,
		LowStock:       inventory.NewLowStockUseCase(store.Products()),
		Consumption:    inventory.NewConsumptionUseCase(store, ledger, store.Products(), store.Consumptions(), nil, log),
		PurchaseOrders: procurement.NewPurchaseOrderUseCase(store, store.PurchaseOrders(), store.Suppliers(), store.Products(), infrapdf.NewMarotoPDFGenerator("Planta"), nil, log),
		GoodsReceipts:  grns,
		Pages:          apphttp.PageLimits{Default: 20, Max: 100},
		JWTSecret:      testJWTSecret,
	})
	return app, store
}

func bearer(t *testing.T) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, testUserID, testBranchID, testIssuer, testExpMin)
	require.NoError(t, err, "debe generarse un token JWT válido")
	return "Bearer " + tok
}

// call lanza la petición autenticada y devuelve status y cuerpo.
func call(t *testing.T, app *fiber.App, method, path string, body any) (int, []byte) {
	t.Helper()
	return callWithAuth(t, app, method, path, body, bearer(t))
}

func callWithAuth(t *testing.T, app *fiber.App, method, path string, body any, auth string) (int, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			reader = bytes.NewBufferString(b)
		default:
			raw, err := json.Marshal(b)
			require.NoError(t, err)
			reader = bytes.NewReader(raw)
		}
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, raw
}

func decode[T any](t *testing.T, raw []byte) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	return out
}

