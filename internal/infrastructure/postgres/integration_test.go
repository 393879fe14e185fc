package postgres_test

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/jhoicas/Mantenimiento-api/internal/application/dto"
	"github.com/jhoicas/Mantenimiento-api/internal/application/inventory"
	"github.com/jhoicas/Mantenimiento-api/internal/application/procurement"
	"github.com/jhoicas/Mantenimiento-api/internal/domain"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/entity"
	"github.com/jhoicas/Mantenimiento-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Mantenimiento-api/pkg/config"
	"github.com/jhoicas/Mantenimiento-api/pkg/logger"
)

// Requiere una base PostgreSQL desechable: TEST_DATABASE_URL=postgres://... go test ./internal/infrastructure/postgres/
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL no definido")
	}
	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, config.DBConfig{DatabaseURL: url, MaxConns: 5})
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, postgres.Migrate(ctx, pool))
	return pool
}

func seed(t *testing.T, pool *pgxpool.Pool, stock string) (supplierID, productID string) {
	t.Helper()
	ctx := context.Background()
	supplierID, productID = uuid.NewString(), uuid.NewString()
	require.NoError(t, postgres.NewSupplierRepository(pool).Upsert(ctx, &entity.Supplier{
		ID: supplierID, Code: "S-" + supplierID[:8], Name: "Proveedor prueba", IsActive: true,
	}))
	now := time.Now()
	require.NoError(t, postgres.NewProductRepository(pool).Upsert(ctx, &entity.Product{
		ID: productID, BranchID: uuid.NewString(), SKU: "SKU-" + productID[:8], Name: "Filtro", Unit: "PCS",
		CurrentStock: decimal.RequireFromString(stock), IsActive: true, CreatedAt: now, UpdatedAt: now,
	}))
	return supplierID, productID
}

func TestPostgres_SalidasConcurrentes_BloqueoDeFila(t *testing.T) {
	pool := testPool(t)
	_, productID := seed(t, pool, "10")
	repos := postgres.Repos(pool)
	ledger := inventory.NewLedgerUseCase(postgres.NewTxRunner(pool), repos.Products, repos.Movements, nil, logger.Nop())

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = ledger.StockOut(context.Background(), inventory.StockOutInput{
				ProductID: productID, Quantity: decimal.NewFromInt(6),
			})
		}(i)
	}
	wg.Wait()

	failures := 0
	for _, err := range errs {
		if err != nil {
			assert.True(t, errors.Is(err, domain.ErrInsufficientStock), "error inesperado: %v", err)
			failures++
		}
	}
	assert.Equal(t, 1, failures)

	p, err := repos.Products.GetByID(context.Background(), productID)
	require.NoError(t, err)
	assert.True(t, p.CurrentStock.Equal(decimal.NewFromInt(4)))

	report, err := ledger.VerifyLedger(context.Background(), productID)
	require.NoError(t, err)
	assert.True(t, report.Consistent, report.BrokenReason)
}

func TestPostgres_CicloDeCompraCompleto(t *testing.T) {
	pool := testPool(t)
	supplierID, productID := seed(t, pool, "0")
	ctx := context.Background()
	tx := postgres.NewTxRunner(pool)
	repos := postgres.Repos(pool)
	log := logger.Nop()

	ledger := inventory.NewLedgerUseCase(tx, repos.Products, repos.Movements, nil, log)
	orders := procurement.NewPurchaseOrderUseCase(tx, repos.PurchaseOrders, repos.Suppliers, repos.Products, nil, nil, log)
	grns := procurement.NewGoodsReceiptUseCase(tx, ledger, repos.PurchaseOrders, repos.Suppliers, repos.GRNs, nil, log)

	po, err := orders.Create(ctx, "buyer", dto.CreatePurchaseOrderRequest{
		SupplierID: supplierID, BranchID: uuid.NewString(),
		Items: []dto.PurchaseOrderItemRequest{{ProductID: productID, Quantity: decimal.NewFromInt(100), UnitPrice: decimal.NewFromInt(2)}},
	})
	require.NoError(t, err)
	_, err = orders.Transition(ctx, "buyer", po.ID, entity.POStatusSubmitted)
	require.NoError(t, err)
	_, err = orders.Approve(ctx, po.ID, "manager")
	require.NoError(t, err)

	for _, qty := range []int64{40, 60} {
		_, err := grns.CreateGRN(ctx, "store", dto.CreateGRNRequest{
			PurchaseOrderID: po.ID,
			Items: []dto.GRNItemRequest{{
				ProductID: productID, ReceivedQty: decimal.NewFromInt(qty), AcceptedQty: decimal.NewFromInt(qty),
			}},
		})
		require.NoError(t, err)
	}

	stored, err := orders.Get(ctx, po.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.POStatusReceived, stored.Status)
	assert.True(t, stored.Items[0].ReceivedQty.Equal(decimal.NewFromInt(100)))

	p, err := repos.Products.GetByID(ctx, productID)
	require.NoError(t, err)
	assert.True(t, p.CurrentStock.Equal(decimal.NewFromInt(100)))

	list, err := grns.ListByPurchaseOrder(ctx, po.ID)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestPostgres_IDNoUUID_EsNotFound(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	repos := postgres.Repos(pool)

	p, err := repos.Products.GetByID(ctx, "p-1")
	require.NoError(t, err)
	assert.Nil(t, p)
	po, err := repos.PurchaseOrders.GetByID(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, po)

	// Dentro de una transacción la consulta no debe abortarla.
	ledger := inventory.NewLedgerUseCase(postgres.NewTxRunner(pool), repos.Products, repos.Movements, nil, logger.Nop())
	_, err = ledger.StockIn(ctx, inventory.StockInInput{ProductID: "p-1", Quantity: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.NotErrorIs(t, err, domain.ErrTransactionFailure)
}

func TestIsRetryable_ErroresComunes(t *testing.T) {
	assert.False(t, postgres.IsRetryable(errors.New("cualquier cosa")))
	assert.False(t, postgres.IsRetryable(nil))
}
