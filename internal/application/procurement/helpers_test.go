package procurement_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/jhoicas/Mantenimiento-api/internal/application/dto"
	"github.com/jhoicas/Mantenimiento-api/internal/application/inventory"
	"github.com/jhoicas/Mantenimiento-api/internal/application/ports"
	"github.com/jhoicas/Mantenimiento-api/internal/application/procurement"
	"github.com/jhoicas/Mantenimiento-api/internal/domain"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/entity"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/repository"
	"github.com/jhoicas/Mantenimiento-api/internal/infrastructure/memory"
	"github.com/jhoicas/Mantenimiento-api/pkg/logger"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func dp(s string) *decimal.Decimal {
	v := d(s)
	return &v
}

type fixture struct {
	store  *memory.Store
	ledger *inventory.LedgerUseCase
	orders *procurement.PurchaseOrderUseCase
	grns   *procurement.GoodsReceiptUseCase
}

func newFixture(t *testing.T, runner ports.TxRunner, store *memory.Store) *fixture {
	t.Helper()
	if store == nil {
		store = memory.NewStore()
	}
	if runner == nil {
		runner = store
	}
	store.PutSupplier(&entity.Supplier{ID: "sup-1", Code: "S001", Name: "Repuestos Andinos", IsActive: true})
	for _, id := range []string{"p-a", "p-b"} {
		store.PutProduct(&entity.Product{
			ID: id, BranchID: "branch-1", SKU: "SKU-" + id, Name: "Repuesto " + id, Unit: "PCS",
			CurrentStock: decimal.Zero, IsActive: true, CreatedAt: time.Now(), UpdatedAt: time.Now(),
		})
	}
	log := logger.Nop()
	ledger := inventory.NewLedgerUseCase(runner, store.Products(), store.Movements(), nil, log)
	return &fixture{
		store:  store,
		ledger: ledger,
		orders: procurement.NewPurchaseOrderUseCase(runner, store.PurchaseOrders(), store.Suppliers(), store.Products(), fakePDF{}, nil, log),
		grns:   procurement.NewGoodsReceiptUseCase(runner, ledger, store.PurchaseOrders(), store.Suppliers(), store.GRNs(), nil, log),
	}
}

func (f *fixture) createOrder(t *testing.T, items ...dto.PurchaseOrderItemRequest) *entity.PurchaseOrder {
	t.Helper()
	if len(items) == 0 {
		items = []dto.PurchaseOrderItemRequest{{ProductID: "p-a", Quantity: d("100"), UnitPrice: d("2")}}
	}
	po, err := f.orders.Create(context.Background(), "buyer-1", dto.CreatePurchaseOrderRequest{
		SupplierID: "sup-1", BranchID: "branch-1", Items: items,
	})
	require.NoError(t, err)
	return po
}

// approvedOrder crea una orden y la lleva a APPROVED.
func (f *fixture) approvedOrder(t *testing.T, items ...dto.PurchaseOrderItemRequest) *entity.PurchaseOrder {
	t.Helper()
	ctx := context.Background()
	po := f.createOrder(t, items...)
	_, err := f.orders.Transition(ctx, "buyer-1", po.ID, entity.POStatusSubmitted)
	require.NoError(t, err)
	po, err = f.orders.Approve(ctx, po.ID, "manager-1")
	require.NoError(t, err)
	return po
}

func (f *fixture) stock(t *testing.T, productID string) decimal.Decimal {
	t.Helper()
	p, err := f.store.Products().GetByID(context.Background(), productID)
	require.NoError(t, err)
	require.NotNil(t, p)
	return p.CurrentStock
}

func (f *fixture) order(t *testing.T, id string) *entity.PurchaseOrder {
	t.Helper()
	po, err := f.orders.Get(context.Background(), id)
	require.NoError(t, err)
	return po
}

type fakePDF struct{}

func (fakePDF) GeneratePurchaseOrder(doc procurement.PurchaseOrderDocument) ([]byte, error) {
	return []byte("%PDF-" + doc.Order.PONumber), nil
}

// hookedRunner corre sobre el store real y permite decorar los repositorios de cada transacción.
type hookedRunner struct {
	store    *memory.Store
	decorate func(repos ports.TxRepos) ports.TxRepos
}

func (r *hookedRunner) Run(ctx context.Context, fn func(repos ports.TxRepos) error) error {
	return r.store.Run(ctx, func(repos ports.TxRepos) error {
		if r.decorate != nil {
			repos = r.decorate(repos)
		}
		return fn(repos)
	})
}

var errStockInFailed = errors.New("falla simulada en entrada de stock")

// nthFailingMovements falla en la llamada failAt a Create (contando desde 1).
type nthFailingMovements struct {
	repository.StockMovementRepository
	calls  *int
	failAt int
}

func (m nthFailingMovements) Create(ctx context.Context, mv *entity.StockMovement) error {
	*m.calls++
	if *m.calls == m.failAt {
		return errStockInFailed
	}
	return m.StockMovementRepository.Create(ctx, mv)
}

// duplicateOrders simula colisiones de número de orden en los primeros intentos.
type duplicateOrders struct {
	repository.PurchaseOrderRepository
	remaining *int
}

func (o duplicateOrders) Create(ctx context.Context, po *entity.PurchaseOrder) error {
	if *o.remaining > 0 {
		*o.remaining--
		return domain.ErrDuplicate
	}
	return o.PurchaseOrderRepository.Create(ctx, po)
}
