package procurement_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/jhoicas/Mantenimiento-api/internal/application/dto"
	"github.com/jhoicas/Mantenimiento-api/internal/application/ports"
	"github.com/jhoicas/Mantenimiento-api/internal/domain"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/entity"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/repository"
	"github.com/jhoicas/Mantenimiento-api/internal/infrastructure/memory"
)

// ── Create ──────────────────────────────────────────────────────────────────

func TestCreatePO_CalculaTotalesYQuedaEnDraft(t *testing.T) {
	f := newFixture(t, nil, nil)

	po, err := f.orders.Create(context.Background(), "buyer-1", dto.CreatePurchaseOrderRequest{
		SupplierID:     "sup-1",
		BranchID:       "branch-1",
		TaxAmount:      d("19"),
		DiscountAmount: d("4"),
		Items: []dto.PurchaseOrderItemRequest{
			{ProductID: "p-a", Quantity: d("10"), UnitPrice: d("5")},
			{ProductID: "p-b", Quantity: d("2"), UnitPrice: d("25")},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, entity.POStatusDraft, po.Status)
	assert.Regexp(t, `^PO-\d{4}-[0-9A-F]{6}$`, po.PONumber)
	assert.True(t, po.Subtotal.Equal(d("100")), "subtotal = 50 + 50")
	assert.True(t, po.TotalAmount.Equal(d("115")), "total = 100 + 19 - 4")
	require.Len(t, po.Items, 2)
	assert.True(t, po.Items[0].TotalPrice.Equal(d("50")))
	assert.True(t, po.Items[0].ReceivedQty.IsZero())
	assert.Equal(t, "buyer-1", po.CreatedBy)

	stored := f.order(t, po.ID)
	assert.Equal(t, po.PONumber, stored.PONumber)
	assert.Len(t, stored.Items, 2)
}

func TestCreatePO_Validaciones(t *testing.T) {
	f := newFixture(t, nil, nil)
	ctx := context.Background()
	line := dto.PurchaseOrderItemRequest{ProductID: "p-a", Quantity: d("1"), UnitPrice: d("1")}

	cases := []struct {
		name string
		req  dto.CreatePurchaseOrderRequest
		want error
	}{
		{"sin líneas", dto.CreatePurchaseOrderRequest{SupplierID: "sup-1", BranchID: "branch-1"}, domain.ErrValidation},
		{"cantidad cero", dto.CreatePurchaseOrderRequest{SupplierID: "sup-1", BranchID: "branch-1",
			Items: []dto.PurchaseOrderItemRequest{{ProductID: "p-a", Quantity: d("0"), UnitPrice: d("1")}}}, domain.ErrValidation},
		{"precio negativo", dto.CreatePurchaseOrderRequest{SupplierID: "sup-1", BranchID: "branch-1",
			Items: []dto.PurchaseOrderItemRequest{{ProductID: "p-a", Quantity: d("1"), UnitPrice: d("-1")}}}, domain.ErrValidation},
		{"impuesto negativo", dto.CreatePurchaseOrderRequest{SupplierID: "sup-1", BranchID: "branch-1",
			TaxAmount: d("-1"), Items: []dto.PurchaseOrderItemRequest{line}}, domain.ErrValidation},
		{"descuento mayor al total", dto.CreatePurchaseOrderRequest{SupplierID: "sup-1", BranchID: "branch-1",
			DiscountAmount: d("5"), Items: []dto.PurchaseOrderItemRequest{line}}, domain.ErrValidation},
		{"producto repetido", dto.CreatePurchaseOrderRequest{SupplierID: "sup-1", BranchID: "branch-1",
			Items: []dto.PurchaseOrderItemRequest{line, line}}, domain.ErrValidation},
		{"cantidad con cinco decimales", dto.CreatePurchaseOrderRequest{SupplierID: "sup-1", BranchID: "branch-1",
			Items: []dto.PurchaseOrderItemRequest{{ProductID: "p-a", Quantity: d("1.00001"), UnitPrice: d("1")}}}, domain.ErrValidation},
		{"precio con cinco decimales", dto.CreatePurchaseOrderRequest{SupplierID: "sup-1", BranchID: "branch-1",
			Items: []dto.PurchaseOrderItemRequest{{ProductID: "p-a", Quantity: d("1"), UnitPrice: d("0.12345")}}}, domain.ErrValidation},
		{"proveedor inexistente", dto.CreatePurchaseOrderRequest{SupplierID: "nope", BranchID: "branch-1",
			Items: []dto.PurchaseOrderItemRequest{line}}, domain.ErrNotFound},
		{"producto inexistente", dto.CreatePurchaseOrderRequest{SupplierID: "sup-1", BranchID: "branch-1",
			Items: []dto.PurchaseOrderItemRequest{{ProductID: "nope", Quantity: d("1"), UnitPrice: d("1")}}}, domain.ErrNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.orders.Create(ctx, "buyer-1", tc.req)
			assert.ErrorIs(t, err, tc.want)
		})
	}

	list, total, err := f.orders.List(ctx, repository.PurchaseOrderFilter{}, 10, 0)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, list)
}

func TestCreatePO_NumeroRepetido_Reintenta(t *testing.T) {
	store := memory.NewStore()
	remaining := 2
	runner := &hookedRunner{store: store, decorate: func(r ports.TxRepos) ports.TxRepos {
		r.PurchaseOrders = duplicateOrders{PurchaseOrderRepository: r.PurchaseOrders, remaining: &remaining}
		return r
	}}
	f := newFixture(t, runner, store)

	po := f.createOrder(t)
	assert.Zero(t, remaining, "se consumieron las dos colisiones")
	assert.NotEmpty(t, po.PONumber)
}

func TestCreatePO_NumeroRepetidoSiempre_Conflict(t *testing.T) {
	store := memory.NewStore()
	remaining := 10
	runner := &hookedRunner{store: store, decorate: func(r ports.TxRepos) ports.TxRepos {
		r.PurchaseOrders = duplicateOrders{PurchaseOrderRepository: r.PurchaseOrders, remaining: &remaining}
		return r
	}}
	f := newFixture(t, runner, store)

	_, err := f.orders.Create(context.Background(), "buyer-1", dto.CreatePurchaseOrderRequest{
		SupplierID: "sup-1", BranchID: "branch-1",
		Items: []dto.PurchaseOrderItemRequest{{ProductID: "p-a", Quantity: d("1"), UnitPrice: d("1")}},
	})
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, 7, remaining, "tres intentos")
}

// ── Transition / Approve ────────────────────────────────────────────────────

func TestTransition_DraftAReceived_ListaPermitidos(t *testing.T) {
	f := newFixture(t, nil, nil)
	po := f.createOrder(t)

	_, err := f.orders.Transition(context.Background(), "buyer-1", po.ID, entity.POStatusReceived)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidTransition))
	assert.False(t, errors.Is(err, domain.ErrConflict), "DRAFT no es terminal")

	var te *domain.TransitionError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, "DRAFT", te.From)
	assert.Equal(t, "RECEIVED", te.To)
	assert.ElementsMatch(t, []string{"SUBMITTED", "CANCELLED"}, te.Allowed)

	assert.Equal(t, entity.POStatusDraft, f.order(t, po.ID).Status, "el estado no cambia")
}

func TestTransition_DesdeTerminal_TambienConflict(t *testing.T) {
	f := newFixture(t, nil, nil)
	ctx := context.Background()
	po := f.createOrder(t)

	_, err := f.orders.Transition(ctx, "buyer-1", po.ID, entity.POStatusCancelled)
	require.NoError(t, err)

	_, err = f.orders.Transition(ctx, "buyer-1", po.ID, entity.POStatusSubmitted)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestTransition_AApproved_SeRechaza(t *testing.T) {
	f := newFixture(t, nil, nil)
	ctx := context.Background()
	po := f.createOrder(t)
	_, err := f.orders.Transition(ctx, "buyer-1", po.ID, entity.POStatusSubmitted)
	require.NoError(t, err)

	_, err = f.orders.Transition(ctx, "buyer-1", po.ID, entity.POStatusApproved)
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, entity.POStatusSubmitted, f.order(t, po.ID).Status)
}

func TestTransition_EstadoDesconocidoYOrdenInexistente(t *testing.T) {
	f := newFixture(t, nil, nil)
	ctx := context.Background()

	_, err := f.orders.Transition(ctx, "buyer-1", "nope", entity.POStatusSubmitted)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.orders.Transition(ctx, "buyer-1", "nope", entity.PurchaseOrderStatus("SHIPPED"))
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestApprove_RequiereSubmitted(t *testing.T) {
	f := newFixture(t, nil, nil)
	ctx := context.Background()
	po := f.createOrder(t)

	_, err := f.orders.Approve(ctx, po.ID, "manager-1")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition, "DRAFT no se aprueba")

	_, err = f.orders.Transition(ctx, "buyer-1", po.ID, entity.POStatusSubmitted)
	require.NoError(t, err)

	approved, err := f.orders.Approve(ctx, po.ID, "manager-1")
	require.NoError(t, err)
	assert.Equal(t, entity.POStatusApproved, approved.Status)
	assert.Equal(t, "manager-1", approved.ApprovedBy)
	require.NotNil(t, approved.ApprovedAt)

	stored := f.order(t, po.ID)
	assert.Equal(t, "manager-1", stored.ApprovedBy)
	assert.NotNil(t, stored.ApprovedAt)
}

// ── List / PDF ──────────────────────────────────────────────────────────────

func TestListPO_FiltraPorEstado(t *testing.T) {
	f := newFixture(t, nil, nil)
	ctx := context.Background()
	f.createOrder(t)
	f.approvedOrder(t)

	items, total, err := f.orders.List(ctx, repository.PurchaseOrderFilter{Status: entity.POStatusApproved}, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, items, 1)
	assert.Equal(t, entity.POStatusApproved, items[0].Status)

	_, total, err = f.orders.List(ctx, repository.PurchaseOrderFilter{SupplierID: "sup-1"}, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, total)

	_, _, err = f.orders.List(ctx, repository.PurchaseOrderFilter{Status: "SHIPPED"}, 10, 0)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestPDF_UsaElGenerador(t *testing.T) {
	f := newFixture(t, nil, nil)
	po := f.createOrder(t)

	data, got, err := f.orders.PDF(context.Background(), po.ID)
	require.NoError(t, err)
	assert.Equal(t, po.ID, got.ID)
	assert.Equal(t, "%PDF-"+po.PONumber, string(data))

	_, _, err = f.orders.PDF(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
