package procurement

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/jhoicas/Mantenimiento-api/internal/application/dto"
	"github.com/jhoicas/Mantenimiento-api/internal/application/inventory"
	"github.com/jhoicas/Mantenimiento-api/internal/application/ports"
	"github.com/jhoicas/Mantenimiento-api/internal/domain"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/entity"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/procurement"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/repository"
	"github.com/jhoicas/Mantenimiento-api/pkg/logger"
)

// GoodsReceiptUseCase registra recepciones contra órdenes de compra: cantidades recibidas,
// entradas de stock por lo aceptado y el estado derivado de la orden, todo en una transacción.
type GoodsReceiptUseCase struct {
	txRunner  ports.TxRunner
	ledger    *inventory.LedgerUseCase
	orders    repository.PurchaseOrderRepository
	suppliers repository.SupplierRepository
	grns      repository.GRNRepository
	events    ports.EventPublisher
	log       *logger.Logger
	now       func() time.Time
}

// NewGoodsReceiptUseCase construye el procesador de GRN.
func NewGoodsReceiptUseCase(
	txRunner ports.TxRunner,
	ledger *inventory.LedgerUseCase,
	orders repository.PurchaseOrderRepository,
	suppliers repository.SupplierRepository,
	grns repository.GRNRepository,
	events ports.EventPublisher,
	log *logger.Logger,
) *GoodsReceiptUseCase {
	if events == nil {
		events = ports.NoopPublisher{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &GoodsReceiptUseCase{
		txRunner:  txRunner,
		ledger:    ledger,
		orders:    orders,
		suppliers: suppliers,
		grns:      grns,
		events:    events,
		log:       log.Component("grn"),
		now:       time.Now,
	}
}

// CreateGRN valida las líneas y la orden, y en una transacción: guarda la GRN, acumula
// ReceivedQty en las líneas de la orden, ingresa al stock lo aceptado y recalcula el estado.
// Cualquier falla revierte todo.
func (uc *GoodsReceiptUseCase) CreateGRN(ctx context.Context, actor string, req dto.CreateGRNRequest) (*entity.GRN, error) {
	if req.PurchaseOrderID == "" {
		return nil, domain.Validationf("purchase_order_id es requerido")
	}
	items, err := buildGRNItems(req.Items)
	if err != nil {
		return nil, err
	}

	po, err := uc.orders.GetByID(ctx, req.PurchaseOrderID)
	if err != nil {
		return nil, err
	}
	if po == nil {
		return nil, domain.NotFoundf("orden de compra %s", req.PurchaseOrderID)
	}
	if !po.Status.CanReceive() {
		return nil, domain.Conflictf("la orden %s en estado %s no admite recepciones", po.PONumber, po.Status)
	}
	supplierID := req.SupplierID
	if supplierID == "" {
		supplierID = po.SupplierID
	}
	supplier, err := uc.suppliers.GetByID(ctx, supplierID)
	if err != nil {
		return nil, err
	}
	if supplier == nil {
		return nil, domain.NotFoundf("proveedor %s", supplierID)
	}

	now := uc.now()
	grn := &entity.GRN{
		ID:              uuid.NewString(),
		PurchaseOrderID: po.ID,
		SupplierID:      supplierID,
		ReceivedDate:    now,
		InvoiceNo:       req.InvoiceNo,
		Status:          procurement.DeriveGRNStatus(items),
		CreatedBy:       actor,
		Items:           items,
		CreatedAt:       now,
	}
	if req.ReceivedDate != nil {
		grn.ReceivedDate = *req.ReceivedDate
	}
	for _, it := range grn.Items {
		it.ID = uuid.NewString()
		it.GRNID = grn.ID
	}

	var (
		entries   []*inventory.LedgerEntry
		locked    *entity.PurchaseOrder
		fromState entity.PurchaseOrderStatus
		changed   bool
	)
	err = uc.txRunner.Run(ctx, func(repos ports.TxRepos) error {
		entries = nil
		var err error
		locked, err = repos.PurchaseOrders.GetForUpdate(ctx, po.ID)
		if err != nil {
			return err
		}
		if locked == nil {
			return domain.NotFoundf("orden de compra %s", po.ID)
		}
		if !locked.Status.CanReceive() {
			return domain.Conflictf("la orden %s en estado %s no admite recepciones", locked.PONumber, locked.Status)
		}
		fromState = locked.Status
		for _, it := range grn.Items {
			if locked.ItemForProduct(it.ProductID) == nil {
				return domain.Validationf("el producto %s no es una línea de la orden %s", it.ProductID, locked.PONumber)
			}
		}

		// Bloqueo de productos en orden ascendente de id para evitar deadlocks entre recepciones.
		for _, id := range acceptedProductIDs(grn.Items) {
			p, err := repos.Products.GetForUpdate(ctx, id)
			if err != nil {
				return err
			}
			if p == nil {
				return domain.NotFoundf("producto %s", id)
			}
		}

		grn.GRNNumber = procurement.ReferenceNumber(procurement.PrefixGRN, now)
		if err := repos.GRNs.Create(ctx, grn); err != nil {
			if errors.Is(err, domain.ErrDuplicate) {
				return domain.Conflictf("número de GRN %s repetido", grn.GRNNumber)
			}
			return fmt.Errorf("guardar GRN: %w", err)
		}

		for _, it := range grn.Items {
			line := locked.ItemForProduct(it.ProductID)
			line.ReceivedQty = line.ReceivedQty.Add(it.ReceivedQty)
			if line.ReceivedQty.GreaterThan(line.Quantity) {
				uc.log.Warn().
					Str("po_id", locked.ID).
					Str("product_id", it.ProductID).
					Str("ordered", line.Quantity.String()).
					Str("received", line.ReceivedQty.String()).
					Msg("recepción supera lo ordenado")
			}
			if err := repos.PurchaseOrders.UpdateItemReceived(ctx, line.ID, line.ReceivedQty); err != nil {
				return fmt.Errorf("actualizar cantidad recibida: %w", err)
			}
		}

		reason := fmt.Sprintf("GRN %s - PO %s", grn.GRNNumber, locked.PONumber)
		for _, it := range grn.Items {
			if !it.AcceptedQty.GreaterThan(decimal.Zero) {
				continue
			}
			cost := it.UnitCost
			entry, err := uc.ledger.StockInInTx(ctx, repos, inventory.StockInInput{
				ProductID: it.ProductID,
				Quantity:  it.AcceptedQty,
				UnitCost:  &cost,
				MovementContext: inventory.MovementContext{
					Type:          entity.MovementStockIn,
					ReferenceType: entity.ReferenceGRN,
					ReferenceID:   grn.ID,
					Reason:        reason,
					PerformedBy:   actor,
				},
			})
			if err != nil {
				return err
			}
			entries = append(entries, entry)
		}

		var next entity.PurchaseOrderStatus
		next, changed = procurement.DeriveReceiptStatus(locked.Status, locked.Items)
		if changed {
			locked.Status = next
			locked.UpdatedAt = now
			if err := repos.PurchaseOrders.UpdateStatus(ctx, locked); err != nil {
				return fmt.Errorf("actualizar estado de orden: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("grn_id", grn.ID).
		Str("grn_number", grn.GRNNumber).
		Str("po_id", locked.ID).
		Str("status", string(grn.Status)).
		Int("stock_entries", len(entries)).
		Msg("recepción registrada")

	events := []ports.Event{{
		Name:       ports.EventGRNCreated,
		Key:        grn.PurchaseOrderID,
		OccurredAt: grn.CreatedAt,
		Payload:    dto.FromGRN(grn),
	}}
	events = append(events, inventory.MovementEvents(entries...)...)
	if changed {
		events = append(events, statusChangedEvent(locked, fromState, actor, now))
	}
	inventory.Publish(ctx, uc.events, uc.log, events...)
	return grn, nil
}

// Get devuelve la recepción con sus líneas.
func (uc *GoodsReceiptUseCase) Get(ctx context.Context, id string) (*entity.GRN, error) {
	grn, err := uc.grns.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if grn == nil {
		return nil, domain.NotFoundf("GRN %s", id)
	}
	return grn, nil
}

// ListByPurchaseOrder recepciones registradas contra la orden.
func (uc *GoodsReceiptUseCase) ListByPurchaseOrder(ctx context.Context, purchaseOrderID string) ([]*entity.GRN, error) {
	po, err := uc.orders.GetByID(ctx, purchaseOrderID)
	if err != nil {
		return nil, err
	}
	if po == nil {
		return nil, domain.NotFoundf("orden de compra %s", purchaseOrderID)
	}
	return uc.grns.ListByPurchaseOrder(ctx, purchaseOrderID)
}

// buildGRNItems valida las líneas. RejectedQty omitido = ReceivedQty − AcceptedQty.
func buildGRNItems(lines []dto.GRNItemRequest) ([]*entity.GRNItem, error) {
	if len(lines) == 0 {
		return nil, domain.Validationf("la recepción debe tener al menos una línea")
	}
	items := make([]*entity.GRNItem, 0, len(lines))
	for i, l := range lines {
		n := i + 1
		if l.ProductID == "" {
			return nil, domain.Validationf("línea %d: product_id es requerido", n)
		}
		if l.ReceivedQty.IsNegative() || l.AcceptedQty.IsNegative() || l.OrderedQty.IsNegative() {
			return nil, domain.Validationf("línea %d: las cantidades no pueden ser negativas", n)
		}
		if l.AcceptedQty.GreaterThan(l.ReceivedQty) {
			return nil, domain.Validationf("línea %d: aceptado %s supera recibido %s", n, l.AcceptedQty, l.ReceivedQty)
		}
		rejected := l.ReceivedQty.Sub(l.AcceptedQty)
		if l.RejectedQty != nil {
			rejected = *l.RejectedQty
		}
		if rejected.IsNegative() {
			return nil, domain.Validationf("línea %d: rechazado no puede ser negativo", n)
		}
		if l.AcceptedQty.Add(rejected).GreaterThan(l.ReceivedQty) {
			return nil, domain.Validationf("línea %d: aceptado + rechazado supera recibido", n)
		}
		if l.UnitCost.IsNegative() {
			return nil, domain.Validationf("línea %d: unit_cost no puede ser negativo", n)
		}
		for _, f := range []struct {
			name string
			v    decimal.Decimal
		}{
			{"ordered_qty", l.OrderedQty}, {"received_qty", l.ReceivedQty}, {"accepted_qty", l.AcceptedQty},
			{"rejected_qty", rejected}, {"unit_cost", l.UnitCost},
		} {
			if err := domain.CheckScale(f.name, f.v); err != nil {
				return nil, fmt.Errorf("línea %d: %w", n, err)
			}
		}
		items = append(items, &entity.GRNItem{
			ProductID:    l.ProductID,
			OrderedQty:   l.OrderedQty,
			ReceivedQty:  l.ReceivedQty,
			AcceptedQty:  l.AcceptedQty,
			RejectedQty:  rejected,
			RejectReason: l.RejectReason,
			UnitCost:     l.UnitCost,
		})
	}
	return items, nil
}

func acceptedProductIDs(items []*entity.GRNItem) []string {
	seen := map[string]bool{}
	var ids []string
	for _, it := range items {
		if it.AcceptedQty.GreaterThan(decimal.Zero) && !seen[it.ProductID] {
			seen[it.ProductID] = true
			ids = append(ids, it.ProductID)
		}
	}
	sort.Strings(ids)
	return ids
}
