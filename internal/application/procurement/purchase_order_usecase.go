// Package procurement orquesta las órdenes de compra y las recepciones de mercancía (GRN).
package procurement

import (
	"context"
	"errors"
	"fmt"
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

// maxNumberAttempts intentos de generar un número de orden único.
const maxNumberAttempts = 3

// PurchaseOrderUseCase creación, transiciones de estado, aprobación, consulta y PDF de órdenes de compra.
type PurchaseOrderUseCase struct {
	txRunner  ports.TxRunner
	orders    repository.PurchaseOrderRepository
	suppliers repository.SupplierRepository
	products  repository.ProductRepository
	pdf       PDFGenerator
	events    ports.EventPublisher
	log       *logger.Logger
	now       func() time.Time
}

// NewPurchaseOrderUseCase construye el caso de uso. pdf puede ser nil (PDF deshabilitado).
func NewPurchaseOrderUseCase(
	txRunner ports.TxRunner,
	orders repository.PurchaseOrderRepository,
	suppliers repository.SupplierRepository,
	products repository.ProductRepository,
	pdf PDFGenerator,
	events ports.EventPublisher,
	log *logger.Logger,
) *PurchaseOrderUseCase {
	if events == nil {
		events = ports.NoopPublisher{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &PurchaseOrderUseCase{
		txRunner:  txRunner,
		orders:    orders,
		suppliers: suppliers,
		products:  products,
		pdf:       pdf,
		events:    events,
		log:       log.Component("purchase_order"),
		now:       time.Now,
	}
}

// Create valida proveedor, productos y montos y guarda la orden en DRAFT con sus líneas
// en una transacción. Si el número generado choca se reintenta con uno nuevo.
func (uc *PurchaseOrderUseCase) Create(ctx context.Context, actor string, req dto.CreatePurchaseOrderRequest) (*entity.PurchaseOrder, error) {
	if req.SupplierID == "" {
		return nil, domain.Validationf("supplier_id es requerido")
	}
	if req.BranchID == "" {
		return nil, domain.Validationf("branch_id es requerido")
	}
	if len(req.Items) == 0 {
		return nil, domain.Validationf("la orden debe tener al menos una línea")
	}
	if req.TaxAmount.IsNegative() || req.DiscountAmount.IsNegative() {
		return nil, domain.Validationf("impuesto y descuento no pueden ser negativos")
	}
	if err := domain.CheckScale("tax_amount", req.TaxAmount); err != nil {
		return nil, err
	}
	if err := domain.CheckScale("discount_amount", req.DiscountAmount); err != nil {
		return nil, err
	}
	// Una línea por producto: la recepción acumula sobre la línea del producto.
	seen := make(map[string]int, len(req.Items))
	for i, it := range req.Items {
		if it.ProductID == "" {
			return nil, domain.Validationf("línea %d: product_id es requerido", i+1)
		}
		if prev, dup := seen[it.ProductID]; dup {
			return nil, domain.Validationf("línea %d: producto %s repetido (ya está en la línea %d)", i+1, it.ProductID, prev)
		}
		seen[it.ProductID] = i + 1
		if !it.Quantity.GreaterThan(decimal.Zero) {
			return nil, domain.Validationf("línea %d: la cantidad debe ser mayor a cero", i+1)
		}
		if it.UnitPrice.IsNegative() {
			return nil, domain.Validationf("línea %d: unit_price no puede ser negativo", i+1)
		}
		if err := domain.CheckScale("quantity", it.Quantity); err != nil {
			return nil, fmt.Errorf("línea %d: %w", i+1, err)
		}
		if err := domain.CheckScale("unit_price", it.UnitPrice); err != nil {
			return nil, fmt.Errorf("línea %d: %w", i+1, err)
		}
	}

	supplier, err := uc.suppliers.GetByID(ctx, req.SupplierID)
	if err != nil {
		return nil, err
	}
	if supplier == nil {
		return nil, domain.NotFoundf("proveedor %s", req.SupplierID)
	}
	for _, it := range req.Items {
		p, err := uc.products.GetByID(ctx, it.ProductID)
		if err != nil {
			return nil, err
		}
		if p == nil {
			return nil, domain.NotFoundf("producto %s", it.ProductID)
		}
	}

	now := uc.now()
	po := &entity.PurchaseOrder{
		ID:           uuid.NewString(),
		SupplierID:   req.SupplierID,
		BranchID:     req.BranchID,
		Status:       entity.POStatusDraft,
		OrderDate:    now,
		ExpectedDate: req.ExpectedDate,
		Notes:        req.Notes,
		CreatedBy:    actor,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if req.OrderDate != nil {
		po.OrderDate = *req.OrderDate
	}
	for _, it := range req.Items {
		po.Items = append(po.Items, &entity.PurchaseOrderItem{
			ID:              uuid.NewString(),
			PurchaseOrderID: po.ID,
			ProductID:       it.ProductID,
			Quantity:        it.Quantity,
			UnitPrice:       it.UnitPrice,
			ReceivedQty:     decimal.Zero,
		})
	}
	totals := procurement.ComputeTotals(po.Items, req.TaxAmount, req.DiscountAmount)
	if totals.Total.IsNegative() {
		return nil, domain.Validationf("el descuento supera subtotal más impuesto")
	}
	po.Subtotal = totals.Subtotal
	po.TaxAmount = totals.Tax
	po.DiscountAmount = totals.Discount
	po.TotalAmount = totals.Total

	for attempt := 1; attempt <= maxNumberAttempts; attempt++ {
		po.PONumber = procurement.ReferenceNumber(procurement.PrefixPurchaseOrder, now)
		err = uc.txRunner.Run(ctx, func(repos ports.TxRepos) error {
			return repos.PurchaseOrders.Create(ctx, po)
		})
		if err == nil {
			uc.log.Info().
				Str("po_id", po.ID).
				Str("po_number", po.PONumber).
				Str("total", po.TotalAmount.String()).
				Msg("orden de compra creada")
			return po, nil
		}
		if !errors.Is(err, domain.ErrDuplicate) {
			return nil, err
		}
		uc.log.Warn().Str("po_number", po.PONumber).Int("attempt", attempt).Msg("número de orden repetido, reintentando")
	}
	return nil, domain.Conflictf("no se pudo asignar un número de orden único")
}

// Transition cambia el estado manualmente validando contra la tabla de transiciones,
// con la fila de la orden bloqueada. La aprobación solo se hace vía Approve.
func (uc *PurchaseOrderUseCase) Transition(ctx context.Context, actor, id string, target entity.PurchaseOrderStatus) (*entity.PurchaseOrder, error) {
	if !target.IsValid() {
		return nil, domain.Validationf("estado %q inválido", target)
	}
	if target == entity.POStatusApproved {
		return nil, domain.Validationf("la aprobación se realiza con la operación approve")
	}
	return uc.changeStatus(ctx, actor, id, func(po *entity.PurchaseOrder) error {
		if err := procurement.ValidateTransition(po.Status, target); err != nil {
			return err
		}
		po.Status = target
		return nil
	})
}

// Approve aprueba una orden SUBMITTED registrando aprobador y fecha.
func (uc *PurchaseOrderUseCase) Approve(ctx context.Context, id, approverID string) (*entity.PurchaseOrder, error) {
	if approverID == "" {
		return nil, domain.Validationf("approver es requerido")
	}
	return uc.changeStatus(ctx, approverID, id, func(po *entity.PurchaseOrder) error {
		if po.Status != entity.POStatusSubmitted {
			return procurement.ValidateTransition(po.Status, entity.POStatusApproved)
		}
		at := uc.now()
		po.Status = entity.POStatusApproved
		po.ApprovedBy = approverID
		po.ApprovedAt = &at
		return nil
	})
}

func (uc *PurchaseOrderUseCase) changeStatus(ctx context.Context, actor, id string, mutate func(po *entity.PurchaseOrder) error) (*entity.PurchaseOrder, error) {
	if id == "" {
		return nil, domain.Validationf("id es requerido")
	}
	var (
		po   *entity.PurchaseOrder
		from entity.PurchaseOrderStatus
	)
	err := uc.txRunner.Run(ctx, func(repos ports.TxRepos) error {
		var err error
		po, err = repos.PurchaseOrders.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if po == nil {
			return domain.NotFoundf("orden de compra %s", id)
		}
		from = po.Status
		if err := mutate(po); err != nil {
			return err
		}
		po.UpdatedAt = uc.now()
		if err := repos.PurchaseOrders.UpdateStatus(ctx, po); err != nil {
			return fmt.Errorf("actualizar estado de orden: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("po_id", po.ID).
		Str("from", string(from)).
		Str("to", string(po.Status)).
		Str("actor", actor).
		Msg("estado de orden actualizado")
	inventory.Publish(ctx, uc.events, uc.log, statusChangedEvent(po, from, actor, po.UpdatedAt))
	return po, nil
}

// Get devuelve la orden con sus líneas.
func (uc *PurchaseOrderUseCase) Get(ctx context.Context, id string) (*entity.PurchaseOrder, error) {
	po, err := uc.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if po == nil {
		return nil, domain.NotFoundf("orden de compra %s", id)
	}
	return po, nil
}

// List lista órdenes filtradas, de la más reciente a la más antigua.
func (uc *PurchaseOrderUseCase) List(ctx context.Context, filter repository.PurchaseOrderFilter, limit, offset int) ([]*entity.PurchaseOrder, int, error) {
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, 0, domain.Validationf("estado %q inválido", filter.Status)
	}
	if limit <= 0 || offset < 0 {
		return nil, 0, domain.Validationf("paginación inválida: limit=%d offset=%d", limit, offset)
	}
	items, total, err := uc.orders.List(ctx, filter, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	if items == nil {
		items = []*entity.PurchaseOrder{}
	}
	return items, total, nil
}

// PDF renderiza la orden de compra. Devuelve también la orden para nombrar el archivo.
func (uc *PurchaseOrderUseCase) PDF(ctx context.Context, id string) ([]byte, *entity.PurchaseOrder, error) {
	if uc.pdf == nil {
		return nil, nil, errors.New("generador de PDF no configurado")
	}
	po, err := uc.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	supplier, err := uc.suppliers.GetByID(ctx, po.SupplierID)
	if err != nil {
		return nil, nil, err
	}
	if supplier == nil {
		supplier = &entity.Supplier{ID: po.SupplierID}
	}
	products := make(map[string]*entity.Product, len(po.Items))
	for _, it := range po.Items {
		if _, ok := products[it.ProductID]; ok {
			continue
		}
		p, err := uc.products.GetByID(ctx, it.ProductID)
		if err != nil {
			return nil, nil, err
		}
		if p != nil {
			products[it.ProductID] = p
		}
	}
	data, err := uc.pdf.GeneratePurchaseOrder(PurchaseOrderDocument{Order: po, Supplier: supplier, Products: products})
	if err != nil {
		return nil, nil, fmt.Errorf("generar PDF de orden %s: %w", po.PONumber, err)
	}
	return data, po, nil
}

func statusChangedEvent(po *entity.PurchaseOrder, from entity.PurchaseOrderStatus, actor string, at time.Time) ports.Event {
	return ports.Event{
		Name:       ports.EventPOStatusChanged,
		Key:        po.ID,
		OccurredAt: at,
		Payload: dto.PurchaseOrderStatusEvent{
			ID: po.ID, PONumber: po.PONumber, From: string(from), To: string(po.Status), Actor: actor,
		},
	}
}
