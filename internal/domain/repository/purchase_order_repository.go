package repository

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/entity"
)

// PurchaseOrderFilter filtros opcionales del listado de órdenes.
type PurchaseOrderFilter struct {
	Status     entity.PurchaseOrderStatus
	SupplierID string
	BranchID   string
}

// PurchaseOrderRepository puerto de persistencia de órdenes de compra y sus líneas.
type PurchaseOrderRepository interface {
	// Create inserta cabecera y líneas. Devuelve domain.ErrDuplicate si el número ya existe.
	Create(ctx context.Context, po *entity.PurchaseOrder) error
	// GetByID devuelve la orden con sus líneas, o nil, nil si no existe.
	GetByID(ctx context.Context, id string) (*entity.PurchaseOrder, error)
	// GetForUpdate igual que GetByID pero bloquea la fila de la orden.
	GetForUpdate(ctx context.Context, id string) (*entity.PurchaseOrder, error)
	// UpdateStatus persiste Status, ApprovedBy, ApprovedAt y UpdatedAt.
	UpdateStatus(ctx context.Context, po *entity.PurchaseOrder) error
	// UpdateItemReceived fija la cantidad recibida acumulada de una línea.
	UpdateItemReceived(ctx context.Context, itemID string, receivedQty decimal.Decimal) error
	List(ctx context.Context, filter PurchaseOrderFilter, limit, offset int) ([]*entity.PurchaseOrder, int, error)
}
