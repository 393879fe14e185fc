package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// PurchaseOrderStatus estado de la orden de compra.
type PurchaseOrderStatus string

// Estados de la orden de compra.
const (
	POStatusDraft             PurchaseOrderStatus = "DRAFT"
	POStatusSubmitted         PurchaseOrderStatus = "SUBMITTED"
	POStatusApproved          PurchaseOrderStatus = "APPROVED"
	POStatusPartiallyReceived PurchaseOrderStatus = "PARTIALLY_RECEIVED"
	POStatusReceived          PurchaseOrderStatus = "RECEIVED"
	POStatusClosed            PurchaseOrderStatus = "CLOSED"
	POStatusCancelled         PurchaseOrderStatus = "CANCELLED"
)

// IsValid verifica que el estado pertenezca al catálogo.
func (s PurchaseOrderStatus) IsValid() bool {
	switch s {
	case POStatusDraft, POStatusSubmitted, POStatusApproved, POStatusPartiallyReceived,
		POStatusReceived, POStatusClosed, POStatusCancelled:
		return true
	}
	return false
}

// CanReceive indica si se pueden registrar recepciones (GRN) en este estado.
func (s PurchaseOrderStatus) CanReceive() bool {
	return s == POStatusApproved || s == POStatusPartiallyReceived
}

// PurchaseOrder cabecera de la orden de compra. Items se congelan al crearla.
type PurchaseOrder struct {
	ID             string
	PONumber       string
	SupplierID     string
	BranchID       string
	Status         PurchaseOrderStatus
	OrderDate      time.Time
	ExpectedDate   *time.Time
	Subtotal       decimal.Decimal
	TaxAmount      decimal.Decimal
	DiscountAmount decimal.Decimal
	TotalAmount    decimal.Decimal
	Notes          string
	CreatedBy      string
	ApprovedBy     string
	ApprovedAt     *time.Time
	Items          []*PurchaseOrderItem
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// PurchaseOrderItem línea de la orden. Solo ReceivedQty cambia después de crear la orden,
// y únicamente desde el procesamiento de GRN.
type PurchaseOrderItem struct {
	ID              string
	PurchaseOrderID string
	ProductID       string
	Quantity        decimal.Decimal
	UnitPrice       decimal.Decimal
	TotalPrice      decimal.Decimal
	ReceivedQty     decimal.Decimal
}

// ItemForProduct devuelve la primera línea de la orden para el producto, o nil.
func (po *PurchaseOrder) ItemForProduct(productID string) *PurchaseOrderItem {
	for _, it := range po.Items {
		if it.ProductID == productID {
			return it
		}
	}
	return nil
}
