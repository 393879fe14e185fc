package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// GRNStatus resultado de inspección de una recepción.
type GRNStatus string

// Estados de GRN.
const (
	GRNStatusPending           GRNStatus = "PENDING"
	GRNStatusInspecting        GRNStatus = "INSPECTING"
	GRNStatusAccepted          GRNStatus = "ACCEPTED"
	GRNStatusPartiallyAccepted GRNStatus = "PARTIALLY_ACCEPTED"
	GRNStatusRejected          GRNStatus = "REJECTED"
)

// GRN (Goods Receipt Note) registra una entrega física contra una orden de compra.
// Es inmutable una vez creada.
type GRN struct {
	ID              string
	GRNNumber       string
	PurchaseOrderID string
	SupplierID      string
	ReceivedDate    time.Time
	InvoiceNo       string
	Status          GRNStatus
	CreatedBy       string
	Items           []*GRNItem
	CreatedAt       time.Time
}

// GRNItem línea de la recepción.
// ReceivedQty cuenta para el cumplimiento de la orden; solo AcceptedQty entra al stock.
type GRNItem struct {
	ID           string
	GRNID        string
	ProductID    string
	OrderedQty   decimal.Decimal // informativo
	ReceivedQty  decimal.Decimal
	AcceptedQty  decimal.Decimal
	RejectedQty  decimal.Decimal
	RejectReason string
	UnitCost     decimal.Decimal
}
