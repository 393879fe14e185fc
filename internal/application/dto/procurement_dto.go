package dto

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/entity"
)

// CreatePurchaseOrderRequest body para POST /api/purchase-orders.
type CreatePurchaseOrderRequest struct {
	SupplierID     string                     `json:"supplier_id"`
	BranchID       string                     `json:"branch_id"`
	OrderDate      *time.Time                 `json:"order_date,omitempty"`
	ExpectedDate   *time.Time                 `json:"expected_date,omitempty"`
	TaxAmount      decimal.Decimal            `json:"tax_amount"`
	DiscountAmount decimal.Decimal            `json:"discount_amount"`
	Notes          string                     `json:"notes,omitempty"`
	Items          []PurchaseOrderItemRequest `json:"items"`
}

// PurchaseOrderItemRequest línea solicitada.
type PurchaseOrderItemRequest struct {
	ProductID string          `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// TransitionRequest body para PATCH /api/purchase-orders/:id/status.
type TransitionRequest struct {
	Status string `json:"status"`
}

// CreateGRNRequest body para POST /api/grns.
type CreateGRNRequest struct {
	PurchaseOrderID string           `json:"purchase_order_id"`
	SupplierID      string           `json:"supplier_id"`
	ReceivedDate    *time.Time       `json:"received_date,omitempty"`
	InvoiceNo       string           `json:"invoice_no,omitempty"`
	Items           []GRNItemRequest `json:"items"`
}

// GRNItemRequest línea recibida. RejectedQty vacío = ReceivedQty − AcceptedQty.
type GRNItemRequest struct {
	ProductID    string           `json:"product_id"`
	OrderedQty   decimal.Decimal  `json:"ordered_qty"`
	ReceivedQty  decimal.Decimal  `json:"received_qty"`
	AcceptedQty  decimal.Decimal  `json:"accepted_qty"`
	RejectedQty  *decimal.Decimal `json:"rejected_qty,omitempty"`
	RejectReason string           `json:"reject_reason,omitempty"`
	UnitCost     decimal.Decimal  `json:"unit_cost"`
}

// PurchaseOrderResponse orden con sus líneas.
type PurchaseOrderResponse struct {
	ID             string                      `json:"id"`
	PONumber       string                      `json:"po_number"`
	SupplierID     string                      `json:"supplier_id"`
	BranchID       string                      `json:"branch_id"`
	Status         string                      `json:"status"`
	OrderDate      time.Time                   `json:"order_date"`
	ExpectedDate   *time.Time                  `json:"expected_date,omitempty"`
	Subtotal       decimal.Decimal             `json:"subtotal"`
	TaxAmount      decimal.Decimal             `json:"tax_amount"`
	DiscountAmount decimal.Decimal             `json:"discount_amount"`
	TotalAmount    decimal.Decimal             `json:"total_amount"`
	Notes          string                      `json:"notes,omitempty"`
	CreatedBy      string                      `json:"created_by"`
	ApprovedBy     string                      `json:"approved_by,omitempty"`
	ApprovedAt     *time.Time                  `json:"approved_at,omitempty"`
	Items          []PurchaseOrderItemResponse `json:"items"`
	CreatedAt      time.Time                   `json:"created_at"`
	UpdatedAt      time.Time                   `json:"updated_at"`
}

// PurchaseOrderItemResponse línea de la orden.
type PurchaseOrderItemResponse struct {
	ID          string          `json:"id"`
	ProductID   string          `json:"product_id"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TotalPrice  decimal.Decimal `json:"total_price"`
	ReceivedQty decimal.Decimal `json:"received_qty"`
}

// PurchaseOrderListResponse lista paginada de órdenes.
type PurchaseOrderListResponse struct {
	Items []PurchaseOrderResponse `json:"items"`
	Page  PageResponse            `json:"page"`
}

// GRNResponse recepción con sus líneas.
type GRNResponse struct {
	ID              string            `json:"id"`
	GRNNumber       string            `json:"grn_number"`
	PurchaseOrderID string            `json:"purchase_order_id"`
	SupplierID      string            `json:"supplier_id"`
	ReceivedDate    time.Time         `json:"received_date"`
	InvoiceNo       string            `json:"invoice_no,omitempty"`
	Status          string            `json:"status"`
	CreatedBy       string            `json:"created_by"`
	Items           []GRNItemResponse `json:"items"`
	CreatedAt       time.Time         `json:"created_at"`
}

// GRNItemResponse línea de la recepción.
type GRNItemResponse struct {
	ID           string          `json:"id"`
	ProductID    string          `json:"product_id"`
	OrderedQty   decimal.Decimal `json:"ordered_qty"`
	ReceivedQty  decimal.Decimal `json:"received_qty"`
	AcceptedQty  decimal.Decimal `json:"accepted_qty"`
	RejectedQty  decimal.Decimal `json:"rejected_qty"`
	RejectReason string          `json:"reject_reason,omitempty"`
	UnitCost     decimal.Decimal `json:"unit_cost"`
}

// FromPurchaseOrder mapea la orden y sus líneas.
func FromPurchaseOrder(po *entity.PurchaseOrder) PurchaseOrderResponse {
	resp := PurchaseOrderResponse{
		ID: po.ID, PONumber: po.PONumber, SupplierID: po.SupplierID, BranchID: po.BranchID,
		Status: string(po.Status), OrderDate: po.OrderDate, ExpectedDate: po.ExpectedDate,
		Subtotal: po.Subtotal, TaxAmount: po.TaxAmount, DiscountAmount: po.DiscountAmount,
		TotalAmount: po.TotalAmount, Notes: po.Notes, CreatedBy: po.CreatedBy,
		ApprovedBy: po.ApprovedBy, ApprovedAt: po.ApprovedAt,
		Items:     make([]PurchaseOrderItemResponse, 0, len(po.Items)),
		CreatedAt: po.CreatedAt, UpdatedAt: po.UpdatedAt,
	}
	for _, it := range po.Items {
		resp.Items = append(resp.Items, PurchaseOrderItemResponse{
			ID: it.ID, ProductID: it.ProductID, Quantity: it.Quantity, UnitPrice: it.UnitPrice,
			TotalPrice: it.TotalPrice, ReceivedQty: it.ReceivedQty,
		})
	}
	return resp
}

// FromGRN mapea la recepción y sus líneas.
func FromGRN(g *entity.GRN) GRNResponse {
	resp := GRNResponse{
		ID: g.ID, GRNNumber: g.GRNNumber, PurchaseOrderID: g.PurchaseOrderID, SupplierID: g.SupplierID,
		ReceivedDate: g.ReceivedDate, InvoiceNo: g.InvoiceNo, Status: string(g.Status),
		CreatedBy: g.CreatedBy, Items: make([]GRNItemResponse, 0, len(g.Items)), CreatedAt: g.CreatedAt,
	}
	for _, it := range g.Items {
		resp.Items = append(resp.Items, GRNItemResponse{
			ID: it.ID, ProductID: it.ProductID, OrderedQty: it.OrderedQty, ReceivedQty: it.ReceivedQty,
			AcceptedQty: it.AcceptedQty, RejectedQty: it.RejectedQty, RejectReason: it.RejectReason,
			UnitCost: it.UnitCost,
		})
	}
	return resp
}

// PurchaseOrderStatusEvent payload del evento purchase_order.status_changed.
type PurchaseOrderStatusEvent struct {
	ID       string `json:"id"`
	PONumber string `json:"po_number"`
	From     string `json:"from"`
	To       string `json:"to"`
	Actor    string `json:"actor,omitempty"`
}
