package dto

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/entity"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/inventory"
)

// StockInRequest body para POST /api/inventory/stock-in.
// Type opcional: STOCK_IN (defecto) o RETURN.
type StockInRequest struct {
	ProductID     string           `json:"product_id"`
	Quantity      decimal.Decimal  `json:"quantity"`
	UnitCost      *decimal.Decimal `json:"unit_cost,omitempty"`
	Type          string           `json:"type,omitempty"`
	ReferenceType string           `json:"reference_type,omitempty"`
	ReferenceID   string           `json:"reference_id,omitempty"`
	Reason        string           `json:"reason,omitempty"`
}

// StockOutRequest body para POST /api/inventory/stock-out.
// Type opcional: STOCK_OUT (defecto), DAMAGE o EXPIRED.
type StockOutRequest struct {
	ProductID     string          `json:"product_id"`
	Quantity      decimal.Decimal `json:"quantity"`
	Type          string          `json:"type,omitempty"`
	ReferenceType string          `json:"reference_type,omitempty"`
	ReferenceID   string          `json:"reference_id,omitempty"`
	Reason        string          `json:"reason,omitempty"`
}

// AdjustStockRequest body para POST /api/inventory/adjust. Quantity es el stock objetivo;
// es puntero porque un cero explícito es válido y la ausencia no.
type AdjustStockRequest struct {
	ProductID     string           `json:"product_id"`
	Quantity      *decimal.Decimal `json:"quantity"`
	ReferenceType string           `json:"reference_type,omitempty"`
	ReferenceID   string           `json:"reference_id,omitempty"`
	Reason        string           `json:"reason,omitempty"`
}

// ConsumeRequest body para POST /api/inventory/consumptions.
type ConsumeRequest struct {
	ProductID string          `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
	OriginID  string          `json:"origin_id"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID              string           `json:"id"`
	BranchID        string           `json:"branch_id"`
	SKU             string           `json:"sku"`
	Name            string           `json:"name"`
	Unit            string           `json:"unit"`
	CurrentStock    decimal.Decimal  `json:"current_stock"`
	MinimumStock    decimal.Decimal  `json:"minimum_stock"`
	MaximumStock    *decimal.Decimal `json:"maximum_stock"`
	ReorderLevel    decimal.Decimal  `json:"reorder_level"`
	ReorderQuantity decimal.Decimal  `json:"reorder_quantity"`
	UnitPrice       decimal.Decimal  `json:"unit_price"`
	CostPrice       decimal.Decimal  `json:"cost_price"`
	IsActive        bool             `json:"is_active"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// MovementResponse fila del libro de stock.
type MovementResponse struct {
	ID            string           `json:"id"`
	ProductID     string           `json:"product_id"`
	Type          string           `json:"type"`
	Quantity      decimal.Decimal  `json:"quantity"`
	UnitCost      *decimal.Decimal `json:"unit_cost"`
	PreviousStock decimal.Decimal  `json:"previous_stock"`
	NewStock      decimal.Decimal  `json:"new_stock"`
	ReferenceType string           `json:"reference_type,omitempty"`
	ReferenceID   string           `json:"reference_id,omitempty"`
	Reason        string           `json:"reason,omitempty"`
	PerformedBy   string           `json:"performed_by"`
	CreatedAt     time.Time        `json:"created_at"`
}

// LedgerEntryResponse resultado de stock-in / stock-out / adjust.
type LedgerEntryResponse struct {
	Product  ProductResponse  `json:"product"`
	Movement MovementResponse `json:"movement"`
}

// MovementListResponse lista paginada de movimientos.
type MovementListResponse struct {
	Items []MovementResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// ProductListResponse lista paginada de productos (alertas de stock bajo).
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}

// LedgerReportResponse resultado de reproducir el libro de un producto.
type LedgerReportResponse struct {
	ProductID     string          `json:"product_id"`
	Movements     int             `json:"movements"`
	Replayed      decimal.Decimal `json:"replayed_stock"`
	CurrentStock  decimal.Decimal `json:"current_stock"`
	Consistent    bool            `json:"consistent"`
	FirstBrokenAt int             `json:"first_broken_at"`
	Reason        string          `json:"reason,omitempty"`
}

// ConsumptionResponse consumo registrado.
type ConsumptionResponse struct {
	ID          string          `json:"id"`
	OriginID    string          `json:"origin_id"`
	ProductID   string          `json:"product_id"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
	TotalCost   decimal.Decimal `json:"total_cost"`
	MovementID  string          `json:"movement_id"`
	PerformedBy string          `json:"performed_by"`
	CreatedAt   time.Time       `json:"created_at"`
}

// FromProduct mapea la entidad a su respuesta.
func FromProduct(p *entity.Product) ProductResponse {
	return ProductResponse{
		ID: p.ID, BranchID: p.BranchID, SKU: p.SKU, Name: p.Name, Unit: p.Unit,
		CurrentStock: p.CurrentStock, MinimumStock: p.MinimumStock, MaximumStock: p.MaximumStock,
		ReorderLevel: p.ReorderLevel, ReorderQuantity: p.ReorderQuantity,
		UnitPrice: p.UnitPrice, CostPrice: p.CostPrice, IsActive: p.IsActive, UpdatedAt: p.UpdatedAt,
	}
}

// FromProducts mapea una lista de productos.
func FromProducts(list []*entity.Product) []ProductResponse {
	out := make([]ProductResponse, 0, len(list))
	for _, p := range list {
		out = append(out, FromProduct(p))
	}
	return out
}

// FromMovement mapea un movimiento a su respuesta.
func FromMovement(m *entity.StockMovement) MovementResponse {
	return MovementResponse{
		ID: m.ID, ProductID: m.ProductID, Type: string(m.Type), Quantity: m.Quantity,
		UnitCost: m.UnitCost, PreviousStock: m.PreviousStock, NewStock: m.NewStock,
		ReferenceType: m.ReferenceType, ReferenceID: m.ReferenceID, Reason: m.Reason,
		PerformedBy: m.PerformedBy, CreatedAt: m.CreatedAt,
	}
}

// FromMovements mapea una lista de movimientos.
func FromMovements(list []*entity.StockMovement) []MovementResponse {
	out := make([]MovementResponse, 0, len(list))
	for _, m := range list {
		out = append(out, FromMovement(m))
	}
	return out
}

// FromChainReport mapea el reporte de verificación del libro.
func FromChainReport(r *inventory.ChainReport) LedgerReportResponse {
	return LedgerReportResponse{
		ProductID: r.ProductID, Movements: r.Movements, Replayed: r.Replayed,
		CurrentStock: r.CurrentStock, Consistent: r.Consistent,
		FirstBrokenAt: r.FirstBrokenAt, Reason: r.BrokenReason,
	}
}

// FromConsumption mapea un consumo.
func FromConsumption(c *entity.ConsumptionRecord) ConsumptionResponse {
	return ConsumptionResponse{
		ID: c.ID, OriginID: c.OriginID, ProductID: c.ProductID, Quantity: c.Quantity,
		UnitCost: c.UnitCost, TotalCost: c.TotalCost, MovementID: c.MovementID,
		PerformedBy: c.PerformedBy, CreatedAt: c.CreatedAt,
	}
}
