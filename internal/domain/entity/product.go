package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un repuesto o insumo almacenado por una sucursal.
// CurrentStock solo se modifica a través del libro de movimientos (nunca negativo).
// El maestro de productos lo administra un flujo externo; aquí solo se lee y se actualiza el stock.
type Product struct {
	ID              string
	BranchID        string
	SKU             string // único por sucursal
	Name            string
	Unit            string // PCS, KG, L, SET, BOX...
	CurrentStock    decimal.Decimal
	MinimumStock    decimal.Decimal
	MaximumStock    *decimal.Decimal // nil = sin límite
	ReorderLevel    decimal.Decimal
	ReorderQuantity decimal.Decimal
	UnitPrice       decimal.Decimal
	CostPrice       decimal.Decimal
	IsActive        bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// IsLowStock indica si el producto está en o bajo su punto de reorden.
// Productos con ReorderLevel <= 0 no participan en alertas.
func (p *Product) IsLowStock() bool {
	return p.ReorderLevel.GreaterThan(decimal.Zero) && p.CurrentStock.LessThanOrEqual(p.ReorderLevel)
}
