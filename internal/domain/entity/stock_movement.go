package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// MovementType tipo de movimiento del libro de stock.
type MovementType string

// Tipos de movimiento de inventario.
const (
	MovementStockIn    MovementType = "STOCK_IN"   // entrada (compra, GRN)
	MovementStockOut   MovementType = "STOCK_OUT"  // salida / consumo
	MovementAdjustment MovementType = "ADJUSTMENT" // ajuste a cantidad objetivo
	MovementTransfer   MovementType = "TRANSFER"   // salida hacia otra sucursal
	MovementReturn     MovementType = "RETURN"     // devolución que reingresa
	MovementDamage     MovementType = "DAMAGE"     // baja por daño
	MovementExpired    MovementType = "EXPIRED"    // baja por vencimiento
)

// IsValid verifica que el tipo pertenezca al catálogo.
func (t MovementType) IsValid() bool {
	switch t {
	case MovementStockIn, MovementStockOut, MovementAdjustment, MovementTransfer,
		MovementReturn, MovementDamage, MovementExpired:
		return true
	}
	return false
}

// Referencias conocidas que originan movimientos.
const (
	ReferenceGRN              = "GRN"
	ReferenceManualAdjustment = "MANUAL_ADJUSTMENT"
	ReferenceConsumption      = "CONSUMPTION"
)

// StockMovement fila inmutable del libro de stock.
// Quantity es la magnitud (>= 0); el signo lo define Type (ver inventory.SignedDelta).
type StockMovement struct {
	ID            string
	BranchID      string
	ProductID     string
	Type          MovementType
	Quantity      decimal.Decimal
	UnitCost      *decimal.Decimal
	PreviousStock decimal.Decimal
	NewStock      decimal.Decimal
	ReferenceType string // p. ej. "GRN"
	ReferenceID   string // id opaco del evento de origen
	Reason        string
	PerformedBy   string // actor opaco (solo auditoría)
	CreatedAt     time.Time
}
