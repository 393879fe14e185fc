// Package inventory contiene la aritmética del libro de stock (servicio de dominio puro).
package inventory

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/jhoicas/Mantenimiento-api/internal/domain"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/entity"
)

// IsInbound indica si el tipo suma stock.
func IsInbound(t entity.MovementType) bool {
	return t == entity.MovementStockIn || t == entity.MovementReturn
}

// IsOutbound indica si el tipo resta stock.
func IsOutbound(t entity.MovementType) bool {
	switch t {
	case entity.MovementStockOut, entity.MovementDamage, entity.MovementExpired, entity.MovementTransfer:
		return true
	}
	return false
}

// SignedDelta devuelve el cambio con signo que aplica un movimiento.
// ADJUSTMENT guarda solo la magnitud; su signo sale de la dirección previous -> new.
func SignedDelta(m *entity.StockMovement) decimal.Decimal {
	switch {
	case IsInbound(m.Type):
		return m.Quantity
	case IsOutbound(m.Type):
		return m.Quantity.Neg()
	case m.Type == entity.MovementAdjustment:
		if m.NewStock.LessThan(m.PreviousStock) {
			return m.Quantity.Neg()
		}
		return m.Quantity
	}
	return decimal.Zero
}

// NextStockIn calcula el stock resultante de una entrada y valida la capacidad máxima.
func NextStockIn(productID string, current decimal.Decimal, maximum *decimal.Decimal, qty decimal.Decimal) (decimal.Decimal, error) {
	if !qty.GreaterThan(decimal.Zero) {
		return decimal.Zero, domain.Validationf("la cantidad debe ser mayor a cero")
	}
	next := current.Add(qty)
	if maximum != nil && next.GreaterThan(*maximum) {
		return decimal.Zero, &domain.StockError{
			Kind: domain.ErrOverCapacity, ProductID: productID,
			Available: current, Requested: qty, Limit: *maximum,
		}
	}
	return next, nil
}

// NextStockOut calcula el stock resultante de una salida; nunca permite negativo.
func NextStockOut(productID string, current, qty decimal.Decimal) (decimal.Decimal, error) {
	if !qty.GreaterThan(decimal.Zero) {
		return decimal.Zero, domain.Validationf("la cantidad debe ser mayor a cero")
	}
	if qty.GreaterThan(current) {
		return decimal.Zero, &domain.StockError{
			Kind: domain.ErrInsufficientStock, ProductID: productID,
			Available: current, Requested: qty,
		}
	}
	return current.Sub(qty), nil
}

// AdjustmentQuantity devuelve la magnitud |target - current| a registrar en un ajuste.
func AdjustmentQuantity(current, target decimal.Decimal) (decimal.Decimal, error) {
	if target.IsNegative() {
		return decimal.Zero, domain.Validationf("el stock ajustado no puede ser negativo")
	}
	return target.Sub(current).Abs(), nil
}

// ChainReport resultado de reproducir el libro de un producto.
type ChainReport struct {
	ProductID     string
	Movements     int
	Replayed      decimal.Decimal // stock reconstruido a partir de los movimientos
	CurrentStock  decimal.Decimal
	Consistent    bool
	FirstBrokenAt int // índice del primer movimiento inconsistente, -1 si ninguno
	BrokenReason  string
}

// Replay recorre los movimientos (orden cronológico ascendente) y verifica que
// previous + delta == new en cada fila y que cada new enlace con el previous siguiente.
// El punto de partida es el PreviousStock del primer movimiento (stock inicial de carga).
func Replay(productID string, movements []*entity.StockMovement, current decimal.Decimal) *ChainReport {
	rep := &ChainReport{ProductID: productID, Movements: len(movements), CurrentStock: current, FirstBrokenAt: -1}
	if len(movements) == 0 {
		rep.Replayed = current
		rep.Consistent = true
		return rep
	}
	stock := movements[0].PreviousStock
	for i, m := range movements {
		if !m.PreviousStock.Equal(stock) && rep.FirstBrokenAt < 0 {
			rep.FirstBrokenAt = i
			rep.BrokenReason = fmt.Sprintf("previous %s no enlaza con %s", m.PreviousStock, stock)
		}
		next := m.PreviousStock.Add(SignedDelta(m))
		if !next.Equal(m.NewStock) && rep.FirstBrokenAt < 0 {
			rep.FirstBrokenAt = i
			rep.BrokenReason = fmt.Sprintf("previous %s + delta no da new %s", m.PreviousStock, m.NewStock)
		}
		if m.NewStock.IsNegative() && rep.FirstBrokenAt < 0 {
			rep.FirstBrokenAt = i
			rep.BrokenReason = "stock negativo"
		}
		stock = m.NewStock
	}
	rep.Replayed = stock
	rep.Consistent = rep.FirstBrokenAt < 0 && stock.Equal(current)
	if rep.FirstBrokenAt < 0 && !rep.Consistent {
		rep.BrokenReason = fmt.Sprintf("reconstruido %s distinto de actual %s", stock, current)
	}
	return rep
}
