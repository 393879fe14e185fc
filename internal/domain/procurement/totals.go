package procurement

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/jhoicas/Mantenimiento-api/internal/domain"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/entity"
)

// Totals resultado del cálculo de la orden.
type Totals struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Discount decimal.Decimal
	Total    decimal.Decimal
}

// ComputeTotals fija TotalPrice de cada línea (qty × precio, a 4 decimales) y calcula
// subtotal = Σ líneas, total = subtotal + impuesto − descuento.
func ComputeTotals(items []*entity.PurchaseOrderItem, tax, discount decimal.Decimal) Totals {
	subtotal := decimal.Zero
	for _, it := range items {
		it.TotalPrice = it.Quantity.Mul(it.UnitPrice).Round(domain.Scale)
		subtotal = subtotal.Add(it.TotalPrice)
	}
	return Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Discount: discount,
		Total:    subtotal.Add(tax).Sub(discount),
	}
}

// Prefijos de numeración.
const (
	PrefixPurchaseOrder = "PO"
	PrefixGRN           = "GRN"
)

// ReferenceNumber genera un consecutivo legible PREFIJO-AAMM-XXXXXX
// (sufijo aleatorio de 6 caracteres hex en mayúscula). La unicidad final la garantiza la BD.
func ReferenceNumber(prefix string, now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:6]
	return fmt.Sprintf("%s-%s-%s", prefix, now.Format("0601"), suffix)
}
