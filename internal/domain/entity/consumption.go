package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ConsumptionRecord repuesto consumido por un flujo externo (p. ej. una orden de servicio).
// OriginID es una etiqueta opaca; este núcleo no conoce la entidad de origen.
type ConsumptionRecord struct {
	ID          string
	OriginID    string
	ProductID   string
	Quantity    decimal.Decimal
	UnitCost    decimal.Decimal
	TotalCost   decimal.Decimal
	MovementID  string
	PerformedBy string
	CreatedAt   time.Time
}
