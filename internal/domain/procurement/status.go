// Package procurement contiene las reglas puras del ciclo de compras:
// máquina de estados de la orden, totales y derivación de estados por recepción.
package procurement

import (
	"github.com/shopspring/decimal"
	"github.com/jhoicas/Mantenimiento-api/internal/domain"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/entity"
)

// transitions tabla de transiciones manuales legales. CANCELLED y CLOSED son terminales.
var transitions = map[entity.PurchaseOrderStatus][]entity.PurchaseOrderStatus{
	entity.POStatusDraft:             {entity.POStatusSubmitted, entity.POStatusCancelled},
	entity.POStatusSubmitted:         {entity.POStatusApproved, entity.POStatusCancelled},
	entity.POStatusApproved:          {entity.POStatusPartiallyReceived, entity.POStatusReceived, entity.POStatusCancelled},
	entity.POStatusPartiallyReceived: {entity.POStatusReceived, entity.POStatusClosed},
	entity.POStatusReceived:          {entity.POStatusClosed},
	entity.POStatusCancelled:         {},
	entity.POStatusClosed:            {},
}

// AllowedTransitions devuelve los destinos válidos desde el estado (copia).
func AllowedTransitions(from entity.PurchaseOrderStatus) []entity.PurchaseOrderStatus {
	allowed := transitions[from]
	out := make([]entity.PurchaseOrderStatus, len(allowed))
	copy(out, allowed)
	return out
}

// IsTerminal indica si el estado no tiene salidas.
func IsTerminal(s entity.PurchaseOrderStatus) bool {
	return len(transitions[s]) == 0
}

// CanTransition verifica la transición contra la tabla.
func CanTransition(from, to entity.PurchaseOrderStatus) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// ValidateTransition devuelve *domain.TransitionError si from -> to no es legal.
func ValidateTransition(from, to entity.PurchaseOrderStatus) error {
	if CanTransition(from, to) {
		return nil
	}
	allowed := transitions[from]
	names := make([]string, 0, len(allowed))
	for _, s := range allowed {
		names = append(names, string(s))
	}
	return &domain.TransitionError{From: string(from), To: string(to), Allowed: names}
}

// DeriveReceiptStatus recalcula el estado de la orden a partir de las cantidades recibidas.
// Todas las líneas completas -> RECEIVED; alguna con recepción -> PARTIALLY_RECEIVED;
// si no, se conserva el estado actual. changed indica si hay que persistir.
func DeriveReceiptStatus(current entity.PurchaseOrderStatus, items []*entity.PurchaseOrderItem) (next entity.PurchaseOrderStatus, changed bool) {
	if len(items) == 0 {
		return current, false
	}
	allReceived, anyReceived := true, false
	for _, it := range items {
		if it.ReceivedQty.LessThan(it.Quantity) {
			allReceived = false
		}
		if it.ReceivedQty.GreaterThan(decimal.Zero) {
			anyReceived = true
		}
	}
	next = current
	switch {
	case allReceived:
		next = entity.POStatusReceived
	case anyReceived:
		next = entity.POStatusPartiallyReceived
	}
	return next, next != current
}

// DeriveGRNStatus resume la inspección: todo aceptado, todo rechazado o mixto.
func DeriveGRNStatus(items []*entity.GRNItem) entity.GRNStatus {
	if len(items) == 0 {
		return entity.GRNStatusPending
	}
	allAccepted, noneAccepted := true, true
	for _, it := range items {
		if !it.AcceptedQty.Equal(it.ReceivedQty) {
			allAccepted = false
		}
		if it.AcceptedQty.GreaterThan(decimal.Zero) {
			noneAccepted = false
		}
	}
	switch {
	case allAccepted:
		return entity.GRNStatusAccepted
	case noneAccepted:
		return entity.GRNStatusRejected
	}
	return entity.GRNStatusPartiallyAccepted
}
