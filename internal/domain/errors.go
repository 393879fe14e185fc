package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Errores de dominio (sin dependencias de infraestructura).
var (
	ErrValidation         = errors.New("entrada inválida")
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrConflict           = errors.New("conflicto con el estado actual")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrInvalidTransition  = errors.New("transición de estado inválida")
	ErrInsufficientStock  = errors.New("stock insuficiente")
	ErrOverCapacity       = errors.New("stock máximo excedido")
	ErrTransactionFailure = errors.New("falla de transacción")
)

// TransitionError describe un cambio de estado rechazado por la máquina de estados.
// Allowed contiene los estados destino válidos desde From (vacío si From es terminal).
type TransitionError struct {
	From    string
	To      string
	Allowed []string
}

func (e *TransitionError) Error() string {
	allowed := "ninguno"
	if len(e.Allowed) > 0 {
		allowed = strings.Join(e.Allowed, ", ")
	}
	return fmt.Sprintf("no se puede pasar de %s a %s; permitidos: %s", e.From, e.To, allowed)
}

// Unwrap permite errors.Is(err, ErrInvalidTransition); si el estado actual es terminal
// también coincide con ErrConflict.
func (e *TransitionError) Unwrap() []error {
	if len(e.Allowed) == 0 {
		return []error{ErrInvalidTransition, ErrConflict}
	}
	return []error{ErrInvalidTransition}
}

// StockError detalla un rechazo de stock (insuficiente o sobre capacidad).
type StockError struct {
	Kind      error // ErrInsufficientStock o ErrOverCapacity
	ProductID string
	Available decimal.Decimal
	Requested decimal.Decimal
	Limit     decimal.Decimal // solo para ErrOverCapacity
}

func (e *StockError) Error() string {
	if errors.Is(e.Kind, ErrOverCapacity) {
		return fmt.Sprintf("%s: producto %s, actual %s, entrada %s, máximo %s",
			e.Kind, e.ProductID, e.Available, e.Requested, e.Limit)
	}
	return fmt.Sprintf("%s: producto %s, disponible %s, solicitado %s",
		e.Kind, e.ProductID, e.Available, e.Requested)
}

func (e *StockError) Unwrap() error { return e.Kind }

// Validationf construye un ErrValidation con detalle.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// NotFoundf construye un ErrNotFound con detalle.
func NotFoundf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

// Conflictf construye un ErrConflict con detalle.
func Conflictf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConflict, fmt.Sprintf(format, args...))
}
