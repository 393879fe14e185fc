package postgres

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jhoicas/Mantenimiento-api/internal/domain"
)

// Códigos SQLSTATE relevantes.
const (
	codeUniqueViolation      = "23505"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeLockNotAvailable     = "55P03" // lock_timeout vencido esperando un FOR UPDATE
)

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	return pgCode(err) == codeUniqueViolation
}

// IsRetryable indica si la transacción falló por serialización, deadlock o espera de bloqueo
// y puede reintentarse.
func IsRetryable(err error) bool {
	switch pgCode(err) {
	case codeSerializationFailure, codeDeadlockDetected, codeLockNotAvailable:
		return true
	}
	return false
}

// wrap marca las fallas reintentables como ErrTransactionFailure conservando el error original.
func wrap(op string, err error) error {
	if IsRetryable(err) {
		return fmt.Errorf("%s: %w: %w", op, domain.ErrTransactionFailure, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// validID indica si id puede compararse con una columna UUID. Un id mal formado se trata
// como inexistente antes de consultar: el 22P02 abortaría la transacción en curso.
func validID(id string) bool {
	return uuid.Validate(id) == nil
}
