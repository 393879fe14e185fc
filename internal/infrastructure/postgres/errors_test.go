package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/jhoicas/Mantenimiento-api/internal/domain"
)

func TestWrap_DeadlockEsTransactionFailure(t *testing.T) {
	err := wrap("update product stock", &pgconn.PgError{Code: codeDeadlockDetected})
	assert.True(t, errors.Is(err, domain.ErrTransactionFailure))
	assert.True(t, IsRetryable(err))

	err = wrap("update product stock", &pgconn.PgError{Code: codeSerializationFailure})
	assert.True(t, errors.Is(err, domain.ErrTransactionFailure))

	err = wrap("lock product", &pgconn.PgError{Code: codeLockNotAvailable})
	assert.True(t, errors.Is(err, domain.ErrTransactionFailure))
	assert.True(t, IsRetryable(err))
}

func TestWrap_OtrosErroresNoSeMarcan(t *testing.T) {
	err := wrap("insert grn", fmt.Errorf("conexión cerrada"))
	assert.False(t, errors.Is(err, domain.ErrTransactionFailure))
	assert.False(t, IsRetryable(err))
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(fmt.Errorf("insert: %w", &pgconn.PgError{Code: codeUniqueViolation})))
	assert.False(t, isUniqueViolation(errors.New("23505 en el texto no basta")))
}

func TestValidID_SoloUUID(t *testing.T) {
	assert.True(t, validID("7b0c6a52-8f51-4c43-9d7e-3f7b4a1f2c10"))
	for _, bad := range []string{"", "p-1", "nope", "7b0c6a52-8f51-4c43-9d7e"} {
		assert.False(t, validID(bad), bad)
	}
}
