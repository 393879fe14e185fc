package domain_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/Mantenimiento-api/internal/domain"
)

func TestCheckScale_MaximoCuatroDecimales(t *testing.T) {
	for _, ok := range []string{"10", "0.0001", "1.2500", "3.50000000"} {
		assert.NoError(t, domain.CheckScale("quantity", decimal.RequireFromString(ok)), ok)
	}
	for _, bad := range []string{"0.00006", "1.23456", "-0.00001"} {
		err := domain.CheckScale("quantity", decimal.RequireFromString(bad))
		assert.ErrorIs(t, err, domain.ErrValidation, bad)
		assert.ErrorContains(t, err, "quantity")
	}
}
