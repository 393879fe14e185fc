package domain

import "github.com/shopspring/decimal"

// Scale decimales que persisten las columnas NUMERIC(18,4) de cantidades y montos.
const Scale int32 = 4

// CheckScale rechaza valores con más de Scale decimales significativos; PostgreSQL
// los redondearía y la respuesta no coincidiría con lo guardado.
func CheckScale(field string, v decimal.Decimal) error {
	if !v.Equal(v.Truncate(Scale)) {
		return Validationf("%s admite como máximo %d decimales", field, Scale)
	}
	return nil
}
