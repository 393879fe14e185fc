// Package catalog lee el maestro externo de productos y proveedores desde CSV.
// Los ERP locales suelen exportar en ISO-8859-1 o Windows-1252; el texto se
// convierte a UTF-8 antes de parsear.
package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/Mantenimiento-api/internal/domain/entity"
)

// Decoder envuelve r según el charset declarado.
func Decoder(r io.Reader, charset string) (io.Reader, error) {
	switch strings.ToLower(strings.TrimSpace(charset)) {
	case "", "utf-8", "utf8":
		return r, nil
	case "iso-8859-1", "iso8859-1", "latin1":
		return transform.NewReader(r, charmap.ISO8859_1.NewDecoder()), nil
	case "windows-1252", "cp1252":
		return transform.NewReader(r, charmap.Windows1252.NewDecoder()), nil
	}
	return nil, fmt.Errorf("catalog: charset %q no soportado", charset)
}

// Columnas del CSV de productos. maximum_stock vacío = sin límite.
var productColumns = []string{
	"id", "branch_id", "sku", "name", "unit", "current_stock", "minimum_stock", "maximum_stock",
	"reorder_level", "reorder_quantity", "unit_price", "cost_price", "is_active",
}

// Columnas del CSV de proveedores.
var supplierColumns = []string{"id", "code", "name", "is_active"}

// ReadProducts parsea el CSV de productos (con encabezado, separador coma o punto y coma).
func ReadProducts(r io.Reader, charset string) ([]*entity.Product, error) {
	rows, err := readRows(r, charset, productColumns)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	out := make([]*entity.Product, 0, len(rows))
	for i, row := range rows {
		line := i + 2
		p := &entity.Product{
			ID: row["id"], BranchID: row["branch_id"], SKU: row["sku"], Name: row["name"],
			Unit: nonEmpty(row["unit"], "PCS"), CreatedAt: now, UpdatedAt: now,
		}
		if p.ID == "" || p.SKU == "" {
			return nil, fmt.Errorf("catalog: línea %d: id y sku son requeridos", line)
		}
		fields := []struct {
			col string
			dst *decimal.Decimal
		}{
			{"current_stock", &p.CurrentStock},
			{"minimum_stock", &p.MinimumStock},
			{"reorder_level", &p.ReorderLevel},
			{"reorder_quantity", &p.ReorderQuantity},
			{"unit_price", &p.UnitPrice},
			{"cost_price", &p.CostPrice},
		}
		for _, f := range fields {
			if *f.dst, err = parseDecimal(row[f.col]); err != nil {
				return nil, fmt.Errorf("catalog: línea %d, %s: %w", line, f.col, err)
			}
		}
		if p.CurrentStock.IsNegative() {
			return nil, fmt.Errorf("catalog: línea %d: current_stock negativo", line)
		}
		if raw := row["maximum_stock"]; raw != "" {
			m, err := parseDecimal(raw)
			if err != nil {
				return nil, fmt.Errorf("catalog: línea %d, maximum_stock: %w", line, err)
			}
			p.MaximumStock = &m
		}
		if p.IsActive, err = parseBool(row["is_active"]); err != nil {
			return nil, fmt.Errorf("catalog: línea %d, is_active: %w", line, err)
		}
		out = append(out, p)
	}
	return out, nil
}

// ReadSuppliers parsea el CSV de proveedores.
func ReadSuppliers(r io.Reader, charset string) ([]*entity.Supplier, error) {
	rows, err := readRows(r, charset, supplierColumns)
	if err != nil {
		return nil, err
	}
	out := make([]*entity.Supplier, 0, len(rows))
	for i, row := range rows {
		s := &entity.Supplier{ID: row["id"], Code: row["code"], Name: row["name"]}
		if s.ID == "" {
			return nil, fmt.Errorf("catalog: línea %d: id es requerido", i+2)
		}
		if s.IsActive, err = parseBool(row["is_active"]); err != nil {
			return nil, fmt.Errorf("catalog: línea %d, is_active: %w", i+2, err)
		}
		out = append(out, s)
	}
	return out, nil
}

// readRows lee el archivo completo y devuelve cada fila indexada por columna.
// Columnas desconocidas se ignoran; faltantes quedan vacías.
func readRows(r io.Reader, charset string, known []string) ([]map[string]string, error) {
	dec, err := Decoder(r, charset)
	if err != nil {
		return nil, err
	}
	raw, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("catalog: leer: %w", err)
	}
	text := strings.TrimPrefix(string(raw), "\ufeff")

	cr := csv.NewReader(strings.NewReader(text))
	cr.Comma = detectComma(text)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("catalog: encabezado: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.ToLower(strings.TrimSpace(h))] = i
	}
	if _, ok := index["id"]; !ok {
		return nil, fmt.Errorf("catalog: falta la columna id")
	}

	var out []map[string]string
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("catalog: %w", err)
		}
		row := make(map[string]string, len(known))
		for _, col := range known {
			if i, ok := index[col]; ok && i < len(rec) {
				row[col] = strings.TrimSpace(rec[i])
			}
		}
		out = append(out, row)
	}
	return out, nil
}

// detectComma usa ';' si la primera línea lo contiene y no tiene comas (export típico de Excel en es-CO).
func detectComma(text string) rune {
	first, _, _ := strings.Cut(text, "\n")
	if strings.Contains(first, ";") && !strings.Contains(first, ",") {
		return ';'
	}
	return ','
}

func parseDecimal(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "", "1", "true", "si", "sí", "s", "yes":
		return true, nil
	case "0", "false", "no", "n":
		return false, nil
	}
	return strconv.ParseBool(s)
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
