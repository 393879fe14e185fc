package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/jhoicas/Mantenimiento-api/internal/domain"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/entity"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

const productColumns = `id, branch_id, sku, name, unit, current_stock, minimum_stock, maximum_stock,
	reorder_level, reorder_quantity, unit_price, cost_price, is_active, created_at, updated_at`

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

func scanProduct(row pgx.Row, p *entity.Product) error {
	return row.Scan(
		&p.ID, &p.BranchID, &p.SKU, &p.Name, &p.Unit, &p.CurrentStock, &p.MinimumStock, &p.MaximumStock,
		&p.ReorderLevel, &p.ReorderQuantity, &p.UnitPrice, &p.CostPrice, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
	)
}

// GetByID obtiene un producto por ID; nil, nil si no existe.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	return r.get(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
}

// GetForUpdate obtiene el producto y bloquea la fila hasta el fin de la transacción (SELECT FOR UPDATE).
func (r *ProductRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	return r.get(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1 FOR UPDATE`, id)
}

func (r *ProductRepo) get(ctx context.Context, query, id string) (*entity.Product, error) {
	if !validID(id) {
		return nil, nil
	}
	var p entity.Product
	if err := scanProduct(r.q.QueryRow(ctx, query, id), &p); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrap("get product", err)
	}
	return &p, nil
}

// UpdateStock fija current_stock. El CHECK de la tabla impide negativos.
func (r *ProductRepo) UpdateStock(ctx context.Context, id string, stock decimal.Decimal) error {
	if !validID(id) {
		return domain.NotFoundf("producto %s", id)
	}
	cmd, err := r.q.Exec(ctx, `UPDATE products SET current_stock = $2, updated_at = now() WHERE id = $1`, id, stock)
	if err != nil {
		return wrap("update product stock", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.NotFoundf("producto %s", id)
	}
	return nil
}

// ListLowStock compara columnas en SQL; COUNT(*) OVER() da el total filtrado antes de LIMIT.
func (r *ProductRepo) ListLowStock(ctx context.Context, branchID string, limit, offset int) ([]*entity.Product, int, error) {
	query := `
		SELECT ` + productColumns + `, COUNT(*) OVER() AS total
		FROM products
		WHERE is_active AND reorder_level > 0 AND current_stock <= reorder_level
		  AND ($1 = '' OR branch_id::text = $1)
		ORDER BY current_stock ASC, sku ASC
		LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, branchID, limit, offset)
	if err != nil {
		return nil, 0, wrap("list low stock", err)
	}
	defer rows.Close()

	list := []*entity.Product{}
	total := 0
	for rows.Next() {
		var p entity.Product
		if err := rows.Scan(
			&p.ID, &p.BranchID, &p.SKU, &p.Name, &p.Unit, &p.CurrentStock, &p.MinimumStock, &p.MaximumStock,
			&p.ReorderLevel, &p.ReorderQuantity, &p.UnitPrice, &p.CostPrice, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
			&total,
		); err != nil {
			return nil, 0, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, wrap("list low stock", err)
	}
	if len(list) == 0 && offset > 0 {
		// Página fuera de rango: el total sale de una consulta aparte.
		err := r.q.QueryRow(ctx, `
			SELECT COUNT(*) FROM products
			WHERE is_active AND reorder_level > 0 AND current_stock <= reorder_level
			  AND ($1 = '' OR branch_id::text = $1)`, branchID).Scan(&total)
		if err != nil {
			return nil, 0, wrap("count low stock", err)
		}
	}
	return list, total, nil
}

// Upsert carga o actualiza un producto del maestro externo. En conflicto no toca current_stock:
// a partir de la primera carga el stock solo cambia por el libro.
func (r *ProductRepo) Upsert(ctx context.Context, p *entity.Product) error {
	query := `
		INSERT INTO products (` + productColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (id) DO UPDATE SET
			branch_id = EXCLUDED.branch_id, sku = EXCLUDED.sku, name = EXCLUDED.name, unit = EXCLUDED.unit,
			minimum_stock = EXCLUDED.minimum_stock,
			maximum_stock = EXCLUDED.maximum_stock, reorder_level = EXCLUDED.reorder_level,
			reorder_quantity = EXCLUDED.reorder_quantity, unit_price = EXCLUDED.unit_price,
			cost_price = EXCLUDED.cost_price, is_active = EXCLUDED.is_active, updated_at = EXCLUDED.updated_at`
	_, err := r.q.Exec(ctx, query,
		p.ID, p.BranchID, p.SKU, p.Name, p.Unit, p.CurrentStock, p.MinimumStock, p.MaximumStock,
		p.ReorderLevel, p.ReorderQuantity, p.UnitPrice, p.CostPrice, p.IsActive, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return wrap("upsert product", err)
	}
	return nil
}
