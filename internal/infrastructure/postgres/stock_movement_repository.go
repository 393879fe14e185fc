package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/entity"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

const movementColumns = `id, branch_id, product_id, type, quantity, unit_cost, previous_stock, new_stock,
	reference_type, reference_id, reason, performed_by, created_at`

// StockMovementRepo libro de stock append-only sobre PostgreSQL. seq (BIGSERIAL) fija el orden cronológico.
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

// Create inserta el movimiento.
func (r *StockMovementRepo) Create(ctx context.Context, m *entity.StockMovement) error {
	query := `INSERT INTO stock_movements (` + movementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.BranchID, m.ProductID, string(m.Type), m.Quantity, m.UnitCost, m.PreviousStock, m.NewStock,
		m.ReferenceType, m.ReferenceID, m.Reason, m.PerformedBy, m.CreatedAt,
	)
	if err != nil {
		return wrap("insert stock movement", err)
	}
	return nil
}

// ListByProduct del más reciente al más antiguo, con total filtrado.
func (r *StockMovementRepo) ListByProduct(ctx context.Context, productID string, filter repository.MovementFilter, limit, offset int) ([]*entity.StockMovement, int, error) {
	if !validID(productID) {
		return []*entity.StockMovement{}, 0, nil
	}
	var total int
	err := r.q.QueryRow(ctx,
		`SELECT COUNT(*) FROM stock_movements WHERE product_id = $1 AND ($2 = '' OR type = $2)`,
		productID, string(filter.Type),
	).Scan(&total)
	if err != nil {
		return nil, 0, wrap("count stock movements", err)
	}

	rows, err := r.q.Query(ctx, `
		SELECT `+movementColumns+` FROM stock_movements
		WHERE product_id = $1 AND ($2 = '' OR type = $2)
		ORDER BY seq DESC LIMIT $3 OFFSET $4`,
		productID, string(filter.Type), limit, offset,
	)
	if err != nil {
		return nil, 0, wrap("list stock movements", err)
	}
	list, err := scanMovements(rows)
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// Chain todos los movimientos del producto en orden cronológico ascendente.
func (r *StockMovementRepo) Chain(ctx context.Context, productID string) ([]*entity.StockMovement, error) {
	if !validID(productID) {
		return []*entity.StockMovement{}, nil
	}
	rows, err := r.q.Query(ctx,
		`SELECT `+movementColumns+` FROM stock_movements WHERE product_id = $1 ORDER BY seq ASC`, productID)
	if err != nil {
		return nil, wrap("stock movement chain", err)
	}
	return scanMovements(rows)
}

func scanMovements(rows pgx.Rows) ([]*entity.StockMovement, error) {
	defer rows.Close()
	list := []*entity.StockMovement{}
	for rows.Next() {
		var (
			m   entity.StockMovement
			typ string
		)
		if err := rows.Scan(
			&m.ID, &m.BranchID, &m.ProductID, &typ, &m.Quantity, &m.UnitCost, &m.PreviousStock, &m.NewStock,
			&m.ReferenceType, &m.ReferenceID, &m.Reason, &m.PerformedBy, &m.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan stock movement: %w", err)
		}
		m.Type = entity.MovementType(typ)
		list = append(list, &m)
	}
	return list, rows.Err()
}
