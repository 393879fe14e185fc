package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/Mantenimiento-api/internal/domain/entity"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/repository"
)

var _ repository.ConsumptionRepository = (*ConsumptionRepo)(nil)

// ConsumptionRepo consumos de repuestos sobre PostgreSQL.
type ConsumptionRepo struct {
	q Querier
}

// NewConsumptionRepository construye el adaptador. Pasar pool o tx (Querier).
func NewConsumptionRepository(q Querier) *ConsumptionRepo {
	return &ConsumptionRepo{q: q}
}

// Create inserta el registro.
func (r *ConsumptionRepo) Create(ctx context.Context, c *entity.ConsumptionRecord) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO consumption_records (id, origin_id, product_id, quantity, unit_cost, total_cost, movement_id, performed_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		c.ID, c.OriginID, c.ProductID, c.Quantity, c.UnitCost, c.TotalCost, c.MovementID, c.PerformedBy, c.CreatedAt,
	)
	if err != nil {
		return wrap("insert consumption", err)
	}
	return nil
}

// ListByOrigin consumos del origen, del más antiguo al más reciente.
func (r *ConsumptionRepo) ListByOrigin(ctx context.Context, originID string) ([]*entity.ConsumptionRecord, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, origin_id, product_id, quantity, unit_cost, total_cost, movement_id, performed_by, created_at
		FROM consumption_records WHERE origin_id = $1 ORDER BY created_at, id`, originID)
	if err != nil {
		return nil, wrap("list consumptions", err)
	}
	defer rows.Close()
	list := []*entity.ConsumptionRecord{}
	for rows.Next() {
		var c entity.ConsumptionRecord
		if err := rows.Scan(&c.ID, &c.OriginID, &c.ProductID, &c.Quantity, &c.UnitCost, &c.TotalCost,
			&c.MovementID, &c.PerformedBy, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan consumption: %w", err)
		}
		list = append(list, &c)
	}
	return list, rows.Err()
}
