package repository

import (
	"context"

	"github.com/jhoicas/Mantenimiento-api/internal/domain/entity"
)

// ConsumptionRepository puerto de los consumos de repuestos por flujos externos.
type ConsumptionRepository interface {
	Create(ctx context.Context, record *entity.ConsumptionRecord) error
	ListByOrigin(ctx context.Context, originID string) ([]*entity.ConsumptionRecord, error)
}
