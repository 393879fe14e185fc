package repository

import (
	"context"

	"github.com/jhoicas/Mantenimiento-api/internal/domain/entity"
)

// MovementFilter filtros opcionales para listar movimientos.
type MovementFilter struct {
	Type entity.MovementType // vacío = todos
}

// StockMovementRepository puerto del libro de stock (append-only: no hay Update ni Delete).
type StockMovementRepository interface {
	Create(ctx context.Context, movement *entity.StockMovement) error
	// ListByProduct lista del más reciente al más antiguo, con total para paginación.
	ListByProduct(ctx context.Context, productID string, filter MovementFilter, limit, offset int) ([]*entity.StockMovement, int, error)
	// Chain devuelve todos los movimientos del producto en orden cronológico ascendente.
	Chain(ctx context.Context, productID string) ([]*entity.StockMovement, error)
}
