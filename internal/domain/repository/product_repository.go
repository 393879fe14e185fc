package repository

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para Product (DIP).
// El maestro de productos es externo: este puerto solo lee y actualiza CurrentStock.
type ProductRepository interface {
	// GetByID devuelve nil, nil si no existe.
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	// GetForUpdate lee el producto bloqueando la fila hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, id string) (*entity.Product, error)
	UpdateStock(ctx context.Context, id string, stock decimal.Decimal) error
	// ListLowStock devuelve productos activos con CurrentStock <= ReorderLevel (ReorderLevel > 0),
	// paginados, y el total filtrado (no el tamaño de la página).
	ListLowStock(ctx context.Context, branchID string, limit, offset int) ([]*entity.Product, int, error)
}
