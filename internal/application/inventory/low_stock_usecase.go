package inventory

import (
	"context"

	"github.com/jhoicas/Mantenimiento-api/internal/domain/entity"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/repository"
)

// LowStockUseCase lista productos activos en o bajo su punto de reorden.
type LowStockUseCase struct {
	products repository.ProductRepository
}

// NewLowStockUseCase construye el detector de stock bajo.
func NewLowStockUseCase(products repository.ProductRepository) *LowStockUseCase {
	return &LowStockUseCase{products: products}
}

// ListLowStock devuelve la página pedida y el total filtrado. branchID vacío = todas las sucursales.
// Orden: stock actual ascendente (los más críticos primero).
func (uc *LowStockUseCase) ListLowStock(ctx context.Context, branchID string, limit, offset int) ([]*entity.Product, int, error) {
	if err := validatePage(limit, offset); err != nil {
		return nil, 0, err
	}
	items, total, err := uc.products.ListLowStock(ctx, branchID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	if items == nil {
		items = []*entity.Product{}
	}
	return items, total, nil
}
