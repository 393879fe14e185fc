package inventory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/jhoicas/Mantenimiento-api/internal/application/inventory"
	"github.com/jhoicas/Mantenimiento-api/internal/domain"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/entity"
	"github.com/jhoicas/Mantenimiento-api/internal/infrastructure/memory"
)

func reorderAt(level string) func(p *entity.Product) {
	return func(p *entity.Product) { p.ReorderLevel = d(level) }
}

func TestListLowStock_TotalEsElFiltrado(t *testing.T) {
	store := memory.NewStore()
	seedProduct(t, store, "a", "3", reorderAt("5"))
	seedProduct(t, store, "b", "5", reorderAt("5"))
	seedProduct(t, store, "c", "6", reorderAt("5"))
	seedProduct(t, store, "d", "0", reorderAt("0"))
	seedProduct(t, store, "e", "1", reorderAt("5"), func(p *entity.Product) { p.IsActive = false })
	uc := inventory.NewLowStockUseCase(store.Products())

	items, total, err := uc.ListLowStock(context.Background(), "", 1, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, total, "total debe contar solo a y b")
	require.Len(t, items, 1)
	assert.Equal(t, "a", items[0].ID, "el de menor stock primero")

	items, total, err = uc.ListLowStock(context.Background(), "", 1, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, items, 1)
	assert.Equal(t, "b", items[0].ID)
}

func TestListLowStock_FiltraPorSucursal(t *testing.T) {
	store := memory.NewStore()
	seedProduct(t, store, "a", "1", reorderAt("5"))
	seedProduct(t, store, "b", "1", reorderAt("5"), func(p *entity.Product) { p.BranchID = "branch-2" })
	uc := inventory.NewLowStockUseCase(store.Products())

	items, total, err := uc.ListLowStock(context.Background(), "branch-2", 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, items, 1)
	assert.Equal(t, "b", items[0].ID)
}

func TestListLowStock_PaginacionInvalida(t *testing.T) {
	uc := inventory.NewLowStockUseCase(memory.NewStore().Products())
	_, _, err := uc.ListLowStock(context.Background(), "", 0, 0)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestListLowStock_SinResultados_ListaVacia(t *testing.T) {
	uc := inventory.NewLowStockUseCase(memory.NewStore().Products())
	items, total, err := uc.ListLowStock(context.Background(), "", 10, 5)
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
	assert.Zero(t, total)
}
