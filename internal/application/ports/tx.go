package ports

import (
	"context"

	"github.com/jhoicas/Mantenimiento-api/internal/domain/repository"
)

// TxRepos repositorios atados a una misma transacción de BD.
type TxRepos struct {
	Products       repository.ProductRepository
	Movements      repository.StockMovementRepository
	Suppliers      repository.SupplierRepository
	PurchaseOrders repository.PurchaseOrderRepository
	GRNs           repository.GRNRepository
	Consumptions   repository.ConsumptionRepository
}

// TxRunner ejecuta fn dentro de una transacción: Commit si fn retorna nil,
// Rollback completo en cualquier otro caso (incluido panic). No reintenta.
// Las mutaciones de stock deben leer con GetForUpdate dentro de fn.
type TxRunner interface {
	Run(ctx context.Context, fn func(repos TxRepos) error) error
}
