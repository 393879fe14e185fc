package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/Mantenimiento-api/internal/application/ports"
	"github.com/jhoicas/Mantenimiento-api/internal/domain"
)

var _ ports.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL (READ COMMITTED).
// Los repositorios bloquean filas con SELECT ... FOR UPDATE cuando mutan stock u órdenes.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
func (r *TxRunner) Run(ctx context.Context, fn func(repos ports.TxRepos) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("%w: begin transaction: %w", domain.ErrTransactionFailure, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(Repos(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%w: commit transaction: %w", domain.ErrTransactionFailure, err)
	}
	return nil
}

// Repos construye todos los repositorios sobre q (pool para lecturas, tx dentro de Run).
func Repos(q Querier) ports.TxRepos {
	return ports.TxRepos{
		Products:       NewProductRepository(q),
		Movements:      NewStockMovementRepository(q),
		Suppliers:      NewSupplierRepository(q),
		PurchaseOrders: NewPurchaseOrderRepository(q),
		GRNs:           NewGRNRepository(q),
		Consumptions:   NewConsumptionRepository(q),
	}
}
