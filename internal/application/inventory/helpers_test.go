package inventory_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/jhoicas/Mantenimiento-api/internal/application/ports"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/entity"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/repository"
	"github.com/jhoicas/Mantenimiento-api/internal/infrastructure/memory"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func dp(s string) *decimal.Decimal {
	v := d(s)
	return &v
}

func seedProduct(t *testing.T, store *memory.Store, id, stock string, mutate ...func(p *entity.Product)) *entity.Product {
	t.Helper()
	p := &entity.Product{
		ID:           id,
		BranchID:     "branch-1",
		SKU:          "SKU-" + id,
		Name:         "Repuesto " + id,
		Unit:         "PCS",
		CurrentStock: d(stock),
		IsActive:     true,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	for _, m := range mutate {
		m(p)
	}
	store.PutProduct(p)
	return p
}

func currentStock(t *testing.T, store *memory.Store, id string) decimal.Decimal {
	t.Helper()
	p, err := store.Products().GetByID(context.Background(), id)
	if err != nil || p == nil {
		t.Fatalf("producto %s no encontrado: %v", id, err)
	}
	return p.CurrentStock
}

// recordingPublisher guarda los eventos publicados; err simula un broker caído.
// block hace esperar al publisher hasta que venza el contexto (broker lento).
type recordingPublisher struct {
	mu     sync.Mutex
	events []ports.Event
	err    error
	block  bool
	ctxs   []context.Context
}

func (p *recordingPublisher) Publish(ctx context.Context, events ...ports.Event) error {
	if p.block {
		<-ctx.Done()
		return ctx.Err()
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ctxs = append(p.ctxs, ctx)
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, events...)
	return nil
}

func (p *recordingPublisher) names() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Name)
	}
	return out
}

var errMovementStore = errors.New("falla simulada al guardar movimiento")

// failingMovementsRunner corre sobre el store real pero el Create de movimientos falla.
type failingMovementsRunner struct{ store *memory.Store }

func (r failingMovementsRunner) Run(ctx context.Context, fn func(repos ports.TxRepos) error) error {
	return r.store.Run(ctx, func(repos ports.TxRepos) error {
		repos.Movements = failingMovements{repos.Movements}
		return fn(repos)
	})
}

type failingMovements struct {
	repository.StockMovementRepository
}

func (failingMovements) Create(context.Context, *entity.StockMovement) error { return errMovementStore }
