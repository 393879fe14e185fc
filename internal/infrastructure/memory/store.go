// Package memory implementa los puertos de persistencia en memoria para modo demo y tests.
// Las transacciones se serializan con un mutex y trabajan sobre una copia profunda
// del estado que solo reemplaza al original si fn termina sin error.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/jhoicas/Mantenimiento-api/internal/application/ports"
	"github.com/jhoicas/Mantenimiento-api/internal/domain"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/entity"
)

type state struct {
	products     map[string]*entity.Product
	movements    []*entity.StockMovement // orden de inserción = cronológico
	suppliers    map[string]*entity.Supplier
	orders       map[string]*entity.PurchaseOrder
	orderIDs     []string
	grns         map[string]*entity.GRN
	grnIDs       []string
	consumptions []*entity.ConsumptionRecord
}

func newState() *state {
	return &state{
		products:  map[string]*entity.Product{},
		suppliers: map[string]*entity.Supplier{},
		orders:    map[string]*entity.PurchaseOrder{},
		grns:      map[string]*entity.GRN{},
	}
}

// clone copia lo mutable (productos y órdenes con sus líneas). Movimientos, GRN y
// consumos son inmutables: basta copiar los slices.
func (s *state) clone() *state {
	c := &state{
		products:     make(map[string]*entity.Product, len(s.products)),
		movements:    append([]*entity.StockMovement(nil), s.movements...),
		suppliers:    make(map[string]*entity.Supplier, len(s.suppliers)),
		orders:       make(map[string]*entity.PurchaseOrder, len(s.orders)),
		orderIDs:     append([]string(nil), s.orderIDs...),
		grns:         make(map[string]*entity.GRN, len(s.grns)),
		grnIDs:       append([]string(nil), s.grnIDs...),
		consumptions: append([]*entity.ConsumptionRecord(nil), s.consumptions...),
	}
	for id, p := range s.products {
		c.products[id] = copyProduct(p)
	}
	for id, sup := range s.suppliers {
		cp := *sup
		c.suppliers[id] = &cp
	}
	for id, po := range s.orders {
		c.orders[id] = copyOrder(po)
	}
	for id, g := range s.grns {
		c.grns[id] = g
	}
	return c
}

// accessor ejecuta fn sobre el estado que corresponda (transacción en curso o estado confirmado).
type accessor func(fn func(st *state) error) error

// Store base de datos en memoria. Implementa ports.TxRunner.
type Store struct {
	mu sync.Mutex
	st *state
}

var _ ports.TxRunner = (*Store)(nil)

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{st: newState()}
}

// Run ejecuta fn con repositorios atados a una copia del estado. Si fn retorna error
// (o hace panic) la copia se descarta; si no, reemplaza al estado confirmado.
func (s *Store) Run(ctx context.Context, fn func(repos ports.TxRepos) error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: begin transaction: %v", domain.ErrTransactionFailure, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.st.clone()
	tx := func(fn func(st *state) error) error { return fn(work) }
	if err := fn(reposFor(tx)); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: commit transaction: %v", domain.ErrTransactionFailure, err)
	}
	s.st = work
	return nil
}

func (s *Store) committed(fn func(st *state) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.st)
}

func reposFor(with accessor) ports.TxRepos {
	return ports.TxRepos{
		Products:       &ProductRepo{with: with},
		Movements:      &StockMovementRepo{with: with},
		Suppliers:      &SupplierRepo{with: with},
		PurchaseOrders: &PurchaseOrderRepo{with: with},
		GRNs:           &GRNRepo{with: with},
		Consumptions:   &ConsumptionRepo{with: with},
	}
}

// Repos devuelve repositorios fuera de transacción (lecturas sobre el estado confirmado).
func (s *Store) Repos() ports.TxRepos { return reposFor(s.committed) }

// Products repositorio de productos fuera de transacción.
func (s *Store) Products() *ProductRepo { return &ProductRepo{with: s.committed} }

// Movements repositorio de movimientos fuera de transacción.
func (s *Store) Movements() *StockMovementRepo { return &StockMovementRepo{with: s.committed} }

// Suppliers repositorio de proveedores fuera de transacción.
func (s *Store) Suppliers() *SupplierRepo { return &SupplierRepo{with: s.committed} }

// PurchaseOrders repositorio de órdenes fuera de transacción.
func (s *Store) PurchaseOrders() *PurchaseOrderRepo { return &PurchaseOrderRepo{with: s.committed} }

// GRNs repositorio de recepciones fuera de transacción.
func (s *Store) GRNs() *GRNRepo { return &GRNRepo{with: s.committed} }

// Consumptions repositorio de consumos fuera de transacción.
func (s *Store) Consumptions() *ConsumptionRepo { return &ConsumptionRepo{with: s.committed} }

// PutProduct carga o reemplaza un producto (el maestro de productos es externo).
func (s *Store) PutProduct(p *entity.Product) {
	_ = s.committed(func(st *state) error {
		st.products[p.ID] = copyProduct(p)
		return nil
	})
}

// PutSupplier carga o reemplaza un proveedor.
func (s *Store) PutSupplier(sup *entity.Supplier) {
	_ = s.committed(func(st *state) error {
		cp := *sup
		st.suppliers[sup.ID] = &cp
		return nil
	})
}

func copyProduct(p *entity.Product) *entity.Product {
	cp := *p
	if p.MaximumStock != nil {
		m := *p.MaximumStock
		cp.MaximumStock = &m
	}
	return &cp
}

func copyOrder(po *entity.PurchaseOrder) *entity.PurchaseOrder {
	cp := *po
	cp.Items = make([]*entity.PurchaseOrderItem, 0, len(po.Items))
	for _, it := range po.Items {
		item := *it
		cp.Items = append(cp.Items, &item)
	}
	return &cp
}

func copyGRN(g *entity.GRN) *entity.GRN {
	cp := *g
	cp.Items = make([]*entity.GRNItem, 0, len(g.Items))
	for _, it := range g.Items {
		item := *it
		cp.Items = append(cp.Items, &item)
	}
	return &cp
}

func paginate[T any](list []T, limit, offset int) []T {
	if offset >= len(list) {
		return []T{}
	}
	end := len(list)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return list[offset:end]
}
