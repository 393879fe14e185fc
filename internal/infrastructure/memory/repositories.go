package memory

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/jhoicas/Mantenimiento-api/internal/domain"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/entity"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/repository"
)

var (
	_ repository.ProductRepository       = (*ProductRepo)(nil)
	_ repository.StockMovementRepository = (*StockMovementRepo)(nil)
	_ repository.SupplierRepository      = (*SupplierRepo)(nil)
	_ repository.PurchaseOrderRepository = (*PurchaseOrderRepo)(nil)
	_ repository.GRNRepository           = (*GRNRepo)(nil)
	_ repository.ConsumptionRepository   = (*ConsumptionRepo)(nil)
)

// ── Productos ───────────────────────────────────────────────────────────────

// ProductRepo productos en memoria.
type ProductRepo struct{ with accessor }

// GetByID devuelve una copia del producto o nil, nil.
func (r *ProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	var out *entity.Product
	err := r.with(func(st *state) error {
		if p, ok := st.products[id]; ok {
			out = copyProduct(p)
		}
		return nil
	})
	return out, err
}

// GetForUpdate igual que GetByID: las transacciones ya están serializadas.
func (r *ProductRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	return r.GetByID(ctx, id)
}

// UpdateStock fija CurrentStock. Rechaza negativos como lo haría el CHECK de la tabla.
func (r *ProductRepo) UpdateStock(_ context.Context, id string, stock decimal.Decimal) error {
	return r.with(func(st *state) error {
		p, ok := st.products[id]
		if !ok {
			return domain.NotFoundf("producto %s", id)
		}
		if stock.IsNegative() {
			return domain.Validationf("stock negativo para producto %s", id)
		}
		p.CurrentStock = stock
		return nil
	})
}

// ListLowStock trae los productos, filtra y luego pagina: el total es el filtrado.
func (r *ProductRepo) ListLowStock(_ context.Context, branchID string, limit, offset int) ([]*entity.Product, int, error) {
	var filtered []*entity.Product
	err := r.with(func(st *state) error {
		for _, p := range st.products {
			if !p.IsActive || !p.IsLowStock() {
				continue
			}
			if branchID != "" && p.BranchID != branchID {
				continue
			}
			filtered = append(filtered, copyProduct(p))
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	sort.Slice(filtered, func(i, j int) bool {
		if !filtered[i].CurrentStock.Equal(filtered[j].CurrentStock) {
			return filtered[i].CurrentStock.LessThan(filtered[j].CurrentStock)
		}
		return filtered[i].SKU < filtered[j].SKU
	})
	return paginate(filtered, limit, offset), len(filtered), nil
}

// ── Movimientos ─────────────────────────────────────────────────────────────

// StockMovementRepo libro de stock append-only.
type StockMovementRepo struct{ with accessor }

// Create agrega el movimiento al final del libro.
func (r *StockMovementRepo) Create(_ context.Context, m *entity.StockMovement) error {
	return r.with(func(st *state) error {
		if _, ok := st.products[m.ProductID]; !ok {
			return domain.NotFoundf("producto %s", m.ProductID)
		}
		cp := *m
		st.movements = append(st.movements, &cp)
		return nil
	})
}

// ListByProduct del más reciente al más antiguo.
func (r *StockMovementRepo) ListByProduct(_ context.Context, productID string, filter repository.MovementFilter, limit, offset int) ([]*entity.StockMovement, int, error) {
	var out []*entity.StockMovement
	err := r.with(func(st *state) error {
		for i := len(st.movements) - 1; i >= 0; i-- {
			m := st.movements[i]
			if m.ProductID != productID || (filter.Type != "" && m.Type != filter.Type) {
				continue
			}
			cp := *m
			out = append(out, &cp)
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return paginate(out, limit, offset), len(out), nil
}

// Chain movimientos del producto en orden cronológico.
func (r *StockMovementRepo) Chain(_ context.Context, productID string) ([]*entity.StockMovement, error) {
	var out []*entity.StockMovement
	err := r.with(func(st *state) error {
		for _, m := range st.movements {
			if m.ProductID == productID {
				cp := *m
				out = append(out, &cp)
			}
		}
		return nil
	})
	return out, err
}

// ── Proveedores ─────────────────────────────────────────────────────────────

// SupplierRepo proveedores en memoria.
type SupplierRepo struct{ with accessor }

// GetByID devuelve nil, nil si no existe.
func (r *SupplierRepo) GetByID(_ context.Context, id string) (*entity.Supplier, error) {
	var out *entity.Supplier
	err := r.with(func(st *state) error {
		if s, ok := st.suppliers[id]; ok {
			cp := *s
			out = &cp
		}
		return nil
	})
	return out, err
}

// ── Órdenes de compra ───────────────────────────────────────────────────────

// PurchaseOrderRepo órdenes de compra en memoria.
type PurchaseOrderRepo struct{ with accessor }

// Create inserta la orden; número repetido -> domain.ErrDuplicate.
func (r *PurchaseOrderRepo) Create(_ context.Context, po *entity.PurchaseOrder) error {
	return r.with(func(st *state) error {
		if _, ok := st.orders[po.ID]; ok {
			return domain.ErrDuplicate
		}
		for _, existing := range st.orders {
			if existing.PONumber == po.PONumber {
				return domain.ErrDuplicate
			}
		}
		st.orders[po.ID] = copyOrder(po)
		st.orderIDs = append(st.orderIDs, po.ID)
		return nil
	})
}

// GetByID devuelve una copia de la orden con sus líneas o nil, nil.
func (r *PurchaseOrderRepo) GetByID(_ context.Context, id string) (*entity.PurchaseOrder, error) {
	var out *entity.PurchaseOrder
	err := r.with(func(st *state) error {
		if po, ok := st.orders[id]; ok {
			out = copyOrder(po)
		}
		return nil
	})
	return out, err
}

// GetForUpdate igual que GetByID.
func (r *PurchaseOrderRepo) GetForUpdate(ctx context.Context, id string) (*entity.PurchaseOrder, error) {
	return r.GetByID(ctx, id)
}

// UpdateStatus persiste estado y aprobación.
func (r *PurchaseOrderRepo) UpdateStatus(_ context.Context, po *entity.PurchaseOrder) error {
	return r.with(func(st *state) error {
		cur, ok := st.orders[po.ID]
		if !ok {
			return domain.NotFoundf("orden de compra %s", po.ID)
		}
		cur.Status = po.Status
		cur.ApprovedBy = po.ApprovedBy
		cur.ApprovedAt = po.ApprovedAt
		cur.UpdatedAt = po.UpdatedAt
		return nil
	})
}

// UpdateItemReceived fija la cantidad recibida acumulada de la línea.
func (r *PurchaseOrderRepo) UpdateItemReceived(_ context.Context, itemID string, receivedQty decimal.Decimal) error {
	return r.with(func(st *state) error {
		for _, po := range st.orders {
			for _, it := range po.Items {
				if it.ID == itemID {
					it.ReceivedQty = receivedQty
					return nil
				}
			}
		}
		return domain.NotFoundf("línea de orden %s", itemID)
	})
}

// List filtra y pagina, de la más reciente a la más antigua.
func (r *PurchaseOrderRepo) List(_ context.Context, f repository.PurchaseOrderFilter, limit, offset int) ([]*entity.PurchaseOrder, int, error) {
	var out []*entity.PurchaseOrder
	err := r.with(func(st *state) error {
		for i := len(st.orderIDs) - 1; i >= 0; i-- {
			po := st.orders[st.orderIDs[i]]
			if f.Status != "" && po.Status != f.Status {
				continue
			}
			if f.SupplierID != "" && po.SupplierID != f.SupplierID {
				continue
			}
			if f.BranchID != "" && po.BranchID != f.BranchID {
				continue
			}
			out = append(out, copyOrder(po))
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return paginate(out, limit, offset), len(out), nil
}

// ── GRN ─────────────────────────────────────────────────────────────────────

// GRNRepo recepciones en memoria (inmutables).
type GRNRepo struct{ with accessor }

// Create inserta la recepción; número repetido -> domain.ErrDuplicate.
func (r *GRNRepo) Create(_ context.Context, g *entity.GRN) error {
	return r.with(func(st *state) error {
		if _, ok := st.orders[g.PurchaseOrderID]; !ok {
			return domain.NotFoundf("orden de compra %s", g.PurchaseOrderID)
		}
		for _, existing := range st.grns {
			if existing.GRNNumber == g.GRNNumber || existing.ID == g.ID {
				return domain.ErrDuplicate
			}
		}
		st.grns[g.ID] = copyGRN(g)
		st.grnIDs = append(st.grnIDs, g.ID)
		return nil
	})
}

// GetByID devuelve una copia o nil, nil.
func (r *GRNRepo) GetByID(_ context.Context, id string) (*entity.GRN, error) {
	var out *entity.GRN
	err := r.with(func(st *state) error {
		if g, ok := st.grns[id]; ok {
			out = copyGRN(g)
		}
		return nil
	})
	return out, err
}

// ListByPurchaseOrder recepciones de la orden en orden de registro.
func (r *GRNRepo) ListByPurchaseOrder(_ context.Context, purchaseOrderID string) ([]*entity.GRN, error) {
	out := []*entity.GRN{}
	err := r.with(func(st *state) error {
		for _, id := range st.grnIDs {
			if g := st.grns[id]; g.PurchaseOrderID == purchaseOrderID {
				out = append(out, copyGRN(g))
			}
		}
		return nil
	})
	return out, err
}

// ── Consumos ────────────────────────────────────────────────────────────────

// ConsumptionRepo consumos en memoria.
type ConsumptionRepo struct{ with accessor }

// Create agrega el registro.
func (r *ConsumptionRepo) Create(_ context.Context, c *entity.ConsumptionRecord) error {
	return r.with(func(st *state) error {
		cp := *c
		st.consumptions = append(st.consumptions, &cp)
		return nil
	})
}

// ListByOrigin consumos del origen en orden de registro.
func (r *ConsumptionRepo) ListByOrigin(_ context.Context, originID string) ([]*entity.ConsumptionRecord, error) {
	out := []*entity.ConsumptionRecord{}
	err := r.with(func(st *state) error {
		for _, c := range st.consumptions {
			if c.OriginID == originID {
				cp := *c
				out = append(out, &cp)
			}
		}
		return nil
	})
	return out, err
}
