package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/jhoicas/Mantenimiento-api/internal/domain"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/entity"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/repository"
)

var _ repository.PurchaseOrderRepository = (*PurchaseOrderRepo)(nil)

const purchaseOrderColumns = `id, po_number, supplier_id, branch_id, status, order_date, expected_date,
	subtotal, tax_amount, discount_amount, total_amount, notes, created_by, approved_by, approved_at,
	created_at, updated_at`

// PurchaseOrderRepo órdenes de compra y sus líneas sobre PostgreSQL.
type PurchaseOrderRepo struct {
	q Querier
}

// NewPurchaseOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPurchaseOrderRepository(q Querier) *PurchaseOrderRepo {
	return &PurchaseOrderRepo{q: q}
}

// Create inserta cabecera y líneas. Debe llamarse dentro de una transacción para que sea atómico.
func (r *PurchaseOrderRepo) Create(ctx context.Context, po *entity.PurchaseOrder) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO purchase_orders (`+purchaseOrderColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
		po.ID, po.PONumber, po.SupplierID, po.BranchID, string(po.Status), po.OrderDate, po.ExpectedDate,
		po.Subtotal, po.TaxAmount, po.DiscountAmount, po.TotalAmount, po.Notes, po.CreatedBy, po.ApprovedBy,
		po.ApprovedAt, po.CreatedAt, po.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return wrap("insert purchase order", err)
	}
	for i, it := range po.Items {
		_, err := r.q.Exec(ctx, `
			INSERT INTO purchase_order_items (id, purchase_order_id, line_no, product_id, quantity, unit_price, total_price, received_qty)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			it.ID, po.ID, i+1, it.ProductID, it.Quantity, it.UnitPrice, it.TotalPrice, it.ReceivedQty,
		)
		if err != nil {
			return wrap("insert purchase order item", err)
		}
	}
	return nil
}

// GetByID orden con sus líneas; nil, nil si no existe.
func (r *PurchaseOrderRepo) GetByID(ctx context.Context, id string) (*entity.PurchaseOrder, error) {
	return r.get(ctx, `SELECT `+purchaseOrderColumns+` FROM purchase_orders WHERE id = $1`, id)
}

// GetForUpdate igual que GetByID pero bloquea la fila de la cabecera (SELECT FOR UPDATE).
func (r *PurchaseOrderRepo) GetForUpdate(ctx context.Context, id string) (*entity.PurchaseOrder, error) {
	return r.get(ctx, `SELECT `+purchaseOrderColumns+` FROM purchase_orders WHERE id = $1 FOR UPDATE`, id)
}

func (r *PurchaseOrderRepo) get(ctx context.Context, query, id string) (*entity.PurchaseOrder, error) {
	if !validID(id) {
		return nil, nil
	}
	po, err := scanPurchaseOrder(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrap("get purchase order", err)
	}
	if po.Items, err = r.items(ctx, po.ID); err != nil {
		return nil, err
	}
	return po, nil
}

func scanPurchaseOrder(row pgx.Row) (*entity.PurchaseOrder, error) {
	var (
		po     entity.PurchaseOrder
		status string
	)
	err := row.Scan(
		&po.ID, &po.PONumber, &po.SupplierID, &po.BranchID, &status, &po.OrderDate, &po.ExpectedDate,
		&po.Subtotal, &po.TaxAmount, &po.DiscountAmount, &po.TotalAmount, &po.Notes, &po.CreatedBy,
		&po.ApprovedBy, &po.ApprovedAt, &po.CreatedAt, &po.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	po.Status = entity.PurchaseOrderStatus(status)
	return &po, nil
}

func (r *PurchaseOrderRepo) items(ctx context.Context, purchaseOrderID string) ([]*entity.PurchaseOrderItem, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, purchase_order_id, product_id, quantity, unit_price, total_price, received_qty
		FROM purchase_order_items WHERE purchase_order_id = $1 ORDER BY line_no`, purchaseOrderID)
	if err != nil {
		return nil, wrap("list purchase order items", err)
	}
	defer rows.Close()
	list := []*entity.PurchaseOrderItem{}
	for rows.Next() {
		var it entity.PurchaseOrderItem
		if err := rows.Scan(&it.ID, &it.PurchaseOrderID, &it.ProductID, &it.Quantity, &it.UnitPrice,
			&it.TotalPrice, &it.ReceivedQty); err != nil {
			return nil, fmt.Errorf("scan purchase order item: %w", err)
		}
		list = append(list, &it)
	}
	return list, rows.Err()
}

// UpdateStatus persiste estado, aprobación y updated_at.
func (r *PurchaseOrderRepo) UpdateStatus(ctx context.Context, po *entity.PurchaseOrder) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE purchase_orders SET status = $2, approved_by = $3, approved_at = $4, updated_at = $5
		WHERE id = $1`,
		po.ID, string(po.Status), po.ApprovedBy, po.ApprovedAt, po.UpdatedAt,
	)
	if err != nil {
		return wrap("update purchase order status", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.NotFoundf("orden de compra %s", po.ID)
	}
	return nil
}

// UpdateItemReceived fija received_qty acumulado de la línea.
func (r *PurchaseOrderRepo) UpdateItemReceived(ctx context.Context, itemID string, receivedQty decimal.Decimal) error {
	if !validID(itemID) {
		return domain.NotFoundf("línea de orden %s", itemID)
	}
	cmd, err := r.q.Exec(ctx, `UPDATE purchase_order_items SET received_qty = $2 WHERE id = $1`, itemID, receivedQty)
	if err != nil {
		return wrap("update received qty", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.NotFoundf("línea de orden %s", itemID)
	}
	return nil
}

// List filtra por estado, proveedor y sucursal; de la más reciente a la más antigua.
func (r *PurchaseOrderRepo) List(ctx context.Context, f repository.PurchaseOrderFilter, limit, offset int) ([]*entity.PurchaseOrder, int, error) {
	const where = `
		WHERE ($1 = '' OR status = $1)
		  AND ($2 = '' OR supplier_id::text = $2)
		  AND ($3 = '' OR branch_id::text = $3)`
	args := []any{string(f.Status), f.SupplierID, f.BranchID}

	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM purchase_orders`+where, args...).Scan(&total); err != nil {
		return nil, 0, wrap("count purchase orders", err)
	}

	rows, err := r.q.Query(ctx,
		`SELECT `+purchaseOrderColumns+` FROM purchase_orders`+where+` ORDER BY created_at DESC, po_number DESC LIMIT $4 OFFSET $5`,
		append(args, limit, offset)...,
	)
	if err != nil {
		return nil, 0, wrap("list purchase orders", err)
	}
	list := []*entity.PurchaseOrder{}
	for rows.Next() {
		po, err := scanPurchaseOrder(rows)
		if err != nil {
			rows.Close()
			return nil, 0, fmt.Errorf("scan purchase order: %w", err)
		}
		list = append(list, po)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, 0, wrap("list purchase orders", err)
	}

	// Las líneas se leen después de cerrar rows: una conexión no admite dos consultas abiertas.
	for _, po := range list {
		if po.Items, err = r.items(ctx, po.ID); err != nil {
			return nil, 0, err
		}
	}
	return list, total, nil
}
