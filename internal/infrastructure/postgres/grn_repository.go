package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Mantenimiento-api/internal/domain"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/entity"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/repository"
)

var _ repository.GRNRepository = (*GRNRepo)(nil)

const grnColumns = `id, grn_number, purchase_order_id, supplier_id, received_date, invoice_no, status, created_by, created_at`

// GRNRepo recepciones (inmutables) sobre PostgreSQL.
type GRNRepo struct {
	q Querier
}

// NewGRNRepository construye el adaptador. Pasar pool o tx (Querier).
func NewGRNRepository(q Querier) *GRNRepo {
	return &GRNRepo{q: q}
}

// Create inserta la cabecera y sus líneas.
func (r *GRNRepo) Create(ctx context.Context, g *entity.GRN) error {
	_, err := r.q.Exec(ctx, `INSERT INTO grns (`+grnColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		g.ID, g.GRNNumber, g.PurchaseOrderID, g.SupplierID, g.ReceivedDate, g.InvoiceNo, string(g.Status),
		g.CreatedBy, g.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return wrap("insert grn", err)
	}
	for i, it := range g.Items {
		_, err := r.q.Exec(ctx, `
			INSERT INTO grn_items (id, grn_id, line_no, product_id, ordered_qty, received_qty, accepted_qty, rejected_qty, reject_reason, unit_cost)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			it.ID, g.ID, i+1, it.ProductID, it.OrderedQty, it.ReceivedQty, it.AcceptedQty, it.RejectedQty,
			it.RejectReason, it.UnitCost,
		)
		if err != nil {
			return wrap("insert grn item", err)
		}
	}
	return nil
}

// GetByID recepción con sus líneas; nil, nil si no existe.
func (r *GRNRepo) GetByID(ctx context.Context, id string) (*entity.GRN, error) {
	if !validID(id) {
		return nil, nil
	}
	g, err := scanGRN(r.q.QueryRow(ctx, `SELECT `+grnColumns+` FROM grns WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrap("get grn", err)
	}
	if g.Items, err = r.items(ctx, g.ID); err != nil {
		return nil, err
	}
	return g, nil
}

// ListByPurchaseOrder recepciones de la orden en orden de registro.
func (r *GRNRepo) ListByPurchaseOrder(ctx context.Context, purchaseOrderID string) ([]*entity.GRN, error) {
	if !validID(purchaseOrderID) {
		return []*entity.GRN{}, nil
	}
	rows, err := r.q.Query(ctx,
		`SELECT `+grnColumns+` FROM grns WHERE purchase_order_id = $1 ORDER BY created_at, grn_number`, purchaseOrderID)
	if err != nil {
		return nil, wrap("list grns", err)
	}
	list := []*entity.GRN{}
	for rows.Next() {
		g, err := scanGRN(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan grn: %w", err)
		}
		list = append(list, g)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, wrap("list grns", err)
	}
	for _, g := range list {
		if g.Items, err = r.items(ctx, g.ID); err != nil {
			return nil, err
		}
	}
	return list, nil
}

func scanGRN(row pgx.Row) (*entity.GRN, error) {
	var (
		g      entity.GRN
		status string
	)
	if err := row.Scan(&g.ID, &g.GRNNumber, &g.PurchaseOrderID, &g.SupplierID, &g.ReceivedDate, &g.InvoiceNo,
		&status, &g.CreatedBy, &g.CreatedAt); err != nil {
		return nil, err
	}
	g.Status = entity.GRNStatus(status)
	return &g, nil
}

func (r *GRNRepo) items(ctx context.Context, grnID string) ([]*entity.GRNItem, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, grn_id, product_id, ordered_qty, received_qty, accepted_qty, rejected_qty, reject_reason, unit_cost
		FROM grn_items WHERE grn_id = $1 ORDER BY line_no`, grnID)
	if err != nil {
		return nil, wrap("list grn items", err)
	}
	defer rows.Close()
	list := []*entity.GRNItem{}
	for rows.Next() {
		var it entity.GRNItem
		if err := rows.Scan(&it.ID, &it.GRNID, &it.ProductID, &it.OrderedQty, &it.ReceivedQty, &it.AcceptedQty,
			&it.RejectedQty, &it.RejectReason, &it.UnitCost); err != nil {
			return nil, fmt.Errorf("scan grn item: %w", err)
		}
		list = append(list, &it)
	}
	return list, rows.Err()
}
