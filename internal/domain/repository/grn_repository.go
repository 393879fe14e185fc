package repository

import (
	"context"

	"github.com/jhoicas/Mantenimiento-api/internal/domain/entity"
)

// GRNRepository puerto de persistencia de recepciones (inmutables: solo Create).
type GRNRepository interface {
	Create(ctx context.Context, grn *entity.GRN) error
	GetByID(ctx context.Context, id string) (*entity.GRN, error)
	ListByPurchaseOrder(ctx context.Context, purchaseOrderID string) ([]*entity.GRN, error)
}
