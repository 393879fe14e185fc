package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/jhoicas/Mantenimiento-api/internal/application/dto"
	"github.com/jhoicas/Mantenimiento-api/internal/application/ports"
	"github.com/jhoicas/Mantenimiento-api/internal/domain"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/entity"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/repository"
	"github.com/jhoicas/Mantenimiento-api/pkg/logger"
)

// ConsumeInput repuesto usado por un flujo externo identificado por OriginID (p. ej. una orden de servicio).
type ConsumeInput struct {
	ProductID string
	Quantity  decimal.Decimal
	UnitCost  decimal.Decimal
	OriginID  string
}

// ConsumptionUseCase descuenta repuestos consumidos por flujos externos y deja el registro de costo.
type ConsumptionUseCase struct {
	txRunner     ports.TxRunner
	ledger       *LedgerUseCase
	products     repository.ProductRepository
	consumptions repository.ConsumptionRepository
	events       ports.EventPublisher
	log          *logger.Logger
	now          func() time.Time
}

// NewConsumptionUseCase construye el gateway de consumos.
func NewConsumptionUseCase(
	txRunner ports.TxRunner,
	ledger *LedgerUseCase,
	products repository.ProductRepository,
	consumptions repository.ConsumptionRepository,
	events ports.EventPublisher,
	log *logger.Logger,
) *ConsumptionUseCase {
	if events == nil {
		events = ports.NoopPublisher{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &ConsumptionUseCase{
		txRunner:     txRunner,
		ledger:       ledger,
		products:     products,
		consumptions: consumptions,
		events:       events,
		log:          log.Component("consumption"),
		now:          time.Now,
	}
}

// Consume valida la entrada, registra la salida de stock (referencia CONSUMPTION) y el
// ConsumptionRecord en una sola transacción. El stock se revalida sobre la fila bloqueada.
func (uc *ConsumptionUseCase) Consume(ctx context.Context, actor string, in ConsumeInput) (*entity.ConsumptionRecord, error) {
	if in.OriginID == "" {
		return nil, domain.Validationf("origin_id es requerido")
	}
	if err := validateQuantity(in.ProductID, in.Quantity); err != nil {
		return nil, err
	}
	if in.UnitCost.IsNegative() {
		return nil, domain.Validationf("unit_cost no puede ser negativo")
	}
	if err := domain.CheckScale("unit_cost", in.UnitCost); err != nil {
		return nil, err
	}

	product, err := uc.products.GetByID(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil || !product.IsActive {
		return nil, domain.NotFoundf("producto %s", in.ProductID)
	}

	var (
		record *entity.ConsumptionRecord
		entry  *LedgerEntry
	)
	err = uc.txRunner.Run(ctx, func(repos ports.TxRepos) error {
		fresh, err := lockProduct(ctx, repos, in.ProductID)
		if err != nil {
			return err
		}
		if !fresh.IsActive {
			return domain.NotFoundf("producto %s", in.ProductID)
		}
		if in.Quantity.GreaterThan(fresh.CurrentStock) {
			return &domain.StockError{
				Kind: domain.ErrInsufficientStock, ProductID: fresh.ID,
				Available: fresh.CurrentStock, Requested: in.Quantity,
			}
		}

		entry, err = uc.ledger.StockOutInTx(ctx, repos, StockOutInput{
			ProductID: in.ProductID,
			Quantity:  in.Quantity,
			MovementContext: MovementContext{
				Type:          entity.MovementStockOut,
				ReferenceType: entity.ReferenceConsumption,
				ReferenceID:   in.OriginID,
				Reason:        "Consumo " + in.OriginID,
				PerformedBy:   actor,
			},
		})
		if err != nil {
			return err
		}

		record = &entity.ConsumptionRecord{
			ID:          uuid.NewString(),
			OriginID:    in.OriginID,
			ProductID:   in.ProductID,
			Quantity:    in.Quantity,
			UnitCost:    in.UnitCost,
			TotalCost:   in.Quantity.Mul(in.UnitCost).Round(domain.Scale),
			MovementID:  entry.Movement.ID,
			PerformedBy: actor,
			CreatedAt:   uc.now(),
		}
		if err := repos.Consumptions.Create(ctx, record); err != nil {
			return fmt.Errorf("registrar consumo: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("origin_id", record.OriginID).
		Str("product_id", record.ProductID).
		Str("quantity", record.Quantity.String()).
		Msg("consumo registrado")

	events := MovementEvents(entry)
	events = append(events, ports.Event{
		Name:       ports.EventConsumption,
		Key:        record.OriginID,
		OccurredAt: record.CreatedAt,
		Payload:    dto.FromConsumption(record),
	})
	Publish(ctx, uc.events, uc.log, events...)
	return record, nil
}

// ListByOrigin devuelve los consumos de un origen, del más antiguo al más reciente.
func (uc *ConsumptionUseCase) ListByOrigin(ctx context.Context, originID string) ([]*entity.ConsumptionRecord, error) {
	if originID == "" {
		return nil, domain.Validationf("origin_id es requerido")
	}
	list, err := uc.consumptions.ListByOrigin(ctx, originID)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []*entity.ConsumptionRecord{}
	}
	return list, nil
}
