// Package inventory orquesta el libro de stock: entradas, salidas, ajustes,
// alertas de stock bajo y consumos de repuestos por flujos externos.
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
	"github.com/jhoicas/Mantenimiento-api/internal/domain/inventory"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/repository"
	"github.com/jhoicas/Mantenimiento-api/pkg/logger"
)

// MovementContext datos de referencia y auditoría comunes a todo movimiento.
// Type vacío toma el tipo por defecto de la operación.
type MovementContext struct {
	Type          entity.MovementType
	ReferenceType string
	ReferenceID   string
	Reason        string
	PerformedBy   string
}

// StockInInput entrada de stock (STOCK_IN o RETURN).
type StockInInput struct {
	ProductID string
	Quantity  decimal.Decimal
	UnitCost  *decimal.Decimal
	MovementContext
}

// StockOutInput salida de stock (STOCK_OUT, DAMAGE o EXPIRED).
type StockOutInput struct {
	ProductID string
	Quantity  decimal.Decimal
	MovementContext
}

// AdjustInput ajuste del stock a una cantidad objetivo.
type AdjustInput struct {
	ProductID      string
	TargetQuantity decimal.Decimal
	MovementContext
}

// LedgerEntry resultado de una mutación: el producto con el stock nuevo y el movimiento registrado.
type LedgerEntry struct {
	Product  *entity.Product
	Movement *entity.StockMovement
}

// LedgerUseCase único punto de escritura de CurrentStock. Cada mutación lee el producto
// con bloqueo de fila (GetForUpdate), actualiza el stock y agrega el movimiento en la misma transacción.
type LedgerUseCase struct {
	txRunner  ports.TxRunner
	products  repository.ProductRepository
	movements repository.StockMovementRepository
	events    ports.EventPublisher
	log       *logger.Logger
	now       func() time.Time
}

// NewLedgerUseCase construye el caso de uso del libro de stock.
func NewLedgerUseCase(
	txRunner ports.TxRunner,
	products repository.ProductRepository,
	movements repository.StockMovementRepository,
	events ports.EventPublisher,
	log *logger.Logger,
) *LedgerUseCase {
	if events == nil {
		events = ports.NoopPublisher{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &LedgerUseCase{
		txRunner:  txRunner,
		products:  products,
		movements: movements,
		events:    events,
		log:       log.Component("ledger"),
		now:       time.Now,
	}
}

// StockIn registra una entrada en su propia transacción y publica los eventos tras el commit.
func (uc *LedgerUseCase) StockIn(ctx context.Context, in StockInInput) (*LedgerEntry, error) {
	return uc.run(ctx, func(repos ports.TxRepos) (*LedgerEntry, error) {
		return uc.StockInInTx(ctx, repos, in)
	})
}

// StockOut registra una salida en su propia transacción.
func (uc *LedgerUseCase) StockOut(ctx context.Context, in StockOutInput) (*LedgerEntry, error) {
	return uc.run(ctx, func(repos ports.TxRepos) (*LedgerEntry, error) {
		return uc.StockOutInTx(ctx, repos, in)
	})
}

// Adjust fija el stock a TargetQuantity en su propia transacción.
func (uc *LedgerUseCase) Adjust(ctx context.Context, in AdjustInput) (*LedgerEntry, error) {
	return uc.run(ctx, func(repos ports.TxRepos) (*LedgerEntry, error) {
		return uc.AdjustInTx(ctx, repos, in)
	})
}

func (uc *LedgerUseCase) run(ctx context.Context, fn func(repos ports.TxRepos) (*LedgerEntry, error)) (*LedgerEntry, error) {
	var entry *LedgerEntry
	err := uc.txRunner.Run(ctx, func(repos ports.TxRepos) error {
		var err error
		entry, err = fn(repos)
		return err
	})
	if err != nil {
		return nil, err
	}
	Publish(ctx, uc.events, uc.log, MovementEvents(entry)...)
	return entry, nil
}

// StockInInTx aplica una entrada usando los repositorios de la transacción del caller.
// No publica eventos: el caller lo hace tras su commit.
func (uc *LedgerUseCase) StockInInTx(ctx context.Context, repos ports.TxRepos, in StockInInput) (*LedgerEntry, error) {
	typ := in.Type
	if typ == "" {
		typ = entity.MovementStockIn
	}
	if typ != entity.MovementStockIn && typ != entity.MovementReturn {
		return nil, domain.Validationf("tipo %s no válido para entrada", typ)
	}
	if err := validateQuantity(in.ProductID, in.Quantity); err != nil {
		return nil, err
	}
	if in.UnitCost != nil {
		if in.UnitCost.IsNegative() {
			return nil, domain.Validationf("unit_cost no puede ser negativo")
		}
		if err := domain.CheckScale("unit_cost", *in.UnitCost); err != nil {
			return nil, err
		}
	}

	product, err := lockProduct(ctx, repos, in.ProductID)
	if err != nil {
		return nil, err
	}
	next, err := inventory.NextStockIn(product.ID, product.CurrentStock, product.MaximumStock, in.Quantity)
	if err != nil {
		return nil, err
	}
	mc := in.MovementContext
	mc.Type = typ
	return uc.apply(ctx, repos, product, in.Quantity, in.UnitCost, next, mc)
}

// StockOutInTx aplica una salida dentro de la transacción del caller.
// El stock disponible se valida contra la fila bloqueada, nunca contra una lectura previa.
func (uc *LedgerUseCase) StockOutInTx(ctx context.Context, repos ports.TxRepos, in StockOutInput) (*LedgerEntry, error) {
	typ := in.Type
	if typ == "" {
		typ = entity.MovementStockOut
	}
	switch typ {
	case entity.MovementStockOut, entity.MovementDamage, entity.MovementExpired:
	default:
		return nil, domain.Validationf("tipo %s no válido para salida", typ)
	}
	if err := validateQuantity(in.ProductID, in.Quantity); err != nil {
		return nil, err
	}

	product, err := lockProduct(ctx, repos, in.ProductID)
	if err != nil {
		return nil, err
	}
	next, err := inventory.NextStockOut(product.ID, product.CurrentStock, in.Quantity)
	if err != nil {
		return nil, err
	}
	mc := in.MovementContext
	mc.Type = typ
	return uc.apply(ctx, repos, product, in.Quantity, nil, next, mc)
}

// AdjustInTx ajusta el stock dentro de la transacción del caller.
// Se registra la magnitud |objetivo − actual|; el signo queda implícito en previous/new.
func (uc *LedgerUseCase) AdjustInTx(ctx context.Context, repos ports.TxRepos, in AdjustInput) (*LedgerEntry, error) {
	if in.ProductID == "" {
		return nil, domain.Validationf("product_id es requerido")
	}
	if in.Type != "" && in.Type != entity.MovementAdjustment {
		return nil, domain.Validationf("tipo %s no válido para ajuste", in.Type)
	}
	if in.TargetQuantity.IsNegative() {
		return nil, domain.Validationf("el stock ajustado no puede ser negativo")
	}
	if err := domain.CheckScale("quantity", in.TargetQuantity); err != nil {
		return nil, err
	}

	product, err := lockProduct(ctx, repos, in.ProductID)
	if err != nil {
		return nil, err
	}
	qty, err := inventory.AdjustmentQuantity(product.CurrentStock, in.TargetQuantity)
	if err != nil {
		return nil, err
	}
	mc := in.MovementContext
	mc.Type = entity.MovementAdjustment
	if mc.ReferenceType == "" {
		mc.ReferenceType = entity.ReferenceManualAdjustment
	}
	if mc.Reason == "" {
		mc.Reason = "Ajuste de stock"
	}
	return uc.apply(ctx, repos, product, qty, nil, in.TargetQuantity, mc)
}

func (uc *LedgerUseCase) apply(
	ctx context.Context,
	repos ports.TxRepos,
	product *entity.Product,
	qty decimal.Decimal,
	unitCost *decimal.Decimal,
	next decimal.Decimal,
	mc MovementContext,
) (*LedgerEntry, error) {
	now := uc.now()
	mov := &entity.StockMovement{
		ID:            uuid.NewString(),
		BranchID:      product.BranchID,
		ProductID:     product.ID,
		Type:          mc.Type,
		Quantity:      qty,
		UnitCost:      unitCost,
		PreviousStock: product.CurrentStock,
		NewStock:      next,
		ReferenceType: mc.ReferenceType,
		ReferenceID:   mc.ReferenceID,
		Reason:        mc.Reason,
		PerformedBy:   mc.PerformedBy,
		CreatedAt:     now,
	}
	if err := repos.Products.UpdateStock(ctx, product.ID, next); err != nil {
		return nil, fmt.Errorf("actualizar stock: %w", err)
	}
	if err := repos.Movements.Create(ctx, mov); err != nil {
		return nil, fmt.Errorf("registrar movimiento: %w", err)
	}

	updated := *product
	updated.CurrentStock = next
	updated.UpdatedAt = now

	uc.log.Debug().
		Str("product_id", product.ID).
		Str("type", string(mov.Type)).
		Str("previous", mov.PreviousStock.String()).
		Str("new", mov.NewStock.String()).
		Msg("movimiento aplicado")
	return &LedgerEntry{Product: &updated, Movement: mov}, nil
}

// ListMovements lista los movimientos del producto del más reciente al más antiguo.
func (uc *LedgerUseCase) ListMovements(ctx context.Context, productID string, typ entity.MovementType, limit, offset int) ([]*entity.StockMovement, int, error) {
	if typ != "" && !typ.IsValid() {
		return nil, 0, domain.Validationf("tipo de movimiento %s inválido", typ)
	}
	if err := validatePage(limit, offset); err != nil {
		return nil, 0, err
	}
	if _, err := uc.getProduct(ctx, productID); err != nil {
		return nil, 0, err
	}
	return uc.movements.ListByProduct(ctx, productID, repository.MovementFilter{Type: typ}, limit, offset)
}

// VerifyLedger reproduce el libro del producto y verifica que reconstruya el stock actual.
func (uc *LedgerUseCase) VerifyLedger(ctx context.Context, productID string) (*inventory.ChainReport, error) {
	product, err := uc.getProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	chain, err := uc.movements.Chain(ctx, productID)
	if err != nil {
		return nil, err
	}
	report := inventory.Replay(product.ID, chain, product.CurrentStock)
	if !report.Consistent {
		uc.log.Warn().
			Str("product_id", product.ID).
			Int("broken_at", report.FirstBrokenAt).
			Str("reason", report.BrokenReason).
			Msg("libro de stock inconsistente")
	}
	return report, nil
}

func (uc *LedgerUseCase) getProduct(ctx context.Context, productID string) (*entity.Product, error) {
	if productID == "" {
		return nil, domain.Validationf("product_id es requerido")
	}
	product, err := uc.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.NotFoundf("producto %s", productID)
	}
	return product, nil
}

// MovementEvents construye los eventos de integración de los movimientos confirmados:
// uno por movimiento y, si el producto quedó en o bajo su punto de reorden, una alerta.
func MovementEvents(entries ...*LedgerEntry) []ports.Event {
	events := make([]ports.Event, 0, len(entries))
	for _, e := range entries {
		if e == nil {
			continue
		}
		events = append(events, ports.Event{
			Name:       ports.EventMovementRecorded,
			Key:        e.Product.ID,
			OccurredAt: e.Movement.CreatedAt,
			Payload:    dto.FromMovement(e.Movement),
		})
		if e.Product.IsLowStock() && !inventory.IsInbound(e.Movement.Type) {
			events = append(events, ports.Event{
				Name:       ports.EventLowStock,
				Key:        e.Product.ID,
				OccurredAt: e.Movement.CreatedAt,
				Payload:    dto.FromProduct(e.Product),
			})
		}
	}
	return events
}

// PublishTimeout tope de espera del broker después del commit.
const PublishTimeout = 2 * time.Second

// Publish envía los eventos; un fallo solo se registra (la operación ya está confirmada).
// El contexto se desacopla de la cancelación del request y se acota a PublishTimeout,
// así un broker lento demora la respuesta como máximo ese tiempo.
func Publish(ctx context.Context, pub ports.EventPublisher, log *logger.Logger, events ...ports.Event) {
	if len(events) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), PublishTimeout)
	defer cancel()
	if err := pub.Publish(ctx, events...); err != nil {
		log.Warn().Err(err).Int("events", len(events)).Str("first", events[0].Name).Msg("no se pudieron publicar eventos")
	}
}

func lockProduct(ctx context.Context, repos ports.TxRepos, productID string) (*entity.Product, error) {
	product, err := repos.Products.GetForUpdate(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.NotFoundf("producto %s", productID)
	}
	return product, nil
}

func validateQuantity(productID string, qty decimal.Decimal) error {
	if productID == "" {
		return domain.Validationf("product_id es requerido")
	}
	if !qty.GreaterThan(decimal.Zero) {
		return domain.Validationf("la cantidad debe ser mayor a cero")
	}
	return domain.CheckScale("quantity", qty)
}

func validatePage(limit, offset int) error {
	if limit <= 0 || offset < 0 {
		return domain.Validationf("paginación inválida: limit=%d offset=%d", limit, offset)
	}
	return nil
}
