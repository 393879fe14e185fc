package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Mantenimiento-api/internal/application/dto"
	"github.com/jhoicas/Mantenimiento-api/internal/application/inventory"
	"github.com/jhoicas/Mantenimiento-api/internal/domain"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/entity"
)

// InventoryHandler maneja el libro de stock, alertas y consumos (protegido).
type InventoryHandler struct {
	ledger      *inventory.LedgerUseCase
	lowStock    *inventory.LowStockUseCase
	consumption *inventory.ConsumptionUseCase
	pages       PageLimits
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(ledger *inventory.LedgerUseCase, lowStock *inventory.LowStockUseCase, consumption *inventory.ConsumptionUseCase, pages PageLimits) *InventoryHandler {
	return &InventoryHandler{ledger: ledger, lowStock: lowStock, consumption: consumption, pages: pages}
}

// StockIn godoc
// @Summary      Registrar entrada de stock
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.StockInRequest  true  "product_id, quantity, unit_cost; type STOCK_IN (defecto) o RETURN"
// @Success      201   {object}  dto.LedgerEntryResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/stock-in [post]
func (h *InventoryHandler) StockIn(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return unauthorized(c)
	}
	var in dto.StockInRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	entry, err := h.ledger.StockIn(c.Context(), inventory.StockInInput{
		ProductID: in.ProductID,
		Quantity:  in.Quantity,
		UnitCost:  in.UnitCost,
		MovementContext: inventory.MovementContext{
			Type:          entity.MovementType(in.Type),
			ReferenceType: in.ReferenceType,
			ReferenceID:   in.ReferenceID,
			Reason:        in.Reason,
			PerformedBy:   userID,
		},
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(ledgerEntryResponse(entry))
}

// StockOut godoc
// @Summary      Registrar salida de stock
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.StockOutRequest  true  "product_id, quantity; type STOCK_OUT (defecto), DAMAGE o EXPIRED"
// @Success      201   {object}  dto.LedgerEntryResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/stock-out [post]
func (h *InventoryHandler) StockOut(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return unauthorized(c)
	}
	var in dto.StockOutRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	entry, err := h.ledger.StockOut(c.Context(), inventory.StockOutInput{
		ProductID: in.ProductID,
		Quantity:  in.Quantity,
		MovementContext: inventory.MovementContext{
			Type:          entity.MovementType(in.Type),
			ReferenceType: in.ReferenceType,
			ReferenceID:   in.ReferenceID,
			Reason:        in.Reason,
			PerformedBy:   userID,
		},
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(ledgerEntryResponse(entry))
}

// Adjust godoc
// @Summary      Ajustar stock a una cantidad objetivo
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AdjustStockRequest  true  "product_id, quantity (stock final)"
// @Success      201   {object}  dto.LedgerEntryResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/adjust [post]
func (h *InventoryHandler) Adjust(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return unauthorized(c)
	}
	var in dto.AdjustStockRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if in.Quantity == nil {
		return writeError(c, domain.Validationf("quantity es requerido"))
	}
	entry, err := h.ledger.Adjust(c.Context(), inventory.AdjustInput{
		ProductID:      in.ProductID,
		TargetQuantity: *in.Quantity,
		MovementContext: inventory.MovementContext{
			ReferenceType: in.ReferenceType,
			ReferenceID:   in.ReferenceID,
			Reason:        in.Reason,
			PerformedBy:   userID,
		},
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(ledgerEntryResponse(entry))
}

// ListMovements godoc
// @Summary      Movimientos de un producto (del más reciente al más antiguo)
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id      path   string  true   "ID del producto"
// @Param        type    query  string  false  "Filtrar por tipo de movimiento"
// @Param        limit   query  int     false  "Tamaño de página"
// @Param        offset  query  int     false  "Desplazamiento"
// @Success      200  {object}  dto.MovementListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/products/{id}/movements [get]
func (h *InventoryHandler) ListMovements(c *fiber.Ctx) error {
	page, err := h.pages.parse(c)
	if err != nil {
		return badQuery(c)
	}
	list, total, err := h.ledger.ListMovements(c.Context(), c.Params("id"), entity.MovementType(c.Query("type")), page.Limit, page.Offset)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.MovementListResponse{
		Items: dto.FromMovements(list),
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total},
	})
}

// VerifyLedger godoc
// @Summary      Reproducir el libro de stock de un producto
// @Description  Recorre los movimientos en orden cronológico y verifica que enlacen con el stock actual.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del producto"
// @Success      200  {object}  dto.LedgerReportResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/products/{id}/ledger [get]
func (h *InventoryHandler) VerifyLedger(c *fiber.Ctx) error {
	rep, err := h.ledger.VerifyLedger(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.FromChainReport(rep))
}

// ListLowStock godoc
// @Summary      Productos en o bajo el punto de reorden
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        branch_id  query  string  false  "Sucursal; vacío = la del token"
// @Param        limit      query  int     false  "Tamaño de página"
// @Param        offset     query  int     false  "Desplazamiento"
// @Success      200  {object}  dto.ProductListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/low-stock [get]
func (h *InventoryHandler) ListLowStock(c *fiber.Ctx) error {
	page, err := h.pages.parse(c)
	if err != nil {
		return badQuery(c)
	}
	branchID := branchOr(c, c.Query("branch_id"))
	list, total, err := h.lowStock.ListLowStock(c.Context(), branchID, page.Limit, page.Offset)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ProductListResponse{
		Items: dto.FromProducts(list),
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total},
	})
}

// Consume godoc
// @Summary      Registrar consumo de repuestos por un flujo externo
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ConsumeRequest  true  "product_id, quantity, unit_cost, origin_id"
// @Success      201   {object}  dto.ConsumptionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/consumptions [post]
func (h *InventoryHandler) Consume(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return unauthorized(c)
	}
	var in dto.ConsumeRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	rec, err := h.consumption.Consume(c.Context(), userID, inventory.ConsumeInput{
		ProductID: in.ProductID,
		Quantity:  in.Quantity,
		UnitCost:  in.UnitCost,
		OriginID:  in.OriginID,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FromConsumption(rec))
}

// ListConsumptions godoc
// @Summary      Consumos registrados para un origen
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        origin_id  query  string  true  "ID del flujo de origen"
// @Success      200  {array}   dto.ConsumptionResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/consumptions [get]
func (h *InventoryHandler) ListConsumptions(c *fiber.Ctx) error {
	list, err := h.consumption.ListByOrigin(c.Context(), c.Query("origin_id"))
	if err != nil {
		return writeError(c, err)
	}
	out := make([]dto.ConsumptionResponse, 0, len(list))
	for _, rec := range list {
		out = append(out, dto.FromConsumption(rec))
	}
	return c.JSON(out)
}

func ledgerEntryResponse(e *inventory.LedgerEntry) dto.LedgerEntryResponse {
	return dto.LedgerEntryResponse{Product: dto.FromProduct(e.Product), Movement: dto.FromMovement(e.Movement)}
}
