package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Mantenimiento-api/internal/application/dto"
	"github.com/jhoicas/Mantenimiento-api/internal/application/procurement"
)

// GRNHandler recepción de mercancía (protegido).
type GRNHandler struct {
	uc *procurement.GoodsReceiptUseCase
}

// NewGRNHandler construye el handler.
func NewGRNHandler(uc *procurement.GoodsReceiptUseCase) *GRNHandler {
	return &GRNHandler{uc: uc}
}

// Create godoc
// @Summary      Registrar recepción de mercancía
// @Description  En una transacción: crea el GRN, acumula lo recibido en la orden, ingresa al stock
//
//	solo lo aceptado y recalcula el estado de la orden.
//
// @Tags         grns
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateGRNRequest  true  "Orden, líneas recibidas y aceptadas"
// @Success      201   {object}  dto.GRNResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/grns [post]
func (h *GRNHandler) Create(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return unauthorized(c)
	}
	var in dto.CreateGRNRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	g, err := h.uc.CreateGRN(c.Context(), userID, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FromGRN(g))
}

// GetByID godoc
// @Summary      Obtener recepción con sus líneas
// @Tags         grns
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la recepción"
// @Success      200  {object}  dto.GRNResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/grns/{id} [get]
func (h *GRNHandler) GetByID(c *fiber.Ctx) error {
	g, err := h.uc.Get(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.FromGRN(g))
}
