package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Mantenimiento-api/internal/application/dto"
	"github.com/jhoicas/Mantenimiento-api/internal/application/inventory"
	"github.com/jhoicas/Mantenimiento-api/internal/application/procurement"
)

// PageLimits límites de paginación aplicados a los query params limit/offset.
type PageLimits struct {
	Default int
	Max     int
}

func (p PageLimits) parse(c *fiber.Ctx) (dto.PageRequest, error) {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return page, err
	}
	page.Normalize(p.Default, p.Max)
	return page, nil
}

func badQuery(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "limit y offset deben ser enteros"})
}

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Ledger         *inventory.LedgerUseCase
	LowStock       *inventory.LowStockUseCase
	Consumption    *inventory.ConsumptionUseCase
	PurchaseOrders *procurement.PurchaseOrderUseCase
	GoodsReceipts  *procurement.GoodsReceiptUseCase
	Pages          PageLimits
	JWTSecret      string
}

// Router registra las rutas de la API. Todo /api requiere Bearer Token.
func Router(app *fiber.App, deps RouterDeps) {
	protected := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	// Libro de stock, alertas y consumos
	invGroup := protected.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.Ledger, deps.LowStock, deps.Consumption, deps.Pages)
	invGroup.Post("/stock-in", inventoryHandler.StockIn)
	invGroup.Post("/stock-out", inventoryHandler.StockOut)
	invGroup.Post("/adjust", inventoryHandler.Adjust)
	invGroup.Get("/products/:id/movements", inventoryHandler.ListMovements)
	invGroup.Get("/products/:id/ledger", inventoryHandler.VerifyLedger)
	invGroup.Get("/low-stock", inventoryHandler.ListLowStock)
	invGroup.Post("/consumptions", inventoryHandler.Consume)
	invGroup.Get("/consumptions", inventoryHandler.ListConsumptions)

	// Órdenes de compra
	orders := protected.Group("/purchase-orders")
	poHandler := NewPurchaseOrderHandler(deps.PurchaseOrders, deps.GoodsReceipts, deps.Pages)
	orders.Post("/", poHandler.Create)
	orders.Get("/", poHandler.List)
	orders.Get("/:id", poHandler.GetByID)
	orders.Patch("/:id/status", poHandler.Transition)
	orders.Post("/:id/approve", poHandler.Approve)
	orders.Get("/:id/pdf", poHandler.PDF)
	orders.Get("/:id/grns", poHandler.ListGRNs)

	// Recepciones
	grns := protected.Group("/grns")
	grnHandler := NewGRNHandler(deps.GoodsReceipts)
	grns.Post("/", grnHandler.Create)
	grns.Get("/:id", grnHandler.GetByID)
}
