package procurement

import "github.com/jhoicas/Mantenimiento-api/internal/domain/entity"

// PurchaseOrderDocument datos necesarios para renderizar la orden de compra.
// Products indexa por id los productos de las líneas (puede faltar alguno).
type PurchaseOrderDocument struct {
	Order    *entity.PurchaseOrder
	Supplier *entity.Supplier
	Products map[string]*entity.Product
}

// PDFGenerator puerto de generación del PDF de la orden de compra.
type PDFGenerator interface {
	GeneratePurchaseOrder(doc PurchaseOrderDocument) ([]byte, error)
}
