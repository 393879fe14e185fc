package catalog

import (
	"fmt"
	"os"

	"github.com/jhoicas/Mantenimiento-api/internal/domain/entity"
)

// Catalog maestro leído de los archivos configurados.
type Catalog struct {
	Products  []*entity.Product
	Suppliers []*entity.Supplier
}

// LoadFiles lee los CSV indicados; una ruta vacía se omite.
func LoadFiles(productsFile, suppliersFile, charset string) (*Catalog, error) {
	out := &Catalog{}
	if productsFile != "" {
		f, err := os.Open(productsFile)
		if err != nil {
			return nil, fmt.Errorf("catalog: abrir %s: %w", productsFile, err)
		}
		defer f.Close()
		if out.Products, err = ReadProducts(f, charset); err != nil {
			return nil, fmt.Errorf("%s: %w", productsFile, err)
		}
	}
	if suppliersFile != "" {
		f, err := os.Open(suppliersFile)
		if err != nil {
			return nil, fmt.Errorf("catalog: abrir %s: %w", suppliersFile, err)
		}
		defer f.Close()
		if out.Suppliers, err = ReadSuppliers(f, charset); err != nil {
			return nil, fmt.Errorf("%s: %w", suppliersFile, err)
		}
	}
	return out, nil
}
