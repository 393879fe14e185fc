// seed carga el maestro de productos y proveedores desde CSV en PostgreSQL.
//
// Uso: go run ./cmd/seed [productos.csv] [proveedores.csv]
// Sin argumentos usa CATALOG_PRODUCTS_FILE y CATALOG_SUPPLIERS_FILE; el charset sale de CATALOG_CHARSET.
// Las filas existentes se actualizan por id sin tocar su stock.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jhoicas/Mantenimiento-api/internal/infrastructure/catalog"
	"github.com/jhoicas/Mantenimiento-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Mantenimiento-api/pkg/config"
	"github.com/jhoicas/Mantenimiento-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel}).Component("seed")

	productsFile, suppliersFile := cfg.Catalog.ProductsFile, cfg.Catalog.SuppliersFile
	if len(os.Args) > 1 {
		productsFile = os.Args[1]
	}
	if len(os.Args) > 2 {
		suppliersFile = os.Args[2]
	}
	if productsFile == "" && suppliersFile == "" {
		fmt.Fprintln(os.Stderr, "uso: seed [productos.csv] [proveedores.csv]")
		os.Exit(2)
	}

	cat, err := catalog.LoadFiles(productsFile, suppliersFile, cfg.Catalog.Charset)
	if err != nil {
		log.Fatal().Err(err).Msg("leer catálogo")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	if err := postgres.Migrate(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("aplicar esquema")
	}

	suppliers := postgres.NewSupplierRepository(pool)
	for _, s := range cat.Suppliers {
		if err := suppliers.Upsert(ctx, s); err != nil {
			log.Fatal().Err(err).Str("supplier_id", s.ID).Msg("guardar proveedor")
		}
	}
	products := postgres.NewProductRepository(pool)
	for _, p := range cat.Products {
		if err := products.Upsert(ctx, p); err != nil {
			log.Fatal().Err(err).Str("product_id", p.ID).Str("sku", p.SKU).Msg("guardar producto")
		}
	}

	log.Info().
		Int("suppliers", len(cat.Suppliers)).
		Int("products", len(cat.Products)).
		Msg("catálogo cargado")
}
