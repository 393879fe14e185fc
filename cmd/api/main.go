package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jhoicas/Mantenimiento-api/internal/application/inventory"
	"github.com/jhoicas/Mantenimiento-api/internal/application/ports"
	"github.com/jhoicas/Mantenimiento-api/internal/application/procurement"
	"github.com/jhoicas/Mantenimiento-api/internal/infrastructure/catalog"
	"github.com/jhoicas/Mantenimiento-api/internal/infrastructure/memory"
	"github.com/jhoicas/Mantenimiento-api/internal/infrastructure/messaging"
	infrapdf "github.com/jhoicas/Mantenimiento-api/internal/infrastructure/pdf"
	"github.com/jhoicas/Mantenimiento-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/Mantenimiento-api/internal/interfaces/http"
	"github.com/jhoicas/Mantenimiento-api/pkg/config"
	"github.com/jhoicas/Mantenimiento-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("db_driver", cfg.DB.Driver).
		Msg("iniciando aplicación")

	if cfg.JWT.Secret == "" {
		log.Warn().Msg("JWT_SECRET vacío: todas las rutas /api responderán 401")
	}

	ctx := context.Background()

	// Persistencia: PostgreSQL o store en memoria (demo local)
	var (
		txRunner ports.TxRunner
		repos    ports.TxRepos
	)
	switch cfg.DB.Driver {
	case "memory":
		store := memory.NewStore()
		cat, err := catalog.LoadFiles(cfg.Catalog.ProductsFile, cfg.Catalog.SuppliersFile, cfg.Catalog.Charset)
		if err != nil {
			log.Fatal().Err(err).Msg("cargar catálogo")
		}
		for _, s := range cat.Suppliers {
			store.PutSupplier(s)
		}
		for _, p := range cat.Products {
			store.PutProduct(p)
		}
		log.Warn().
			Int("products", len(cat.Products)).
			Int("suppliers", len(cat.Suppliers)).
			Msg("store en memoria: los datos se pierden al reiniciar")
		txRunner, repos = store, store.Repos()
	default:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		if cfg.DB.AutoMigrate {
			if err := postgres.Migrate(ctx, pool); err != nil {
				log.Fatal().Err(err).Msg("aplicar esquema")
			}
			log.Info().Msg("esquema aplicado")
		}
		txRunner, repos = postgres.NewTxRunner(pool), postgres.Repos(pool)
	}

	// Eventos de dominio: Kafka si hay brokers, si no se descartan
	var events ports.EventPublisher = ports.NoopPublisher{}
	if cfg.Kafka.Enabled() {
		publisher := messaging.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.TopicPrefix, cfg.App.Name)
		defer func() {
			if err := publisher.Close(); err != nil {
				log.Error().Err(err).Msg("cerrar publisher Kafka")
			}
		}()
		events = publisher
		log.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic_prefix", cfg.Kafka.TopicPrefix).Msg("publicación de eventos en Kafka")
	}

	ledgerUC := inventory.NewLedgerUseCase(txRunner, repos.Products, repos.Movements, events, log)
	lowStockUC := inventory.NewLowStockUseCase(repos.Products)
	consumptionUC := inventory.NewConsumptionUseCase(txRunner, ledgerUC, repos.Products, repos.Consumptions, events, log)

	// PDF: documento imprimible de la orden de compra
	pdfGenerator := infrapdf.NewMarotoPDFGenerator(cfg.App.Name)
	purchaseOrderUC := procurement.NewPurchaseOrderUseCase(
		txRunner, repos.PurchaseOrders, repos.Suppliers, repos.Products, pdfGenerator, events, log,
	)
	goodsReceiptUC := procurement.NewGoodsReceiptUseCase(
		txRunner, ledgerUC, repos.PurchaseOrders, repos.Suppliers, repos.GRNs, events, log,
	)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat("./docs/swagger.json"); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: "./docs/swagger.json",
			Path:     "docs",
			Title:    "Mantenimiento API",
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "db": cfg.DB.Driver})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Ledger:         ledgerUC,
		LowStock:       lowStockUC,
		Consumption:    consumptionUC,
		PurchaseOrders: purchaseOrderUC,
		GoodsReceipts:  goodsReceiptUC,
		Pages: httpRouter.PageLimits{
			Default: cfg.Inventory.DefaultPageLimit,
			Max:     cfg.Inventory.MaxPageLimit,
		},
		JWTSecret: cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
