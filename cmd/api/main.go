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

	_ "github.com/jhoicas/stock-ledger/docs"
	"github.com/jhoicas/stock-ledger/internal/application/catalog"
	"github.com/jhoicas/stock-ledger/internal/application/ledger"
	"github.com/jhoicas/stock-ledger/internal/application/pharmacy"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/memory"
	infrapdf "github.com/jhoicas/stock-ledger/internal/infrastructure/pdf"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/stock-ledger/internal/interfaces/http"
	"github.com/jhoicas/stock-ledger/pkg/config"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// @title                       Stock Ledger API
// @version                     1.0
// @description                 Libro de stock por lotes con salida FEFO para inventario hospitalario y farmacia.
// @BasePath                    /
// @securityDefinitions.apikey  Bearer
// @in                          header
// @name                        Authorization
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
		Str("storage", cfg.App.Storage).
		Msg("iniciando aplicación")

	ctx := context.Background()

	var (
		txRunner    ledger.TxRunner
		dedRunner   ledger.DeductionTxRunner
		itemRepo    repository.StockItemRepository
		batchRepo   repository.StockBatchRepository
		txRepo      repository.StockTransactionRepository
		pendingRepo repository.PendingDeductionRepository
	)
	switch cfg.App.Storage {
	case config.StorageMemory:
		store, err := memory.NewStore()
		if err != nil {
			log.Fatal().Err(err).Msg("almacenamiento en memoria")
		}
		log.Warn().Msg("STORAGE_DRIVER=memory: los datos no persisten entre reinicios")
		runner := memory.NewTxRunner(store)
		txRunner, dedRunner = runner, runner
		itemRepo = memory.NewStockItemRepository(store)
		batchRepo = memory.NewStockBatchRepository(store)
		txRepo = memory.NewStockTransactionRepository(store)
		pendingRepo = memory.NewPendingDeductionRepository(store)
	default:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		runner := postgres.NewTxRunner(pool)
		txRunner, dedRunner = runner, runner
		itemRepo = postgres.NewStockItemRepository(pool)
		batchRepo = postgres.NewStockBatchRepository(pool)
		txRepo = postgres.NewStockTransactionRepository(pool)
		pendingRepo = postgres.NewPendingDeductionRepository(pool)
	}

	ledgerSvc := ledger.NewService(txRunner, itemRepo, batchRepo, txRepo, ledger.Config{
		NearExpiryHorizon:  cfg.Ledger.NearExpiryHorizon(),
		RecentTransactions: cfg.Ledger.RecentTransactions,
		BlockExpiredIssue:  cfg.Ledger.BlockExpiredIssue,
	}, log)
	reportUC := ledger.NewReportUseCase(ledgerSvc, infrapdf.NewMarotoExpiryReport())
	catalogUC := catalog.NewUseCase(itemRepo, log)
	deductionUC := pharmacy.NewDeductionUseCase(ledgerSvc, dedRunner, pendingRepo, pharmacy.Policy(cfg.Pharmacy.DeductionPolicy), log)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Stock Ledger API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "storage": cfg.App.Storage})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Ledger:         ledgerSvc,
		Reports:        reportUC,
		Catalog:        catalogUC,
		Deductions:     deductionUC,
		RetryBatchSize: cfg.Pharmacy.RetryBatchSize,
		JWTSecret:      cfg.JWT.Secret,
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
