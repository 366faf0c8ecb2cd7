package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/catalog"
	"github.com/jhoicas/stock-ledger/internal/application/ledger"
	"github.com/jhoicas/stock-ledger/internal/application/pharmacy"
	"github.com/jhoicas/stock-ledger/pkg/jwt"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Ledger         *ledger.Service
	Reports        *ledger.ReportUseCase
	Catalog        *catalog.UseCase
	Deductions     *pharmacy.DeductionUseCase
	RetryBatchSize int
	JWTSecret      string
}

// Router registra las rutas de la API. Todas requieren Bearer Token.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	readers := RequireRole(jwt.RoleAdmin, jwt.RoleStore, jwt.RolePharmacy)
	store := RequireRole(jwt.RoleAdmin, jwt.RoleStore)
	pharmacyOnly := RequireRole(jwt.RoleAdmin, jwt.RolePharmacy)

	// Catálogo y libro de stock
	inv := api.Group("/inventory")
	catalogHandler := NewCatalogHandler(deps.Catalog)
	inv.Post("/items", store, catalogHandler.Create)
	inv.Get("/items/:id", readers, catalogHandler.GetByID)
	inv.Delete("/items/:id", RequireRole(jwt.RoleAdmin), catalogHandler.Deactivate)

	ledgerHandler := NewLedgerHandler(deps.Ledger, deps.Reports)
	inv.Post("/stock/add", store, ledgerHandler.AddStock)
	inv.Post("/stock/issue", store, ledgerHandler.IssueStock)
	inv.Get("/stock", readers, ledgerHandler.ListStock)
	inv.Get("/stats", readers, ledgerHandler.Stats)
	inv.Get("/expiry-alerts", readers, ledgerHandler.ExpiryAlerts)
	inv.Get("/expiry-report.pdf", readers, ledgerHandler.ExpiryReportPDF)

	// Punto de venta de farmacia
	ph := api.Group("/pharmacy", pharmacyOnly)
	pharmacyHandler := NewPharmacyHandler(deps.Catalog, deps.Deductions, deps.RetryBatchSize)
	ph.Get("/medicines", pharmacyHandler.SearchMedicines)
	ph.Post("/sales/deductions", pharmacyHandler.DeductSale)
	ph.Get("/deductions/pending", pharmacyHandler.ListPending)
	ph.Post("/deductions/retry", pharmacyHandler.RetryPending)
}
