package ledger

import (
	"context"
	"time"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una unidad de trabajo atómica, pasando repositorios atados a ella.
// Si fn devuelve error no se confirma nada.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		itemRepo repository.StockItemRepository,
		batchRepo repository.StockBatchRepository,
		txRepo repository.StockTransactionRepository,
	) error) error
}

// DeductionTxRunner abre la misma unidad de trabajo que TxRunner sumando la cola de conciliación de farmacia,
// para que la salida y la resolución de una deducción pendiente se confirmen juntas.
type DeductionTxRunner interface {
	RunDeduction(ctx context.Context, fn func(
		itemRepo repository.StockItemRepository,
		batchRepo repository.StockBatchRepository,
		txRepo repository.StockTransactionRepository,
		pendingRepo repository.PendingDeductionRepository,
	) error) error
}

// ExpiryReport datos del reporte imprimible de vencimientos.
type ExpiryReport struct {
	GeneratedAt time.Time
	HorizonDays int
	Stats       dto.InventoryStats
	Alerts      []dto.ExpiryAlert
}

// ExpiryReportGenerator genera la representación PDF del reporte de vencimientos.
type ExpiryReportGenerator interface {
	GenerateExpiryReport(ctx context.Context, report ExpiryReport) ([]byte, error)
}
