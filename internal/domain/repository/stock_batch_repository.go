package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// StockBatchRepository define el puerto para los lotes físicos de cada ítem.
type StockBatchRepository interface {
	Create(ctx context.Context, batch *entity.StockBatch) error
	// ListAvailableForUpdate devuelve los lotes con quantity > 0 del ítem en orden FEFO
	// (expiry_date, created_at, id) y los bloquea dentro de la transacción.
	ListAvailableForUpdate(ctx context.Context, itemID string) ([]*entity.StockBatch, error)
	// ListAvailable devuelve los lotes no agotados de ítems activos, agrupables por ItemID y en orden FEFO.
	ListAvailable(ctx context.Context) ([]*entity.StockBatch, error)
	// Decrement resta amount solo si el lote conserva al menos esa cantidad; si no, domain.ErrConcurrentUpdate.
	Decrement(ctx context.Context, batchID string, amount int) error
}
