package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// StockTransactionRepository es el libro append-only de movimientos. No expone update ni delete.
type StockTransactionRepository interface {
	Create(ctx context.Context, tx *entity.StockTransaction) error
	// ListRecentByItem devuelve los últimos limit movimientos del ítem, más reciente primero.
	ListRecentByItem(ctx context.Context, itemID string, limit int) ([]*entity.StockTransaction, error)
	// ListRecent devuelve, para cada ítem activo, sus últimos perItem movimientos (más reciente primero).
	ListRecent(ctx context.Context, perItem int) ([]*entity.StockTransaction, error)
	ListByMovement(ctx context.Context, movementID string) ([]*entity.StockTransaction, error)
}
