package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// StockItemRepository define el puerto de persistencia para ítems del catálogo de stock.
// Los métodos de lectura devuelven (nil, nil) si el ítem no existe.
type StockItemRepository interface {
	Create(ctx context.Context, item *entity.StockItem) error
	GetByID(ctx context.Context, id string) (*entity.StockItem, error)
	// GetForUpdate bloquea la fila del ítem (SELECT FOR UPDATE); serializa escrituras por ítem.
	GetForUpdate(ctx context.Context, id string) (*entity.StockItem, error)
	// RecomputeCurrentStock recalcula current_stock como suma de lotes no agotados y devuelve el nuevo valor.
	RecomputeCurrentStock(ctx context.Context, id string) (int, error)
	Deactivate(ctx context.Context, id string) error
	ListActive(ctx context.Context) ([]*entity.StockItem, error)
	SearchActiveInStock(ctx context.Context, normalizedQuery string, limit int) ([]*entity.StockItem, error)
}
