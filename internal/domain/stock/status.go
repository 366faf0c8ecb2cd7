package stock

import "github.com/jhoicas/stock-ledger/internal/domain/entity"

// DeriveStatus calcula el estado del ítem a partir del stock actual y el nivel de reorden.
func DeriveStatus(currentStock, reorderLevel int) string {
	switch {
	case currentStock <= 0:
		return entity.ItemStatusOutOfStock
	case currentStock <= reorderLevel:
		return entity.ItemStatusLowStock
	default:
		return entity.ItemStatusActive
	}
}
