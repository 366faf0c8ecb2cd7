package entity

import "time"

// Estados derivados de un ítem (nunca se persisten).
const (
	ItemStatusActive     = "ACTIVE"
	ItemStatusLowStock   = "LOW_STOCK"
	ItemStatusOutOfStock = "OUT_OF_STOCK"
)

// StockItem representa un ítem del catálogo que agrega todos sus lotes.
// CurrentStock es un contador materializado: igual a la suma de Quantity de sus lotes no agotados.
type StockItem struct {
	ID             string
	Name           string
	NameNormalized string // minúsculas sin tildes, para búsqueda
	ItemCode       string // código único legible
	Category       string
	Unit           string // tablet, box, vial...
	ReorderLevel   int
	IsActive       bool
	CurrentStock   int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
