package dto

import "time"

// CreateStockItemRequest body para POST /api/inventory/items.
type CreateStockItemRequest struct {
	Name         string `json:"name"`
	ItemCode     string `json:"item_code"`
	Category     string `json:"category"`
	Unit         string `json:"unit"`
	ReorderLevel int    `json:"reorder_level"`
}

// StockItemResponse representación de un ítem del catálogo.
type StockItemResponse struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	ItemCode     string    `json:"item_code"`
	Category     string    `json:"category"`
	Unit         string    `json:"unit"`
	ReorderLevel int       `json:"reorder_level"`
	CurrentStock int       `json:"current_stock"`
	IsActive     bool      `json:"is_active"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
}

// MedicineResult resultado de búsqueda de medicamentos en el punto de venta.
type MedicineResult struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	ItemCode     string `json:"item_code"`
	CurrentStock int    `json:"current_stock"`
	Unit         string `json:"unit"`
}
