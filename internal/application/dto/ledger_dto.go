package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// AddStockRequest body para POST /api/inventory/stock/add.
type AddStockRequest struct {
	ItemID      string          `json:"item_id"`
	BatchNumber string          `json:"batch_number"`
	Quantity    int             `json:"quantity"`
	ExpiryDate  string          `json:"expiry_date" example:"2027-01-31"` // YYYY-MM-DD o RFC3339
	CostPrice   decimal.Decimal `json:"cost_price"`
	VendorID    *string         `json:"vendor_id,omitempty"`
	Notes       string          `json:"notes,omitempty"`
}

// AddStockResponse resultado de una entrada de stock.
type AddStockResponse struct {
	BatchID      string `json:"batch_id"`
	MovementID   string `json:"movement_id"`
	CurrentStock int    `json:"current_stock"`
}

// IssueStockRequest body para POST /api/inventory/stock/issue.
type IssueStockRequest struct {
	ItemID   string `json:"item_id"`
	Quantity int    `json:"quantity"`
	Notes    string `json:"notes,omitempty"`
}

// AllocationDTO porción tomada de un lote en una salida FEFO.
type AllocationDTO struct {
	BatchID     string    `json:"batch_id"`
	BatchNumber string    `json:"batch_number"`
	ExpiryDate  time.Time `json:"expiry_date"`
	Quantity    int       `json:"quantity"`
	Expired     bool      `json:"expired"`
}

// IssueStockResponse resultado de una salida FEFO.
type IssueStockResponse struct {
	MovementID   string          `json:"movement_id"`
	Allocations  []AllocationDTO `json:"allocations"`
	CurrentStock int             `json:"current_stock"`
}

// BatchView lote no agotado en el modelo de lectura.
type BatchView struct {
	ID           string          `json:"id"`
	BatchNumber  string          `json:"batch_number"`
	Quantity     int             `json:"quantity"`
	ExpiryDate   time.Time       `json:"expiry_date"`
	CostPrice    decimal.Decimal `json:"cost_price"`
	CreatedAt    time.Time       `json:"created_at"` // fecha de recepción
	ExpiryStatus string          `json:"expiry_status"`
}

// TransactionView movimiento del libro en el modelo de lectura.
type TransactionView struct {
	ID              string    `json:"id"`
	MovementID      string    `json:"movement_id"`
	TransactionType string    `json:"transaction_type"`
	Quantity        int       `json:"quantity"`
	BatchID         *string   `json:"batch_id,omitempty"`
	BatchNumber     *string   `json:"batch_number,omitempty"`
	PerformedBy     string    `json:"performed_by"`
	PerformedAt     time.Time `json:"performed_at"`
	Notes           string    `json:"notes,omitempty"`
}

// StockItemView snapshot de un ítem: atributos, lotes en orden FEFO y últimos movimientos.
type StockItemView struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	ItemCode     string            `json:"item_code"`
	Category     string            `json:"category"`
	Unit         string            `json:"unit"`
	ReorderLevel int               `json:"reorder_level"`
	CurrentStock int               `json:"current_stock"`
	Status       string            `json:"status"`
	NextExpiry   *time.Time        `json:"next_expiry,omitempty"`
	AverageCost  decimal.Decimal   `json:"average_cost"` // promedio ponderado de los lotes con existencia
	Batches      []BatchView       `json:"batches"`
	Transactions []TransactionView `json:"transactions"`
}

// InventoryStats agregados del catálogo activo.
type InventoryStats struct {
	TotalItems      int             `json:"total_items"`
	TotalValue      decimal.Decimal `json:"total_value"`
	LowStockItems   int             `json:"low_stock_items"`
	ExpiredItems    int             `json:"expired_items"`     // lotes vencidos con stock
	NearExpiryItems int             `json:"near_expiry_items"` // lotes próximos a vencer con stock
}

// ExpiryAlert lote vencido o próximo a vencer, para banners y reporte.
type ExpiryAlert struct {
	ItemID       string          `json:"item_id"`
	ItemName     string          `json:"item_name"`
	ItemCode     string          `json:"item_code"`
	BatchID      string          `json:"batch_id"`
	BatchNumber  string          `json:"batch_number"`
	Quantity     int             `json:"quantity"`
	ExpiryDate   time.Time       `json:"expiry_date"`
	DaysToExpiry int             `json:"days_to_expiry"`
	Status       string          `json:"status"`
	Value        decimal.Decimal `json:"value"`
}
