package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockBatch representa una recepción física de unidades con un mismo vencimiento y costo.
// Nunca se elimina: con Quantity == 0 queda agotado y solo se conserva para auditoría.
type StockBatch struct {
	ID          string
	ItemID      string
	BatchNumber string // lote del proveedor, no es único globalmente
	Quantity    int
	ExpiryDate  time.Time
	CostPrice   decimal.Decimal
	CreatedAt   time.Time // fecha de recepción
	VendorID    *string
}

// Exhausted indica si el lote ya no participa en asignaciones ni totales.
func (b *StockBatch) Exhausted() bool {
	return b.Quantity <= 0
}

// Value devuelve Quantity * CostPrice.
func (b *StockBatch) Value() decimal.Decimal {
	return b.CostPrice.Mul(decimal.NewFromInt(int64(b.Quantity)))
}
