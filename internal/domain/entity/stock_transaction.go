package entity

import "time"

// Tipos de movimiento del libro de stock.
const (
	TransactionTypeIN  = "IN"  // entrada
	TransactionTypeOUT = "OUT" // salida
)

// StockTransaction es un asiento inmutable del libro de stock.
// Quantity siempre es positiva; la dirección la da Type.
// MovementID agrupa todas las filas generadas por una misma llamada (una salida FEFO puede tocar varios lotes).
type StockTransaction struct {
	ID          string
	MovementID  string
	ItemID      string
	Type        string
	Quantity    int
	BatchID     *string // identificador durable del lote afectado
	BatchNumber *string // código visible del lote
	PerformedBy string
	PerformedAt time.Time
	Notes       string
}
