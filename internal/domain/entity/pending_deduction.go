package entity

import "time"

// Estados de una deducción pendiente.
const (
	DeductionStatusPending  = "PENDING"
	DeductionStatusResolved = "RESOLVED"
)

// PendingDeduction es una salida de farmacia que no pudo aplicarse al cerrar la factura
// y queda en cola de conciliación hasta que un reintento la resuelva.
type PendingDeduction struct {
	ID          string
	BillRef     string
	ItemID      string
	Quantity    int
	Notes       string
	PerformedBy string
	Attempts    int
	LastError   string
	Status      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	ResolvedAt  *time.Time
}
