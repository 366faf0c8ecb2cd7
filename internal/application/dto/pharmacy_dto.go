package dto

import "time"

// SaleLine línea de una factura de farmacia ya finalizada.
type SaleLine struct {
	ItemID   string `json:"item_id"`
	Quantity int    `json:"quantity"`
}

// SaleDeductionRequest body para POST /api/pharmacy/sales/deductions.
type SaleDeductionRequest struct {
	BillRef string     `json:"bill_ref"`
	Lines   []SaleLine `json:"lines"`
}

// Resultados por línea.
const (
	LineOutcomeIssued  = "ISSUED"
	LineOutcomeQueued  = "QUEUED"
	LineOutcomeFailed  = "FAILED"
	LineOutcomeSkipped = "SKIPPED"
)

// SaleLineResult resultado independiente de una línea.
type SaleLineResult struct {
	ItemID     string `json:"item_id"`
	Quantity   int    `json:"quantity"`
	Outcome    string `json:"outcome"`
	MovementID string `json:"movement_id,omitempty"`
	PendingID  string `json:"pending_id,omitempty"`
	Error      string `json:"error,omitempty"`
}

// SaleDeductionResult resultado agregado del descuento de una venta.
type SaleDeductionResult struct {
	BillRef  string           `json:"bill_ref"`
	Policy   string           `json:"policy"`
	Complete bool             `json:"complete"`
	Lines    []SaleLineResult `json:"lines"`
}

// PendingDeductionView deducción en cola de conciliación.
type PendingDeductionView struct {
	ID        string    `json:"id"`
	BillRef   string    `json:"bill_ref"`
	ItemID    string    `json:"item_id"`
	Quantity  int       `json:"quantity"`
	Attempts  int       `json:"attempts"`
	LastError string    `json:"last_error"`
	CreatedAt time.Time `json:"created_at"`
}

// RetryResult resumen de un reintento de la cola.
type RetryResult struct {
	Attempted int `json:"attempted"`
	Resolved  int `json:"resolved"`
	Failed    int `json:"failed"`
	Skipped   int `json:"skipped"` // ya resueltas o tomadas por otro reintento
}
