package memory

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// Los registros guardados en memdb son inmutables: cada cambio inserta una copia nueva.

type itemRecord struct {
	ID             string
	Name           string
	NameNormalized string
	ItemCode       string
	Category       string
	Unit           string
	ReorderLevel   int
	IsActive       bool
	CurrentStock   int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func toItemRecord(i *entity.StockItem) *itemRecord {
	r := itemRecord(*i)
	return &r
}

func (r *itemRecord) entity() *entity.StockItem {
	e := entity.StockItem(*r)
	return &e
}

type batchRecord struct {
	ID          string
	ItemID      string
	BatchNumber string
	Quantity    int
	ExpiryDate  time.Time
	CostPrice   decimal.Decimal
	CreatedAt   time.Time
	VendorID    *string
}

func toBatchRecord(b *entity.StockBatch) *batchRecord {
	r := batchRecord(*b)
	r.VendorID = cloneString(b.VendorID)
	return &r
}

func (r *batchRecord) entity() *entity.StockBatch {
	e := entity.StockBatch(*r)
	e.VendorID = cloneString(r.VendorID)
	return &e
}

type txRecord struct {
	ID          string
	MovementID  string
	ItemID      string
	Type        string
	Quantity    int
	BatchID     *string
	BatchNumber *string
	PerformedBy string
	PerformedAt time.Time
	Notes       string
	Seq         int64
}

func toTxRecord(t *entity.StockTransaction, seq int64) *txRecord {
	return &txRecord{
		ID:          t.ID,
		MovementID:  t.MovementID,
		ItemID:      t.ItemID,
		Type:        t.Type,
		Quantity:    t.Quantity,
		BatchID:     cloneString(t.BatchID),
		BatchNumber: cloneString(t.BatchNumber),
		PerformedBy: t.PerformedBy,
		PerformedAt: t.PerformedAt,
		Notes:       t.Notes,
		Seq:         seq,
	}
}

func (r *txRecord) entity() *entity.StockTransaction {
	return &entity.StockTransaction{
		ID:          r.ID,
		MovementID:  r.MovementID,
		ItemID:      r.ItemID,
		Type:        r.Type,
		Quantity:    r.Quantity,
		BatchID:     cloneString(r.BatchID),
		BatchNumber: cloneString(r.BatchNumber),
		PerformedBy: r.PerformedBy,
		PerformedAt: r.PerformedAt,
		Notes:       r.Notes,
	}
}

type pendingRecord struct {
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

func toPendingRecord(d *entity.PendingDeduction) *pendingRecord {
	r := pendingRecord(*d)
	return &r
}

func (r *pendingRecord) entity() *entity.PendingDeduction {
	e := entity.PendingDeduction(*r)
	return &e
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
