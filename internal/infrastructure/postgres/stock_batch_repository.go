package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.StockBatchRepository = (*StockBatchRepo)(nil)

// StockBatchRepo implementación de StockBatchRepository sobre PostgreSQL.
type StockBatchRepo struct {
	q Querier
}

// NewStockBatchRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockBatchRepository(q Querier) *StockBatchRepo {
	return &StockBatchRepo{q: q}
}

const stockBatchColumns = `b.id, b.item_id, b.batch_number, b.quantity, b.expiry_date, b.cost_price, b.created_at, b.vendor_id`

func scanStockBatch(row pgx.Row) (*entity.StockBatch, error) {
	var b entity.StockBatch
	if err := row.Scan(&b.ID, &b.ItemID, &b.BatchNumber, &b.Quantity, &b.ExpiryDate, &b.CostPrice, &b.CreatedAt, &b.VendorID); err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *StockBatchRepo) Create(ctx context.Context, batch *entity.StockBatch) error {
	query := `
		INSERT INTO stock_batches (id, item_id, batch_number, quantity, expiry_date, cost_price, created_at, vendor_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query,
		batch.ID, batch.ItemID, batch.BatchNumber, batch.Quantity, batch.ExpiryDate, batch.CostPrice, batch.CreatedAt, batch.VendorID,
	)
	if err != nil {
		if isCheckViolation(err) {
			return domain.ErrInvalidInput
		}
		return fmt.Errorf("insert stock batch: %w", err)
	}
	return nil
}

// ListAvailableForUpdate lotes con existencia del ítem en orden FEFO, bloqueados hasta el fin de la tx.
func (r *StockBatchRepo) ListAvailableForUpdate(ctx context.Context, itemID string) ([]*entity.StockBatch, error) {
	query := `
		SELECT ` + stockBatchColumns + ` FROM stock_batches b
		WHERE b.item_id = $1 AND b.quantity > 0
		ORDER BY b.expiry_date, b.created_at, b.id
		FOR UPDATE`
	return r.list(ctx, query, itemID)
}

// ListAvailable lotes con existencia de ítems activos, agrupados por ítem y en orden FEFO.
func (r *StockBatchRepo) ListAvailable(ctx context.Context) ([]*entity.StockBatch, error) {
	query := `
		SELECT ` + stockBatchColumns + ` FROM stock_batches b
		JOIN stock_items i ON i.id = b.item_id
		WHERE i.is_active AND b.quantity > 0
		ORDER BY b.item_id, b.expiry_date, b.created_at, b.id`
	return r.list(ctx, query)
}

// Decrement resta amount solo si el lote todavía lo tiene; 0 filas -> domain.ErrConcurrentUpdate.
func (r *StockBatchRepo) Decrement(ctx context.Context, batchID string, amount int) error {
	if amount <= 0 {
		return domain.ErrInvalidInput
	}
	tag, err := r.q.Exec(ctx,
		`UPDATE stock_batches SET quantity = quantity - $2 WHERE id = $1 AND quantity >= $2`,
		batchID, amount,
	)
	if err != nil {
		return fmt.Errorf("decrement stock batch: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrConcurrentUpdate
	}
	return nil
}

func (r *StockBatchRepo) list(ctx context.Context, query string, args ...any) ([]*entity.StockBatch, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list stock batches: %w", err)
	}
	defer rows.Close()
	var out []*entity.StockBatch
	for rows.Next() {
		b, err := scanStockBatch(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stock batch: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
