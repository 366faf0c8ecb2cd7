package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.StockTransactionRepository = (*StockTransactionRepo)(nil)

// StockTransactionRepo libro de movimientos (append-only). seq desempata asientos con el mismo performed_at.
type StockTransactionRepo struct {
	q Querier
}

// NewStockTransactionRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockTransactionRepository(q Querier) *StockTransactionRepo {
	return &StockTransactionRepo{q: q}
}

const stockTransactionColumns = `id, movement_id, item_id, transaction_type, quantity, batch_id, batch_number, performed_by, performed_at, notes`

func (r *StockTransactionRepo) Create(ctx context.Context, t *entity.StockTransaction) error {
	query := `
		INSERT INTO stock_transactions (` + stockTransactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		t.ID, t.MovementID, t.ItemID, t.Type, t.Quantity, t.BatchID, t.BatchNumber, t.PerformedBy, t.PerformedAt, t.Notes,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		if isCheckViolation(err) {
			return domain.ErrInvalidInput
		}
		return fmt.Errorf("insert stock transaction: %w", err)
	}
	return nil
}

func (r *StockTransactionRepo) ListRecentByItem(ctx context.Context, itemID string, limit int) ([]*entity.StockTransaction, error) {
	query := `
		SELECT ` + stockTransactionColumns + ` FROM stock_transactions
		WHERE item_id = $1
		ORDER BY performed_at DESC, seq DESC
		LIMIT $2`
	return r.list(ctx, query, itemID, limit)
}

// ListRecent últimos perItem asientos de cada ítem activo.
func (r *StockTransactionRepo) ListRecent(ctx context.Context, perItem int) ([]*entity.StockTransaction, error) {
	query := `
		SELECT ` + stockTransactionColumns + ` FROM (
			SELECT t.*, ROW_NUMBER() OVER (PARTITION BY t.item_id ORDER BY t.performed_at DESC, t.seq DESC) AS rn
			FROM stock_transactions t
			JOIN stock_items i ON i.id = t.item_id
			WHERE i.is_active
		) ranked
		WHERE rn <= $1
		ORDER BY item_id, performed_at DESC, seq DESC`
	return r.list(ctx, query, perItem)
}

func (r *StockTransactionRepo) ListByMovement(ctx context.Context, movementID string) ([]*entity.StockTransaction, error) {
	query := `SELECT ` + stockTransactionColumns + ` FROM stock_transactions WHERE movement_id = $1 ORDER BY seq`
	return r.list(ctx, query, movementID)
}

func (r *StockTransactionRepo) list(ctx context.Context, query string, args ...any) ([]*entity.StockTransaction, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list stock transactions: %w", err)
	}
	defer rows.Close()
	var out []*entity.StockTransaction
	for rows.Next() {
		var t entity.StockTransaction
		if err := rows.Scan(
			&t.ID, &t.MovementID, &t.ItemID, &t.Type, &t.Quantity, &t.BatchID, &t.BatchNumber,
			&t.PerformedBy, &t.PerformedAt, &t.Notes,
		); err != nil {
			return nil, fmt.Errorf("scan stock transaction: %w", err)
		}
		out = append(out, &t)
	}
	return out, rows.Err()
}
