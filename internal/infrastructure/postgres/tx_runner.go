package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/stock-ledger/internal/application/ledger"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var (
	_ ledger.TxRunner          = (*TxRunner)(nil)
	_ ledger.DeductionTxRunner = (*TxRunner)(nil)
)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción READ COMMITTED, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
// La serialización entre salidas concurrentes la dan los SELECT ... FOR UPDATE de los repos.
func (r *TxRunner) Run(ctx context.Context, fn func(
	itemRepo repository.StockItemRepository,
	batchRepo repository.StockBatchRepository,
	txRepo repository.StockTransactionRepository,
) error) error {
	return r.run(ctx, func(tx pgx.Tx) error {
		return fn(NewStockItemRepository(tx), NewStockBatchRepository(tx), NewStockTransactionRepository(tx))
	})
}

// RunDeduction igual que Run, sumando la cola de conciliación a la misma transacción.
func (r *TxRunner) RunDeduction(ctx context.Context, fn func(
	itemRepo repository.StockItemRepository,
	batchRepo repository.StockBatchRepository,
	txRepo repository.StockTransactionRepository,
	pendingRepo repository.PendingDeductionRepository,
) error) error {
	return r.run(ctx, func(tx pgx.Tx) error {
		return fn(
			NewStockItemRepository(tx),
			NewStockBatchRepository(tx),
			NewStockTransactionRepository(tx),
			NewPendingDeductionRepository(tx),
		)
	})
}

func (r *TxRunner) run(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
