package memory

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/application/ledger"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var (
	_ ledger.TxRunner          = (*TxRunner)(nil)
	_ ledger.DeductionTxRunner = (*TxRunner)(nil)
)

// TxRunner ejecuta callbacks dentro de una txn de escritura memdb: Commit si fn termina sin error, Abort si no.
type TxRunner struct {
	store *Store
}

// NewTxRunner construye el runner.
func NewTxRunner(store *Store) *TxRunner {
	return &TxRunner{store: store}
}

func (r *TxRunner) Run(ctx context.Context, fn func(
	itemRepo repository.StockItemRepository,
	batchRepo repository.StockBatchRepository,
	txRepo repository.StockTransactionRepository,
) error) error {
	return r.run(ctx, func(q querier) error {
		return fn(&StockItemRepo{q: q}, &StockBatchRepo{q: q}, &StockTransactionRepo{q: q})
	})
}

// RunDeduction igual que Run, con la cola de conciliación en la misma txn.
func (r *TxRunner) RunDeduction(ctx context.Context, fn func(
	itemRepo repository.StockItemRepository,
	batchRepo repository.StockBatchRepository,
	txRepo repository.StockTransactionRepository,
	pendingRepo repository.PendingDeductionRepository,
) error) error {
	return r.run(ctx, func(q querier) error {
		return fn(&StockItemRepo{q: q}, &StockBatchRepo{q: q}, &StockTransactionRepo{q: q}, &PendingDeductionRepo{q: q})
	})
}

func (r *TxRunner) run(ctx context.Context, fn func(q querier) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	txn := r.store.db.Txn(true)
	defer txn.Abort()

	if err := fn(querier{store: r.store, txn: txn}); err != nil {
		return err
	}
	txn.Commit()
	return nil
}
