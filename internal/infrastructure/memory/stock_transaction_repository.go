package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/hashicorp/go-memdb"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.StockTransactionRepository = (*StockTransactionRepo)(nil)

// StockTransactionRepo libro de movimientos en memoria (append-only).
type StockTransactionRepo struct {
	q querier
}

// NewStockTransactionRepository construye el repositorio fuera de transacción.
func NewStockTransactionRepository(store *Store) *StockTransactionRepo {
	return &StockTransactionRepo{q: querier{store: store}}
}

func (r *StockTransactionRepo) Create(_ context.Context, t *entity.StockTransaction) error {
	if t.Quantity <= 0 {
		return domain.ErrInvalidInput
	}
	return r.q.write(func(txn *memdb.Txn) error {
		found, err := exists(txn, tableTransactions, "id", t.ID)
		if err != nil {
			return err
		}
		if found {
			return domain.ErrDuplicate
		}
		if err := txn.Insert(tableTransactions, toTxRecord(t, r.q.store.seq.Add(1))); err != nil {
			return fmt.Errorf("insert stock transaction: %w", err)
		}
		return nil
	})
}

// newestFirst: performed_at desc, luego orden de inserción desc.
func newestFirst(recs []*txRecord) {
	sort.SliceStable(recs, func(i, j int) bool {
		if !recs[i].PerformedAt.Equal(recs[j].PerformedAt) {
			return recs[i].PerformedAt.After(recs[j].PerformedAt)
		}
		return recs[i].Seq > recs[j].Seq
	})
}

func (r *StockTransactionRepo) ListRecentByItem(_ context.Context, itemID string, limit int) ([]*entity.StockTransaction, error) {
	var out []*entity.StockTransaction
	err := r.q.read(func(txn *memdb.Txn) error {
		recs, err := collect[*txRecord](txn, tableTransactions, "item", itemID)
		if err != nil {
			return err
		}
		newestFirst(recs)
		for i, rec := range recs {
			if limit > 0 && i == limit {
				break
			}
			out = append(out, rec.entity())
		}
		return nil
	})
	return out, err
}

func (r *StockTransactionRepo) ListRecent(_ context.Context, perItem int) ([]*entity.StockTransaction, error) {
	var out []*entity.StockTransaction
	err := r.q.read(func(txn *memdb.Txn) error {
		recs, err := collect[*txRecord](txn, tableTransactions, "id")
		if err != nil {
			return err
		}
		newestFirst(recs)
		taken := make(map[string]int)
		for _, rec := range recs {
			if perItem > 0 && taken[rec.ItemID] >= perItem {
				continue
			}
			item, err := getItem(txn, rec.ItemID)
			if err != nil {
				return err
			}
			if item == nil || !item.IsActive {
				continue
			}
			taken[rec.ItemID]++
			out = append(out, rec.entity())
		}
		return nil
	})
	return out, err
}

func (r *StockTransactionRepo) ListByMovement(_ context.Context, movementID string) ([]*entity.StockTransaction, error) {
	var out []*entity.StockTransaction
	err := r.q.read(func(txn *memdb.Txn) error {
		recs, err := collect[*txRecord](txn, tableTransactions, "movement", movementID)
		if err != nil {
			return err
		}
		sort.SliceStable(recs, func(i, j int) bool { return recs[i].Seq < recs[j].Seq })
		for _, rec := range recs {
			out = append(out, rec.entity())
		}
		return nil
	})
	return out, err
}
