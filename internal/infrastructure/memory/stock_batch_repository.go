package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/hashicorp/go-memdb"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/internal/domain/stock"
)

var _ repository.StockBatchRepository = (*StockBatchRepo)(nil)

// StockBatchRepo lotes en memoria.
type StockBatchRepo struct {
	q querier
}

// NewStockBatchRepository construye el repositorio fuera de transacción.
func NewStockBatchRepository(store *Store) *StockBatchRepo {
	return &StockBatchRepo{q: querier{store: store}}
}

func (r *StockBatchRepo) Create(_ context.Context, batch *entity.StockBatch) error {
	if batch.Quantity < 0 {
		return domain.ErrInvalidInput
	}
	return r.q.write(func(txn *memdb.Txn) error {
		if err := txn.Insert(tableBatches, toBatchRecord(batch)); err != nil {
			return fmt.Errorf("insert stock batch: %w", err)
		}
		return nil
	})
}

func (r *StockBatchRepo) ListAvailableForUpdate(_ context.Context, itemID string) ([]*entity.StockBatch, error) {
	var out []*entity.StockBatch
	err := r.q.read(func(txn *memdb.Txn) error {
		recs, err := collect[*batchRecord](txn, tableBatches, "item", itemID)
		if err != nil {
			return err
		}
		for _, rec := range recs {
			if rec.Quantity > 0 {
				out = append(out, rec.entity())
			}
		}
		return nil
	})
	stock.SortFEFO(out)
	return out, err
}

func (r *StockBatchRepo) ListAvailable(_ context.Context) ([]*entity.StockBatch, error) {
	var out []*entity.StockBatch
	err := r.q.read(func(txn *memdb.Txn) error {
		recs, err := collect[*batchRecord](txn, tableBatches, "id")
		if err != nil {
			return err
		}
		for _, rec := range recs {
			if rec.Quantity <= 0 {
				continue
			}
			item, err := getItem(txn, rec.ItemID)
			if err != nil {
				return err
			}
			if item != nil && item.IsActive {
				out = append(out, rec.entity())
			}
		}
		return nil
	})
	stock.SortFEFO(out)
	sort.SliceStable(out, func(i, j int) bool { return out[i].ItemID < out[j].ItemID })
	return out, err
}

func (r *StockBatchRepo) Decrement(_ context.Context, batchID string, amount int) error {
	if amount <= 0 {
		return domain.ErrInvalidInput
	}
	return r.q.write(func(txn *memdb.Txn) error {
		obj, err := txn.First(tableBatches, "id", batchID)
		if err != nil {
			return fmt.Errorf("get stock batch: %w", err)
		}
		if obj == nil {
			return domain.ErrConcurrentUpdate
		}
		rec := obj.(*batchRecord)
		if rec.Quantity < amount {
			return domain.ErrConcurrentUpdate
		}
		updated := *rec
		updated.Quantity -= amount
		return txn.Insert(tableBatches, &updated)
	})
}
