package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/hashicorp/go-memdb"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.StockItemRepository = (*StockItemRepo)(nil)

// StockItemRepo ítems del catálogo en memoria.
type StockItemRepo struct {
	q querier
}

// NewStockItemRepository construye el repositorio fuera de transacción.
func NewStockItemRepository(store *Store) *StockItemRepo {
	return &StockItemRepo{q: querier{store: store}}
}

func (r *StockItemRepo) Create(_ context.Context, item *entity.StockItem) error {
	return r.q.write(func(txn *memdb.Txn) error {
		for index, val := range map[string]string{"id": item.ID, "code": item.ItemCode} {
			found, err := exists(txn, tableItems, index, val)
			if err != nil {
				return err
			}
			if found {
				return domain.ErrDuplicate
			}
		}
		if err := txn.Insert(tableItems, toItemRecord(item)); err != nil {
			return fmt.Errorf("insert stock item: %w", err)
		}
		return nil
	})
}

func getItem(txn *memdb.Txn, id string) (*itemRecord, error) {
	obj, err := txn.First(tableItems, "id", id)
	if err != nil {
		return nil, fmt.Errorf("get stock item: %w", err)
	}
	if obj == nil {
		return nil, nil
	}
	return obj.(*itemRecord), nil
}

func (r *StockItemRepo) GetByID(_ context.Context, id string) (*entity.StockItem, error) {
	var out *entity.StockItem
	err := r.q.read(func(txn *memdb.Txn) error {
		rec, err := getItem(txn, id)
		if rec != nil {
			out = rec.entity()
		}
		return err
	})
	return out, err
}

// GetForUpdate: dentro de una txn de escritura memdb ya tiene acceso exclusivo.
func (r *StockItemRepo) GetForUpdate(ctx context.Context, id string) (*entity.StockItem, error) {
	return r.GetByID(ctx, id)
}

func (r *StockItemRepo) RecomputeCurrentStock(_ context.Context, id string) (int, error) {
	total := 0
	err := r.q.write(func(txn *memdb.Txn) error {
		rec, err := getItem(txn, id)
		if err != nil {
			return err
		}
		if rec == nil {
			return domain.ErrItemNotFound
		}
		batches, err := collect[*batchRecord](txn, tableBatches, "item", id)
		if err != nil {
			return err
		}
		for _, b := range batches {
			if b.Quantity > 0 {
				total += b.Quantity
			}
		}
		updated := *rec
		updated.CurrentStock = total
		updated.UpdatedAt = time.Now()
		return txn.Insert(tableItems, &updated)
	})
	return total, err
}

func (r *StockItemRepo) Deactivate(_ context.Context, id string) error {
	return r.q.write(func(txn *memdb.Txn) error {
		rec, err := getItem(txn, id)
		if err != nil {
			return err
		}
		if rec == nil {
			return domain.ErrNotFound
		}
		updated := *rec
		updated.IsActive = false
		updated.UpdatedAt = time.Now()
		return txn.Insert(tableItems, &updated)
	})
}

func (r *StockItemRepo) ListActive(_ context.Context) ([]*entity.StockItem, error) {
	var out []*entity.StockItem
	err := r.q.read(func(txn *memdb.Txn) error {
		recs, err := collect[*itemRecord](txn, tableItems, "id")
		if err != nil {
			return err
		}
		for _, rec := range recs {
			if rec.IsActive {
				out = append(out, rec.entity())
			}
		}
		return nil
	})
	sortByName(out)
	return out, err
}

func (r *StockItemRepo) SearchActiveInStock(ctx context.Context, normalizedQuery string, limit int) ([]*entity.StockItem, error) {
	active, err := r.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	var out []*entity.StockItem
	for _, it := range active {
		if it.CurrentStock > 0 && strings.Contains(it.NameNormalized, normalizedQuery) {
			out = append(out, it)
			if limit > 0 && len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func sortByName(items []*entity.StockItem) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Name != items[j].Name {
			return items[i].Name < items[j].Name
		}
		return items[i].ID < items[j].ID
	})
}
