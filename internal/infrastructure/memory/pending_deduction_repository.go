package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/hashicorp/go-memdb"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.PendingDeductionRepository = (*PendingDeductionRepo)(nil)

// PendingDeductionRepo cola de conciliación en memoria.
type PendingDeductionRepo struct {
	q querier
}

// NewPendingDeductionRepository construye el repositorio.
func NewPendingDeductionRepository(store *Store) *PendingDeductionRepo {
	return &PendingDeductionRepo{q: querier{store: store}}
}

func (r *PendingDeductionRepo) Create(_ context.Context, d *entity.PendingDeduction) error {
	return r.q.write(func(txn *memdb.Txn) error {
		if err := txn.Insert(tablePending, toPendingRecord(d)); err != nil {
			return fmt.Errorf("insert pending deduction: %w", err)
		}
		return nil
	})
}

func (r *PendingDeductionRepo) ListPending(_ context.Context, limit int) ([]*entity.PendingDeduction, error) {
	var out []*entity.PendingDeduction
	err := r.q.read(func(txn *memdb.Txn) error {
		recs, err := collect[*pendingRecord](txn, tablePending, "status", entity.DeductionStatusPending)
		if err != nil {
			return err
		}
		sort.SliceStable(recs, func(i, j int) bool {
			if !recs[i].CreatedAt.Equal(recs[j].CreatedAt) {
				return recs[i].CreatedAt.Before(recs[j].CreatedAt)
			}
			return recs[i].ID < recs[j].ID
		})
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

// ClaimPending dentro de una txn de escritura memdb ya excluye a los demás escritores;
// basta con releer el estado.
func (r *PendingDeductionRepo) ClaimPending(_ context.Context, id string) (*entity.PendingDeduction, error) {
	var out *entity.PendingDeduction
	err := r.q.write(func(txn *memdb.Txn) error {
		obj, err := txn.First(tablePending, "id", id)
		if err != nil {
			return fmt.Errorf("get pending deduction: %w", err)
		}
		if obj == nil {
			return nil
		}
		if rec := obj.(*pendingRecord); rec.Status == entity.DeductionStatusPending {
			out = rec.entity()
		}
		return nil
	})
	return out, err
}

func (r *PendingDeductionRepo) update(id string, fn func(rec *pendingRecord)) error {
	return r.q.write(func(txn *memdb.Txn) error {
		obj, err := txn.First(tablePending, "id", id)
		if err != nil {
			return fmt.Errorf("get pending deduction: %w", err)
		}
		if obj == nil {
			return domain.ErrNotFound
		}
		updated := *obj.(*pendingRecord)
		fn(&updated)
		return txn.Insert(tablePending, &updated)
	})
}

func (r *PendingDeductionRepo) MarkResolved(_ context.Context, id string, at time.Time) error {
	return r.update(id, func(rec *pendingRecord) {
		rec.Status = entity.DeductionStatusResolved
		rec.UpdatedAt = at
		rec.ResolvedAt = &at
	})
}

func (r *PendingDeductionRepo) RecordFailure(_ context.Context, id, lastError string, at time.Time) error {
	return r.update(id, func(rec *pendingRecord) {
		rec.Attempts++
		rec.LastError = lastError
		rec.UpdatedAt = at
	})
}
