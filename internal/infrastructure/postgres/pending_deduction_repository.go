package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.PendingDeductionRepository = (*PendingDeductionRepo)(nil)

// PendingDeductionRepo cola de conciliación de descuentos de farmacia.
type PendingDeductionRepo struct {
	q Querier
}

// NewPendingDeductionRepository construye el adaptador.
func NewPendingDeductionRepository(q Querier) *PendingDeductionRepo {
	return &PendingDeductionRepo{q: q}
}

func (r *PendingDeductionRepo) Create(ctx context.Context, d *entity.PendingDeduction) error {
	query := `
		INSERT INTO pending_deductions (id, bill_ref, item_id, quantity, notes, performed_by, attempts, last_error, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		d.ID, d.BillRef, d.ItemID, d.Quantity, d.Notes, d.PerformedBy, d.Attempts, d.LastError, d.Status, d.CreatedAt, d.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert pending deduction: %w", err)
	}
	return nil
}

// ListPending pendientes, el más antiguo primero.
func (r *PendingDeductionRepo) ListPending(ctx context.Context, limit int) ([]*entity.PendingDeduction, error) {
	query := `
		SELECT id, bill_ref, item_id, quantity, notes, performed_by, attempts, last_error, status, created_at, updated_at, resolved_at
		FROM pending_deductions
		WHERE status = $1
		ORDER BY created_at, id
		LIMIT $2`
	rows, err := r.q.Query(ctx, query, entity.DeductionStatusPending, limit)
	if err != nil {
		return nil, fmt.Errorf("list pending deductions: %w", err)
	}
	defer rows.Close()
	var out []*entity.PendingDeduction
	for rows.Next() {
		var d entity.PendingDeduction
		if err := rows.Scan(
			&d.ID, &d.BillRef, &d.ItemID, &d.Quantity, &d.Notes, &d.PerformedBy, &d.Attempts,
			&d.LastError, &d.Status, &d.CreatedAt, &d.UpdatedAt, &d.ResolvedAt,
		); err != nil {
			return nil, fmt.Errorf("scan pending deduction: %w", err)
		}
		out = append(out, &d)
	}
	return out, rows.Err()
}

// ClaimPending toma la fila con FOR UPDATE SKIP LOCKED: un reintento concurrente que ya la tiene
// bloqueada hace que esta llamada devuelva nil en lugar de esperar y aplicarla otra vez.
func (r *PendingDeductionRepo) ClaimPending(ctx context.Context, id string) (*entity.PendingDeduction, error) {
	query := `
		SELECT id, bill_ref, item_id, quantity, notes, performed_by, attempts, last_error, status, created_at, updated_at, resolved_at
		FROM pending_deductions
		WHERE id = $1 AND status = $2
		FOR UPDATE SKIP LOCKED`
	var d entity.PendingDeduction
	err := r.q.QueryRow(ctx, query, id, entity.DeductionStatusPending).Scan(
		&d.ID, &d.BillRef, &d.ItemID, &d.Quantity, &d.Notes, &d.PerformedBy, &d.Attempts,
		&d.LastError, &d.Status, &d.CreatedAt, &d.UpdatedAt, &d.ResolvedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("claim pending deduction: %w", err)
	}
	return &d, nil
}

func (r *PendingDeductionRepo) MarkResolved(ctx context.Context, id string, at time.Time) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE pending_deductions SET status = $2, resolved_at = $3, updated_at = $3 WHERE id = $1 AND status = $4`,
		id, entity.DeductionStatusResolved, at, entity.DeductionStatusPending,
	)
	if err != nil {
		return fmt.Errorf("resolve pending deduction: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PendingDeductionRepo) RecordFailure(ctx context.Context, id, lastError string, at time.Time) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE pending_deductions SET attempts = attempts + 1, last_error = $2, updated_at = $3 WHERE id = $1`,
		id, lastError, at,
	)
	if err != nil {
		return fmt.Errorf("record deduction failure: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
