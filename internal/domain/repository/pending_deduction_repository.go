package repository

import (
	"context"
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// PendingDeductionRepository persiste la cola de conciliación de salidas de farmacia.
type PendingDeductionRepository interface {
	Create(ctx context.Context, d *entity.PendingDeduction) error
	// ListPending devuelve las deducciones en estado PENDING, la más antigua primero.
	ListPending(ctx context.Context, limit int) ([]*entity.PendingDeduction, error)
	// ClaimPending bloquea la deducción id hasta el fin de la transacción si sigue en PENDING.
	// Devuelve nil sin error si ya fue resuelta o si otra transacción la tiene tomada.
	ClaimPending(ctx context.Context, id string) (*entity.PendingDeduction, error)
	MarkResolved(ctx context.Context, id string, at time.Time) error
	RecordFailure(ctx context.Context, id, lastError string, at time.Time) error
}
