// Package pharmacy descuenta del libro de stock las ventas finalizadas del punto de venta de farmacia.
package pharmacy

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/ledger"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// Policy qué hacer cuando una línea de la venta no puede descontarse.
type Policy string

const (
	// PolicyQueue registra la línea fallida en la cola de conciliación y sigue con las demás.
	PolicyQueue Policy = "queue"
	// PolicyStrict se detiene en la primera línea fallida; las ya descontadas quedan confirmadas.
	PolicyStrict Policy = "strict"
)

// DefaultRetryBatchSize máximo de pendientes por reintento si no se indica.
const DefaultRetryBatchSize = 50

// StockIssuer es la parte del libro que usa la farmacia.
type StockIssuer interface {
	IssueStock(ctx context.Context, in ledger.IssueStockInput) (*ledger.IssueResult, error)
	IssueWithin(
		ctx context.Context,
		itemRepo repository.StockItemRepository,
		batchRepo repository.StockBatchRepository,
		txRepo repository.StockTransactionRepository,
		in ledger.IssueStockInput,
	) (*ledger.IssueResult, error)
	LogIssued(in ledger.IssueStockInput, res *ledger.IssueResult)
}

// DeductionUseCase descuenta cada línea de una factura como una salida FEFO independiente.
type DeductionUseCase struct {
	issuer  StockIssuer
	runner  ledger.DeductionTxRunner
	pending repository.PendingDeductionRepository
	policy  Policy
	log     *logger.Logger
	now     func() time.Time
}

// NewDeductionUseCase construye el caso de uso. Una política desconocida se trata como PolicyQueue.
func NewDeductionUseCase(
	issuer StockIssuer,
	runner ledger.DeductionTxRunner,
	pending repository.PendingDeductionRepository,
	policy Policy,
	log *logger.Logger,
) *DeductionUseCase {
	if policy != PolicyStrict {
		policy = PolicyQueue
	}
	if log == nil {
		log = logger.Nop()
	}
	return &DeductionUseCase{
		issuer:  issuer,
		runner:  runner,
		pending: pending,
		policy:  policy,
		log:     log.Component("pharmacy"),
		now:     time.Now,
	}
}

// Policy política en uso.
func (uc *DeductionUseCase) Policy() Policy { return uc.policy }

// SaleNotes nota de los asientos OUT de una venta.
func SaleNotes(billRef string) string {
	return fmt.Sprintf("Pharmacy Sale Bill #%s", billRef)
}

// DeductSale descuenta las líneas de la factura billRef.
// Con PolicyStrict devuelve el resultado parcial junto con el error de la línea que detuvo el proceso.
func (uc *DeductionUseCase) DeductSale(ctx context.Context, performedBy string, req dto.SaleDeductionRequest) (*dto.SaleDeductionResult, error) {
	billRef := strings.TrimSpace(req.BillRef)
	if billRef == "" || len(req.Lines) == 0 {
		return nil, domain.ErrInvalidInput
	}
	notes := SaleNotes(billRef)
	res := &dto.SaleDeductionResult{
		BillRef:  billRef,
		Policy:   string(uc.policy),
		Complete: true,
		Lines:    make([]dto.SaleLineResult, 0, len(req.Lines)),
	}

	for i, line := range req.Lines {
		lr := dto.SaleLineResult{ItemID: line.ItemID, Quantity: line.Quantity}
		issued, err := uc.issuer.IssueStock(ctx, ledger.IssueStockInput{
			ItemID:      line.ItemID,
			Quantity:    line.Quantity,
			Notes:       notes,
			PerformedBy: performedBy,
		})
		if err == nil {
			lr.Outcome = dto.LineOutcomeIssued
			lr.MovementID = issued.MovementID
			res.Lines = append(res.Lines, lr)
			continue
		}

		res.Complete = false
		lr.Error = err.Error()
		uc.log.Warn().Err(err).
			Str("bill_ref", billRef).
			Str("item_id", line.ItemID).
			Int("quantity", line.Quantity).
			Str("policy", string(uc.policy)).
			Msg("no se pudo descontar la línea de la venta")

		if uc.policy == PolicyStrict {
			lr.Outcome = dto.LineOutcomeFailed
			res.Lines = append(res.Lines, lr)
			for _, rest := range req.Lines[i+1:] {
				res.Lines = append(res.Lines, dto.SaleLineResult{
					ItemID: rest.ItemID, Quantity: rest.Quantity, Outcome: dto.LineOutcomeSkipped,
				})
			}
			return res, fmt.Errorf("línea %d (%s): %w", i+1, line.ItemID, err)
		}

		// una línea mal formada nunca va a pasar en un reintento
		if errors.Is(err, domain.ErrInvalidInput) {
			lr.Outcome = dto.LineOutcomeFailed
			res.Lines = append(res.Lines, lr)
			continue
		}
		pendingID, qerr := uc.enqueue(ctx, billRef, notes, performedBy, line, err)
		if qerr != nil {
			uc.log.Error().Err(qerr).Str("bill_ref", billRef).Str("item_id", line.ItemID).Msg("no se pudo encolar la deducción")
			lr.Outcome = dto.LineOutcomeFailed
			res.Lines = append(res.Lines, lr)
			continue
		}
		lr.Outcome = dto.LineOutcomeQueued
		lr.PendingID = pendingID
		res.Lines = append(res.Lines, lr)
	}
	return res, nil
}

func (uc *DeductionUseCase) enqueue(ctx context.Context, billRef, notes, performedBy string, line dto.SaleLine, cause error) (string, error) {
	now := uc.now()
	d := &entity.PendingDeduction{
		ID:          uuid.New().String(),
		BillRef:     billRef,
		ItemID:      line.ItemID,
		Quantity:    line.Quantity,
		Notes:       notes,
		PerformedBy: performerOr(performedBy),
		Attempts:    1,
		LastError:   cause.Error(),
		Status:      entity.DeductionStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.pending.Create(ctx, d); err != nil {
		return "", err
	}
	return d.ID, nil
}

// RetryPending reintenta hasta limit deducciones pendientes, la más antigua primero.
// Cada deducción se toma, se descuenta y se marca resuelta en una sola transacción; las que otro
// reintento ya tomó o resolvió se cuentan como Skipped.
func (uc *DeductionUseCase) RetryPending(ctx context.Context, limit int) (*dto.RetryResult, error) {
	if limit <= 0 {
		limit = DefaultRetryBatchSize
	}
	list, err := uc.pending.ListPending(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrStorage, err)
	}
	res := &dto.RetryResult{}
	for _, d := range list {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		res.Attempted++
		claimed, ierr := uc.apply(ctx, d.ID)
		switch {
		case ierr == nil && claimed:
			res.Resolved++
		case ierr == nil:
			res.Skipped++
		case !claimed:
			return res, fmt.Errorf("%w: %w", domain.ErrStorage, ierr)
		default:
			res.Failed++
			if err := uc.pending.RecordFailure(ctx, d.ID, ierr.Error(), uc.now()); err != nil {
				return res, fmt.Errorf("%w: %w", domain.ErrStorage, err)
			}
		}
	}
	uc.log.Info().
		Int("attempted", res.Attempted).
		Int("resolved", res.Resolved).
		Int("failed", res.Failed).
		Int("skipped", res.Skipped).
		Msg("reintento de deducciones pendientes")
	return res, nil
}

// apply descuenta la deducción id y la marca resuelta en la misma transacción.
// claimed es false si ya no estaba pendiente o la tenía tomada otro reintento.
func (uc *DeductionUseCase) apply(ctx context.Context, id string) (claimed bool, err error) {
	var (
		in     ledger.IssueStockInput
		issued *ledger.IssueResult
	)
	err = uc.runner.RunDeduction(ctx, func(
		itemRepo repository.StockItemRepository,
		batchRepo repository.StockBatchRepository,
		txRepo repository.StockTransactionRepository,
		pendingRepo repository.PendingDeductionRepository,
	) error {
		d, err := pendingRepo.ClaimPending(ctx, id)
		if err != nil || d == nil {
			return err
		}
		claimed = true
		in = ledger.IssueStockInput{
			ItemID:      d.ItemID,
			Quantity:    d.Quantity,
			Notes:       d.Notes,
			PerformedBy: d.PerformedBy,
		}
		issued, err = uc.issuer.IssueWithin(ctx, itemRepo, batchRepo, txRepo, in)
		if err != nil {
			return err
		}
		return pendingRepo.MarkResolved(ctx, d.ID, uc.now())
	})
	if err == nil && issued != nil {
		uc.issuer.LogIssued(in, issued)
		uc.log.Info().Str("pending_id", id).Str("movement_id", issued.MovementID).Msg("deducción pendiente resuelta")
	}
	return claimed, err
}

// ListPending devuelve hasta limit deducciones pendientes.
func (uc *DeductionUseCase) ListPending(ctx context.Context, limit int) ([]dto.PendingDeductionView, error) {
	if limit <= 0 {
		limit = DefaultRetryBatchSize
	}
	list, err := uc.pending.ListPending(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrStorage, err)
	}
	out := make([]dto.PendingDeductionView, 0, len(list))
	for _, d := range list {
		out = append(out, dto.PendingDeductionView{
			ID:        d.ID,
			BillRef:   d.BillRef,
			ItemID:    d.ItemID,
			Quantity:  d.Quantity,
			Attempts:  d.Attempts,
			LastError: d.LastError,
			CreatedAt: d.CreatedAt,
		})
	}
	return out, nil
}

func performerOr(user string) string {
	if user == "" {
		return ledger.SystemUser
	}
	return user
}
