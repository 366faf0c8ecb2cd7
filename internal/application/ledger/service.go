package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/internal/domain/stock"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// Notas por defecto de los asientos del libro.
const (
	DefaultAddNotes   = "Stock added manually"
	DefaultIssueNotes = "Stock issued (FEFO)"
	SystemUser        = "SYSTEM"
)

// Config parámetros del servicio.
type Config struct {
	NearExpiryHorizon  time.Duration
	RecentTransactions int
	// BlockExpiredIssue rechaza con domain.ErrExpiredStock las salidas cuyo plan FEFO toca lotes vencidos.
	// Apagado, la salida procede y se registra una advertencia.
	BlockExpiredIssue bool
}

// Service es la raíz de composición del libro de stock: AddStock, IssueStock y los modelos de lectura.
type Service struct {
	txRunner  TxRunner
	itemRepo  repository.StockItemRepository
	batchRepo repository.StockBatchRepository
	txRepo    repository.StockTransactionRepository
	monitor   stock.ExpiryMonitor
	cfg       Config
	log       *logger.Logger
	now       func() time.Time
}

// NewService construye el servicio. Los repos sin tx se usan solo para lecturas.
func NewService(
	txRunner TxRunner,
	itemRepo repository.StockItemRepository,
	batchRepo repository.StockBatchRepository,
	txRepo repository.StockTransactionRepository,
	cfg Config,
	log *logger.Logger,
) *Service {
	if cfg.RecentTransactions <= 0 {
		cfg.RecentTransactions = 20
	}
	monitor := stock.NewExpiryMonitor(cfg.NearExpiryHorizon)
	cfg.NearExpiryHorizon = monitor.Horizon
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		txRunner:  txRunner,
		itemRepo:  itemRepo,
		batchRepo: batchRepo,
		txRepo:    txRepo,
		monitor:   monitor,
		cfg:       cfg,
		log:       log.Component("ledger"),
		now:       time.Now,
	}
}

// WithClock reemplaza el reloj (tests y reprocesos con fecha fija).
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// AddStockInput entrada de un lote nuevo.
type AddStockInput struct {
	ItemID      string
	BatchNumber string
	Quantity    int
	ExpiryDate  time.Time
	CostPrice   decimal.Decimal
	VendorID    *string
	Notes       string
	PerformedBy string
}

// AddStockResult identifica el lote y el movimiento creados.
type AddStockResult struct {
	BatchID      string
	MovementID   string
	CurrentStock int
}

func (in AddStockInput) validate() error {
	if strings.TrimSpace(in.ItemID) == "" || strings.TrimSpace(in.BatchNumber) == "" {
		return domain.ErrInvalidInput
	}
	if in.Quantity <= 0 || in.ExpiryDate.IsZero() {
		return domain.ErrInvalidInput
	}
	if in.CostPrice.IsNegative() {
		return domain.ErrInvalidInput
	}
	return nil
}

// AddStock registra un lote nuevo: inserta el lote, suma current_stock y agrega un asiento IN,
// todo en la misma unidad de trabajo.
func (s *Service) AddStock(ctx context.Context, in AddStockInput) (*AddStockResult, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	now := s.now()
	batch := &entity.StockBatch{
		ID:          uuid.New().String(),
		ItemID:      in.ItemID,
		BatchNumber: strings.TrimSpace(in.BatchNumber),
		Quantity:    in.Quantity,
		ExpiryDate:  in.ExpiryDate,
		CostPrice:   in.CostPrice,
		CreatedAt:   now,
		VendorID:    in.VendorID,
	}
	res := &AddStockResult{BatchID: batch.ID, MovementID: uuid.New().String()}

	err := s.txRunner.Run(ctx, func(
		itemRepo repository.StockItemRepository,
		batchRepo repository.StockBatchRepository,
		txRepo repository.StockTransactionRepository,
	) error {
		item, err := itemRepo.GetForUpdate(ctx, in.ItemID)
		if err != nil {
			return err
		}
		if item == nil || !item.IsActive {
			return domain.ErrItemNotFound
		}
		if err := batchRepo.Create(ctx, batch); err != nil {
			return err
		}
		current, err := s.recompute(ctx, itemRepo, item, in.Quantity)
		if err != nil {
			return err
		}
		res.CurrentStock = current
		return txRepo.Create(ctx, &entity.StockTransaction{
			ID:          uuid.New().String(),
			MovementID:  res.MovementID,
			ItemID:      in.ItemID,
			Type:        entity.TransactionTypeIN,
			Quantity:    in.Quantity,
			BatchID:     &batch.ID,
			BatchNumber: &batch.BatchNumber,
			PerformedBy: performer(in.PerformedBy),
			PerformedAt: now,
			Notes:       notesOr(in.Notes, DefaultAddNotes),
		})
	})
	if err != nil {
		s.logFailure("add_stock", in.ItemID, in.Quantity, err)
		return nil, wrapStorage(err)
	}

	s.log.Info().
		Str("item_id", in.ItemID).
		Str("batch_id", batch.ID).
		Str("batch_number", batch.BatchNumber).
		Int("quantity", in.Quantity).
		Int("current_stock", res.CurrentStock).
		Msg("entrada de stock registrada")
	return res, nil
}

// IssueStockInput entrada de una salida FEFO.
type IssueStockInput struct {
	ItemID      string
	Quantity    int
	Notes       string
	PerformedBy string
}

func (in IssueStockInput) validate() error {
	if strings.TrimSpace(in.ItemID) == "" || in.Quantity <= 0 {
		return domain.ErrInvalidInput
	}
	return nil
}

// IssueResult detalle de los lotes tocados por la salida.
type IssueResult struct {
	MovementID   string
	Allocations  []stock.Allocation
	CurrentStock int
}

// IssueStock descuenta quantity del ítem en orden FEFO.
// Bloquea la fila del ítem y sus lotes, calcula el plan sobre ese snapshot bloqueado y aplica
// los decrementos condicionados en la misma transacción: dos salidas concurrentes del mismo ítem
// se serializan y nunca dejan un lote en negativo. Un asiento OUT por lote tocado.
func (s *Service) IssueStock(ctx context.Context, in IssueStockInput) (*IssueResult, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	var res *IssueResult
	err := s.txRunner.Run(ctx, func(
		itemRepo repository.StockItemRepository,
		batchRepo repository.StockBatchRepository,
		txRepo repository.StockTransactionRepository,
	) error {
		var err error
		res, err = s.IssueWithin(ctx, itemRepo, batchRepo, txRepo, in)
		return err
	})
	if err != nil {
		s.logFailure("issue_stock", in.ItemID, in.Quantity, err)
		return nil, wrapStorage(err)
	}
	s.LogIssued(in, res)
	return res, nil
}

// IssueWithin aplica la salida FEFO sobre repositorios atados a una transacción que abrió el llamador.
// No confirma ni registra nada; si el llamador descarta la transacción la salida no ocurrió.
func (s *Service) IssueWithin(
	ctx context.Context,
	itemRepo repository.StockItemRepository,
	batchRepo repository.StockBatchRepository,
	txRepo repository.StockTransactionRepository,
	in IssueStockInput,
) (*IssueResult, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	now := s.now()
	res := &IssueResult{MovementID: uuid.New().String()}

	item, err := itemRepo.GetForUpdate(ctx, in.ItemID)
	if err != nil {
		return nil, err
	}
	if item == nil || !item.IsActive {
		return nil, domain.ErrItemNotFound
	}
	batches, err := batchRepo.ListAvailableForUpdate(ctx, in.ItemID)
	if err != nil {
		return nil, err
	}
	plan, err := stock.PlanAllocation(batches, in.Quantity, now)
	if err != nil {
		return nil, err
	}
	if s.cfg.BlockExpiredIssue && stock.HasExpired(plan) {
		return nil, domain.ErrExpiredStock
	}

	notes := notesOr(in.Notes, DefaultIssueNotes)
	for _, a := range plan {
		if err := batchRepo.Decrement(ctx, a.BatchID, a.Quantity); err != nil {
			return nil, err
		}
		batchID, batchNumber := a.BatchID, a.BatchNumber
		if err := txRepo.Create(ctx, &entity.StockTransaction{
			ID:          uuid.New().String(),
			MovementID:  res.MovementID,
			ItemID:      in.ItemID,
			Type:        entity.TransactionTypeOUT,
			Quantity:    a.Quantity,
			BatchID:     &batchID,
			BatchNumber: &batchNumber,
			PerformedBy: performer(in.PerformedBy),
			PerformedAt: now,
			Notes:       notes,
		}); err != nil {
			return nil, err
		}
	}

	current, err := s.recompute(ctx, itemRepo, item, -in.Quantity)
	if err != nil {
		return nil, err
	}
	res.Allocations = plan
	res.CurrentStock = current
	return res, nil
}

// LogIssued registra una salida ya confirmada.
func (s *Service) LogIssued(in IssueStockInput, res *IssueResult) {
	if stock.HasExpired(res.Allocations) {
		s.log.Warn().
			Str("item_id", in.ItemID).
			Str("movement_id", res.MovementID).
			Msg("salida FEFO tomó unidades de lotes vencidos")
	}
	s.log.Info().
		Str("item_id", in.ItemID).
		Str("movement_id", res.MovementID).
		Int("quantity", in.Quantity).
		Int("batches", len(res.Allocations)).
		Int("current_stock", res.CurrentStock).
		Msg("salida de stock registrada")
}

// recompute materializa current_stock desde los lotes y avisa si el contador previo había derivado.
func (s *Service) recompute(ctx context.Context, itemRepo repository.StockItemRepository, item *entity.StockItem, delta int) (int, error) {
	current, err := itemRepo.RecomputeCurrentStock(ctx, item.ID)
	if err != nil {
		return 0, err
	}
	if expected := item.CurrentStock + delta; current != expected {
		s.log.Warn().
			Str("item_id", item.ID).
			Int("expected", expected).
			Int("recomputed", current).
			Msg("current_stock no coincidía con la suma de lotes; corregido")
	}
	return current, nil
}

func (s *Service) logFailure(op, itemID string, qty int, err error) {
	ev := s.log.Warn()
	if !domain.IsBusiness(err) {
		ev = s.log.Error()
	}
	ev.Err(err).Str("op", op).Str("item_id", itemID).Int("quantity", qty).Msg("operación de stock rechazada")
}

// wrapStorage deja pasar los resultados de negocio y marca el resto como domain.ErrStorage,
// conservando la causa para errors.Is.
func wrapStorage(err error) error {
	if err == nil || domain.IsBusiness(err) || errors.Is(err, domain.ErrStorage) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrStorage, err)
}

func notesOr(notes, def string) string {
	if strings.TrimSpace(notes) == "" {
		return def
	}
	return notes
}

func performer(user string) string {
	if user == "" {
		return SystemUser
	}
	return user
}
