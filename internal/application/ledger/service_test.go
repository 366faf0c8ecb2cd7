package ledger_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/ledger"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/internal/domain/stock"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/memory"
)

var t0 = time.Date(2024, 12, 1, 8, 0, 0, 0, time.UTC)

type harness struct {
	svc     *ledger.Service
	store   *memory.Store
	items   *memory.StockItemRepo
	batches *memory.StockBatchRepo
	txs     *memory.StockTransactionRepo
	clock   time.Time
}

func newHarness(t *testing.T, cfg ledger.Config) *harness {
	t.Helper()
	store, err := memory.NewStore()
	require.NoError(t, err)
	h := &harness{
		store:   store,
		items:   memory.NewStockItemRepository(store),
		batches: memory.NewStockBatchRepository(store),
		txs:     memory.NewStockTransactionRepository(store),
		clock:   t0,
	}
	h.svc = h.withRunner(memory.NewTxRunner(store), cfg)
	return h
}

func (h *harness) withRunner(runner ledger.TxRunner, cfg ledger.Config) *ledger.Service {
	return ledger.NewService(runner, h.items, h.batches, h.txs, cfg, nil).
		WithClock(func() time.Time { return h.clock })
}

func (h *harness) item(t *testing.T, id string, reorder int) {
	t.Helper()
	require.NoError(t, h.items.Create(context.Background(), &entity.StockItem{
		ID: id, Name: "Item " + id, NameNormalized: "item " + id, ItemCode: "C-" + id,
		ReorderLevel: reorder, IsActive: true, CreatedAt: t0, UpdatedAt: t0,
	}))
}

func (h *harness) add(t *testing.T, itemID, batch string, qty int, expiry time.Time) *ledger.AddStockResult {
	t.Helper()
	res, err := h.svc.AddStock(context.Background(), ledger.AddStockInput{
		ItemID: itemID, BatchNumber: batch, Quantity: qty, ExpiryDate: expiry,
		CostPrice: decimal.RequireFromString("5.00"), PerformedBy: "bodega-1",
	})
	require.NoError(t, err)
	h.clock = h.clock.Add(time.Minute)
	return res
}

func (h *harness) currentStock(t *testing.T, id string) int {
	t.Helper()
	it, err := h.items.GetByID(context.Background(), id)
	require.NoError(t, err)
	return it.CurrentStock
}

func (h *harness) batchSum(t *testing.T, id string) int {
	t.Helper()
	list, err := h.batches.ListAvailableForUpdate(context.Background(), id)
	require.NoError(t, err)
	return stock.Available(list)
}

func (h *harness) view(t *testing.T, id string) dto.StockItemView {
	t.Helper()
	views, err := h.svc.GetStockItems(context.Background())
	require.NoError(t, err)
	for _, v := range views {
		if v.ID == id {
			return v
		}
	}
	t.Fatalf("ítem %s no está en GetStockItems", id)
	return dto.StockItemView{}
}

func date(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

func TestAddStock(t *testing.T) {
	h := newHarness(t, ledger.Config{})
	h.item(t, "x", 5)

	res := h.add(t, "x", "L-100", 12, date(2025, 6, 1))
	assert.NotEmpty(t, res.BatchID)
	assert.NotEmpty(t, res.MovementID)
	assert.Equal(t, 12, res.CurrentStock)
	assert.Equal(t, 12, h.currentStock(t, "x"))

	txs, err := h.txs.ListByMovement(context.Background(), res.MovementID)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, entity.TransactionTypeIN, txs[0].Type)
	assert.Equal(t, 12, txs[0].Quantity)
	assert.Equal(t, res.BatchID, *txs[0].BatchID)
	assert.Equal(t, "L-100", *txs[0].BatchNumber)
	assert.Equal(t, ledger.DefaultAddNotes, txs[0].Notes)
	assert.Equal(t, "bodega-1", txs[0].PerformedBy)
}

func TestAddStock_Validacion(t *testing.T) {
	h := newHarness(t, ledger.Config{})
	h.item(t, "x", 0)
	base := ledger.AddStockInput{ItemID: "x", BatchNumber: "L", Quantity: 1, ExpiryDate: date(2025, 1, 1)}

	cases := map[string]func(in *ledger.AddStockInput){
		"cantidad cero":   func(in *ledger.AddStockInput) { in.Quantity = 0 },
		"costo negativo":  func(in *ledger.AddStockInput) { in.CostPrice = decimal.NewFromInt(-1) },
		"sin vencimiento": func(in *ledger.AddStockInput) { in.ExpiryDate = time.Time{} },
		"sin lote":        func(in *ledger.AddStockInput) { in.BatchNumber = "  " },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			in := base
			mutate(&in)
			_, err := h.svc.AddStock(context.Background(), in)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}

	_, err := h.svc.AddStock(context.Background(), base)
	require.NoError(t, err, "costo cero es válido (donaciones, muestras)")
}

func TestAddStock_ItemInexistenteOInactivo(t *testing.T) {
	h := newHarness(t, ledger.Config{})
	h.item(t, "x", 0)
	require.NoError(t, h.items.Deactivate(context.Background(), "x"))

	for _, id := range []string{"x", "nope"} {
		_, err := h.svc.AddStock(context.Background(), ledger.AddStockInput{
			ItemID: id, BatchNumber: "L", Quantity: 1, ExpiryDate: date(2025, 1, 1),
		})
		assert.ErrorIs(t, err, domain.ErrItemNotFound)
		_, err = h.svc.IssueStock(context.Background(), ledger.IssueStockInput{ItemID: id, Quantity: 1})
		assert.ErrorIs(t, err, domain.ErrItemNotFound)
	}
}

func TestIssueStock_FEFO(t *testing.T) {
	h := newHarness(t, ledger.Config{})
	h.item(t, "x", 0)
	// B2 se recibe antes pero vence después
	b2 := h.add(t, "x", "B2", 5, date(2025, 2, 1))
	b1 := h.add(t, "x", "B1", 5, date(2025, 1, 1))

	res, err := h.svc.IssueStock(context.Background(), ledger.IssueStockInput{ItemID: "x", Quantity: 7, PerformedBy: "enf-3"})
	require.NoError(t, err)
	require.Len(t, res.Allocations, 2)
	assert.Equal(t, b1.BatchID, res.Allocations[0].BatchID)
	assert.Equal(t, 5, res.Allocations[0].Quantity)
	assert.Equal(t, b2.BatchID, res.Allocations[1].BatchID)
	assert.Equal(t, 2, res.Allocations[1].Quantity)
	assert.Equal(t, 3, res.CurrentStock)

	v := h.view(t, "x")
	require.Len(t, v.Batches, 1, "B1 quedó agotado")
	assert.Equal(t, "B2", v.Batches[0].BatchNumber)
	assert.Equal(t, 3, v.Batches[0].Quantity)

	txs, err := h.txs.ListByMovement(context.Background(), res.MovementID)
	require.NoError(t, err)
	require.Len(t, txs, 2)
	for i, tx := range txs {
		assert.Equal(t, entity.TransactionTypeOUT, tx.Type)
		assert.Equal(t, res.Allocations[i].BatchID, *tx.BatchID)
		assert.Equal(t, res.Allocations[i].Quantity, tx.Quantity)
		assert.Equal(t, ledger.DefaultIssueNotes, tx.Notes)
		assert.Equal(t, "enf-3", tx.PerformedBy)
	}
}

func TestIssueStock_InsuficienteNoCambiaNada(t *testing.T) {
	h := newHarness(t, ledger.Config{})
	h.item(t, "x", 0)
	h.add(t, "x", "A", 3, date(2025, 1, 1))
	h.add(t, "x", "B", 5, date(2025, 3, 1))
	before := h.view(t, "x")

	_, err := h.svc.IssueStock(context.Background(), ledger.IssueStockInput{ItemID: "x", Quantity: 20})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.False(t, errors.Is(err, domain.ErrStorage))

	assert.Equal(t, before, h.view(t, "x"))
	assert.Equal(t, 8, h.currentStock(t, "x"))
}

func TestIssueStock_CantidadInvalida(t *testing.T) {
	h := newHarness(t, ledger.Config{})
	h.item(t, "x", 0)
	for _, q := range []int{0, -3} {
		_, err := h.svc.IssueStock(context.Background(), ledger.IssueStockInput{ItemID: "x", Quantity: q})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	}
}

// failingTxRepo falla en la escritura número failOn del libro.
type failingTxRepo struct {
	repository.StockTransactionRepository
	calls  int
	failOn int
}

func (f *failingTxRepo) Create(ctx context.Context, tx *entity.StockTransaction) error {
	f.calls++
	if f.calls == f.failOn {
		return errors.New("disk full")
	}
	return f.StockTransactionRepository.Create(ctx, tx)
}

type failingRunner struct {
	inner  ledger.TxRunner
	failOn int
}

func (r failingRunner) Run(ctx context.Context, fn func(
	itemRepo repository.StockItemRepository,
	batchRepo repository.StockBatchRepository,
	txRepo repository.StockTransactionRepository,
) error) error {
	return r.inner.Run(ctx, func(i repository.StockItemRepository, b repository.StockBatchRepository, t repository.StockTransactionRepository) error {
		return fn(i, b, &failingTxRepo{StockTransactionRepository: t, failOn: r.failOn})
	})
}

func TestIssueStock_FalloParcialHaceRollback(t *testing.T) {
	h := newHarness(t, ledger.Config{})
	h.item(t, "x", 0)
	h.add(t, "x", "A", 4, date(2025, 1, 1))
	h.add(t, "x", "B", 4, date(2025, 2, 1))
	before := h.view(t, "x")

	// el primer lote se decrementa y registra; el segundo asiento falla
	svc := h.withRunner(failingRunner{inner: memory.NewTxRunner(h.store), failOn: 2}, ledger.Config{})
	_, err := svc.IssueStock(context.Background(), ledger.IssueStockInput{ItemID: "x", Quantity: 6})
	require.ErrorIs(t, err, domain.ErrStorage)

	assert.Equal(t, before, h.view(t, "x"))
	assert.Equal(t, 8, h.currentStock(t, "x"))
	assert.Equal(t, 8, h.batchSum(t, "x"))
}

func TestIssueStock_Concurrente(t *testing.T) {
	h := newHarness(t, ledger.Config{})
	h.item(t, "x", 0)
	h.add(t, "x", "A", 4, date(2025, 1, 1))
	h.add(t, "x", "B", 6, date(2025, 2, 1))

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		ok, fail int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := h.svc.IssueStock(context.Background(), ledger.IssueStockInput{ItemID: "x", Quantity: 1})
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				assert.ErrorIs(t, err, domain.ErrInsufficientStock)
				fail++
				return
			}
			ok++
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, ok)
	assert.Equal(t, 10, fail)
	assert.Equal(t, 0, h.currentStock(t, "x"))
	assert.Equal(t, 0, h.batchSum(t, "x"))
}

func TestConservacion(t *testing.T) {
	h := newHarness(t, ledger.Config{})
	h.item(t, "x", 0)
	ops := []struct {
		add   int
		issue int
	}{{add: 10}, {issue: 3}, {add: 7}, {issue: 9}, {issue: 20}, {add: 1}, {issue: 6}}

	for i, op := range ops {
		if op.add > 0 {
			h.add(t, "x", "L", op.add, date(2025, 1, 1+i))
		} else {
			_, _ = h.svc.IssueStock(context.Background(), ledger.IssueStockInput{ItemID: "x", Quantity: op.issue})
		}
		assert.Equal(t, h.batchSum(t, "x"), h.currentStock(t, "x"), "paso %d", i)
	}
	assert.Equal(t, 0, h.currentStock(t, "x"))
}

func TestIssueStock_LotesVencidos(t *testing.T) {
	h := newHarness(t, ledger.Config{})
	h.item(t, "x", 0)
	h.add(t, "x", "OLD", 2, t0.AddDate(0, 0, -1))
	h.add(t, "x", "NEW", 5, t0.AddDate(0, 6, 0))

	res, err := h.svc.IssueStock(context.Background(), ledger.IssueStockInput{ItemID: "x", Quantity: 3})
	require.NoError(t, err, "por defecto el vencimiento es solo informativo")
	assert.True(t, res.Allocations[0].Expired)
	assert.False(t, res.Allocations[1].Expired)

	strict := newHarness(t, ledger.Config{BlockExpiredIssue: true})
	strict.item(t, "y", 0)
	strict.add(t, "y", "OLD", 2, t0.AddDate(0, 0, -1))
	strict.add(t, "y", "NEW", 5, t0.AddDate(0, 6, 0))

	_, err = strict.svc.IssueStock(context.Background(), ledger.IssueStockInput{ItemID: "y", Quantity: 3})
	require.ErrorIs(t, err, domain.ErrExpiredStock)
	assert.Equal(t, 7, strict.currentStock(t, "y"))
}

func TestEscenario(t *testing.T) {
	h := newHarness(t, ledger.Config{})
	h.item(t, "x", 50)
	a := h.add(t, "x", "A", 100, h.clock.AddDate(0, 0, 10))

	stats, err := h.svc.GetInventoryStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.NearExpiryItems)
	assert.Equal(t, 0, stats.ExpiredItems)
	assert.True(t, decimal.NewFromInt(500).Equal(stats.TotalValue))
	assert.Equal(t, entity.ItemStatusActive, h.view(t, "x").Status)

	res, err := h.svc.IssueStock(context.Background(), ledger.IssueStockInput{ItemID: "x", Quantity: 60})
	require.NoError(t, err)

	v := h.view(t, "x")
	assert.Equal(t, entity.ItemStatusLowStock, v.Status)
	require.Len(t, v.Batches, 1)
	assert.Equal(t, 40, v.Batches[0].Quantity)
	assert.Equal(t, string(stock.ExpiryNearExpiry), v.Batches[0].ExpiryStatus)
	assert.Equal(t, "5.00", v.AverageCost.StringFixed(2))

	txs, err := h.txs.ListByMovement(context.Background(), res.MovementID)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, 60, txs[0].Quantity)
	assert.Equal(t, a.BatchID, *txs[0].BatchID)
}

func TestGetStockItems(t *testing.T) {
	h := newHarness(t, ledger.Config{RecentTransactions: 3})
	h.item(t, "b", 0)
	h.item(t, "a", 2)
	h.item(t, "gone", 0)
	require.NoError(t, h.items.Deactivate(context.Background(), "gone"))

	h.add(t, "a", "L2", 1, date(2025, 5, 1))
	h.add(t, "a", "L1", 1, date(2025, 4, 1))
	h.add(t, "a", "L3", 1, date(2025, 6, 1))
	h.add(t, "a", "L4", 1, date(2025, 7, 1))

	first, err := h.svc.GetStockItems(context.Background())
	require.NoError(t, err)
	second, err := h.svc.GetStockItems(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first, second)

	require.Len(t, first, 2)
	assert.Equal(t, "Item a", first[0].Name)
	assert.Equal(t, "Item b", first[1].Name)

	a := first[0]
	assert.Equal(t, []string{"L1", "L2", "L3", "L4"}, []string{a.Batches[0].BatchNumber, a.Batches[1].BatchNumber, a.Batches[2].BatchNumber, a.Batches[3].BatchNumber})
	require.NotNil(t, a.NextExpiry)
	assert.Equal(t, date(2025, 4, 1), *a.NextExpiry)
	require.Len(t, a.Transactions, 3, "tope de movimientos recientes")
	assert.Equal(t, "L4", *a.Transactions[0].BatchNumber)
	assert.Equal(t, "L3", *a.Transactions[1].BatchNumber)
	assert.Equal(t, entity.ItemStatusActive, a.Status)

	b := first[1]
	assert.Equal(t, entity.ItemStatusOutOfStock, b.Status)
	assert.NotNil(t, b.Batches)
	assert.Empty(t, b.Batches)
	assert.Nil(t, b.NextExpiry)
}

func TestGetInventoryStats(t *testing.T) {
	h := newHarness(t, ledger.Config{NearExpiryHorizon: 30 * 24 * time.Hour})
	h.item(t, "a", 10)
	h.item(t, "b", 1)
	h.item(t, "c", 0)

	h.add(t, "a", "VENCIDO", 4, t0)
	h.add(t, "a", "BORDE", 2, t0.AddDate(0, 0, 30).Add(2*time.Minute))
	h.add(t, "b", "LEJOS", 10, t0.AddDate(1, 0, 0))

	stats, err := h.svc.GetInventoryStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalItems)
	// a: 6 <= 10 ; c: 0 <= 0 ; b: 10 > 1
	assert.Equal(t, 2, stats.LowStockItems)
	assert.Equal(t, 1, stats.ExpiredItems)
	assert.Equal(t, 1, stats.NearExpiryItems)
	assert.True(t, decimal.NewFromInt(80).Equal(stats.TotalValue), stats.TotalValue.String())
}

func TestGetExpiryAlerts(t *testing.T) {
	h := newHarness(t, ledger.Config{})
	h.item(t, "a", 0)
	h.add(t, "a", "NEAR", 1, t0.AddDate(0, 0, 20))
	h.add(t, "a", "EXP", 1, t0.AddDate(0, 0, -3))
	h.add(t, "a", "OK", 1, t0.AddDate(0, 3, 0))

	alerts, err := h.svc.GetExpiryAlerts(context.Background())
	require.NoError(t, err)
	require.Len(t, alerts, 2)
	assert.Equal(t, "EXP", alerts[0].BatchNumber)
	assert.Equal(t, string(stock.ExpiryExpired), alerts[0].Status)
	assert.Equal(t, "NEAR", alerts[1].BatchNumber)
	assert.Equal(t, string(stock.ExpiryNearExpiry), alerts[1].Status)
	assert.Equal(t, "Item a", alerts[1].ItemName)
}

type captureGenerator struct {
	got ledger.ExpiryReport
}

func (g *captureGenerator) GenerateExpiryReport(_ context.Context, r ledger.ExpiryReport) ([]byte, error) {
	g.got = r
	return []byte("%PDF-fake"), nil
}

func TestExpiryReportPDF(t *testing.T) {
	h := newHarness(t, ledger.Config{NearExpiryHorizon: 15 * 24 * time.Hour})
	h.item(t, "a", 0)
	h.add(t, "a", "NEAR", 2, t0.AddDate(0, 0, 10))

	gen := &captureGenerator{}
	out, err := ledger.NewReportUseCase(h.svc, gen).ExpiryReportPDF(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-fake"), out)
	assert.Equal(t, 15, gen.got.HorizonDays)
	assert.Equal(t, h.clock, gen.got.GeneratedAt)
	assert.Equal(t, 1, gen.got.Stats.NearExpiryItems)
	require.Len(t, gen.got.Alerts, 1)
}

func TestBuildExpiryReport_UnSoloInstante(t *testing.T) {
	h := newHarness(t, ledger.Config{})
	h.item(t, "a", 0)
	expiry := h.clock.Add(time.Hour)
	h.add(t, "a", "EDGE", 2, expiry)

	// cada lectura del reloj avanza una hora: la primera ve el lote por vencer, las siguientes vencido
	first := expiry.Add(-time.Second)
	calls := 0
	svc := ledger.NewService(memory.NewTxRunner(h.store), h.items, h.batches, h.txs, ledger.Config{}, nil).
		WithClock(func() time.Time {
			calls++
			return first.Add(time.Duration(calls-1) * time.Hour)
		})

	report, err := ledger.NewReportUseCase(svc, &captureGenerator{}).BuildExpiryReport(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, first, report.GeneratedAt)
	assert.Equal(t, 1, report.Stats.NearExpiryItems)
	assert.Equal(t, 0, report.Stats.ExpiredItems)
	require.Len(t, report.Alerts, 1)
	assert.Equal(t, string(stock.ExpiryNearExpiry), report.Alerts[0].Status)
	assert.Equal(t, 0, report.Alerts[0].DaysToExpiry)
}
