package stock_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/stock"
)

var (
	testNow      = time.Date(2024, 12, 1, 9, 0, 0, 0, time.UTC)
	testReceived = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
)

func batch(id string, qty int, expiry time.Time) *entity.StockBatch {
	return &entity.StockBatch{
		ID:          id,
		ItemID:      "item-1",
		BatchNumber: "LOT-" + id,
		Quantity:    qty,
		ExpiryDate:  expiry,
		CostPrice:   decimal.NewFromInt(1),
		CreatedAt:   testReceived,
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// FEFO
// ──────────────────────────────────────────────────────────────────────────────

func TestPlanAllocation_DrenaPrimeroElQueVenceAntes(t *testing.T) {
	b1 := batch("b1", 5, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	b2 := batch("b2", 5, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC))

	// desordenados a propósito
	plan, err := stock.PlanAllocation([]*entity.StockBatch{b2, b1}, 7, testNow)
	require.NoError(t, err)
	require.Len(t, plan, 2)

	assert.Equal(t, "b1", plan[0].BatchID)
	assert.Equal(t, 5, plan[0].Quantity)
	assert.Equal(t, "b2", plan[1].BatchID)
	assert.Equal(t, 2, plan[1].Quantity)
	assert.Equal(t, 7, stock.Total(plan))

	// el plan no muta los lotes
	assert.Equal(t, 5, b1.Quantity)
	assert.Equal(t, 5, b2.Quantity)
}

func TestPlanAllocation_EmpateDeVencimientoUsaRecepcionMasAntigua(t *testing.T) {
	expiry := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	newer := batch("nuevo", 4, expiry)
	newer.CreatedAt = testReceived.Add(48 * time.Hour)
	older := batch("viejo", 4, expiry)

	plan, err := stock.PlanAllocation([]*entity.StockBatch{newer, older}, 3, testNow)
	require.NoError(t, err)
	require.Len(t, plan, 1)
	assert.Equal(t, "viejo", plan[0].BatchID)
}

func TestPlanAllocation_IgnoraLotesAgotados(t *testing.T) {
	empty := batch("vacio", 0, time.Date(2024, 12, 15, 0, 0, 0, 0, time.UTC))
	full := batch("lleno", 10, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))

	plan, err := stock.PlanAllocation([]*entity.StockBatch{empty, full}, 10, testNow)
	require.NoError(t, err)
	require.Len(t, plan, 1)
	assert.Equal(t, "lleno", plan[0].BatchID)
}

func TestPlanAllocation_StockInsuficiente(t *testing.T) {
	batches := []*entity.StockBatch{
		batch("a", 3, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)),
		batch("b", 5, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)),
	}
	plan, err := stock.PlanAllocation(batches, 20, testNow)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Nil(t, plan)
}

func TestPlanAllocation_CantidadNoPositiva(t *testing.T) {
	batches := []*entity.StockBatch{batch("a", 3, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))}
	for _, qty := range []int{0, -4} {
		_, err := stock.PlanAllocation(batches, qty, testNow)
		assert.ErrorIs(t, err, domain.ErrInvalidInput, "qty=%d", qty)
	}
}

func TestPlanAllocation_MarcaLotesVencidosSinBloquear(t *testing.T) {
	expired := batch("vencido", 2, testNow.Add(-24*time.Hour))
	fresh := batch("fresco", 5, testNow.Add(90*24*time.Hour))

	plan, err := stock.PlanAllocation([]*entity.StockBatch{fresh, expired}, 4, testNow)
	require.NoError(t, err)
	require.Len(t, plan, 2)
	assert.True(t, plan[0].Expired)
	assert.False(t, plan[1].Expired)
	assert.True(t, stock.HasExpired(plan))
}

// ──────────────────────────────────────────────────────────────────────────────
// Vencimientos
// ──────────────────────────────────────────────────────────────────────────────

func TestExpiryMonitor_Fronteras(t *testing.T) {
	m := stock.NewExpiryMonitor(0)
	require.Equal(t, stock.DefaultNearExpiryHorizon, m.Horizon)

	cases := []struct {
		name   string
		expiry time.Time
		want   stock.ExpiryStatus
	}{
		{"vence exactamente ahora", testNow, stock.ExpiryExpired},
		{"venció ayer", testNow.Add(-24 * time.Hour), stock.ExpiryExpired},
		{"un segundo después de ahora", testNow.Add(time.Second), stock.ExpiryNearExpiry},
		{"exactamente en el horizonte", testNow.Add(30 * 24 * time.Hour), stock.ExpiryNearExpiry},
		{"un segundo después del horizonte", testNow.Add(30*24*time.Hour + time.Second), stock.ExpiryNormal},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, m.Classify(tc.expiry, testNow))
		})
	}
}

func TestExpiryMonitor_HorizonteConfigurable(t *testing.T) {
	m := stock.NewExpiryMonitor(7 * 24 * time.Hour)
	assert.Equal(t, stock.ExpiryNormal, m.Classify(testNow.Add(10*24*time.Hour), testNow))
	assert.Equal(t, stock.ExpiryNearExpiry, m.Classify(testNow.Add(7*24*time.Hour), testNow))
}

func TestDaysUntil(t *testing.T) {
	assert.Equal(t, 10, stock.DaysUntil(testNow.Add(10*24*time.Hour), testNow))
	assert.Equal(t, -2, stock.DaysUntil(testNow.Add(-2*24*time.Hour), testNow))

	assert.Equal(t, 0, stock.DaysUntil(testNow.Add(12*time.Hour), testNow))
	assert.Equal(t, -1, stock.DaysUntil(testNow.Add(-12*time.Hour), testNow))
	assert.Equal(t, -1, stock.DaysUntil(testNow, testNow), "vence justo ahora: ya vencido")
	assert.Equal(t, -2, stock.DaysUntil(testNow.Add(-36*time.Hour), testNow))
}

// ──────────────────────────────────────────────────────────────────────────────
// Estado del ítem
// ──────────────────────────────────────────────────────────────────────────────

func TestDeriveStatus(t *testing.T) {
	assert.Equal(t, entity.ItemStatusLowStock, stock.DeriveStatus(50, 50))
	assert.Equal(t, entity.ItemStatusActive, stock.DeriveStatus(51, 50))
	assert.Equal(t, entity.ItemStatusOutOfStock, stock.DeriveStatus(0, 50))
	assert.Equal(t, entity.ItemStatusOutOfStock, stock.DeriveStatus(0, 0))
	assert.Equal(t, entity.ItemStatusActive, stock.DeriveStatus(1, 0))
}

func TestWeightedCost(t *testing.T) {
	got := stock.WeightedCost(decimal.NewFromInt(10), decimal.NewFromInt(100), decimal.NewFromInt(30), decimal.NewFromInt(200))
	assert.True(t, decimal.NewFromInt(175).Equal(got), got.String())
	assert.True(t, stock.WeightedCost(decimal.Zero, decimal.Zero, decimal.Zero, decimal.NewFromInt(5)).IsZero())
}

func TestAverageCost(t *testing.T) {
	batches := []*entity.StockBatch{
		{ID: "a", Quantity: 2, CostPrice: decimal.RequireFromString("1.00")},
		{ID: "b", Quantity: 0, CostPrice: decimal.RequireFromString("99.00")},
		{ID: "c", Quantity: 1, CostPrice: decimal.RequireFromString("2.00")},
	}
	assert.Equal(t, "1.33", stock.AverageCost(batches).StringFixed(2))
	assert.True(t, stock.AverageCost(nil).IsZero())
}
