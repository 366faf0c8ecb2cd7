package pdf

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/ledger"
	"github.com/jhoicas/stock-ledger/internal/domain/stock"
)

func TestGenerateExpiryReport(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	report := ledger.ExpiryReport{
		GeneratedAt: now,
		HorizonDays: 30,
		Stats: dto.InventoryStats{
			TotalItems: 2, TotalValue: decimal.NewFromInt(125000), LowStockItems: 1, ExpiredItems: 1, NearExpiryItems: 1,
		},
		Alerts: []dto.ExpiryAlert{
			{ItemName: "Amoxicilina 500mg", ItemCode: "AMX-500", BatchNumber: "L-01", Quantity: 4,
				ExpiryDate: now.AddDate(0, 0, -2), DaysToExpiry: -2, Status: string(stock.ExpiryExpired)},
			{ItemName: "Paracetamol", ItemCode: "PCT-1", BatchNumber: "L-07", Quantity: 10,
				ExpiryDate: now.AddDate(0, 0, 12), DaysToExpiry: 12, Status: string(stock.ExpiryNearExpiry)},
		},
	}

	out, err := NewMarotoExpiryReport().GenerateExpiryReport(context.Background(), report)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestGenerateExpiryReport_SinAlertas(t *testing.T) {
	out, err := NewMarotoExpiryReport().GenerateExpiryReport(context.Background(), ledger.ExpiryReport{
		GeneratedAt: time.Now(), HorizonDays: 30, Stats: dto.InventoryStats{TotalValue: decimal.Zero},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "950", formatMoney("950"))
	assert.Equal(t, "25.000", formatMoney("25000"))
	assert.Equal(t, "1.000.000", formatMoney("1000000"))
}
