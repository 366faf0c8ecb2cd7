package ledger

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/stock"
)

// Los modelos de lectura se recalculan en cada llamada; no hay caché.

// GetStockItems devuelve los ítems activos (por nombre) con sus lotes no agotados en orden FEFO
// y sus últimos movimientos (más reciente primero, máximo RecentTransactions).
func (s *Service) GetStockItems(ctx context.Context) ([]dto.StockItemView, error) {
	items, err := s.itemRepo.ListActive(ctx)
	if err != nil {
		return nil, wrapStorage(err)
	}
	batches, err := s.batchRepo.ListAvailable(ctx)
	if err != nil {
		return nil, wrapStorage(err)
	}
	txs, err := s.txRepo.ListRecent(ctx, s.cfg.RecentTransactions)
	if err != nil {
		return nil, wrapStorage(err)
	}

	batchesByItem := groupBatches(batches)
	txsByItem := make(map[string][]*entity.StockTransaction)
	for _, t := range txs {
		if len(txsByItem[t.ItemID]) < s.cfg.RecentTransactions {
			txsByItem[t.ItemID] = append(txsByItem[t.ItemID], t)
		}
	}

	now := s.now()
	out := make([]dto.StockItemView, 0, len(items))
	for _, item := range items {
		view := dto.StockItemView{
			ID:           item.ID,
			Name:         item.Name,
			ItemCode:     item.ItemCode,
			Category:     item.Category,
			Unit:         item.Unit,
			ReorderLevel: item.ReorderLevel,
			CurrentStock: item.CurrentStock,
			Status:       stock.DeriveStatus(item.CurrentStock, item.ReorderLevel),
			AverageCost:  stock.AverageCost(batchesByItem[item.ID]),
			Batches:      []dto.BatchView{},
			Transactions: []dto.TransactionView{},
		}
		for _, b := range batchesByItem[item.ID] {
			view.Batches = append(view.Batches, dto.BatchView{
				ID:           b.ID,
				BatchNumber:  b.BatchNumber,
				Quantity:     b.Quantity,
				ExpiryDate:   b.ExpiryDate,
				CostPrice:    b.CostPrice,
				CreatedAt:    b.CreatedAt,
				ExpiryStatus: string(s.monitor.Classify(b.ExpiryDate, now)),
			})
		}
		if len(view.Batches) > 0 {
			next := view.Batches[0].ExpiryDate
			view.NextExpiry = &next
		}
		for _, t := range txsByItem[item.ID] {
			view.Transactions = append(view.Transactions, dto.TransactionView{
				ID:              t.ID,
				MovementID:      t.MovementID,
				TransactionType: t.Type,
				Quantity:        t.Quantity,
				BatchID:         t.BatchID,
				BatchNumber:     t.BatchNumber,
				PerformedBy:     t.PerformedBy,
				PerformedAt:     t.PerformedAt,
				Notes:           t.Notes,
			})
		}
		out = append(out, view)
	}
	return out, nil
}

// GetInventoryStats agrega el catálogo activo: valor total (qty * costo sobre lotes no agotados),
// ítems en o bajo el nivel de reorden y conteo de lotes vencidos / próximos a vencer.
func (s *Service) GetInventoryStats(ctx context.Context) (*dto.InventoryStats, error) {
	return s.inventoryStats(ctx, s.now())
}

func (s *Service) inventoryStats(ctx context.Context, now time.Time) (*dto.InventoryStats, error) {
	items, err := s.itemRepo.ListActive(ctx)
	if err != nil {
		return nil, wrapStorage(err)
	}
	batches, err := s.batchRepo.ListAvailable(ctx)
	if err != nil {
		return nil, wrapStorage(err)
	}

	stats := &dto.InventoryStats{TotalItems: len(items), TotalValue: decimal.Zero}
	for _, item := range items {
		if item.CurrentStock <= item.ReorderLevel {
			stats.LowStockItems++
		}
	}
	for _, b := range batches {
		if b.Exhausted() {
			continue
		}
		stats.TotalValue = stats.TotalValue.Add(b.Value())
		switch s.monitor.Classify(b.ExpiryDate, now) {
		case stock.ExpiryExpired:
			stats.ExpiredItems++
		case stock.ExpiryNearExpiry:
			stats.NearExpiryItems++
		}
	}
	return stats, nil
}

// GetExpiryAlerts lista los lotes con stock vencidos o próximos a vencer, el que vence antes primero.
func (s *Service) GetExpiryAlerts(ctx context.Context) ([]dto.ExpiryAlert, error) {
	return s.expiryAlerts(ctx, s.now())
}

func (s *Service) expiryAlerts(ctx context.Context, now time.Time) ([]dto.ExpiryAlert, error) {
	items, err := s.itemRepo.ListActive(ctx)
	if err != nil {
		return nil, wrapStorage(err)
	}
	batches, err := s.batchRepo.ListAvailable(ctx)
	if err != nil {
		return nil, wrapStorage(err)
	}
	byID := make(map[string]*entity.StockItem, len(items))
	for _, it := range items {
		byID[it.ID] = it
	}

	alerts := make([]dto.ExpiryAlert, 0)
	for _, b := range batches {
		item, ok := byID[b.ItemID]
		if !ok || b.Exhausted() {
			continue
		}
		status := s.monitor.Classify(b.ExpiryDate, now)
		if status == stock.ExpiryNormal {
			continue
		}
		alerts = append(alerts, dto.ExpiryAlert{
			ItemID:       item.ID,
			ItemName:     item.Name,
			ItemCode:     item.ItemCode,
			BatchID:      b.ID,
			BatchNumber:  b.BatchNumber,
			Quantity:     b.Quantity,
			ExpiryDate:   b.ExpiryDate,
			DaysToExpiry: stock.DaysUntil(b.ExpiryDate, now),
			Status:       string(status),
			Value:        b.Value(),
		})
	}
	sort.SliceStable(alerts, func(i, j int) bool {
		return alerts[i].ExpiryDate.Before(alerts[j].ExpiryDate)
	})
	return alerts, nil
}

// NearExpiryHorizonDays horizonte configurado, en días.
func (s *Service) NearExpiryHorizonDays() int {
	return int(s.monitor.Horizon.Hours() / 24)
}

func groupBatches(batches []*entity.StockBatch) map[string][]*entity.StockBatch {
	out := make(map[string][]*entity.StockBatch)
	for _, b := range batches {
		if b.Exhausted() {
			continue
		}
		out[b.ItemID] = append(out[b.ItemID], b)
	}
	for _, list := range out {
		stock.SortFEFO(list)
	}
	return out
}
