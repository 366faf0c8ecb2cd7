package stock

import (
	"sort"
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// Allocation es una porción de una salida tomada de un lote concreto.
type Allocation struct {
	BatchID     string
	BatchNumber string
	ExpiryDate  time.Time
	Quantity    int
	Expired     bool // el lote ya estaba vencido respecto al now de la asignación
}

// SortFEFO ordena los lotes in-place: vencimiento ascendente, luego recepción más antigua, luego ID.
func SortFEFO(batches []*entity.StockBatch) {
	sort.SliceStable(batches, func(i, j int) bool {
		a, b := batches[i], batches[j]
		if !a.ExpiryDate.Equal(b.ExpiryDate) {
			return a.ExpiryDate.Before(b.ExpiryDate)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}

// Available suma la cantidad de los lotes no agotados.
func Available(batches []*entity.StockBatch) int {
	total := 0
	for _, b := range batches {
		if !b.Exhausted() {
			total += b.Quantity
		}
	}
	return total
}

// PlanAllocation calcula qué lotes drenar (FEFO) para cubrir quantity.
// No muta los lotes recibidos. Si el disponible no alcanza devuelve domain.ErrInsufficientStock
// y ningún plan: nunca hay salida parcial.
// El vencimiento es informativo; los lotes vencidos se asignan y quedan marcados con Expired.
func PlanAllocation(batches []*entity.StockBatch, quantity int, now time.Time) ([]Allocation, error) {
	if quantity <= 0 {
		return nil, domain.ErrInvalidInput
	}
	candidates := make([]*entity.StockBatch, 0, len(batches))
	for _, b := range batches {
		if !b.Exhausted() {
			candidates = append(candidates, b)
		}
	}
	if Available(candidates) < quantity {
		return nil, domain.ErrInsufficientStock
	}
	SortFEFO(candidates)

	remaining := quantity
	plan := make([]Allocation, 0, len(candidates))
	for _, b := range candidates {
		if remaining == 0 {
			break
		}
		take := min(b.Quantity, remaining)
		plan = append(plan, Allocation{
			BatchID:     b.ID,
			BatchNumber: b.BatchNumber,
			ExpiryDate:  b.ExpiryDate,
			Quantity:    take,
			Expired:     IsExpired(b.ExpiryDate, now),
		})
		remaining -= take
	}
	return plan, nil
}

// HasExpired indica si alguna porción del plan sale de un lote vencido.
func HasExpired(plan []Allocation) bool {
	for _, a := range plan {
		if a.Expired {
			return true
		}
	}
	return false
}

// Total suma las cantidades del plan.
func Total(plan []Allocation) int {
	total := 0
	for _, a := range plan {
		total += a.Quantity
	}
	return total
}
