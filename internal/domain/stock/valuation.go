package stock

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// WeightedCost costo promedio ponderado tras sumar una entrada a una existencia valorada.
// NuevoCosto = ((StockActual * CostoActual) + (CantEntrada * CostoEntrada)) / (StockActual + CantEntrada)
func WeightedCost(stockActual, costoActual, cantEntrada, costoEntrada decimal.Decimal) decimal.Decimal {
	sum := stockActual.Add(cantEntrada)
	if sum.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	num := stockActual.Mul(costoActual).Add(cantEntrada.Mul(costoEntrada))
	return num.Div(sum)
}

// AverageCost costo unitario promedio de los lotes con existencia, redondeado a 2 decimales.
// Sin existencia devuelve cero.
func AverageCost(batches []*entity.StockBatch) decimal.Decimal {
	qty, cost := decimal.Zero, decimal.Zero
	for _, b := range batches {
		if b.Exhausted() {
			continue
		}
		in := decimal.NewFromInt(int64(b.Quantity))
		cost = WeightedCost(qty, cost, in, b.CostPrice)
		qty = qty.Add(in)
	}
	return cost.Round(2)
}
