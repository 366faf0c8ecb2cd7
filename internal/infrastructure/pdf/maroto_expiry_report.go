// Package pdf genera el reporte de vencimientos del libro de stock con Maroto v2.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: título + fecha de generación + horizonte           │
//	│  RESUMEN: ítems / valor / bajo reorden / vencidos / próximos │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Ítem | Código | Lote | Cant. | Vence | Días | Estado │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strconv"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/ledger"
	"github.com/jhoicas/stock-ledger/internal/domain/stock"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorDanger  = &props.Color{Red: 170, Green: 30, Blue: 30}
	colorWarning = &props.Color{Red: 190, Green: 120, Blue: 0}
)

var _ ledger.ExpiryReportGenerator = (*MarotoExpiryReport)(nil)

// MarotoExpiryReport implementa ledger.ExpiryReportGenerator usando Maroto v2.
type MarotoExpiryReport struct{}

// NewMarotoExpiryReport construye el generador.
func NewMarotoExpiryReport() *MarotoExpiryReport { return &MarotoExpiryReport{} }

// GenerateExpiryReport genera el PDF y devuelve sus bytes.
func (g *MarotoExpiryReport) GenerateExpiryReport(ctx context.Context, report ledger.ExpiryReport) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Reporte de vencimientos", true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(report))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(summaryRow(report.Stats))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	if len(report.Alerts) == 0 {
		m.AddRows(row.New(10).Add(col.New(12).Add(
			text.New("Sin lotes vencidos ni próximos a vencer.", props.Text{
				Size: 9, Align: align.Center, Color: colorGray, Top: 3,
			}),
		)))
	}
	m.AddRows(alertRows(report.Alerts)...)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(report ledger.ExpiryReport) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New("REPORTE DE VENCIMIENTOS", props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("Horizonte de alerta: %d días", report.HorizonDays), props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("Generado: "+report.GeneratedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 2, Color: colorGray,
			}),
		),
	)
}

func summaryRow(stats dto.InventoryStats) core.Row {
	cell := func(label, value string) core.Col {
		return col.New(2).Add(
			text.New(label, props.Text{Size: 7, Color: colorGray, Top: 1, Align: align.Center}),
			text.New(value, props.Text{Style: fontstyle.Bold, Size: 11, Top: 6, Align: align.Center}),
		)
	}
	return row.New(16).Add(
		cell("Ítems activos", strconv.Itoa(stats.TotalItems)),
		col.New(2).Add(
			text.New("Valor inventario", props.Text{Size: 7, Color: colorGray, Top: 1, Align: align.Center}),
			text.New("$"+formatMoney(stats.TotalValue.StringFixed(0)), props.Text{
				Style: fontstyle.Bold, Size: 11, Top: 6, Align: align.Center,
			}),
		),
		cell("Bajo reorden", strconv.Itoa(stats.LowStockItems)),
		cell("Lotes vencidos", strconv.Itoa(stats.ExpiredItems)),
		cell("Próximos a vencer", strconv.Itoa(stats.NearExpiryItems)),
		col.New(2),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Ítem", 3, align.Left),
		h("Código", 2, align.Left),
		h("Lote", 2, align.Left),
		h("Cant.", 1, align.Center),
		h("Vence", 2, align.Center),
		h("Días", 1, align.Center),
		h("Estado", 1, align.Center),
	)
}

func alertRows(alerts []dto.ExpiryAlert) []core.Row {
	out := make([]core.Row, 0, len(alerts))
	for _, a := range alerts {
		statusColor := colorWarning
		label := "PRÓXIMO"
		if a.Status == string(stock.ExpiryExpired) {
			statusColor = colorDanger
			label = "VENCIDO"
		}
		cell := func(s string, size int, al align.Type) core.Col {
			return col.New(size).Add(text.New(s, props.Text{Size: 8, Align: al, Top: 1, Left: 1, Right: 1}))
		}
		out = append(out, row.New(7).Add(
			cell(a.ItemName, 3, align.Left),
			cell(a.ItemCode, 2, align.Left),
			cell(a.BatchNumber, 2, align.Left),
			cell(strconv.Itoa(a.Quantity), 1, align.Center),
			cell(a.ExpiryDate.Format("02/01/2006"), 2, align.Center),
			cell(strconv.Itoa(a.DaysToExpiry), 1, align.Center),
			col.New(1).Add(text.New(label, props.Text{
				Style: fontstyle.Bold, Size: 7, Align: align.Center, Color: statusColor, Top: 1,
			})),
		))
	}
	return out
}

// ── helpers ───────────────────────────────────────────────────────────────────

// formatMoney inserta puntos de miles en un string numérico sin decimales.
// Ej: "25000" → "25.000", "1000000" → "1.000.000"
func formatMoney(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(s) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	return string(buf)
}
