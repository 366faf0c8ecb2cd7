package http

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/ledger"
	"github.com/jhoicas/stock-ledger/internal/domain"
)

// LedgerHandler entradas, salidas FEFO y modelos de lectura del libro de stock.
type LedgerHandler struct {
	svc     *ledger.Service
	reports *ledger.ReportUseCase
}

// NewLedgerHandler construye el handler.
func NewLedgerHandler(svc *ledger.Service, reports *ledger.ReportUseCase) *LedgerHandler {
	return &LedgerHandler{svc: svc, reports: reports}
}

// AddStock godoc
// @Summary      Registrar entrada de un lote
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AddStockRequest  true  "item_id, batch_number, quantity, expiry_date, cost_price"
// @Success      201   {object}  dto.AddStockResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      500   {object}  dto.ErrorResponse
// @Router       /api/inventory/stock/add [post]
func (h *LedgerHandler) AddStock(c *fiber.Ctx) error {
	var in dto.AddStockRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	expiry, err := parseExpiryDate(in.ExpiryDate)
	if err != nil {
		return writeError(c, err)
	}
	res, err := h.svc.AddStock(c.Context(), ledger.AddStockInput{
		ItemID:      in.ItemID,
		BatchNumber: in.BatchNumber,
		Quantity:    in.Quantity,
		ExpiryDate:  expiry,
		CostPrice:   in.CostPrice,
		VendorID:    in.VendorID,
		Notes:       in.Notes,
		PerformedBy: GetUserID(c),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.AddStockResponse{
		BatchID:      res.BatchID,
		MovementID:   res.MovementID,
		CurrentStock: res.CurrentStock,
	})
}

// IssueStock godoc
// @Summary      Registrar salida FEFO
// @Description  Descuenta la cantidad de los lotes que vencen primero. Todo o nada.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.IssueStockRequest  true  "item_id, quantity, notes"
// @Success      200   {object}  dto.IssueStockResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      500   {object}  dto.ErrorResponse
// @Router       /api/inventory/stock/issue [post]
func (h *LedgerHandler) IssueStock(c *fiber.Ctx) error {
	var in dto.IssueStockRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	res, err := h.svc.IssueStock(c.Context(), ledger.IssueStockInput{
		ItemID:      in.ItemID,
		Quantity:    in.Quantity,
		Notes:       in.Notes,
		PerformedBy: GetUserID(c),
	})
	if err != nil {
		return writeError(c, err)
	}
	out := dto.IssueStockResponse{
		MovementID:   res.MovementID,
		CurrentStock: res.CurrentStock,
		Allocations:  make([]dto.AllocationDTO, 0, len(res.Allocations)),
	}
	for _, a := range res.Allocations {
		out.Allocations = append(out.Allocations, dto.AllocationDTO{
			BatchID:     a.BatchID,
			BatchNumber: a.BatchNumber,
			ExpiryDate:  a.ExpiryDate,
			Quantity:    a.Quantity,
			Expired:     a.Expired,
		})
	}
	return c.JSON(out)
}

// ListStock godoc
// @Summary      Ítems activos con lotes y movimientos recientes
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Success      200  {array}   dto.StockItemView
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/inventory/stock [get]
func (h *LedgerHandler) ListStock(c *fiber.Ctx) error {
	items, err := h.svc.GetStockItems(c.Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(items)
}

// Stats godoc
// @Summary      Estadísticas del inventario
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.InventoryStats
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/inventory/stats [get]
func (h *LedgerHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.svc.GetInventoryStats(c.Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(stats)
}

// ExpiryAlerts godoc
// @Summary      Lotes vencidos o próximos a vencer
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Success      200  {array}   dto.ExpiryAlert
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/inventory/expiry-alerts [get]
func (h *LedgerHandler) ExpiryAlerts(c *fiber.Ctx) error {
	alerts, err := h.svc.GetExpiryAlerts(c.Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{
		"horizon_days": h.svc.NearExpiryHorizonDays(),
		"total":        len(alerts),
		"alerts":       alerts,
	})
}

// ExpiryReportPDF godoc
// @Summary      Reporte de vencimientos en PDF
// @Tags         inventory
// @Security     Bearer
// @Produce      application/pdf
// @Success      200  {file}    binary
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/inventory/expiry-report.pdf [get]
func (h *LedgerHandler) ExpiryReportPDF(c *fiber.Ctx) error {
	pdf, err := h.reports.ExpiryReportPDF(c.Context())
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="expiry-report.pdf"`)
	return c.Send(pdf)
}

// parseExpiryDate acepta la fecha del formulario (YYYY-MM-DD, medianoche UTC) o un instante RFC3339.
func parseExpiryDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: expiry_date %q", domain.ErrInvalidInput, raw)
	}
	return t, nil
}
