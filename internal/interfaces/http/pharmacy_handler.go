package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/catalog"
	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/pharmacy"
)

// PharmacyHandler búsqueda de medicamentos y descuento de ventas del punto de venta.
type PharmacyHandler struct {
	catalog    *catalog.UseCase
	deductions *pharmacy.DeductionUseCase
	retryBatch int
}

// NewPharmacyHandler construye el handler. retryBatch es el tamaño por defecto de listados y reintentos.
func NewPharmacyHandler(catalogUC *catalog.UseCase, deductions *pharmacy.DeductionUseCase, retryBatch int) *PharmacyHandler {
	if retryBatch <= 0 {
		retryBatch = pharmacy.DefaultRetryBatchSize
	}
	return &PharmacyHandler{catalog: catalogUC, deductions: deductions, retryBatch: retryBatch}
}

// SearchMedicines godoc
// @Summary      Buscar medicamentos con existencia
// @Tags         pharmacy
// @Security     Bearer
// @Produce      json
// @Param        q    query  string  true  "texto a buscar (mínimo 2 caracteres)"
// @Success      200  {array}   dto.MedicineResult
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/pharmacy/medicines [get]
func (h *PharmacyHandler) SearchMedicines(c *fiber.Ctx) error {
	res, err := h.catalog.SearchMedicines(c.Context(), c.Query("q"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(res)
}

// DeductSale godoc
// @Summary      Descontar del stock una venta finalizada
// @Description  Cada línea es una salida FEFO independiente. Con política strict el proceso se detiene en la
// @Description  primera línea fallida y responde con el código de ese error y el detalle por línea.
// @Tags         pharmacy
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SaleDeductionRequest  true  "bill_ref y líneas"
// @Success      200   {object}  dto.SaleDeductionResult
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.SaleDeductionResult
// @Router       /api/pharmacy/sales/deductions [post]
func (h *PharmacyHandler) DeductSale(c *fiber.Ctx) error {
	var in dto.SaleDeductionRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	res, err := h.deductions.DeductSale(c.Context(), GetUserID(c), in)
	if err != nil {
		if res == nil {
			return writeError(c, err)
		}
		status, _ := errorStatus(err)
		return c.Status(status).JSON(res)
	}
	return c.JSON(res)
}

// ListPending godoc
// @Summary      Deducciones pendientes de conciliación
// @Tags         pharmacy
// @Security     Bearer
// @Produce      json
// @Param        limit  query  int  false  "máximo de resultados"
// @Success      200  {array}   dto.PendingDeductionView
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/pharmacy/deductions/pending [get]
func (h *PharmacyHandler) ListPending(c *fiber.Ctx) error {
	list, err := h.deductions.ListPending(c.Context(), c.QueryInt("limit", h.retryBatch))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(list)
}

// RetryPending godoc
// @Summary      Reintentar deducciones pendientes
// @Tags         pharmacy
// @Security     Bearer
// @Produce      json
// @Param        limit  query  int  false  "máximo a reintentar"
// @Success      200  {object}  dto.RetryResult
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/pharmacy/deductions/retry [post]
func (h *PharmacyHandler) RetryPending(c *fiber.Ctx) error {
	res, err := h.deductions.RetryPending(c.Context(), c.QueryInt("limit", h.retryBatch))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(res)
}
