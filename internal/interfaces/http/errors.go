package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain"
)

// errorStatus traduce errores de dominio a código HTTP y código de error estable.
func errorStatus(err error) (int, dto.ErrorResponse) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return fiber.StatusBadRequest, dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos"}
	case errors.Is(err, domain.ErrItemNotFound):
		return fiber.StatusNotFound, dto.ErrorResponse{Code: "ITEM_NOT_FOUND", Message: "ítem no encontrado o inactivo"}
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound, dto.ErrorResponse{Code: "NOT_FOUND", Message: "recurso no encontrado"}
	case errors.Is(err, domain.ErrInsufficientStock):
		return fiber.StatusConflict, dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: "stock insuficiente"}
	case errors.Is(err, domain.ErrExpiredStock):
		return fiber.StatusConflict, dto.ErrorResponse{Code: "EXPIRED_STOCK", Message: "la salida tomaría lotes vencidos"}
	case errors.Is(err, domain.ErrDuplicate):
		return fiber.StatusConflict, dto.ErrorResponse{Code: "DUPLICATE", Message: "código de ítem ya registrado"}
	case errors.Is(err, domain.ErrConcurrentUpdate):
		return fiber.StatusConflict, dto.ErrorResponse{Code: "CONFLICT", Message: "el stock cambió durante la operación; reintente"}
	default:
		return fiber.StatusInternalServerError, dto.ErrorResponse{Code: "STORAGE", Message: "no se pudo completar la operación; reintente"}
	}
}

func writeError(c *fiber.Ctx, err error) error {
	status, body := errorStatus(err)
	return c.Status(status).JSON(body)
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}
