package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrItemNotFound      = errors.New("ítem de inventario no encontrado o inactivo")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrUnauthorized      = errors.New("no autorizado")
	ErrForbidden         = errors.New("acceso denegado")
	ErrInsufficientStock = errors.New("stock insuficiente")
	ErrExpiredStock      = errors.New("la asignación FEFO incluye lotes vencidos")
	// ErrConcurrentUpdate: una escritura condicionada no afectó filas (otra operación modificó el lote).
	ErrConcurrentUpdate = errors.New("conflicto de concurrencia sobre el stock")
	// ErrStorage: la unidad de trabajo no pudo confirmarse; el llamador debe reintentar la operación completa.
	ErrStorage = errors.New("fallo de almacenamiento")
)

// IsBusiness indica si err es un resultado de negocio esperado (no un fallo de infraestructura).
func IsBusiness(err error) bool {
	return errors.Is(err, ErrItemNotFound) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrInsufficientStock) ||
		errors.Is(err, ErrExpiredStock) ||
		errors.Is(err, ErrDuplicate) ||
		errors.Is(err, ErrNotFound)
}
