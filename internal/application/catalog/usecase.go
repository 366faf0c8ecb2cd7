package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/internal/domain/stock"
	"github.com/jhoicas/stock-ledger/pkg/logger"
	"github.com/jhoicas/stock-ledger/pkg/textnorm"
)

const (
	minSearchLen   = 2
	maxSearchItems = 10
)

// UseCase maneja el catálogo de ítems de stock y la búsqueda de medicamentos del punto de venta.
type UseCase struct {
	repo repository.StockItemRepository
	log  *logger.Logger
}

// NewUseCase construye el caso de uso.
func NewUseCase(repo repository.StockItemRepository, log *logger.Logger) *UseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &UseCase{repo: repo, log: log.Component("catalog")}
}

// Create registra un ítem nuevo con stock 0.
func (uc *UseCase) Create(ctx context.Context, in dto.CreateStockItemRequest) (*dto.StockItemResponse, error) {
	name := strings.TrimSpace(in.Name)
	code := strings.ToUpper(strings.TrimSpace(in.ItemCode))
	if name == "" || code == "" || in.ReorderLevel < 0 {
		return nil, domain.ErrInvalidInput
	}
	now := time.Now()
	item := &entity.StockItem{
		ID:             uuid.New().String(),
		Name:           name,
		NameNormalized: textnorm.Fold(name),
		ItemCode:       code,
		Category:       strings.TrimSpace(in.Category),
		Unit:           strings.TrimSpace(in.Unit),
		ReorderLevel:   in.ReorderLevel,
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := uc.repo.Create(ctx, item); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrStorage, err)
	}
	uc.log.Info().Str("item_id", item.ID).Str("item_code", item.ItemCode).Msg("ítem creado")
	return toResponse(item), nil
}

// GetByID devuelve el ítem, activo o no.
func (uc *UseCase) GetByID(ctx context.Context, id string) (*dto.StockItemResponse, error) {
	item, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrStorage, err)
	}
	if item == nil {
		return nil, domain.ErrItemNotFound
	}
	return toResponse(item), nil
}

// Deactivate da de baja el ítem; deja de aparecer en lecturas y no acepta movimientos.
func (uc *UseCase) Deactivate(ctx context.Context, id string) error {
	if err := uc.repo.Deactivate(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrItemNotFound
		}
		return fmt.Errorf("%w: %w", domain.ErrStorage, err)
	}
	uc.log.Info().Str("item_id", id).Msg("ítem desactivado")
	return nil
}

// SearchMedicines busca ítems activos con existencia por nombre, sin distinguir mayúsculas ni tildes.
// Consultas de menos de 2 caracteres devuelven lista vacía.
func (uc *UseCase) SearchMedicines(ctx context.Context, query string) ([]dto.MedicineResult, error) {
	q := textnorm.Fold(query)
	out := make([]dto.MedicineResult, 0)
	if len([]rune(q)) < minSearchLen {
		return out, nil
	}
	items, err := uc.repo.SearchActiveInStock(ctx, q, maxSearchItems)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrStorage, err)
	}
	for _, it := range items {
		out = append(out, dto.MedicineResult{
			ID:           it.ID,
			Name:         it.Name,
			ItemCode:     it.ItemCode,
			CurrentStock: it.CurrentStock,
			Unit:         it.Unit,
		})
	}
	return out, nil
}

func toResponse(it *entity.StockItem) *dto.StockItemResponse {
	return &dto.StockItemResponse{
		ID:           it.ID,
		Name:         it.Name,
		ItemCode:     it.ItemCode,
		Category:     it.Category,
		Unit:         it.Unit,
		ReorderLevel: it.ReorderLevel,
		CurrentStock: it.CurrentStock,
		IsActive:     it.IsActive,
		Status:       stock.DeriveStatus(it.CurrentStock, it.ReorderLevel),
		CreatedAt:    it.CreatedAt,
	}
}
