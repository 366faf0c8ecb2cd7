package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.StockItemRepository = (*StockItemRepo)(nil)

// StockItemRepo implementación de StockItemRepository sobre PostgreSQL (usable con pool o tx).
type StockItemRepo struct {
	q Querier
}

// NewStockItemRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockItemRepository(q Querier) *StockItemRepo {
	return &StockItemRepo{q: q}
}

const stockItemColumns = `id, name, name_normalized, item_code, category, unit, reorder_level, is_active, current_stock, created_at, updated_at`

func scanStockItem(row pgx.Row) (*entity.StockItem, error) {
	var it entity.StockItem
	err := row.Scan(
		&it.ID, &it.Name, &it.NameNormalized, &it.ItemCode, &it.Category, &it.Unit,
		&it.ReorderLevel, &it.IsActive, &it.CurrentStock, &it.CreatedAt, &it.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &it, nil
}

// Create persiste un ítem nuevo. item_code repetido -> domain.ErrDuplicate.
func (r *StockItemRepo) Create(ctx context.Context, item *entity.StockItem) error {
	query := `
		INSERT INTO stock_items (` + stockItemColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		item.ID, item.Name, item.NameNormalized, item.ItemCode, item.Category, item.Unit,
		item.ReorderLevel, item.IsActive, item.CurrentStock, item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert stock item: %w", err)
	}
	return nil
}

// GetByID obtiene un ítem por ID; (nil, nil) si no existe.
func (r *StockItemRepo) GetByID(ctx context.Context, id string) (*entity.StockItem, error) {
	query := `SELECT ` + stockItemColumns + ` FROM stock_items WHERE id = $1`
	it, err := scanStockItem(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock item: %w", err)
	}
	return it, nil
}

// GetForUpdate obtiene el ítem y bloquea la fila (SELECT FOR UPDATE). Solo tiene sentido dentro de una tx.
func (r *StockItemRepo) GetForUpdate(ctx context.Context, id string) (*entity.StockItem, error) {
	query := `SELECT ` + stockItemColumns + ` FROM stock_items WHERE id = $1 FOR UPDATE`
	it, err := scanStockItem(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock item for update: %w", err)
	}
	return it, nil
}

// RecomputeCurrentStock materializa current_stock como la suma de los lotes con existencia.
func (r *StockItemRepo) RecomputeCurrentStock(ctx context.Context, id string) (int, error) {
	query := `
		UPDATE stock_items SET
			current_stock = (SELECT COALESCE(SUM(quantity), 0) FROM stock_batches WHERE item_id = $1 AND quantity > 0),
			updated_at = now()
		WHERE id = $1
		RETURNING current_stock`
	var current int
	if err := r.q.QueryRow(ctx, query, id).Scan(&current); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ErrItemNotFound
		}
		return 0, fmt.Errorf("recompute current stock: %w", err)
	}
	return current, nil
}

// Deactivate baja lógica; los lotes y el historial se conservan.
func (r *StockItemRepo) Deactivate(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `UPDATE stock_items SET is_active = false, updated_at = now() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deactivate stock item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListActive lista los ítems activos ordenados por nombre.
func (r *StockItemRepo) ListActive(ctx context.Context) ([]*entity.StockItem, error) {
	query := `SELECT ` + stockItemColumns + ` FROM stock_items WHERE is_active ORDER BY name, id`
	return r.list(ctx, query)
}

// SearchActiveInStock busca por nombre normalizado entre los ítems activos con existencia.
func (r *StockItemRepo) SearchActiveInStock(ctx context.Context, normalizedQuery string, limit int) ([]*entity.StockItem, error) {
	query := `
		SELECT ` + stockItemColumns + ` FROM stock_items
		WHERE is_active AND current_stock > 0 AND name_normalized LIKE '%' || $1 || '%' ESCAPE '\'
		ORDER BY name, id
		LIMIT $2`
	return r.list(ctx, query, escapeLike(normalizedQuery), limit)
}

func (r *StockItemRepo) list(ctx context.Context, query string, args ...any) ([]*entity.StockItem, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list stock items: %w", err)
	}
	defer rows.Close()
	var out []*entity.StockItem
	for rows.Next() {
		it, err := scanStockItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stock item: %w", err)
		}
		out = append(out, it)
	}
	return out, rows.Err()
}
