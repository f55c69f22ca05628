package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/bodegas-api/internal/domain"
	"github.com/jhoicas/bodegas-api/internal/domain/entity"
	"github.com/jhoicas/bodegas-api/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

// StockRepo implementación del ledger stock_levels sobre PostgreSQL (usable con pool o tx).
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

// GetForUpdate obtiene el stock y bloquea la fila (SELECT FOR UPDATE). nil si el producto no está en la bodega.
func (r *StockRepo) GetForUpdate(ctx context.Context, productID, warehouseID int64) (*entity.StockLevel, error) {
	const query = `
		SELECT product_id, warehouse_id, quantity, updated_at
		FROM stock_levels WHERE product_id = $1 AND warehouse_id = $2
		FOR UPDATE`
	var s entity.StockLevel
	err := r.q.QueryRow(ctx, query, productID, warehouseID).Scan(&s.ProductID, &s.WarehouseID, &s.Quantity, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapError("get stock for update", err)
	}
	return &s, nil
}

// ApplyDelta suma delta en la base de datos. Los incrementos crean la fila si no existe;
// los decrementos solo aplican si el resultado no queda negativo.
func (r *StockRepo) ApplyDelta(ctx context.Context, productID, warehouseID, delta int64) error {
	if delta >= 0 {
		const upsert = `
			INSERT INTO stock_levels (product_id, warehouse_id, quantity, updated_at)
			VALUES ($1, $2, $3, now())
			ON CONFLICT (product_id, warehouse_id)
			DO UPDATE SET quantity = stock_levels.quantity + EXCLUDED.quantity, updated_at = now()`
		if _, err := r.q.Exec(ctx, upsert, productID, warehouseID, delta); err != nil {
			return mapError("increment stock", err)
		}
		return nil
	}
	const decrement = `
		UPDATE stock_levels SET quantity = quantity + $3, updated_at = now()
		WHERE product_id = $1 AND warehouse_id = $2 AND quantity + $3 >= 0`
	tag, err := r.q.Exec(ctx, decrement, productID, warehouseID, delta)
	if err != nil {
		return mapError("decrement stock", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrInsufficientStock
	}
	return nil
}

// Set fija la cantidad absoluta (crea la fila si no existe).
func (r *StockRepo) Set(ctx context.Context, productID, warehouseID, quantity int64) error {
	const query = `
		INSERT INTO stock_levels (product_id, warehouse_id, quantity, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (product_id, warehouse_id)
		DO UPDATE SET quantity = EXCLUDED.quantity, updated_at = now()`
	if _, err := r.q.Exec(ctx, query, productID, warehouseID, quantity); err != nil {
		return mapError("set stock", err)
	}
	return nil
}

// Ensure registra el producto en la bodega con cantidad 0 si aún no está.
func (r *StockRepo) Ensure(ctx context.Context, productID, warehouseID int64) error {
	const query = `
		INSERT INTO stock_levels (product_id, warehouse_id, quantity, updated_at)
		VALUES ($1, $2, 0, now())
		ON CONFLICT (product_id, warehouse_id) DO NOTHING`
	if _, err := r.q.Exec(ctx, query, productID, warehouseID); err != nil {
		return mapError("ensure stock", err)
	}
	return nil
}

// ListByWarehouse filas del ledger de una bodega, por producto.
func (r *StockRepo) ListByWarehouse(ctx context.Context, warehouseID int64) ([]*entity.StockLevel, error) {
	return r.list(ctx, `
		SELECT product_id, warehouse_id, quantity, updated_at
		FROM stock_levels WHERE warehouse_id = $1 ORDER BY product_id`, warehouseID)
}

// ListByProduct filas del ledger de un producto, por bodega.
func (r *StockRepo) ListByProduct(ctx context.Context, productID int64) ([]*entity.StockLevel, error) {
	return r.list(ctx, `
		SELECT product_id, warehouse_id, quantity, updated_at
		FROM stock_levels WHERE product_id = $1 ORDER BY warehouse_id`, productID)
}

func (r *StockRepo) list(ctx context.Context, query string, id int64) ([]*entity.StockLevel, error) {
	rows, err := r.q.Query(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("list stock: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockLevel
	for rows.Next() {
		var s entity.StockLevel
		if err := rows.Scan(&s.ProductID, &s.WarehouseID, &s.Quantity, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan stock: %w", err)
		}
		list = append(list, &s)
	}
	return list, rows.Err()
}
