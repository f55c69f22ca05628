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

var _ repository.WarehouseRepository = (*WarehouseRepo)(nil)

// WarehouseRepo implementación del puerto WarehouseRepository sobre PostgreSQL.
type WarehouseRepo struct {
	q Querier
}

// NewWarehouseRepository construye el adaptador de persistencia para bodegas.
func NewWarehouseRepository(q Querier) *WarehouseRepo {
	return &WarehouseRepo{q: q}
}

// Create persiste una nueva bodega y asigna ID y timestamps.
func (r *WarehouseRepo) Create(ctx context.Context, warehouse *entity.Warehouse) error {
	const query = `
		INSERT INTO warehouses (name) VALUES ($1)
		RETURNING id, created_at, updated_at`
	err := r.q.QueryRow(ctx, query, warehouse.Name).Scan(&warehouse.ID, &warehouse.CreatedAt, &warehouse.UpdatedAt)
	if err != nil {
		return mapError("insert warehouse", err)
	}
	return nil
}

// GetByID obtiene una bodega por ID; nil si no existe.
func (r *WarehouseRepo) GetByID(ctx context.Context, id int64) (*entity.Warehouse, error) {
	const query = `SELECT id, name, created_at, updated_at FROM warehouses WHERE id = $1`
	var w entity.Warehouse
	err := r.q.QueryRow(ctx, query, id).Scan(&w.ID, &w.Name, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get warehouse: %w", err)
	}
	return &w, nil
}

// Update renombra una bodega existente.
func (r *WarehouseRepo) Update(ctx context.Context, warehouse *entity.Warehouse) error {
	const query = `
		UPDATE warehouses SET name = $2, updated_at = now()
		WHERE id = $1
		RETURNING updated_at`
	err := r.q.QueryRow(ctx, query, warehouse.ID, warehouse.Name).Scan(&warehouse.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrNotFound
		}
		return mapError("update warehouse", err)
	}
	return nil
}

// List lista bodegas por nombre con paginación.
func (r *WarehouseRepo) List(ctx context.Context, limit, offset int) ([]*entity.Warehouse, error) {
	limit, offset = clampPage(limit, offset)
	const query = `
		SELECT id, name, created_at, updated_at FROM warehouses
		ORDER BY name, id
		LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list warehouses: %w", err)
	}
	defer rows.Close()
	var list []*entity.Warehouse
	for rows.Next() {
		var w entity.Warehouse
		if err := rows.Scan(&w.ID, &w.Name, &w.CreatedAt, &w.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan warehouse: %w", err)
		}
		list = append(list, &w)
	}
	return list, rows.Err()
}

// DeleteUnused elimina la bodega dentro de una transacción. Bloquea la fila de la bodega y los
// movimientos que la referencian antes de comprobar el uso: los INSERT concurrentes que apuntan a
// ella (movimientos, stock, líneas) esperan al borrado y fallan por FK.
// Los movimientos que la referencian quedan con la bodega en NULL.
func (r *WarehouseRepo) DeleteUnused(ctx context.Context, id int64) error {
	b, ok := r.q.(txBeginner)
	if !ok {
		return deleteUnusedWarehouse(ctx, r.q, id)
	}
	tx, err := b.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin delete warehouse: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()
	if err := deleteUnusedWarehouse(ctx, tx, id); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return mapError("commit delete warehouse", err)
	}
	return nil
}

func deleteUnusedWarehouse(ctx context.Context, q Querier, id int64) error {
	var locked int64
	err := q.QueryRow(ctx, `SELECT id FROM warehouses WHERE id = $1 FOR UPDATE`, id).Scan(&locked)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrNotFound
		}
		return mapError("lock warehouse", err)
	}
	const lockMovements = `
		SELECT id FROM movements
		WHERE origin_warehouse_id = $1 OR destination_warehouse_id = $1
		FOR UPDATE`
	if _, err := q.Exec(ctx, lockMovements, id); err != nil {
		return mapError("lock warehouse movements", err)
	}
	const inUse = `
		SELECT EXISTS (
			SELECT 1 FROM movements m
			JOIN movement_lines l ON l.movement_id = m.id
			WHERE m.origin_warehouse_id = $1 OR m.destination_warehouse_id = $1
		) OR EXISTS (
			SELECT 1 FROM stock_levels WHERE warehouse_id = $1 AND quantity > 0
		)`
	var used bool
	if err := q.QueryRow(ctx, inUse, id).Scan(&used); err != nil {
		return mapError("warehouse in use", err)
	}
	if used {
		return domain.ErrInUse
	}
	tag, err := q.Exec(ctx, `DELETE FROM warehouses WHERE id = $1`, id)
	if err != nil {
		return mapError("delete warehouse", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
