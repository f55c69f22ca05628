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

var _ repository.MovementRepository = (*MovementRepo)(nil)

// MovementRepo implementación de MovementRepository (usable con pool o tx).
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

// NextID reserva el siguiente valor de la secuencia de movimientos.
// Los valores reservados en transacciones revertidas no se reutilizan.
func (r *MovementRepo) NextID(ctx context.Context) (int64, error) {
	var id int64
	err := r.q.QueryRow(ctx, `SELECT nextval(pg_get_serial_sequence('movements', 'id'))`).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("next movement id: %w", err)
	}
	return id, nil
}

// Create inserta la cabecera del movimiento con ID y código ya asignados.
func (r *MovementRepo) Create(ctx context.Context, m *entity.Movement) error {
	const query = `
		INSERT INTO movements (id, code, origin_warehouse_id, destination_warehouse_id, user_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.q.Exec(ctx, query, m.ID, m.Code, m.OriginWarehouseID, m.DestinationWarehouseID, m.UserID, m.CreatedAt)
	if err != nil {
		return mapError("insert movement", err)
	}
	return nil
}

const movementSelect = `
	SELECT id, code, origin_warehouse_id, destination_warehouse_id, user_id, created_at
	FROM movements`

func scanMovement(row pgx.Row) (*entity.Movement, error) {
	var m entity.Movement
	if err := row.Scan(&m.ID, &m.Code, &m.OriginWarehouseID, &m.DestinationWarehouseID, &m.UserID, &m.CreatedAt); err != nil {
		return nil, err
	}
	return &m, nil
}

// GetByID obtiene el movimiento con sus líneas; nil si no existe.
func (r *MovementRepo) GetByID(ctx context.Context, id int64) (*entity.Movement, error) {
	m, err := scanMovement(r.q.QueryRow(ctx, movementSelect+` WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get movement: %w", err)
	}
	if err := r.attachLines(ctx, []*entity.Movement{m}); err != nil {
		return nil, err
	}
	return m, nil
}

// List movimientos más recientes primero, con sus líneas.
func (r *MovementRepo) List(ctx context.Context, filter repository.MovementFilter) ([]*entity.Movement, error) {
	limit, offset := clampPage(filter.Limit, filter.Offset)
	query := movementSelect + `
		WHERE ($1::bigint IS NULL OR origin_warehouse_id = $1 OR destination_warehouse_id = $1)
		  AND ($2::timestamptz IS NULL OR created_at >= $2)
		  AND ($3::timestamptz IS NULL OR created_at <= $3)
		ORDER BY created_at DESC, id DESC
		LIMIT $4 OFFSET $5`
	rows, err := r.q.Query(ctx, query, filter.WarehouseID, filter.From, filter.To, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	var list []*entity.Movement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		list = append(list, m)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	if err := r.attachLines(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

// attachLines carga las líneas de todos los movimientos en una sola consulta.
func (r *MovementRepo) attachLines(ctx context.Context, movements []*entity.Movement) error {
	if len(movements) == 0 {
		return nil
	}
	ids := make([]int64, len(movements))
	byID := make(map[int64]*entity.Movement, len(movements))
	for i, m := range movements {
		ids[i] = m.ID
		byID[m.ID] = m
	}
	const query = `
		SELECT id, movement_id, product_id, quantity, created_at
		FROM movement_lines WHERE movement_id = ANY($1)
		ORDER BY id`
	rows, err := r.q.Query(ctx, query, ids)
	if err != nil {
		return fmt.Errorf("list movement lines: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var l entity.MovementLine
		if err := rows.Scan(&l.ID, &l.MovementID, &l.ProductID, &l.Quantity, &l.CreatedAt); err != nil {
			return fmt.Errorf("scan movement line: %w", err)
		}
		if m := byID[l.MovementID]; m != nil {
			m.Lines = append(m.Lines, &l)
		}
	}
	return rows.Err()
}

// Delete elimina la cabecera. ErrInUse si aún tiene líneas.
func (r *MovementRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM movements WHERE id = $1`, id)
	if err != nil {
		return mapError("delete movement", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// CreateLine inserta una línea y asigna su ID.
func (r *MovementRepo) CreateLine(ctx context.Context, line *entity.MovementLine) error {
	const query = `
		INSERT INTO movement_lines (movement_id, product_id, quantity, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id`
	err := r.q.QueryRow(ctx, query, line.MovementID, line.ProductID, line.Quantity, line.CreatedAt).Scan(&line.ID)
	if err != nil {
		if pgCodeIs(err, codeForeignKeyViolation) {
			return fmt.Errorf("insert movement line: %w", domain.ErrNotFound)
		}
		return mapError("insert movement line", err)
	}
	return nil
}

// GetLineForUpdate obtiene la línea y la bloquea; nil si no existe.
func (r *MovementRepo) GetLineForUpdate(ctx context.Context, id int64) (*entity.MovementLine, error) {
	const query = `
		SELECT id, movement_id, product_id, quantity, created_at
		FROM movement_lines WHERE id = $1
		FOR UPDATE`
	var l entity.MovementLine
	err := r.q.QueryRow(ctx, query, id).Scan(&l.ID, &l.MovementID, &l.ProductID, &l.Quantity, &l.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapError("get movement line for update", err)
	}
	return &l, nil
}

// DeleteLine elimina la línea. El stock se revierte en el caso de uso.
func (r *MovementRepo) DeleteLine(ctx context.Context, id int64) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM movement_lines WHERE id = $1`, id)
	if err != nil {
		return mapError("delete movement line", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
