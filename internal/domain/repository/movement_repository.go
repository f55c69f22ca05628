package repository

import (
	"context"
	"time"

	"github.com/jhoicas/bodegas-api/internal/domain/entity"
)

// MovementFilter filtros opcionales para listar movimientos.
type MovementFilter struct {
	WarehouseID *int64 // origen o destino
	From, To    *time.Time
	Limit       int
	Offset      int
}

// MovementRepository define el puerto de persistencia para movimientos y sus líneas.
type MovementRepository interface {
	// NextID reserva el siguiente identificador de la secuencia; el código se construye con él.
	NextID(ctx context.Context) (int64, error)
	// Create inserta el movimiento con su ID y código ya asignados.
	Create(ctx context.Context, movement *entity.Movement) error
	// GetByID devuelve el movimiento con sus líneas, o nil si no existe.
	GetByID(ctx context.Context, id int64) (*entity.Movement, error)
	List(ctx context.Context, filter MovementFilter) ([]*entity.Movement, error)
	Delete(ctx context.Context, id int64) error

	CreateLine(ctx context.Context, line *entity.MovementLine) error
	// GetLineForUpdate bloquea la línea; nil si no existe.
	GetLineForUpdate(ctx context.Context, id int64) (*entity.MovementLine, error)
	DeleteLine(ctx context.Context, id int64) error
}
