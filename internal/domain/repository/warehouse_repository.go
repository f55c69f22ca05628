package repository

import (
	"context"

	"github.com/jhoicas/bodegas-api/internal/domain/entity"
)

// WarehouseRepository define el puerto de persistencia para Warehouse (DIP).
type WarehouseRepository interface {
	Create(ctx context.Context, warehouse *entity.Warehouse) error
	GetByID(ctx context.Context, id int64) (*entity.Warehouse, error)
	Update(ctx context.Context, warehouse *entity.Warehouse) error
	List(ctx context.Context, limit, offset int) ([]*entity.Warehouse, error)
	// DeleteUnused elimina la bodega salvo que sea origen o destino de movimientos con líneas,
	// o que aún tenga stock (ErrInUse). La comprobación y el borrado son atómicos.
	DeleteUnused(ctx context.Context, id int64) error
}
