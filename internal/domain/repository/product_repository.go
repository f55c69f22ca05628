package repository

import (
	"context"

	"github.com/jhoicas/bodegas-api/internal/domain/entity"
)

// ProductFilter filtros opcionales para listar productos.
type ProductFilter struct {
	WarehouseID *int64 // productos con stock registrado en la bodega
	Type        entity.ProductType
	Limit       int
	Offset      int
}

// ProductRepository define el puerto de persistencia para Product (DIP).
// Create y Update persisten también la relación con autores.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id int64) (*entity.Product, error)
	Update(ctx context.Context, product *entity.Product) error
	List(ctx context.Context, filter ProductFilter) ([]*entity.Product, error)
	Delete(ctx context.Context, id int64) error
	// HasMovementLines indica si alguna línea de movimiento referencia el producto.
	HasMovementLines(ctx context.Context, id int64) (bool, error)
}
