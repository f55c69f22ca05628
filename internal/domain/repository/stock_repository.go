package repository

import (
	"context"

	"github.com/jhoicas/bodegas-api/internal/domain/entity"
)

// StockRepository define el puerto del ledger de stock por producto+bodega.
// Usado dentro de transacciones para garantizar consistencia.
type StockRepository interface {
	// GetForUpdate bloquea la fila (SELECT FOR UPDATE). Devuelve nil, nil si no existe.
	GetForUpdate(ctx context.Context, productID, warehouseID int64) (*entity.StockLevel, error)
	// ApplyDelta suma delta a la cantidad de forma atómica en la base de datos.
	// Devuelve domain.ErrInsufficientStock si el resultado quedaría negativo.
	ApplyDelta(ctx context.Context, productID, warehouseID, delta int64) error
	// Set fija la cantidad (crea la fila si no existe). quantity >= 0.
	Set(ctx context.Context, productID, warehouseID, quantity int64) error
	// Ensure crea la fila con cantidad 0 si no existe.
	Ensure(ctx context.Context, productID, warehouseID int64) error
	ListByWarehouse(ctx context.Context, warehouseID int64) ([]*entity.StockLevel, error)
	ListByProduct(ctx context.Context, productID int64) ([]*entity.StockLevel, error)
}
