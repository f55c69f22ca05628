package entity

import "time"

// StockLevel representa el stock actual de un producto en una bodega (ledger producto+bodega).
// Quantity nunca es negativa; todas las mutaciones son deltas atómicos en la base de datos.
type StockLevel struct {
	ProductID   int64
	WarehouseID int64
	Quantity    int64
	UpdatedAt   time.Time
}

const (
	// MaxQuantity es el máximo de unidades de una línea de movimiento o de una cantidad fijada a mano.
	MaxQuantity int64 = 1_000_000
	// MaxStockQuantity es el techo de unidades de una fila del ledger (CHECK stock_levels_quantity_max).
	MaxStockQuantity int64 = 1_000_000_000
)
