package dto

import "time"

// MovementLineRequest una línea (producto + cantidad).
type MovementLineRequest struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
	Quantity  int64 `json:"quantity" validate:"required,gt=0,max=1000000"`
}

// CreateMovementRequest body para POST /api/movements.
// Sin origen el movimiento es un ingreso a la bodega de destino.
type CreateMovementRequest struct {
	OriginWarehouseID      *int64                `json:"origin_warehouse_id" validate:"omitempty,gt=0"`
	DestinationWarehouseID int64                 `json:"destination_warehouse_id" validate:"required,gt=0"`
	Lines                  []MovementLineRequest `json:"lines" validate:"dive"`
}

// MovementLineResponse salida de una línea.
type MovementLineResponse struct {
	ID         int64     `json:"id"`
	MovementID int64     `json:"movement_id"`
	ProductID  int64     `json:"product_id"`
	Quantity   int64     `json:"quantity"`
	CreatedAt  time.Time `json:"created_at"`
}

// MovementResponse salida de un movimiento.
type MovementResponse struct {
	ID                     int64                  `json:"id"`
	Code                   string                 `json:"code"`
	OriginWarehouseID      *int64                 `json:"origin_warehouse_id"`
	DestinationWarehouseID *int64                 `json:"destination_warehouse_id"`
	UserID                 int64                  `json:"user_id"`
	CreatedAt              time.Time              `json:"created_at"`
	Lines                  []MovementLineResponse `json:"lines"`
}

// MovementListResponse lista paginada de movimientos.
type MovementListResponse struct {
	Items []MovementResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}
