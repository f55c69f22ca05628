package dto

import "time"

// CreateWarehouseRequest entrada para crear una bodega.
type CreateWarehouseRequest struct {
	Name string `json:"name" validate:"required,min=1,max=255"`
}

// UpdateWarehouseRequest entrada para actualizar una bodega.
type UpdateWarehouseRequest struct {
	Name *string `json:"name" validate:"omitempty,min=1,max=255"`
}

// WarehouseResponse salida de una bodega.
type WarehouseResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// WarehouseListResponse lista paginada de bodegas.
type WarehouseListResponse struct {
	Items []WarehouseResponse `json:"items"`
	Page  PageResponse        `json:"page"`
}

// WarehouseStockItem un producto con stock en la bodega.
type WarehouseStockItem struct {
	ProductID int64  `json:"product_id"`
	Title     string `json:"title"`
	Type      string `json:"type"`
	Quantity  int64  `json:"quantity"`
}

// WarehouseStockResponse vista "productos en bodega".
type WarehouseStockResponse struct {
	Warehouse WarehouseResponse    `json:"warehouse"`
	Items     []WarehouseStockItem `json:"items"`
	Units     int64                `json:"units"`
}
