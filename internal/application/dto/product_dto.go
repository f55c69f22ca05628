package dto

import "time"

// CreateProductRequest entrada para crear un producto.
// Si HomeWarehouseID viene informado, Quantity es el stock inicial en esa bodega.
type CreateProductRequest struct {
	Type            string  `json:"type" validate:"required,oneof=libro revista enciclopedia"`
	Title           string  `json:"title" validate:"required,min=1,max=255"`
	Description     string  `json:"description"`
	PublisherID     int64   `json:"publisher_id" validate:"required,gt=0"`
	AuthorIDs       []int64 `json:"author_ids" validate:"dive,gt=0"`
	HomeWarehouseID *int64  `json:"home_warehouse_id" validate:"omitempty,gt=0"`
	Quantity        int64   `json:"quantity" validate:"min=0,max=1000000"`
}

// UpdateProductRequest entrada para actualizar un producto (campos opcionales).
// Quantity fija el stock en la bodega principal (resultante).
type UpdateProductRequest struct {
	Type            *string  `json:"type" validate:"omitempty,oneof=libro revista enciclopedia"`
	Title           *string  `json:"title" validate:"omitempty,min=1,max=255"`
	Description     *string  `json:"description"`
	PublisherID     *int64   `json:"publisher_id" validate:"omitempty,gt=0"`
	AuthorIDs       *[]int64 `json:"author_ids"`
	HomeWarehouseID *int64   `json:"home_warehouse_id" validate:"omitempty,gt=0"`
	Quantity        *int64   `json:"quantity" validate:"omitempty,min=0,max=1000000"`
}

// ProductStockResponse stock del producto en una bodega.
type ProductStockResponse struct {
	WarehouseID int64 `json:"warehouse_id"`
	Quantity    int64 `json:"quantity"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID              int64                  `json:"id"`
	Type            string                 `json:"type"`
	Title           string                 `json:"title"`
	Description     string                 `json:"description"`
	PublisherID     int64                  `json:"publisher_id"`
	AuthorIDs       []int64                `json:"author_ids"`
	HomeWarehouseID *int64                 `json:"home_warehouse_id"`
	OnHand          int64                  `json:"on_hand"`
	Stock           []ProductStockResponse `json:"stock,omitempty"`
	CreatedAt       time.Time              `json:"created_at"`
	UpdatedAt       time.Time              `json:"updated_at"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}
