package entity

import "time"

// Warehouse representa una bodega donde se almacenan productos.
type Warehouse struct {
	ID        int64
	Name      string // único
	CreatedAt time.Time
	UpdatedAt time.Time
}
