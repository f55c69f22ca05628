package entity

import "time"

// Author representa un autor de productos del catálogo.
type Author struct {
	ID        int64
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}
