package entity

import "time"

// ProductType tipo de producto del catálogo.
type ProductType string

// Tipos de producto válidos.
const (
	ProductTypeBook         ProductType = "libro"
	ProductTypeMagazine     ProductType = "revista"
	ProductTypeEncyclopedia ProductType = "enciclopedia"
)

// ProductTypes lista los tipos en el orden en que se reportan.
var ProductTypes = []ProductType{ProductTypeBook, ProductTypeMagazine, ProductTypeEncyclopedia}

// Valid indica si t es uno de los tipos conocidos.
func (t ProductType) Valid() bool {
	switch t {
	case ProductTypeBook, ProductTypeMagazine, ProductTypeEncyclopedia:
		return true
	}
	return false
}

// Product representa un libro, revista o enciclopedia.
// El stock vive en el ledger por bodega (StockLevel); OnHand es la cantidad en la bodega principal.
type Product struct {
	ID              int64
	Type            ProductType
	Title           string
	Description     string
	PublisherID     int64
	AuthorIDs       []int64
	HomeWarehouseID *int64 // nil si el producto no tiene bodega asignada
	OnHand          int64  // solo lectura: stock_levels(producto, bodega principal)
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
