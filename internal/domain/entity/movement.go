package entity

import (
	"fmt"
	"time"
)

// MovementCodePrefix prefijo de los códigos legibles de movimiento.
const MovementCodePrefix = "MOV-"

// MovementCode construye el código del movimiento a partir de su identificador reservado.
// Ej: 42 -> "MOV-00042". Identificadores de más de 5 dígitos no se truncan.
func MovementCode(id int64) string {
	return fmt.Sprintf("%s%05d", MovementCodePrefix, id)
}

// Movement representa un traslado de productos entre bodegas.
// Sin origen, el movimiento es un ingreso a la bodega de destino.
type Movement struct {
	ID                     int64
	Code                   string
	OriginWarehouseID      *int64
	DestinationWarehouseID *int64 // nil solo si la bodega fue eliminada
	UserID                 int64
	CreatedAt              time.Time
	Lines                  []*MovementLine
}

// HasOrigin indica si el movimiento descuenta stock de una bodega de origen.
func (m *Movement) HasOrigin() bool { return m.OriginWarehouseID != nil }

// HasDestination indica si el movimiento suma stock en una bodega de destino.
func (m *Movement) HasDestination() bool { return m.DestinationWarehouseID != nil }

// MovementLine es una línea (producto + cantidad) dentro de un movimiento.
// Solo se crea o se elimina; nunca se actualiza.
type MovementLine struct {
	ID         int64
	MovementID int64
	ProductID  int64
	Quantity   int64
	CreatedAt  time.Time
}
