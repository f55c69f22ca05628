// Package inventory contiene las reglas de stock del motor de movimientos (servicio de dominio).
package inventory

import (
	"slices"

	"github.com/jhoicas/bodegas-api/internal/domain"
	"github.com/jhoicas/bodegas-api/internal/domain/entity"
)

// StockDelta es un ajuste atómico de stock sobre el ledger (producto, bodega).
type StockDelta struct {
	ProductID   int64
	WarehouseID int64
	Delta       int64
}

// ValidateLine valida una línea contra el stock de la bodega de origen.
// origin es nil cuando el producto no tiene registro en la bodega de origen.
// Sin bodega de origen (ingreso) no se valida stock.
func ValidateLine(m *entity.Movement, quantity int64, origin *entity.StockLevel) error {
	if quantity <= 0 || quantity > entity.MaxQuantity {
		return domain.ErrInvalidInput
	}
	if !m.HasOrigin() {
		return nil
	}
	if origin == nil {
		return domain.ErrProductNotInOrigin
	}
	if quantity > origin.Quantity {
		return domain.ErrInsufficientStock
	}
	return nil
}

// ApplyDeltas devuelve los ajustes que produce crear la línea:
// resta en origen y suma en destino (ambos si el movimiento es un traslado).
func ApplyDeltas(m *entity.Movement, l *entity.MovementLine) []StockDelta {
	var out []StockDelta
	if m.HasOrigin() {
		out = append(out, StockDelta{ProductID: l.ProductID, WarehouseID: *m.OriginWarehouseID, Delta: -l.Quantity})
	}
	if m.HasDestination() {
		out = append(out, StockDelta{ProductID: l.ProductID, WarehouseID: *m.DestinationWarehouseID, Delta: l.Quantity})
	}
	return out
}

// ReverseDeltas devuelve los ajustes que deshacen exactamente ApplyDeltas.
// Los incrementos van primero para que la reversión de un traslado circular no falle por orden.
func ReverseDeltas(m *entity.Movement, l *entity.MovementLine) []StockDelta {
	applied := ApplyDeltas(m, l)
	out := make([]StockDelta, 0, len(applied))
	for _, d := range applied {
		if d.Delta < 0 {
			out = append(out, StockDelta{ProductID: d.ProductID, WarehouseID: d.WarehouseID, Delta: -d.Delta})
		}
	}
	for _, d := range applied {
		if d.Delta > 0 {
			out = append(out, StockDelta{ProductID: d.ProductID, WarehouseID: d.WarehouseID, Delta: -d.Delta})
		}
	}
	return out
}

// LockOrder devuelve las bodegas del movimiento ordenadas por ID. Las filas del ledger de un
// producto se bloquean en este orden, el mismo para traslados A->B y B->A.
func LockOrder(m *entity.Movement) []int64 {
	ids := make([]int64, 0, 2)
	if m.HasOrigin() {
		ids = append(ids, *m.OriginWarehouseID)
	}
	if m.HasDestination() {
		ids = append(ids, *m.DestinationWarehouseID)
	}
	slices.Sort(ids)
	return ids
}
