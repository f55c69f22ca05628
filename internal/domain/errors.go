package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrInUse              = errors.New("el recurso está en uso")
	ErrInvalidMovement    = errors.New("la bodega de origen no puede ser igual a la de destino")
	ErrProductNotInOrigin = errors.New("el producto no se encuentra en la bodega de origen")
	ErrInsufficientStock  = errors.New("stock insuficiente")
	ErrConflict           = errors.New("conflicto con otra operación concurrente, reintente")
)
