package entity

import "time"

// Role rol de un usuario. Es una enumeración cerrada: un usuario es jefe de bodega o bodeguero, nunca ambos.
type Role string

// Roles válidos para User.
const (
	RoleManager Role = "jefe_bodega"
	RoleWorker  Role = "bodeguero"
)

// ParseRole convierte un string en Role; ok es false si no es un rol conocido.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleManager:
		return RoleManager, true
	case RoleWorker:
		return RoleWorker, true
	}
	return "", false
}

// Estados de usuario.
const (
	UserStatusActive   = "active"
	UserStatusInactive = "inactive"
)

// User representa un usuario del sistema.
type User struct {
	ID           int64
	Username     string
	PasswordHash string // bcrypt hash
	Name         string
	Role         Role
	Status       string // active, inactive
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
