// Package access define la política de acceso por rol. Son predicados puros:
// se evalúan antes de cualquier llamada a persistencia.
package access

import (
	"github.com/jhoicas/bodegas-api/internal/domain"
	"github.com/jhoicas/bodegas-api/internal/domain/entity"
)

// Actor es el usuario que ejecuta una operación (request-scoped).
type Actor struct {
	UserID int64
	Role   entity.Role
}

// CanManageCatalog: mutación de editoriales, autores, productos, bodegas y usuarios.
func CanManageCatalog(r entity.Role) bool { return r == entity.RoleManager }

// CanOperateMovements: crear movimientos, agregar/eliminar líneas y listarlos.
func CanOperateMovements(r entity.Role) bool { return r == entity.RoleWorker }

// CanReadInventory: listado de productos y bodegas (ambos roles).
func CanReadInventory(r entity.Role) bool {
	return r == entity.RoleManager || r == entity.RoleWorker
}

// CanViewReports: informes generales, de movimientos y de bodega.
func CanViewReports(r entity.Role) bool { return r == entity.RoleManager }

// Require devuelve ErrForbidden si el predicado no se cumple para el actor.
func Require(a Actor, allowed func(entity.Role) bool) error {
	if !allowed(a.Role) {
		return domain.ErrForbidden
	}
	return nil
}
