package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/bodegas-api/internal/domain"
)

// Códigos SQLSTATE que se traducen a errores de dominio.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeCheckViolation      = "23514"
	codeNumericOutOfRange   = "22003"
	codeSerialization       = "40001"
	codeDeadlock            = "40P01"
)

// mapError envuelve err con op y lo asocia al error de dominio que corresponde al SQLSTATE:
// 23505 -> ErrDuplicate, 23503 -> ErrInUse, 23514 según la restricción violada,
// 22003 -> ErrInvalidInput, 40001/40P01 -> ErrConflict.
func mapError(op string, err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return fmt.Errorf("%s: %w", op, err)
	}
	switch pgErr.Code {
	case codeUniqueViolation:
		return fmt.Errorf("%s: %w", op, domain.ErrDuplicate)
	case codeForeignKeyViolation:
		return fmt.Errorf("%s: %w", op, domain.ErrInUse)
	case codeCheckViolation:
		switch pgErr.ConstraintName {
		case "stock_levels_quantity_check":
			return fmt.Errorf("%s: %w", op, domain.ErrInsufficientStock)
		case "movements_distinct_warehouses":
			return fmt.Errorf("%s: %w", op, domain.ErrInvalidMovement)
		}
		return fmt.Errorf("%s: %w", op, domain.ErrInvalidInput)
	case codeNumericOutOfRange:
		return fmt.Errorf("%s: %w", op, domain.ErrInvalidInput)
	case codeSerialization, codeDeadlock:
		return fmt.Errorf("%s: %w", op, domain.ErrConflict)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func pgCodeIs(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}

// clampPage aplica límites de paginación (20 por defecto, 100 máximo).
func clampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
