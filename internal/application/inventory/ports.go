package inventory

import (
	"context"

	"github.com/jhoicas/bodegas-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Garantiza atomicidad para el motor de movimientos: si fn retorna error se hace Rollback.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		movRepo repository.MovementRepository,
		stockRepo repository.StockRepository,
		productRepo repository.ProductRepository,
	) error) error
}

// CacheInvalidator invalida los informes cacheados después de una mutación de stock.
type CacheInvalidator interface {
	Bump(ctx context.Context) error
}
