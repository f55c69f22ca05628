package inventory

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/bodegas-api/internal/application/dto"
	"github.com/jhoicas/bodegas-api/internal/domain"
	"github.com/jhoicas/bodegas-api/internal/domain/access"
	"github.com/jhoicas/bodegas-api/internal/domain/entity"
	"github.com/jhoicas/bodegas-api/internal/domain/inventory"
	"github.com/jhoicas/bodegas-api/internal/domain/repository"
)

// MovementUseCase motor de movimientos: crea movimientos con sus líneas de forma transaccional,
// ajusta el ledger de stock (origen -q, destino +q) y revierte los ajustes al eliminar.
type MovementUseCase struct {
	txRunner      TxRunner
	movementRepo  repository.MovementRepository
	warehouseRepo repository.WarehouseRepository
	invalidator   CacheInvalidator
	log           zerolog.Logger
	now           func() time.Time
}

// NewMovementUseCase construye el caso de uso. invalidator puede ser nil.
func NewMovementUseCase(
	txRunner TxRunner,
	movementRepo repository.MovementRepository,
	warehouseRepo repository.WarehouseRepository,
	invalidator CacheInvalidator,
	log zerolog.Logger,
) *MovementUseCase {
	return &MovementUseCase{
		txRunner:      txRunner,
		movementRepo:  movementRepo,
		warehouseRepo: warehouseRepo,
		invalidator:   invalidator,
		log:           log,
		now:           time.Now,
	}
}

// CreateMovement valida rol y bodegas, y en una sola transacción reserva el ID, genera el código,
// inserta el movimiento y cada línea. Si una línea falla no queda ningún ajuste aplicado.
func (uc *MovementUseCase) CreateMovement(ctx context.Context, actor access.Actor, in dto.CreateMovementRequest) (*dto.MovementResponse, error) {
	if err := access.Require(actor, access.CanOperateMovements); err != nil {
		return nil, err
	}
	if in.DestinationWarehouseID <= 0 {
		return nil, domain.ErrInvalidInput
	}
	if in.OriginWarehouseID != nil {
		if *in.OriginWarehouseID <= 0 {
			return nil, domain.ErrInvalidInput
		}
		if *in.OriginWarehouseID == in.DestinationWarehouseID {
			return nil, domain.ErrInvalidMovement
		}
	}
	for _, l := range in.Lines {
		if l.ProductID <= 0 || l.Quantity <= 0 || l.Quantity > entity.MaxQuantity {
			return nil, domain.ErrInvalidInput
		}
	}

	if err := uc.requireWarehouse(ctx, in.DestinationWarehouseID); err != nil {
		return nil, err
	}
	if in.OriginWarehouseID != nil {
		if err := uc.requireWarehouse(ctx, *in.OriginWarehouseID); err != nil {
			return nil, err
		}
	}

	now := uc.now()
	dest := in.DestinationWarehouseID
	var created *entity.Movement

	err := uc.txRunner.Run(ctx, func(
		movRepo repository.MovementRepository,
		stockRepo repository.StockRepository,
		productRepo repository.ProductRepository,
	) error {
		// Reserva del ID antes de insertar: el movimiento se crea una sola vez, ya con su código.
		id, err := movRepo.NextID(ctx)
		if err != nil {
			return err
		}
		m := &entity.Movement{
			ID:                     id,
			Code:                   entity.MovementCode(id),
			OriginWarehouseID:      in.OriginWarehouseID,
			DestinationWarehouseID: &dest,
			UserID:                 actor.UserID,
			CreatedAt:              now,
		}
		if err := movRepo.Create(ctx, m); err != nil {
			return err
		}
		for _, l := range in.Lines {
			line, err := addLineInTx(ctx, movRepo, stockRepo, productRepo, m, l.ProductID, l.Quantity, now)
			if err != nil {
				return err
			}
			m.Lines = append(m.Lines, line)
		}
		created = m
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.invalidate(ctx)
	uc.log.Info().
		Str("code", created.Code).
		Int64("user_id", actor.UserID).
		Int("lines", len(created.Lines)).
		Msg("movimiento registrado")
	return toMovementResponse(created), nil
}

// AddLine agrega una línea a un movimiento existente y aplica sus ajustes de stock.
func (uc *MovementUseCase) AddLine(ctx context.Context, actor access.Actor, movementID int64, in dto.MovementLineRequest) (*dto.MovementLineResponse, error) {
	if err := access.Require(actor, access.CanOperateMovements); err != nil {
		return nil, err
	}
	if in.ProductID <= 0 || in.Quantity <= 0 || in.Quantity > entity.MaxQuantity {
		return nil, domain.ErrInvalidInput
	}
	now := uc.now()
	var created *entity.MovementLine

	err := uc.txRunner.Run(ctx, func(
		movRepo repository.MovementRepository,
		stockRepo repository.StockRepository,
		productRepo repository.ProductRepository,
	) error {
		m, err := movRepo.GetByID(ctx, movementID)
		if err != nil {
			return err
		}
		if m == nil {
			return domain.ErrNotFound
		}
		created, err = addLineInTx(ctx, movRepo, stockRepo, productRepo, m, in.ProductID, in.Quantity, now)
		return err
	})
	if err != nil {
		return nil, err
	}
	uc.invalidate(ctx)
	return toLineResponse(created), nil
}

// addLineInTx: valida producto y stock en origen (filas bloqueadas con SELECT FOR UPDATE),
// inserta la línea y aplica los deltas atómicos en el ledger.
func addLineInTx(
	ctx context.Context,
	movRepo repository.MovementRepository,
	stockRepo repository.StockRepository,
	productRepo repository.ProductRepository,
	m *entity.Movement,
	productID, quantity int64,
	now time.Time,
) (*entity.MovementLine, error) {
	product, err := productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}

	origin, err := lockLedger(ctx, stockRepo, m, productID)
	if err != nil {
		return nil, err
	}
	if err := inventory.ValidateLine(m, quantity, origin); err != nil {
		return nil, err
	}

	line := &entity.MovementLine{
		MovementID: m.ID,
		ProductID:  productID,
		Quantity:   quantity,
		CreatedAt:  now,
	}
	if err := movRepo.CreateLine(ctx, line); err != nil {
		return nil, err
	}
	for _, d := range inventory.ApplyDeltas(m, line) {
		if err := stockRepo.ApplyDelta(ctx, d.ProductID, d.WarehouseID, d.Delta); err != nil {
			return nil, err
		}
	}
	return line, nil
}

// lockLedger bloquea las filas del ledger del producto en las bodegas del movimiento, en orden
// de ID de bodega, y devuelve la fila de origen (nil si no hay origen o el producto no está).
func lockLedger(ctx context.Context, stockRepo repository.StockRepository, m *entity.Movement, productID int64) (*entity.StockLevel, error) {
	var origin *entity.StockLevel
	for _, warehouseID := range inventory.LockOrder(m) {
		level, err := stockRepo.GetForUpdate(ctx, productID, warehouseID)
		if err != nil {
			return nil, err
		}
		if m.HasOrigin() && warehouseID == *m.OriginWarehouseID {
			origin = level
		}
	}
	return origin, nil
}

func (uc *MovementUseCase) requireWarehouse(ctx context.Context, id int64) error {
	w, err := uc.warehouseRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if w == nil {
		return domain.ErrNotFound
	}
	return nil
}

func (uc *MovementUseCase) invalidate(ctx context.Context) {
	if uc.invalidator == nil {
		return
	}
	if err := uc.invalidator.Bump(ctx); err != nil {
		uc.log.Warn().Err(err).Msg("invalidar caché de informes")
	}
}
