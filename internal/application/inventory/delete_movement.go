package inventory

import (
	"context"

	"github.com/jhoicas/bodegas-api/internal/domain"
	"github.com/jhoicas/bodegas-api/internal/domain/access"
	"github.com/jhoicas/bodegas-api/internal/domain/entity"
	"github.com/jhoicas/bodegas-api/internal/domain/inventory"
	"github.com/jhoicas/bodegas-api/internal/domain/repository"
)

// DeleteLine revierte los ajustes de la línea (suma en origen, resta en destino) y la elimina.
// La reversión no revalida la residencia del producto; solo el ledger impide quedar en negativo.
func (uc *MovementUseCase) DeleteLine(ctx context.Context, actor access.Actor, lineID int64) error {
	if err := access.Require(actor, access.CanOperateMovements); err != nil {
		return err
	}
	err := uc.txRunner.Run(ctx, func(
		movRepo repository.MovementRepository,
		stockRepo repository.StockRepository,
		_ repository.ProductRepository,
	) error {
		line, err := movRepo.GetLineForUpdate(ctx, lineID)
		if err != nil {
			return err
		}
		if line == nil {
			return domain.ErrNotFound
		}
		m, err := movRepo.GetByID(ctx, line.MovementID)
		if err != nil {
			return err
		}
		if m == nil {
			return domain.ErrNotFound
		}
		return reverseLineInTx(ctx, movRepo, stockRepo, m, line)
	})
	if err != nil {
		return err
	}
	uc.invalidate(ctx)
	return nil
}

// DeleteMovement elimina el movimiento en una transacción explícita: revierte cada línea,
// la elimina y por último borra el movimiento. No depende de borrados en cascada.
func (uc *MovementUseCase) DeleteMovement(ctx context.Context, actor access.Actor, movementID int64) error {
	if err := access.Require(actor, access.CanOperateMovements); err != nil {
		return err
	}
	var code string
	err := uc.txRunner.Run(ctx, func(
		movRepo repository.MovementRepository,
		stockRepo repository.StockRepository,
		_ repository.ProductRepository,
	) error {
		m, err := movRepo.GetByID(ctx, movementID)
		if err != nil {
			return err
		}
		if m == nil {
			return domain.ErrNotFound
		}
		code = m.Code
		for _, l := range m.Lines {
			locked, err := movRepo.GetLineForUpdate(ctx, l.ID)
			if err != nil {
				return err
			}
			if locked == nil {
				continue // eliminada por otra transacción
			}
			if err := reverseLineInTx(ctx, movRepo, stockRepo, m, locked); err != nil {
				return err
			}
		}
		return movRepo.Delete(ctx, m.ID)
	})
	if err != nil {
		return err
	}
	uc.invalidate(ctx)
	uc.log.Info().Str("code", code).Int64("user_id", actor.UserID).Msg("movimiento eliminado")
	return nil
}

func reverseLineInTx(
	ctx context.Context,
	movRepo repository.MovementRepository,
	stockRepo repository.StockRepository,
	m *entity.Movement,
	line *entity.MovementLine,
) error {
	if _, err := lockLedger(ctx, stockRepo, m, line.ProductID); err != nil {
		return err
	}
	for _, d := range inventory.ReverseDeltas(m, line) {
		if err := stockRepo.ApplyDelta(ctx, d.ProductID, d.WarehouseID, d.Delta); err != nil {
			return err
		}
	}
	return movRepo.DeleteLine(ctx, line.ID)
}
