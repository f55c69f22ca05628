package inventory

import (
	"context"

	"github.com/jhoicas/bodegas-api/internal/application/dto"
	"github.com/jhoicas/bodegas-api/internal/domain"
	"github.com/jhoicas/bodegas-api/internal/domain/access"
	"github.com/jhoicas/bodegas-api/internal/domain/entity"
	"github.com/jhoicas/bodegas-api/internal/domain/repository"
)

// ListMovements lista movimientos (más recientes primero), opcionalmente de una bodega.
func (uc *MovementUseCase) ListMovements(ctx context.Context, actor access.Actor, filter repository.MovementFilter) (*dto.MovementListResponse, error) {
	if err := access.Require(actor, access.CanOperateMovements); err != nil {
		return nil, err
	}
	list, err := uc.movementRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.MovementResponse, 0, len(list))
	for _, m := range list {
		items = append(items, *toMovementResponse(m))
	}
	return &dto.MovementListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: filter.Limit, Offset: filter.Offset},
	}, nil
}

// GetMovement obtiene un movimiento con sus líneas.
func (uc *MovementUseCase) GetMovement(ctx context.Context, actor access.Actor, id int64) (*dto.MovementResponse, error) {
	if err := access.Require(actor, access.CanOperateMovements); err != nil {
		return nil, err
	}
	m, err := uc.movementRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, domain.ErrNotFound
	}
	return toMovementResponse(m), nil
}

func toMovementResponse(m *entity.Movement) *dto.MovementResponse {
	if m == nil {
		return nil
	}
	lines := make([]dto.MovementLineResponse, 0, len(m.Lines))
	for _, l := range m.Lines {
		lines = append(lines, *toLineResponse(l))
	}
	return &dto.MovementResponse{
		ID:                     m.ID,
		Code:                   m.Code,
		OriginWarehouseID:      m.OriginWarehouseID,
		DestinationWarehouseID: m.DestinationWarehouseID,
		UserID:                 m.UserID,
		CreatedAt:              m.CreatedAt,
		Lines:                  lines,
	}
}

func toLineResponse(l *entity.MovementLine) *dto.MovementLineResponse {
	return &dto.MovementLineResponse{
		ID:         l.ID,
		MovementID: l.MovementID,
		ProductID:  l.ProductID,
		Quantity:   l.Quantity,
		CreatedAt:  l.CreatedAt,
	}
}
