package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/bodegas-api/internal/application/dto"
	"github.com/jhoicas/bodegas-api/internal/application/inventory"
	"github.com/jhoicas/bodegas-api/internal/domain/repository"
)

// MovementHandler maneja el motor de movimientos (bodeguero).
type MovementHandler struct {
	uc *inventory.MovementUseCase
}

// NewMovementHandler construye el handler.
func NewMovementHandler(uc *inventory.MovementUseCase) *MovementHandler {
	return &MovementHandler{uc: uc}
}

// Create godoc
// @Summary      Registrar movimiento
// @Description  Traslado entre bodegas o ingreso (sin origen). Todas las líneas se aplican o ninguna.
// @Tags         movements
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateMovementRequest  true  "Bodegas y líneas"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse  "VALIDATION | INVALID_MOVEMENT"
// @Failure      409   {object}  dto.ErrorResponse  "PRODUCT_NOT_IN_ORIGIN | INSUFFICIENT_STOCK"
// @Router       /api/movements [post]
func (h *MovementHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateMovementRequest
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	out, err := h.uc.CreateMovement(c.UserContext(), actorFrom(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// AddLine godoc
// @Summary      Agregar línea a un movimiento
// @Tags         movements
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  int                      true  "ID del movimiento"
// @Param        body  body  dto.MovementLineRequest  true  "Producto y cantidad"
// @Success      201   {object}  dto.MovementLineResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/movements/{id}/lines [post]
func (h *MovementHandler) AddLine(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var in dto.MovementLineRequest
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	out, err := h.uc.AddLine(c.UserContext(), actorFrom(c), id, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// DeleteLine godoc
// @Summary      Eliminar línea
// @Description  Revierte el stock de la línea.
// @Tags         movements
// @Security     Bearer
// @Param        lineID  path  int  true  "ID de la línea"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse  "INSUFFICIENT_STOCK en destino"
// @Router       /api/movements/lines/{lineID} [delete]
func (h *MovementHandler) DeleteLine(c *fiber.Ctx) error {
	id, err := paramID(c, "lineID")
	if err != nil {
		return err
	}
	if err := h.uc.DeleteLine(c.UserContext(), actorFrom(c), id); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Delete godoc
// @Summary      Eliminar movimiento
// @Description  Revierte todas las líneas en una sola transacción.
// @Tags         movements
// @Security     Bearer
// @Param        id   path  int  true  "ID del movimiento"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/movements/{id} [delete]
func (h *MovementHandler) Delete(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.uc.DeleteMovement(c.UserContext(), actorFrom(c), id); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetByID godoc
// @Summary      Obtener movimiento
// @Tags         movements
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID del movimiento"
// @Success      200  {object}  dto.MovementResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/movements/{id} [get]
func (h *MovementHandler) GetByID(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	out, err := h.uc.GetMovement(c.UserContext(), actorFrom(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar movimientos
// @Tags         movements
// @Security     Bearer
// @Produce      json
// @Param        warehouse_id  query  int     false  "Origen o destino"
// @Param        from          query  string  false  "RFC3339 o AAAA-MM-DD"
// @Param        to            query  string  false  "RFC3339 o AAAA-MM-DD"
// @Param        limit         query  int     false  "Límite"  default(20)
// @Param        offset        query  int     false  "Offset"  default(0)
// @Success      200           {object}  dto.MovementListResponse
// @Router       /api/movements [get]
func (h *MovementHandler) List(c *fiber.Ctx) error {
	page, err := pageFrom(c)
	if err != nil {
		return err
	}
	warehouseID, err := optionalInt64Query(c, "warehouse_id")
	if err != nil {
		return err
	}
	from, err := timeQuery(c, "from", false)
	if err != nil {
		return err
	}
	to, err := timeQuery(c, "to", true)
	if err != nil {
		return err
	}
	out, err := h.uc.ListMovements(c.UserContext(), actorFrom(c), repository.MovementFilter{
		WarehouseID: warehouseID,
		From:        from,
		To:          to,
		Limit:       page.Limit,
		Offset:      page.Offset,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
