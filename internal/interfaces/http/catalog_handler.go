package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/bodegas-api/internal/application/dto"
	"github.com/jhoicas/bodegas-api/internal/application/usecase"
)

// PublisherHandler CRUD de editoriales.
type PublisherHandler struct {
	uc *usecase.PublisherUseCase
}

// NewPublisherHandler construye el handler.
func NewPublisherHandler(uc *usecase.PublisherUseCase) *PublisherHandler {
	return &PublisherHandler{uc: uc}
}

// Create godoc
// @Summary      Crear editorial
// @Tags         publishers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.NameRequest  true  "Nombre"
// @Success      201   {object}  dto.PublisherResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/publishers [post]
func (h *PublisherHandler) Create(c *fiber.Ctx) error {
	var in dto.NameRequest
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	out, err := h.uc.Create(c.UserContext(), actorFrom(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener editorial
// @Tags         publishers
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID"
// @Success      200  {object}  dto.PublisherResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/publishers/{id} [get]
func (h *PublisherHandler) GetByID(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	out, err := h.uc.GetByID(c.UserContext(), actorFrom(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Renombrar editorial
// @Tags         publishers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  int              true  "ID"
// @Param        body  body  dto.NameRequest  true  "Nombre"
// @Success      200   {object}  dto.PublisherResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/publishers/{id} [put]
func (h *PublisherHandler) Update(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var in dto.NameRequest
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	out, err := h.uc.Update(c.UserContext(), actorFrom(c), id, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar editoriales
// @Tags         publishers
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "Límite"  default(20)
// @Param        offset  query  int  false  "Offset"  default(0)
// @Success      200     {object}  dto.PublisherListResponse
// @Router       /api/publishers [get]
func (h *PublisherHandler) List(c *fiber.Ctx) error {
	page, err := pageFrom(c)
	if err != nil {
		return err
	}
	out, err := h.uc.List(c.UserContext(), actorFrom(c), page)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar editorial
// @Description  409 IN_USE si la editorial tiene productos.
// @Tags         publishers
// @Security     Bearer
// @Param        id   path  int  true  "ID"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/publishers/{id} [delete]
func (h *PublisherHandler) Delete(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.uc.Delete(c.UserContext(), actorFrom(c), id); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// AuthorHandler CRUD de autores.
type AuthorHandler struct {
	uc *usecase.AuthorUseCase
}

// NewAuthorHandler construye el handler.
func NewAuthorHandler(uc *usecase.AuthorUseCase) *AuthorHandler {
	return &AuthorHandler{uc: uc}
}

// Create godoc
// @Summary      Crear autor
// @Tags         authors
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.NameRequest  true  "Nombre"
// @Success      201   {object}  dto.AuthorResponse
// @Router       /api/authors [post]
func (h *AuthorHandler) Create(c *fiber.Ctx) error {
	var in dto.NameRequest
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	out, err := h.uc.Create(c.UserContext(), actorFrom(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener autor
// @Tags         authors
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID"
// @Success      200  {object}  dto.AuthorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/authors/{id} [get]
func (h *AuthorHandler) GetByID(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	out, err := h.uc.GetByID(c.UserContext(), actorFrom(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Renombrar autor
// @Tags         authors
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  int              true  "ID"
// @Param        body  body  dto.NameRequest  true  "Nombre"
// @Success      200   {object}  dto.AuthorResponse
// @Router       /api/authors/{id} [put]
func (h *AuthorHandler) Update(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var in dto.NameRequest
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	out, err := h.uc.Update(c.UserContext(), actorFrom(c), id, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar autores
// @Tags         authors
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "Límite"  default(20)
// @Param        offset  query  int  false  "Offset"  default(0)
// @Success      200     {object}  dto.AuthorListResponse
// @Router       /api/authors [get]
func (h *AuthorHandler) List(c *fiber.Ctx) error {
	page, err := pageFrom(c)
	if err != nil {
		return err
	}
	out, err := h.uc.List(c.UserContext(), actorFrom(c), page)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar autor
// @Description  Quita al autor de los productos que lo referencian.
// @Tags         authors
// @Security     Bearer
// @Param        id   path  int  true  "ID"
// @Success      204
// @Router       /api/authors/{id} [delete]
func (h *AuthorHandler) Delete(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.uc.Delete(c.UserContext(), actorFrom(c), id); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
