package http

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/bodegas-api/internal/application/dto"
	"github.com/jhoicas/bodegas-api/internal/domain"
)

// errorMapping sentinela de dominio -> estado HTTP y código de respuesta.
var errorMapping = []struct {
	err    error
	status int
	code   string
}{
	{domain.ErrInvalidMovement, fiber.StatusBadRequest, "INVALID_MOVEMENT"},
	{domain.ErrProductNotInOrigin, fiber.StatusConflict, "PRODUCT_NOT_IN_ORIGIN"},
	{domain.ErrInsufficientStock, fiber.StatusConflict, "INSUFFICIENT_STOCK"},
	{domain.ErrForbidden, fiber.StatusForbidden, "FORBIDDEN"},
	{domain.ErrUserNotFound, fiber.StatusUnauthorized, "UNAUTHORIZED"},
	{domain.ErrUnauthorized, fiber.StatusUnauthorized, "UNAUTHORIZED"},
	{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND"},
	{domain.ErrDuplicate, fiber.StatusConflict, "DUPLICATE"},
	{domain.ErrInUse, fiber.StatusConflict, "IN_USE"},
	{domain.ErrConflict, fiber.StatusConflict, "CONCURRENT_UPDATE"},
	{domain.ErrInvalidInput, fiber.StatusBadRequest, "VALIDATION"},
}

// respondError traduce err a la respuesta HTTP. Los errores no mapeados son 500 y se registran.
func respondError(c *fiber.Ctx, err error) error {
	for _, m := range errorMapping {
		if errors.Is(err, m.err) {
			return c.Status(m.status).JSON(dto.ErrorResponse{Code: m.code, Message: m.err.Error()})
		}
	}
	log := loggerFrom(c)
	log.Error().Err(err).Str("path", c.Path()).Msg("error interno")
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno del servidor"})
}

// requestError error de petición (cuerpo, parámetros) que se responde tal cual.
type requestError struct {
	status int
	body   dto.ErrorResponse
}

func (e *requestError) Error() string { return e.body.Message }

func badRequest(code, message string) *requestError {
	return &requestError{status: fiber.StatusBadRequest, body: dto.ErrorResponse{Code: code, Message: message}}
}

// ErrorHandler handler de errores de fiber. Los handlers devuelven *requestError o errores de dominio.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var re *requestError
	if errors.As(err, &re) {
		return c.Status(re.status).JSON(re.body)
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code := "HTTP_ERROR"
		switch fe.Code {
		case fiber.StatusNotFound:
			code = "NOT_FOUND"
		case fiber.StatusMethodNotAllowed:
			code = "METHOD_NOT_ALLOWED"
		case fiber.StatusBadRequest:
			code = "BAD_REQUEST"
		}
		return c.Status(fe.Code).JSON(dto.ErrorResponse{Code: code, Message: fe.Message})
	}
	return respondError(c, err)
}

// paramID lee un parámetro de ruta numérico positivo.
func paramID(c *fiber.Ctx, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, badRequest("INVALID_ID", name+" debe ser un entero positivo")
	}
	return id, nil
}
