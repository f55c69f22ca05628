package http

import (
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/bodegas-api/internal/application/dto"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Los errores usan el nombre JSON del campo.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// bindJSON parsea el cuerpo en dst y aplica las reglas `validate` del DTO.
func bindJSON(c *fiber.Ctx, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		return badRequest("INVALID_BODY", "cuerpo inválido")
	}
	return validateStruct(dst)
}

// bindQuery parsea la query string en dst y la valida.
func bindQuery(c *fiber.Ctx, dst any) error {
	if err := c.QueryParser(dst); err != nil {
		return badRequest("INVALID_QUERY", "parámetros de consulta inválidos")
	}
	return validateStruct(dst)
}

func validateStruct(dst any) error {
	err := validate.Struct(dst)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return badRequest("VALIDATION", err.Error())
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		rule := fe.Tag()
		if fe.Param() != "" {
			rule += "=" + fe.Param()
		}
		fields[fe.Field()] = rule
	}
	re := badRequest("VALIDATION", "datos inválidos")
	re.body.Fields = fields
	return re
}

// pageFrom lee limit/offset de la query.
func pageFrom(c *fiber.Ctx) (dto.PageRequest, error) {
	var page dto.PageRequest
	if err := bindQuery(c, &page); err != nil {
		return page, err
	}
	page.DefaultPage()
	return page, nil
}

// optionalInt64Query lee un entero positivo opcional de la query.
func optionalInt64Query(c *fiber.Ctx, key string) (*int64, error) {
	if c.Query(key) == "" {
		return nil, nil
	}
	v := c.QueryInt(key, 0)
	if v <= 0 {
		return nil, badRequest("INVALID_QUERY", key+" debe ser un entero positivo")
	}
	id := int64(v)
	return &id, nil
}

// timeQuery acepta RFC3339 o fecha (2006-01-02). Con endOfDay la fecha cubre el día completo.
func timeQuery(c *fiber.Ctx, key string, endOfDay bool) (*time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := time.ParseInLocation(time.DateOnly, raw, time.UTC)
	if err != nil {
		return nil, badRequest("INVALID_QUERY", key+" debe ser RFC3339 o AAAA-MM-DD")
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}
