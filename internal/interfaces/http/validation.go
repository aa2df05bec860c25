package http

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Farmacia-api/internal/application/dto"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Los errores usan el nombre JSON (o query) del campo.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" {
			name = strings.SplitN(fld.Tag.Get("query"), ",", 2)[0]
		}
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// parseBody decodifica y valida el cuerpo. Si falla ya escribió la respuesta 400
// y devuelve ok=false.
func parseBody(c *fiber.Ctx, out interface{}) (bool, error) {
	if err := c.BodyParser(out); err != nil {
		return false, c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	return validateStruct(c, out)
}

// parseQuery decodifica y valida los parámetros de consulta.
func parseQuery(c *fiber.Ctx, out interface{}) (bool, error) {
	if err := c.QueryParser(out); err != nil {
		return false, c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
	}
	return validateStruct(c, out)
}

func validateStruct(c *fiber.Ctx, in interface{}) (bool, error) {
	if err := validate.Struct(in); err != nil {
		return false, c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: validationMessage(err)})
	}
	return true, nil
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return strings.Join(msgs, "; ")
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + ": es requerido"
	case "uuid":
		return fe.Field() + ": debe ser un UUID"
	case "min", "gte":
		return fmt.Sprintf("%s: mínimo %s", fe.Field(), fe.Param())
	case "max", "lte":
		return fmt.Sprintf("%s: máximo %s", fe.Field(), fe.Param())
	case "gt":
		return fmt.Sprintf("%s: debe ser mayor que %s", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s: debe ser uno de [%s]", fe.Field(), fe.Param())
	default:
		return fe.Field() + ": valor inválido"
	}
}

const dateLayout = "2006-01-02"

// parseDateRange lee from/to (YYYY-MM-DD o RFC3339). Una fecha sin hora en "to"
// cubre el día completo.
func parseDateRange(c *fiber.Ctx) (from, to *time.Time, err error) {
	if raw := c.Query("from"); raw != "" {
		t, perr := parseDate(raw)
		if perr != nil {
			return nil, nil, fmt.Errorf("from: %w", perr)
		}
		from = &t
	}
	if raw := c.Query("to"); raw != "" {
		t, perr := parseDate(raw)
		if perr != nil {
			return nil, nil, fmt.Errorf("to: %w", perr)
		}
		if len(raw) == len(dateLayout) {
			t = t.Add(24*time.Hour - time.Nanosecond)
		}
		to = &t
	}
	return from, to, nil
}

func parseDate(raw string) (time.Time, error) {
	if t, err := time.Parse(dateLayout, raw); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, raw)
}
