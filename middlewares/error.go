package middlewares

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"ssincom-backend/apperr"
	"ssincom-backend/logger"
)

// ErrorHandler centralizes error responses and keeps messages sanitized.
func ErrorHandler(c *fiber.Ctx, err error) error {
	// Fiber errors (use their status code + message)
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(fiber.Map{"message": fe.Message})
	}

	// Validation errors (422 + per-field info, keyed by json name)
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		out := make(map[string]string, len(ve))
		for _, fe := range ve {
			out[fe.Field()] = fe.Tag()
		}
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"message": "validation failed",
			"errors":  out,
		})
	}

	var ce *apperr.ConflictError
	if errors.As(err, &ce) {
		body := fiber.Map{"message": ce.Message}
		if len(ce.Duplicates) > 0 {
			body["duplicates"] = ce.Duplicates
		}
		return c.Status(fiber.StatusConflict).JSON(body)
	}

	var nf *apperr.NotFoundError
	if errors.As(err, &nf) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": nf.Error()})
	}

	switch {
	case errors.Is(err, apperr.ErrNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "ไม่พบข้อมูล"})
	case errors.Is(err, gorm.ErrDuplicatedKey), errors.Is(err, apperr.ErrDuplicate):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": "ข้อมูลซ้ำ"})
	}

	log := logger.WithComponent("http")
	log.Error().Err(err).
		Str("method", c.Method()).
		Str("path", c.Path()).
		Msg("internal error")
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"message": "internal server error",
	})
}
