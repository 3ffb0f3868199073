package middlewares

import (
	"github.com/gofiber/fiber/v2"

	"ssincom-backend/database"
	"ssincom-backend/logger"
)

// Tx opens one DB transaction per request. Handlers get it through database.FromCtx(c).
// It commits when the handler succeeds and rolls back on error, panic or an error status.
// Order: run AFTER RequireSession() and AFTER Idempotency() so idempotency records aren't tied to the handler TX.
func Tx() fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		if database.DB == nil {
			return fiber.NewError(fiber.StatusServiceUnavailable, "database not initialized")
		}
		tx := database.DB.WithContext(c.UserContext()).Begin()
		if tx.Error != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to begin transaction")
		}

		defer func() {
			if r := recover(); r != nil {
				_ = tx.Rollback()
				panic(r) // re-panic after rollback so the recover middleware reports it
			}
			if err != nil || c.Response().StatusCode() >= fiber.StatusBadRequest {
				_ = tx.Rollback()
				return
			}
			if e := tx.Commit().Error; e != nil {
				log := logger.WithComponent("tx")
				log.Error().Err(e).Str("path", c.Path()).Msg("tx commit failed")
				err = fiber.NewError(fiber.StatusInternalServerError, "transaction commit failed")
			}
		}()

		c.Locals("tx", tx)
		err = c.Next()
		return err
	}
}
