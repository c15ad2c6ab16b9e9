package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"diginotes/utils"
)

// ErrorHandler maps every error escaping a handler to the response envelope:
// {"status":"fail"|"error","message":...}, "fail" for client errors and
// "error" for server errors. Storage failures are logged with their cause but
// surfaced as a generic message. Ownership violations (403) are logged as
// such, never folded into the not-found noise.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Something went wrong"

	var appErr *utils.AppError
	var fiberErr *fiber.Error

	switch {
	case errors.As(err, &appErr):
		code = appErr.Code
		message = appErr.Message

		log := utils.Log.WithFields(map[string]interface{}{
			"method": c.Method(),
			"path":   c.Path(),
		})
		for k, v := range appErr.Context {
			log = log.WithField(k, v)
		}

		switch {
		case code == fiber.StatusForbidden:
			log.Warn("ownership violation: %s", appErr.Message)
		case code >= 500:
			log.Error("storage failure: %v", appErr)
			message = "Something went wrong"
		}
	case errors.As(err, &fiberErr):
		code = fiberErr.Code
		message = fiberErr.Message
	default:
		utils.Log.WithField("path", c.Path()).Error("unhandled error: %v", err)
	}

	status := "error"
	if code < 500 {
		status = "fail"
	}

	return c.Status(code).JSON(fiber.Map{
		"status":  status,
		"message": message,
	})
}
