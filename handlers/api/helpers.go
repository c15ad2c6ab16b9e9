package api

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"diginotes/models"
	"diginotes/utils"
)

// currentUser returns the identity the auth middleware attached to the
// request. Protected routes always have one.
func currentUser(c *fiber.Ctx) (*models.User, error) {
	user, ok := c.Locals("user").(*models.User)
	if !ok || user == nil {
		return nil, utils.UnauthorizedError("User not authenticated", nil)
	}
	return user, nil
}

// paramID parses the :id path segment.
func paramID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return 0, utils.BadRequestError("Invalid id", err)
	}
	return id, nil
}

func success(c *fiber.Ctx, code int, data fiber.Map) error {
	return c.Status(code).JSON(fiber.Map{
		"status": "success",
		"data":   data,
	})
}

func successList(c *fiber.Ctx, results int, data fiber.Map) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":  "success",
		"results": results,
		"data":    data,
	})
}
