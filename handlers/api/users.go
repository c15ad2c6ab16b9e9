package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"diginotes/models"
	"diginotes/utils"
)

// UserHandler handles the authenticated user's own profile.
type UserHandler struct {
	users UserStore
}

func NewUserHandler(users UserStore) *UserHandler {
	return &UserHandler{users: users}
}

// Me returns the requesting user's profile.
func (h *UserHandler) Me(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	return success(c, fiber.StatusOK, fiber.Map{"user": user})
}

// UpdateMe applies a sparse profile update. At least one field is required.
func (h *UserHandler) UpdateMe(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var patch models.UserPatch
	if err := c.BodyParser(&patch); err != nil {
		return utils.BadRequestError("Invalid request body", err)
	}
	if patch.Empty() {
		return utils.BadRequestError("No fields to update", nil)
	}

	updated, err := h.users.Update(c.Context(), user.ID, patch)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			return utils.NotFoundError("User not found", err)
		case errors.Is(err, models.ErrDuplicateEmail):
			return utils.BadRequestError("Email already registered", err)
		}
		return utils.StorageError(err)
	}

	return success(c, fiber.StatusOK, fiber.Map{"user": updated})
}
