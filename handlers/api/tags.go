package api

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"diginotes/models"
	"diginotes/utils"
)

// TagHandler handles tag listing, creation and deletion.
type TagHandler struct {
	tags TagStore
}

func NewTagHandler(tags TagStore) *TagHandler {
	return &TagHandler{tags: tags}
}

func (h *TagHandler) ownedTag(c *fiber.Ctx) (*models.Tag, error) {
	user, err := currentUser(c)
	if err != nil {
		return nil, err
	}

	id, err := paramID(c)
	if err != nil {
		return nil, err
	}

	tag, err := h.tags.FindByID(c.Context(), id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, utils.NotFoundError("Tag not found", err)
		}
		return nil, utils.StorageError(err)
	}

	if tag.UserID != user.ID {
		return nil, utils.ForbiddenError("You do not have permission to access this tag", nil).
			WithContext("tagId", tag.ID).
			WithContext("userId", user.ID)
	}

	return tag, nil
}

func (h *TagHandler) List(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	tags, err := h.tags.FindByUser(c.Context(), user.ID)
	if err != nil {
		return utils.StorageError(err)
	}

	return successList(c, len(tags), fiber.Map{"tags": tags})
}

// Popular returns the top N tags by usage count, alphabetical on ties.
func (h *TagHandler) Popular(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	limit := c.QueryInt("limit", 10)
	if limit <= 0 {
		limit = 10
	}

	tags, err := h.tags.Popular(c.Context(), user.ID, limit)
	if err != nil {
		return utils.StorageError(err)
	}

	return successList(c, len(tags), fiber.Map{"tags": tags})
}

func (h *TagHandler) Get(c *fiber.Ctx) error {
	tag, err := h.ownedTag(c)
	if err != nil {
		return err
	}
	return success(c, fiber.StatusOK, fiber.Map{"tag": tag})
}

// Create is idempotent per (owner, name): creating an existing tag returns
// the existing row.
func (h *TagHandler) Create(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var req struct {
		Name string `json:"name"`
	}
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequestError("Invalid request body", err)
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return utils.BadRequestError("Tag name is required", nil)
	}

	tag, err := h.tags.Upsert(c.Context(), user.ID, name)
	if err != nil {
		return utils.StorageError(err)
	}

	return success(c, fiber.StatusCreated, fiber.Map{"tag": tag})
}

// Delete removes the tag from every note that carries it; the notes stay.
func (h *TagHandler) Delete(c *fiber.Ctx) error {
	tag, err := h.ownedTag(c)
	if err != nil {
		return err
	}

	if err := h.tags.Delete(c.Context(), tag.ID); err != nil {
		return utils.StorageError(err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}
