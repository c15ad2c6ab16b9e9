package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"diginotes/models"
	"diginotes/utils"
)

// NoteHandler handles note CRUD and the pin/archive toggles.
type NoteHandler struct {
	notes NoteStore
}

func NewNoteHandler(notes NoteStore) *NoteHandler {
	return &NoteHandler{notes: notes}
}

// ownedNote looks up the note from the :id param and enforces ownership:
// absent note is 404, someone else's note is 403.
func (h *NoteHandler) ownedNote(c *fiber.Ctx) (*models.Note, error) {
	user, err := currentUser(c)
	if err != nil {
		return nil, err
	}

	id, err := paramID(c)
	if err != nil {
		return nil, err
	}

	note, err := h.notes.FindByID(c.Context(), id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, utils.NotFoundError("Note not found", err)
		}
		return nil, utils.StorageError(err)
	}

	if note.UserID != user.ID {
		return nil, utils.ForbiddenError("You do not have permission to access this note", nil).
			WithContext("noteId", note.ID).
			WithContext("userId", user.ID)
	}

	return note, nil
}

// List returns every note the user owns, pinned first then most recently
// updated first.
func (h *NoteHandler) List(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	notes, err := h.notes.FindByUser(c.Context(), user.ID)
	if err != nil {
		return utils.StorageError(err)
	}

	return successList(c, len(notes), fiber.Map{"notes": notes})
}

func (h *NoteHandler) Get(c *fiber.Ctx) error {
	note, err := h.ownedNote(c)
	if err != nil {
		return err
	}
	return success(c, fiber.StatusOK, fiber.Map{"note": note})
}

func (h *NoteHandler) Create(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var input models.NoteInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequestError("Invalid request body", err)
	}
	if input.Title == "" {
		return utils.BadRequestError("Note title is required", nil)
	}

	note, err := h.notes.Create(c.Context(), input, user.ID)
	if err != nil {
		return utils.StorageError(err)
	}

	return success(c, fiber.StatusCreated, fiber.Map{"note": note})
}

func (h *NoteHandler) Update(c *fiber.Ctx) error {
	existing, err := h.ownedNote(c)
	if err != nil {
		return err
	}

	var update models.NoteUpdate
	if err := c.BodyParser(&update); err != nil {
		return utils.BadRequestError("Invalid request body", err)
	}
	if update.Title == "" {
		return utils.BadRequestError("Note title is required", nil)
	}

	note, err := h.notes.Update(c.Context(), existing.ID, update)
	if err != nil {
		return utils.StorageError(err)
	}

	return success(c, fiber.StatusOK, fiber.Map{"note": note})
}

func (h *NoteHandler) Delete(c *fiber.Ctx) error {
	note, err := h.ownedNote(c)
	if err != nil {
		return err
	}

	if err := h.notes.Delete(c.Context(), note.ID); err != nil {
		return utils.StorageError(err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *NoteHandler) TogglePin(c *fiber.Ctx) error {
	existing, err := h.ownedNote(c)
	if err != nil {
		return err
	}

	note, err := h.notes.TogglePin(c.Context(), existing.ID)
	if err != nil {
		return utils.StorageError(err)
	}

	return success(c, fiber.StatusOK, fiber.Map{"note": note})
}

func (h *NoteHandler) ToggleArchive(c *fiber.Ctx) error {
	existing, err := h.ownedNote(c)
	if err != nil {
		return err
	}

	note, err := h.notes.ToggleArchive(c.Context(), existing.ID)
	if err != nil {
		return utils.StorageError(err)
	}

	return success(c, fiber.StatusOK, fiber.Map{"note": note})
}
