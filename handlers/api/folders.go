package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"diginotes/models"
	"diginotes/utils"
)

// FolderHandler handles folder CRUD.
type FolderHandler struct {
	folders FolderStore
}

func NewFolderHandler(folders FolderStore) *FolderHandler {
	return &FolderHandler{folders: folders}
}

func (h *FolderHandler) ownedFolder(c *fiber.Ctx) (*models.Folder, error) {
	user, err := currentUser(c)
	if err != nil {
		return nil, err
	}

	id, err := paramID(c)
	if err != nil {
		return nil, err
	}

	folder, err := h.folders.FindByID(c.Context(), id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, utils.NotFoundError("Folder not found", err)
		}
		return nil, utils.StorageError(err)
	}

	if folder.UserID != user.ID {
		return nil, utils.ForbiddenError("You do not have permission to access this folder", nil).
			WithContext("folderId", folder.ID).
			WithContext("userId", user.ID)
	}

	return folder, nil
}

func (h *FolderHandler) List(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	folders, err := h.folders.FindByUser(c.Context(), user.ID)
	if err != nil {
		return utils.StorageError(err)
	}

	return successList(c, len(folders), fiber.Map{"folders": folders})
}

func (h *FolderHandler) Get(c *fiber.Ctx) error {
	folder, err := h.ownedFolder(c)
	if err != nil {
		return err
	}
	return success(c, fiber.StatusOK, fiber.Map{"folder": folder})
}

func (h *FolderHandler) Create(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var req struct {
		Name  string `json:"name"`
		Color string `json:"color"`
	}
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequestError("Invalid request body", err)
	}
	if req.Name == "" {
		return utils.BadRequestError("Folder name is required", nil)
	}

	folder, err := h.folders.Create(c.Context(), req.Name, req.Color, user.ID)
	if err != nil {
		return utils.StorageError(err)
	}

	return success(c, fiber.StatusCreated, fiber.Map{"folder": folder})
}

func (h *FolderHandler) Update(c *fiber.Ctx) error {
	existing, err := h.ownedFolder(c)
	if err != nil {
		return err
	}

	var req struct {
		Name  string `json:"name"`
		Color string `json:"color"`
	}
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequestError("Invalid request body", err)
	}
	if req.Name == "" {
		req.Name = existing.Name
	}
	if req.Color == "" {
		req.Color = existing.Color
	}

	folder, err := h.folders.Update(c.Context(), existing.ID, req.Name, req.Color)
	if err != nil {
		return utils.StorageError(err)
	}

	return success(c, fiber.StatusOK, fiber.Map{"folder": folder})
}

// Delete removes the folder. Notes inside it survive with their folder
// reference nulled.
func (h *FolderHandler) Delete(c *fiber.Ctx) error {
	folder, err := h.ownedFolder(c)
	if err != nil {
		return err
	}

	if err := h.folders.Delete(c.Context(), folder.ID); err != nil {
		return utils.StorageError(err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}
