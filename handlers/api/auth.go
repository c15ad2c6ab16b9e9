package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"

	"diginotes/auth"
	"diginotes/config"
	"diginotes/models"
	"diginotes/utils"
)

const bcryptCost = 12

// AuthHandler handles registration and login.
type AuthHandler struct {
	users UserStore
	cfg   *config.Config
}

func NewAuthHandler(users UserStore, cfg *config.Config) *AuthHandler {
	return &AuthHandler{users: users, cfg: cfg}
}

// Register creates a user and issues a session token bound to it.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequestError("Invalid request body", err)
	}
	if req.Username == "" || req.Email == "" || req.Password == "" {
		return utils.BadRequestError("Username, email and password are required", nil)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return utils.StorageError(err)
	}

	user, err := h.users.Create(c.Context(), req.Username, req.Email, string(hash))
	if err != nil {
		if errors.Is(err, models.ErrDuplicateEmail) {
			return utils.BadRequestError("Email already registered", err)
		}
		return utils.StorageError(err)
	}

	token, err := auth.GenerateToken(user.ID, h.cfg.JWT.Secret, h.cfg.TokenTTL())
	if err != nil {
		return utils.StorageError(err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"status": "success",
		"token":  token,
		"data":   fiber.Map{"user": user},
	})
}

// Login verifies credentials and issues a session token. Unknown email and
// wrong password share one message so neither case leaks which it was.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequestError("Invalid request body", err)
	}

	user, err := h.users.FindByEmail(c.Context(), req.Email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return utils.UnauthorizedError("Incorrect email or password", nil)
		}
		return utils.StorageError(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return utils.UnauthorizedError("Incorrect email or password", nil)
	}

	token, err := auth.GenerateToken(user.ID, h.cfg.JWT.Secret, h.cfg.TokenTTL())
	if err != nil {
		return utils.StorageError(err)
	}

	user.PasswordHash = ""

	return c.JSON(fiber.Map{
		"status": "success",
		"token":  token,
		"data":   fiber.Map{"user": user},
	})
}
