package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"

	"diginotes/config"
	"diginotes/middleware"
)

// Stores bundles the entity access layer the handlers run on.
type Stores struct {
	Users   UserStore
	Notes   NoteStore
	Folders FolderStore
	Tags    TagStore
}

// NewRouter assembles the fiber app: global middleware, public auth routes
// and the bearer-token protected API surface. main and the handler tests
// share this wiring.
func NewRouter(cfg *config.Config, stores Stores) *fiber.App {
	app := fiber.New(fiber.Config{
		BodyLimit:             cfg.Server.BodyLimit,
		ErrorHandler:          ErrorHandler,
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{
		Generator: func() string { return uuid.New().String() },
	}))
	app.Use(logger.New())
	app.Use(compress.New())
	app.Use(helmet.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.Server.CORSOrigin,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PATCH, DELETE, OPTIONS",
	}))
	if cfg.Server.RateLimit > 0 {
		app.Use(middleware.RateLimiter(cfg.Server.RateLimit, time.Minute))
	}
	if cfg.Metrics.Enabled {
		app.Use(middleware.Metrics())
	}

	authHandler := NewAuthHandler(stores.Users, cfg)
	userHandler := NewUserHandler(stores.Users)
	noteHandler := NewNoteHandler(stores.Notes)
	folderHandler := NewFolderHandler(stores.Folders)
	tagHandler := NewTagHandler(stores.Tags)

	root := app.Group("/api")

	root.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":    "success",
			"message":   "Server is running",
			"timestamp": time.Now().Format(time.RFC3339),
		})
	})

	root.Post("/auth/register", authHandler.Register)
	root.Post("/auth/login", authHandler.Login)

	protected := root.Group("", middleware.RequireAuth(cfg.JWT.Secret, stores.Users))

	protected.Get("/users/me", userHandler.Me)
	protected.Patch("/users/me", userHandler.UpdateMe)

	protected.Get("/notes", noteHandler.List)
	protected.Post("/notes", noteHandler.Create)
	protected.Get("/notes/:id", noteHandler.Get)
	protected.Patch("/notes/:id", noteHandler.Update)
	protected.Delete("/notes/:id", noteHandler.Delete)
	protected.Patch("/notes/:id/pin", noteHandler.TogglePin)
	protected.Patch("/notes/:id/archive", noteHandler.ToggleArchive)

	protected.Get("/folders", folderHandler.List)
	protected.Post("/folders", folderHandler.Create)
	protected.Get("/folders/:id", folderHandler.Get)
	protected.Patch("/folders/:id", folderHandler.Update)
	protected.Delete("/folders/:id", folderHandler.Delete)

	protected.Get("/tags", tagHandler.List)
	protected.Post("/tags", tagHandler.Create)
	protected.Get("/tags/popular", tagHandler.Popular)
	protected.Get("/tags/:id", tagHandler.Get)
	protected.Delete("/tags/:id", tagHandler.Delete)

	return app
}
