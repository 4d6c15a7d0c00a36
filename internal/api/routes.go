package api

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ivlev/reframe/internal/api/handlers"
	"github.com/ivlev/reframe/internal/config"
)

func NewServer(cfg *config.Config) *fiber.App {
	// Detection dumps for long sources run well past fiber's 4MB default.
	app := fiber.New(fiber.Config{
		BodyLimit: 64 * 1024 * 1024,
	})

	handlers.RegisterHealthRoutes(app)
	handlers.RegisterPlanRoutes(app, cfg)

	return app
}
