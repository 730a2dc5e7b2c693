package api

import (
	"resume-chatbot/docs"
	"resume-chatbot/internal/api/handlers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
)

func SetupRouter(
	chatHandler *handlers.ChatHandler,
	healthHandler *handlers.HealthHandler,
) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	// Middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,X-Used-Suggestions",
	}))
	app.Use(logger.New())

	// Swagger - importing docs registers the documentation via init()
	_ = docs.SwaggerInfo
	app.Get("/swagger/*", swagger.HandlerDefault)

	app.Get("/healthz", healthHandler.Health)

	v1 := app.Group("/api/v1")
	v1.Post("/chat", chatHandler.Chat)
	v1.Get("/suggestions", chatHandler.Suggestions)

	return app
}
