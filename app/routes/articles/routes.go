package articles

import (
	"github.com/leo900807/PCSHOI-Site/app/routes/auth"

	"github.com/gofiber/fiber/v2"
)

func SetupArticlesRoutes(app *fiber.App) {
	api := app.Group("/api/articles")

	// Public routes; admins see unpublished entries too
	api.Get("/", auth.OptionalAuthMiddleware, IndexAPI)
	api.Get("/:id", auth.OptionalAuthMiddleware, ShowAPI)

	// Administrator routes
	admin := api.Group("", auth.AuthMiddleware, auth.AdminMiddleware)
	admin.Post("/", CreateAPI)
	admin.Patch("/:id", UpdateAPI)
	admin.Delete("/:id", DestroyAPI)
}
