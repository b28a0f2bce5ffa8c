package registration

import (
	"github.com/leo900807/PCSHOI-Site/app/routes/auth"

	"github.com/gofiber/fiber/v2"
)

func SetupRegistrationRoutes(app *fiber.App) {
	api := app.Group("/api/registrations")
	api.Use(auth.AuthMiddleware)

	// Member routes
	api.Get("/", IndexAPI)
	api.Get("/status", StatusAPI)
	api.Post("/", CreateAPI)
	api.Patch("/", UpdateAPI)

	// Administrator routes
	admin := api.Group("", auth.AdminMiddleware)
	admin.Get("/settings", SettingsAPI)
	admin.Put("/settings", UpdateSettingsAPI)
	admin.Get("/export", ExportAPI)
	admin.Post("/import", ImportAPI)
	admin.Delete("/:id", DestroyAPI)
}
