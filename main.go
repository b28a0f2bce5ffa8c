package main

import (
	"log"
	"os"

	"github.com/leo900807/PCSHOI-Site/app/config"
	"github.com/leo900807/PCSHOI-Site/app/database"
	"github.com/leo900807/PCSHOI-Site/app/routes/articles"
	"github.com/leo900807/PCSHOI-Site/app/routes/auth"
	"github.com/leo900807/PCSHOI-Site/app/routes/pastexams"
	"github.com/leo900807/PCSHOI-Site/app/routes/registration"
	"github.com/leo900807/PCSHOI-Site/app/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

// errorHandler reports every unhandled error as JSON
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	message := err.Error()
	if code == fiber.StatusInternalServerError {
		// Never leak internals to the caller
		log.Printf("Internal error on %s %s: %v", c.Method(), c.Path(), err)
		message = "Internal Server Error"
	}

	return c.Status(code).JSON(fiber.Map{
		"success": false,
		"error":   message,
		"code":    code,
	})
}

func main() {
	// Initialize database
	config.InitDB()
	defer config.GetDB().Close()

	// Run database migrations
	if err := database.RunMigrations(config.GetDB()); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	// Make sure the contest metadata file exists before the first request
	config.LoadContestMetadata(config.MetadataFile())

	// Start background scheduler
	services.StartScheduler(config.GetDB())

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: errorHandler,
	})

	// Middleware
	app.Use(logger.New())
	app.Use(cors.New())

	// Setup auth and user routes
	auth.SetupAuthRoutes(app)

	// Setup contest registration routes
	registration.SetupRegistrationRoutes(app)

	// Setup articles routes
	articles.SetupArticlesRoutes(app)

	// Setup pastexams routes
	pastexams.SetupPastexamsRoutes(app)

	// Catch-all route for 404 errors (must be last)
	app.Use("*", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusNotFound, "Not Found")
	})

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Println("Server starting on :" + port)
	log.Fatal(app.Listen(":" + port))
}
