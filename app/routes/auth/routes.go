package auth

import (
	"strings"

	"github.com/leo900807/PCSHOI-Site/app/models"

	"github.com/gofiber/fiber/v2"
)

func SetupAuthRoutes(app *fiber.App) {
	authGroup := app.Group("/api/auth")

	// Public routes
	authGroup.Post("/login", LoginAPI)
	authGroup.Post("/logout", LogoutAPI)
	authGroup.Post("/forgot-password", ForgotPasswordAPI)
	authGroup.Patch("/reset-password", ResetPasswordAPI)

	users := app.Group("/api/users")
	users.Post("/", SignupAPI)

	// Protected routes
	users.Use(AuthMiddleware)
	users.Get("/me", ProfileAPI)
	users.Patch("/me", UpdateProfileAPI)
	users.Post("/change-password", ChangePasswordAPI)
}

// AuthMiddleware validates the JWT and sets user context
func AuthMiddleware(c *fiber.Ctx) error {
	var tokenString string

	// First try cookie
	tokenString = c.Cookies("jwt_token")

	// If no cookie, try Authorization header
	if tokenString == "" {
		header := c.Get("Authorization")
		if strings.HasPrefix(header, "Bearer ") {
			tokenString = strings.TrimPrefix(header, "Bearer ")
		}
	}

	if tokenString == "" {
		return c.Status(401).JSON(fiber.Map{"error": "Please login before operation"})
	}

	claims, err := ValidateJWT(tokenString)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "Invalid token"})
	}

	user := &models.User{
		ID:       claims.UserID,
		Username: claims.Username,
		Nickname: claims.Nickname,
		Realname: claims.Realname,
		Email:    claims.Email,
		Admin:    claims.Admin,
	}

	c.Locals("user_id", user.ID)
	c.Locals("user", user)

	return c.Next()
}

// AdminMiddleware gates the administrative back-office operations.
func AdminMiddleware(c *fiber.Ctx) error {
	user, ok := c.Locals("user").(*models.User)
	if !ok || !user.Admin {
		return c.Status(403).JSON(fiber.Map{"error": "Insufficient permissions"})
	}
	return c.Next()
}

// OptionalAuthMiddleware sets user context when a valid token is present but
// never rejects the request. Public listings use it to widen admin views.
func OptionalAuthMiddleware(c *fiber.Ctx) error {
	tokenString := c.Cookies("jwt_token")
	if tokenString == "" {
		header := c.Get("Authorization")
		if strings.HasPrefix(header, "Bearer ") {
			tokenString = strings.TrimPrefix(header, "Bearer ")
		}
	}
	if tokenString == "" {
		return c.Next()
	}

	claims, err := ValidateJWT(tokenString)
	if err != nil {
		return c.Next()
	}

	user := &models.User{
		ID:       claims.UserID,
		Username: claims.Username,
		Nickname: claims.Nickname,
		Realname: claims.Realname,
		Email:    claims.Email,
		Admin:    claims.Admin,
	}
	c.Locals("user_id", user.ID)
	c.Locals("user", user)

	return c.Next()
}

// CurrentUser returns the authenticated user from locals, or nil.
func CurrentUser(c *fiber.Ctx) *models.User {
	user, ok := c.Locals("user").(*models.User)
	if !ok {
		return nil
	}
	return user
}
