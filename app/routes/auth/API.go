package auth

import (
	"database/sql"
	"log"
	"net/mail"
	"regexp"
	"time"

	"github.com/leo900807/PCSHOI-Site/app/config"
	"github.com/leo900807/PCSHOI-Site/app/database"
	"github.com/leo900807/PCSHOI-Site/app/models"
	"github.com/leo900807/PCSHOI-Site/app/services"

	"github.com/gofiber/fiber/v2"
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

type SignupRequest struct {
	Username   string `json:"username"`
	Password   string `json:"password"`
	Repassword string `json:"repassword"`
	Nickname   string `json:"nickname"`
	Realname   string `json:"realname"`
	Email      string `json:"email"`
}

func validateSignup(req *SignupRequest) []string {
	var errs []string
	if len(req.Username) < 3 {
		errs = append(errs, "Length of username is at least 3")
	} else if len(req.Username) > 20 {
		errs = append(errs, "Length of username is at most 20")
	} else if !usernamePattern.MatchString(req.Username) {
		errs = append(errs, "Username can only contain alpha, number and underscores (_)")
	}
	errs = append(errs, validatePasswordPair(req.Password, req.Repassword, "password")...)
	if req.Nickname == "" {
		errs = append(errs, "Nickname is required")
	} else if len(req.Nickname) > 20 {
		errs = append(errs, "Length of nickname is at most 20")
	}
	if req.Realname == "" {
		errs = append(errs, "Realname is required")
	} else if len(req.Realname) > 20 {
		errs = append(errs, "Length of realname is at most 20")
	}
	if req.Email == "" {
		errs = append(errs, "Email is required")
	} else if len(req.Email) > 330 {
		errs = append(errs, "Length of email is at most 330")
	} else if _, err := mail.ParseAddress(req.Email); err != nil {
		errs = append(errs, "Format of email is wrong")
	}
	return errs
}

// validatePasswordPair applies the shared password rule: 6-50 characters, and
// the repeat field only has to match once the password itself is well-formed.
func validatePasswordPair(password, repassword, label string) []string {
	var errs []string
	if password == "" {
		errs = append(errs, capitalize(label)+" is required")
	} else {
		if len(password) < 6 {
			errs = append(errs, "Length of "+label+" is at least 6")
		}
		if len(password) > 50 {
			errs = append(errs, "Length of "+label+" is at most 50")
		}
	}
	if repassword == "" {
		errs = append(errs, "Repeat "+label+" is required")
	} else if len(password) >= 6 && len(password) <= 50 && repassword != password {
		errs = append(errs, capitalize(label)+" and repeat "+label+" are not matched")
	}
	return errs
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}

func SignupAPI(c *fiber.Ctx) error {
	var req SignupRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request"})
	}

	if errs := validateSignup(&req); len(errs) > 0 {
		return c.Status(422).JSON(fiber.Map{"errors": errs, "data": req})
	}

	count, err := database.CountUsersByUsernameOrEmail(config.GetDB(), req.Username, req.Email, "")
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Database error"})
	}
	if count > 0 {
		return c.Status(422).JSON(fiber.Map{"errors": []string{"Username or email is already used"}, "data": req})
	}

	hashedPassword, err := HashPassword(req.Password)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to hash password"})
	}

	user := &models.User{
		Username:          req.Username,
		EncryptedPassword: hashedPassword,
		Nickname:          req.Nickname,
		Realname:          req.Realname,
		Email:             req.Email,
	}
	if err := database.CreateUser(config.GetDB(), user); err != nil {
		log.Printf("Failed to create user: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "Failed to create user"})
	}

	token, err := GenerateJWT(user.ID, user.Username, user.Nickname, user.Realname, user.Email, user.Admin)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to generate token"})
	}
	setJWTCookie(c, token)

	return c.Status(201).JSON(fiber.Map{"message": "Successfully registered a new user", "user": user})
}

func LoginAPI(c *fiber.Ctx) error {
	type LoginRequest struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request"})
	}
	if req.Username == "" || req.Password == "" {
		return c.Status(400).JSON(fiber.Map{"error": "Username and password are both required"})
	}

	user, err := database.GetUserByUsername(config.GetDB(), req.Username)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.Status(401).JSON(fiber.Map{"error": "Invalid credentials"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "Database error"})
	}

	if !CheckPasswordHash(req.Password, user.EncryptedPassword) {
		return c.Status(401).JSON(fiber.Map{"error": "Invalid credentials"})
	}

	if err := database.TouchLastLogin(config.GetDB(), user.ID); err != nil {
		log.Printf("Failed to update last login time: %v", err)
	}

	token, err := GenerateJWT(user.ID, user.Username, user.Nickname, user.Realname, user.Email, user.Admin)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to generate token"})
	}
	setJWTCookie(c, token)

	return c.JSON(fiber.Map{"message": "Successfully logged in", "user": user})
}

func LogoutAPI(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     "jwt_token",
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
	})

	return c.JSON(fiber.Map{"message": "Successfully logged out"})
}

func ProfileAPI(c *fiber.Ctx) error {
	user, err := database.GetUserByID(config.GetDB(), CurrentUser(c).ID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Database error"})
	}
	return c.JSON(user)
}

func UpdateProfileAPI(c *fiber.Ctx) error {
	type UpdateRequest struct {
		Nickname string `json:"nickname"`
		Email    string `json:"email"`
	}

	var req UpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request"})
	}

	var errs []string
	if req.Nickname == "" {
		errs = append(errs, "Nickname is required")
	} else if len(req.Nickname) > 20 {
		errs = append(errs, "Length of nickname is at most 20")
	}
	if req.Email == "" {
		errs = append(errs, "Email is required")
	} else if _, err := mail.ParseAddress(req.Email); err != nil {
		errs = append(errs, "Format of email is wrong")
	}
	if len(errs) > 0 {
		return c.Status(422).JSON(fiber.Map{"errors": errs, "data": req})
	}

	user := CurrentUser(c)
	count, err := database.CountUsersByUsernameOrEmail(config.GetDB(), user.Username, req.Email, user.ID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Database error"})
	}
	if count > 0 {
		return c.Status(422).JSON(fiber.Map{"errors": []string{"Email is already used"}, "data": req})
	}

	if err := database.UpdateUserProfile(config.GetDB(), user.ID, req.Nickname, req.Email); err != nil {
		log.Printf("Failed to update user profile: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "Failed to update user"})
	}

	return c.JSON(fiber.Map{"message": "User data was successfully updated"})
}

func ChangePasswordAPI(c *fiber.Ctx) error {
	type ChangePasswordRequest struct {
		OldPassword   string `json:"old_password"`
		NewPassword   string `json:"new_password"`
		RenewPassword string `json:"renew_password"`
	}

	var req ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request"})
	}

	if errs := validatePasswordPair(req.NewPassword, req.RenewPassword, "new password"); len(errs) > 0 {
		return c.Status(422).JSON(fiber.Map{"errors": errs})
	}

	user, err := database.GetUserByID(config.GetDB(), CurrentUser(c).ID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Database error"})
	}

	if !CheckPasswordHash(req.OldPassword, user.EncryptedPassword) {
		return c.Status(422).JSON(fiber.Map{"errors": []string{"Old password is incorrect"}})
	}

	hashedPassword, err := HashPassword(req.NewPassword)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to hash password"})
	}

	if err := database.UpdateUserPassword(config.GetDB(), user.ID, hashedPassword); err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to update password"})
	}

	return c.JSON(fiber.Map{"message": "Password was successfully updated"})
}

func ForgotPasswordAPI(c *fiber.Ctx) error {
	type ForgotPasswordRequest struct {
		Username string `json:"username"`
		Email    string `json:"email"`
	}

	var req ForgotPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request"})
	}

	user, err := database.GetUserByUsername(config.GetDB(), req.Username)
	if err != nil || user.Email != req.Email {
		return c.Status(422).JSON(fiber.Map{"error": "No such user or the email is not matched"})
	}

	token := GenerateResetToken()
	if err := database.SetResetPasswordToken(config.GetDB(), user.ID, token); err != nil {
		log.Printf("Failed to set reset password token: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "Failed to issue reset token"})
	}

	go services.SendMail(config.AppConfig.SMTP, user.Email, "Reset password for PCSHOI Site",
		services.ResetPasswordMail(user, token))

	return c.JSON(fiber.Map{"message": "Reset password mail is sent"})
}

func ResetPasswordAPI(c *fiber.Ctx) error {
	type ResetPasswordRequest struct {
		Token         string `json:"token"`
		NewPassword   string `json:"new_password"`
		RenewPassword string `json:"renew_password"`
	}

	var req ResetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request"})
	}

	if errs := validatePasswordPair(req.NewPassword, req.RenewPassword, "new password"); len(errs) > 0 {
		return c.Status(422).JSON(fiber.Map{"errors": errs})
	}

	user, sentAt, err := database.GetUserByResetToken(config.GetDB(), req.Token)
	if err != nil || time.Since(sentAt) > time.Hour {
		return c.Status(404).JSON(fiber.Map{"error": "Not Found"})
	}

	hashedPassword, err := HashPassword(req.NewPassword)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to hash password"})
	}

	if err := database.UpdateUserPassword(config.GetDB(), user.ID, hashedPassword); err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to update password"})
	}
	if err := database.ClearResetPasswordToken(config.GetDB(), user.ID); err != nil {
		log.Printf("Failed to clear reset password token: %v", err)
	}

	return c.JSON(fiber.Map{"message": "Password was successfully updated"})
}

func setJWTCookie(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     "jwt_token",
		Value:    token,
		Expires:  time.Now().Add(24 * time.Hour),
		HTTPOnly: true,
		Secure:   false, // Set to true in production with HTTPS
		SameSite: "Lax",
	})
}
