package registration

import (
	"database/sql"
	"log"
	"time"

	"github.com/leo900807/PCSHOI-Site/app/config"
	"github.com/leo900807/PCSHOI-Site/app/database"
	"github.com/leo900807/PCSHOI-Site/app/models"
	"github.com/leo900807/PCSHOI-Site/app/routes/auth"
	"github.com/leo900807/PCSHOI-Site/app/services"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// IndexAPI lists registrations. A regular member sees their own history across
// all years; an administrator sees the full listing of one contest year joined
// with each registrant's identity.
func IndexAPI(c *fiber.Ctx) error {
	user := auth.CurrentUser(c)

	if !user.Admin {
		registrations, err := database.GetRegistrationsByUser(config.GetDB(), user.ID)
		if err != nil {
			log.Printf("Failed to fetch registrations: %v", err)
			return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch registrations"})
		}
		return c.JSON(fiber.Map{"registrations": registrations})
	}

	metadata := config.LoadContestMetadata(config.MetadataFile())
	year, ok := resolveYear(c.Query("year"), metadata)
	if !ok {
		return c.Status(404).JSON(fiber.Map{"error": "Not Found"})
	}

	registrations, err := database.GetRegistrationsByYear(config.GetDB(), year)
	if err != nil {
		log.Printf("Failed to fetch registrations: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch registrations"})
	}
	return c.JSON(fiber.Map{"registrations": registrations, "year": year})
}

// StatusAPI reports the caller's current-year registration and whether the
// window is open.
func StatusAPI(c *fiber.Ctx) error {
	user := auth.CurrentUser(c)
	metadata := config.LoadContestMetadata(config.MetadataFile())

	response := fiber.Map{
		"year_of_contest":       metadata.YearOfContest,
		"is_registration_phase": IsDuringRegistration(metadata, time.Now()),
	}

	registration, err := database.GetRegistrationByUserAndYear(config.GetDB(), user.ID, metadata.YearOfContest)
	if err == nil {
		response["registration"] = registration
	} else if err != sql.ErrNoRows {
		log.Printf("Failed to fetch registration: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch registration"})
	}

	return c.JSON(response)
}

// CreateAPI signs the caller up for the current contest year.
func CreateAPI(c *fiber.Ctx) error {
	user := auth.CurrentUser(c)
	metadata := config.LoadContestMetadata(config.MetadataFile())

	_, err := database.GetRegistrationByUserAndYear(config.GetDB(), user.ID, metadata.YearOfContest)
	if err == nil {
		return c.Status(422).JSON(fiber.Map{"error": "You've already registered for contest this year"})
	}
	if err != sql.ErrNoRows {
		log.Printf("Failed to check past registration: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "Failed to check past registration"})
	}

	if !IsDuringRegistration(metadata, time.Now()) {
		return c.Status(422).JSON(fiber.Map{"error": "It's not registration phase"})
	}

	var form RegistrationForm
	if err := c.BodyParser(&form); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request"})
	}
	if errs := ValidateRegistrationForm(&form); len(errs) > 0 {
		// Echo the submitted data back so the form can be re-rendered as-is.
		return c.Status(422).JSON(fiber.Map{"errors": errs, "data": form})
	}

	hashedPassword, err := auth.HashPassword(form.Password)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to hash password"})
	}

	registration := &models.Registration{
		RegistrantID:      user.ID,
		StudentID:         form.StudentID,
		ClassSeat:         form.ClassSeat,
		EncryptedPassword: hashedPassword,
		VerificationCode:  NewVerificationCode(),
		RegisterYear:      metadata.YearOfContest,
	}
	if err := database.CreateRegistration(config.GetDB(), registration); err != nil {
		if err == database.ErrDuplicateRegistration {
			return c.Status(422).JSON(fiber.Map{"error": "You've already registered for contest this year"})
		}
		log.Printf("Failed to create registration: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "Failed to create registration"})
	}

	go services.SendMail(config.AppConfig.SMTP, user.Email, "Successfully registered for the contest",
		services.RegistrationMail(user, registration))

	return c.Status(201).JSON(fiber.Map{
		"message":      "Successfully registered for contest. A mail is sent to your email address, please check your mailbox",
		"registration": registration,
	})
}

// UpdateAPI changes the practice-session password of the caller's current-year
// registration. Nothing else is touched; the verification code in particular
// stays as issued.
func UpdateAPI(c *fiber.Ctx) error {
	user := auth.CurrentUser(c)
	metadata := config.LoadContestMetadata(config.MetadataFile())

	if !IsDuringRegistration(metadata, time.Now()) {
		return c.Status(422).JSON(fiber.Map{"error": "It's not registration phase"})
	}

	var form RegistrationEditForm
	if err := c.BodyParser(&form); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request"})
	}
	if errs := ValidateEditForm(&form); len(errs) > 0 {
		return c.Status(422).JSON(fiber.Map{"errors": errs})
	}

	registration, err := database.GetRegistrationByUserAndYear(config.GetDB(), user.ID, metadata.YearOfContest)
	if err == sql.ErrNoRows {
		return c.Status(422).JSON(fiber.Map{"error": "You haven't registered yet. You can only edit infos after registered"})
	}
	if err != nil {
		log.Printf("Failed to fetch registration: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch registration"})
	}

	hashedPassword, err := auth.HashPassword(form.NewPassword)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to hash password"})
	}
	if err := database.UpdateRegistrationPassword(config.GetDB(), registration.ID, hashedPassword); err != nil {
		log.Printf("Failed to update registration: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "Failed to update registration"})
	}

	return c.JSON(fiber.Map{"message": "Successfully updated"})
}

// DestroyAPI deletes a registration. The administrator must supply the exact
// verification code issued at creation; a mismatch is a distinct error from a
// missing registration.
func DestroyAPI(c *fiber.Ctx) error {
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "Not Found"})
	}

	type DestroyRequest struct {
		VerificationCode string `json:"verificationcode" form:"verificationcode"`
	}
	var req DestroyRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request"})
	}

	registration, err := database.GetRegistrationByID(config.GetDB(), id)
	if err == sql.ErrNoRows {
		return c.Status(404).JSON(fiber.Map{"error": "No such registration"})
	}
	if err != nil {
		log.Printf("Failed to fetch registration: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch registration"})
	}

	if req.VerificationCode != registration.VerificationCode {
		return c.Status(422).JSON(fiber.Map{"error": "Verification Code Error"})
	}

	if err := database.DeleteRegistration(config.GetDB(), registration.ID); err != nil {
		log.Printf("Failed to delete registration: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "Failed to delete registration"})
	}

	return c.JSON(fiber.Map{"message": "Successfully deleted"})
}

// SettingsAPI returns the current contest metadata.
func SettingsAPI(c *fiber.Ctx) error {
	metadata := config.LoadContestMetadata(config.MetadataFile())
	return c.JSON(metadata)
}

// UpdateSettingsAPI replaces the whole metadata record.
func UpdateSettingsAPI(c *fiber.Ctx) error {
	var form RegistrationSettingsForm
	if err := c.BodyParser(&form); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request"})
	}
	if errs := ValidateSettingsForm(&form); len(errs) > 0 {
		return c.Status(422).JSON(fiber.Map{"errors": errs, "data": form})
	}

	year, _ := parseYear(form.YearOfContest)
	registerStart, _ := ParseInstant(form.RegisterStart)
	registerEnd, _ := ParseInstant(form.RegisterEnd)

	metadata := config.ContestMetadata{
		YearOfContest: year,
		RegisterStart: registerStart,
		RegisterEnd:   registerEnd,
	}
	if err := config.SaveContestMetadata(config.MetadataFile(), metadata); err != nil {
		log.Printf("Failed to save contest metadata: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "Failed to save settings"})
	}

	return c.JSON(fiber.Map{"message": "Successfully updated", "metadata": metadata})
}
