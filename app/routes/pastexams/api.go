package pastexams

import (
	"database/sql"
	"log"
	"strconv"
	"strings"

	"github.com/leo900807/PCSHOI-Site/app/config"
	"github.com/leo900807/PCSHOI-Site/app/database"
	"github.com/leo900807/PCSHOI-Site/app/models"
	"github.com/leo900807/PCSHOI-Site/app/routes/auth"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const pageLimit = 30

type PastexamForm struct {
	Title    string `json:"title" form:"title"`
	Content  string `json:"content" form:"content"`
	IsPinned bool   `json:"is_pinned" form:"is_pinned"`
	IsPublic bool   `json:"is_public" form:"is_public"`
}

func validatePastexamForm(form *PastexamForm) []string {
	var errs []string
	if strings.TrimSpace(form.Title) == "" {
		errs = append(errs, "Title is required")
	} else if len(form.Title) > 255 {
		errs = append(errs, "Title length is at most 255")
	}
	if len(form.Content) > 65535 {
		errs = append(errs, "Content length is at most 65535")
	}
	return errs
}

func IndexAPI(c *fiber.Ctx) error {
	user := auth.CurrentUser(c)
	publicOnly := user == nil || !user.Admin

	page := 1
	if pageQuery := c.Query("page"); pageQuery != "" {
		parsed, err := strconv.Atoi(pageQuery)
		if err != nil || parsed < 1 {
			return c.Status(404).JSON(fiber.Map{"error": "Not Found"})
		}
		page = parsed
	}

	count, err := database.CountPastexams(config.GetDB(), publicOnly)
	if err != nil {
		log.Printf("Failed to count pastexams: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch pastexams"})
	}
	pageCount := (count + pageLimit - 1) / pageLimit
	if page > pageCount && page != 1 {
		return c.Status(404).JSON(fiber.Map{"error": "Not Found"})
	}

	pinned, err := database.GetPinnedPastexams(config.GetDB(), publicOnly)
	if err != nil {
		log.Printf("Failed to fetch pinned pastexams: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch pastexams"})
	}
	pastexams, err := database.GetPastexamsPage(config.GetDB(), publicOnly, page)
	if err != nil {
		log.Printf("Failed to fetch pastexams: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch pastexams"})
	}

	return c.JSON(fiber.Map{
		"pinned_pastexams": pinned,
		"pastexams":        pastexams,
		"page":             page,
		"page_count":       pageCount,
	})
}

func ShowAPI(c *fiber.Ctx) error {
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "Not Found"})
	}

	pastexam, err := database.GetPastexamByID(config.GetDB(), id)
	if err == sql.ErrNoRows {
		return c.Status(404).JSON(fiber.Map{"error": "Not Found"})
	}
	if err != nil {
		log.Printf("Failed to fetch pastexam: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch pastexam"})
	}

	user := auth.CurrentUser(c)
	if !pastexam.IsPublic && (user == nil || !user.Admin) {
		return c.Status(404).JSON(fiber.Map{"error": "Not Found"})
	}

	return c.JSON(pastexam)
}

// CreateAPI accepts a multipart form so attachments can ride along with the
// pastexam fields.
func CreateAPI(c *fiber.Ctx) error {
	var form PastexamForm
	if err := c.BodyParser(&form); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request"})
	}
	if errs := validatePastexamForm(&form); len(errs) > 0 {
		return c.Status(422).JSON(fiber.Map{"errors": errs, "data": form})
	}

	pastexam := &models.Pastexam{
		Title:    form.Title,
		Content:  form.Content,
		AuthorID: auth.CurrentUser(c).ID,
		IsPinned: form.IsPinned,
		IsPublic: form.IsPublic,
	}
	if err := database.CreatePastexam(config.GetDB(), pastexam); err != nil {
		log.Printf("Failed to create pastexam: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "Failed to create pastexam"})
	}

	if err := saveAttachments(c, pastexam); err != nil {
		log.Printf("Failed to save attachments: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "Failed to save attachments"})
	}

	return c.Status(201).JSON(fiber.Map{"message": "Successfully created", "pastexam": pastexam})
}

func UpdateAPI(c *fiber.Ctx) error {
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "Not Found"})
	}

	var form PastexamForm
	if err := c.BodyParser(&form); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request"})
	}
	if errs := validatePastexamForm(&form); len(errs) > 0 {
		return c.Status(422).JSON(fiber.Map{"errors": errs, "data": form})
	}

	pastexam, err := database.GetPastexamByID(config.GetDB(), id)
	if err == sql.ErrNoRows {
		return c.Status(404).JSON(fiber.Map{"error": "Not Found"})
	}
	if err != nil {
		log.Printf("Failed to fetch pastexam: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch pastexam"})
	}

	pastexam.Title = form.Title
	pastexam.Content = form.Content
	pastexam.IsPinned = form.IsPinned
	pastexam.IsPublic = form.IsPublic
	pastexam.AuthorID = auth.CurrentUser(c).ID
	if err := database.UpdatePastexam(config.GetDB(), pastexam); err != nil {
		log.Printf("Failed to update pastexam: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "Failed to update pastexam"})
	}

	if err := saveAttachments(c, pastexam); err != nil {
		log.Printf("Failed to save attachments: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "Failed to save attachments"})
	}

	return c.JSON(fiber.Map{"message": "Successfully updated", "pastexam": pastexam})
}

func DestroyAPI(c *fiber.Ctx) error {
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "Not Found"})
	}

	attachments, err := database.GetAttachmentsByPastexam(config.GetDB(), id)
	if err != nil {
		log.Printf("Failed to fetch attachments: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "Failed to delete pastexam"})
	}

	err = database.DeletePastexam(config.GetDB(), id)
	if err == sql.ErrNoRows {
		return c.Status(422).JSON(fiber.Map{"error": "Nothing to be deleted"})
	}
	if err != nil {
		log.Printf("Failed to delete pastexam: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "Failed to delete pastexam"})
	}

	removeAttachmentFiles(attachments)

	return c.JSON(fiber.Map{"message": "Successfully deleted"})
}

func DownloadAttachmentAPI(c *fiber.Ctx) error {
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "Not Found"})
	}

	attachment, err := database.GetAttachmentByID(config.GetDB(), id)
	if err == sql.ErrNoRows {
		return c.Status(404).JSON(fiber.Map{"error": "Not Found"})
	}
	if err != nil {
		log.Printf("Failed to fetch attachment: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch attachment"})
	}

	pastexam, err := database.GetPastexamByID(config.GetDB(), attachment.PastexamID)
	if err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "Not Found"})
	}
	user := auth.CurrentUser(c)
	if !pastexam.IsPublic && (user == nil || !user.Admin) {
		return c.Status(404).JSON(fiber.Map{"error": "Not Found"})
	}

	return c.Download(attachmentPath(attachment.RealFilename), attachment.Filename)
}
