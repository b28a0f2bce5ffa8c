package pastexams

import (
	"log"
	"os"
	"path/filepath"

	"github.com/leo900807/PCSHOI-Site/app/config"
	"github.com/leo900807/PCSHOI-Site/app/database"
	"github.com/leo900807/PCSHOI-Site/app/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func attachmentDir() string {
	if dir := os.Getenv("ATTACHMENT_DIR"); dir != "" {
		return dir
	}
	return "attachments"
}

func attachmentPath(realFilename string) string {
	return filepath.Join(attachmentDir(), realFilename)
}

// saveAttachments stores every uploaded file under a random on-disk name and
// records the original filename alongside it.
func saveAttachments(c *fiber.Ctx, pastexam *models.Pastexam) error {
	multipartForm, err := c.MultipartForm()
	if err != nil || multipartForm == nil {
		// Not a multipart request; nothing to attach.
		return nil
	}
	files := multipartForm.File["attachments"]
	if len(files) == 0 {
		return nil
	}

	if err := os.MkdirAll(attachmentDir(), 0o755); err != nil {
		return err
	}

	for i, fileHeader := range files {
		realFilename := uuid.NewString() + filepath.Ext(fileHeader.Filename)
		if err := c.SaveFile(fileHeader, attachmentPath(realFilename)); err != nil {
			return err
		}

		attachment := &models.Attachment{
			PastexamID:   pastexam.ID,
			Filename:     fileHeader.Filename,
			RealFilename: realFilename,
			Position:     i,
		}
		if err := database.CreateAttachment(config.GetDB(), attachment); err != nil {
			removeFile(realFilename)
			return err
		}
		pastexam.Attachments = append(pastexam.Attachments, attachment)
	}
	return nil
}

func removeAttachmentFiles(attachments []*models.Attachment) {
	for _, attachment := range attachments {
		removeFile(attachment.RealFilename)
	}
}

func removeFile(realFilename string) {
	if err := os.Remove(attachmentPath(realFilename)); err != nil {
		log.Printf("Failed to remove attachment file %s: %v", realFilename, err)
	}
}
