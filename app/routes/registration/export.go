package registration

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"log"
	"strconv"

	"github.com/leo900807/PCSHOI-Site/app/config"
	"github.com/leo900807/PCSHOI-Site/app/database"
	"github.com/leo900807/PCSHOI-Site/app/models"

	"github.com/gofiber/fiber/v2"
)

var exportHeader = []string{
	"studentId", "classSeat", "encryptedPassword", "verificationCode",
	"registerYear", "score", "rank", "createdAt", "updatedAt", "registrant", "email",
}

// ExportAPI downloads the full registration list of one contest year as CSV.
func ExportAPI(c *fiber.Ctx) error {
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

	payload, err := BuildExportCSV(registrations)
	if err != nil {
		log.Printf("Failed to build CSV: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "Failed to build CSV"})
	}

	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="Registration list of %d year.csv"`, year))
	c.Set(fiber.HeaderContentType, "text/plain")
	return c.Send(payload)
}

// BuildExportCSV serializes ledger rows with their registrant identity. Absent
// score and rank come out as N/A so an exported file can be fed back to the
// importer unchanged; timestamps carry the +8h display offset.
func BuildExportCSV(registrations []*models.Registration) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(exportHeader); err != nil {
		return nil, err
	}

	for _, registration := range registrations {
		score := naSentinel
		if registration.Score != nil {
			score = strconv.FormatFloat(*registration.Score, 'f', 2, 64)
		}
		rank := naSentinel
		if registration.Rank != nil {
			rank = strconv.Itoa(*registration.Rank)
		}
		realname, email := "", ""
		if registration.Registrant != nil {
			realname = registration.Registrant.Realname
			email = registration.Registrant.Email
		}

		record := []string{
			registration.StudentID,
			registration.ClassSeat,
			registration.EncryptedPassword,
			registration.VerificationCode,
			strconv.Itoa(registration.RegisterYear),
			score,
			rank,
			adjustTimeString(registration.CreatedAt),
			adjustTimeString(registration.UpdatedAt),
			realname,
			email,
		}
		if err := writer.Write(record); err != nil {
			return nil, err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
