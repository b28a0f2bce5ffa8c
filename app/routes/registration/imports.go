package registration

import (
	"encoding/csv"
	"errors"
	"io"
	"log"
	"math"
	"mime/multipart"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/leo900807/PCSHOI-Site/app/config"
	"github.com/leo900807/PCSHOI-Site/app/database"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// ErrBadImportFormat aborts the whole import; no row is applied when any row
// fails shape validation.
var ErrBadImportFormat = errors.New("format of the file is wrong")

// naSentinel marks an absent score or rank in the uploaded file.
const naSentinel = "N/A"

// ScoreRow is one parsed and translated line of a bulk score upload.
type ScoreRow struct {
	RegisterYear int
	StudentID    string
	Score        *float64
	Rank         *int
}

// ImportAPI overlays score and rank onto existing registrations from an
// uploaded CSV. Rows without a matching registration are silently skipped;
// any malformed row aborts the entire batch before a single write.
func ImportAPI(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "No file uploaded"})
	}
	if !isCSVUpload(fileHeader) {
		return c.Status(422).JSON(fiber.Map{"error": "File must be a CSV"})
	}

	tmpPath := filepath.Join(os.TempDir(), "score-import-"+uuid.NewString()+".csv")
	if err := c.SaveFile(fileHeader, tmpPath); err != nil {
		log.Printf("Failed to save uploaded file: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "Failed to save uploaded file"})
	}
	defer func() {
		// Best-effort cleanup; a leftover temp file is not the caller's problem.
		if err := os.Remove(tmpPath); err != nil {
			log.Printf("Failed to remove temporary file %s: %v", tmpPath, err)
		}
	}()

	file, err := os.Open(tmpPath)
	if err != nil {
		log.Printf("Failed to open uploaded file: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "Failed to read uploaded file"})
	}
	defer file.Close()

	rows, err := ParseScoreCSV(file)
	if err != nil {
		if errors.Is(err, ErrBadImportFormat) {
			return c.Status(422).JSON(fiber.Map{"error": "Format of the file is wrong"})
		}
		log.Printf("Failed to parse uploaded file: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "Failed to read uploaded file"})
	}

	updated, err := applyScoreRows(rows)
	if err != nil {
		log.Printf("Failed to apply score import: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "Failed to apply score import"})
	}

	return c.JSON(fiber.Map{"message": "Successfully imported", "updated": updated})
}

func isCSVUpload(fileHeader *multipart.FileHeader) bool {
	if strings.EqualFold(filepath.Ext(fileHeader.Filename), ".csv") {
		return true
	}
	contentType := fileHeader.Header.Get("Content-Type")
	switch {
	case strings.Contains(contentType, "csv"),
		contentType == "application/vnd.ms-excel",
		contentType == "text/plain":
		return true
	}
	return false
}

// ParseScoreCSV reads the whole upload into translated rows. Columns are
// registerYear, studentId, score, rank; a leading header row is tolerated.
// Validation is all-or-nothing over the batch.
func ParseScoreCSV(r io.Reader) ([]ScoreRow, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, ErrBadImportFormat
	}

	var rows []ScoreRow
	for i, record := range records {
		if i == 0 && isHeaderRow(record) {
			continue
		}
		if len(record) != 4 {
			return nil, ErrBadImportFormat
		}

		row, err := translateScoreRecord(record)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func isHeaderRow(record []string) bool {
	return len(record) > 0 && strings.EqualFold(strings.TrimSpace(record[0]), "registerYear")
}

// translateScoreRecord shape-checks one raw record and maps the N/A sentinel
// to absent values. Score keeps two decimal places; rank must be a positive
// integer.
func translateScoreRecord(record []string) (ScoreRow, error) {
	yearText := strings.TrimSpace(record[0])
	studentID := strings.TrimSpace(record[1])
	scoreText := strings.TrimSpace(record[2])
	rankText := strings.TrimSpace(record[3])

	year, err := strconv.Atoi(yearText)
	if err != nil || year <= 0 {
		return ScoreRow{}, ErrBadImportFormat
	}
	if studentID == "" {
		return ScoreRow{}, ErrBadImportFormat
	}

	row := ScoreRow{RegisterYear: year, StudentID: studentID}

	if scoreText != naSentinel {
		score, err := strconv.ParseFloat(scoreText, 64)
		if err != nil {
			return ScoreRow{}, ErrBadImportFormat
		}
		score = math.Round(score*100) / 100
		row.Score = &score
	}

	if rankText != naSentinel {
		rank, err := strconv.Atoi(rankText)
		if err != nil || rank <= 0 {
			return ScoreRow{}, ErrBadImportFormat
		}
		row.Rank = &rank
	}

	return row, nil
}

// applyScoreRows reconciles the batch against the ledger by (year, studentId)
// and applies every matched update in one transaction.
func applyScoreRows(rows []ScoreRow) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	years := make([]int, len(rows))
	studentIDs := make([]string, len(rows))
	for i, row := range rows {
		years[i] = row.RegisterYear
		studentIDs[i] = row.StudentID
	}

	existing, err := database.GetRegistrationsByYearStudentPairs(config.GetDB(), years, studentIDs)
	if err != nil {
		return 0, err
	}

	byKey := make(map[string]string, len(existing))
	for _, registration := range existing {
		byKey[database.RegistrationKey(registration.RegisterYear, registration.StudentID)] = registration.ID
	}

	var updates []database.ScoreUpdate
	for _, row := range rows {
		id, ok := byKey[database.RegistrationKey(row.RegisterYear, row.StudentID)]
		if !ok {
			continue
		}
		updates = append(updates, database.ScoreUpdate{
			RegistrationID: id,
			Score:          row.Score,
			Rank:           row.Rank,
		})
	}

	if err := database.BatchUpdateRegistrationScores(config.GetDB(), updates); err != nil {
		return 0, err
	}
	return len(updates), nil
}
