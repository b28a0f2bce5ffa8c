package registration

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/leo900807/PCSHOI-Site/app/models"
)

func sampleRegistrations() []*models.Registration {
	score := 87.5
	rank := 3
	createdAt := time.Date(2024, 1, 10, 4, 30, 0, 0, time.UTC)

	return []*models.Registration{
		{
			ID:                "6f1d5f91-0000-0000-0000-000000000001",
			StudentID:         "123456",
			ClassSeat:         "10203",
			EncryptedPassword: "$2a$10$abcdefghijklmnopqrstuv",
			VerificationCode:  "007321",
			RegisterYear:      2024,
			Score:             &score,
			Rank:              &rank,
			CreatedAt:         createdAt,
			UpdatedAt:         createdAt,
			Registrant:        &models.User{Realname: "Alice Chen", Email: "alice@example.com"},
		},
		{
			ID:                "6f1d5f91-0000-0000-0000-000000000002",
			StudentID:         "654321",
			ClassSeat:         "20115",
			EncryptedPassword: "$2a$10$vutsrqponmlkjihgfedcba",
			VerificationCode:  "000042",
			RegisterYear:      2024,
			CreatedAt:         createdAt,
			UpdatedAt:         createdAt,
		},
	}
}

func TestBuildExportCSV(t *testing.T) {
	payload, err := BuildExportCSV(sampleRegistrations())
	if err != nil {
		t.Fatalf("BuildExportCSV failed: %v", err)
	}

	records, err := csv.NewReader(bytes.NewReader(payload)).ReadAll()
	if err != nil {
		t.Fatalf("export is not valid CSV: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d records, want header plus 2 rows", len(records))
	}

	if got := strings.Join(records[0], ","); got != strings.Join(exportHeader, ",") {
		t.Errorf("header = %q, want %q", got, strings.Join(exportHeader, ","))
	}

	first := records[1]
	if first[0] != "123456" || first[1] != "10203" {
		t.Errorf("first row identity = %v, want studentId 123456 classSeat 10203", first[:2])
	}
	if first[5] != "87.50" {
		t.Errorf("score column = %q, want 87.50", first[5])
	}
	if first[6] != "3" {
		t.Errorf("rank column = %q, want 3", first[6])
	}
	// Timestamps are shifted to display time, eight hours ahead of UTC.
	if first[7] != "2024-01-10 12:30:00" {
		t.Errorf("createdAt column = %q, want 2024-01-10 12:30:00", first[7])
	}
	if first[9] != "Alice Chen" || first[10] != "alice@example.com" {
		t.Errorf("registrant columns = %v, want Alice Chen / alice@example.com", first[9:])
	}

	second := records[2]
	if second[5] != "N/A" || second[6] != "N/A" {
		t.Errorf("absent score and rank should export as N/A, got %q and %q", second[5], second[6])
	}
	if second[9] != "" || second[10] != "" {
		t.Errorf("missing registrant should export blank identity, got %v", second[9:])
	}
}

// An exported file's year, studentId, score and rank columns feed straight
// back into the importer.
func TestExportImportRoundTrip(t *testing.T) {
	registrations := sampleRegistrations()
	payload, err := BuildExportCSV(registrations)
	if err != nil {
		t.Fatalf("BuildExportCSV failed: %v", err)
	}

	records, err := csv.NewReader(bytes.NewReader(payload)).ReadAll()
	if err != nil {
		t.Fatalf("export is not valid CSV: %v", err)
	}

	var importBuf bytes.Buffer
	writer := csv.NewWriter(&importBuf)
	for _, record := range records[1:] {
		if err := writer.Write([]string{record[4], record[0], record[5], record[6]}); err != nil {
			t.Fatalf("failed to build import file: %v", err)
		}
	}
	writer.Flush()

	rows, err := ParseScoreCSV(&importBuf)
	if err != nil {
		t.Fatalf("re-importing an export failed: %v", err)
	}
	if len(rows) != len(registrations) {
		t.Fatalf("got %d rows, want %d", len(rows), len(registrations))
	}

	for i, registration := range registrations {
		row := rows[i]
		if row.RegisterYear != registration.RegisterYear || row.StudentID != registration.StudentID {
			t.Errorf("row %d key = (%d, %s), want (%d, %s)",
				i, row.RegisterYear, row.StudentID, registration.RegisterYear, registration.StudentID)
		}
		switch {
		case registration.Score == nil:
			if row.Score != nil {
				t.Errorf("row %d score = %v, want absent", i, *row.Score)
			}
		case row.Score == nil || *row.Score != *registration.Score:
			t.Errorf("row %d score = %v, want %v", i, row.Score, *registration.Score)
		}
		switch {
		case registration.Rank == nil:
			if row.Rank != nil {
				t.Errorf("row %d rank = %v, want absent", i, *row.Rank)
			}
		case row.Rank == nil || *row.Rank != *registration.Rank:
			t.Errorf("row %d rank = %v, want %v", i, row.Rank, *registration.Rank)
		}
	}
}

func TestAdjustTimeString(t *testing.T) {
	instant := time.Date(2024, 12, 31, 20, 0, 0, 0, time.UTC)
	if got := adjustTimeString(instant); got != "2025-01-01 04:00:00" {
		t.Errorf("adjustTimeString = %q, want 2025-01-01 04:00:00", got)
	}
}
