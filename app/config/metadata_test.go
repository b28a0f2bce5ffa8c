package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadContestMetadataCreatesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metadata.json")

	metadata := LoadContestMetadata(path)
	if metadata.YearOfContest != -1 {
		t.Errorf("default year = %d, want -1", metadata.YearOfContest)
	}

	if _, err := os.Stat(path); err != nil {
		t.Errorf("first load should create the metadata file: %v", err)
	}

	again := LoadContestMetadata(path)
	if again != metadata {
		t.Errorf("second load = %+v, want %+v", again, metadata)
	}
}

func TestSaveAndLoadContestMetadata(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metadata.json")

	want := ContestMetadata{
		YearOfContest: 2024,
		RegisterStart: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		RegisterEnd:   time.Date(2024, 1, 31, 23, 59, 59, 0, time.UTC),
	}
	if err := SaveContestMetadata(path, want); err != nil {
		t.Fatalf("SaveContestMetadata failed: %v", err)
	}

	got := LoadContestMetadata(path)
	if !got.RegisterStart.Equal(want.RegisterStart) || !got.RegisterEnd.Equal(want.RegisterEnd) || got.YearOfContest != want.YearOfContest {
		t.Errorf("round trip = %+v, want %+v", got, want)
	}
}

func TestLoadContestMetadataCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metadata.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	metadata := LoadContestMetadata(path)
	if metadata.YearOfContest != -1 {
		t.Errorf("corrupt file should fall back to defaults, got year %d", metadata.YearOfContest)
	}
}
