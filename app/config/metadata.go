package config

import (
	"bytes"
	"encoding/json"
	"log"
	"os"
	"sync"
	"time"

	"github.com/natefinch/atomic"
)

// ContestMetadata is the single registration-window record for the whole site.
// It is persisted as one JSON document and always read/written as a whole.
type ContestMetadata struct {
	YearOfContest int       `json:"yearOfContest"`
	RegisterStart time.Time `json:"registerStart"`
	RegisterEnd   time.Time `json:"registerEnd"`
}

var metadataMu sync.Mutex

// DefaultContestMetadata is written on first access. The placeholder year -1
// never matches a real registration year.
func DefaultContestMetadata() ContestMetadata {
	placeholder := time.Date(2000, time.December, 31, 8, 0, 0, 0, time.UTC)
	return ContestMetadata{
		YearOfContest: -1,
		RegisterStart: placeholder,
		RegisterEnd:   placeholder,
	}
}

// MetadataFile resolves the metadata file location.
func MetadataFile() string {
	return getenv("REGISTRATION_METADATA_FILE", "registration-metadata.json")
}

// LoadContestMetadata reads the metadata document, creating it with defaults
// when missing. A corrupt or unreadable file falls back to the defaults so a
// broken document can never lock administrators out of the settings page.
func LoadContestMetadata(path string) ContestMetadata {
	metadataMu.Lock()
	defer metadataMu.Unlock()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		metadata := DefaultContestMetadata()
		if err := writeMetadata(path, metadata); err != nil {
			log.Printf("Failed to initialize contest metadata file: %v", err)
		}
		return metadata
	}
	if err != nil {
		log.Printf("Failed to read contest metadata: %v", err)
		return DefaultContestMetadata()
	}

	var metadata ContestMetadata
	if err := json.Unmarshal(data, &metadata); err != nil {
		log.Printf("Failed to parse contest metadata: %v", err)
		return DefaultContestMetadata()
	}
	return metadata
}

// SaveContestMetadata replaces the whole metadata document atomically.
func SaveContestMetadata(path string, metadata ContestMetadata) error {
	metadataMu.Lock()
	defer metadataMu.Unlock()
	return writeMetadata(path, metadata)
}

func writeMetadata(path string, metadata ContestMetadata) error {
	data, err := json.Marshal(metadata)
	if err != nil {
		return err
	}
	return atomic.WriteFile(path, bytes.NewReader(data))
}
