package services

import (
	"database/sql"
	"log"
	"time"

	"github.com/leo900807/PCSHOI-Site/app/database"
)

// StartScheduler starts the background task scheduler
func StartScheduler(db *sql.DB) {
	go func() {
		log.Println("Scheduler started...")
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()

		for range ticker.C {
			// Reset-password links are valid for one hour only
			purged, err := database.PurgeExpiredResetTokens(db, time.Now().Add(-time.Hour))
			if err != nil {
				log.Printf("Error purging expired reset tokens: %v", err)
			} else if purged > 0 {
				log.Printf("Purged %d expired reset tokens", purged)
			}
		}
	}()
}
