package database

import (
	"database/sql"
	"log"
)

// RunMigrations checks and applies necessary schema updates
func RunMigrations(db *sql.DB) error {
	log.Println("Running database migrations...")

	// 1. Base tables
	if err := createUsersTable(db); err != nil {
		return err
	}
	if err := createRegistrationsTable(db); err != nil {
		return err
	}
	if err := createArticlesTable(db); err != nil {
		return err
	}
	if err := createPastexamsTables(db); err != nil {
		return err
	}

	// 2. One registration per user per year, enforced at the database level so
	// concurrent submissions cannot slip a duplicate past the pre-check query.
	if err := addRegistrationUniqueIndex(db); err != nil {
		return err
	}

	log.Println("Database migrations completed successfully")
	return nil
}

func createUsersTable(db *sql.DB) error {
	query := `
		CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			username VARCHAR(20) NOT NULL UNIQUE,
			encrypted_password TEXT NOT NULL,
			nickname VARCHAR(20) NOT NULL,
			realname VARCHAR(20) NOT NULL,
			email VARCHAR(330) NOT NULL UNIQUE,
			admin BOOLEAN NOT NULL DEFAULT false,
			reset_password_token TEXT,
			reset_password_token_sent_at TIMESTAMPTZ,
			last_login_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_users_reset_password_token ON users(reset_password_token);
	`
	_, err := db.Exec(query)
	if err != nil {
		log.Printf("Failed to create users table: %v", err)
		return err
	}
	return nil
}

func createRegistrationsTable(db *sql.DB) error {
	query := `
		CREATE TABLE IF NOT EXISTS registrations (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			registrant_id UUID NOT NULL REFERENCES users(id),
			student_id VARCHAR(6) NOT NULL,
			class_seat VARCHAR(5) NOT NULL,
			encrypted_password TEXT NOT NULL,
			verification_code VARCHAR(6) NOT NULL,
			register_year INTEGER NOT NULL,
			score NUMERIC(5,2),
			rank INTEGER,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_registrations_registrant ON registrations(registrant_id);
		CREATE INDEX IF NOT EXISTS idx_registrations_year ON registrations(register_year);
		CREATE INDEX IF NOT EXISTS idx_registrations_year_student ON registrations(register_year, student_id);
	`
	_, err := db.Exec(query)
	if err != nil {
		log.Printf("Failed to create registrations table: %v", err)
		return err
	}
	return nil
}

func createArticlesTable(db *sql.DB) error {
	query := `
		CREATE TABLE IF NOT EXISTS articles (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			title VARCHAR(255) NOT NULL,
			content TEXT NOT NULL DEFAULT '',
			author_id UUID NOT NULL REFERENCES users(id),
			is_pinned BOOLEAN NOT NULL DEFAULT false,
			is_public BOOLEAN NOT NULL DEFAULT false,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_articles_author ON articles(author_id);
	`
	_, err := db.Exec(query)
	if err != nil {
		log.Printf("Failed to create articles table: %v", err)
		return err
	}
	return nil
}

func createPastexamsTables(db *sql.DB) error {
	query := `
		CREATE TABLE IF NOT EXISTS pastexams (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			title VARCHAR(255) NOT NULL,
			content TEXT NOT NULL DEFAULT '',
			author_id UUID NOT NULL REFERENCES users(id),
			is_pinned BOOLEAN NOT NULL DEFAULT false,
			is_public BOOLEAN NOT NULL DEFAULT false,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE TABLE IF NOT EXISTS attachments (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			pastexam_id UUID NOT NULL REFERENCES pastexams(id) ON DELETE CASCADE,
			filename TEXT NOT NULL,
			real_filename TEXT NOT NULL,
			position INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_attachments_pastexam ON attachments(pastexam_id);
	`
	_, err := db.Exec(query)
	if err != nil {
		log.Printf("Failed to create pastexams tables: %v", err)
		return err
	}
	return nil
}

func addRegistrationUniqueIndex(db *sql.DB) error {
	query := `
		DO $$
		BEGIN
			IF NOT EXISTS (
				SELECT 1
				FROM pg_indexes
				WHERE tablename = 'registrations'
				AND indexname = 'uniq_registrations_registrant_year'
			) THEN
				CREATE UNIQUE INDEX uniq_registrations_registrant_year
					ON registrations(registrant_id, register_year);
				RAISE NOTICE 'Added unique index on registrations(registrant_id, register_year)';
			END IF;
		END $$;
	`
	_, err := db.Exec(query)
	if err != nil {
		log.Printf("Failed to add registrations unique index: %v", err)
		return err
	}
	return nil
}
