package database

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/leo900807/PCSHOI-Site/app/models"

	"github.com/lib/pq"
)

// ErrDuplicateRegistration is returned when the unique index on
// (registrant_id, register_year) rejects an insert. The handlers pre-check for
// a friendlier message, but the index is what actually closes the race.
var ErrDuplicateRegistration = errors.New("registration already exists for this user and year")

// ScoreUpdate is one reconciled row from a bulk import.
type ScoreUpdate struct {
	RegistrationID string
	Score          *float64
	Rank           *int
}

func GetRegistrationByID(db *sql.DB, id string) (*models.Registration, error) {
	registration := &models.Registration{}
	query := `SELECT id, registrant_id, student_id, class_seat, encrypted_password, verification_code,
			  register_year, score, rank, created_at, updated_at
			  FROM registrations WHERE id = $1`

	err := db.QueryRow(query, id).Scan(
		&registration.ID, &registration.RegistrantID, &registration.StudentID, &registration.ClassSeat,
		&registration.EncryptedPassword, &registration.VerificationCode, &registration.RegisterYear,
		&registration.Score, &registration.Rank, &registration.CreatedAt, &registration.UpdatedAt,
	)

	if err != nil {
		return nil, err
	}
	return registration, nil
}

func GetRegistrationByUserAndYear(db *sql.DB, userID string, year int) (*models.Registration, error) {
	registration := &models.Registration{}
	query := `SELECT id, registrant_id, student_id, class_seat, encrypted_password, verification_code,
			  register_year, score, rank, created_at, updated_at
			  FROM registrations WHERE registrant_id = $1 AND register_year = $2`

	err := db.QueryRow(query, userID, year).Scan(
		&registration.ID, &registration.RegistrantID, &registration.StudentID, &registration.ClassSeat,
		&registration.EncryptedPassword, &registration.VerificationCode, &registration.RegisterYear,
		&registration.Score, &registration.Rank, &registration.CreatedAt, &registration.UpdatedAt,
	)

	if err != nil {
		return nil, err
	}
	return registration, nil
}

// GetRegistrationsByUser returns one user's registrations across all years.
func GetRegistrationsByUser(db *sql.DB, userID string) ([]*models.Registration, error) {
	query := `SELECT id, registrant_id, student_id, class_seat, encrypted_password, verification_code,
			  register_year, score, rank, created_at, updated_at
			  FROM registrations WHERE registrant_id = $1
			  ORDER BY created_at ASC`

	rows, err := db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch registrations: %w", err)
	}
	defer rows.Close()

	return scanRegistrations(rows, false)
}

// GetRegistrationsByYear returns every registration of one contest year joined
// with the registrant's identity, ordered by creation time.
func GetRegistrationsByYear(db *sql.DB, year int) ([]*models.Registration, error) {
	query := `SELECT r.id, r.registrant_id, r.student_id, r.class_seat, r.encrypted_password,
			  r.verification_code, r.register_year, r.score, r.rank, r.created_at, r.updated_at,
			  u.realname, u.email
			  FROM registrations r
			  JOIN users u ON r.registrant_id = u.id
			  WHERE r.register_year = $1
			  ORDER BY r.created_at ASC`

	rows, err := db.Query(query, year)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch registrations: %w", err)
	}
	defer rows.Close()

	return scanRegistrations(rows, true)
}

func scanRegistrations(rows *sql.Rows, withRegistrant bool) ([]*models.Registration, error) {
	var registrations []*models.Registration
	for rows.Next() {
		registration := &models.Registration{}
		dest := []interface{}{
			&registration.ID, &registration.RegistrantID, &registration.StudentID, &registration.ClassSeat,
			&registration.EncryptedPassword, &registration.VerificationCode, &registration.RegisterYear,
			&registration.Score, &registration.Rank, &registration.CreatedAt, &registration.UpdatedAt,
		}
		var registrant models.User
		if withRegistrant {
			dest = append(dest, &registrant.Realname, &registrant.Email)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan registration: %w", err)
		}
		if withRegistrant {
			registration.Registrant = &registrant
		}
		registrations = append(registrations, registration)
	}
	return registrations, rows.Err()
}

func CreateRegistration(db *sql.DB, registration *models.Registration) error {
	query := `INSERT INTO registrations (registrant_id, student_id, class_seat, encrypted_password,
			  verification_code, register_year, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
			  RETURNING id, created_at, updated_at`

	err := db.QueryRow(query, registration.RegistrantID, registration.StudentID, registration.ClassSeat,
		registration.EncryptedPassword, registration.VerificationCode, registration.RegisterYear).Scan(
		&registration.ID, &registration.CreatedAt, &registration.UpdatedAt,
	)

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return ErrDuplicateRegistration
	}
	return err
}

// UpdateRegistrationPassword replaces the practice-session password only.
// The verification code is never regenerated.
func UpdateRegistrationPassword(db *sql.DB, id, hashedPassword string) error {
	query := `UPDATE registrations SET encrypted_password = $1, updated_at = NOW() WHERE id = $2`
	_, err := db.Exec(query, hashedPassword, id)
	return err
}

func DeleteRegistration(db *sql.DB, id string) error {
	query := `DELETE FROM registrations WHERE id = $1`
	_, err := db.Exec(query, id)
	return err
}

// GetRegistrationsByYearStudentPairs fetches the registrations matching any of
// the given (registerYear, studentId) pairs in one round trip.
func GetRegistrationsByYearStudentPairs(db *sql.DB, years []int, studentIDs []string) ([]*models.Registration, error) {
	if len(years) == 0 || len(years) != len(studentIDs) {
		return nil, nil
	}

	placeholders := make([]string, len(years))
	args := make([]interface{}, 0, len(years)*2)
	for i := range years {
		placeholders[i] = fmt.Sprintf("($%d::integer, $%d)", i*2+1, i*2+2)
		args = append(args, years[i], studentIDs[i])
	}

	query := `SELECT id, registrant_id, student_id, class_seat, encrypted_password, verification_code,
			  register_year, score, rank, created_at, updated_at
			  FROM registrations
			  WHERE (register_year, student_id) IN (` + strings.Join(placeholders, ", ") + `)`

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch registrations by pairs: %w", err)
	}
	defer rows.Close()

	return scanRegistrations(rows, false)
}

// BatchUpdateRegistrationScores applies all score/rank updates of one import in
// a single transaction so a storage failure leaves the ledger untouched.
func BatchUpdateRegistrationScores(db *sql.DB, updates []ScoreUpdate) error {
	if len(updates) == 0 {
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`UPDATE registrations SET score = $1, rank = $2, updated_at = NOW() WHERE id = $3`)
	if err != nil {
		return fmt.Errorf("failed to prepare update statement: %w", err)
	}
	defer stmt.Close()

	for _, update := range updates {
		if _, err := stmt.Exec(update.Score, update.Rank, update.RegistrationID); err != nil {
			return fmt.Errorf("failed to update registration %s: %w", update.RegistrationID, err)
		}
	}

	return tx.Commit()
}

// RegistrationKey builds the reconciliation lookup key used by the bulk importer.
func RegistrationKey(year int, studentID string) string {
	return strconv.Itoa(year) + ":" + studentID
}
