package database

import (
	"database/sql"
	"time"

	"github.com/leo900807/PCSHOI-Site/app/models"
)

func GetUserByUsername(db *sql.DB, username string) (*models.User, error) {
	user := &models.User{}
	query := `SELECT id, username, encrypted_password, nickname, realname, email, admin, created_at, updated_at
			  FROM users WHERE username = $1`

	err := db.QueryRow(query, username).Scan(
		&user.ID, &user.Username, &user.EncryptedPassword, &user.Nickname,
		&user.Realname, &user.Email, &user.Admin, &user.CreatedAt, &user.UpdatedAt,
	)

	if err != nil {
		return nil, err
	}
	return user, nil
}

func GetUserByID(db *sql.DB, userID string) (*models.User, error) {
	user := &models.User{}
	query := `SELECT id, username, encrypted_password, nickname, realname, email, admin, created_at, updated_at
			  FROM users WHERE id = $1`

	err := db.QueryRow(query, userID).Scan(
		&user.ID, &user.Username, &user.EncryptedPassword, &user.Nickname,
		&user.Realname, &user.Email, &user.Admin, &user.CreatedAt, &user.UpdatedAt,
	)

	if err != nil {
		return nil, err
	}
	return user, nil
}

// CountUsersByUsernameOrEmail backs the duplicate check on signup. On profile
// edit the caller excludes the user's own row.
func CountUsersByUsernameOrEmail(db *sql.DB, username, email, excludeID string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM users WHERE (username = $1 OR email = $2) AND id::text <> $3`
	err := db.QueryRow(query, username, email, excludeID).Scan(&count)
	return count, err
}

func CreateUser(db *sql.DB, user *models.User) error {
	query := `INSERT INTO users (username, encrypted_password, nickname, realname, email, admin, last_login_at, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW(), NOW())
			  RETURNING id, created_at, updated_at`

	return db.QueryRow(query, user.Username, user.EncryptedPassword, user.Nickname,
		user.Realname, user.Email, user.Admin).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
}

func UpdateUserProfile(db *sql.DB, userID, nickname, email string) error {
	query := `UPDATE users SET nickname = $1, email = $2, updated_at = NOW() WHERE id = $3`
	_, err := db.Exec(query, nickname, email, userID)
	return err
}

func UpdateUserPassword(db *sql.DB, userID, hashedPassword string) error {
	query := `UPDATE users SET encrypted_password = $1, updated_at = NOW() WHERE id = $2`
	_, err := db.Exec(query, hashedPassword, userID)
	return err
}

func TouchLastLogin(db *sql.DB, userID string) error {
	query := `UPDATE users SET last_login_at = NOW() WHERE id = $1`
	_, err := db.Exec(query, userID)
	return err
}

func SetResetPasswordToken(db *sql.DB, userID, token string) error {
	query := `UPDATE users SET reset_password_token = $1, reset_password_token_sent_at = NOW(), updated_at = NOW()
			  WHERE id = $2`
	_, err := db.Exec(query, token, userID)
	return err
}

// GetUserByResetToken also reports when the token was issued so the caller can
// enforce the one-hour expiry.
func GetUserByResetToken(db *sql.DB, token string) (*models.User, time.Time, error) {
	user := &models.User{}
	var sentAt time.Time
	query := `SELECT id, username, encrypted_password, nickname, realname, email, admin, reset_password_token_sent_at
			  FROM users WHERE reset_password_token = $1`

	err := db.QueryRow(query, token).Scan(
		&user.ID, &user.Username, &user.EncryptedPassword, &user.Nickname,
		&user.Realname, &user.Email, &user.Admin, &sentAt,
	)

	if err != nil {
		return nil, time.Time{}, err
	}
	return user, sentAt, nil
}

func ClearResetPasswordToken(db *sql.DB, userID string) error {
	query := `UPDATE users SET reset_password_token = NULL, reset_password_token_sent_at = NULL, updated_at = NOW()
			  WHERE id = $1`
	_, err := db.Exec(query, userID)
	return err
}

// PurgeExpiredResetTokens clears tokens older than the given cutoff. Called by
// the background scheduler.
func PurgeExpiredResetTokens(db *sql.DB, before time.Time) (int64, error) {
	query := `UPDATE users SET reset_password_token = NULL, reset_password_token_sent_at = NULL
			  WHERE reset_password_token IS NOT NULL AND reset_password_token_sent_at < $1`
	res, err := db.Exec(query, before)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
