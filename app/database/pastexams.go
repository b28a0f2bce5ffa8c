package database

import (
	"database/sql"
	"fmt"

	"github.com/leo900807/PCSHOI-Site/app/models"
)

const pastexamPageLimit = 30

func CountPastexams(db *sql.DB, publicOnly bool) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM pastexams WHERE is_pinned = false`
	if publicOnly {
		query += ` AND is_public = true`
	}
	err := db.QueryRow(query).Scan(&count)
	return count, err
}

func GetPinnedPastexams(db *sql.DB, publicOnly bool) ([]*models.Pastexam, error) {
	query := `SELECT id, title, content, author_id, is_pinned, is_public, created_at, updated_at
			  FROM pastexams WHERE is_pinned = true`
	if publicOnly {
		query += ` AND is_public = true`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pinned pastexams: %w", err)
	}
	defer rows.Close()

	return scanPastexams(rows)
}

func GetPastexamsPage(db *sql.DB, publicOnly bool, page int) ([]*models.Pastexam, error) {
	query := `SELECT id, title, content, author_id, is_pinned, is_public, created_at, updated_at
			  FROM pastexams WHERE is_pinned = false`
	if publicOnly {
		query += ` AND is_public = true`
	}
	query += ` ORDER BY created_at DESC LIMIT $1 OFFSET $2`

	rows, err := db.Query(query, pastexamPageLimit, (page-1)*pastexamPageLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pastexams: %w", err)
	}
	defer rows.Close()

	return scanPastexams(rows)
}

func scanPastexams(rows *sql.Rows) ([]*models.Pastexam, error) {
	var pastexams []*models.Pastexam
	for rows.Next() {
		pastexam := &models.Pastexam{}
		err := rows.Scan(
			&pastexam.ID, &pastexam.Title, &pastexam.Content, &pastexam.AuthorID,
			&pastexam.IsPinned, &pastexam.IsPublic, &pastexam.CreatedAt, &pastexam.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pastexam: %w", err)
		}
		pastexams = append(pastexams, pastexam)
	}
	return pastexams, rows.Err()
}

func GetPastexamByID(db *sql.DB, id string) (*models.Pastexam, error) {
	pastexam := &models.Pastexam{}
	var author models.User
	query := `SELECT p.id, p.title, p.content, p.author_id, p.is_pinned, p.is_public, p.created_at, p.updated_at,
			  u.nickname, u.realname
			  FROM pastexams p
			  JOIN users u ON p.author_id = u.id
			  WHERE p.id = $1`

	err := db.QueryRow(query, id).Scan(
		&pastexam.ID, &pastexam.Title, &pastexam.Content, &pastexam.AuthorID,
		&pastexam.IsPinned, &pastexam.IsPublic, &pastexam.CreatedAt, &pastexam.UpdatedAt,
		&author.Nickname, &author.Realname,
	)

	if err != nil {
		return nil, err
	}
	pastexam.Author = &author

	pastexam.Attachments, err = GetAttachmentsByPastexam(db, id)
	if err != nil {
		return nil, err
	}
	return pastexam, nil
}

func CreatePastexam(db *sql.DB, pastexam *models.Pastexam) error {
	query := `INSERT INTO pastexams (title, content, author_id, is_pinned, is_public, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
			  RETURNING id, created_at, updated_at`

	return db.QueryRow(query, pastexam.Title, pastexam.Content, pastexam.AuthorID,
		pastexam.IsPinned, pastexam.IsPublic).Scan(&pastexam.ID, &pastexam.CreatedAt, &pastexam.UpdatedAt)
}

func UpdatePastexam(db *sql.DB, pastexam *models.Pastexam) error {
	query := `UPDATE pastexams SET title = $1, content = $2, author_id = $3, is_pinned = $4, is_public = $5,
			  updated_at = NOW() WHERE id = $6`
	_, err := db.Exec(query, pastexam.Title, pastexam.Content, pastexam.AuthorID,
		pastexam.IsPinned, pastexam.IsPublic, pastexam.ID)
	return err
}

// DeletePastexam removes the record; attachment rows go with it via cascade.
// The caller is responsible for removing the files on disk.
func DeletePastexam(db *sql.DB, id string) error {
	query := `DELETE FROM pastexams WHERE id = $1`
	res, err := db.Exec(query, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func GetAttachmentsByPastexam(db *sql.DB, pastexamID string) ([]*models.Attachment, error) {
	query := `SELECT id, pastexam_id, filename, real_filename, position, created_at, updated_at
			  FROM attachments WHERE pastexam_id = $1 ORDER BY position ASC, created_at ASC`

	rows, err := db.Query(query, pastexamID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch attachments: %w", err)
	}
	defer rows.Close()

	var attachments []*models.Attachment
	for rows.Next() {
		attachment := &models.Attachment{}
		err := rows.Scan(
			&attachment.ID, &attachment.PastexamID, &attachment.Filename,
			&attachment.RealFilename, &attachment.Position, &attachment.CreatedAt, &attachment.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attachment: %w", err)
		}
		attachments = append(attachments, attachment)
	}
	return attachments, rows.Err()
}

func GetAttachmentByID(db *sql.DB, id string) (*models.Attachment, error) {
	attachment := &models.Attachment{}
	query := `SELECT id, pastexam_id, filename, real_filename, position, created_at, updated_at
			  FROM attachments WHERE id = $1`

	err := db.QueryRow(query, id).Scan(
		&attachment.ID, &attachment.PastexamID, &attachment.Filename,
		&attachment.RealFilename, &attachment.Position, &attachment.CreatedAt, &attachment.UpdatedAt,
	)

	if err != nil {
		return nil, err
	}
	return attachment, nil
}

func CreateAttachment(db *sql.DB, attachment *models.Attachment) error {
	query := `INSERT INTO attachments (pastexam_id, filename, real_filename, position, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, NOW(), NOW())
			  RETURNING id, created_at, updated_at`

	return db.QueryRow(query, attachment.PastexamID, attachment.Filename, attachment.RealFilename,
		attachment.Position).Scan(&attachment.ID, &attachment.CreatedAt, &attachment.UpdatedAt)
}
