package database

import (
	"database/sql"
	"fmt"

	"github.com/leo900807/PCSHOI-Site/app/models"
)

const articlePageLimit = 30

// CountArticles counts non-pinned articles, optionally restricted to public
// ones, for pagination.
func CountArticles(db *sql.DB, publicOnly bool) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM articles WHERE is_pinned = false`
	if publicOnly {
		query += ` AND is_public = true`
	}
	err := db.QueryRow(query).Scan(&count)
	return count, err
}

func GetPinnedArticles(db *sql.DB, publicOnly bool) ([]*models.Article, error) {
	query := `SELECT id, title, content, author_id, is_pinned, is_public, created_at, updated_at
			  FROM articles WHERE is_pinned = true`
	if publicOnly {
		query += ` AND is_public = true`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pinned articles: %w", err)
	}
	defer rows.Close()

	return scanArticles(rows)
}

func GetArticlesPage(db *sql.DB, publicOnly bool, page int) ([]*models.Article, error) {
	query := `SELECT id, title, content, author_id, is_pinned, is_public, created_at, updated_at
			  FROM articles WHERE is_pinned = false`
	if publicOnly {
		query += ` AND is_public = true`
	}
	query += ` ORDER BY created_at DESC LIMIT $1 OFFSET $2`

	rows, err := db.Query(query, articlePageLimit, (page-1)*articlePageLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch articles: %w", err)
	}
	defer rows.Close()

	return scanArticles(rows)
}

func scanArticles(rows *sql.Rows) ([]*models.Article, error) {
	var articles []*models.Article
	for rows.Next() {
		article := &models.Article{}
		err := rows.Scan(
			&article.ID, &article.Title, &article.Content, &article.AuthorID,
			&article.IsPinned, &article.IsPublic, &article.CreatedAt, &article.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan article: %w", err)
		}
		articles = append(articles, article)
	}
	return articles, rows.Err()
}

func GetArticleByID(db *sql.DB, id string) (*models.Article, error) {
	article := &models.Article{}
	var author models.User
	query := `SELECT a.id, a.title, a.content, a.author_id, a.is_pinned, a.is_public, a.created_at, a.updated_at,
			  u.nickname, u.realname
			  FROM articles a
			  JOIN users u ON a.author_id = u.id
			  WHERE a.id = $1`

	err := db.QueryRow(query, id).Scan(
		&article.ID, &article.Title, &article.Content, &article.AuthorID,
		&article.IsPinned, &article.IsPublic, &article.CreatedAt, &article.UpdatedAt,
		&author.Nickname, &author.Realname,
	)

	if err != nil {
		return nil, err
	}
	article.Author = &author
	return article, nil
}

func CreateArticle(db *sql.DB, article *models.Article) error {
	query := `INSERT INTO articles (title, content, author_id, is_pinned, is_public, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
			  RETURNING id, created_at, updated_at`

	return db.QueryRow(query, article.Title, article.Content, article.AuthorID,
		article.IsPinned, article.IsPublic).Scan(&article.ID, &article.CreatedAt, &article.UpdatedAt)
}

func UpdateArticle(db *sql.DB, article *models.Article) error {
	query := `UPDATE articles SET title = $1, content = $2, author_id = $3, is_pinned = $4, is_public = $5,
			  updated_at = NOW() WHERE id = $6`
	_, err := db.Exec(query, article.Title, article.Content, article.AuthorID,
		article.IsPinned, article.IsPublic, article.ID)
	return err
}

func DeleteArticle(db *sql.DB, id string) error {
	query := `DELETE FROM articles WHERE id = $1`
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
