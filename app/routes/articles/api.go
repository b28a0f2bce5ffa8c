package articles

import (
	"database/sql"
	"log"
	"strconv"
	"strings"

	"github.com/leo900807/PCSHOI-Site/app/config"
	"github.com/leo900807/PCSHOI-Site/app/database"
	"github.com/leo900807/PCSHOI-Site/app/models"
	"github.com/leo900807/PCSHOI-Site/app/routes/auth"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const pageLimit = 30

type ArticleForm struct {
	Title    string `json:"title" form:"title"`
	Content  string `json:"content" form:"content"`
	IsPinned bool   `json:"is_pinned" form:"is_pinned"`
	IsPublic bool   `json:"is_public" form:"is_public"`
}

func validateArticleForm(form *ArticleForm) []string {
	var errs []string
	if strings.TrimSpace(form.Title) == "" {
		errs = append(errs, "Title is required")
	} else if len(form.Title) > 255 {
		errs = append(errs, "Title length is at most 255")
	}
	if len(form.Content) > 65535 {
		errs = append(errs, "Content length is at most 65535")
	}
	return errs
}

// IndexAPI lists articles, pinned ones separated, 30 per page. Non-admins only
// see published entries.
func IndexAPI(c *fiber.Ctx) error {
	user := auth.CurrentUser(c)
	publicOnly := user == nil || !user.Admin

	page := 1
	if pageQuery := c.Query("page"); pageQuery != "" {
		parsed, err := strconv.Atoi(pageQuery)
		if err != nil || parsed < 1 {
			return c.Status(404).JSON(fiber.Map{"error": "Not Found"})
		}
		page = parsed
	}

	count, err := database.CountArticles(config.GetDB(), publicOnly)
	if err != nil {
		log.Printf("Failed to count articles: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch articles"})
	}
	pageCount := (count + pageLimit - 1) / pageLimit
	if page > pageCount && page != 1 {
		return c.Status(404).JSON(fiber.Map{"error": "Not Found"})
	}

	pinned, err := database.GetPinnedArticles(config.GetDB(), publicOnly)
	if err != nil {
		log.Printf("Failed to fetch pinned articles: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch articles"})
	}
	articles, err := database.GetArticlesPage(config.GetDB(), publicOnly, page)
	if err != nil {
		log.Printf("Failed to fetch articles: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch articles"})
	}

	return c.JSON(fiber.Map{
		"pinned_articles": pinned,
		"articles":        articles,
		"page":            page,
		"page_count":      pageCount,
	})
}

func ShowAPI(c *fiber.Ctx) error {
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "Not Found"})
	}

	article, err := database.GetArticleByID(config.GetDB(), id)
	if err == sql.ErrNoRows {
		return c.Status(404).JSON(fiber.Map{"error": "Not Found"})
	}
	if err != nil {
		log.Printf("Failed to fetch article: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch article"})
	}

	user := auth.CurrentUser(c)
	if !article.IsPublic && (user == nil || !user.Admin) {
		return c.Status(404).JSON(fiber.Map{"error": "Not Found"})
	}

	return c.JSON(article)
}

func CreateAPI(c *fiber.Ctx) error {
	var form ArticleForm
	if err := c.BodyParser(&form); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request"})
	}
	if errs := validateArticleForm(&form); len(errs) > 0 {
		return c.Status(422).JSON(fiber.Map{"errors": errs, "data": form})
	}

	article := &models.Article{
		Title:    form.Title,
		Content:  form.Content,
		AuthorID: auth.CurrentUser(c).ID,
		IsPinned: form.IsPinned,
		IsPublic: form.IsPublic,
	}
	if err := database.CreateArticle(config.GetDB(), article); err != nil {
		log.Printf("Failed to create article: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "Failed to create article"})
	}

	return c.Status(201).JSON(fiber.Map{"message": "Successfully created", "article": article})
}

func UpdateAPI(c *fiber.Ctx) error {
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "Not Found"})
	}

	var form ArticleForm
	if err := c.BodyParser(&form); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request"})
	}
	if errs := validateArticleForm(&form); len(errs) > 0 {
		return c.Status(422).JSON(fiber.Map{"errors": errs, "data": form})
	}

	article, err := database.GetArticleByID(config.GetDB(), id)
	if err == sql.ErrNoRows {
		return c.Status(404).JSON(fiber.Map{"error": "Not Found"})
	}
	if err != nil {
		log.Printf("Failed to fetch article: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch article"})
	}

	article.Title = form.Title
	article.Content = form.Content
	article.IsPinned = form.IsPinned
	article.IsPublic = form.IsPublic
	article.AuthorID = auth.CurrentUser(c).ID
	if err := database.UpdateArticle(config.GetDB(), article); err != nil {
		log.Printf("Failed to update article: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "Failed to update article"})
	}

	return c.JSON(fiber.Map{"message": "Successfully updated", "article": article})
}

func DestroyAPI(c *fiber.Ctx) error {
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "Not Found"})
	}

	err := database.DeleteArticle(config.GetDB(), id)
	if err == sql.ErrNoRows {
		return c.Status(422).JSON(fiber.Map{"error": "No such article"})
	}
	if err != nil {
		log.Printf("Failed to delete article: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "Failed to delete article"})
	}

	return c.JSON(fiber.Map{"message": "Successfully deleted"})
}
