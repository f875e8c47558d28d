package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ovaphlow/pitchfork/service-blog-go/internal/content/entity"
	"github.com/ovaphlow/pitchfork/service-blog-go/pkg/database"
	"github.com/ovaphlow/pitchfork/service-blog-go/pkg/utilities"
)

// SQLStore persists content in postgres or sqlite through sqlx. Queries are
// written with ? placeholders and rebound for the driver.
type SQLStore struct {
	db    *sqlx.DB
	newID utilities.IDGenerator
	now   func() time.Time
}

func NewSQLStore(db *sqlx.DB, newID utilities.IDGenerator) *SQLStore {
	if newID == nil {
		newID = utilities.NewKSUID
	}
	return &SQLStore{db: db, newID: newID, now: time.Now}
}

const (
	categoryColumns = `id, name, slug, description, icon`
	articleColumns  = `id, title, slug, excerpt, content, thumbnail, category_id, read_time, published, updated_at`
)

// EnsureTables creates the content tables if they do not exist (idempotent).
func (s *SQLStore) EnsureTables(ctx context.Context) error {
	ts := "TIMESTAMPTZ"
	if s.db.DriverName() == database.DriverSQLite {
		ts = "TIMESTAMP"
	}
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS categories (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  slug TEXT NOT NULL UNIQUE,
  description TEXT,
  icon TEXT
)`,
		`CREATE TABLE IF NOT EXISTS articles (
  id TEXT PRIMARY KEY,
  title TEXT NOT NULL,
  slug TEXT NOT NULL UNIQUE,
  excerpt TEXT,
  content TEXT NOT NULL,
  thumbnail TEXT,
  category_id TEXT REFERENCES categories(id),
  read_time INTEGER,
  published ` + ts + ` NOT NULL,
  updated_at ` + ts + ` NOT NULL
)`,
		`CREATE INDEX IF NOT EXISTS idx_articles_category_id ON articles(category_id)`,
		`CREATE INDEX IF NOT EXISTS idx_articles_published ON articles(published)`,
	}
	for _, q := range ddl {
		if _, err := s.db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("ensure content tables: %w", err)
		}
	}
	return nil
}

func (s *SQLStore) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *SQLStore) GetCategory(ctx context.Context, id string) (*entity.Category, error) {
	return s.getCategory(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = ?`, id)
}

func (s *SQLStore) GetCategoryBySlug(ctx context.Context, slug string) (*entity.Category, error) {
	return s.getCategory(ctx, `SELECT `+categoryColumns+` FROM categories WHERE slug = ?`, slug)
}

func (s *SQLStore) getCategory(ctx context.Context, q string, arg any) (*entity.Category, error) {
	var c entity.Category
	if err := s.db.GetContext(ctx, &c, s.db.Rebind(q), arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get category: %w", err)
	}
	return &c, nil
}

func (s *SQLStore) ListCategories(ctx context.Context) ([]entity.Category, error) {
	out := []entity.Category{}
	if err := s.db.SelectContext(ctx, &out, `SELECT `+categoryColumns+` FROM categories`); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return out, nil
}

func (s *SQLStore) CreateCategory(ctx context.Context, in entity.CategoryInput) (*entity.Category, error) {
	c := entity.Category{
		ID:          s.newID(),
		Name:        in.Name,
		Slug:        in.Slug,
		Description: in.Description,
		Icon:        in.Icon,
	}
	q := `INSERT INTO categories (id, name, slug, description, icon) VALUES (:id, :name, :slug, :description, :icon)`
	if _, err := s.db.NamedExecContext(ctx, q, c); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, errCategorySlugTaken(err)
		}
		return nil, fmt.Errorf("create category: %w", err)
	}
	return &c, nil
}

func (s *SQLStore) CountArticlesByCategory(ctx context.Context) (map[string]int, error) {
	var rows []struct {
		CategoryID string `db:"category_id"`
		Count      int    `db:"article_count"`
	}
	q := `SELECT category_id, COUNT(*) AS article_count FROM articles WHERE category_id IS NOT NULL GROUP BY category_id`
	if err := s.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, fmt.Errorf("count articles: %w", err)
	}
	counts := make(map[string]int, len(rows))
	for _, r := range rows {
		counts[r.CategoryID] = r.Count
	}
	return counts, nil
}

func (s *SQLStore) GetArticle(ctx context.Context, id string) (*entity.Article, error) {
	return s.getArticle(ctx, s.db, `SELECT `+articleColumns+` FROM articles WHERE id = ?`, id)
}

func (s *SQLStore) GetArticleBySlug(ctx context.Context, slug string) (*entity.Article, error) {
	return s.getArticle(ctx, s.db, `SELECT `+articleColumns+` FROM articles WHERE slug = ?`, slug)
}

func (s *SQLStore) getArticle(ctx context.Context, q sqlx.QueryerContext, query string, arg any) (*entity.Article, error) {
	var a entity.Article
	if err := sqlx.GetContext(ctx, q, &a, s.db.Rebind(query), arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get article: %w", err)
	}
	normalize(&a)
	return &a, nil
}

func (s *SQLStore) ListArticles(ctx context.Context) ([]entity.Article, error) {
	return s.listArticles(ctx, `SELECT `+articleColumns+` FROM articles ORDER BY published DESC`)
}

func (s *SQLStore) ListArticlesByCategory(ctx context.Context, categoryID string) ([]entity.Article, error) {
	return s.listArticles(ctx, `SELECT `+articleColumns+` FROM articles WHERE category_id = ? ORDER BY published DESC`, categoryID)
}

func (s *SQLStore) listArticles(ctx context.Context, q string, args ...any) ([]entity.Article, error) {
	out := []entity.Article{}
	if err := s.db.SelectContext(ctx, &out, s.db.Rebind(q), args...); err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	for i := range out {
		normalize(&out[i])
	}
	return out, nil
}

func (s *SQLStore) CreateArticle(ctx context.Context, in entity.ArticleInput) (*entity.Article, error) {
	a := entity.NewArticle(s.newID(), in, s.now())
	q := `INSERT INTO articles (` + articleColumns + `)
		VALUES (:id, :title, :slug, :excerpt, :content, :thumbnail, :category_id, :read_time, :published, :updated_at)`
	if _, err := s.db.NamedExecContext(ctx, q, a); err != nil {
		return nil, classifyArticleErr("create article", err)
	}
	return &a, nil
}

// UpdateArticle reads, merges and writes the row inside one transaction.
func (s *SQLStore) UpdateArticle(ctx context.Context, id string, p entity.ArticlePatch) (*entity.Article, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin update article: %w", err)
	}
	defer tx.Rollback()

	a, err := s.getArticle(ctx, tx, `SELECT `+articleColumns+` FROM articles WHERE id = ?`, id)
	if err != nil || a == nil {
		return nil, err
	}
	a.Apply(p, s.now())

	q := `UPDATE articles SET title = :title, slug = :slug, excerpt = :excerpt, content = :content,
		thumbnail = :thumbnail, category_id = :category_id, read_time = :read_time, updated_at = :updated_at
		WHERE id = :id`
	if _, err := tx.NamedExecContext(ctx, q, a); err != nil {
		return nil, classifyArticleErr("update article", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, classifyArticleErr("commit update article", err)
	}
	return a, nil
}

func (s *SQLStore) DeleteArticle(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM articles WHERE id = ?`), id)
	if err != nil {
		return false, fmt.Errorf("delete article: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete article: %w", err)
	}
	return n > 0, nil
}

func classifyArticleErr(op string, err error) error {
	switch {
	case database.IsUniqueViolation(err):
		return errArticleSlugTaken(err)
	case database.IsForeignKeyViolation(err):
		return errUnknownCategory(err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

// normalize pins scanned timestamps to UTC; drivers return the session zone.
func normalize(a *entity.Article) {
	a.Published = a.Published.UTC()
	a.UpdatedAt = a.UpdatedAt.UTC()
}
