package repo

import (
	"context"

	"github.com/ovaphlow/pitchfork/service-blog-go/internal/apperr"
	"github.com/ovaphlow/pitchfork/service-blog-go/internal/content/entity"
)

// CategoryRepo is the storage contract for categories. Lookups signal absence
// with a nil result, never an error.
type CategoryRepo interface {
	GetCategory(ctx context.Context, id string) (*entity.Category, error)
	GetCategoryBySlug(ctx context.Context, slug string) (*entity.Category, error)
	ListCategories(ctx context.Context) ([]entity.Category, error)
	CreateCategory(ctx context.Context, in entity.CategoryInput) (*entity.Category, error)
	// CountArticlesByCategory maps category id to the number of articles
	// referencing it. Categories without articles are omitted.
	CountArticlesByCategory(ctx context.Context) (map[string]int, error)
}

// ArticleRepo is the storage contract for articles. Lists are ordered newest
// published first.
type ArticleRepo interface {
	GetArticle(ctx context.Context, id string) (*entity.Article, error)
	GetArticleBySlug(ctx context.Context, slug string) (*entity.Article, error)
	ListArticles(ctx context.Context) ([]entity.Article, error)
	ListArticlesByCategory(ctx context.Context, categoryID string) ([]entity.Article, error)
	CreateArticle(ctx context.Context, in entity.ArticleInput) (*entity.Article, error)
	// UpdateArticle returns nil when id is unknown.
	UpdateArticle(ctx context.Context, id string, p entity.ArticlePatch) (*entity.Article, error)
	// DeleteArticle reports whether a record existed and was removed.
	DeleteArticle(ctx context.Context, id string) (bool, error)
}

// Store is a complete content persistence adapter.
type Store interface {
	CategoryRepo
	ArticleRepo
	EnsureTables(ctx context.Context) error
	Ping(ctx context.Context) error
}

// client-facing messages for constraint violations
const (
	msgCategorySlugTaken = "A category with this slug already exists"
	msgArticleSlugTaken  = "An article with this slug already exists"
	msgUnknownCategory   = "Category does not exist"
)

func errCategorySlugTaken(cause error) error {
	return apperr.Wrap(apperr.ErrConflict, msgCategorySlugTaken, cause)
}

func errArticleSlugTaken(cause error) error {
	return apperr.Wrap(apperr.ErrConflict, msgArticleSlugTaken, cause)
}

func errUnknownCategory(cause error) error {
	return apperr.Wrap(apperr.ErrValidation, msgUnknownCategory, cause)
}
