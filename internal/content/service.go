package content

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-blog-go/internal/apperr"
	"github.com/ovaphlow/pitchfork/service-blog-go/internal/content/entity"
	"github.com/ovaphlow/pitchfork/service-blog-go/internal/content/repo"
)

// Service implements category and article use cases on top of a Store.
type Service struct {
	store    repo.Store
	validate *validator.Validate
	logger   *zap.SugaredLogger
}

func NewService(store repo.Store, logger *zap.SugaredLogger) *Service {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Service{store: store, validate: newValidator(), logger: logger}
}

// ArticleFilter narrows ListArticles. Empty fields do not filter.
type ArticleFilter struct {
	CategoryID string
	Search     string
}

// ListCategories returns all categories annotated with their article count.
func (s *Service) ListCategories(ctx context.Context) ([]entity.CategoryWithCount, error) {
	cats, err := s.store.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	counts, err := s.store.CountArticlesByCategory(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]entity.CategoryWithCount, len(cats))
	for i, c := range cats {
		out[i] = entity.CategoryWithCount{Category: c, ArticleCount: counts[c.ID]}
	}
	return out, nil
}

// GetCategory returns the category with its articles, or apperr.ErrNotFound.
func (s *Service) GetCategory(ctx context.Context, id string) (*entity.CategoryDetail, error) {
	c, err := s.store.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fmt.Errorf("category %s: %w", id, apperr.ErrNotFound)
	}
	articles, err := s.store.ListArticlesByCategory(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	return &entity.CategoryDetail{Category: *c, Articles: articles}, nil
}

func (s *Service) CreateCategory(ctx context.Context, in entity.CategoryInput) (*entity.Category, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := check(s.validate, in); err != nil {
		return nil, err
	}
	c, err := s.store.CreateCategory(ctx, in)
	if err != nil {
		return nil, err
	}
	s.logger.Infow("category created", "id", c.ID, "slug", c.Slug)
	return c, nil
}

// ListArticles lists articles, scoped to a category when requested, then
// keeps those whose title, excerpt or content contains the search term
// case-insensitively. The substring filter always runs in memory.
func (s *Service) ListArticles(ctx context.Context, f ArticleFilter) ([]entity.Article, error) {
	var (
		articles []entity.Article
		err      error
	)
	if f.CategoryID != "" {
		articles, err = s.store.ListArticlesByCategory(ctx, f.CategoryID)
	} else {
		articles, err = s.store.ListArticles(ctx)
	}
	if err != nil {
		return nil, err
	}
	if f.Search == "" {
		return articles, nil
	}
	needle := strings.ToLower(f.Search)
	out := articles[:0]
	for _, a := range articles {
		if matches(a, needle) {
			out = append(out, a)
		}
	}
	return out, nil
}

func matches(a entity.Article, needle string) bool {
	if strings.Contains(strings.ToLower(a.Title), needle) {
		return true
	}
	if a.Excerpt != nil && strings.Contains(strings.ToLower(*a.Excerpt), needle) {
		return true
	}
	return strings.Contains(strings.ToLower(a.Content), needle)
}

// GetArticle resolves an article by slug, falling back to id so editors can
// load drafts by identifier.
func (s *Service) GetArticle(ctx context.Context, slugOrID string) (*entity.Article, error) {
	a, err := s.store.GetArticleBySlug(ctx, slugOrID)
	if err != nil {
		return nil, err
	}
	if a == nil {
		if a, err = s.store.GetArticle(ctx, slugOrID); err != nil {
			return nil, err
		}
	}
	if a == nil {
		return nil, fmt.Errorf("article %s: %w", slugOrID, apperr.ErrNotFound)
	}
	return a, nil
}

func (s *Service) CreateArticle(ctx context.Context, in entity.ArticleInput) (*entity.Article, error) {
	in.Title = strings.TrimSpace(in.Title)
	if err := check(s.validate, in); err != nil {
		return nil, err
	}
	a, err := s.store.CreateArticle(ctx, in)
	if err != nil {
		return nil, err
	}
	s.logger.Infow("article created", "id", a.ID, "slug", a.Slug)
	return a, nil
}

func (s *Service) UpdateArticle(ctx context.Context, id string, p entity.ArticlePatch) (*entity.Article, error) {
	if p.Title.Present() {
		p.Title.Value = strings.TrimSpace(p.Title.Value)
	}
	if err := checkPatch(s.validate, p); err != nil {
		return nil, err
	}
	a, err := s.store.UpdateArticle(ctx, id, p)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, fmt.Errorf("article %s: %w", id, apperr.ErrNotFound)
	}
	s.logger.Infow("article updated", "id", a.ID)
	return a, nil
}

func (s *Service) DeleteArticle(ctx context.Context, id string) error {
	ok, err := s.store.DeleteArticle(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("article %s: %w", id, apperr.ErrNotFound)
	}
	s.logger.Infow("article deleted", "id", id)
	return nil
}

// Ping checks store connectivity.
func (s *Service) Ping(ctx context.Context) error { return s.store.Ping(ctx) }
