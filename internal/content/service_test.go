package content

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ovaphlow/pitchfork/service-blog-go/internal/apperr"
	"github.com/ovaphlow/pitchfork/service-blog-go/internal/content/entity"
	"github.com/ovaphlow/pitchfork/service-blog-go/internal/content/repo"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func newTestService(t *testing.T) (*Service, *repo.MemoryStore) {
	t.Helper()
	store := repo.NewMemoryStore(nil)
	return NewService(store, nil), store
}

func TestListCategoriesCountsArticles(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	docs, err := svc.CreateCategory(ctx, entity.CategoryInput{Name: "Documentation", Slug: "documentation"})
	require.NoError(t, err)
	guides, err := svc.CreateCategory(ctx, entity.CategoryInput{Name: "Guides", Slug: "guides"})
	require.NoError(t, err)
	_, err = svc.CreateArticle(ctx, entity.ArticleInput{Title: "A", Slug: "a", Content: "x", CategoryID: &docs.ID})
	require.NoError(t, err)
	_, err = svc.CreateArticle(ctx, entity.ArticleInput{Title: "B", Slug: "b", Content: "x", CategoryID: &docs.ID})
	require.NoError(t, err)

	cats, err := svc.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, cats, 2)
	assert.Equal(t, docs.ID, cats[0].ID)
	assert.Equal(t, 2, cats[0].ArticleCount)
	assert.Equal(t, guides.ID, cats[1].ID)
	assert.Equal(t, 0, cats[1].ArticleCount)
}

func TestGetCategory(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	c, err := svc.CreateCategory(ctx, entity.CategoryInput{Name: "Guides", Slug: "guides"})
	require.NoError(t, err)
	_, err = svc.CreateArticle(ctx, entity.ArticleInput{Title: "A", Slug: "a", Content: "x", CategoryID: &c.ID})
	require.NoError(t, err)

	d, err := svc.GetCategory(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "guides", d.Slug)
	require.Len(t, d.Articles, 1)

	_, err = svc.GetCategory(ctx, "missing")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestCreateCategoryValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateCategory(ctx, entity.CategoryInput{Slug: "guides"})
	assert.ErrorIs(t, err, apperr.ErrValidation)
	assert.Contains(t, apperr.Message(err, ""), `"name" is required`)

	_, err = svc.CreateCategory(ctx, entity.CategoryInput{Name: "Guides", Slug: "Not A Slug"})
	assert.ErrorIs(t, err, apperr.ErrValidation)
	assert.Contains(t, apperr.Message(err, ""), `"slug"`)

	_, err = svc.CreateCategory(ctx, entity.CategoryInput{Name: "Guides", Slug: "guides"})
	require.NoError(t, err)
	_, err = svc.CreateCategory(ctx, entity.CategoryInput{Name: "Guides 2", Slug: "guides"})
	assert.ErrorIs(t, err, apperr.ErrConflict)
}

func TestCreateArticleValidation(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.CreateArticle(context.Background(), entity.ArticleInput{ReadTime: intPtr(0)})
	require.ErrorIs(t, err, apperr.ErrValidation)
	msg := apperr.Message(err, "")
	assert.Contains(t, msg, `"title" is required`)
	assert.Contains(t, msg, `"slug" is required`)
	assert.Contains(t, msg, `"content" is required`)
	assert.Contains(t, msg, `"readTime" must be greater than 0`)
}

func TestCreateArticleOmittedReadTimeIsNull(t *testing.T) {
	svc, _ := newTestService(t)
	a, err := svc.CreateArticle(context.Background(), entity.ArticleInput{Title: "T", Slug: "t", Content: "c"})
	require.NoError(t, err)
	assert.Nil(t, a.ReadTime)
	assert.Equal(t, "t", a.Slug)
	assert.False(t, a.UpdatedAt.Before(a.Published))
}

func TestListArticlesSearchIsCaseInsensitive(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	c, err := svc.CreateCategory(ctx, entity.CategoryInput{Name: "Guides", Slug: "guides"})
	require.NoError(t, err)
	for _, in := range []entity.ArticleInput{
		{Title: "Learning TypeScript", Slug: "ts", Content: "<p>types</p>"},
		{Title: "Go tips", Slug: "go", Content: "<p>nothing here</p>", Excerpt: strPtr("Also covers TYPESCRIPT interop")},
		{Title: "Rust", Slug: "rust", Content: "<p>borrow checker</p>", CategoryID: &c.ID},
		{Title: "Deno", Slug: "deno", Content: "<p>runs typescript natively</p>", CategoryID: &c.ID},
	} {
		_, err := svc.CreateArticle(ctx, in)
		require.NoError(t, err)
	}

	got, err := svc.ListArticles(ctx, ArticleFilter{Search: "typescript"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"ts", "go", "deno"}, slugsOf(got))

	got, err = svc.ListArticles(ctx, ArticleFilter{CategoryID: c.ID, Search: "TypeScript"})
	require.NoError(t, err)
	assert.Equal(t, []string{"deno"}, slugsOf(got))

	got, err = svc.ListArticles(ctx, ArticleFilter{CategoryID: c.ID})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = svc.ListArticles(ctx, ArticleFilter{})
	require.NoError(t, err)
	assert.Len(t, got, 4)
}

func TestGetArticleBySlugOrID(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	a, err := svc.CreateArticle(ctx, entity.ArticleInput{Title: "T", Slug: "hello-world", Content: "c"})
	require.NoError(t, err)

	got, err := svc.GetArticle(ctx, "hello-world")
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)

	got, err = svc.GetArticle(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "hello-world", got.Slug)

	_, err = svc.GetArticle(ctx, "missing")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestUpdateArticle(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	a, err := svc.CreateArticle(ctx, entity.ArticleInput{Title: "T", Slug: "t", Content: "c", ReadTime: intPtr(2)})
	require.NoError(t, err)

	u, err := svc.UpdateArticle(ctx, a.ID, entity.ArticlePatch{Title: entity.Some("Renamed")})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", u.Title)
	assert.Equal(t, 2, *u.ReadTime)
	assert.True(t, u.UpdatedAt.After(a.UpdatedAt))

	_, err = svc.UpdateArticle(ctx, a.ID, entity.ArticlePatch{Title: entity.Null[string]()})
	assert.ErrorIs(t, err, apperr.ErrValidation)
	_, err = svc.UpdateArticle(ctx, a.ID, entity.ArticlePatch{Content: entity.Some("")})
	assert.ErrorIs(t, err, apperr.ErrValidation)
	_, err = svc.UpdateArticle(ctx, a.ID, entity.ArticlePatch{Slug: entity.Some("Bad Slug")})
	assert.ErrorIs(t, err, apperr.ErrValidation)
	_, err = svc.UpdateArticle(ctx, a.ID, entity.ArticlePatch{ReadTime: entity.Some(0)})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	cleared, err := svc.UpdateArticle(ctx, a.ID, entity.ArticlePatch{ReadTime: entity.Null[int]()})
	require.NoError(t, err)
	assert.Nil(t, cleared.ReadTime)

	_, err = svc.UpdateArticle(ctx, "missing", entity.ArticlePatch{Title: entity.Some("x")})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestDeleteArticle(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	a, err := svc.CreateArticle(ctx, entity.ArticleInput{Title: "T", Slug: "t", Content: "c"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteArticle(ctx, a.ID))
	assert.ErrorIs(t, svc.DeleteArticle(ctx, a.ID), apperr.ErrNotFound)
	assert.ErrorIs(t, svc.DeleteArticle(ctx, "never-existed"), apperr.ErrNotFound)
}

// failingStore fails every list call.
type failingStore struct{ repo.Store }

func (failingStore) ListCategories(context.Context) ([]entity.Category, error) {
	return nil, errors.New("connection refused")
}

func TestStoreErrorsPropagate(t *testing.T) {
	svc := NewService(failingStore{Store: repo.NewMemoryStore(nil)}, nil)
	_, err := svc.ListCategories(context.Background())
	require.Error(t, err)
	assert.Equal(t, 500, apperr.HTTPStatus(err))
}

func slugsOf(as []entity.Article) []string {
	out := make([]string, len(as))
	for i, a := range as {
		out[i] = a.Slug
	}
	return out
}

func TestArticleTitleIsTrimmed(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateArticle(ctx, entity.ArticleInput{Title: "   ", Slug: "blank", Content: "c"})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	a, err := svc.CreateArticle(ctx, entity.ArticleInput{Title: "  Spaced  ", Slug: "spaced", Content: "c"})
	require.NoError(t, err)
	assert.Equal(t, "Spaced", a.Title)

	_, err = svc.UpdateArticle(ctx, a.ID, entity.ArticlePatch{Title: entity.Some("\t ")})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	u, err := svc.UpdateArticle(ctx, a.ID, entity.ArticlePatch{Title: entity.Some(" Renamed ")})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", u.Title)
}
