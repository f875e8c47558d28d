package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ovaphlow/pitchfork/service-blog-go/internal/apperr"
	"github.com/ovaphlow/pitchfork/service-blog-go/internal/content/entity"
)

func newMockStore(t *testing.T) (*SQLStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	s := NewSQLStore(sqlx.NewDb(db, "postgres"), func() string { return "id-1" })
	s.now = func() time.Time { return time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC) }
	return s, mock
}

var articleCols = []string{"id", "title", "slug", "excerpt", "content", "thumbnail", "category_id", "read_time", "published", "updated_at"}

func TestSQLGetArticleBySlugUsesDollarPlaceholders(t *testing.T) {
	s, mock := newMockStore(t)
	ts := time.Date(2026, 5, 1, 10, 0, 0, 0, time.FixedZone("CEST", 2*3600))
	mock.ExpectQuery(`SELECT id, title, slug, .* FROM articles WHERE slug = \$1`).
		WithArgs("hello").
		WillReturnRows(sqlmock.NewRows(articleCols).
			AddRow("a1", "Hello", "hello", nil, "<p>hi</p>", nil, "c1", int64(3), ts, ts))

	a, err := s.GetArticleBySlug(context.Background(), "hello")
	require.NoError(t, err)
	require.NotNil(t, a)
	assert.Equal(t, "c1", *a.CategoryID)
	assert.Equal(t, 3, *a.ReadTime)
	assert.Nil(t, a.Excerpt)
	assert.Equal(t, time.UTC, a.Published.Location())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLGetArticleNotFoundIsNil(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery(`FROM articles WHERE id = \$1`).
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows(articleCols))

	a, err := s.GetArticle(context.Background(), "ghost")
	require.NoError(t, err)
	assert.Nil(t, a)
}

func TestSQLGetCategoryDBError(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery(`FROM categories WHERE id = \$1`).WillReturnError(errors.New("db down"))

	_, err := s.GetCategory(context.Background(), "c1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")
	assert.NotErrorIs(t, err, apperr.ErrConflict)
}

func TestSQLCreateCategoryDuplicateSlug(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectExec(`INSERT INTO categories \(id, name, slug, description, icon\) VALUES \(\$1, \$2, \$3, \$4, \$5\)`).
		WithArgs("id-1", "Guides", "guides", nil, nil).
		WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key value violates unique constraint"})

	_, err := s.CreateCategory(context.Background(), entity.CategoryInput{Name: "Guides", Slug: "guides"})
	assert.ErrorIs(t, err, apperr.ErrConflict)
	assert.Equal(t, msgCategorySlugTaken, apperr.Message(err, ""))
}

func TestSQLCreateArticleUnknownCategory(t *testing.T) {
	s, mock := newMockStore(t)
	cat := "missing"
	mock.ExpectExec(`INSERT INTO articles`).
		WillReturnError(&pq.Error{Code: "23503"})

	_, err := s.CreateArticle(context.Background(), entity.ArticleInput{Title: "T", Slug: "t", Content: "c", CategoryID: &cat})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestSQLCreateArticleStampsTimestamps(t *testing.T) {
	s, mock := newMockStore(t)
	now := s.now()
	mock.ExpectExec(`INSERT INTO articles`).
		WithArgs("id-1", "T", "t", nil, "c", nil, nil, nil, now, now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	a, err := s.CreateArticle(context.Background(), entity.ArticleInput{Title: "T", Slug: "t", Content: "c"})
	require.NoError(t, err)
	assert.Equal(t, now, a.Published)
	assert.Equal(t, now, a.UpdatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLUpdateArticleUnknownIDRollsBack(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectBegin()
	mock.ExpectQuery(`FROM articles WHERE id = \$1`).WithArgs("ghost").WillReturnRows(sqlmock.NewRows(articleCols))
	mock.ExpectRollback()

	a, err := s.UpdateArticle(context.Background(), "ghost", entity.ArticlePatch{Title: entity.Some("x")})
	require.NoError(t, err)
	assert.Nil(t, a)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLUpdateArticleMergesAndCommits(t *testing.T) {
	s, mock := newMockStore(t)
	old := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectBegin()
	mock.ExpectQuery(`FROM articles WHERE id = \$1`).WithArgs("a1").
		WillReturnRows(sqlmock.NewRows(articleCols).AddRow("a1", "Old", "old", "ex", "c", nil, nil, nil, old, old))
	mock.ExpectExec(`UPDATE articles SET title = \$1, slug = \$2`).
		WithArgs("New", "old", "ex", "c", nil, nil, nil, s.now(), "a1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	a, err := s.UpdateArticle(context.Background(), "a1", entity.ArticlePatch{Title: entity.Some("New")})
	require.NoError(t, err)
	assert.Equal(t, "New", a.Title)
	assert.Equal(t, "ex", *a.Excerpt)
	assert.Equal(t, old, a.Published)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLDeleteArticle(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectExec(`DELETE FROM articles WHERE id = \$1`).WithArgs("a1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM articles WHERE id = \$1`).WithArgs("a2").WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := s.DeleteArticle(context.Background(), "a1")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = s.DeleteArticle(context.Background(), "a2")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSQLCountArticlesByCategory(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery(`SELECT category_id, COUNT\(\*\) AS article_count FROM articles WHERE category_id IS NOT NULL GROUP BY category_id`).
		WillReturnRows(sqlmock.NewRows([]string{"category_id", "article_count"}).AddRow("c1", int64(3)).AddRow("c2", int64(1)))

	counts, err := s.CountArticlesByCategory(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"c1": 3, "c2": 1}, counts)
}
