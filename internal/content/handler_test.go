package content

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-blog-go/internal/content/entity"
	"github.com/ovaphlow/pitchfork/service-blog-go/internal/content/repo"
)

func newTestMux(t *testing.T) *http.ServeMux {
	t.Helper()
	svc := NewService(repo.NewMemoryStore(nil), nil)
	h := NewHandler(svc, zap.NewNop().Sugar(), 1<<20)
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/categories", h.ListCategories)
	mux.HandleFunc("GET /api/categories/{id}", h.GetCategory)
	mux.HandleFunc("POST /api/categories", h.CreateCategory)
	mux.HandleFunc("GET /api/articles", h.ListArticles)
	mux.HandleFunc("GET /api/articles/{slug}", h.GetArticle)
	mux.HandleFunc("POST /api/articles", h.CreateArticle)
	mux.HandleFunc("PUT /api/articles/{id}", h.UpdateArticle)
	mux.HandleFunc("DELETE /api/articles/{id}", h.DeleteArticle)
	return mux
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestHandlerArticleFlow(t *testing.T) {
	mux := newTestMux(t)

	w := do(t, mux, http.MethodPost, "/api/categories", `{"name":"Guides","slug":"guides"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var cat entity.Category
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cat))

	w = do(t, mux, http.MethodPost, "/api/articles",
		`{"title":"Hello","slug":"hello","content":"<p>hi</p>","categoryId":"`+cat.ID+`","id":"forged"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var a entity.Article
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &a))
	assert.NotEqual(t, "forged", a.ID)
	assert.Nil(t, a.ReadTime)

	w = do(t, mux, http.MethodGet, "/api/articles/hello", "")
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, mux, http.MethodGet, "/api/categories/"+cat.ID, "")
	require.Equal(t, http.StatusOK, w.Code)
	var detail entity.CategoryDetail
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &detail))
	assert.Len(t, detail.Articles, 1)

	w = do(t, mux, http.MethodGet, "/api/categories", "")
	require.Equal(t, http.StatusOK, w.Code)
	var cats []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cats))
	require.Len(t, cats, 1)
	assert.EqualValues(t, 1, cats[0]["articleCount"])

	w = do(t, mux, http.MethodPut, "/api/articles/"+a.ID, `{"title":"Hello again"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var u entity.Article
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &u))
	assert.Equal(t, "Hello again", u.Title)
	assert.Equal(t, a.Content, u.Content)

	w = do(t, mux, http.MethodDelete, "/api/articles/"+a.ID, "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())

	w = do(t, mux, http.MethodDelete, "/api/articles/"+a.ID, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"Article not found"}`, w.Body.String())
}

func TestHandlerErrors(t *testing.T) {
	mux := newTestMux(t)

	w := do(t, mux, http.MethodGet, "/api/categories/nope", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"Category not found"}`, w.Body.String())

	w = do(t, mux, http.MethodGet, "/api/articles/nope", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, mux, http.MethodPost, "/api/categories", `{"name":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Invalid JSON body"}`, w.Body.String())

	w = do(t, mux, http.MethodPost, "/api/articles", `{"title":"x"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Validation error")

	w = do(t, mux, http.MethodPut, "/api/articles/nope", `{"title":"x"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	do(t, mux, http.MethodPost, "/api/categories", `{"name":"Guides","slug":"guides"}`)
	w = do(t, mux, http.MethodPost, "/api/categories", `{"name":"Guides","slug":"guides"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"A category with this slug already exists"}`, w.Body.String())
}

func TestHandlerSearchQuery(t *testing.T) {
	mux := newTestMux(t)
	do(t, mux, http.MethodPost, "/api/articles", `{"title":"Intro to TypeScript","slug":"intro-ts","content":"c"}`)
	do(t, mux, http.MethodPost, "/api/articles", `{"title":"Go","slug":"go","content":"c"}`)

	w := do(t, mux, http.MethodGet, "/api/articles?search=typescript", "")
	require.Equal(t, http.StatusOK, w.Code)
	var got []entity.Article
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "intro-ts", got[0].Slug)

	w = do(t, mux, http.MethodGet, "/api/articles?category=none", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}
