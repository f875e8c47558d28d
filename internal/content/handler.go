package content

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-blog-go/internal/apperr"
	"github.com/ovaphlow/pitchfork/service-blog-go/internal/content/entity"
	"github.com/ovaphlow/pitchfork/service-blog-go/pkg/utilities"
)

// Handler exposes category and article endpoints.
type Handler struct {
	svc     *Service
	logger  *zap.SugaredLogger
	maxBody int64
}

func NewHandler(svc *Service, logger *zap.SugaredLogger, maxBody int64) *Handler {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Handler{svc: svc, logger: logger, maxBody: maxBody}
}

const (
	msgCategoryNotFound = "Category not found"
	msgArticleNotFound  = "Article not found"
)

func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.svc.ListCategories(r.Context())
	if err != nil {
		h.fail(w, err, "fetch categories", msgCategoryNotFound)
		return
	}
	utilities.WriteJSON(w, http.StatusOK, cats)
}

func (h *Handler) GetCategory(w http.ResponseWriter, r *http.Request) {
	c, err := h.svc.GetCategory(r.Context(), r.PathValue("id"))
	if err != nil {
		h.fail(w, err, "fetch category", msgCategoryNotFound)
		return
	}
	utilities.WriteJSON(w, http.StatusOK, c)
}

func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var in entity.CategoryInput
	if !h.decode(w, r, &in) {
		return
	}
	c, err := h.svc.CreateCategory(r.Context(), in)
	if err != nil {
		h.fail(w, err, "create category", msgCategoryNotFound)
		return
	}
	utilities.WriteJSON(w, http.StatusCreated, c)
}

func (h *Handler) ListArticles(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	articles, err := h.svc.ListArticles(r.Context(), ArticleFilter{
		CategoryID: q.Get("category"),
		Search:     q.Get("search"),
	})
	if err != nil {
		h.fail(w, err, "fetch articles", msgArticleNotFound)
		return
	}
	utilities.WriteJSON(w, http.StatusOK, articles)
}

func (h *Handler) GetArticle(w http.ResponseWriter, r *http.Request) {
	a, err := h.svc.GetArticle(r.Context(), r.PathValue("slug"))
	if err != nil {
		h.fail(w, err, "fetch article", msgArticleNotFound)
		return
	}
	utilities.WriteJSON(w, http.StatusOK, a)
}

func (h *Handler) CreateArticle(w http.ResponseWriter, r *http.Request) {
	var in entity.ArticleInput
	if !h.decode(w, r, &in) {
		return
	}
	a, err := h.svc.CreateArticle(r.Context(), in)
	if err != nil {
		h.fail(w, err, "create article", msgArticleNotFound)
		return
	}
	utilities.WriteJSON(w, http.StatusCreated, a)
}

func (h *Handler) UpdateArticle(w http.ResponseWriter, r *http.Request) {
	var p entity.ArticlePatch
	if !h.decode(w, r, &p) {
		return
	}
	a, err := h.svc.UpdateArticle(r.Context(), r.PathValue("id"), p)
	if err != nil {
		h.fail(w, err, "update article", msgArticleNotFound)
		return
	}
	utilities.WriteJSON(w, http.StatusOK, a)
}

func (h *Handler) DeleteArticle(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteArticle(r.Context(), r.PathValue("id")); err != nil {
		h.fail(w, err, "delete article", msgArticleNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	err := utilities.DecodeJSON(w, r, h.maxBody, v)
	if err == nil {
		return true
	}
	h.logger.Debugw("invalid payload", "path", r.URL.Path, "err", err)
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		utilities.WriteError(w, http.StatusRequestEntityTooLarge, "Request body too large")
		return false
	}
	utilities.WriteError(w, http.StatusBadRequest, "Invalid JSON body")
	return false
}

// fail maps err to a response. Store and runtime failures are logged and
// answered with a generic message.
func (h *Handler) fail(w http.ResponseWriter, err error, op, notFound string) {
	status := apperr.HTTPStatus(err)
	switch status {
	case http.StatusInternalServerError:
		h.logger.Errorw(op+" failed", "err", err)
		utilities.WriteError(w, status, "Failed to "+op)
	case http.StatusNotFound:
		utilities.WriteError(w, status, notFound)
	default:
		h.logger.Debugw(op+" rejected", "err", err)
		utilities.WriteError(w, status, apperr.Message(err, http.StatusText(status)))
	}
}
