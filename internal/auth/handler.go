package auth

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-blog-go/internal/apperr"
	"github.com/ovaphlow/pitchfork/service-blog-go/internal/user"
	"github.com/ovaphlow/pitchfork/service-blog-go/pkg/utilities"
)

// Handler exposes register, login, logout and current user endpoints.
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

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if !h.decode(w, r, &in) {
		return
	}
	p, c, err := h.svc.Register(r.Context(), r, in.Username, in.Password)
	if err != nil {
		if errors.Is(err, apperr.ErrValidation) || errors.Is(err, apperr.ErrConflict) {
			utilities.WriteError(w, http.StatusBadRequest, apperr.Message(err, "Invalid registration"))
			return
		}
		h.logger.Errorw("register", "error", err)
		utilities.WriteError(w, http.StatusInternalServerError, "Registration failed")
		return
	}
	http.SetCookie(w, c)
	utilities.WriteJSON(w, http.StatusCreated, p)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if !h.decode(w, r, &in) {
		return
	}
	p, c, err := h.svc.Login(r.Context(), r, in.Username, in.Password)
	if err != nil {
		if errors.Is(err, apperr.ErrUnauthorized) {
			utilities.WriteError(w, http.StatusUnauthorized, user.MsgBadCredentials)
			return
		}
		h.logger.Errorw("login", "error", err)
		utilities.WriteError(w, http.StatusInternalServerError, "Login failed")
		return
	}
	http.SetCookie(w, c)
	utilities.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	c, err := h.svc.Logout(r.Context(), r)
	if err != nil {
		h.logger.Errorw("logout", "error", err)
		utilities.WriteError(w, http.StatusInternalServerError, "Logout failed")
		return
	}
	http.SetCookie(w, c)
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.CurrentUser(r.Context(), r)
	if err != nil {
		if errors.Is(err, apperr.ErrUnauthorized) {
			utilities.WriteError(w, http.StatusUnauthorized, MsgAuthRequired)
			return
		}
		h.logger.Errorw("current user", "error", err)
		utilities.WriteError(w, http.StatusInternalServerError, "Failed to fetch user")
		return
	}
	utilities.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	err := utilities.DecodeJSON(w, r, h.maxBody, v)
	if err == nil {
		return true
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		utilities.WriteError(w, http.StatusRequestEntityTooLarge, "Request body too large")
		return false
	}
	utilities.WriteError(w, http.StatusBadRequest, "Invalid JSON body")
	return false
}
