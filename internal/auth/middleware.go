package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/ovaphlow/pitchfork/service-blog-go/internal/apperr"
	"github.com/ovaphlow/pitchfork/service-blog-go/internal/user/entity"
	"github.com/ovaphlow/pitchfork/service-blog-go/pkg/utilities"
)

type principalKey struct{}

// WithPrincipal returns a copy of ctx carrying p.
func WithPrincipal(ctx context.Context, p *entity.Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFrom returns the principal RequireAuth attached, if any.
func PrincipalFrom(ctx context.Context) (*entity.Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(*entity.Principal)
	return p, ok && p != nil
}

// RequireAuth short-circuits with 401 unless r carries a live session.
func (h *Handler) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, err := h.svc.CurrentUser(r.Context(), r)
		if err != nil {
			if errors.Is(err, apperr.ErrUnauthorized) {
				utilities.WriteError(w, http.StatusUnauthorized, MsgAuthRequired)
				return
			}
			h.logger.Errorw("resolve session", "error", err, "path", r.URL.Path)
			utilities.WriteError(w, http.StatusInternalServerError, "Failed to verify session")
			return
		}
		next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
	})
}
