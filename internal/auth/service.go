// Package auth composes users and sessions into the login state machine:
// anonymous requests become authenticated through Register or Login and turn
// anonymous again through Logout or session expiry.
package auth

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-blog-go/internal/apperr"
	"github.com/ovaphlow/pitchfork/service-blog-go/internal/session"
	"github.com/ovaphlow/pitchfork/service-blog-go/internal/user"
	"github.com/ovaphlow/pitchfork/service-blog-go/internal/user/entity"
)

const MsgAuthRequired = "Authentication required"

// Service drives session state for a request.
type Service struct {
	users    *user.UserService
	sessions *session.Manager
	logger   *zap.SugaredLogger
}

func NewService(users *user.UserService, sessions *session.Manager, logger *zap.SugaredLogger) *Service {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Service{users: users, sessions: sessions, logger: logger}
}

// Register creates the user and signs the request in as that user. A failed
// registration leaves any existing session untouched.
func (s *Service) Register(ctx context.Context, r *http.Request, username, password string) (*entity.Principal, *http.Cookie, error) {
	p, err := s.users.Register(ctx, username, password)
	if err != nil {
		return nil, nil, err
	}
	c, err := s.establish(ctx, r, p.ID)
	if err != nil {
		return nil, nil, err
	}
	return p, c, nil
}

// Login verifies credentials and starts a fresh session.
func (s *Service) Login(ctx context.Context, r *http.Request, username, password string) (*entity.Principal, *http.Cookie, error) {
	p, err := s.users.AuthenticatePassword(ctx, username, password)
	if err != nil {
		return nil, nil, err
	}
	c, err := s.establish(ctx, r, p.ID)
	if err != nil {
		return nil, nil, err
	}
	s.logger.Infow("user logged in", "user_id", p.ID)
	return p, c, nil
}

// Logout ends the session on r. It succeeds with no session too.
func (s *Service) Logout(ctx context.Context, r *http.Request) (*http.Cookie, error) {
	return s.sessions.Destroy(ctx, r)
}

// CurrentUser returns the principal of the live session on r.
func (s *Service) CurrentUser(ctx context.Context, r *http.Request) (*entity.Principal, error) {
	sess, err := s.sessions.Resolve(ctx, r)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, apperr.Unauthorized(MsgAuthRequired)
	}
	p, err := s.users.GetPrincipal(ctx, sess.UserID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperr.Unauthorized(MsgAuthRequired)
	}
	return p, nil
}

// establish drops whatever session r presented before issuing a new one, so
// a pre-set cookie can never be promoted to an authenticated session.
func (s *Service) establish(ctx context.Context, r *http.Request, userID string) (*http.Cookie, error) {
	if _, err := s.sessions.Destroy(ctx, r); err != nil {
		return nil, err
	}
	return s.sessions.Issue(ctx, userID)
}
