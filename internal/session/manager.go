// Package session issues, resolves and destroys server-side login sessions
// carried by a signed cookie.
package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-blog-go/internal/session/repo"
)

// Options configures the cookie and lifetime of issued sessions.
type Options struct {
	CookieName string
	MaxAge     time.Duration
	Secure     bool
}

// Manager owns the session lifecycle. Expiry is absolute: a session lives
// MaxAge from issuance and is never extended on use.
type Manager struct {
	repo   repo.Repo
	codec  *TokenCodec
	opts   Options
	logger *zap.SugaredLogger
	now    func() time.Time
}

func NewManager(r repo.Repo, codec *TokenCodec, opts Options, logger *zap.SugaredLogger) *Manager {
	if opts.CookieName == "" {
		opts.CookieName = "blog_session"
	}
	if opts.MaxAge <= 0 {
		opts.MaxAge = 7 * 24 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Manager{repo: r, codec: codec, opts: opts, logger: logger, now: time.Now}
}

// CookieName is the name of the session cookie.
func (m *Manager) CookieName() string { return m.opts.CookieName }

// Issue creates a session for userID and returns the cookie that carries it.
func (m *Manager) Issue(ctx context.Context, userID string) (*http.Cookie, error) {
	token, err := newToken()
	if err != nil {
		return nil, err
	}
	// second precision keeps the store and the signed claim in agreement
	expires := m.now().UTC().Add(m.opts.MaxAge).Truncate(time.Second)
	if err := m.repo.Save(ctx, &repo.Session{Token: token, UserID: userID, ExpiresAt: expires}); err != nil {
		return nil, err
	}
	value, err := m.codec.Encode(token, expires)
	if err != nil {
		return nil, fmt.Errorf("sign session: %w", err)
	}
	return m.cookie(value, expires, int(m.opts.MaxAge.Seconds())), nil
}

// Resolve returns the live session presented on r, or nil when there is
// none. Expired sessions are deleted as they are found.
func (m *Manager) Resolve(ctx context.Context, r *http.Request) (*repo.Session, error) {
	token, ok := m.token(r)
	if !ok {
		return nil, nil
	}
	s, err := m.repo.Get(ctx, token)
	if err != nil || s == nil {
		return nil, err
	}
	if s.Expired(m.now()) {
		if err := m.repo.Delete(ctx, token); err != nil {
			m.logger.Warnw("delete expired session", "error", err)
		}
		return nil, nil
	}
	return s, nil
}

// Destroy removes the session presented on r, if any, and returns a cookie
// that clears it in the browser.
func (m *Manager) Destroy(ctx context.Context, r *http.Request) (*http.Cookie, error) {
	if token, ok := m.token(r); ok {
		if err := m.repo.Delete(ctx, token); err != nil {
			return nil, err
		}
	}
	return m.cookie("", time.Unix(0, 0), -1), nil
}

// PurgeExpired drops sessions that expired while the process was down.
func (m *Manager) PurgeExpired(ctx context.Context) (int64, error) {
	return m.repo.PurgeExpired(ctx, m.now())
}

func (m *Manager) token(r *http.Request) (string, bool) {
	c, err := r.Cookie(m.opts.CookieName)
	if err != nil || c.Value == "" {
		return "", false
	}
	token, err := m.codec.Decode(c.Value)
	if err != nil {
		m.logger.Debugw("rejected session cookie", "error", err)
		return "", false
	}
	return token, true
}

func (m *Manager) cookie(value string, expires time.Time, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     m.opts.CookieName,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   m.opts.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// newToken returns 32 random bytes, base64url encoded.
func newToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
