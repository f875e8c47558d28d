package user

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/ovaphlow/pitchfork/service-blog-go/internal/apperr"
	"github.com/ovaphlow/pitchfork/service-blog-go/internal/user/entity"
	userrepo "github.com/ovaphlow/pitchfork/service-blog-go/internal/user/repo"
)

func newTestService() (*UserService, *userrepo.MemoryRepo) {
	r := userrepo.NewMemoryRepo()
	svc := NewUserService(r, BcryptHasher{Cost: bcrypt.MinCost}, nil, Policy{MinUsernameLen: 3, MinPasswordLen: 6}, nil)
	return svc, r
}

func TestBcryptHasherRoundTrip(t *testing.T) {
	h := BcryptHasher{Cost: bcrypt.MinCost}
	a, err := h.Hash("secret1")
	require.NoError(t, err)
	b, err := h.Hash("secret1")
	require.NoError(t, err)
	assert.NotEqual(t, a, b, "hashes are salted")
	assert.True(t, h.Verify(a, "secret1"))
	assert.False(t, h.Verify(a, "secret2"))
}

func TestRegisterStoresHashNotPassword(t *testing.T) {
	svc, r := newTestService()
	p, err := svc.Register(context.Background(), "alice", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "alice", p.Username)
	assert.NotEmpty(t, p.ID)
	assert.False(t, p.CreatedAt.IsZero())

	u, err := r.GetByUsername(context.Background(), "alice")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.NotEqual(t, "secret1", u.PasswordHash)
	assert.True(t, strings.HasPrefix(u.PasswordHash, "$2"))
}

func TestRegisterValidatesLengths(t *testing.T) {
	svc, _ := newTestService()
	_, err := svc.Register(context.Background(), "al", "secret1")
	assert.ErrorIs(t, err, apperr.ErrValidation)
	assert.Equal(t, "Username must be at least 3 characters", apperr.Message(err, ""))

	_, err = svc.Register(context.Background(), "alice", "12345")
	assert.ErrorIs(t, err, apperr.ErrValidation)
	assert.Equal(t, "Password must be at least 6 characters", apperr.Message(err, ""))
}

func TestRegisterDuplicateIsConflict(t *testing.T) {
	svc, _ := newTestService()
	_, err := svc.Register(context.Background(), "alice", "secret1")
	require.NoError(t, err)
	_, err = svc.Register(context.Background(), "alice", "other-pass")
	assert.ErrorIs(t, err, apperr.ErrConflict)
	assert.Equal(t, MsgUsernameTaken, apperr.Message(err, ""))
}

// racingRepo hides existing users from the pre-check so Create's unique
// guard is what rejects the duplicate.
type racingRepo struct{ *userrepo.MemoryRepo }

func (racingRepo) GetByUsername(context.Context, string) (*entity.User, error) { return nil, nil }

func TestRegisterRaceFallsBackToStoreGuard(t *testing.T) {
	r := racingRepo{userrepo.NewMemoryRepo()}
	svc := NewUserService(r, BcryptHasher{Cost: bcrypt.MinCost}, nil, Policy{MinUsernameLen: 3, MinPasswordLen: 6}, nil)
	_, err := svc.Register(context.Background(), "alice", "secret1")
	require.NoError(t, err)
	_, err = svc.Register(context.Background(), "alice", "secret1")
	assert.ErrorIs(t, err, apperr.ErrConflict)
}

func TestAuthenticateFailuresAreIndistinguishable(t *testing.T) {
	svc, _ := newTestService()
	_, err := svc.Register(context.Background(), "alice", "secret1")
	require.NoError(t, err)

	_, wrongPass := svc.AuthenticatePassword(context.Background(), "alice", "nope-nope")
	_, noUser := svc.AuthenticatePassword(context.Background(), "mallory", "secret1")
	assert.ErrorIs(t, wrongPass, apperr.ErrUnauthorized)
	assert.ErrorIs(t, noUser, apperr.ErrUnauthorized)
	assert.Equal(t, apperr.Message(wrongPass, ""), apperr.Message(noUser, ""))
	assert.Equal(t, MsgBadCredentials, apperr.Message(noUser, ""))

	p, err := svc.AuthenticatePassword(context.Background(), "alice", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "alice", p.Username)
}

func TestGetPrincipal(t *testing.T) {
	svc, _ := newTestService()
	p, err := svc.Register(context.Background(), "alice", "secret1")
	require.NoError(t, err)

	got, err := svc.GetPrincipal(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, p, got)

	got, err = svc.GetPrincipal(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestConcurrentRegisterSingleWinner(t *testing.T) {
	svc, _ := newTestService()
	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.Register(context.Background(), "alice", "secret1"); err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, wins)
}

func TestRegisterRejectsPasswordsBcryptCannotHash(t *testing.T) {
	svc, _ := newTestService()
	_, err := svc.Register(context.Background(), "alice", strings.Repeat("p", 73))
	assert.ErrorIs(t, err, apperr.ErrValidation)
	assert.Equal(t, "Password must be at most 72 bytes", apperr.Message(err, ""))

	// the bound counts bytes: 36 two-byte runes fit, 25 three-byte runes do not
	_, err = svc.Register(context.Background(), "alice", strings.Repeat("é", 36))
	require.NoError(t, err)
	_, err = svc.Register(context.Background(), "bob", strings.Repeat("€", 25))
	assert.ErrorIs(t, err, apperr.ErrValidation)
}
