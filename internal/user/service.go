package user

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/ovaphlow/pitchfork/service-blog-go/internal/apperr"
	"github.com/ovaphlow/pitchfork/service-blog-go/internal/user/entity"
	userrepo "github.com/ovaphlow/pitchfork/service-blog-go/internal/user/repo"
	"github.com/ovaphlow/pitchfork/service-blog-go/pkg/utilities"
)

// PasswordHasher defines minimal hashing interface (abstract so we can swap to argon2 later).
type PasswordHasher interface {
	Hash(pw string) (string, error)
	Verify(hash, pw string) bool
}

// BcryptHasher implementation. bcrypt salts every hash itself.
type BcryptHasher struct{ Cost int }

func (b BcryptHasher) Hash(pw string) (string, error) {
	cost := b.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	h, err := bcrypt.GenerateFromPassword([]byte(pw), cost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

func (b BcryptHasher) Verify(hash, pw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}

// bcrypt only reads the first 72 bytes and x/crypto refuses longer input
const maxPasswordBytes = 72

const (
	MsgBadCredentials = "Invalid username or password"
	MsgUsernameTaken  = "Username already exists"
)

// Policy holds the registration bounds.
type Policy struct {
	MinUsernameLen int
	MinPasswordLen int
}

// UserService orchestrates registration and password authentication.
type UserService struct {
	repo   userrepo.Repo
	hasher PasswordHasher
	newID  utilities.IDGenerator
	policy Policy
	logger *zap.SugaredLogger
	now    func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

func NewUserService(r userrepo.Repo, hasher PasswordHasher, newID utilities.IDGenerator, policy Policy, logger *zap.SugaredLogger) *UserService {
	if hasher == nil {
		hasher = BcryptHasher{Cost: 12}
	}
	if newID == nil {
		newID = utilities.NewKSUID
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &UserService{repo: r, hasher: hasher, newID: newID, policy: policy, logger: logger, now: time.Now}
}

// Register validates the credentials, rejects taken usernames and stores a
// new user with a hashed password.
func (s *UserService) Register(ctx context.Context, username, password string) (*entity.Principal, error) {
	if n := s.policy.MinUsernameLen; utf8.RuneCountInString(username) < n {
		return nil, apperr.Validation(fmt.Sprintf("Username must be at least %d characters", n))
	}
	if n := s.policy.MinPasswordLen; utf8.RuneCountInString(password) < n {
		return nil, apperr.Validation(fmt.Sprintf("Password must be at least %d characters", n))
	}
	if len(password) > maxPasswordBytes {
		return nil, apperr.Validation(fmt.Sprintf("Password must be at most %d bytes", maxPasswordBytes))
	}

	existing, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperr.Conflict(MsgUsernameTaken)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrInternal, "Registration failed", fmt.Errorf("hash password: %w", err))
	}
	u := &entity.User{
		ID:           s.newID(),
		Username:     username,
		PasswordHash: hash,
		CreatedAt:    s.now().UTC().Truncate(time.Microsecond),
	}
	if err := s.repo.Create(ctx, u); err != nil {
		// lost a race with a concurrent signup; the unique index caught it
		if errors.Is(err, userrepo.ErrUsernameTaken) {
			return nil, apperr.Conflict(MsgUsernameTaken)
		}
		return nil, err
	}
	s.logger.Infow("user registered", "user_id", u.ID, "username", u.Username)
	return u.Principal(), nil
}

// AuthenticatePassword checks the credentials. Unknown usernames and wrong
// passwords fail identically to avoid user enumeration.
func (s *UserService) AuthenticatePassword(ctx context.Context, username, password string) (*entity.Principal, error) {
	u, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if u == nil {
		// burn a comparison so response timing does not reveal the miss
		s.hasher.Verify(s.dummy(), password)
		return nil, apperr.Unauthorized(MsgBadCredentials)
	}
	if !s.hasher.Verify(u.PasswordHash, password) {
		return nil, apperr.Unauthorized(MsgBadCredentials)
	}
	return u.Principal(), nil
}

// GetPrincipal resolves a user id to its public identity, nil if unknown.
func (s *UserService) GetPrincipal(ctx context.Context, id string) (*entity.Principal, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil || u == nil {
		return nil, err
	}
	return u.Principal(), nil
}

func (s *UserService) dummy() string {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = s.hasher.Hash("not-a-real-password")
	})
	return s.dummyHash
}
