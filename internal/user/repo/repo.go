package repo

import (
	"context"
	"errors"

	"github.com/ovaphlow/pitchfork/service-blog-go/internal/user/entity"
)

// ErrUsernameTaken is returned by Create when the username already exists.
var ErrUsernameTaken = errors.New("username already exists")

// Repo is the storage contract for users. Lookups return (nil, nil) when no
// row matches.
type Repo interface {
	EnsureTable(ctx context.Context) error
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
}
