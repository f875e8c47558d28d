package repo

import (
	"context"
	"sync"

	"github.com/ovaphlow/pitchfork/service-blog-go/internal/user/entity"
)

// MemoryRepo keeps users in process memory.
type MemoryRepo struct {
	mu         sync.RWMutex
	byID       map[string]entity.User
	byUsername map[string]string
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{byID: map[string]entity.User{}, byUsername: map[string]string{}}
}

func (r *MemoryRepo) EnsureTable(context.Context) error { return nil }

func (r *MemoryRepo) Create(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byUsername[u.Username]; ok {
		return ErrUsernameTaken
	}
	r.byID[u.ID] = *u
	r.byUsername[u.Username] = u.ID
	return nil
}

func (r *MemoryRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r *MemoryRepo) GetByUsername(_ context.Context, username string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byUsername[username]
	if !ok {
		return nil, nil
	}
	u := r.byID[id]
	return &u, nil
}
