// Package memory is a process-local UserRepository used by tests and by
// STORE_DRIVER=memory.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oksasatya/go-account-core/internal/domain/entity"
	"github.com/oksasatya/go-account-core/internal/domain/repository"
)

type UserRepository struct {
	mu      sync.RWMutex
	byID    map[string]*entity.User
	byEmail map[string]string
	byCode  map[string]string
	now     func() time.Time
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		byID:    make(map[string]*entity.User),
		byEmail: make(map[string]string),
		byCode:  make(map[string]string),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// clone hands out copies so callers never alias stored records.
func clone(u *entity.User) *entity.User {
	c := *u
	if u.VerificationCode != nil {
		code := *u.VerificationCode
		c.VerificationCode = &code
	}
	if u.Token != nil {
		tok := *u.Token
		c.Token = &tok
	}
	return &c
}

func (r *UserRepository) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byEmail[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return clone(r.byID[id]), nil
}

func (r *UserRepository) FindByID(_ context.Context, id string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return clone(u), nil
}

func (r *UserRepository) FindByVerificationCode(_ context.Context, code string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byCode[code]
	if !ok || code == "" {
		return nil, repository.ErrNotFound
	}
	return clone(r.byID[id]), nil
}

func (r *UserRepository) Insert(_ context.Context, d entity.UserDraft) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byEmail[d.Email]; exists {
		return nil, repository.ErrConflict
	}
	sub := d.Subscription
	if sub == "" {
		sub = entity.SubscriptionStarter
	}
	now := r.now()
	u := &entity.User{
		ID:           uuid.NewString(),
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		AvatarURL:    d.AvatarURL,
		Subscription: sub,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	r.byID[u.ID] = u
	r.byEmail[u.Email] = u.ID
	return clone(u), nil
}

func (r *UserRepository) Update(_ context.Context, id string, p entity.UserPatch) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if !p.Permits(u) {
		return nil, repository.ErrPrecondition
	}
	if !p.ClearVerificationCode && p.VerificationCode != nil {
		if owner, taken := r.byCode[*p.VerificationCode]; taken && owner != id {
			return nil, repository.ErrConflict
		}
	}

	if u.VerificationCode != nil {
		delete(r.byCode, *u.VerificationCode)
	}
	p.Apply(u)
	if u.VerificationCode != nil {
		r.byCode[*u.VerificationCode] = id
	}
	u.UpdatedAt = r.now()
	return clone(u), nil
}

var _ repository.UserRepository = (*UserRepository)(nil)
