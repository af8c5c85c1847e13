// Package cache decorates a UserRepository with a Redis read-through cache
// for id lookups, which the session guard performs on every request.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-account-core/internal/domain/entity"
	"github.com/oksasatya/go-account-core/internal/domain/repository"
	"github.com/oksasatya/go-account-core/pkg/helpers"
)

const keyPrefix = "user:"

func userKey(id string) string { return keyPrefix + id }

// cachedUser is the Redis representation. Kept separate from entity.User so
// the domain type carries no serialization tags.
type cachedUser struct {
	ID               string    `json:"id"`
	Email            string    `json:"email"`
	PasswordHash     string    `json:"password_hash"`
	AvatarURL        string    `json:"avatar_url"`
	Subscription     string    `json:"subscription"`
	Verified         bool      `json:"verified"`
	VerificationCode *string   `json:"verification_code,omitempty"`
	Token            *string   `json:"token,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func toCached(u *entity.User) cachedUser {
	return cachedUser{
		ID:               u.ID,
		Email:            u.Email,
		PasswordHash:     u.PasswordHash,
		AvatarURL:        u.AvatarURL,
		Subscription:     string(u.Subscription),
		Verified:         u.Verified,
		VerificationCode: u.VerificationCode,
		Token:            u.Token,
		CreatedAt:        u.CreatedAt,
		UpdatedAt:        u.UpdatedAt,
	}
}

func (c cachedUser) toEntity() *entity.User {
	return &entity.User{
		ID:               c.ID,
		Email:            c.Email,
		PasswordHash:     c.PasswordHash,
		AvatarURL:        c.AvatarURL,
		Subscription:     entity.Subscription(c.Subscription),
		Verified:         c.Verified,
		VerificationCode: c.VerificationCode,
		Token:            c.Token,
		CreatedAt:        c.CreatedAt,
		UpdatedAt:        c.UpdatedAt,
	}
}

type UserRepository struct {
	next   repository.UserRepository
	rdb    redis.Cmdable
	ttl    time.Duration
	logger *logrus.Logger
}

func NewUserRepository(next repository.UserRepository, rdb redis.Cmdable, ttl time.Duration, logger *logrus.Logger) *UserRepository {
	return &UserRepository{next: next, rdb: rdb, ttl: ttl, logger: logger}
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*entity.User, error) {
	var cu cachedUser
	hit, err := helpers.RedisGetJSON(ctx, r.rdb, userKey(id), &cu)
	if err != nil {
		helpers.LogError(r.logger, "user cache read failed", err, logrus.Fields{"user_id": id})
	}
	if hit {
		return cu.toEntity(), nil
	}

	u, err := r.next.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	// the fill only lands on an empty key; an entry written by Update in the
	// meantime is newer than u and must win
	if _, err := helpers.RedisSetNXJSON(ctx, r.rdb, userKey(id), toCached(u), r.ttl); err != nil {
		helpers.LogError(r.logger, "user cache fill failed", err, logrus.Fields{"user_id": id})
	}
	return u, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.next.FindByEmail(ctx, email)
}

func (r *UserRepository) FindByVerificationCode(ctx context.Context, code string) (*entity.User, error) {
	return r.next.FindByVerificationCode(ctx, code)
}

func (r *UserRepository) Insert(ctx context.Context, d entity.UserDraft) (*entity.User, error) {
	return r.next.Insert(ctx, d)
}

// Update writes through to Redis. If the cache can be neither refreshed nor
// evicted the error is returned, since a stale entry would keep a revoked
// token valid until it expires.
func (r *UserRepository) Update(ctx context.Context, id string, p entity.UserPatch) (*entity.User, error) {
	u, err := r.next.Update(ctx, id, p)
	if err != nil {
		return nil, err
	}
	key := userKey(id)
	if setErr := helpers.RedisSetJSON(ctx, r.rdb, key, toCached(u), r.ttl); setErr != nil {
		if delErr := helpers.RedisDel(ctx, r.rdb, key); delErr != nil {
			return nil, fmt.Errorf("user cache stale for %s: %w", id, delErr)
		}
	}
	return u, nil
}

var _ repository.UserRepository = (*UserRepository)(nil)
