package repository

import (
	"context"
	"errors"

	"github.com/oksasatya/go-account-core/internal/domain/entity"
)

var (
	// ErrNotFound is returned when no user matches the lookup.
	ErrNotFound = errors.New("user not found")
	// ErrConflict is returned when an insert would duplicate a unique email.
	ErrConflict = errors.New("email already exists")
	// ErrPrecondition is returned when a conditional update finds the record
	// in a state the patch does not allow.
	ErrPrecondition = errors.New("user state precondition failed")
)

// UserRepository is the credential store contract. Every operation is
// atomic with respect to a single user record.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	FindByID(ctx context.Context, id string) (*entity.User, error)
	FindByVerificationCode(ctx context.Context, code string) (*entity.User, error)
	Insert(ctx context.Context, draft entity.UserDraft) (*entity.User, error)
	Update(ctx context.Context, id string, patch entity.UserPatch) (*entity.User, error)
}
