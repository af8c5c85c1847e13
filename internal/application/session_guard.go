package application

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"

	"github.com/oksasatya/go-account-core/internal/domain/apperror"
	"github.com/oksasatya/go-account-core/internal/domain/entity"
	"github.com/oksasatya/go-account-core/internal/domain/repository"
	"github.com/oksasatya/go-account-core/pkg/helpers"
)

const bearerPrefix = "Bearer "

// TokenVerifier recovers a user id from a signed token.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// SessionGuard resolves an Authorization header to the user whose current
// session token it carries.
type SessionGuard struct {
	repo   repository.UserRepository
	tokens TokenVerifier
}

func NewSessionGuard(repo repository.UserRepository, tokens TokenVerifier) *SessionGuard {
	return &SessionGuard{repo: repo, tokens: tokens}
}

func (g *SessionGuard) Resolve(ctx context.Context, header string) (*entity.User, error) {
	if !strings.HasPrefix(header, bearerPrefix) {
		return nil, errNotAuthorized()
	}
	token := header[len(bearerPrefix):]
	if token == "" || strings.ContainsAny(token, " \t") {
		return nil, errNotAuthorized()
	}

	userID, err := g.tokens.Verify(token)
	if err != nil {
		if errors.Is(err, helpers.ErrSigningKeyMissing) {
			return nil, apperror.Internal(err)
		}
		return nil, errNotAuthorized()
	}

	u, err := g.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errNotAuthorized()
		}
		return nil, apperror.Internal(err)
	}
	// a token that still verifies but was replaced or cleared is revoked
	if !u.HasToken() || subtle.ConstantTimeCompare([]byte(*u.Token), []byte(token)) != 1 {
		return nil, errNotAuthorized()
	}
	return u, nil
}

func errNotAuthorized() error { return apperror.Unauthorized("Not authorized") }
