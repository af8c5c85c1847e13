package application

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-account-core/internal/domain/apperror"
	"github.com/oksasatya/go-account-core/internal/domain/entity"
	"github.com/oksasatya/go-account-core/internal/domain/repository"
	"github.com/oksasatya/go-account-core/pkg/helpers"
)

const (
	msgEmailInUse      = "Email already in use"
	msgWrongCreds      = "Email or password is wrong"
	msgNotVerified     = "Email is not verified"
	msgVerifySuccess   = "Verification successful"
	msgPasswordTooLong = "Password is too long"
	dummyPasswordSeed  = "timing-equaliser"
)

// PasswordHasher hashes and checks passwords.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain, digest string) bool
}

// TokenIssuer signs session tokens.
type TokenIssuer interface {
	Issue(userID string) (token string, expiresAt time.Time, err error)
}

// UserIndexer mirrors public user fields into a search directory.
type UserIndexer interface {
	Index(ctx context.Context, u *entity.User) error
}

// LoginResult is what a successful login hands back to the transport.
type LoginResult struct {
	Token string
	User  *entity.User
}

// AuthService composes the store, hasher, token issuer, verification
// workflow and avatar pipeline into the account use cases.
type AuthService struct {
	Repo         repository.UserRepository
	Hasher       PasswordHasher
	Tokens       TokenIssuer
	Verification *Verification
	Avatars      *AvatarPipeline
	Indexer      UserIndexer // optional
	Logger       *logrus.Logger

	dummyOnce sync.Once
	dummyHash string
}

func NewAuthService(repo repository.UserRepository, hasher PasswordHasher, tokens TokenIssuer, verification *Verification, avatars *AvatarPipeline, indexer UserIndexer, logger *logrus.Logger) *AuthService {
	return &AuthService{
		Repo:         repo,
		Hasher:       hasher,
		Tokens:       tokens,
		Verification: verification,
		Avatars:      avatars,
		Indexer:      indexer,
		Logger:       logger,
	}
}

// Register creates an unverified user with a gravatar default and emails a
// verification link.
func (s *AuthService) Register(ctx context.Context, email, password string) (*entity.User, error) {
	email = entity.NormalizeEmail(email)

	digest, err := s.Hasher.Hash(password)
	if err != nil {
		if errors.Is(err, helpers.ErrPasswordTooLong) {
			return nil, apperror.BadRequest(msgPasswordTooLong)
		}
		return nil, apperror.Internal(err)
	}
	u, err := s.Repo.Insert(ctx, entity.UserDraft{
		Email:        email,
		PasswordHash: digest,
		AvatarURL:    helpers.GravatarURL(email),
		Subscription: entity.SubscriptionStarter,
	})
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, apperror.Conflict(msgEmailInUse)
		}
		return nil, apperror.Internal(err)
	}
	countEvent("register")
	helpers.LogInfo(s.Logger, "user registered", logrus.Fields{"user_id": u.ID, "email": u.Email})

	if err := s.Verification.Start(ctx, u); err != nil {
		return nil, err
	}
	s.index(ctx, u)
	return u, nil
}

// Login checks the password before the verified flag so an unverified
// account is only revealed to someone who knows its password.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	u, err := s.Repo.FindByEmail(ctx, entity.NormalizeEmail(email))
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.Internal(err)
		}
		s.Hasher.Verify(password, s.dummyDigest())
		countEvent("login_failed")
		return nil, apperror.Unauthorized(msgWrongCreds)
	}
	if !s.Hasher.Verify(password, u.PasswordHash) {
		countEvent("login_failed")
		return nil, apperror.Unauthorized(msgWrongCreds)
	}
	if !u.Verified {
		countEvent("login_unverified")
		return nil, apperror.Unauthorized(msgNotVerified)
	}

	token, _, err := s.Tokens.Issue(u.ID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	updated, err := s.Repo.Update(ctx, u.ID, entity.UserPatch{Token: &token})
	if err != nil {
		return nil, storeError(err)
	}
	countEvent("login")
	return &LoginResult{Token: token, User: updated}, nil
}

// Logout clears the caller's session token.
func (s *AuthService) Logout(ctx context.Context, u *entity.User) error {
	if _, err := s.Repo.Update(ctx, u.ID, entity.UserPatch{ClearToken: true}); err != nil {
		return storeError(err)
	}
	countEvent("logout")
	return nil
}

// Current returns the caller as resolved by the session guard.
func (s *AuthService) Current(u *entity.User) *entity.User {
	return u
}

// VerifyEmail consumes code and returns the confirmation message.
func (s *AuthService) VerifyEmail(ctx context.Context, code string) (string, error) {
	if _, err := s.Verification.Consume(ctx, code); err != nil {
		return "", err
	}
	countEvent("verify")
	return msgVerifySuccess, nil
}

// ResendVerify rotates the pending code for email and resends it.
func (s *AuthService) ResendVerify(ctx context.Context, email string) error {
	return s.Verification.Resend(ctx, email)
}

// UpdateAvatar runs the avatar pipeline for the caller. Concurrent uploads
// by one user are not coordinated; the last to finish wins.
func (s *AuthService) UpdateAvatar(ctx context.Context, u *entity.User, up *Upload) (string, error) {
	avatarURL, err := s.Avatars.Process(ctx, u.ID, up)
	if err != nil {
		return "", err
	}
	if s.Indexer != nil {
		if fresh, err := s.Repo.FindByID(ctx, u.ID); err == nil {
			s.index(ctx, fresh)
		}
	}
	return avatarURL, nil
}

func (s *AuthService) index(ctx context.Context, u *entity.User) {
	if s.Indexer == nil {
		return
	}
	if err := s.Indexer.Index(ctx, u); err != nil {
		helpers.LogError(s.Logger, "index user", err, logrus.Fields{"user_id": u.ID})
	}
}

// dummyDigest is compared against when the email is unknown so the response
// takes as long as a real password check.
func (s *AuthService) dummyDigest() string {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = s.Hasher.Hash(dummyPasswordSeed)
	})
	return s.dummyHash
}
