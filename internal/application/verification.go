package application

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-account-core/internal/domain/apperror"
	"github.com/oksasatya/go-account-core/internal/domain/entity"
	"github.com/oksasatya/go-account-core/internal/domain/repository"
	"github.com/oksasatya/go-account-core/pkg/helpers"
	"github.com/oksasatya/go-account-core/pkg/mailer"
	"github.com/oksasatya/go-account-core/pkg/mailer/templates"
)

// MailDispatcher hands a message off for background delivery.
type MailDispatcher interface {
	Dispatch(msg mailer.Message)
}

// Verification drives the Unverified(code) -> Verified lifecycle.
type Verification struct {
	repo     repository.UserRepository
	mail     MailDispatcher
	branding templates.Branding
	linkBase string
	logger   *logrus.Logger

	// newCode is swapped in tests.
	newCode func() (string, error)
}

func NewVerification(repo repository.UserRepository, mail MailDispatcher, branding templates.Branding, linkBase string, logger *logrus.Logger) *Verification {
	return &Verification{
		repo:     repo,
		mail:     mail,
		branding: branding,
		linkBase: linkBase,
		logger:   logger,
		newCode:  helpers.GenVerificationCode,
	}
}

// Start gives u a fresh code and emails the verification link. Delivery is
// asynchronous; only storage failures are returned.
func (v *Verification) Start(ctx context.Context, u *entity.User) error {
	code, err := v.newCode()
	if err != nil {
		return apperror.Internal(err)
	}
	updated, err := v.repo.Update(ctx, u.ID, entity.UserPatch{VerificationCode: &code, OnlyIfUnverified: true})
	if err != nil {
		if errors.Is(err, repository.ErrPrecondition) {
			return errAlreadyVerified()
		}
		return storeError(err)
	}
	v.send(updated.Email, code)
	return nil
}

// Consume marks the code's owner verified and removes the code, so a second
// call with the same code is NotFound.
func (v *Verification) Consume(ctx context.Context, code string) (string, error) {
	u, err := v.repo.FindByVerificationCode(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", apperror.NotFound("User not found")
		}
		return "", apperror.Internal(err)
	}
	verified := true
	patch := entity.UserPatch{Verified: &verified, ClearVerificationCode: true, OnlyIfUnverified: true}
	if _, err := v.repo.Update(ctx, u.ID, patch); err != nil {
		if errors.Is(err, repository.ErrPrecondition) {
			// consumed concurrently
			return "", apperror.NotFound("User not found")
		}
		return "", storeError(err)
	}
	return u.ID, nil
}

// Resend rotates the pending code for email and sends a new link.
func (v *Verification) Resend(ctx context.Context, email string) error {
	u, err := v.repo.FindByEmail(ctx, entity.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperror.NotFound("User not found")
		}
		return apperror.Internal(err)
	}
	if u.Verified {
		return errAlreadyVerified()
	}
	return v.Start(ctx, u)
}

func (v *Verification) send(email, code string) {
	data := templates.NewVerifyEmailData(v.branding, email, v.linkBase+code, templates.WithTime(time.Now()))
	subject, text, html, err := templates.Render(templates.VerifyEmail, data)
	if err != nil {
		helpers.LogError(v.logger, "render verification email", err, logrus.Fields{"email": email})
		return
	}
	v.mail.Dispatch(mailer.Message{To: email, Subject: subject, Text: text, HTML: html})
}

func errAlreadyVerified() error {
	return apperror.AlreadyVerified("Verification has already been passed")
}

// storeError maps repository sentinels onto domain kinds.
func storeError(err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return apperror.NotFound("User not found")
	case errors.Is(err, repository.ErrConflict):
		return apperror.Conflict("Email already in use")
	default:
		return apperror.Internal(err)
	}
}
