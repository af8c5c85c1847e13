package entity

import (
	"strings"
	"time"
)

// Subscription is the account's plan tier.
type Subscription string

const (
	SubscriptionStarter  Subscription = "starter"
	SubscriptionPro      Subscription = "pro"
	SubscriptionBusiness Subscription = "business"
)

// Valid reports whether s is one of the known tiers.
func (s Subscription) Valid() bool {
	switch s {
	case SubscriptionStarter, SubscriptionPro, SubscriptionBusiness:
		return true
	}
	return false
}

// User is the aggregate root for the account domain.
// PasswordHash holds a bcrypt digest, never the plaintext.
//
// VerificationCode is non-nil only while the account is unverified and a
// verification email is pending. Token is the single live session token.
type User struct {
	ID               string
	Email            string
	PasswordHash     string
	AvatarURL        string
	Subscription     Subscription
	Verified         bool
	VerificationCode *string
	Token            *string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// HasToken reports whether the user currently holds a session token.
func (u *User) HasToken() bool {
	return u.Token != nil && *u.Token != ""
}

// UserDraft carries the fields required to create a User.
type UserDraft struct {
	Email        string
	PasswordHash string
	AvatarURL    string
	Subscription Subscription
}

// UserPatch is a partial update. Nil pointers leave the column untouched;
// the Clear flags set the nullable column to absent.
type UserPatch struct {
	AvatarURL             *string
	Verified              *bool
	VerificationCode      *string
	ClearVerificationCode bool
	Token                 *string
	ClearToken            bool

	// OnlyIfUnverified makes the update conditional on verified == false.
	OnlyIfUnverified bool
}

// Permits reports whether the patch's precondition holds for u.
func (p UserPatch) Permits(u *User) bool {
	return !p.OnlyIfUnverified || !u.Verified
}

// Apply mutates u according to the patch. Stores that keep records in
// memory use it so every backend agrees on patch semantics.
func (p UserPatch) Apply(u *User) {
	if p.AvatarURL != nil {
		u.AvatarURL = *p.AvatarURL
	}
	if p.Verified != nil {
		// verified is monotonic
		u.Verified = u.Verified || *p.Verified
	}
	if p.ClearVerificationCode {
		u.VerificationCode = nil
	} else if p.VerificationCode != nil {
		code := *p.VerificationCode
		u.VerificationCode = &code
	}
	if p.ClearToken {
		u.Token = nil
	} else if p.Token != nil {
		tok := *p.Token
		u.Token = &tok
	}
}

// NormalizeEmail trims and lower-cases an address before lookup or insert.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
