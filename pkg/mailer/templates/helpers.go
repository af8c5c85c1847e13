package templates

import (
	"time"
)

// Branding carries the company fields every email shows.
type Branding struct {
	AppName     string
	CompanyName string
	SupportURL  string
}

// Option pattern
type Option func(*EmailData)

func WithTime(t time.Time) Option {
	return func(d *EmailData) {
		utc := t.UTC()
		d.TimeAt = utc
		d.Time = utc.Format("02 January 2006, 15:04")
	}
}

// NewVerifyEmailData builds the data for the verify_email template.
func NewVerifyEmailData(b Branding, email, verifyURL string, opts ...Option) EmailData {
	d := EmailData{
		Email:       email,
		AppName:     b.AppName,
		CompanyName: b.CompanyName,
		SupportURL:  b.SupportURL,
		VerifyURL:   verifyURL,
	}
	for _, o := range opts {
		o(&d)
	}
	return d
}
