package domain

import "context"

// Mailer delivers one rendered message. Implementations live in adapters/email.
type Mailer interface {
	Send(to, subject, html, text string) error
}

// EmailTemplateRenderer turns a named template and its data into a subject
// and the two message bodies.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// VerifyEmailData fills the address confirmation message sent on registration.
type VerifyEmailData struct {
	Email          string
	Username       string
	VerifyURL      string
	ExpiresInHours int
}

// EmailService sends the account emails.
type EmailService interface {
	// SendVerifyEmail fails when the recipient is empty or delivery is rejected.
	SendVerifyEmail(ctx context.Context, data *VerifyEmailData) error
}
