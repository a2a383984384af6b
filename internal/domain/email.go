package domain

import "context"

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(to, subject, html, text string) error
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// InvitationEmailData holds data for the invitation notification email.
type InvitationEmailData struct {
	Email      string
	Username   string
	EventTitle string
	HostName   string
	StartTime  string
}

// EmailService defines the contract for sending domain-level emails.
type EmailService interface {
	// SendInvitationNotice notifies a user that they were invited to an
	// event. Best-effort: callers log failures and continue.
	SendInvitationNotice(ctx context.Context, data *InvitationEmailData) error
}
