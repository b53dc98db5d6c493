package mailer

import "time"

type Service interface {
	// Send delivers one message to one recipient and returns the provider
	// message id when available.
	Send(toEmail, toName, subject, text, html string) (string, error)

	SendTenantInvitation(toEmail, toName, propertyName, unitNumber, inviteLink string, expiresAt time.Time) error
	SendMaintenanceConfirmLink(toEmail, toName, description, confirmLink string) error
}
