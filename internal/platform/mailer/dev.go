package mailer

import (
	"time"

	"github.com/tenantry/tenantry/pkg/logger"
)

// DevMailer logs messages instead of delivering them.
type DevMailer struct{}

func NewDevMailer() *DevMailer {
	return &DevMailer{}
}

func (d *DevMailer) Send(toEmail, toName, subject, text, html string) (string, error) {
	logger.Info("[DEV MAIL]",
		"to", toEmail,
		"name", toName,
		"subject", subject,
		"text", text,
	)
	return "dev-mail", nil
}

func (d *DevMailer) SendTenantInvitation(toEmail, toName, propertyName, unitNumber, inviteLink string, expiresAt time.Time) error {
	logger.Info("[DEV MAIL] Tenant Invitation",
		"to", toEmail,
		"name", toName,
		"property", propertyName,
		"unit", unitNumber,
		"invite_link", inviteLink,
		"expires_at", expiresAt,
	)
	return nil
}

func (d *DevMailer) SendMaintenanceConfirmLink(toEmail, toName, description, confirmLink string) error {
	logger.Info("[DEV MAIL] Maintenance Confirmation Link",
		"to", toEmail,
		"name", toName,
		"description", description,
		"confirm_link", confirmLink,
	)
	return nil
}

var (
	_ Service = (*DevMailer)(nil)
	_ Service = (*SMTPMailer)(nil)
	_ Service = (*MailerSendClient)(nil)
)
