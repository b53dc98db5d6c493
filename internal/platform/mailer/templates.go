package mailer

import (
	"fmt"
	"time"
)

func invitationMessage(toName, propertyName, unitNumber, inviteLink string, expiresAt time.Time) (subject, text, html string) {
	subject = "You're invited to join " + propertyName
	text = fmt.Sprintf(
		"Hi %s,\n\nYou've been invited to become the tenant of unit %s at %s.\n\nAccept the invitation here: %s\n\nThis link expires on %s.",
		toName, unitNumber, propertyName, inviteLink, expiresAt.Format("January 2, 2006"),
	)
	html = fmt.Sprintf(`
		<h2>You're invited!</h2>
		<p>Hi %s,</p>
		<p>You've been invited to become the tenant of unit <strong>%s</strong> at <strong>%s</strong>.</p>
		<p><a href="%s" style="background-color: #2563eb; color: white; padding: 10px 20px; text-decoration: none; border-radius: 5px;">Accept Invitation</a></p>
		<p>This link expires on %s.</p>
		<p>If you weren't expecting this invitation, please ignore this email.</p>
	`, toName, unitNumber, propertyName, inviteLink, expiresAt.Format("January 2, 2006"))
	return subject, text, html
}

func confirmLinkMessage(toName, description, confirmLink string) (subject, text, html string) {
	subject = "Confirm your maintenance visit"
	text = fmt.Sprintf(
		"Hi %s,\n\nA maintenance visit has been proposed for your unit:\n\n%s\n\nConfirm the visit here: %s",
		toName, description, confirmLink,
	)
	html = fmt.Sprintf(`
		<h2>Maintenance visit proposed</h2>
		<p>Hi %s,</p>
		<p>A maintenance visit has been proposed for your unit:</p>
		<blockquote>%s</blockquote>
		<p><a href="%s" style="background-color: #2563eb; color: white; padding: 10px 20px; text-decoration: none; border-radius: 5px;">Confirm Visit</a></p>
	`, toName, description, confirmLink)
	return subject, text, html
}
