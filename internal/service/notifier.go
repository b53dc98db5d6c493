package service

import (
	"context"

	"github.com/tenantry/tenantry/internal/domain"
	"github.com/tenantry/tenantry/internal/platform/mailer"
	"github.com/tenantry/tenantry/pkg/logger"
)

// Notifier dispatches one message per resolved target. Each dispatch is
// attempted independently; a failed recipient never prevents attempting the
// rest. Retry and backoff belong to the delivery provider, not here.
type Notifier interface {
	Fanout(ctx context.Context, targets []domain.NotificationTarget, subject, text, html string) int
}

type mailNotifier struct {
	mailer mailer.Service
}

func NewNotifier(m mailer.Service) Notifier {
	return &mailNotifier{mailer: m}
}

// Fanout returns the number of failed dispatches, for operational logging
// only; callers treat the committed state transition as the outcome.
func (n *mailNotifier) Fanout(ctx context.Context, targets []domain.NotificationTarget, subject, text, html string) int {
	failed := 0
	for _, t := range targets {
		if _, err := n.mailer.Send(t.Email, t.Name, subject, text, html); err != nil {
			logger.ErrorContext(ctx, "Notification dispatch failed",
				"error", err,
				"recipient", t.Email,
				"subject", subject,
			)
			failed++
			continue
		}
		logger.DebugContext(ctx, "Notification dispatched", "recipient", t.Email, "subject", subject)
	}
	return failed
}
