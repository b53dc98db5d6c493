package service

import (
	"context"
	"fmt"
	"time"

	"github.com/tenantry/tenantry/internal/domain"
	"github.com/tenantry/tenantry/internal/platform/mailer"
	"github.com/tenantry/tenantry/internal/repo/postgres"
	"github.com/tenantry/tenantry/pkg/config"
	"github.com/tenantry/tenantry/pkg/events"
	"github.com/tenantry/tenantry/pkg/logger"
	"github.com/tenantry/tenantry/pkg/token"
)

type MaintenanceService interface {
	// Confirm consumes a confirmation token from an emailed link: moves the
	// request to scheduled, stamps the server time, and fans out
	// notifications. A repeat call for an already scheduled request returns
	// the same result without re-stamping.
	Confirm(ctx context.Context, tok string) (*domain.ConfirmationResult, error)

	// Create records a maintenance request and emails the confirmation link
	// to the tenant when one is referenced.
	Create(ctx context.Context, req *domain.CreateMaintenanceRequest) (*domain.MaintenanceRequest, error)
}

type maintenanceService struct {
	maintenance postgres.MaintenanceRepo
	tenants     postgres.TenantRepo
	directory   postgres.DirectoryRepo
	notifier    Notifier
	mailer      mailer.Service
	eventBus    events.Publisher
	config      *config.Config
}

func NewMaintenanceService(
	maintenance postgres.MaintenanceRepo,
	tenants postgres.TenantRepo,
	directory postgres.DirectoryRepo,
	notifier Notifier,
	mailer mailer.Service,
	eventBus events.Publisher,
	config *config.Config,
) MaintenanceService {
	return &maintenanceService{
		maintenance: maintenance,
		tenants:     tenants,
		directory:   directory,
		notifier:    notifier,
		mailer:      mailer,
		eventBus:    eventBus,
		config:      config,
	}
}

func (s *maintenanceService) Confirm(ctx context.Context, tok string) (*domain.ConfirmationResult, error) {
	if tok == "" {
		return nil, domain.ErrNotFoundOrExpired
	}

	req, err := s.maintenance.FindByConfirmationToken(ctx, tok)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrTransitionFailed, err)
	}
	if req == nil {
		return nil, domain.ErrNotFoundOrExpired
	}

	updated, err := s.maintenance.ConfirmSchedule(ctx, tok)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrTransitionFailed, err)
	}

	if !updated {
		// Email links get clicked more than once. A request that is already
		// scheduled renders the same confirmation the first click saw, with
		// the original timestamp and no second fan-out. Re-read the record:
		// the snapshot above may predate a concurrent confirmation that won
		// the conditional update. Any other status is terminal for this
		// workflow and indistinguishable from absent.
		current, err := s.maintenance.FindByConfirmationToken(ctx, tok)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrTransitionFailed, err)
		}
		if current != nil && current.Status == domain.MaintenanceScheduled && current.ScheduledTime != nil {
			return s.buildResult(ctx, current, *current.ScheduledTime), nil
		}
		return nil, domain.ErrNotFoundOrExpired
	}

	fresh, err := s.maintenance.FindByConfirmationToken(ctx, tok)
	if err != nil || fresh == nil {
		logger.WarnContext(ctx, "Failed to re-read confirmed request", "error", err, "request_id", req.ID)
		fresh = req
	}
	scheduledAt := time.Now()
	if fresh.ScheduledTime != nil {
		scheduledAt = *fresh.ScheduledTime
	}

	result := s.buildResult(ctx, fresh, scheduledAt)

	targets := s.resolveTargets(ctx, fresh)
	subject, text, html := scheduledMessage(fresh.Description, result.VendorName, scheduledAt)
	if failed := s.notifier.Fanout(ctx, targets, subject, text, html); failed > 0 {
		logger.WarnContext(ctx, "Some confirmation notifications failed",
			"request_id", fresh.ID, "failed", failed, "targets", len(targets))
	}

	if err := s.eventBus.Publish(ctx, events.MaintenanceScheduled, events.MaintenanceScheduledEvent{
		RequestID:     fresh.ID,
		PropertyID:    fresh.PropertyID,
		VendorID:      fresh.VendorID,
		ScheduledTime: scheduledAt,
	}); err != nil {
		logger.WarnContext(ctx, "Failed to publish maintenance.scheduled", "error", err, "request_id", fresh.ID)
	}

	return result, nil
}

func (s *maintenanceService) Create(ctx context.Context, req *domain.CreateMaintenanceRequest) (*domain.MaintenanceRequest, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	tok, err := token.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	created, err := s.maintenance.Create(ctx, &domain.MaintenanceRequest{
		Description:       req.Description,
		ConfirmationToken: &tok,
		TenantID:          req.TenantID,
		PropertyID:        req.PropertyID,
		VendorID:          req.VendorID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create maintenance request: %w", err)
	}

	if created.TenantID != nil {
		if tenant, err := s.tenants.FindByID(ctx, *created.TenantID); err == nil && tenant != nil {
			link := fmt.Sprintf("%s/confirm?token=%s", s.config.App.BaseURL, tok)
			if err := s.mailer.SendMaintenanceConfirmLink(tenant.Email, tenant.Name, created.Description, link); err != nil {
				logger.ErrorContext(ctx, "Failed to send confirmation link", "error", err, "request_id", created.ID)
			}
		} else if err != nil {
			logger.WarnContext(ctx, "Failed to resolve tenant for confirmation link", "error", err, "tenant_id", *created.TenantID)
		}
	}

	if err := s.eventBus.Publish(ctx, events.MaintenanceRequested, events.MaintenanceRequestedEvent{
		RequestID:   created.ID,
		PropertyID:  created.PropertyID,
		TenantID:    created.TenantID,
		VendorID:    created.VendorID,
		Description: created.Description,
		CreatedAt:   created.CreatedAt,
	}); err != nil {
		logger.WarnContext(ctx, "Failed to publish maintenance.requested", "error", err, "request_id", created.ID)
	}

	return created, nil
}

func (s *maintenanceService) buildResult(ctx context.Context, req *domain.MaintenanceRequest, scheduledAt time.Time) *domain.ConfirmationResult {
	vendorName := ""
	if req.VendorID != nil {
		if vendor, err := s.directory.FindVendorByID(ctx, *req.VendorID); err == nil && vendor != nil {
			vendorName = vendor.Name
		}
	}
	return &domain.ConfirmationResult{
		RequestID:     req.ID,
		Description:   req.Description,
		ScheduledTime: scheduledAt,
		VendorName:    vendorName,
	}
}

// resolveTargets follows the request's references: tenant directly, owner
// through the property. The vendor is named in the message body but is not
// an email target. Each lookup is independent; a missing or broken
// reference drops that recipient only.
func (s *maintenanceService) resolveTargets(ctx context.Context, req *domain.MaintenanceRequest) []domain.NotificationTarget {
	var targets []domain.NotificationTarget

	if req.TenantID != nil {
		tenant, err := s.tenants.FindByID(ctx, *req.TenantID)
		if err != nil {
			logger.WarnContext(ctx, "Failed to resolve tenant for notification", "error", err, "tenant_id", *req.TenantID)
		} else if tenant != nil {
			targets = append(targets, domain.NotificationTarget{Email: tenant.Email, Name: tenant.Name})
		}
	}

	if req.PropertyID != nil {
		property, err := s.directory.FindPropertyByID(ctx, *req.PropertyID)
		if err != nil {
			logger.WarnContext(ctx, "Failed to resolve property for notification", "error", err, "property_id", *req.PropertyID)
		} else if property != nil {
			owner, err := s.directory.FindLandlordByID(ctx, property.LandlordID)
			if err != nil {
				logger.WarnContext(ctx, "Failed to resolve owner for notification", "error", err, "landlord_id", property.LandlordID)
			} else if owner != nil {
				targets = append(targets, domain.NotificationTarget{Email: owner.Email, Name: owner.Name})
			}
		}
	}

	return targets
}

func scheduledMessage(description, vendorName string, scheduledAt time.Time) (subject, text, html string) {
	subject = "Maintenance visit confirmed"
	vendorLine := ""
	if vendorName != "" {
		vendorLine = fmt.Sprintf("\nService will be performed by %s.", vendorName)
	}
	text = fmt.Sprintf(
		"The maintenance visit has been confirmed for %s.\n\nRequest: %s%s",
		scheduledAt.Format(time.RFC1123), description, vendorLine,
	)
	vendorHTML := ""
	if vendorName != "" {
		vendorHTML = fmt.Sprintf("<p>Service will be performed by <strong>%s</strong>.</p>", vendorName)
	}
	html = fmt.Sprintf(`
		<h2>Maintenance visit confirmed</h2>
		<p>The visit has been confirmed for <strong>%s</strong>.</p>
		<blockquote>%s</blockquote>
		%s
	`, scheduledAt.Format(time.RFC1123), description, vendorHTML)
	return subject, text, html
}
