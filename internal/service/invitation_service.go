package service

import (
	"context"
	"fmt"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/tenantry/tenantry/internal/domain"
	"github.com/tenantry/tenantry/internal/platform/mailer"
	"github.com/tenantry/tenantry/internal/repo/postgres"
	"github.com/tenantry/tenantry/pkg/auth"
	"github.com/tenantry/tenantry/pkg/config"
	"github.com/tenantry/tenantry/pkg/events"
	"github.com/tenantry/tenantry/pkg/logger"
	"github.com/tenantry/tenantry/pkg/token"
)

type InvitationService interface {
	// Lookup resolves a token presented from an emailed link into the
	// pending invitation plus display data.
	Lookup(ctx context.Context, tok string) (*domain.InvitationDetails, error)

	// Claim creates the tenant account and consumes the invitation.
	// At most one Claim per token ever succeeds.
	Claim(ctx context.Context, tok string, req *domain.ClaimInvitationRequest) (*domain.ClaimInvitationResponse, error)

	// Create issues a new invitation for one of the landlord's units and
	// emails the claim link to the invitee.
	Create(ctx context.Context, landlordID int64, req *domain.CreateInvitationRequest) (*domain.Invitation, error)
}

type invitationService struct {
	invitations postgres.InvitationRepo
	tenants     postgres.TenantRepo
	directory   postgres.DirectoryRepo
	mailer      mailer.Service
	eventBus    events.Publisher
	config      *config.Config
}

func NewInvitationService(
	invitations postgres.InvitationRepo,
	tenants postgres.TenantRepo,
	directory postgres.DirectoryRepo,
	mailer mailer.Service,
	eventBus events.Publisher,
	config *config.Config,
) InvitationService {
	return &invitationService{
		invitations: invitations,
		tenants:     tenants,
		directory:   directory,
		mailer:      mailer,
		eventBus:    eventBus,
		config:      config,
	}
}

func (s *invitationService) Lookup(ctx context.Context, tok string) (*domain.InvitationDetails, error) {
	if tok == "" {
		return nil, domain.ErrNotFoundOrExpired
	}

	details, err := s.invitations.FindPendingByToken(ctx, tok)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrTransitionFailed, err)
	}
	if details == nil {
		return nil, domain.ErrNotFoundOrExpired
	}
	return details, nil
}

func (s *invitationService) Claim(ctx context.Context, tok string, req *domain.ClaimInvitationRequest) (*domain.ClaimInvitationResponse, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	// Re-validate at claim time: lookup and claim are separate requests and
	// the invitation may have been claimed or expired in between.
	details, err := s.invitations.FindPendingByToken(ctx, tok)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrTransitionFailed, err)
	}
	if details == nil {
		return nil, domain.ErrNotFoundOrExpired
	}

	name := req.Name
	if name == "" {
		name = details.InviteeName
	}
	phone := req.Phone
	if phone == "" {
		phone = details.InviteePhone
	}

	passwordHash, err := argon2id.CreateHash(req.Password, argon2id.DefaultParams)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	tenant, err := s.tenants.Create(ctx, details.InviteeEmail, passwordHash, name, phone, details.UnitID)
	if err != nil {
		return nil, fmt.Errorf("%w: account creation: %v", domain.ErrUpstreamDependencyFailed, err)
	}

	// Conditional update scoped by token AND is_verified=false. When two
	// claims race, both may have created an account above; exactly one
	// update affects a row. No compensating delete for the loser's account;
	// recovery is a support concern.
	marked, err := s.invitations.MarkVerified(ctx, tok)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrTransitionFailed, err)
	}
	if !marked {
		return nil, domain.ErrAlreadyClaimed
	}

	sessionToken, err := auth.NewTenantSession(tenant.ID, tenant.Email, s.config.Auth.JWTSecret, s.config.Auth.SessionTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	if err := s.eventBus.Publish(ctx, events.InvitationClaimed, events.InvitationClaimedEvent{
		InvitationID: details.ID,
		TenantID:     tenant.ID,
		UnitID:       details.UnitID,
		TenantEmail:  tenant.Email,
		ClaimedAt:    time.Now(),
	}); err != nil {
		logger.WarnContext(ctx, "Failed to publish invitation.claimed", "error", err, "invitation_id", details.ID)
	}

	return &domain.ClaimInvitationResponse{
		SessionToken: sessionToken,
		ExpiresIn:    int64(s.config.Auth.SessionTTL.Seconds()),
		Tenant:       tenant,
	}, nil
}

func (s *invitationService) Create(ctx context.Context, landlordID int64, req *domain.CreateInvitationRequest) (*domain.Invitation, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	owned, err := s.directory.UnitOwnedBy(ctx, req.UnitID, landlordID)
	if err != nil {
		return nil, fmt.Errorf("failed to check unit ownership: %w", err)
	}
	if !owned {
		return nil, fmt.Errorf("unit does not belong to this landlord")
	}

	tok, err := token.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	inv := &domain.Invitation{
		UnitID:          req.UnitID,
		LandlordID:      landlordID,
		InviteeEmail:    req.InviteeEmail,
		InviteeName:     req.InviteeName,
		InviteePhone:    req.InviteePhone,
		LeaseStart:      req.LeaseStart,
		LeaseEnd:        req.LeaseEnd,
		RentAmount:      req.RentAmount,
		SecurityDeposit: req.SecurityDeposit,
		Token:           tok,
		ExpiresAt:       time.Now().Add(s.config.Auth.InvitationTTL),
	}

	created, err := s.invitations.Create(ctx, inv)
	if err != nil {
		return nil, fmt.Errorf("failed to create invitation: %w", err)
	}

	unit, err := s.directory.FindUnitByID(ctx, created.UnitID)
	if err != nil || unit == nil {
		logger.WarnContext(ctx, "Failed to load unit for invitation email", "error", err, "unit_id", created.UnitID)
	}

	propertyName := ""
	unitNumber := ""
	if unit != nil {
		unitNumber = unit.UnitNumber
		if prop, err := s.directory.FindPropertyByID(ctx, unit.PropertyID); err == nil && prop != nil {
			propertyName = prop.Name
		}
	}

	link := s.buildClaimLink(created.Token)
	if err := s.mailer.SendTenantInvitation(created.InviteeEmail, created.InviteeName, propertyName, unitNumber, link, created.ExpiresAt); err != nil {
		logger.ErrorContext(ctx, "Failed to send invitation email", "error", err, "invitation_id", created.ID)
		// The invitation exists; the landlord can resend the link.
	}

	if err := s.eventBus.Publish(ctx, events.InvitationCreated, events.InvitationCreatedEvent{
		InvitationID: created.ID,
		LandlordID:   created.LandlordID,
		UnitID:       created.UnitID,
		InviteeEmail: created.InviteeEmail,
		ExpiresAt:    created.ExpiresAt,
		CreatedAt:    created.CreatedAt,
	}); err != nil {
		logger.WarnContext(ctx, "Failed to publish invitation.created", "error", err, "invitation_id", created.ID)
	}

	return created, nil
}

func (s *invitationService) buildClaimLink(tok string) string {
	return fmt.Sprintf("%s/invitations/claim?token=%s", s.config.App.BaseURL, tok)
}
