package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/tenantry/tenantry/internal/domain"
	"github.com/tenantry/tenantry/pkg/config"
	"github.com/tenantry/tenantry/pkg/events"
)

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{BaseURL: "http://localhost:5173"},
		Auth: config.AuthConfig{
			JWTSecret:     "test-secret",
			SessionTTL:    24 * time.Hour,
			InvitationTTL: 7 * 24 * time.Hour,
		},
	}
}

func seedInvitation(repo *mockInvitationRepo, token string, expiresAt time.Time, verified bool) {
	d := &domain.InvitationDetails{
		Invitation: domain.Invitation{
			ID:           1,
			UnitID:       10,
			LandlordID:   20,
			InviteeEmail: "invitee@example.com",
			InviteeName:  "Jordan Invitee",
			Token:        token,
			ExpiresAt:    expiresAt,
			IsVerified:   verified,
		},
		UnitNumber:   "4B",
		PropertyName: "Maple Court",
		LandlordName: "Sam Owner",
	}
	if verified {
		now := time.Now()
		d.VerifiedAt = &now
	}
	repo.invitations[token] = d
}

func newInvitationFixture() (*mockInvitationRepo, *mockTenantRepo, *mockDirectoryRepo, *mockMailer, *mockPublisher, InvitationService) {
	invitations := newMockInvitationRepo()
	tenants := newMockTenantRepo()
	directory := newMockDirectoryRepo()
	mail := newMockMailer()
	bus := &mockPublisher{}
	svc := NewInvitationService(invitations, tenants, directory, mail, bus, testConfig())
	return invitations, tenants, directory, mail, bus, svc
}

func TestLookupUnknownToken(t *testing.T) {
	_, _, _, _, _, svc := newInvitationFixture()

	_, err := svc.Lookup(context.Background(), "no-such-token")
	if !errors.Is(err, domain.ErrNotFoundOrExpired) {
		t.Fatalf("expected ErrNotFoundOrExpired, got %v", err)
	}
}

func TestLookupExpiredToken(t *testing.T) {
	invitations, _, _, _, _, svc := newInvitationFixture()
	seedInvitation(invitations, "expired-token", time.Now().Add(-time.Hour), false)

	_, err := svc.Lookup(context.Background(), "expired-token")
	if !errors.Is(err, domain.ErrNotFoundOrExpired) {
		t.Fatalf("expected ErrNotFoundOrExpired for expired token, got %v", err)
	}
}

func TestLookupClaimedToken(t *testing.T) {
	invitations, _, _, _, _, svc := newInvitationFixture()
	seedInvitation(invitations, "claimed-token", time.Now().Add(time.Hour), true)

	_, err := svc.Lookup(context.Background(), "claimed-token")
	if !errors.Is(err, domain.ErrNotFoundOrExpired) {
		t.Fatalf("expected ErrNotFoundOrExpired for claimed token, got %v", err)
	}
}

func TestLookupPendingToken(t *testing.T) {
	invitations, _, _, _, _, svc := newInvitationFixture()
	seedInvitation(invitations, "pending-token", time.Now().Add(time.Hour), false)

	details, err := svc.Lookup(context.Background(), "pending-token")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if details.InviteeEmail != "invitee@example.com" {
		t.Errorf("expected invitee email, got %q", details.InviteeEmail)
	}
	if details.PropertyName != "Maple Court" {
		t.Errorf("expected property name, got %q", details.PropertyName)
	}
}

func TestClaimSuccess(t *testing.T) {
	invitations, tenants, _, _, bus, svc := newInvitationFixture()
	seedInvitation(invitations, "abc123", time.Now().Add(time.Hour), false)

	res, err := svc.Claim(context.Background(), "abc123", &domain.ClaimInvitationRequest{
		Password: "correct-horse-battery",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.SessionToken == "" {
		t.Error("expected a session token")
	}
	if res.Tenant == nil || res.Tenant.Email != "invitee@example.com" {
		t.Fatalf("expected tenant account for invitee, got %+v", res.Tenant)
	}
	if res.Tenant.PasswordHash == "correct-horse-battery" {
		t.Error("password stored unhashed")
	}
	if len(tenants.tenants) != 1 {
		t.Errorf("expected 1 tenant created, got %d", len(tenants.tenants))
	}
	if !invitations.invitations["abc123"].IsVerified {
		t.Error("invitation was not marked verified")
	}
	if bus.published(events.InvitationClaimed) != 1 {
		t.Errorf("expected 1 invitation.claimed event, got %d", bus.published(events.InvitationClaimed))
	}
}

func TestClaimShortPassword(t *testing.T) {
	invitations, _, _, _, _, svc := newInvitationFixture()
	seedInvitation(invitations, "abc123", time.Now().Add(time.Hour), false)

	_, err := svc.Claim(context.Background(), "abc123", &domain.ClaimInvitationRequest{Password: "short"})
	if err == nil {
		t.Fatal("expected validation error for short password")
	}
	if invitations.invitations["abc123"].IsVerified {
		t.Error("invitation must stay pending after a rejected claim")
	}
}

func TestClaimAlreadyClaimed(t *testing.T) {
	// The qualifying read raced ahead of a concurrent claim: the row still
	// looked pending, but the conditional update affects zero rows.
	invitations, _, _, _, _, svc := newInvitationFixture()
	seedInvitation(invitations, "abc123", time.Now().Add(time.Hour), true)
	invitations.forceStaleFind = true

	_, err := svc.Claim(context.Background(), "abc123", &domain.ClaimInvitationRequest{Password: "correct-horse-battery"})
	if !errors.Is(err, domain.ErrAlreadyClaimed) {
		t.Fatalf("expected ErrAlreadyClaimed, got %v", err)
	}
}

func TestClaimConcurrentSingleWinner(t *testing.T) {
	invitations, _, _, _, bus, svc := newInvitationFixture()
	seedInvitation(invitations, "abc123", time.Now().Add(time.Hour), false)

	const claimers = 8
	var wg sync.WaitGroup
	errs := make([]error, claimers)
	for i := 0; i < claimers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Claim(context.Background(), "abc123", &domain.ClaimInvitationRequest{
				Password: fmt.Sprintf("password-%d-extra", i),
			})
		}(i)
	}
	wg.Wait()

	won := 0
	for _, err := range errs {
		switch {
		case err == nil:
			won++
		case errors.Is(err, domain.ErrAlreadyClaimed), errors.Is(err, domain.ErrNotFoundOrExpired):
			// losers see one of the two, depending on where the race was lost
		default:
			t.Errorf("unexpected loser error: %v", err)
		}
	}
	if won != 1 {
		t.Fatalf("expected exactly 1 successful claim, got %d", won)
	}
	if !invitations.invitations["abc123"].IsVerified {
		t.Error("invitation was not marked verified")
	}
	if bus.published(events.InvitationClaimed) != 1 {
		t.Errorf("expected exactly 1 invitation.claimed event, got %d", bus.published(events.InvitationClaimed))
	}
}

func TestClaimAccountCreationFails(t *testing.T) {
	invitations, tenants, _, _, _, svc := newInvitationFixture()
	seedInvitation(invitations, "abc123", time.Now().Add(time.Hour), false)
	tenants.createErr = errors.New("tenants table unavailable")

	_, err := svc.Claim(context.Background(), "abc123", &domain.ClaimInvitationRequest{Password: "correct-horse-battery"})
	if !errors.Is(err, domain.ErrUpstreamDependencyFailed) {
		t.Fatalf("expected ErrUpstreamDependencyFailed, got %v", err)
	}
	if invitations.invitations["abc123"].IsVerified {
		t.Error("invitation must stay claimable when account creation fails")
	}
}

func TestCreateInvitationUnitNotOwned(t *testing.T) {
	_, _, directory, _, _, svc := newInvitationFixture()
	directory.ownership[10] = 99 // someone else's unit

	_, err := svc.Create(context.Background(), 20, &domain.CreateInvitationRequest{
		UnitID:       10,
		InviteeEmail: "invitee@example.com",
		InviteeName:  "Jordan Invitee",
		LeaseStart:   time.Now(),
		LeaseEnd:     time.Now().AddDate(1, 0, 0),
		RentAmount:   120000,
	})
	if err == nil {
		t.Fatal("expected error for unit owned by another landlord")
	}
}

func TestCreateInvitationSendsEmail(t *testing.T) {
	invitations, _, directory, mail, bus, svc := newInvitationFixture()
	directory.ownership[10] = 20
	directory.units[10] = &domain.Unit{ID: 10, PropertyID: 5, UnitNumber: "4B"}
	directory.properties[5] = &domain.Property{ID: 5, LandlordID: 20, Name: "Maple Court"}

	inv, err := svc.Create(context.Background(), 20, &domain.CreateInvitationRequest{
		UnitID:       10,
		InviteeEmail: "invitee@example.com",
		InviteeName:  "Jordan Invitee",
		LeaseStart:   time.Now(),
		LeaseEnd:     time.Now().AddDate(1, 0, 0),
		RentAmount:   120000,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inv.Token == "" {
		t.Error("expected a generated token")
	}
	if inv.ExpiresAt.Before(time.Now().Add(6 * 24 * time.Hour)) {
		t.Errorf("expected ~7 day expiry, got %v", inv.ExpiresAt)
	}
	if _, ok := invitations.invitations[inv.Token]; !ok {
		t.Error("invitation was not persisted under its token")
	}
	got := mail.recipients()
	if len(got) != 1 || got[0] != "invitee@example.com" {
		t.Errorf("expected one invite email to the invitee, got %v", got)
	}
	if bus.published(events.InvitationCreated) != 1 {
		t.Errorf("expected 1 invitation.created event, got %d", bus.published(events.InvitationCreated))
	}
}
