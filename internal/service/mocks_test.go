package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/tenantry/tenantry/internal/domain"
)

// In-memory fakes for the repository and platform interfaces. Conditional
// updates are serialized with a mutex so concurrency tests exercise the same
// one-winner semantics the SQL gives.

type mockInvitationRepo struct {
	mu          sync.Mutex
	invitations map[string]*domain.InvitationDetails
	markErr     error
	findErr     error
	// forceStaleFind keeps returning the pending row even after a claim,
	// simulating a read that raced ahead of the conditional update.
	forceStaleFind bool
}

func newMockInvitationRepo() *mockInvitationRepo {
	return &mockInvitationRepo{invitations: make(map[string]*domain.InvitationDetails)}
}

func (m *mockInvitationRepo) Create(_ context.Context, inv *domain.Invitation) (*domain.Invitation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := *inv
	out.ID = int64(len(m.invitations) + 1)
	out.CreatedAt = time.Now()
	out.UpdatedAt = out.CreatedAt
	m.invitations[inv.Token] = &domain.InvitationDetails{Invitation: out}
	return &out, nil
}

func (m *mockInvitationRepo) FindPendingByToken(_ context.Context, token string) (*domain.InvitationDetails, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findErr != nil {
		return nil, m.findErr
	}
	d, ok := m.invitations[token]
	if !ok {
		return nil, nil
	}
	if !m.forceStaleFind && (d.IsVerified || !d.ExpiresAt.After(time.Now())) {
		return nil, nil
	}
	cp := *d
	return &cp, nil
}

func (m *mockInvitationRepo) MarkVerified(_ context.Context, token string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.markErr != nil {
		return false, m.markErr
	}
	d, ok := m.invitations[token]
	if !ok || d.IsVerified || !d.ExpiresAt.After(time.Now()) {
		return false, nil
	}
	now := time.Now()
	d.IsVerified = true
	d.VerifiedAt = &now
	return true, nil
}

type mockTenantRepo struct {
	mu        sync.Mutex
	nextID    int64
	tenants   map[int64]*domain.Tenant
	createErr error
}

func newMockTenantRepo() *mockTenantRepo {
	return &mockTenantRepo{tenants: make(map[int64]*domain.Tenant)}
}

func (m *mockTenantRepo) Create(_ context.Context, email, hash, name, phone string, unitID int64) (*domain.Tenant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return nil, m.createErr
	}
	m.nextID++
	t := &domain.Tenant{
		ID:           m.nextID,
		Email:        email,
		PasswordHash: hash,
		Name:         name,
		Phone:        phone,
		UnitID:       &unitID,
		CreatedAt:    time.Now(),
	}
	m.tenants[t.ID] = t
	return t, nil
}

func (m *mockTenantRepo) FindByEmail(_ context.Context, email string) (*domain.Tenant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.tenants {
		if t.Email == email {
			return t, nil
		}
	}
	return nil, nil
}

func (m *mockTenantRepo) FindByID(_ context.Context, id int64) (*domain.Tenant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tenants[id]
	if !ok {
		return nil, nil
	}
	return t, nil
}

type mockDirectoryRepo struct {
	landlords  map[int64]*domain.Landlord
	properties map[int64]*domain.Property
	units      map[int64]*domain.Unit
	vendors    map[int64]*domain.Vendor
	ownership  map[int64]int64 // unitID -> landlordID
}

func newMockDirectoryRepo() *mockDirectoryRepo {
	return &mockDirectoryRepo{
		landlords:  make(map[int64]*domain.Landlord),
		properties: make(map[int64]*domain.Property),
		units:      make(map[int64]*domain.Unit),
		vendors:    make(map[int64]*domain.Vendor),
		ownership:  make(map[int64]int64),
	}
}

func (m *mockDirectoryRepo) FindLandlordByEmail(_ context.Context, email string) (*domain.Landlord, error) {
	for _, l := range m.landlords {
		if l.Email == email {
			return l, nil
		}
	}
	return nil, nil
}

func (m *mockDirectoryRepo) FindLandlordByID(_ context.Context, id int64) (*domain.Landlord, error) {
	return m.landlords[id], nil
}

func (m *mockDirectoryRepo) FindPropertyByID(_ context.Context, id int64) (*domain.Property, error) {
	return m.properties[id], nil
}

func (m *mockDirectoryRepo) FindUnitByID(_ context.Context, id int64) (*domain.Unit, error) {
	return m.units[id], nil
}

func (m *mockDirectoryRepo) FindVendorByID(_ context.Context, id int64) (*domain.Vendor, error) {
	return m.vendors[id], nil
}

func (m *mockDirectoryRepo) UnitOwnedBy(_ context.Context, unitID, landlordID int64) (bool, error) {
	return m.ownership[unitID] == landlordID, nil
}

type mockMaintenanceRepo struct {
	mu       sync.Mutex
	nextID   int64
	requests map[string]*domain.MaintenanceRequest
}

func newMockMaintenanceRepo() *mockMaintenanceRepo {
	return &mockMaintenanceRepo{requests: make(map[string]*domain.MaintenanceRequest)}
}

func (m *mockMaintenanceRepo) Create(_ context.Context, req *domain.MaintenanceRequest) (*domain.MaintenanceRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	out := *req
	out.ID = m.nextID
	out.Status = domain.MaintenanceRequested
	out.CreatedAt = time.Now()
	out.UpdatedAt = out.CreatedAt
	m.requests[*req.ConfirmationToken] = &out
	return &out, nil
}

func (m *mockMaintenanceRepo) FindByConfirmationToken(_ context.Context, token string) (*domain.MaintenanceRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.requests[token]
	if !ok {
		return nil, nil
	}
	cp := *r
	return &cp, nil
}

func (m *mockMaintenanceRepo) ConfirmSchedule(_ context.Context, token string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.requests[token]
	if !ok || r.Status != domain.MaintenanceRequested {
		return false, nil
	}
	now := time.Now()
	r.Status = domain.MaintenanceScheduled
	r.ScheduledTime = &now
	r.UpdatedAt = now
	return true, nil
}

type sentMail struct {
	To      string
	Subject string
}

type mockMailer struct {
	mu      sync.Mutex
	sent    []sentMail
	failFor map[string]bool // recipient email -> force failure
}

func newMockMailer() *mockMailer {
	return &mockMailer{failFor: make(map[string]bool)}
}

func (m *mockMailer) Send(toEmail, _, subject, _, _ string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failFor[toEmail] {
		return "", fmt.Errorf("delivery refused for %s", toEmail)
	}
	m.sent = append(m.sent, sentMail{To: toEmail, Subject: subject})
	return fmt.Sprintf("msg-%d", len(m.sent)), nil
}

func (m *mockMailer) SendTenantInvitation(toEmail, toName, _, _, _ string, _ time.Time) error {
	_, err := m.Send(toEmail, toName, "You're invited", "", "")
	return err
}

func (m *mockMailer) SendMaintenanceConfirmLink(toEmail, toName, _, _ string) error {
	_, err := m.Send(toEmail, toName, "Confirm maintenance visit", "", "")
	return err
}

func (m *mockMailer) recipients() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.sent))
	for i, s := range m.sent {
		out[i] = s.To
	}
	return out
}

type mockPublisher struct {
	mu       sync.Mutex
	subjects []string
}

func (m *mockPublisher) Publish(_ context.Context, subject string, _ interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subjects = append(m.subjects, subject)
	return nil
}

func (m *mockPublisher) Close() error { return nil }

func (m *mockPublisher) published(subject string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, s := range m.subjects {
		if s == subject {
			n++
		}
	}
	return n
}
