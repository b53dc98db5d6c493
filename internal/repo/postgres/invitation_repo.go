package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tenantry/tenantry/internal/domain"
)

// InvitationRepo defines operations on tenant invitation records. Records
// are never deleted here; retention is handled elsewhere.
type InvitationRepo interface {
	// Create inserts a pending invitation. The token column carries a unique
	// index; a collision surfaces as an insert error.
	Create(ctx context.Context, inv *domain.Invitation) (*domain.Invitation, error)

	// FindPendingByToken returns the invitation plus unit/property/landlord
	// display data for a token that is unverified AND unexpired, in one
	// qualifying read. Returns (nil, nil) for anything else: absent, already
	// verified and expired tokens are indistinguishable to callers.
	FindPendingByToken(ctx context.Context, token string) (*domain.InvitationDetails, error)

	// MarkVerified flips is_verified exactly once, scoped by token and prior
	// state. Returns false when zero rows were affected, meaning a concurrent
	// claim won or the invitation expired in the meantime.
	MarkVerified(ctx context.Context, token string) (bool, error)
}

type InvitationRepoImpl struct{ pool *pgxpool.Pool }

func NewInvitationRepo(pool *pgxpool.Pool) *InvitationRepoImpl {
	return &InvitationRepoImpl{pool: pool}
}

const invitationCols = `id, unit_id, landlord_id,
invitee_email, invitee_name, invitee_phone,
lease_start, lease_end, rent_amount, security_deposit,
token, expires_at, is_verified, verified_at,
created_at, updated_at`

func (r *InvitationRepoImpl) Create(ctx context.Context, inv *domain.Invitation) (*domain.Invitation, error) {
	const q = `INSERT INTO invitations (
    unit_id, landlord_id,
    invitee_email, invitee_name, invitee_phone,
    lease_start, lease_end, rent_amount, security_deposit,
    token, expires_at
  ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
  RETURNING ` + invitationCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var out domain.Invitation
	err := r.pool.QueryRow(ctx, q,
		inv.UnitID, inv.LandlordID,
		inv.InviteeEmail, inv.InviteeName, inv.InviteePhone,
		inv.LeaseStart, inv.LeaseEnd, inv.RentAmount, inv.SecurityDeposit,
		inv.Token, inv.ExpiresAt,
	).Scan(
		&out.ID, &out.UnitID, &out.LandlordID,
		&out.InviteeEmail, &out.InviteeName, &out.InviteePhone,
		&out.LeaseStart, &out.LeaseEnd, &out.RentAmount, &out.SecurityDeposit,
		&out.Token, &out.ExpiresAt, &out.IsVerified, &out.VerifiedAt,
		&out.CreatedAt, &out.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *InvitationRepoImpl) FindPendingByToken(ctx context.Context, token string) (*domain.InvitationDetails, error) {
	// Expiry and verification are checked inside the same read that fetches
	// the record, so an expired-but-unverified invitation can never be
	// returned and rejected in a separate step.
	const q = `
SELECT i.id, i.unit_id, i.landlord_id,
       i.invitee_email, i.invitee_name, i.invitee_phone,
       i.lease_start, i.lease_end, i.rent_amount, i.security_deposit,
       i.token, i.expires_at, i.is_verified, i.verified_at,
       i.created_at, i.updated_at,
       u.unit_number, p.name, p.address, l.name, l.email
FROM invitations i
JOIN units u      ON u.id = i.unit_id
JOIN properties p ON p.id = u.property_id
JOIN landlords l  ON l.id = i.landlord_id
WHERE i.token = $1
  AND i.is_verified = false
  AND i.expires_at > now()
`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var d domain.InvitationDetails
	err := r.pool.QueryRow(ctx, q, token).Scan(
		&d.ID, &d.UnitID, &d.LandlordID,
		&d.InviteeEmail, &d.InviteeName, &d.InviteePhone,
		&d.LeaseStart, &d.LeaseEnd, &d.RentAmount, &d.SecurityDeposit,
		&d.Token, &d.ExpiresAt, &d.IsVerified, &d.VerifiedAt,
		&d.CreatedAt, &d.UpdatedAt,
		&d.UnitNumber, &d.PropertyName, &d.PropertyAddress, &d.LandlordName, &d.LandlordEmail,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *InvitationRepoImpl) MarkVerified(ctx context.Context, token string) (bool, error) {
	const q = `
UPDATE invitations
SET is_verified = true, verified_at = now(), updated_at = now()
WHERE token = $1
  AND is_verified = false
  AND expires_at > now()
`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	ct, err := r.pool.Exec(ctx, q, token)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() > 0, nil
}

var _ InvitationRepo = (*InvitationRepoImpl)(nil)
