package domain

import (
	"fmt"
	"time"

	"github.com/tenantry/tenantry/internal/utils"
)

// Invitation is a single-use offer for an unauthenticated person to become
// the tenant of a specific unit. A token is valid for exactly one successful
// claim; once IsVerified flips to true the record is terminal. ExpiresAt is
// set at creation and never extended.
type Invitation struct {
	ID         int64  `json:"id"`
	UnitID     int64  `json:"unit_id"`
	LandlordID int64  `json:"landlord_id"`

	InviteeEmail string `json:"invitee_email"`
	InviteeName  string `json:"invitee_name"`
	InviteePhone string `json:"invitee_phone"`

	LeaseStart      time.Time `json:"lease_start"`
	LeaseEnd        time.Time `json:"lease_end"`
	RentAmount      int64     `json:"rent_amount"`
	SecurityDeposit int64     `json:"security_deposit"`

	Token      string     `json:"-"`
	ExpiresAt  time.Time  `json:"expires_at"`
	IsVerified bool       `json:"is_verified"`
	VerifiedAt *time.Time `json:"verified_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// InvitationDetails is an Invitation joined with the display data the
// claim page needs, fetched in the same qualifying read as the token check.
type InvitationDetails struct {
	Invitation

	UnitNumber      string `json:"unit_number"`
	PropertyName    string `json:"property_name"`
	PropertyAddress string `json:"property_address"`
	LandlordName    string `json:"landlord_name"`
	LandlordEmail   string `json:"landlord_email"`
}

type CreateInvitationRequest struct {
	UnitID          int64     `json:"unit_id"`
	InviteeEmail    string    `json:"invitee_email"`
	InviteeName     string    `json:"invitee_name"`
	InviteePhone    string    `json:"invitee_phone"`
	LeaseStart      time.Time `json:"lease_start"`
	LeaseEnd        time.Time `json:"lease_end"`
	RentAmount      int64     `json:"rent_amount"`
	SecurityDeposit int64     `json:"security_deposit"`
}

func (r *CreateInvitationRequest) Normalize() {
	r.InviteeEmail = utils.NormalizeEmail(r.InviteeEmail)
	r.InviteeName = utils.NormalizeString(r.InviteeName)
	r.InviteePhone = utils.NormalizePhone(r.InviteePhone)
}

func (r *CreateInvitationRequest) Validate() error {
	if r.UnitID <= 0 {
		return fmt.Errorf("unit_id is required")
	}
	if r.InviteeEmail == "" {
		return fmt.Errorf("invitee_email is required")
	}
	if !utils.IsValidEmail(r.InviteeEmail) {
		return fmt.Errorf("invalid invitee_email format")
	}
	if r.InviteeName == "" {
		return fmt.Errorf("invitee_name is required")
	}
	if r.InviteePhone != "" && !utils.IsValidPhone(r.InviteePhone) {
		return fmt.Errorf("invalid invitee_phone format")
	}
	if r.LeaseStart.IsZero() || r.LeaseEnd.IsZero() {
		return fmt.Errorf("lease_start and lease_end are required")
	}
	if !r.LeaseEnd.After(r.LeaseStart) {
		return fmt.Errorf("lease_end must be after lease_start")
	}
	if r.RentAmount <= 0 {
		return fmt.Errorf("rent_amount must be positive")
	}
	if r.SecurityDeposit < 0 {
		return fmt.Errorf("security_deposit cannot be negative")
	}
	return nil
}

// ClaimInvitationRequest carries the credentials of the invitee creating
// their tenant account.
type ClaimInvitationRequest struct {
	Password string `json:"password"`
	Name     string `json:"name,omitempty"`
	Phone    string `json:"phone,omitempty"`
}

func (r *ClaimInvitationRequest) Normalize() {
	r.Name = utils.NormalizeString(r.Name)
	r.Phone = utils.NormalizePhone(r.Phone)
}

func (r *ClaimInvitationRequest) Validate() error {
	if r.Password == "" {
		return fmt.Errorf("password is required")
	}
	if len(r.Password) < 8 {
		return fmt.Errorf("password must be at least 8 characters")
	}
	if r.Phone != "" && !utils.IsValidPhone(r.Phone) {
		return fmt.Errorf("invalid phone format")
	}
	return nil
}

type ClaimInvitationResponse struct {
	SessionToken string  `json:"session_token"`
	ExpiresIn    int64   `json:"expires_in"`
	Tenant       *Tenant `json:"tenant"`
}
