package domain

import (
	"fmt"
	"time"

	"github.com/tenantry/tenantry/internal/utils"
)

type MaintenanceStatus string

const (
	MaintenanceRequested  MaintenanceStatus = "requested"
	MaintenanceScheduled  MaintenanceStatus = "scheduled"
	MaintenanceInProgress MaintenanceStatus = "in_progress"
	MaintenanceCompleted  MaintenanceStatus = "completed"
	MaintenanceCanceled   MaintenanceStatus = "canceled"
)

func ParseMaintenanceStatus(s string) (MaintenanceStatus, bool) {
	switch MaintenanceStatus(s) {
	case MaintenanceRequested, MaintenanceScheduled, MaintenanceInProgress, MaintenanceCompleted, MaintenanceCanceled:
		return MaintenanceStatus(s), true
	default:
		return "", false
	}
}

// MaintenanceRequest represents a service visit. The confirmation token is
// assigned at creation and consumed exactly once by the confirmation flow,
// which moves requested → scheduled and stamps ScheduledTime with server time.
// Statuses past scheduled are owned by the CRUD surface.
type MaintenanceRequest struct {
	ID          int64             `json:"id"`
	Description string            `json:"description"`
	Status      MaintenanceStatus `json:"status"`

	ConfirmationToken *string    `json:"-"`
	ScheduledTime     *time.Time `json:"scheduled_time,omitempty"`

	TenantID   *int64 `json:"tenant_id,omitempty"`
	PropertyID *int64 `json:"property_id,omitempty"`
	VendorID   *int64 `json:"vendor_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CreateMaintenanceRequest struct {
	Description string `json:"description"`
	TenantID    *int64 `json:"tenant_id,omitempty"`
	PropertyID  *int64 `json:"property_id,omitempty"`
	VendorID    *int64 `json:"vendor_id,omitempty"`
}

func (r *CreateMaintenanceRequest) Normalize() {
	r.Description = utils.NormalizeString(r.Description)
}

func (r *CreateMaintenanceRequest) Validate() error {
	if r.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(r.Description) > 2000 {
		return fmt.Errorf("description too long")
	}
	return nil
}

// ConfirmationResult is what the confirmation page renders. A repeat click
// on an already scheduled request yields the same result as the first,
// with the original ScheduledTime.
type ConfirmationResult struct {
	RequestID     int64
	Description   string
	ScheduledTime time.Time
	VendorName    string
}
