package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tenantry/tenantry/internal/domain"
)

type MaintenanceRepo interface {
	Create(ctx context.Context, req *domain.MaintenanceRequest) (*domain.MaintenanceRequest, error)

	// FindByConfirmationToken returns (nil, nil) when no record carries the
	// token. Callers must not distinguish "never existed" from "consumed".
	FindByConfirmationToken(ctx context.Context, token string) (*domain.MaintenanceRequest, error)

	// ConfirmSchedule moves requested → scheduled and stamps scheduled_time
	// with the database clock, scoped by token and prior status. Returns
	// false when zero rows were affected.
	ConfirmSchedule(ctx context.Context, token string) (bool, error)
}

type MaintenanceRepoImpl struct{ pool *pgxpool.Pool }

func NewMaintenanceRepo(pool *pgxpool.Pool) *MaintenanceRepoImpl {
	return &MaintenanceRepoImpl{pool: pool}
}

const maintenanceCols = `id, description, status,
confirmation_token, scheduled_time,
tenant_id, property_id, vendor_id,
created_at, updated_at`

func (r *MaintenanceRepoImpl) Create(ctx context.Context, req *domain.MaintenanceRequest) (*domain.MaintenanceRequest, error) {
	const q = `INSERT INTO maintenance_requests (
    description, status, confirmation_token, tenant_id, property_id, vendor_id
  ) VALUES ($1,'requested',$2,$3,$4,$5)
  RETURNING ` + maintenanceCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var out domain.MaintenanceRequest
	err := r.pool.QueryRow(ctx, q,
		req.Description, req.ConfirmationToken,
		req.TenantID, req.PropertyID, req.VendorID,
	).Scan(
		&out.ID, &out.Description, &out.Status,
		&out.ConfirmationToken, &out.ScheduledTime,
		&out.TenantID, &out.PropertyID, &out.VendorID,
		&out.CreatedAt, &out.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *MaintenanceRepoImpl) FindByConfirmationToken(ctx context.Context, token string) (*domain.MaintenanceRequest, error) {
	const q = `SELECT ` + maintenanceCols + ` FROM maintenance_requests WHERE confirmation_token=$1`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var m domain.MaintenanceRequest
	err := r.pool.QueryRow(ctx, q, token).Scan(
		&m.ID, &m.Description, &m.Status,
		&m.ConfirmationToken, &m.ScheduledTime,
		&m.TenantID, &m.PropertyID, &m.VendorID,
		&m.CreatedAt, &m.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *MaintenanceRepoImpl) ConfirmSchedule(ctx context.Context, token string) (bool, error) {
	const q = `
UPDATE maintenance_requests
SET status = 'scheduled', scheduled_time = now(), updated_at = now()
WHERE confirmation_token = $1
  AND status = 'requested'
`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	ct, err := r.pool.Exec(ctx, q, token)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() > 0, nil
}

var _ MaintenanceRepo = (*MaintenanceRepoImpl)(nil)
