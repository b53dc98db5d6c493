package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tenantry/tenantry/internal/domain"
)

type TenantRepo interface {
	Create(ctx context.Context, email, hash, name, phone string, unitID int64) (*domain.Tenant, error)
	FindByEmail(ctx context.Context, email string) (*domain.Tenant, error)
	FindByID(ctx context.Context, id int64) (*domain.Tenant, error)
}

type TenantRepoImpl struct{ pool *pgxpool.Pool }

func NewTenantRepo(pool *pgxpool.Pool) *TenantRepoImpl { return &TenantRepoImpl{pool: pool} }

const tenantCols = `id, email, password_hash, name, phone, unit_id, created_at, updated_at`

func (r *TenantRepoImpl) Create(ctx context.Context, email, hash, name, phone string, unitID int64) (*domain.Tenant, error) {
	const q = `
INSERT INTO tenants (email, password_hash, name, phone, unit_id)
VALUES ($1,$2,$3,$4,$5)
RETURNING ` + tenantCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var t domain.Tenant
	if err := r.pool.QueryRow(ctx, q, email, hash, name, phone, unitID).Scan(
		&t.ID, &t.Email, &t.PasswordHash, &t.Name, &t.Phone, &t.UnitID, &t.CreatedAt, &t.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TenantRepoImpl) FindByEmail(ctx context.Context, email string) (*domain.Tenant, error) {
	const q = `SELECT ` + tenantCols + ` FROM tenants WHERE lower(email)=lower($1)`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var t domain.Tenant
	err := r.pool.QueryRow(ctx, q, email).Scan(
		&t.ID, &t.Email, &t.PasswordHash, &t.Name, &t.Phone, &t.UnitID, &t.CreatedAt, &t.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TenantRepoImpl) FindByID(ctx context.Context, id int64) (*domain.Tenant, error) {
	const q = `SELECT ` + tenantCols + ` FROM tenants WHERE id=$1`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var t domain.Tenant
	err := r.pool.QueryRow(ctx, q, id).Scan(
		&t.ID, &t.Email, &t.PasswordHash, &t.Name, &t.Phone, &t.UnitID, &t.CreatedAt, &t.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

var _ TenantRepo = (*TenantRepoImpl)(nil)
