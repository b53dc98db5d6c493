package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tenantry/tenantry/internal/domain"
)

// DirectoryRepo covers the reference lookups the confirmation fan-out
// follows (tenant → property → owner, vendor) plus landlord auth lookups.
// Every Find returns (nil, nil) for an unknown id so a broken reference
// skips a recipient instead of failing a confirmation.
type DirectoryRepo interface {
	FindLandlordByEmail(ctx context.Context, email string) (*domain.Landlord, error)
	FindLandlordByID(ctx context.Context, id int64) (*domain.Landlord, error)
	FindPropertyByID(ctx context.Context, id int64) (*domain.Property, error)
	FindUnitByID(ctx context.Context, id int64) (*domain.Unit, error)
	FindVendorByID(ctx context.Context, id int64) (*domain.Vendor, error)

	// UnitOwnedBy reports whether a unit belongs to one of the landlord's
	// properties. Guards the invitation creation endpoint.
	UnitOwnedBy(ctx context.Context, unitID, landlordID int64) (bool, error)
}

type DirectoryRepoImpl struct{ pool *pgxpool.Pool }

func NewDirectoryRepo(pool *pgxpool.Pool) *DirectoryRepoImpl {
	return &DirectoryRepoImpl{pool: pool}
}

func (r *DirectoryRepoImpl) FindLandlordByEmail(ctx context.Context, email string) (*domain.Landlord, error) {
	const q = `SELECT id, email, password_hash, name, phone, created_at, updated_at
FROM landlords WHERE lower(email)=lower($1)`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var l domain.Landlord
	err := r.pool.QueryRow(ctx, q, email).Scan(
		&l.ID, &l.Email, &l.PasswordHash, &l.Name, &l.Phone, &l.CreatedAt, &l.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *DirectoryRepoImpl) FindLandlordByID(ctx context.Context, id int64) (*domain.Landlord, error) {
	const q = `SELECT id, email, password_hash, name, phone, created_at, updated_at
FROM landlords WHERE id=$1`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var l domain.Landlord
	err := r.pool.QueryRow(ctx, q, id).Scan(
		&l.ID, &l.Email, &l.PasswordHash, &l.Name, &l.Phone, &l.CreatedAt, &l.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *DirectoryRepoImpl) FindPropertyByID(ctx context.Context, id int64) (*domain.Property, error) {
	const q = `SELECT id, landlord_id, name, address, city, state, zip_code, created_at, updated_at
FROM properties WHERE id=$1`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var p domain.Property
	err := r.pool.QueryRow(ctx, q, id).Scan(
		&p.ID, &p.LandlordID, &p.Name, &p.Address, &p.City, &p.State, &p.ZipCode, &p.CreatedAt, &p.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *DirectoryRepoImpl) FindUnitByID(ctx context.Context, id int64) (*domain.Unit, error) {
	const q = `SELECT id, property_id, unit_number, bedrooms, bathrooms, created_at, updated_at
FROM units WHERE id=$1`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var u domain.Unit
	err := r.pool.QueryRow(ctx, q, id).Scan(
		&u.ID, &u.PropertyID, &u.UnitNumber, &u.Bedrooms, &u.Bathrooms, &u.CreatedAt, &u.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *DirectoryRepoImpl) FindVendorByID(ctx context.Context, id int64) (*domain.Vendor, error) {
	const q = `SELECT id, email, name, phone, specialty, created_at, updated_at
FROM vendors WHERE id=$1`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var v domain.Vendor
	err := r.pool.QueryRow(ctx, q, id).Scan(
		&v.ID, &v.Email, &v.Name, &v.Phone, &v.Specialty, &v.CreatedAt, &v.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *DirectoryRepoImpl) UnitOwnedBy(ctx context.Context, unitID, landlordID int64) (bool, error) {
	const q = `
SELECT 1
FROM units u
JOIN properties p ON p.id = u.property_id
WHERE u.id = $1 AND p.landlord_id = $2
`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var one int
	err := r.pool.QueryRow(ctx, q, unitID, landlordID).Scan(&one)
	if err == pgx.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

var _ DirectoryRepo = (*DirectoryRepoImpl)(nil)
