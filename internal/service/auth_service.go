package service

import (
	"context"
	"fmt"

	"github.com/alexedwards/argon2id"
	"github.com/tenantry/tenantry/internal/domain"
	"github.com/tenantry/tenantry/internal/repo/postgres"
	"github.com/tenantry/tenantry/internal/utils"
	"github.com/tenantry/tenantry/pkg/auth"
	"github.com/tenantry/tenantry/pkg/config"
)

type LoginResponse struct {
	AccessToken string           `json:"access_token"`
	ExpiresIn   int64            `json:"expires_in"`
	Landlord    *domain.Landlord `json:"landlord"`
}

// AuthService covers the session-based landlord login used by the
// invitation and maintenance creation endpoints.
type AuthService interface {
	Login(ctx context.Context, email, password string) (*LoginResponse, error)
}

type authService struct {
	directory postgres.DirectoryRepo
	config    *config.Config
}

func NewAuthService(directory postgres.DirectoryRepo, config *config.Config) AuthService {
	return &authService{directory: directory, config: config}
}

func (s *authService) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	email = utils.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, fmt.Errorf("email and password are required")
	}

	landlord, err := s.directory.FindLandlordByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to find landlord: %w", err)
	}
	if landlord == nil {
		return nil, fmt.Errorf("invalid credentials")
	}

	valid, err := argon2id.ComparePasswordAndHash(password, landlord.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}
	if !valid {
		return nil, fmt.Errorf("invalid credentials")
	}

	tok, err := auth.NewLandlordSession(landlord.ID, landlord.Email, s.config.Auth.JWTSecret, s.config.Auth.SessionTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return &LoginResponse{
		AccessToken: tok,
		ExpiresIn:   int64(s.config.Auth.SessionTTL.Seconds()),
		Landlord:    landlord,
	}, nil
}
