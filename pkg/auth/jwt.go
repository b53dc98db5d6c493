package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type Claims struct {
	Sub   int64  `json:"sub"`
	Email string `json:"email"`
	Role  string `json:"role"`
	Scope string `json:"scope"`
	jwt.RegisteredClaims
}

func NewAccessToken(sub int64, email, role, scope, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Sub:   sub,
		Email: email,
		Role:  role,
		Scope: scope,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Audience:  []string{"tenantry-api"},
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func Parse(tokenString, secret string) (*Claims, error) {
	tok, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := tok.Claims.(*Claims); ok && tok.Valid {
		return claims, nil
	}
	return nil, errors.New("invalid token")
}

// NewLandlordSession mints a session token for a landlord who logged in
// through the password flow.
func NewLandlordSession(landlordID int64, email, secret string, ttl time.Duration) (string, error) {
	return NewAccessToken(landlordID, email, "landlord", "properties:read properties:write invitations:write maintenance:write", secret, ttl)
}

// NewTenantSession mints a session token for a tenant account, including the
// one created when an invitation is claimed.
func NewTenantSession(tenantID int64, email, secret string, ttl time.Duration) (string, error) {
	return NewAccessToken(tenantID, email, "tenant", "leases:read maintenance:read:self maintenance:write:self", secret, ttl)
}
