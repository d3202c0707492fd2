// Package auth verifies connection tokens and issues them on behalf of
// the surrounding CRM. A token is verified exactly once per connection,
// at registration time; the signaling hot path never touches it again.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/RRM006/NexusCRM-sub000/internal/config"
	"github.com/RRM006/NexusCRM-sub000/internal/models"
)

// Claims is the only supported JWT claims shape for this service.
// Multi-tenant invariant: TenantID must be present on every token.
type Claims struct {
	jwt.RegisteredClaims

	UserID      string      `json:"user_id"`
	DisplayName string      `json:"display_name"`
	TenantID    string      `json:"tenant_id"`
	Role        models.Role `json:"role"`
}

// Manager signs and verifies connection tokens
type Manager struct {
	secret   []byte
	issuer   string
	audience string
	ttl      time.Duration
}

// NewManager creates a token manager from configuration
func NewManager(cfg *config.Config) (*Manager, error) {
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	return &Manager{
		secret:   []byte(cfg.JWTSecret),
		issuer:   cfg.JWTIssuer,
		audience: cfg.JWTAudience,
		ttl:      cfg.TokenTTL,
	}, nil
}

// Issue signs a connection token for the given principal
func (m *Manager) Issue(now time.Time, p models.Principal) (string, error) {
	if p.UserID == "" || p.TenantID == "" {
		return "", errors.New("user_id and tenant_id are required")
	}
	if !p.Role.Valid() {
		return "", errors.New("unknown role")
	}

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			Audience:  audienceOrNil(m.audience),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			ID:        uuid.NewString(),
		},
		UserID:      p.UserID,
		DisplayName: p.DisplayName,
		TenantID:    p.TenantID,
		Role:        p.Role,
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(m.secret)
}

// Verify validates a connection token and returns the principal it carries
func (m *Manager) Verify(tokenString string, now time.Time) (models.Principal, error) {
	var claims Claims

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuedAt(),
		jwt.WithExpirationRequired(),
	)

	_, err := parser.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		return m.secret, nil
	})
	if err != nil {
		return models.Principal{}, err
	}

	opts := []jwt.ParserOption{
		jwt.WithTimeFunc(func() time.Time { return now }),
		jwt.WithLeeway(30 * time.Second), // clock skew tolerance
		jwt.WithIssuedAt(),
		jwt.WithExpirationRequired(),
	}

	if m.issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.issuer))
	}
	if m.audience != "" {
		opts = append(opts, jwt.WithAudience(m.audience))
	}

	validator := jwt.NewValidator(opts...)
	if err := validator.Validate(claims.RegisteredClaims); err != nil {
		return models.Principal{}, err
	}

	if claims.UserID == "" {
		return models.Principal{}, errors.New("user_id missing")
	}
	if claims.TenantID == "" {
		return models.Principal{}, errors.New("tenant_id missing")
	}
	if !claims.Role.Valid() {
		return models.Principal{}, errors.New("unknown role in token")
	}

	return models.Principal{
		UserID:      claims.UserID,
		DisplayName: claims.DisplayName,
		TenantID:    claims.TenantID,
		Role:        claims.Role,
	}, nil
}

func audienceOrNil(aud string) jwt.ClaimStrings {
	if aud == "" {
		return nil
	}
	return jwt.ClaimStrings{aud}
}
