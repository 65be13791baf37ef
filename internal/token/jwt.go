// Package token issues and parses the signed session tokens carried on
// every authenticated request. Tokens are stateless; rotating the secret
// invalidates everything outstanding.
package token

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/hinagata/saas-admin/internal/domain"
)

var (
	// ErrInvalidToken covers malformed tokens and bad signatures.
	ErrInvalidToken = errors.New("invalid token")
	// ErrExpiredToken is returned for structurally valid tokens past
	// their expiry.
	ErrExpiredToken = errors.New("token expired")
)

// Config holds token signing configuration. Secret is process-wide;
// TTL is fixed at issuance, there is no refresh mechanism.
type Config struct {
	Secret string
	TTL    time.Duration
}

type tenantClaim struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type sessionClaims struct {
	Name   string       `json:"name"`
	Email  string       `json:"username"`
	Role   string       `json:"role"`
	Tenant *tenantClaim `json:"tenant,omitempty"`
	jwt.RegisteredClaims
}

// Service signs and validates session tokens.
type Service struct {
	cfg Config
}

func NewService(cfg Config) *Service {
	return &Service{cfg: cfg}
}

// Issue encodes the verified identity into a signed HS256 token. A nil
// identity means login never succeeded; issuance refuses it.
func (s *Service) Issue(identity *domain.User) (string, error) {
	if identity == nil {
		return "", domain.ErrUnauthenticated
	}

	now := time.Now()
	claims := sessionClaims{
		Name:  identity.Name,
		Email: identity.Email,
		Role:  string(identity.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(identity.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.TTL)),
		},
	}
	if identity.Tenant != nil {
		claims.Tenant = &tenantClaim{ID: identity.Tenant.ID, Name: identity.Tenant.Name}
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.cfg.Secret))
}

// Parse validates the signature and expiry and recovers the identity.
// Expired and otherwise-invalid tokens are distinguishable for the
// caller, though both surface as 401 to the end user.
func (s *Service) Parse(tokenStr string) (*domain.User, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &sessionClaims{}, func(t *jwt.Token) (any, error) {
		return []byte(s.cfg.Secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*sessionClaims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}

	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return nil, ErrInvalidToken
	}

	identity := &domain.User{
		ID:    id,
		Name:  claims.Name,
		Email: claims.Email,
		// Unknown role strings pass through unchanged; the policy layer
		// treats them as USER-equivalent.
		Role: domain.Role(claims.Role),
	}
	if claims.Tenant != nil {
		identity.Tenant = &domain.Tenant{ID: claims.Tenant.ID, Name: claims.Tenant.Name}
	}
	return identity, nil
}
