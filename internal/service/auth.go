package service

import (
	"context"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/crypto/bcrypt"

	"github.com/hinagata/saas-admin/internal/domain"
	"github.com/hinagata/saas-admin/internal/token"
	"github.com/hinagata/saas-admin/internal/usecase"
)

var tracer = otel.Tracer("auth")

type AuthService struct {
	users  usecase.UserRepository
	tokens *token.Service
}

func NewAuthService(users usecase.UserRepository, tokens *token.Service) *AuthService {
	return &AuthService{
		users:  users,
		tokens: tokens,
	}
}

// VerifyCredentials checks email/password against the stored hash and
// returns the identity, or nil on any failure. Unknown emails and wrong
// passwords are indistinguishable from the outside.
func (s *AuthService) VerifyCredentials(ctx context.Context, email, password string) *domain.User {
	ctx, span := tracer.Start(ctx, "Auth.Service.VerifyCredentials")
	defer span.End()

	cred, err := s.users.GetCredential(ctx, email)
	if err != nil || cred == nil {
		return nil
	}

	if bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(password)) != nil {
		return nil
	}

	identity := cred.User
	span.SetAttributes(attribute.Int64("RequesterId", identity.ID))
	return &identity
}

// Login exchanges valid credentials for a signed session token.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	ctx, span := tracer.Start(ctx, "Auth.Service.Login")
	defer span.End()

	identity := s.VerifyCredentials(ctx, email, password)
	if identity == nil {
		return "", domain.ErrUnauthenticated
	}
	return s.tokens.Issue(identity)
}

// AuthToken validates a bearer token and recovers the requester identity.
func (s *AuthService) AuthToken(ctx context.Context, tokenStr string) (*domain.User, error) {
	_, span := tracer.Start(ctx, "Auth.Service.AuthToken")
	defer span.End()

	identity, err := s.tokens.Parse(tokenStr)
	if err != nil {
		span.RecordError(errors.Wrap(err, "token validation failed"))
		return nil, err
	}

	span.SetAttributes(attribute.Int64("RequesterId", identity.ID))
	return identity, nil
}
