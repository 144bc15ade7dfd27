package auth

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/filaflow/filaflow/internal/shared"
)

// ErrInvalidCredentials indicates login failure.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Service wraps authentication business rules.
type Service struct {
	repo   Repository
	tokens *TokenIssuer
}

// NewService constructs a new Service.
func NewService(repo Repository, tokens *TokenIssuer) *Service {
	return &Service{repo: repo, tokens: tokens}
}

// Authenticate validates email/password credentials and returns the signed
// identity for the account.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*shared.Identity, error) {
	acc, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if !acc.IsActive {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return &shared.Identity{
		ID:       acc.ID,
		Name:     acc.Name,
		Role:     acc.Role,
		ClientID: acc.ClientID,
		UnityIDs: acc.UnityIDs,
		QueueIDs: acc.QueueIDs,
	}, nil
}

// IssueToken signs a token for the identity.
func (s *Service) IssueToken(id *shared.Identity) (string, error) {
	return s.tokens.Issue(id)
}
