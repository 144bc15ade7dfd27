package clients

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/filaflow/filaflow/internal/platform/httpx"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Get(ctx context.Context, id string) (Client, error) {
	if id == "" {
		return Client{}, fmt.Errorf("%w: client id is required", httpx.ErrValidation)
	}
	return s.repo.Get(ctx, id)
}

// Exists reports whether a client tenant is registered.
func (s *Service) Exists(ctx context.Context, id string) (bool, error) {
	if id == "" {
		return false, nil
	}
	return s.repo.Exists(ctx, id)
}

func (s *Service) Create(ctx context.Context, name, email string) (Client, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" {
		return Client{}, fmt.Errorf("%w: name is required", httpx.ErrValidation)
	}
	if email == "" {
		return Client{}, fmt.Errorf("%w: email is required", httpx.ErrValidation)
	}
	return s.repo.Create(ctx, Client{
		ID:    uuid.NewString(),
		Name:  name,
		Email: email,
	})
}
