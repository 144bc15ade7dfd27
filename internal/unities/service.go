package unities

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/filaflow/filaflow/internal/platform/httpx"
)

// ClientDirectory resolves client tenants during unity creation.
type ClientDirectory interface {
	Exists(ctx context.Context, id string) (bool, error)
}

type Service struct {
	repo    Repository
	clients ClientDirectory
	title   cases.Caser
}

func NewService(repo Repository, clients ClientDirectory) *Service {
	return &Service{repo: repo, clients: clients, title: cases.Title(language.Und)}
}

func (s *Service) Get(ctx context.Context, id string) (Unity, error) {
	if id == "" {
		return Unity{}, fmt.Errorf("%w: unity id is required", httpx.ErrValidation)
	}
	return s.repo.Get(ctx, id)
}

// Exists reports whether the unity is registered.
func (s *Service) Exists(ctx context.Context, id string) (bool, error) {
	if id == "" {
		return false, nil
	}
	return s.repo.Exists(ctx, id)
}

func (s *Service) Create(ctx context.Context, clientID, name, address string) (Unity, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Unity{}, fmt.Errorf("%w: name is required", httpx.ErrValidation)
	}
	if clientID == "" {
		return Unity{}, fmt.Errorf("%w: client id is required", httpx.ErrValidation)
	}

	exists, err := s.clients.Exists(ctx, clientID)
	if err != nil {
		return Unity{}, err
	}
	if !exists {
		return Unity{}, fmt.Errorf("%w: client %s", httpx.ErrNotFound, clientID)
	}

	return s.repo.Create(ctx, Unity{
		ID:       uuid.NewString(),
		Name:     s.title.String(name),
		Address:  strings.TrimSpace(address),
		ClientID: clientID,
	})
}

func (s *Service) ListByClient(ctx context.Context, clientID string) ([]Unity, error) {
	if clientID == "" {
		return nil, fmt.Errorf("%w: client id is required", httpx.ErrValidation)
	}
	return s.repo.ListByClient(ctx, clientID)
}
