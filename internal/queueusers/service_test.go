package queueusers_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/filaflow/filaflow/internal/platform/httpx"
	"github.com/filaflow/filaflow/internal/queueusers"
	_ "github.com/filaflow/filaflow/testing"
)

type memRepo struct {
	stored map[string]queueusers.User
	hashes map[string]string
}

func newMemRepo() *memRepo {
	return &memRepo{stored: map[string]queueusers.User{}, hashes: map[string]string{}}
}

func (m *memRepo) Get(ctx context.Context, id string) (queueusers.User, error) {
	u, ok := m.stored[id]
	if !ok {
		return queueusers.User{}, queueusers.ErrNotFound
	}
	return u, nil
}

func (m *memRepo) Create(ctx context.Context, user queueusers.User, passwordHash string) (queueusers.User, error) {
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	m.stored[user.ID] = user
	m.hashes[user.ID] = passwordHash
	return user, nil
}

func TestRegisterHashesPassword(t *testing.T) {
	repo := newMemRepo()
	svc := queueusers.NewService(repo)

	user, err := svc.Register(context.Background(), " Xavier ", " xavier@mail.test ", "s3cretpass")
	require.NoError(t, err)
	require.NotEmpty(t, user.ID)
	require.Equal(t, "Xavier", user.Name)
	require.Equal(t, "xavier@mail.test", user.Email)

	hash := repo.hashes[user.ID]
	require.NotEqual(t, "s3cretpass", hash)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("s3cretpass")))
}

func TestRegisterValidation(t *testing.T) {
	svc := queueusers.NewService(newMemRepo())
	ctx := context.Background()

	_, err := svc.Register(ctx, "", "xavier@mail.test", "s3cretpass")
	require.ErrorIs(t, err, httpx.ErrValidation)

	_, err = svc.Register(ctx, "Xavier", "", "s3cretpass")
	require.ErrorIs(t, err, httpx.ErrValidation)

	_, err = svc.Register(ctx, "Xavier", "xavier@mail.test", "short")
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestGetUnknownUser(t *testing.T) {
	svc := queueusers.NewService(newMemRepo())

	_, err := svc.Get(context.Background(), "usr-ghost")
	require.ErrorIs(t, err, queueusers.ErrNotFound)
}
