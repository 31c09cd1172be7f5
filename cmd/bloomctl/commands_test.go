package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	accountsvc "bloom/internal/account/service"
	"bloom/internal/domain"
	apperrors "bloom/internal/errors"
)

type memoryUsers struct {
	byID map[int64]*domain.User
}

func (m *memoryUsers) Create(ctx context.Context, u *domain.User) error {
	u.ID = int64(len(m.byID) + 1)
	m.byID[u.ID] = u
	return nil
}

func (m *memoryUsers) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, u := range m.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, apperrors.NewNotFoundError("user not found")
}

func (m *memoryUsers) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	u, ok := m.byID[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("user not found")
	}
	return u, nil
}

func (m *memoryUsers) UpdateProfile(ctx context.Context, id int64, name string, phone *string) error {
	return nil
}

func (m *memoryUsers) UpdateRole(ctx context.Context, id int64, role domain.Role) error {
	return nil
}

func (m *memoryUsers) List(ctx context.Context, limit, offset int) ([]domain.User, int, error) {
	return nil, 0, nil
}

func TestCreateAdmin(t *testing.T) {
	users := &memoryUsers{byID: map[int64]*domain.User{}}
	cmd := &cobra.Command{}
	var out bytes.Buffer
	cmd.SetOut(&out)

	err := createAdmin(context.Background(), users, zap.NewNop(), accountsvc.NewUser{
		Name: "Root", Email: "Admin@Bloom.test", Password: "long-enough",
	}, cmd)
	require.NoError(t, err)

	assert.Equal(t, domain.RoleAdmin, users.byID[1].Role)
	assert.Equal(t, "admin@bloom.test", users.byID[1].Email)
	assert.Contains(t, out.String(), "created admin admin@bloom.test")
}

func TestCreateAdmin_ShortPassword(t *testing.T) {
	users := &memoryUsers{byID: map[int64]*domain.User{}}

	err := createAdmin(context.Background(), users, zap.NewNop(), accountsvc.NewUser{
		Name: "Root", Email: "admin@bloom.test", Password: "short",
	}, &cobra.Command{})
	_, ok := apperrors.IsValidationError(err)
	assert.True(t, ok)
	assert.Empty(t, users.byID)
}

func TestRootCommands(t *testing.T) {
	root := newRootCmd()
	names := map[string]bool{}
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["migrate"])
	assert.True(t, names["seed"])
	assert.True(t, names["create-admin"])

	seedCmd, _, err := root.Find([]string{"seed"})
	require.NoError(t, err)
	assert.Equal(t, "seed/catalog.yaml", seedCmd.Flag("file").DefValue)
}
