package users

import (
	"context"
	"testing"

	"github.com/characters-analyzer/backend/pkg/db/dbtest"
	pkgerrors "github.com/characters-analyzer/backend/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func strPtr(s string) *string { return &s }

func TestRepositoryCreateAndFind(t *testing.T) {
	repo := NewRepository(dbtest.Open(t))
	ctx := context.Background()

	created, err := repo.Create(ctx, CreateUserDTO{
		Username:     "ember_fan",
		PasswordHash: "$argon2id$hash",
		Email:        strPtr("ember@example.com"),
	})
	require.NoError(t, err)
	assert.NotEqual(t, "", created.ID.String())

	byName, err := repo.FindByUsername(ctx, "ember_fan")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byName.ID)
	assert.Nil(t, byName.RefreshToken)
	require.NotNil(t, byName.Email)
	assert.Equal(t, "ember@example.com", *byName.Email)

	_, err = repo.FindByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepositoryCreateConflictNamesColumn(t *testing.T) {
	repo := NewRepository(dbtest.Open(t))
	ctx := context.Background()

	_, err := repo.Create(ctx, CreateUserDTO{Username: "ember_fan", PasswordHash: "h", Email: strPtr("a@example.com")})
	require.NoError(t, err)

	_, err = repo.Create(ctx, CreateUserDTO{Username: "ember_fan", PasswordHash: "h"})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeConflict, typed.Code())
	assert.Equal(t, `user with username="ember_fan" already exists`, typed.Message())

	_, err = repo.Create(ctx, CreateUserDTO{Username: "other", PasswordHash: "h", Email: strPtr("a@example.com")})
	require.Error(t, err)
	assert.Equal(t, `user with email="a@example.com" already exists`, pkgerrors.As(err).Message())
}

func TestRepositoryAllowsMultipleUsersWithoutEmail(t *testing.T) {
	repo := NewRepository(dbtest.Open(t))
	ctx := context.Background()

	_, err := repo.Create(ctx, CreateUserDTO{Username: "first", PasswordHash: "h"})
	require.NoError(t, err)
	_, err = repo.Create(ctx, CreateUserDTO{Username: "second", PasswordHash: "h"})
	require.NoError(t, err)
}

func TestRepositoryUpdateRefreshToken(t *testing.T) {
	repo := NewRepository(dbtest.Open(t))
	ctx := context.Background()

	_, err := repo.Create(ctx, CreateUserDTO{Username: "ember_fan", PasswordHash: "h"})
	require.NoError(t, err)

	require.NoError(t, repo.UpdateRefreshToken(ctx, "ember_fan", strPtr("token-1")))
	user, err := repo.FindByUsername(ctx, "ember_fan")
	require.NoError(t, err)
	require.NotNil(t, user.RefreshToken)
	assert.Equal(t, "token-1", *user.RefreshToken)

	require.NoError(t, repo.UpdateRefreshToken(ctx, "ember_fan", nil))
	user, err = repo.FindByUsername(ctx, "ember_fan")
	require.NoError(t, err)
	assert.Nil(t, user.RefreshToken)

	err = repo.UpdateRefreshToken(ctx, "nobody", strPtr("x"))
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepositorySwapRefreshTokenRequiresCurrentValue(t *testing.T) {
	repo := NewRepository(dbtest.Open(t))
	ctx := context.Background()

	_, err := repo.Create(ctx, CreateUserDTO{Username: "ember_fan", PasswordHash: "h"})
	require.NoError(t, err)
	require.NoError(t, repo.UpdateRefreshToken(ctx, "ember_fan", strPtr("token-1")))

	swapped, err := repo.SwapRefreshToken(ctx, "ember_fan", "token-1", "token-2")
	require.NoError(t, err)
	assert.True(t, swapped)

	// a second redemption of token-1 loses and leaves token-2 in place
	swapped, err = repo.SwapRefreshToken(ctx, "ember_fan", "token-1", "token-3")
	require.NoError(t, err)
	assert.False(t, swapped)

	user, err := repo.FindByUsername(ctx, "ember_fan")
	require.NoError(t, err)
	require.NotNil(t, user.RefreshToken)
	assert.Equal(t, "token-2", *user.RefreshToken)

	require.NoError(t, repo.UpdateRefreshToken(ctx, "ember_fan", nil))
	swapped, err = repo.SwapRefreshToken(ctx, "ember_fan", "token-2", "token-4")
	require.NoError(t, err)
	assert.False(t, swapped, "a signed-out user has nothing to rotate")
}

func TestRepositoryUpdatePasswordHash(t *testing.T) {
	repo := NewRepository(dbtest.Open(t))
	ctx := context.Background()

	user, err := repo.Create(ctx, CreateUserDTO{Username: "ember_fan", PasswordHash: "old"})
	require.NoError(t, err)
	require.NoError(t, repo.UpdatePasswordHash(ctx, user.ID, "new"))

	reloaded, err := repo.FindByUsername(ctx, "ember_fan")
	require.NoError(t, err)
	assert.Equal(t, "new", reloaded.PasswordHash)
}

func TestFromModelOmitsCredentials(t *testing.T) {
	repo := NewRepository(dbtest.Open(t))
	user, err := repo.Create(context.Background(), CreateUserDTO{Username: "ember_fan", PasswordHash: "secret-hash"})
	require.NoError(t, err)

	dto := FromModel(user)
	assert.Equal(t, "ember_fan", dto.Username)
	assert.Nil(t, FromModel(nil))
}
