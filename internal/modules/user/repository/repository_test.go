package repository

import (
	"context"
	"net/http"
	"testing"

	"anoa.com/itemprofile/internal/entity"
	"anoa.com/itemprofile/internal/testdb"
	"anoa.com/itemprofile/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUser(username, email string) NewUser {
	return NewUser{
		Username:     username,
		Email:        email,
		PasswordHash: "hash",
		FirstName:    "Alice",
		LastName:     "Liddell",
	}
}

func TestCreateUser_AssignsDefaultRole(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(testdb.New(t), entity.RoleUser)

	id, err := repo.CreateUser(ctx, newUser("alice", "alice@x.com"))
	require.NoError(t, err)
	assert.NotEqual(t, "", id.ID.String())
	assert.True(t, id.Enabled)
	assert.Equal(t, []string{"user"}, id.Roles)

	loaded, err := repo.LoadByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, id.ID, loaded.ID)
	assert.Equal(t, "alice@x.com", loaded.Email)
	assert.Equal(t, []string{"user"}, loaded.Roles)
}

func TestCreateUser_DuplicateUsername(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(testdb.New(t), entity.RoleUser)

	_, err := repo.CreateUser(ctx, newUser("alice", "alice@x.com"))
	require.NoError(t, err)

	_, err = repo.CreateUser(ctx, newUser("alice", "other@x.com"))
	require.Error(t, err)
	assert.ErrorIs(t, err, apperror.ErrConflict)
	assert.Equal(t, http.StatusBadRequest, apperror.MapErrorToStatus(err))
	assert.Equal(t, "username is already taken", err.Error())
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(testdb.New(t), entity.RoleUser)

	_, err := repo.CreateUser(ctx, newUser("alice", "alice@x.com"))
	require.NoError(t, err)

	_, err = repo.CreateUser(ctx, newUser("bob", "alice@x.com"))
	assert.ErrorIs(t, err, apperror.ErrConflict)
	assert.Equal(t, "email is already in use", err.Error())

	exists, err := repo.ExistsByUsername(ctx, "bob")
	require.NoError(t, err)
	assert.False(t, exists, "failed insert must not leave a row behind")
}

func TestLoadByUsername_NotFound(t *testing.T) {
	repo := NewUserRepository(testdb.New(t), entity.RoleUser)

	_, err := repo.LoadByUsername(context.Background(), "ghost")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestLoadByUsername_FallsBackToDefaultRole(t *testing.T) {
	ctx := context.Background()
	db := testdb.New(t)
	repo := NewUserRepository(db, entity.RoleUser)

	require.NoError(t, db.Create(&entity.User{
		Username: "norole", Email: "norole@x.com", PasswordHash: "hash", Enabled: true,
	}).Error)

	id, err := repo.LoadByUsername(ctx, "norole")
	require.NoError(t, err)
	assert.Equal(t, []string{"user"}, id.Roles)
}

func TestCreateUser_MissingDefaultRoleRowStillReportsDefault(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(testdb.New(t), "member")

	id, err := repo.CreateUser(ctx, newUser("carol", "carol@x.com"))
	require.NoError(t, err)
	assert.Equal(t, []string{"member"}, id.Roles)
}

func TestExistsByEmail(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(testdb.New(t), entity.RoleUser)

	_, err := repo.CreateUser(ctx, newUser("alice", "alice@x.com"))
	require.NoError(t, err)

	ok, err := repo.ExistsByEmail(ctx, "alice@x.com")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.ExistsByEmail(ctx, "nobody@x.com")
	require.NoError(t, err)
	assert.False(t, ok)
}
