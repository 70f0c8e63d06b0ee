package bootstrap

import (
	"testing"

	"anoa.com/itemprofile/internal/entity"
	"anoa.com/itemprofile/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	return db
}

func TestMigrateAndSeedRolesIsIdempotent(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, Migrate(db))
	require.NoError(t, SeedRoles(db))
	require.NoError(t, SeedRoles(db))

	var names []string
	require.NoError(t, db.Model(&entity.Role{}).Order("name").Pluck("name", &names).Error)
	assert.Equal(t, []string{"admin", "user"}, names)
}

func TestSeedAdminUser(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, Migrate(db))
	require.NoError(t, SeedRoles(db))

	seed := AdminSeed{Username: "admin", Email: "admin@example.com", Password: "admin12345"}
	require.NoError(t, SeedAdminUser(db, seed, logger.Discard()))
	require.NoError(t, SeedAdminUser(db, seed, logger.Discard()))

	var users []entity.User
	require.NoError(t, db.Preload("Roles").Find(&users).Error)
	require.Len(t, users, 1)
	assert.True(t, users[0].Enabled)
	assert.Len(t, users[0].Roles, 2)

	assert.Error(t, SeedAdminUser(db, AdminSeed{}, logger.Discard()))
}
