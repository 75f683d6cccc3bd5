package bootstrap

import (
	"context"
	"testing"

	"agora/internal/config"
	"agora/internal/database"
	"agora/internal/models"
	"agora/internal/repository"
	"agora/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func newAccounts(t *testing.T) (*gorm.DB, *service.AccountService) {
	t.Helper()
	db, err := database.Open(&config.Config{DBDriver: "sqlite", DBPath: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db, service.NewAccountService(repository.NewUserRepository(db)).WithHashCost(bcrypt.MinCost)
}

func devConfig() *config.Config {
	return &config.Config{
		Env:               "development",
		DevBootstrapStaff: true,
		DevStaffUsername:  "agora_staff",
		DevStaffEmail:     "staff@agora.local",
		DevStaffPassword:  "Correct-Horse-42",
	}
}

func TestEnsureDevStaff_CreatesStaffWithoutProfile(t *testing.T) {
	db, accounts := newAccounts(t)
	ctx := context.Background()

	require.NoError(t, EnsureDevStaff(ctx, devConfig(), accounts))
	// Second run finds the existing account.
	require.NoError(t, EnsureDevStaff(ctx, devConfig(), accounts))

	var user models.User
	require.NoError(t, db.Where("username = ?", "agora_staff").First(&user).Error)
	assert.True(t, user.IsStaff)

	var profiles int64
	require.NoError(t, db.Model(&models.Profile{}).Count(&profiles).Error)
	assert.Zero(t, profiles)
}

func TestEnsureDevStaff_Skipped(t *testing.T) {
	_, accounts := newAccounts(t)

	cfg := devConfig()
	cfg.Env = "production"
	assert.NoError(t, EnsureDevStaff(context.Background(), cfg, accounts))

	cfg = devConfig()
	cfg.DevStaffPassword = ""
	assert.Error(t, EnsureDevStaff(context.Background(), cfg, accounts))

	cfg.DevBootstrapStaff = false
	assert.NoError(t, EnsureDevStaff(context.Background(), cfg, accounts))
}

func TestSeedIfEmpty(t *testing.T) {
	db, _ := newAccounts(t)

	require.Error(t, seedIfEmpty(db, Options{SeedPreset: "nope"}))
	require.NoError(t, seedIfEmpty(db, Options{SeedPreset: "minimal"}))

	var posts int64
	require.NoError(t, db.Model(&models.Post{}).Count(&posts).Error)
	assert.NotZero(t, posts)

	// A populated database is left alone.
	require.NoError(t, seedIfEmpty(db, Options{SeedPreset: "minimal"}))
	var again int64
	require.NoError(t, db.Model(&models.Post{}).Count(&again).Error)
	assert.Equal(t, posts, again)
}
