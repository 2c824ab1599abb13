package service

import (
	"testing"
	"time"

	"github.com/dikoweii/XianTu/internal/models"
	"github.com/dikoweii/XianTu/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestAdmin(t *testing.T, env *testEnv, name string, limit int) *models.AdminAccount {
	t.Helper()
	admin, err := env.accounts.CreateAdmin(&models.CreateAdminRequest{
		UserName:            name,
		Password:            "admin-pass",
		RedemptionCodeLimit: &limit,
	})
	require.NoError(t, err)
	return admin
}

func TestRedemptionLifecycle(t *testing.T) {
	env := newTestEnv(t)
	admin := createTestAdmin(t, env, "minter", -1)
	player := env.createPlayer(t, "lucky_one")

	code, err := env.redemption.Create(admin.ID, &models.CreateRedemptionCodeRequest{
		Type:    "spirit_stones",
		Payload: models.JSONMap{"amount": 500},
		MaxUses: 2,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, code.Code)
	assert.Equal(t, &admin.ID, code.CreatorID)

	redeemed, err := env.redemption.Redeem(player.ID, code.Code)
	require.NoError(t, err)
	assert.Equal(t, 1, redeemed.TimesUsed)
	assert.Equal(t, "spirit_stones", redeemed.Type)

	// Second use exhausts it.
	_, err = env.redemption.Redeem(player.ID, code.Code)
	require.NoError(t, err)
	_, err = env.redemption.Redeem(player.ID, code.Code)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))

	t.Run("unknown code", func(t *testing.T) {
		_, err := env.redemption.Redeem(player.ID, "XT-DOESNOTEXIST")
		assert.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))
	})

	t.Run("expired code", func(t *testing.T) {
		future := time.Now().Add(time.Minute)
		expiring, err := env.redemption.Create(admin.ID, &models.CreateRedemptionCodeRequest{
			Type:      "title",
			ExpiresAt: &future,
		})
		require.NoError(t, err)
		require.NoError(t, env.db.Model(expiring).
			Update("expires_at", time.Now().Add(-time.Minute)).Error)

		_, err = env.redemption.Redeem(player.ID, expiring.Code)
		assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))
	})

	t.Run("banned player cannot redeem", func(t *testing.T) {
		banned := true
		_, err := env.accounts.UpdatePlayer(player.ID, &models.UpdatePlayerRequest{IsBanned: &banned})
		require.NoError(t, err)
		fresh, err := env.redemption.Create(admin.ID, &models.CreateRedemptionCodeRequest{Type: "gift"})
		require.NoError(t, err)
		_, err = env.redemption.Redeem(player.ID, fresh.Code)
		assert.True(t, apperrors.IsCode(err, apperrors.CodeForbidden))
	})
}

func TestRedemptionAdminLimit(t *testing.T) {
	env := newTestEnv(t)
	limited := createTestAdmin(t, env, "limited", 2)

	for i := 0; i < 2; i++ {
		_, err := env.redemption.Create(limited.ID, &models.CreateRedemptionCodeRequest{Type: "gift"})
		require.NoError(t, err)
	}
	_, err := env.redemption.Create(limited.ID, &models.CreateRedemptionCodeRequest{Type: "gift"})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeQuotaExceeded))

	t.Run("unlimited admin is unbounded", func(t *testing.T) {
		unlimited := createTestAdmin(t, env, "unlimited", -1)
		for i := 0; i < 5; i++ {
			_, err := env.redemption.Create(unlimited.ID, &models.CreateRedemptionCodeRequest{Type: "gift"})
			require.NoError(t, err)
		}
	})
}

func TestRedemptionValidation(t *testing.T) {
	env := newTestEnv(t)
	admin := createTestAdmin(t, env, "careful", -1)

	t.Run("explicit code collision conflicts", func(t *testing.T) {
		_, err := env.redemption.Create(admin.ID, &models.CreateRedemptionCodeRequest{Code: "XT-FIXED", Type: "gift"})
		require.NoError(t, err)
		_, err = env.redemption.Create(admin.ID, &models.CreateRedemptionCodeRequest{Code: "XT-FIXED", Type: "gift"})
		assert.True(t, apperrors.IsCode(err, apperrors.CodeConflict))
	})

	t.Run("past expiry rejected", func(t *testing.T) {
		past := time.Now().Add(-time.Hour)
		_, err := env.redemption.Create(admin.ID, &models.CreateRedemptionCodeRequest{Type: "gift", ExpiresAt: &past})
		assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))
	})

	t.Run("delete", func(t *testing.T) {
		code, err := env.redemption.Create(admin.ID, &models.CreateRedemptionCodeRequest{Type: "gift"})
		require.NoError(t, err)
		require.NoError(t, env.redemption.Delete(code.ID))
		assert.True(t, apperrors.IsCode(env.redemption.Delete(code.ID), apperrors.CodeNotFound))
	})
}
