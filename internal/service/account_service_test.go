package service

import (
	"context"
	"testing"

	"github.com/dikoweii/XianTu/internal/models"
	"github.com/dikoweii/XianTu/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndLoginPlayer(t *testing.T) {
	env := newTestEnv(t)

	player, err := env.accounts.RegisterPlayer("han_li", "secret123")
	require.NoError(t, err)
	assert.NotEqual(t, "secret123", player.Password) // stored hashed

	t.Run("duplicate name conflicts", func(t *testing.T) {
		_, err := env.accounts.RegisterPlayer("han_li", "other456")
		assert.True(t, apperrors.IsCode(err, apperrors.CodeConflict))
	})

	t.Run("login issues a token", func(t *testing.T) {
		got, token, err := env.accounts.LoginPlayer("han_li", "secret123")
		require.NoError(t, err)
		assert.Equal(t, player.ID, got.ID)
		assert.NotEmpty(t, token)
	})

	t.Run("wrong password is unauthorized", func(t *testing.T) {
		_, _, err := env.accounts.LoginPlayer("han_li", "wrong")
		assert.True(t, apperrors.IsCode(err, apperrors.CodeUnauthorized))
	})

	t.Run("unknown name is unauthorized, not not-found", func(t *testing.T) {
		_, _, err := env.accounts.LoginPlayer("nobody", "secret123")
		assert.True(t, apperrors.IsCode(err, apperrors.CodeUnauthorized))
	})

	t.Run("banned player cannot log in", func(t *testing.T) {
		banned := true
		_, err := env.accounts.UpdatePlayer(player.ID, &models.UpdatePlayerRequest{IsBanned: &banned})
		require.NoError(t, err)
		_, _, err = env.accounts.LoginPlayer("han_li", "secret123")
		assert.True(t, apperrors.IsCode(err, apperrors.CodeForbidden))
	})
}

func TestAdminAccounts(t *testing.T) {
	env := newTestEnv(t)

	super, err := env.accounts.CreateAdmin(&models.CreateAdminRequest{
		UserName: "root",
		Password: "super-secret",
		Role:     models.RoleSuperAdmin,
	})
	require.NoError(t, err)
	assert.True(t, super.IsSuperAdmin())

	limit := 10
	admin, err := env.accounts.CreateAdmin(&models.CreateAdminRequest{
		UserName:            "helper",
		Password:            "also-secret",
		RedemptionCodeLimit: &limit,
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, admin.Role)
	assert.Equal(t, 10, admin.RedemptionCodeLimit)

	t.Run("invalid role rejected", func(t *testing.T) {
		_, err := env.accounts.CreateAdmin(&models.CreateAdminRequest{
			UserName: "weird",
			Password: "whatever1",
			Role:     "overlord",
		})
		assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))
	})

	t.Run("duplicate admin name conflicts", func(t *testing.T) {
		_, err := env.accounts.CreateAdmin(&models.CreateAdminRequest{
			UserName: "root",
			Password: "whatever1",
			Role:     models.RoleAdmin,
		})
		assert.True(t, apperrors.IsCode(err, apperrors.CodeConflict))
	})

	t.Run("admin login works", func(t *testing.T) {
		_, token, err := env.accounts.LoginAdmin("root", "super-secret")
		require.NoError(t, err)
		assert.NotEmpty(t, token)
	})

	t.Run("cannot delete own account", func(t *testing.T) {
		err := env.accounts.DeleteAdmin(super.ID, super.ID)
		assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))
	})

	t.Run("can delete another admin", func(t *testing.T) {
		require.NoError(t, env.accounts.DeleteAdmin(admin.ID, super.ID))
		_, err := env.accounts.GetAdmin(admin.ID)
		assert.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))
	})
}

func TestDeletePlayerCascades(t *testing.T) {
	env := newTestEnv(t)
	world, tier, origin, root, _ := env.seedCreationRules(t)
	player := env.createPlayer(t, "doomed")

	character, err := env.characters.Create(context.Background(), player.ID, baseRequest(world, tier, origin, root))
	require.NoError(t, err)

	require.NoError(t, env.accounts.DeletePlayer(player.ID))

	var characterCount, stateCount int64
	require.NoError(t, env.db.Model(&models.CharacterBase{}).
		Where("player_id = ?", player.ID).Count(&characterCount).Error)
	require.NoError(t, env.db.Model(&models.CharacterGameState{}).
		Where("character_id = ?", character.ID).Count(&stateCount).Error)
	assert.Equal(t, int64(0), characterCount)
	assert.Equal(t, int64(0), stateCount)
}
