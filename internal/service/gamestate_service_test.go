package service

import (
	"context"
	"testing"

	"github.com/dikoweii/XianTu/internal/models"
	"github.com/dikoweii/XianTu/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int       { return &v }
func int64Ptr(v int64) *int64 { return &v }
func strPtr(v string) *string { return &v }

func setupCharacter(t *testing.T) (*testEnv, *models.PlayerAccount, *models.CharacterBase) {
	t.Helper()
	env := newTestEnv(t)
	world, tier, origin, root, _ := env.seedCreationRules(t)
	player := env.createPlayer(t, "cultivator")
	character, err := env.characters.Create(context.Background(), player.ID, baseRequest(world, tier, origin, root))
	require.NoError(t, err)
	return env, player, character
}

func TestPatchVersionMonotonic(t *testing.T) {
	env, player, character := setupCharacter(t)
	ctx := context.Background()

	state, err := env.gameStates.Get(character.ID, player.ID)
	require.NoError(t, err)
	require.Equal(t, int64(0), state.Version)

	// Every accepted patch bumps version by exactly one, changed or not.
	for i := 1; i <= 3; i++ {
		updated, err := env.gameStates.Patch(ctx, character.ID, player.ID, &models.GameStatePatch{
			SpiritStones: int64Ptr(100),
		})
		require.NoError(t, err)
		assert.Equal(t, int64(i), updated.Version)
		assert.True(t, updated.IsDirty)
	}

	updated, err := env.gameStates.Patch(ctx, character.ID, player.ID, &models.GameStatePatch{
		RealmName:     strPtr("炼气"),
		RealmProgress: intPtr(30),
		Location:      strPtr("青云山"),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(4), updated.Version)
	assert.Equal(t, "炼气", updated.RealmName)
	assert.Equal(t, 30, updated.RealmProgress)
	assert.Equal(t, "青云山", updated.Location)
	// Untouched fields survive a sparse patch.
	assert.Equal(t, int64(100), updated.SpiritStones)
	assert.Equal(t, 150, updated.Health)
}

func TestSyncClearsDirtyAndIsIdempotent(t *testing.T) {
	env, player, character := setupCharacter(t)
	ctx := context.Background()

	_, err := env.gameStates.Patch(ctx, character.ID, player.ID, &models.GameStatePatch{
		Reputation: intPtr(50),
	})
	require.NoError(t, err)

	synced, err := env.gameStates.Sync(ctx, character.ID, player.ID, 30)
	require.NoError(t, err)
	assert.False(t, synced.IsDirty)
	assert.NotNil(t, synced.LastSyncTime)
	assert.Equal(t, int64(1), synced.Version) // sync does not bump version

	var base models.CharacterBase
	require.NoError(t, env.db.First(&base, character.ID).Error)
	assert.Equal(t, int64(30), base.PlayTimeMinutes)
	assert.NotNil(t, base.LastPlayed)

	// Syncing an already-clean state is a no-op success, not an error.
	again, err := env.gameStates.Sync(ctx, character.ID, player.ID, 0)
	require.NoError(t, err)
	assert.False(t, again.IsDirty)
	assert.Equal(t, int64(1), again.Version)

	_, err = env.gameStates.Sync(ctx, character.ID, player.ID, -5)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))
}

func TestSyncStatus(t *testing.T) {
	env, player, character := setupCharacter(t)
	ctx := context.Background()

	status, err := env.gameStates.Status(character.ID, player.ID)
	require.NoError(t, err)
	assert.False(t, status.IsDirty)
	assert.Equal(t, int64(0), status.Version)
	assert.Nil(t, status.LastSyncTime)

	_, err = env.gameStates.Patch(ctx, character.ID, player.ID, &models.GameStatePatch{
		Health: intPtr(80),
	})
	require.NoError(t, err)

	status, err = env.gameStates.Status(character.ID, player.ID)
	require.NoError(t, err)
	assert.True(t, status.IsDirty)
	assert.Equal(t, int64(1), status.Version)
}

func TestSyncStatusWithoutState(t *testing.T) {
	env, player, character := setupCharacter(t)

	// Drop the state row to simulate a partially-written character.
	require.NoError(t, env.db.Where("character_id = ?", character.ID).
		Delete(&models.CharacterGameState{}).Error)

	status, err := env.gameStates.Status(character.ID, player.ID)
	require.NoError(t, err)
	assert.False(t, status.IsDirty)
	assert.Equal(t, int64(0), status.Version)
	assert.Nil(t, status.LastSyncTime)
}

func TestGetRegeneratesMissingState(t *testing.T) {
	env, player, character := setupCharacter(t)

	var original models.CharacterGameState
	require.NoError(t, env.db.Where("character_id = ?", character.ID).First(&original).Error)
	require.NoError(t, env.db.Delete(&original).Error)

	rebuilt, err := env.gameStates.Get(character.ID, player.ID)
	require.NoError(t, err)

	// Regeneration reproduces the creation-time derivation exactly.
	assert.Equal(t, original.Health, rebuilt.Health)
	assert.Equal(t, original.SpiritualPower, rebuilt.SpiritualPower)
	assert.Equal(t, original.DivineSense, rebuilt.DivineSense)
	assert.Equal(t, original.MaxLifespan, rebuilt.MaxLifespan)
	assert.Equal(t, original.Age, rebuilt.Age)
	assert.Equal(t, int64(0), rebuilt.Version)
	assert.False(t, rebuilt.IsDirty)

	// The repair persisted: a second read finds the same row.
	again, err := env.gameStates.Get(character.ID, player.ID)
	require.NoError(t, err)
	assert.Equal(t, rebuilt.ID, again.ID)
}

func TestBatchSync(t *testing.T) {
	env := newTestEnv(t)
	world, tier, origin, root, _ := env.seedCreationRules(t)
	player := env.createPlayer(t, "batcher")
	ctx := context.Background()

	var characters []*models.CharacterBase
	for _, name := range []string{"甲", "乙", "丙"} {
		req := baseRequest(world, tier, origin, root)
		req.CharacterName = name
		c, err := env.characters.Create(ctx, player.ID, req)
		require.NoError(t, err)
		characters = append(characters, c)
	}

	// Dirty the first two, leave the third clean.
	for _, c := range characters[:2] {
		_, err := env.gameStates.Patch(ctx, c.ID, player.ID, &models.GameStatePatch{
			SpiritStones: int64Ptr(10),
		})
		require.NoError(t, err)
	}

	result, err := env.gameStates.SyncAll(ctx, player.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, result.SyncedCount)
	require.Len(t, result.Results, 3)

	outcomes := map[string]string{}
	for _, entry := range result.Results {
		outcomes[entry.CharacterName] = entry.Outcome
	}
	assert.Equal(t, models.SyncOutcomeSynced, outcomes["甲"])
	assert.Equal(t, models.SyncOutcomeSynced, outcomes["乙"])
	assert.Equal(t, models.SyncOutcomeNoChanges, outcomes["丙"])

	// A repeat run finds nothing dirty.
	result, err = env.gameStates.SyncAll(ctx, player.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, result.SyncedCount)
}

func TestPatchForeignCharacterForbidden(t *testing.T) {
	env, _, character := setupCharacter(t)
	other := env.createPlayer(t, "someone_else")

	_, err := env.gameStates.Patch(context.Background(), character.ID, other.ID, &models.GameStatePatch{
		Health: intPtr(1),
	})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeForbidden))
}
