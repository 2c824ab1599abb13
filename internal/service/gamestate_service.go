package service

import (
	"context"
	"errors"
	"time"

	"github.com/dikoweii/XianTu/internal/game"
	"github.com/dikoweii/XianTu/internal/models"
	"github.com/dikoweii/XianTu/pkg/apperrors"
	"github.com/dikoweii/XianTu/pkg/observability"

	"gorm.io/gorm"
)

// GameStateService owns the versioned, dirty-flagged mutable state of each
// character and its synchronization contract with offline clients.
type GameStateService struct {
	db         *gorm.DB
	characters *CharacterService
	derive     game.DeriveFunc
	metrics    *observability.Metrics
}

// NewGameStateService creates a game state service. A nil derive uses the
// standard derivation.
func NewGameStateService(db *gorm.DB, characters *CharacterService, derive game.DeriveFunc, metrics *observability.Metrics) *GameStateService {
	if derive == nil {
		derive = game.Derive
	}
	return &GameStateService{
		db:         db,
		characters: characters,
		derive:     derive,
		metrics:    metrics,
	}
}

// ensureState loads the game state for character, regenerating it from the
// immutable base when missing. Regeneration is a repair path, not an error:
// the rebuilt record is clean, version 0, derived from the persisted
// attributes and age, so it reproduces the creation-time values.
func (s *GameStateService) ensureState(tx *gorm.DB, character *models.CharacterBase) (*models.CharacterGameState, error) {
	// Locked read: Patch and Sync mutate the row they get back, so the lock
	// has to be taken here, on the SELECT.
	var state models.CharacterGameState
	err := lockForUpdate(tx).Where("character_id = ?", character.ID).First(&state).Error
	if err == nil {
		return &state, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	derived := s.derive(character.Innate(), character.CurrentAge)
	state = models.CharacterGameState{
		CharacterID:       character.ID,
		Health:            derived.Health,
		MaxHealth:         derived.Health,
		SpiritualPower:    derived.SpiritualPower,
		MaxSpiritualPower: derived.SpiritualPower,
		DivineSense:       derived.DivineSense,
		MaxDivineSense:    derived.DivineSense,
		Age:               derived.Age,
		MaxLifespan:       derived.MaxLifespan,
		Version:           0,
		IsDirty:           false,
	}
	if err := tx.Create(&state).Error; err != nil {
		return nil, err
	}
	return &state, nil
}

// Get returns the character's game state, repairing a missing record.
func (s *GameStateService) Get(characterID, playerID uint) (*models.CharacterGameState, error) {
	var state *models.CharacterGameState
	err := s.db.Transaction(func(tx *gorm.DB) error {
		character, err := s.characters.getOwned(tx, characterID, playerID)
		if err != nil {
			return err
		}
		state, err = s.ensureState(tx, character)
		return err
	})
	if err != nil {
		return nil, err
	}
	return state, nil
}

// Patch applies a sparse update. Every accepted patch increments version by
// exactly one and marks the record dirty, whether or not any value actually
// changed: version counts updates, it does not hash content. The write is a
// compare-and-swap on version, so two racing patches cannot both land on the
// same version.
func (s *GameStateService) Patch(ctx context.Context, characterID, playerID uint, patch *models.GameStatePatch) (*models.CharacterGameState, error) {
	var updated *models.CharacterGameState
	err := s.db.Transaction(func(tx *gorm.DB) error {
		character, err := s.characters.getOwned(tx, characterID, playerID)
		if err != nil {
			return err
		}
		state, err := s.ensureState(tx, character)
		if err != nil {
			return err
		}

		oldVersion := state.Version
		patch.Apply(state)

		result := tx.Model(&models.CharacterGameState{}).
			Where("id = ? AND version = ?", state.ID, oldVersion).
			Updates(map[string]any{
				"health":              state.Health,
				"max_health":          state.MaxHealth,
				"spiritual_power":     state.SpiritualPower,
				"max_spiritual_power": state.MaxSpiritualPower,
				"divine_sense":        state.DivineSense,
				"max_divine_sense":    state.MaxDivineSense,
				"age":                 state.Age,
				"max_lifespan":        state.MaxLifespan,
				"realm_name":          state.RealmName,
				"realm_progress":      state.RealmProgress,
				"reputation":          state.Reputation,
				"location":            state.Location,
				"spirit_stones":       state.SpiritStones,
				"comprehension":       state.Comprehension,
				"version":             oldVersion + 1,
				"is_dirty":            true,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return apperrors.Conflict("game state was modified concurrently, retry with fresh data")
		}
		state.Version = oldVersion + 1
		state.IsDirty = true

		if character.IsActive {
			if err := tx.Model(character).Update("last_played", time.Now()).Error; err != nil {
				return err
			}
		}

		updated = state
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.metrics.GameStateUpdate(ctx, "accepted")
	return updated, nil
}

// Sync acknowledges the client has persisted the current state: clears the
// dirty flag and stamps last_sync_time. Syncing an already-clean record is
// an idempotent success; the stamp still advances so clients see when the
// server last acknowledged them. An optional play-time increment accrues on
// the character, and last_played always refreshes.
func (s *GameStateService) Sync(ctx context.Context, characterID, playerID uint, playMinutes int64) (*models.CharacterGameState, error) {
	if playMinutes < 0 {
		return nil, apperrors.Validation("play_time_minutes must not be negative")
	}

	var state *models.CharacterGameState
	wasDirty := false
	err := s.db.Transaction(func(tx *gorm.DB) error {
		character, err := s.characters.getOwned(tx, characterID, playerID)
		if err != nil {
			return err
		}
		st, err := s.ensureState(tx, character)
		if err != nil {
			return err
		}
		wasDirty = st.IsDirty

		now := time.Now()
		if err := tx.Model(&models.CharacterGameState{}).
			Where("id = ?", st.ID).
			Updates(map[string]any{
				"is_dirty":       false,
				"last_sync_time": now,
			}).Error; err != nil {
			return err
		}
		st.IsDirty = false
		st.LastSyncTime = &now

		updates := map[string]any{"last_played": now}
		if playMinutes > 0 {
			updates["play_time_minutes"] = gorm.Expr("play_time_minutes + ?", playMinutes)
		}
		if err := tx.Model(character).Updates(updates).Error; err != nil {
			return err
		}

		state = st
		return nil
	})
	if err != nil {
		return nil, err
	}

	if wasDirty {
		s.metrics.SyncOperation(ctx, models.SyncOutcomeSynced)
	} else {
		s.metrics.SyncOperation(ctx, models.SyncOutcomeNoChanges)
	}
	return state, nil
}

// Status reports sync state without mutating anything. A character that has
// no game state yet reports a synthetic nothing-to-sync status.
func (s *GameStateService) Status(characterID, playerID uint) (*models.SyncStatus, error) {
	character, err := s.characters.Get(characterID, playerID)
	if err != nil {
		return nil, err
	}

	var state models.CharacterGameState
	err = s.db.Where("character_id = ?", character.ID).First(&state).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &models.SyncStatus{CharacterID: character.ID}, nil
	}
	if err != nil {
		return nil, err
	}

	return &models.SyncStatus{
		CharacterID:  character.ID,
		IsDirty:      state.IsDirty,
		Version:      state.Version,
		LastSyncTime: state.LastSyncTime,
	}, nil
}

// SyncAll walks every non-deleted character of the account and syncs the
// dirty ones. Each character's sync is independent; the result lists the
// outcome per character and counts the ones actually synced.
func (s *GameStateService) SyncAll(ctx context.Context, playerID uint) (*models.BatchSyncResult, error) {
	characters, err := s.characters.ListMine(playerID)
	if err != nil {
		return nil, err
	}
	if s.characters.accounts.IsBanned(playerID) {
		return nil, apperrors.Forbidden("this account is banned")
	}

	result := &models.BatchSyncResult{Results: make([]models.BatchSyncEntry, 0, len(characters))}
	for i := range characters {
		character := &characters[i]

		var state models.CharacterGameState
		err := s.db.Where("character_id = ?", character.ID).First(&state).Error
		if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && !state.IsDirty) {
			result.Results = append(result.Results, models.BatchSyncEntry{
				CharacterID:   character.ID,
				CharacterName: character.CharacterName,
				Outcome:       models.SyncOutcomeNoChanges,
			})
			continue
		}
		if err != nil {
			return nil, err
		}

		if _, err := s.Sync(ctx, character.ID, playerID, 0); err != nil {
			return nil, err
		}
		result.Results = append(result.Results, models.BatchSyncEntry{
			CharacterID:   character.ID,
			CharacterName: character.CharacterName,
			Outcome:       models.SyncOutcomeSynced,
		})
		result.SyncedCount++
	}
	return result, nil
}
