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

// CharacterService orchestrates character creation and lifecycle: the
// precondition gates, the talent-point budget, the atomic base+state insert,
// activation and deletion.
type CharacterService struct {
	db       *gorm.DB
	accounts *AccountService
	rules    *RulesService
	derive   game.DeriveFunc
	metrics  *observability.Metrics
}

// NewCharacterService creates a character service. A nil derive uses the
// standard derivation.
func NewCharacterService(db *gorm.DB, accounts *AccountService, rules *RulesService, derive game.DeriveFunc, metrics *observability.Metrics) *CharacterService {
	if derive == nil {
		derive = game.Derive
	}
	return &CharacterService{
		db:       db,
		accounts: accounts,
		rules:    rules,
		derive:   derive,
		metrics:  metrics,
	}
}

// Create validates and persists a new character for ownerID. Preconditions
// run in a fixed order and the first failure aborts with no writes; the
// CharacterBase and its derived CharacterGameState are inserted in one
// transaction so neither exists without the other.
func (s *CharacterService) Create(ctx context.Context, ownerID uint, req *models.CreateCharacterRequest) (*models.CharacterBase, error) {
	owner, err := s.accounts.GetPlayer(ownerID)
	if err != nil {
		s.metrics.CharacterCreation(ctx, "rejected")
		return nil, err
	}
	if owner.IsBanned {
		s.metrics.CharacterCreation(ctx, "rejected")
		return nil, apperrors.Forbidden("this account is banned")
	}

	attrs := req.Innate()
	if err := attrs.Validate(); err != nil {
		s.metrics.CharacterCreation(ctx, "rejected")
		return nil, apperrors.Validation(err.Error())
	}

	if _, err := s.rules.GetWorld(req.WorldID); err != nil {
		s.metrics.CharacterCreation(ctx, "rejected")
		return nil, err
	}
	tier, err := s.rules.GetTalentTier(req.TalentTierID)
	if err != nil {
		s.metrics.CharacterCreation(ctx, "rejected")
		return nil, err
	}

	budget := game.BudgetInput{TierCap: tier.TotalPoints, Attributes: attrs}
	if req.OriginID != nil {
		origin, err := s.rules.GetOrigin(*req.OriginID)
		if err != nil {
			s.metrics.CharacterCreation(ctx, "rejected")
			return nil, err
		}
		budget.Origin = &game.CostedSelection{Name: origin.Name, Cost: origin.TalentCost}
	}
	if req.SpiritRootID != nil {
		root, err := s.rules.GetSpiritRoot(*req.SpiritRootID)
		if err != nil {
			s.metrics.CharacterCreation(ctx, "rejected")
			return nil, err
		}
		budget.SpiritRoot = &game.CostedSelection{Name: root.Name, Cost: root.TalentCost}
	}
	talents, err := s.rules.ResolveTalents(req.SelectedTalentIDs)
	if err != nil {
		s.metrics.CharacterCreation(ctx, "rejected")
		return nil, err
	}
	for _, t := range talents {
		budget.Talents = append(budget.Talents, game.CostedSelection{Name: t.Name, Cost: t.TalentCost})
	}

	if total, err := game.ValidateBudget(budget); err != nil {
		s.metrics.CharacterCreation(ctx, "rejected")
		return nil, apperrors.BudgetExceeded(total, tier.TotalPoints)
	}

	age := req.Age
	if age <= 0 {
		age = game.DefaultStartingAge
	}

	character := &models.CharacterBase{
		CharacterName:   req.CharacterName,
		PlayerID:        ownerID,
		WorldID:         req.WorldID,
		TalentTierID:    req.TalentTierID,
		RootBone:        req.RootBone,
		Spirituality:    req.Spirituality,
		Comprehension:   req.Comprehension,
		Fortune:         req.Fortune,
		Charm:           req.Charm,
		Temperament:     req.Temperament,
		OriginID:        req.OriginID,
		SpiritRootID:    req.SpiritRootID,
		SelectedTalents: req.SelectedTalentIDs,
		CurrentAge:      age,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		// Lock the owner row so a concurrent creation from the same account
		// cannot slip past the quota count.
		var lockedOwner models.PlayerAccount
		if err := lockForUpdate(tx).First(&lockedOwner, ownerID).Error; err != nil {
			return err
		}

		var count int64
		if err := tx.Model(&models.CharacterBase{}).
			Where("player_id = ? AND is_deleted = ?", ownerID, false).
			Count(&count).Error; err != nil {
			return err
		}
		if count >= models.MaxCharactersPerAccount {
			return apperrors.QuotaExceeded(models.MaxCharactersPerAccount)
		}

		if err := tx.Create(character).Error; err != nil {
			return err
		}

		derived := s.derive(attrs, age)
		state := &models.CharacterGameState{
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
		return tx.Create(state).Error
	})
	if err != nil {
		s.metrics.CharacterCreation(ctx, "rejected")
		return nil, err
	}

	s.metrics.CharacterCreation(ctx, "created")
	return character, nil
}

// getOwned loads a non-deleted character owned by playerID, enforcing the
// ownership and ban gates shared by every character operation.
func (s *CharacterService) getOwned(tx *gorm.DB, characterID, playerID uint) (*models.CharacterBase, error) {
	// The ban check must ride the same handle as the rest of the lookup; a
	// read through s.db here would run outside the caller's transaction.
	if s.accounts.bannedIn(tx, playerID) {
		return nil, apperrors.Forbidden("this account is banned")
	}

	var character models.CharacterBase
	err := tx.Where("id = ? AND player_id = ? AND is_deleted = ?", characterID, playerID, false).
		First(&character).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// Distinguish a foreign character from a missing one so ownership
		// violations surface as Forbidden, not NotFound.
		var any models.CharacterBase
		if e := tx.Where("id = ? AND is_deleted = ?", characterID, false).First(&any).Error; e == nil {
			return nil, apperrors.Forbidden("you do not own this character")
		}
		return nil, apperrors.NotFound("character", characterID)
	}
	if err != nil {
		return nil, err
	}
	return &character, nil
}

// Get returns one of the caller's characters.
func (s *CharacterService) Get(characterID, playerID uint) (*models.CharacterBase, error) {
	return s.getOwned(s.db, characterID, playerID)
}

// ListMine returns the caller's non-deleted characters in creation order.
func (s *CharacterService) ListMine(playerID uint) ([]models.CharacterBase, error) {
	var characters []models.CharacterBase
	err := s.db.Where("player_id = ? AND is_deleted = ?", playerID, false).
		Order("id").Find(&characters).Error
	if err != nil {
		return nil, err
	}
	return characters, nil
}

// Delete hard-deletes a character and its game state in one transaction.
func (s *CharacterService) Delete(characterID, playerID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		character, err := s.getOwned(tx, characterID, playerID)
		if err != nil {
			return err
		}
		if err := tx.Where("character_id = ?", character.ID).
			Delete(&models.CharacterGameState{}).Error; err != nil {
			return err
		}
		return tx.Delete(character).Error
	})
}

// Activate makes characterID the account's single active character:
// deactivate all, activate one, stamp last_played, atomically.
func (s *CharacterService) Activate(characterID, playerID uint) (*models.CharacterBase, error) {
	var activated *models.CharacterBase
	err := s.db.Transaction(func(tx *gorm.DB) error {
		character, err := s.getOwned(tx, characterID, playerID)
		if err != nil {
			return err
		}

		if err := tx.Model(&models.CharacterBase{}).
			Where("player_id = ? AND id <> ?", playerID, character.ID).
			Update("is_active", false).Error; err != nil {
			return err
		}

		now := time.Now()
		if err := tx.Model(character).Updates(map[string]any{
			"is_active":   true,
			"last_played": now,
		}).Error; err != nil {
			return err
		}
		character.IsActive = true
		character.LastPlayed = &now
		activated = character
		return nil
	})
	if err != nil {
		return nil, err
	}
	return activated, nil
}
