package service

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/dikoweii/XianTu/internal/models"
	"github.com/dikoweii/XianTu/pkg/apperrors"
	"github.com/dikoweii/XianTu/pkg/cache"

	"gorm.io/gorm"
)

const creationDataCacheKey = "rules:creation_data"

// RulesService serves the externally curated game-rule tables: worlds,
// talent tiers, origins, spirit roots, talents and realms. The aggregated
// creation data is cached in Redis and invalidated on every admin write.
type RulesService struct {
	db    *gorm.DB
	cache *cache.Client
}

// NewRulesService creates a rules service.
func NewRulesService(db *gorm.DB, cacheClient *cache.Client) *RulesService {
	return &RulesService{db: db, cache: cacheClient}
}

// GetWorld fetches one world by id.
func (s *RulesService) GetWorld(id uint) (*models.World, error) {
	var world models.World
	err := s.db.First(&world, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("world", id)
	}
	if err != nil {
		return nil, err
	}
	return &world, nil
}

// ListWorlds returns all worlds.
func (s *RulesService) ListWorlds() ([]models.World, error) {
	var worlds []models.World
	if err := s.db.Order("id").Find(&worlds).Error; err != nil {
		return nil, err
	}
	return worlds, nil
}

// GetTalentTier fetches one tier by id.
func (s *RulesService) GetTalentTier(id uint) (*models.TalentTier, error) {
	var tier models.TalentTier
	err := s.db.First(&tier, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("talent tier", id)
	}
	if err != nil {
		return nil, err
	}
	return &tier, nil
}

// ListTalentTiers returns all tiers, rarest first.
func (s *RulesService) ListTalentTiers() ([]models.TalentTier, error) {
	var tiers []models.TalentTier
	if err := s.db.Order("rarity").Find(&tiers).Error; err != nil {
		return nil, err
	}
	return tiers, nil
}

// GetOrigin fetches one origin by id.
func (s *RulesService) GetOrigin(id uint) (*models.Origin, error) {
	var origin models.Origin
	err := s.db.First(&origin, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("origin", id)
	}
	if err != nil {
		return nil, err
	}
	return &origin, nil
}

// GetSpiritRoot fetches one spirit root by id.
func (s *RulesService) GetSpiritRoot(id uint) (*models.SpiritRoot, error) {
	var root models.SpiritRoot
	err := s.db.First(&root, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("spirit root", id)
	}
	if err != nil {
		return nil, err
	}
	return &root, nil
}

// GetTalent fetches one talent by id.
func (s *RulesService) GetTalent(id uint) (*models.Talent, error) {
	var talent models.Talent
	err := s.db.First(&talent, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("talent", id)
	}
	if err != nil {
		return nil, err
	}
	return &talent, nil
}

// ResolveTalents resolves every selected talent id, failing on the first
// unresolved id. An unresolved id is a hard error, never a skip.
func (s *RulesService) ResolveTalents(ids []uint) ([]models.Talent, error) {
	talents := make([]models.Talent, 0, len(ids))
	for _, id := range ids {
		talent, err := s.GetTalent(id)
		if err != nil {
			return nil, err
		}
		talents = append(talents, *talent)
	}
	return talents, nil
}

// ListRealms returns the cultivation ladder in ascending order.
func (s *RulesService) ListRealms() ([]models.Realm, error) {
	var realms []models.Realm
	if err := s.db.Order("sort_order").Find(&realms).Error; err != nil {
		return nil, err
	}
	return realms, nil
}

// GetCreationData aggregates the reference data for the creation screen,
// served from cache when possible.
func (s *RulesService) GetCreationData(ctx context.Context) (*models.CreationData, error) {
	if raw, err := s.cache.Get(ctx, creationDataCacheKey); err == nil {
		var data models.CreationData
		if err := json.Unmarshal(raw, &data); err == nil {
			return &data, nil
		}
	}

	var data models.CreationData
	if err := s.db.Order("id").Find(&data.Origins).Error; err != nil {
		return nil, err
	}
	if err := s.db.Order("id").Find(&data.SpiritRoots).Error; err != nil {
		return nil, err
	}
	if err := s.db.Order("id").Find(&data.Talents).Error; err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(&data); err == nil {
		_ = s.cache.Set(ctx, creationDataCacheKey, raw)
	}
	return &data, nil
}

// InvalidateCreationData drops the cached creation data after an admin
// write to any reference table.
func (s *RulesService) InvalidateCreationData(ctx context.Context) {
	_ = s.cache.Delete(ctx, creationDataCacheKey)
}

// SaveWorld creates or updates a world.
func (s *RulesService) SaveWorld(ctx context.Context, world *models.World) error {
	if err := s.db.Save(world).Error; err != nil {
		return err
	}
	s.InvalidateCreationData(ctx)
	return nil
}

// SaveTalentTier creates or updates a tier.
func (s *RulesService) SaveTalentTier(ctx context.Context, tier *models.TalentTier) error {
	if err := s.db.Save(tier).Error; err != nil {
		return err
	}
	s.InvalidateCreationData(ctx)
	return nil
}

// SaveOrigin creates or updates an origin.
func (s *RulesService) SaveOrigin(ctx context.Context, origin *models.Origin) error {
	if err := s.db.Save(origin).Error; err != nil {
		return err
	}
	s.InvalidateCreationData(ctx)
	return nil
}

// SaveSpiritRoot creates or updates a spirit root.
func (s *RulesService) SaveSpiritRoot(ctx context.Context, root *models.SpiritRoot) error {
	if err := s.db.Save(root).Error; err != nil {
		return err
	}
	s.InvalidateCreationData(ctx)
	return nil
}

// SaveTalent creates or updates a talent.
func (s *RulesService) SaveTalent(ctx context.Context, talent *models.Talent) error {
	if err := s.db.Save(talent).Error; err != nil {
		return err
	}
	s.InvalidateCreationData(ctx)
	return nil
}

// SaveRealm creates or updates a realm.
func (s *RulesService) SaveRealm(ctx context.Context, realm *models.Realm) error {
	if err := s.db.Save(realm).Error; err != nil {
		return err
	}
	s.InvalidateCreationData(ctx)
	return nil
}

// DeleteReference hard-deletes one reference row of the given model.
func (s *RulesService) DeleteReference(ctx context.Context, model any, id uint) error {
	result := s.db.Delete(model, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.NotFound("reference entry", id)
	}
	s.InvalidateCreationData(ctx)
	return nil
}
