package models

import (
	"time"

	"github.com/dikoweii/XianTu/internal/game"
)

// MaxCharactersPerAccount caps non-deleted characters per player.
const MaxCharactersPerAccount = 5

// CharacterBase is the immutable identity record of a character. The six
// innate attributes never change after creation; mutable play state lives in
// CharacterGameState.
type CharacterBase struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	CharacterName string `gorm:"size:100" json:"character_name"`
	PlayerID      uint   `gorm:"index" json:"player_id"`
	WorldID       uint   `gorm:"index" json:"world_id"`
	TalentTierID  uint   `json:"talent_tier_id"`

	// Innate attributes, each in [0,10].
	RootBone      int `json:"root_bone"`
	Spirituality  int `json:"spirituality"`
	Comprehension int `json:"comprehension"`
	Fortune       int `json:"fortune"`
	Charm         int `json:"charm"`
	Temperament   int `json:"temperament"`

	OriginID        *uint      `json:"origin_id"`
	SpiritRootID    *uint      `json:"spirit_root_id"`
	SelectedTalents []uint     `gorm:"serializer:json" json:"selected_talents"`
	CurrentAge      int        `json:"current_age"`
	IsActive        bool       `gorm:"default:false" json:"is_active"`
	IsDeleted       bool       `gorm:"default:false" json:"is_deleted"`
	LastPlayed      *time.Time `json:"last_played"`
	PlayTimeMinutes int64      `gorm:"default:0" json:"play_time_minutes"`
	CreatedAt       time.Time  `json:"created_at"`

	GameState *CharacterGameState `gorm:"foreignKey:CharacterID;constraint:OnDelete:CASCADE" json:"game_state,omitempty"`
}

// Innate returns the six attributes as a game.InnateAttributes value.
func (c *CharacterBase) Innate() game.InnateAttributes {
	return game.InnateAttributes{
		RootBone:      c.RootBone,
		Spirituality:  c.Spirituality,
		Comprehension: c.Comprehension,
		Fortune:       c.Fortune,
		Charm:         c.Charm,
		Temperament:   c.Temperament,
	}
}

// CreateCharacterRequest is the creation payload. PlayerID is honored only on
// the super-admin path; players always create for themselves.
type CreateCharacterRequest struct {
	CharacterName string `json:"character_name" binding:"required,max=100"`
	WorldID       uint   `json:"world_id" binding:"required"`
	TalentTierID  uint   `json:"talent_tier_id" binding:"required"`

	RootBone      int `json:"root_bone"`
	Spirituality  int `json:"spirituality"`
	Comprehension int `json:"comprehension"`
	Fortune       int `json:"fortune"`
	Charm         int `json:"charm"`
	Temperament   int `json:"temperament"`

	OriginID          *uint  `json:"origin_id"`
	SpiritRootID      *uint  `json:"spirit_root_id"`
	SelectedTalentIDs []uint `json:"selected_talent_ids"`
	Age               int    `json:"age"`
	PlayerID          uint   `json:"player_id"`
}

// Innate returns the requested attributes as a game.InnateAttributes value.
func (r *CreateCharacterRequest) Innate() game.InnateAttributes {
	return game.InnateAttributes{
		RootBone:      r.RootBone,
		Spirituality:  r.Spirituality,
		Comprehension: r.Comprehension,
		Fortune:       r.Fortune,
		Charm:         r.Charm,
		Temperament:   r.Temperament,
	}
}
