package models

import "time"

// World is a playable setting curated by an admin.
type World struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"uniqueIndex;size:100" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	Era         string    `gorm:"size:50" json:"era"`
	CoreRules   JSONMap   `gorm:"serializer:json" json:"core_rules"`
	CreatorID   uint      `gorm:"index" json:"creator_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// TalentTier fixes the point budget available at character creation.
// Lower rarity numbers are rarer tiers.
type TalentTier struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"size:50" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	TotalPoints int    `json:"total_points"`
	Rarity      int    `json:"rarity"`
	Color       string `gorm:"size:20;default:white" json:"color"`
}

// Origin is a selectable background carrying attribute modifiers and a
// talent-point cost.
type Origin struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"size:50" json:"name"`
	Description string `gorm:"type:text" json:"description"`

	RootBoneModifier      int `gorm:"default:0" json:"root_bone_modifier"`
	SpiritualityModifier  int `gorm:"default:0" json:"spirituality_modifier"`
	ComprehensionModifier int `gorm:"default:0" json:"comprehension_modifier"`
	FortuneModifier       int `gorm:"default:0" json:"fortune_modifier"`
	CharmModifier         int `gorm:"default:0" json:"charm_modifier"`
	TemperamentModifier   int `gorm:"default:0" json:"temperament_modifier"`

	SpecialEffects JSONMap `gorm:"serializer:json" json:"special_effects"`
	Rarity         int     `gorm:"default:3" json:"rarity"`
	TalentCost     int     `gorm:"default:0" json:"talent_cost"`
}

// SpiritRoot is a selectable cultivation aptitude.
type SpiritRoot struct {
	ID             uint    `gorm:"primaryKey" json:"id"`
	Name           string  `gorm:"size:50" json:"name"`
	Description    string  `gorm:"type:text" json:"description"`
	BaseMultiplier float64 `json:"base_multiplier"`
	TalentCost     int     `gorm:"default:0" json:"talent_cost"`
}

// Talent is a selectable perk. MaxUses bounds how often its effect may
// trigger in play.
type Talent struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	Name        string  `gorm:"size:50" json:"name"`
	Description string  `gorm:"type:text" json:"description"`
	Effects     JSONMap `gorm:"serializer:json" json:"effects"`
	Rarity      int     `gorm:"default:2" json:"rarity"`
	TalentCost  int     `gorm:"default:1" json:"talent_cost"`
	MaxUses     int     `gorm:"default:1" json:"max_uses"`
}

// Realm is one step of the cultivation progression ladder.
type Realm struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"size:50" json:"name"`
	Title       string `gorm:"size:50" json:"title"`
	Description string `gorm:"type:text" json:"description"`
	Order       int    `gorm:"uniqueIndex;column:sort_order" json:"order"`
}

// JSONMap is a free-form JSON column; its contents are game-balance data
// opaque to this server.
type JSONMap map[string]any

// CreationData aggregates the reference data a client needs to drive the
// character creation screen.
type CreationData struct {
	Origins     []Origin     `json:"origins"`
	SpiritRoots []SpiritRoot `json:"spirit_roots"`
	Talents     []Talent     `json:"talents"`
}
