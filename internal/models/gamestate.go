package models

import "time"

// CharacterGameState is the mutable companion record of a CharacterBase,
// one-to-one, destroyed with it. Version counts accepted updates; IsDirty
// marks unsynced changes.
type CharacterGameState struct {
	ID          uint `gorm:"primaryKey" json:"id"`
	CharacterID uint `gorm:"uniqueIndex" json:"character_id"`

	Health            int     `json:"health"`
	MaxHealth         int     `json:"max_health"`
	SpiritualPower    int     `json:"spiritual_power"`
	MaxSpiritualPower int     `json:"max_spiritual_power"`
	DivineSense       int     `json:"divine_sense"`
	MaxDivineSense    int     `json:"max_divine_sense"`
	Age               int     `json:"age"`
	MaxLifespan       int     `json:"max_lifespan"`
	RealmName         string  `gorm:"size:50;default:'凡人'" json:"realm_name"`
	RealmProgress     int     `gorm:"default:0" json:"realm_progress"`
	Reputation        int     `gorm:"default:0" json:"reputation"`
	Location          string  `gorm:"size:200" json:"location"`
	SpiritStones      int64   `gorm:"default:0" json:"spirit_stones"`
	Comprehension     float64 `gorm:"default:0" json:"comprehension_progress"`

	Version      int64      `gorm:"default:0" json:"version"`
	IsDirty      bool       `gorm:"default:false" json:"is_dirty"`
	LastSyncTime *time.Time `json:"last_sync_time"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// GameStatePatch is a sparse update to a CharacterGameState. Only non-nil
// fields are applied; the field list is closed so a client cannot touch
// bookkeeping columns like Version or IsDirty.
type GameStatePatch struct {
	Health            *int     `json:"health"`
	MaxHealth         *int     `json:"max_health"`
	SpiritualPower    *int     `json:"spiritual_power"`
	MaxSpiritualPower *int     `json:"max_spiritual_power"`
	DivineSense       *int     `json:"divine_sense"`
	MaxDivineSense    *int     `json:"max_divine_sense"`
	Age               *int     `json:"age"`
	MaxLifespan       *int     `json:"max_lifespan"`
	RealmName         *string  `json:"realm_name"`
	RealmProgress     *int     `json:"realm_progress"`
	Reputation        *int     `json:"reputation"`
	Location          *string  `json:"location"`
	SpiritStones      *int64   `json:"spirit_stones"`
	Comprehension     *float64 `json:"comprehension_progress"`
}

// Apply copies every set patch field onto the state, field by field.
func (p *GameStatePatch) Apply(s *CharacterGameState) {
	if p.Health != nil {
		s.Health = *p.Health
	}
	if p.MaxHealth != nil {
		s.MaxHealth = *p.MaxHealth
	}
	if p.SpiritualPower != nil {
		s.SpiritualPower = *p.SpiritualPower
	}
	if p.MaxSpiritualPower != nil {
		s.MaxSpiritualPower = *p.MaxSpiritualPower
	}
	if p.DivineSense != nil {
		s.DivineSense = *p.DivineSense
	}
	if p.MaxDivineSense != nil {
		s.MaxDivineSense = *p.MaxDivineSense
	}
	if p.Age != nil {
		s.Age = *p.Age
	}
	if p.MaxLifespan != nil {
		s.MaxLifespan = *p.MaxLifespan
	}
	if p.RealmName != nil {
		s.RealmName = *p.RealmName
	}
	if p.RealmProgress != nil {
		s.RealmProgress = *p.RealmProgress
	}
	if p.Reputation != nil {
		s.Reputation = *p.Reputation
	}
	if p.Location != nil {
		s.Location = *p.Location
	}
	if p.SpiritStones != nil {
		s.SpiritStones = *p.SpiritStones
	}
	if p.Comprehension != nil {
		s.Comprehension = *p.Comprehension
	}
}

// SyncRequest is the payload for a manual sync acknowledgement.
type SyncRequest struct {
	PlayTimeMinutes int64 `json:"play_time_minutes" binding:"min=0"`
}

// SyncStatus reports whether a character has unsynced changes.
type SyncStatus struct {
	CharacterID  uint       `json:"character_id"`
	IsDirty      bool       `json:"is_dirty"`
	Version      int64      `json:"version"`
	LastSyncTime *time.Time `json:"last_sync_time"`
}

// Batch sync outcome labels.
const (
	SyncOutcomeSynced    = "synced"
	SyncOutcomeNoChanges = "no_changes"
)

// BatchSyncEntry is the per-character outcome of a batch sync.
type BatchSyncEntry struct {
	CharacterID   uint   `json:"character_id"`
	CharacterName string `json:"character_name"`
	Outcome       string `json:"outcome"`
}

// BatchSyncResult summarizes a batch sync over one account.
type BatchSyncResult struct {
	Results     []BatchSyncEntry `json:"results"`
	SyncedCount int              `json:"synced_count"`
}
