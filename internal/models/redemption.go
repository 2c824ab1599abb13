package models

import "time"

// UnlimitedUses marks a redemption code without a use cap.
const UnlimitedUses = -1

// RedemptionCode grants game content when redeemed. Payload shape depends on
// Type and is opaque to the server.
type RedemptionCode struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	Code      string     `gorm:"uniqueIndex;size:50" json:"code"`
	Type      string     `gorm:"size:50" json:"type"`
	Payload   JSONMap    `gorm:"serializer:json" json:"payload"`
	MaxUses   int        `gorm:"default:1" json:"max_uses"`
	TimesUsed int        `gorm:"default:0" json:"times_used"`
	ExpiresAt *time.Time `json:"expires_at"`
	CreatorID *uint      `json:"creator_id"`
	UsedByID  *uint      `json:"used_by_id"`
	UsedAt    *time.Time `json:"used_at"`
	CreatedAt time.Time  `json:"created_at"`
}

// Exhausted reports whether the code has no uses left.
func (c *RedemptionCode) Exhausted() bool {
	return c.MaxUses != UnlimitedUses && c.TimesUsed >= c.MaxUses
}

// Expired reports whether the code is past its expiry.
func (c *RedemptionCode) Expired(now time.Time) bool {
	return c.ExpiresAt != nil && now.After(*c.ExpiresAt)
}

// CreateRedemptionCodeRequest is the admin payload for minting a code. An
// empty Code asks the server to generate one.
type CreateRedemptionCodeRequest struct {
	Code      string     `json:"code"`
	Type      string     `json:"type" binding:"required"`
	Payload   JSONMap    `json:"payload"`
	MaxUses   int        `json:"max_uses"`
	ExpiresAt *time.Time `json:"expires_at"`
}

// RedeemRequest is the player payload for consuming a code.
type RedeemRequest struct {
	Code string `json:"code" binding:"required"`
}
