package models

import "time"

// SystemConfig is a runtime-tunable key/value setting stored in the
// database; changes apply without a restart.
type SystemConfig struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Key       string    `gorm:"uniqueIndex;size:100" json:"key"`
	Value     string    `gorm:"type:text" json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IPRateLimitRecord is one counted request in a fixed rate-limit window.
type IPRateLimitRecord struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	IPAddress string    `gorm:"index;size:64" json:"ip_address"`
	Action    string    `gorm:"index;size:32" json:"action"`
	CreatedAt time.Time `json:"created_at"`
}

// EmailVerificationCode is a pending emailed verification code.
type EmailVerificationCode struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Email     string    `gorm:"index;size:200" json:"email"`
	Code      string    `gorm:"size:10" json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
	Used      bool      `gorm:"default:false" json:"used"`
	CreatedAt time.Time `json:"created_at"`
}
