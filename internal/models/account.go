package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Admin roles
const (
	RoleAdmin      = "admin"
	RoleSuperAdmin = "super_admin"
)

// PlayerAccount is a player-facing login identity. Characters belong to
// exactly one PlayerAccount.
type PlayerAccount struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserName  string    `gorm:"uniqueIndex;size:50" json:"user_name"`
	Password  string    `json:"-"` // bcrypt hash, never serialized
	IsBanned  bool      `gorm:"default:false" json:"is_banned"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AdminAccount is a back-office identity, separate from players.
// RedemptionCodeLimit of -1 means unlimited.
type AdminAccount struct {
	ID                  uint      `gorm:"primaryKey" json:"id"`
	UserName            string    `gorm:"uniqueIndex;size:50" json:"user_name"`
	Password            string    `json:"-"`
	Role                string    `gorm:"size:20;default:admin" json:"role"`
	RedemptionCodeLimit int       `gorm:"default:-1" json:"redemption_code_limit"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// IsSuperAdmin reports whether the admin holds the super_admin role.
func (a *AdminAccount) IsSuperAdmin() bool {
	return a.Role == RoleSuperAdmin
}

// RegisterRequest is the payload for player registration.
type RegisterRequest struct {
	UserName       string `json:"user_name" binding:"required,min=2,max=50"`
	Password       string `json:"password" binding:"required,min=6"`
	TurnstileToken string `json:"turnstile_token"`
	Email          string `json:"email" binding:"omitempty,email"`
	EmailCode      string `json:"email_code"`
}

// LoginRequest is the payload for player and admin login.
type LoginRequest struct {
	UserName       string `json:"user_name" binding:"required"`
	Password       string `json:"password" binding:"required"`
	TurnstileToken string `json:"turnstile_token"`
}

// TokenResponse wraps an issued access token.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// UpdatePlayerRequest is the sparse admin-side player update payload.
type UpdatePlayerRequest struct {
	UserName *string `json:"user_name"`
	Password *string `json:"password"`
	IsBanned *bool   `json:"is_banned"`
}

// CreateAdminRequest is the payload for creating an admin account.
type CreateAdminRequest struct {
	UserName            string `json:"user_name" binding:"required,min=2,max=50"`
	Password            string `json:"password" binding:"required,min=6"`
	Role                string `json:"role"`
	RedemptionCodeLimit *int   `json:"redemption_code_limit"`
}

// UpdateAdminRequest is the sparse admin account update payload.
type UpdateAdminRequest struct {
	Password            *string `json:"password"`
	Role                *string `json:"role"`
	RedemptionCodeLimit *int    `json:"redemption_code_limit"`
}

// HashPassword hashes a password for storage.
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckPasswordHash compares a password with a hash.
func CheckPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// BeforeCreate hashes the password before the account row is written.
func (p *PlayerAccount) BeforeCreate(tx *gorm.DB) error {
	hashed, err := HashPassword(p.Password)
	if err != nil {
		return err
	}
	p.Password = hashed
	return nil
}

// BeforeCreate hashes the password and applies the default role.
func (a *AdminAccount) BeforeCreate(tx *gorm.DB) error {
	hashed, err := HashPassword(a.Password)
	if err != nil {
		return err
	}
	a.Password = hashed
	if a.Role == "" {
		a.Role = RoleAdmin
	}
	return nil
}
