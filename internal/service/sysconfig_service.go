package service

import (
	"errors"
	"strconv"

	"github.com/dikoweii/XianTu/internal/models"

	"gorm.io/gorm"
)

// System config keys.
const (
	CfgTurnstileEnabled   = "turnstile_enabled"
	CfgTurnstileVerifyURL = "turnstile_verify_url"

	CfgEmailVerificationEnabled = "email_verification_enabled"
	CfgSMTPHost                 = "smtp_host"
	CfgSMTPPort                 = "smtp_port"
	CfgSMTPUser                 = "smtp_user"
	CfgSMTPFromEmail            = "smtp_from_email"
	CfgSMTPFromName             = "smtp_from_name"
	CfgEmailCodeExpireMinutes   = "email_code_expire_minutes"

	CfgRegisterRateLimitEnabled = "register_rate_limit_enabled"
	CfgRegisterRateLimitMax     = "register_rate_limit_max"
	CfgRegisterRateLimitWindow  = "register_rate_limit_window"
)

// defaultConfigs are the compiled-in values used until an admin overrides
// them in the database.
var defaultConfigs = map[string]string{
	CfgTurnstileEnabled:   "true",
	CfgTurnstileVerifyURL: "https://challenges.cloudflare.com/turnstile/v0/siteverify",

	CfgEmailVerificationEnabled: "false",
	CfgSMTPHost:                 "smtp.qq.com",
	CfgSMTPPort:                 "465",
	CfgSMTPUser:                 "",
	CfgSMTPFromEmail:            "",
	CfgSMTPFromName:             "仙途游戏",
	CfgEmailCodeExpireMinutes:   "10",

	CfgRegisterRateLimitEnabled: "true",
	CfgRegisterRateLimitMax:     "5",
	CfgRegisterRateLimitWindow:  "3600",
}

// SystemConfigService reads and writes runtime-tunable settings. Values are
// fetched from the database on every call so admin changes apply without a
// restart; callers must not cache them across requests.
type SystemConfigService struct {
	db *gorm.DB
}

// NewSystemConfigService creates a system config service.
func NewSystemConfigService(db *gorm.DB) *SystemConfigService {
	return &SystemConfigService{db: db}
}

// Get returns the configured value for key, falling back to the compiled-in
// default when the database has no row.
func (s *SystemConfigService) Get(key string) string {
	var cfg models.SystemConfig
	if err := s.db.Where("key = ?", key).First(&cfg).Error; err == nil {
		return cfg.Value
	}
	return defaultConfigs[key]
}

// GetBool parses the value at key as a boolean.
func (s *SystemConfigService) GetBool(key string) bool {
	v, err := strconv.ParseBool(s.Get(key))
	return err == nil && v
}

// GetInt parses the value at key as an integer, returning fallback on any
// parse failure.
func (s *SystemConfigService) GetInt(key string, fallback int) int {
	if v, err := strconv.Atoi(s.Get(key)); err == nil {
		return v
	}
	return fallback
}

// Set upserts one configuration value.
func (s *SystemConfigService) Set(key, value string) error {
	var cfg models.SystemConfig
	err := s.db.Where("key = ?", key).First(&cfg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return s.db.Create(&models.SystemConfig{Key: key, Value: value}).Error
	}
	if err != nil {
		return err
	}
	cfg.Value = value
	return s.db.Save(&cfg).Error
}

// SetAll upserts a batch of configuration values.
func (s *SystemConfigService) SetAll(values map[string]string) error {
	for key, value := range values {
		if err := s.Set(key, value); err != nil {
			return err
		}
	}
	return nil
}

// All merges the compiled-in defaults with every database override.
func (s *SystemConfigService) All() (map[string]string, error) {
	result := make(map[string]string, len(defaultConfigs))
	for k, v := range defaultConfigs {
		result[k] = v
	}

	var rows []models.SystemConfig
	if err := s.db.Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		result[row.Key] = row.Value
	}
	return result, nil
}

// InitDefaults persists any default not yet present, so the admin screen
// shows every tunable key.
func (s *SystemConfigService) InitDefaults() error {
	for key, value := range defaultConfigs {
		var existing models.SystemConfig
		err := s.db.Where("key = ?", key).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if err := s.db.Create(&models.SystemConfig{Key: key, Value: value}).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}
	}
	return nil
}
