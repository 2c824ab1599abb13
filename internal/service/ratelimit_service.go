package service

import (
	"errors"
	"time"

	"github.com/dikoweii/XianTu/internal/models"
	"github.com/dikoweii/XianTu/pkg/apperrors"

	"gorm.io/gorm"
)

// ActionRegister is the rate-limited action name for account registration.
const ActionRegister = "register"

// IPRateLimitService is a database-backed fixed-window counter keyed by
// (ip, action). Unlike the in-process token bucket middleware it survives
// restarts and is shared across replicas. Limits come from system config,
// read fresh on every check.
type IPRateLimitService struct {
	db     *gorm.DB
	config *SystemConfigService
	now    func() time.Time
}

// NewIPRateLimitService creates the limiter. A nil now uses time.Now.
func NewIPRateLimitService(db *gorm.DB, config *SystemConfigService, now func() time.Time) *IPRateLimitService {
	if now == nil {
		now = time.Now
	}
	return &IPRateLimitService{db: db, config: config, now: now}
}

// Check reports whether ip may perform action and how many attempts remain
// in the current window. Expired records are pruned as a side effect.
func (s *IPRateLimitService) Check(ip, action string) (bool, int, error) {
	if !s.config.GetBool(CfgRegisterRateLimitEnabled) {
		return true, s.config.GetInt(CfgRegisterRateLimitMax, 5), nil
	}

	windowSeconds := s.config.GetInt(CfgRegisterRateLimitWindow, 3600)
	maxRequests := s.config.GetInt(CfgRegisterRateLimitMax, 5)
	windowStart := s.now().Add(-time.Duration(windowSeconds) * time.Second)

	if err := s.db.Where("created_at < ?", windowStart).
		Delete(&models.IPRateLimitRecord{}).Error; err != nil {
		return false, 0, err
	}

	var count int64
	if err := s.db.Model(&models.IPRateLimitRecord{}).
		Where("ip_address = ? AND action = ? AND created_at >= ?", ip, action, windowStart).
		Count(&count).Error; err != nil {
		return false, 0, err
	}

	remaining := maxRequests - int(count)
	if remaining < 0 {
		remaining = 0
	}
	return count < int64(maxRequests), remaining, nil
}

// Record counts one attempt against the window.
func (s *IPRateLimitService) Record(ip, action string) error {
	return s.db.Create(&models.IPRateLimitRecord{
		IPAddress: ip,
		Action:    action,
		CreatedAt: s.now(),
	}).Error
}

// ResetTime returns when the oldest attempt in the window falls out, or nil
// when there are no recorded attempts.
func (s *IPRateLimitService) ResetTime(ip, action string) (*time.Time, error) {
	var oldest models.IPRateLimitRecord
	err := s.db.Where("ip_address = ? AND action = ?", ip, action).
		Order("created_at ASC").
		First(&oldest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	windowSeconds := s.config.GetInt(CfgRegisterRateLimitWindow, 3600)
	reset := oldest.CreatedAt.Add(time.Duration(windowSeconds) * time.Second)
	return &reset, nil
}

// Enforce is the check-or-error form used by handlers: it fails with a
// rate-limit error carrying the reset time when the window is exhausted,
// and records the attempt otherwise.
func (s *IPRateLimitService) Enforce(ip, action string) error {
	allowed, _, err := s.Check(ip, action)
	if err != nil {
		return err
	}
	if !allowed {
		appErr := apperrors.RateLimited("too many attempts from this address, try again later")
		if reset, err := s.ResetTime(ip, action); err == nil && reset != nil {
			appErr = appErr.WithDetails(map[string]any{"reset_at": reset.UTC().Format(time.RFC3339)})
		}
		return appErr
	}
	return s.Record(ip, action)
}
