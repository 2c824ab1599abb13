package service

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dikoweii/XianTu/internal/models"
	"github.com/dikoweii/XianTu/pkg/apperrors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RedemptionService mints and consumes redemption codes. Creation is bounded
// by the minting admin's quota; redemption is an atomic use-count increment
// guarded against expiry and exhaustion.
type RedemptionService struct {
	db       *gorm.DB
	accounts *AccountService
}

func NewRedemptionService(db *gorm.DB, accounts *AccountService) *RedemptionService {
	return &RedemptionService{db: db, accounts: accounts}
}

// generateCode produces a short uppercase code from a random UUID.
func generateCode() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "XT-" + strings.ToUpper(raw[:12])
}

// Create mints a code on behalf of an admin. An admin with a non-negative
// redemption_code_limit may not exceed it counted over codes they created;
// a limit of -1 is unlimited.
func (s *RedemptionService) Create(adminID uint, req *models.CreateRedemptionCodeRequest) (*models.RedemptionCode, error) {
	admin, err := s.accounts.GetAdmin(adminID)
	if err != nil {
		return nil, err
	}

	if req.MaxUses == 0 {
		req.MaxUses = 1
	}
	if req.MaxUses < models.UnlimitedUses {
		return nil, apperrors.Validation("max_uses must be -1 (unlimited) or positive")
	}
	if req.ExpiresAt != nil && req.ExpiresAt.Before(time.Now()) {
		return nil, apperrors.Validation("expires_at is already in the past")
	}

	code := &models.RedemptionCode{
		Code:      req.Code,
		Type:      req.Type,
		Payload:   req.Payload,
		MaxUses:   req.MaxUses,
		ExpiresAt: req.ExpiresAt,
		CreatorID: &admin.ID,
	}
	if code.Code == "" {
		code.Code = generateCode()
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if admin.RedemptionCodeLimit >= 0 {
			var minted int64
			if err := lockForUpdate(tx.Model(&models.RedemptionCode{})).
				Where("creator_id = ?", admin.ID).
				Count(&minted).Error; err != nil {
				return err
			}
			if minted >= int64(admin.RedemptionCodeLimit) {
				return apperrors.New(http.StatusConflict, apperrors.CodeQuotaExceeded,
					fmt.Sprintf("you have reached your limit of %d redemption codes", admin.RedemptionCodeLimit))
			}
		}
		if err := tx.Create(code).Error; err != nil {
			if isUniqueViolation(err) {
				return apperrors.Conflict("a code with this value already exists")
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return code, nil
}

// Redeem consumes one use of a code for the given player. The increment is
// a conditional update so two racing redemptions cannot both take the last
// use. Returns the code so the caller can apply its payload.
func (s *RedemptionService) Redeem(playerID uint, rawCode string) (*models.RedemptionCode, error) {
	var code models.RedemptionCode
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if s.accounts.bannedIn(tx, playerID) {
			return apperrors.Forbidden("this account is banned")
		}

		err := lockForUpdate(tx).Where("code = ?", rawCode).First(&code).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFoundMsg("redemption code not found")
		}
		if err != nil {
			return err
		}

		now := time.Now()
		if code.Expired(now) {
			return apperrors.Validation("this code has expired")
		}
		if code.Exhausted() {
			return apperrors.Validation("this code has no uses left")
		}

		query := tx.Model(&models.RedemptionCode{}).
			Where("id = ? AND times_used = ?", code.ID, code.TimesUsed)
		result := query.Updates(map[string]any{
			"times_used": code.TimesUsed + 1,
			"used_by_id": playerID,
			"used_at":    now,
		})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return apperrors.Conflict("code was redeemed concurrently, try again")
		}
		code.TimesUsed++
		code.UsedByID = &playerID
		code.UsedAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &code, nil
}

// List returns all codes, newest first.
func (s *RedemptionService) List() ([]models.RedemptionCode, error) {
	var codes []models.RedemptionCode
	if err := s.db.Order("id DESC").Find(&codes).Error; err != nil {
		return nil, err
	}
	return codes, nil
}

// Delete removes a code by id.
func (s *RedemptionService) Delete(id uint) error {
	result := s.db.Delete(&models.RedemptionCode{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.NotFound("redemption code", id)
	}
	return nil
}
