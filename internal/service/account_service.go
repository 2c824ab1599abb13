package service

import (
	"errors"

	"github.com/dikoweii/XianTu/internal/models"
	"github.com/dikoweii/XianTu/pkg/apperrors"
	"github.com/dikoweii/XianTu/pkg/jwt"

	"gorm.io/gorm"
)

// AccountService manages player and admin identities: registration, login,
// bans and the admin-side account CRUD.
type AccountService struct {
	db         *gorm.DB
	jwtService *jwt.Service
}

// NewAccountService creates an account service.
func NewAccountService(db *gorm.DB, jwtService *jwt.Service) *AccountService {
	return &AccountService{db: db, jwtService: jwtService}
}

// RegisterPlayer creates a player account with a unique username. The unique
// index is the only duplicate check, so two racing registrations cannot both
// pass a pre-read.
func (s *AccountService) RegisterPlayer(userName, password string) (*models.PlayerAccount, error) {
	player := &models.PlayerAccount{UserName: userName, Password: password}
	if err := s.db.Create(player).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, apperrors.Conflict("this dao name is already taken")
		}
		return nil, err
	}
	return player, nil
}

// LoginPlayer authenticates a player and issues an access token. Banned
// accounts may not log in.
func (s *AccountService) LoginPlayer(userName, password string) (*models.PlayerAccount, string, error) {
	var player models.PlayerAccount
	err := s.db.Where("user_name = ?", userName).First(&player).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", apperrors.Unauthorized("incorrect dao name or credential")
	}
	if err != nil {
		return nil, "", err
	}
	if !models.CheckPasswordHash(password, player.Password) {
		return nil, "", apperrors.Unauthorized("incorrect dao name or credential")
	}
	if player.IsBanned {
		return nil, "", apperrors.Forbidden("this account is banned")
	}

	token, err := s.jwtService.GenerateToken(player.ID, player.UserName, jwt.AccountTypePlayer, "")
	if err != nil {
		return nil, "", err
	}
	return &player, token, nil
}

// LoginAdmin authenticates an admin and issues an access token.
func (s *AccountService) LoginAdmin(userName, password string) (*models.AdminAccount, string, error) {
	var admin models.AdminAccount
	err := s.db.Where("user_name = ?", userName).First(&admin).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", apperrors.Unauthorized("incorrect dao name or credential")
	}
	if err != nil {
		return nil, "", err
	}
	if !models.CheckPasswordHash(password, admin.Password) {
		return nil, "", apperrors.Unauthorized("incorrect dao name or credential")
	}

	token, err := s.jwtService.GenerateToken(admin.ID, admin.UserName, jwt.AccountTypeAdmin, admin.Role)
	if err != nil {
		return nil, "", err
	}
	return &admin, token, nil
}

// GetPlayer fetches one player account.
func (s *AccountService) GetPlayer(id uint) (*models.PlayerAccount, error) {
	var player models.PlayerAccount
	err := s.db.First(&player, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("player", id)
	}
	if err != nil {
		return nil, err
	}
	return &player, nil
}

// GetPlayerByUserName fetches one player by dao name.
func (s *AccountService) GetPlayerByUserName(userName string) (*models.PlayerAccount, error) {
	var player models.PlayerAccount
	err := s.db.Where("user_name = ?", userName).First(&player).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFoundMsg("no owner of this dao name was found")
	}
	if err != nil {
		return nil, err
	}
	return &player, nil
}

// ListPlayers returns all player accounts.
func (s *AccountService) ListPlayers() ([]models.PlayerAccount, error) {
	var players []models.PlayerAccount
	if err := s.db.Order("id").Find(&players).Error; err != nil {
		return nil, err
	}
	return players, nil
}

// UpdatePlayer applies a sparse admin-side update to a player account.
func (s *AccountService) UpdatePlayer(id uint, req *models.UpdatePlayerRequest) (*models.PlayerAccount, error) {
	player, err := s.GetPlayer(id)
	if err != nil {
		return nil, err
	}

	if req.UserName != nil {
		player.UserName = *req.UserName
	}
	if req.Password != nil && *req.Password != "" {
		hashed, err := models.HashPassword(*req.Password)
		if err != nil {
			return nil, err
		}
		player.Password = hashed
	}
	if req.IsBanned != nil {
		player.IsBanned = *req.IsBanned
	}

	if err := s.db.Save(player).Error; err != nil {
		return nil, err
	}
	return player, nil
}

// DeletePlayer removes a player account and every character it owns.
func (s *AccountService) DeletePlayer(id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var player models.PlayerAccount
		err := tx.First(&player, id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("player", id)
		}
		if err != nil {
			return err
		}

		var characterIDs []uint
		if err := tx.Model(&models.CharacterBase{}).
			Where("player_id = ?", id).
			Pluck("id", &characterIDs).Error; err != nil {
			return err
		}
		if len(characterIDs) > 0 {
			if err := tx.Where("character_id IN ?", characterIDs).
				Delete(&models.CharacterGameState{}).Error; err != nil {
				return err
			}
			if err := tx.Where("player_id = ?", id).
				Delete(&models.CharacterBase{}).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&player).Error
	})
}

// bannedIn reports the ban flag through the caller's handle, so a check made
// inside a transaction reads on the transaction's own connection. Missing
// accounts read as banned so downstream gates fail closed.
func (s *AccountService) bannedIn(db *gorm.DB, playerID uint) bool {
	var player models.PlayerAccount
	if err := db.First(&player, playerID).Error; err != nil {
		return true
	}
	return player.IsBanned
}

// IsBanned reports the ban flag for an account.
func (s *AccountService) IsBanned(playerID uint) bool {
	return s.bannedIn(s.db, playerID)
}

// CreateAdmin creates an admin account; only super-admins may mint them.
func (s *AccountService) CreateAdmin(req *models.CreateAdminRequest) (*models.AdminAccount, error) {
	role := req.Role
	if role == "" {
		role = models.RoleAdmin
	}
	if role != models.RoleAdmin && role != models.RoleSuperAdmin {
		return nil, apperrors.Validation("role must be admin or super_admin")
	}

	admin := &models.AdminAccount{
		UserName: req.UserName,
		Password: req.Password,
		Role:     role,
	}
	if req.RedemptionCodeLimit != nil {
		admin.RedemptionCodeLimit = *req.RedemptionCodeLimit
	} else {
		admin.RedemptionCodeLimit = -1
	}
	if err := s.db.Create(admin).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, apperrors.Conflict("this dao name is already taken")
		}
		return nil, err
	}
	return admin, nil
}

// GetAdmin fetches one admin account.
func (s *AccountService) GetAdmin(id uint) (*models.AdminAccount, error) {
	var admin models.AdminAccount
	err := s.db.First(&admin, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("admin", id)
	}
	if err != nil {
		return nil, err
	}
	return &admin, nil
}

// ListAdmins returns all admin accounts.
func (s *AccountService) ListAdmins() ([]models.AdminAccount, error) {
	var admins []models.AdminAccount
	if err := s.db.Order("id").Find(&admins).Error; err != nil {
		return nil, err
	}
	return admins, nil
}

// UpdateAdmin applies a sparse update to an admin account.
func (s *AccountService) UpdateAdmin(id uint, req *models.UpdateAdminRequest) (*models.AdminAccount, error) {
	admin, err := s.GetAdmin(id)
	if err != nil {
		return nil, err
	}

	if req.Password != nil && *req.Password != "" {
		hashed, err := models.HashPassword(*req.Password)
		if err != nil {
			return nil, err
		}
		admin.Password = hashed
	}
	if req.Role != nil {
		if *req.Role != models.RoleAdmin && *req.Role != models.RoleSuperAdmin {
			return nil, apperrors.Validation("role must be admin or super_admin")
		}
		admin.Role = *req.Role
	}
	if req.RedemptionCodeLimit != nil {
		admin.RedemptionCodeLimit = *req.RedemptionCodeLimit
	}

	if err := s.db.Save(admin).Error; err != nil {
		return nil, err
	}
	return admin, nil
}

// DeleteAdmin removes an admin account. Admins cannot delete themselves.
func (s *AccountService) DeleteAdmin(id, actingAdminID uint) error {
	if id == actingAdminID {
		return apperrors.Validation("cannot delete your own account")
	}
	admin, err := s.GetAdmin(id)
	if err != nil {
		return err
	}
	return s.db.Delete(admin).Error
}
