package api

import (
	"net/http"

	"github.com/dikoweii/XianTu/internal/models"
	"github.com/dikoweii/XianTu/internal/service"
	"github.com/dikoweii/XianTu/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

// AdminHandler serves the back office: account management, player
// moderation, reference-data CRUD and system configuration.
type AdminHandler struct {
	accounts   *service.AccountService
	characters *service.CharacterService
	rules      *service.RulesService
	configs    *service.SystemConfigService
}

func NewAdminHandler(accounts *service.AccountService, characters *service.CharacterService, rules *service.RulesService, configs *service.SystemConfigService) *AdminHandler {
	return &AdminHandler{
		accounts:   accounts,
		characters: characters,
		rules:      rules,
		configs:    configs,
	}
}

// --- admin accounts ---

func (h *AdminHandler) CreateAdmin(c *gin.Context) {
	var req models.CreateAdminRequest
	if !bindJSON(c, &req) {
		return
	}
	admin, err := h.accounts.CreateAdmin(&req)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, admin)
}

func (h *AdminHandler) ListAdmins(c *gin.Context) {
	admins, err := h.accounts.ListAdmins()
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, admins)
}

func (h *AdminHandler) UpdateAdmin(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req models.UpdateAdminRequest
	if !bindJSON(c, &req) {
		return
	}
	admin, err := h.accounts.UpdateAdmin(id, &req)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, admin)
}

func (h *AdminHandler) DeleteAdmin(c *gin.Context) {
	cl, ok := claims(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.accounts.DeleteAdmin(id, cl.AccountID); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "admin deleted"})
}

// --- player moderation ---

func (h *AdminHandler) ListPlayers(c *gin.Context) {
	players, err := h.accounts.ListPlayers()
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, players)
}

func (h *AdminHandler) GetPlayer(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	player, err := h.accounts.GetPlayer(id)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, player)
}

func (h *AdminHandler) UpdatePlayer(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req models.UpdatePlayerRequest
	if !bindJSON(c, &req) {
		return
	}
	player, err := h.accounts.UpdatePlayer(id, &req)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, player)
}

func (h *AdminHandler) DeletePlayer(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.accounts.DeletePlayer(id); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "player deleted"})
}

type banRequest struct {
	Banned bool `json:"banned"`
}

// BanPlayer toggles the ban flag.
func (h *AdminHandler) BanPlayer(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req banRequest
	if !bindJSON(c, &req) {
		return
	}
	player, err := h.accounts.UpdatePlayer(id, &models.UpdatePlayerRequest{IsBanned: &req.Banned})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, player)
}

// CreateCharacterFor builds a character on behalf of a player; super-admin
// only, enforced by the router.
func (h *AdminHandler) CreateCharacterFor(c *gin.Context) {
	var req models.CreateCharacterRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.PlayerID == 0 {
		c.Error(apperrors.Validation("player_id is required"))
		return
	}
	character, err := h.characters.Create(c.Request.Context(), req.PlayerID, &req)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, character)
}

// --- reference data CRUD ---

func (h *AdminHandler) SaveWorld(c *gin.Context) {
	cl, ok := claims(c)
	if !ok {
		return
	}
	var world models.World
	if !bindJSON(c, &world) {
		return
	}
	if world.CreatorID == 0 {
		world.CreatorID = cl.AccountID
	}
	if err := h.rules.SaveWorld(c.Request.Context(), &world); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, world)
}

func (h *AdminHandler) SaveTalentTier(c *gin.Context) {
	var tier models.TalentTier
	if !bindJSON(c, &tier) {
		return
	}
	if err := h.rules.SaveTalentTier(c.Request.Context(), &tier); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, tier)
}

func (h *AdminHandler) SaveOrigin(c *gin.Context) {
	var origin models.Origin
	if !bindJSON(c, &origin) {
		return
	}
	if err := h.rules.SaveOrigin(c.Request.Context(), &origin); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, origin)
}

func (h *AdminHandler) SaveSpiritRoot(c *gin.Context) {
	var root models.SpiritRoot
	if !bindJSON(c, &root) {
		return
	}
	if err := h.rules.SaveSpiritRoot(c.Request.Context(), &root); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, root)
}

func (h *AdminHandler) SaveTalent(c *gin.Context) {
	var talent models.Talent
	if !bindJSON(c, &talent) {
		return
	}
	if err := h.rules.SaveTalent(c.Request.Context(), &talent); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, talent)
}

func (h *AdminHandler) SaveRealm(c *gin.Context) {
	var realm models.Realm
	if !bindJSON(c, &realm) {
		return
	}
	if err := h.rules.SaveRealm(c.Request.Context(), &realm); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, realm)
}

// DeleteReference removes a reference row; the kind comes from the route.
func (h *AdminHandler) DeleteReference(model func() any) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		if err := h.rules.DeleteReference(c.Request.Context(), model(), id); err != nil {
			c.Error(err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "deleted"})
	}
}

// --- system config ---

func (h *AdminHandler) GetConfig(c *gin.Context) {
	values, err := h.configs.All()
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, values)
}

type updateConfigRequest struct {
	Values map[string]string `json:"values" binding:"required"`
}

func (h *AdminHandler) UpdateConfig(c *gin.Context) {
	var req updateConfigRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.configs.SetAll(req.Values); err != nil {
		c.Error(err)
		return
	}
	values, err := h.configs.All()
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, values)
}
