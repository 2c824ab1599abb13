package api

import (
	"net/http"

	"github.com/dikoweii/XianTu/internal/service"

	"github.com/gin-gonic/gin"
)

// RulesHandler serves the public reference-data endpoints that drive the
// character creation screen.
type RulesHandler struct {
	rules *service.RulesService
}

func NewRulesHandler(rules *service.RulesService) *RulesHandler {
	return &RulesHandler{rules: rules}
}

func (h *RulesHandler) ListWorlds(c *gin.Context) {
	worlds, err := h.rules.ListWorlds()
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, worlds)
}

func (h *RulesHandler) ListTalentTiers(c *gin.Context) {
	tiers, err := h.rules.ListTalentTiers()
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, tiers)
}

func (h *RulesHandler) GetTalentTier(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	tier, err := h.rules.GetTalentTier(id)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, tier)
}

func (h *RulesHandler) ListRealms(c *gin.Context) {
	realms, err := h.rules.ListRealms()
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, realms)
}

// CreationData returns the aggregated origins, spirit roots and talents in
// one response, cached behind redis.
func (h *RulesHandler) CreationData(c *gin.Context) {
	data, err := h.rules.GetCreationData(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, data)
}
