package api

import (
	"net/http"

	"github.com/dikoweii/XianTu/internal/models"
	"github.com/dikoweii/XianTu/internal/service"

	"github.com/gin-gonic/gin"
)

// RedemptionHandler serves player redemption and admin code management.
type RedemptionHandler struct {
	redemption *service.RedemptionService
}

func NewRedemptionHandler(redemption *service.RedemptionService) *RedemptionHandler {
	return &RedemptionHandler{redemption: redemption}
}

// Redeem consumes a code for the authenticated player.
func (h *RedemptionHandler) Redeem(c *gin.Context) {
	cl, ok := claims(c)
	if !ok {
		return
	}
	var req models.RedeemRequest
	if !bindJSON(c, &req) {
		return
	}
	code, err := h.redemption.Redeem(cl.AccountID, req.Code)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"type":    code.Type,
		"payload": code.Payload,
	})
}

// Create mints a code as the authenticated admin.
func (h *RedemptionHandler) Create(c *gin.Context) {
	cl, ok := claims(c)
	if !ok {
		return
	}
	var req models.CreateRedemptionCodeRequest
	if !bindJSON(c, &req) {
		return
	}
	code, err := h.redemption.Create(cl.AccountID, &req)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, code)
}

// List returns every code, newest first.
func (h *RedemptionHandler) List(c *gin.Context) {
	codes, err := h.redemption.List()
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, codes)
}

// Delete removes a code.
func (h *RedemptionHandler) Delete(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.redemption.Delete(id); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "redemption code deleted"})
}
