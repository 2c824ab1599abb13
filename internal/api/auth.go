package api

import (
	"net/http"

	"github.com/dikoweii/XianTu/internal/models"
	"github.com/dikoweii/XianTu/internal/service"

	"github.com/gin-gonic/gin"
)

// AuthHandler serves registration, login and identity endpoints for both
// players and admins.
type AuthHandler struct {
	accounts  *service.AccountService
	turnstile *service.TurnstileService
	mail      *service.MailService
	ipLimits  *service.IPRateLimitService
}

func NewAuthHandler(accounts *service.AccountService, turnstile *service.TurnstileService, mail *service.MailService, ipLimits *service.IPRateLimitService) *AuthHandler {
	return &AuthHandler{
		accounts:  accounts,
		turnstile: turnstile,
		mail:      mail,
		ipLimits:  ipLimits,
	}
}

// Register creates a player account. Ordering matters: IP window first so a
// flooder burns its budget before any upstream calls, then human
// verification, then the optional email code, then the actual insert.
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	ip := c.ClientIP()
	if err := h.ipLimits.Enforce(ip, service.ActionRegister); err != nil {
		c.Error(err)
		return
	}
	if err := h.turnstile.Verify(c.Request.Context(), req.TurnstileToken, ip); err != nil {
		c.Error(err)
		return
	}
	if h.mail.Enabled() {
		if err := h.mail.VerifyCode(req.Email, req.EmailCode); err != nil {
			c.Error(err)
			return
		}
	}

	player, err := h.accounts.RegisterPlayer(req.UserName, req.Password)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, player)
}

// Token issues a player JWT.
func (h *AuthHandler) Token(c *gin.Context) {
	var req models.LoginRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.turnstile.Verify(c.Request.Context(), req.TurnstileToken, c.ClientIP()); err != nil {
		c.Error(err)
		return
	}

	_, token, err := h.accounts.LoginPlayer(req.UserName, req.Password)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, models.TokenResponse{AccessToken: token, TokenType: "bearer"})
}

// AdminToken issues an admin JWT. Turnstile does not gate the back office.
func (h *AuthHandler) AdminToken(c *gin.Context) {
	var req models.LoginRequest
	if !bindJSON(c, &req) {
		return
	}
	_, token, err := h.accounts.LoginAdmin(req.UserName, req.Password)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, models.TokenResponse{AccessToken: token, TokenType: "bearer"})
}

// Me returns the authenticated player's account.
func (h *AuthHandler) Me(c *gin.Context) {
	cl, ok := claims(c)
	if !ok {
		return
	}
	player, err := h.accounts.GetPlayer(cl.AccountID)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, player)
}

// AdminMe returns the authenticated admin's account.
func (h *AuthHandler) AdminMe(c *gin.Context) {
	cl, ok := claims(c)
	if !ok {
		return
	}
	admin, err := h.accounts.GetAdmin(cl.AccountID)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, admin)
}

type sendEmailCodeRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// SendEmailCode emails a verification code for registration.
func (h *AuthHandler) SendEmailCode(c *gin.Context) {
	var req sendEmailCodeRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.ipLimits.Enforce(c.ClientIP(), service.ActionRegister); err != nil {
		c.Error(err)
		return
	}
	if err := h.mail.SendCode(c.Request.Context(), req.Email); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "verification code sent"})
}

type verifyEmailRequest struct {
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"code" binding:"required"`
}

// VerifyEmail checks a code without consuming a registration.
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	var req verifyEmailRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.mail.VerifyCode(req.Email, req.Code); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "email verified"})
}
