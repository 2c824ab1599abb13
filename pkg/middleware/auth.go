package middleware

import (
	"strings"

	"github.com/dikoweii/XianTu/pkg/apperrors"
	"github.com/dikoweii/XianTu/pkg/jwt"
	"github.com/dikoweii/XianTu/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Context keys set by the auth middleware.
const (
	CtxClaims      = "claims"
	CtxAccountID   = "accountId"
	CtxAccountType = "accountType"
)

// JWTAuth validates the bearer token and stores the claims on the context.
func JWTAuth(jwtService *jwt.Service, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader("Authorization")
		if token == "" {
			c.Error(apperrors.Unauthorized("authorization header is required"))
			c.Abort()
			return
		}
		token = strings.TrimPrefix(token, "Bearer ")

		claims, err := jwtService.ValidateToken(token)
		if err != nil {
			log.Warn("invalid access token", "error", err.Error())
			c.Error(apperrors.Unauthorized("invalid or expired token"))
			c.Abort()
			return
		}

		c.Set(CtxClaims, claims)
		c.Set(CtxAccountID, claims.AccountID)
		c.Set(CtxAccountType, claims.AccountType)
		c.Next()
	}
}

// ClaimsFromContext returns the authenticated claims, if any.
func ClaimsFromContext(c *gin.Context) (*jwt.Claims, bool) {
	v, exists := c.Get(CtxClaims)
	if !exists {
		return nil, false
	}
	claims, ok := v.(*jwt.Claims)
	return claims, ok
}

// RequirePlayer rejects requests not authenticated as a player account.
func RequirePlayer() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := ClaimsFromContext(c)
		if !ok {
			c.Error(apperrors.Unauthorized("authentication required"))
			c.Abort()
			return
		}
		if !claims.IsPlayer() {
			c.Error(apperrors.Forbidden("player account required"))
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAdmin rejects requests not authenticated as an admin account,
// optionally demanding a specific role.
func RequireAdmin(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := ClaimsFromContext(c)
		if !ok {
			c.Error(apperrors.Unauthorized("authentication required"))
			c.Abort()
			return
		}
		if !claims.IsAdmin() {
			c.Error(apperrors.Forbidden("admin account required"))
			c.Abort()
			return
		}
		if len(roles) > 0 {
			for _, role := range roles {
				if claims.Role == role {
					c.Next()
					return
				}
			}
			c.Error(apperrors.Forbidden("your role does not allow this operation"))
			c.Abort()
			return
		}
		c.Next()
	}
}
