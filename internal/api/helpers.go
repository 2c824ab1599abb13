package api

import (
	"strconv"

	"github.com/dikoweii/XianTu/pkg/apperrors"
	"github.com/dikoweii/XianTu/pkg/jwt"
	"github.com/dikoweii/XianTu/pkg/middleware"

	"github.com/gin-gonic/gin"
)

// bindJSON binds the request body and converts binding failures into the
// shared validation error shape.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.Error(apperrors.Validation(err.Error()))
		return false
	}
	return true
}

// idParam parses a numeric :id style path parameter.
func idParam(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		c.Error(apperrors.Validation("invalid " + name + " parameter"))
		return 0, false
	}
	return uint(id), true
}

// claims pulls the authenticated claims set by the JWT middleware.
func claims(c *gin.Context) (*jwt.Claims, bool) {
	cl, ok := middleware.ClaimsFromContext(c)
	if !ok {
		c.Error(apperrors.Unauthorized("authentication required"))
		return nil, false
	}
	return cl, true
}
