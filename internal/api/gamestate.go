package api

import (
	"net/http"

	"github.com/dikoweii/XianTu/internal/models"
	"github.com/dikoweii/XianTu/internal/service"

	"github.com/gin-gonic/gin"
)

// GameStateHandler serves game-state reads, partial updates and the sync
// protocol.
type GameStateHandler struct {
	gameStates *service.GameStateService
}

func NewGameStateHandler(gameStates *service.GameStateService) *GameStateHandler {
	return &GameStateHandler{gameStates: gameStates}
}

// Get returns the character's game state, rebuilding it when missing.
func (h *GameStateHandler) Get(c *gin.Context) {
	cl, ok := claims(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	state, err := h.gameStates.Get(id, cl.AccountID)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, state)
}

// Patch applies a sparse state update.
func (h *GameStateHandler) Patch(c *gin.Context) {
	cl, ok := claims(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var patch models.GameStatePatch
	if !bindJSON(c, &patch) {
		return
	}
	state, err := h.gameStates.Patch(c.Request.Context(), id, cl.AccountID, &patch)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, state)
}

// Sync acknowledges a client-side save of the current state.
func (h *GameStateHandler) Sync(c *gin.Context) {
	cl, ok := claims(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req models.SyncRequest
	if c.Request.ContentLength > 0 && !bindJSON(c, &req) {
		return
	}
	state, err := h.gameStates.Sync(c.Request.Context(), id, cl.AccountID, req.PlayTimeMinutes)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, state)
}

// Status reports whether the character has unsynced changes.
func (h *GameStateHandler) Status(c *gin.Context) {
	cl, ok := claims(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	status, err := h.gameStates.Status(id, cl.AccountID)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, status)
}

// SyncAll syncs every dirty character on the account.
func (h *GameStateHandler) SyncAll(c *gin.Context) {
	cl, ok := claims(c)
	if !ok {
		return
	}
	result, err := h.gameStates.SyncAll(c.Request.Context(), cl.AccountID)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, result)
}
