package api

import (
	"net/http"

	"github.com/dikoweii/XianTu/internal/models"
	"github.com/dikoweii/XianTu/internal/service"

	"github.com/gin-gonic/gin"
)

// CharacterHandler serves the player-facing character roster endpoints.
type CharacterHandler struct {
	characters *service.CharacterService
	gameStates *service.GameStateService
}

func NewCharacterHandler(characters *service.CharacterService, gameStates *service.GameStateService) *CharacterHandler {
	return &CharacterHandler{characters: characters, gameStates: gameStates}
}

// Create builds a character for the authenticated player.
func (h *CharacterHandler) Create(c *gin.Context) {
	cl, ok := claims(c)
	if !ok {
		return
	}
	var req models.CreateCharacterRequest
	if !bindJSON(c, &req) {
		return
	}
	// The owner is always the caller here; the super-admin path lives on
	// the admin router.
	req.PlayerID = 0

	character, err := h.characters.Create(c.Request.Context(), cl.AccountID, &req)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, character)
}

// ListMine returns the caller's non-deleted characters.
func (h *CharacterHandler) ListMine(c *gin.Context) {
	cl, ok := claims(c)
	if !ok {
		return
	}
	characters, err := h.characters.ListMine(cl.AccountID)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, characters)
}

// Get returns one of the caller's characters.
func (h *CharacterHandler) Get(c *gin.Context) {
	cl, ok := claims(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	character, err := h.characters.Get(id, cl.AccountID)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, character)
}

// Delete removes a character and its game state.
func (h *CharacterHandler) Delete(c *gin.Context) {
	cl, ok := claims(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.characters.Delete(id, cl.AccountID); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "character deleted"})
}

// Activate marks a character as the account's active one.
func (h *CharacterHandler) Activate(c *gin.Context) {
	cl, ok := claims(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	character, err := h.characters.Activate(id, cl.AccountID)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, character)
}
