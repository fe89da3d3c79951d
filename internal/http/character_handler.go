package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"charchat/internal/service"
)

// CharacterHandler mantiene dependencias para endpoints de personajes.
type CharacterHandler struct {
	logger        *zap.Logger
	characterServ *service.CharacterService
}

func NewCharacterHandler(logger *zap.Logger, characterServ *service.CharacterService) *CharacterHandler {
	return &CharacterHandler{
		logger:        logger,
		characterServ: characterServ,
	}
}

// List maneja GET /api/characters. Con usuario autenticado incluye sus
// personajes; sin él devuelve solo los base.
func (h *CharacterHandler) List(c *gin.Context) {
	characters, err := h.characterServ.ListAll(c.Request.Context(), currentUserID(c))
	if err != nil {
		h.logger.Error("list characters failed", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "could not list characters")
		return
	}
	respondData(c, http.StatusOK, characters)
}

// ListDefaults maneja GET /api/characters/default.
func (h *CharacterHandler) ListDefaults(c *gin.Context) {
	characters, err := h.characterServ.ListDefaults(c.Request.Context())
	if err != nil {
		h.logger.Error("list default characters failed", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "could not list characters")
		return
	}
	respondData(c, http.StatusOK, characters)
}

// ListOwned maneja GET /api/characters/user.
func (h *CharacterHandler) ListOwned(c *gin.Context) {
	characters, err := h.characterServ.ListOwned(c.Request.Context(), currentUserID(c))
	if err != nil {
		h.logger.Error("list own characters failed", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "could not list characters")
		return
	}
	respondData(c, http.StatusOK, characters)
}

// CheckName maneja GET /api/characters/check-name.
func (h *CharacterHandler) CheckName(c *gin.Context) {
	name := c.Query("name")
	if name == "" {
		respondError(c, http.StatusBadRequest, "name is required")
		return
	}
	available, err := h.characterServ.NameAvailable(c.Request.Context(), currentUserID(c), name, c.Query("excludeId"))
	if err != nil {
		h.logger.Error("check character name failed", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "could not check name")
		return
	}
	respondData(c, http.StatusOK, gin.H{"available": available})
}

// Get maneja GET /api/characters/:id.
func (h *CharacterHandler) Get(c *gin.Context) {
	character, err := h.characterServ.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrCharacterNotFound) {
			respondError(c, http.StatusNotFound, "character not found")
			return
		}
		h.logger.Error("get character failed", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "could not get character")
		return
	}
	respondData(c, http.StatusOK, character)
}

// Create maneja POST /api/characters.
func (h *CharacterHandler) Create(c *gin.Context) {
	var req struct {
		Name      string `json:"name" binding:"required,min=2,max=50"`
		Prompt    string `json:"prompt" binding:"required,min=10,max=1000"`
		Thumbnail string `json:"thumbnail"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid create character request", zap.Error(err))
		respondError(c, http.StatusBadRequest, "invalid request")
		return
	}

	userID := currentUserID(c)
	available, err := h.characterServ.NameAvailable(c.Request.Context(), userID, req.Name, "")
	if err != nil {
		h.logger.Error("check character name failed", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "could not create character")
		return
	}
	if !available {
		respondError(c, http.StatusBadRequest, "character name already in use")
		return
	}

	character, err := h.characterServ.Create(c.Request.Context(), userID, service.CreateCharacterInput{
		Name:      req.Name,
		Prompt:    req.Prompt,
		Thumbnail: req.Thumbnail,
	})
	if err != nil {
		h.logger.Error("create character failed", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "could not create character")
		return
	}
	respondData(c, http.StatusCreated, character)
}

// Update maneja PUT /api/characters/:id.
func (h *CharacterHandler) Update(c *gin.Context) {
	var req struct {
		Name      string  `json:"name" binding:"omitempty,min=2,max=50"`
		Prompt    string  `json:"prompt" binding:"omitempty,min=10,max=1000"`
		Thumbnail *string `json:"thumbnail"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid update character request", zap.Error(err))
		respondError(c, http.StatusBadRequest, "invalid request")
		return
	}

	userID := currentUserID(c)
	characterID := c.Param("id")

	if req.Name != "" {
		available, err := h.characterServ.NameAvailable(c.Request.Context(), userID, req.Name, characterID)
		if err != nil {
			h.logger.Error("check character name failed", zap.Error(err))
			respondError(c, http.StatusInternalServerError, "could not update character")
			return
		}
		if !available {
			respondError(c, http.StatusBadRequest, "character name already in use")
			return
		}
	}

	character, err := h.characterServ.Update(c.Request.Context(), userID, characterID, service.UpdateCharacterInput{
		Name:      req.Name,
		Prompt:    req.Prompt,
		Thumbnail: req.Thumbnail,
	})
	if err != nil {
		h.respondCharacterError(c, err, "update character failed", "could not update character")
		return
	}
	respondData(c, http.StatusOK, character)
}

// Delete maneja DELETE /api/characters/:id.
func (h *CharacterHandler) Delete(c *gin.Context) {
	err := h.characterServ.Delete(c.Request.Context(), currentUserID(c), c.Param("id"))
	if err != nil {
		h.respondCharacterError(c, err, "delete character failed", "could not delete character")
		return
	}
	respondMessage(c, http.StatusOK, "character deleted")
}

func (h *CharacterHandler) respondCharacterError(c *gin.Context, err error, logMsg, fallback string) {
	switch {
	case errors.Is(err, service.ErrCharacterNotFound):
		respondError(c, http.StatusNotFound, "character not found")
	case errors.Is(err, service.ErrDefaultCharacterImmutable):
		respondError(c, http.StatusForbidden, "default characters cannot be modified")
	case errors.Is(err, service.ErrNotCharacterOwner):
		respondError(c, http.StatusForbidden, "not the character owner")
	default:
		h.logger.Error(logMsg, zap.Error(err))
		respondError(c, http.StatusInternalServerError, fallback)
	}
}
