package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"charchat/internal/service"
)

// MessageHandler mantiene dependencias para endpoints de chat.
type MessageHandler struct {
	logger      *zap.Logger
	messageServ *service.MessageService
}

func NewMessageHandler(logger *zap.Logger, messageServ *service.MessageService) *MessageHandler {
	return &MessageHandler{
		logger:      logger,
		messageServ: messageServ,
	}
}

// Send maneja POST /api/messages/send. La longitud del contenido se valida
// antes de entrar al pipeline; un fallo de generación no llega aquí como
// error, el aviso viaja persistido dentro del par.
func (h *MessageHandler) Send(c *gin.Context) {
	var req struct {
		CharacterID string `json:"character_id" binding:"required"`
		Content     string `json:"content" binding:"required,max=200"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid send request", zap.Error(err))
		respondError(c, http.StatusBadRequest, "invalid request")
		return
	}

	result, err := h.messageServ.SendMessage(c.Request.Context(), currentUserID(c), req.CharacterID, req.Content)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyMessage):
			respondError(c, http.StatusBadRequest, "message content is required")
		case errors.Is(err, service.ErrCharacterNotFound):
			respondError(c, http.StatusNotFound, "character not found")
		case errors.Is(err, service.ErrSendRateLimited):
			respondError(c, http.StatusTooManyRequests, "too many messages, slow down")
		default:
			h.logger.Error("send message failed", zap.Error(err))
			respondError(c, http.StatusInternalServerError, "could not send message")
		}
		return
	}
	respondData(c, http.StatusCreated, result)
}

// ListConversations maneja GET /api/messages/conversations.
func (h *MessageHandler) ListConversations(c *gin.Context) {
	conversations, err := h.messageServ.ListConversations(c.Request.Context(), currentUserID(c))
	if err != nil {
		h.logger.Error("list conversations failed", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "could not list conversations")
		return
	}
	respondData(c, http.StatusOK, conversations)
}

// GetConversation maneja GET /api/messages/conversations/:characterId.
func (h *MessageHandler) GetConversation(c *gin.Context) {
	page, okPage := parsePositiveInt(c.DefaultQuery("page", "1"))
	limit, okLimit := parsePositiveInt(c.DefaultQuery("limit", "50"))
	if !okPage || !okLimit {
		respondError(c, http.StatusBadRequest, "invalid pagination")
		return
	}

	conversation, err := h.messageServ.GetConversation(c.Request.Context(), currentUserID(c), c.Param("characterId"), page, limit)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidPagination):
			respondError(c, http.StatusBadRequest, "invalid pagination")
		case errors.Is(err, service.ErrCharacterNotFound):
			respondError(c, http.StatusNotFound, "character not found")
		default:
			h.logger.Error("get conversation failed", zap.Error(err))
			respondError(c, http.StatusInternalServerError, "could not get conversation")
		}
		return
	}
	respondData(c, http.StatusOK, conversation)
}

// DeleteConversation maneja DELETE /api/messages/conversations/:characterId.
func (h *MessageHandler) DeleteConversation(c *gin.Context) {
	if err := h.messageServ.DeleteConversation(c.Request.Context(), currentUserID(c), c.Param("characterId")); err != nil {
		h.logger.Error("delete conversation failed", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "could not delete conversation")
		return
	}
	respondMessage(c, http.StatusOK, "conversation deleted")
}

// DeleteMessage maneja DELETE /api/messages/:messageId.
func (h *MessageHandler) DeleteMessage(c *gin.Context) {
	err := h.messageServ.DeleteMessage(c.Request.Context(), currentUserID(c), c.Param("messageId"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMessageNotFound):
			respondError(c, http.StatusNotFound, "message not found")
		case errors.Is(err, service.ErrNotMessageOwner):
			respondError(c, http.StatusForbidden, "not the message owner")
		default:
			h.logger.Error("delete message failed", zap.Error(err))
			respondError(c, http.StatusInternalServerError, "could not delete message")
		}
		return
	}
	respondMessage(c, http.StatusOK, "message deleted")
}

func parsePositiveInt(raw string) (int, bool) {
	value, err := strconv.Atoi(raw)
	if err != nil || value < 1 {
		return 0, false
	}
	return value, true
}
