package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"charchat/internal/domain"
	"charchat/internal/llm"
	"charchat/internal/repository"
)

// MessageService orquesta el pipeline de envío: persistir el turno del
// usuario, recuperar contexto, llamar al LLM y persistir la respuesta. Un
// fallo de generación se degrada a un mensaje visible; el envío en sí nunca
// falla por eso.
type MessageService struct {
	logger     *zap.Logger
	messages   repository.MessageRepository
	characters repository.CharacterRepository
	llmClient  llm.Client
	limiter    SendRateLimiter
}

var (
	ErrMessageNotFound   = errors.New("message not found")
	ErrNotMessageOwner   = errors.New("not the message owner")
	ErrSendRateLimited   = errors.New("send rate limited")
	ErrInvalidPagination = errors.New("invalid pagination")
	ErrEmptyMessage      = errors.New("message content is empty")
)

// recentFetchLimit es cuántos mensajes se recuperan para armar contexto. Tras
// descartar el turno recién insertado quedan hasta 19; el cliente LLM recorta
// a 10 antes de llamar al proveedor.
const recentFetchLimit = 20

const (
	defaultPageSize = 50
	maxPageSize     = 100
)

// Avisos visibles en el chat cuando la generación falla, por categoría.
const (
	noticeUnauthorized = "Claude API 키가 올바르지 않습니다"
	noticeRateLimited  = "AI 서비스 사용량 한도에 도달했습니다. 잠시 후 다시 시도해주세요"
	noticeBadRequest   = "잘못된 요청입니다. 메시지를 다시 확인해주세요"
	noticeGeneric      = "AI 서비스에 일시적인 문제가 발생했습니다. 잠시 후 다시 시도해주세요"
)

func NewMessageService(
	logger *zap.Logger,
	messages repository.MessageRepository,
	characters repository.CharacterRepository,
	llmClient llm.Client,
	limiter SendRateLimiter,
) *MessageService {
	return &MessageService{
		logger:     logger,
		messages:   messages,
		characters: characters,
		llmClient:  llmClient,
		limiter:    limiter,
	}
}

// SendResult es el par de mensajes persistidos que devuelve cada envío.
type SendResult struct {
	UserMessage domain.Message `json:"user_message"`
	AIMessage   domain.Message `json:"ai_message"`
}

func (s *MessageService) SendMessage(ctx context.Context, userID, characterID, content string) (SendResult, error) {
	if s == nil || s.messages == nil || s.characters == nil || s.llmClient == nil {
		return SendResult{}, errors.New("message service not configured")
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return SendResult{}, ErrEmptyMessage
	}

	if s.limiter != nil && !s.limiter.Allow(userID) {
		return SendResult{}, ErrSendRateLimited
	}

	character, err := s.characters.GetByID(ctx, characterID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return SendResult{}, ErrCharacterNotFound
		}
		return SendResult{}, fmt.Errorf("get character: %w", err)
	}

	// El turno del usuario se persiste antes de intentar generar, para que
	// nunca se pierda aunque el proveedor falle.
	userMessage := domain.Message{
		ID:          uuid.NewString(),
		Content:     content,
		IsUser:      true,
		UserID:      userID,
		CharacterID: characterID,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.messages.Create(ctx, userMessage); err != nil {
		return SendResult{}, fmt.Errorf("persist user message: %w", err)
	}

	reply := s.generateReply(ctx, character, userID, content)

	aiMessage := domain.Message{
		ID:          uuid.NewString(),
		Content:     reply,
		IsUser:      false,
		UserID:      userID,
		CharacterID: characterID,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.messages.Create(ctx, aiMessage); err != nil {
		return SendResult{}, fmt.Errorf("persist ai message: %w", err)
	}

	return SendResult{UserMessage: userMessage, AIMessage: aiMessage}, nil
}

// generateReply llama al proveedor y colapsa cualquier fallo en un aviso que
// se almacena como respuesta del personaje.
func (s *MessageService) generateReply(ctx context.Context, character domain.Character, userID, content string) string {
	recent, err := s.messages.ListRecent(ctx, userID, character.ID, recentFetchLimit)
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("load conversation context failed", zap.Error(err), zap.String("character_id", character.ID))
		}
		recent = nil
	}

	history := buildChatHistory(recent)
	system := BuildCharacterSystemPrompt(character.Prompt)

	reply, err := s.llmClient.GenerateReply(ctx, system, history, content)
	if err == nil {
		return reply
	}

	if s.logger != nil {
		s.logger.Warn("llm generation failed", zap.Error(err), zap.String("character_id", character.ID))
	}
	switch {
	case errors.Is(err, llm.ErrUnauthorized):
		return noticeUnauthorized
	case errors.Is(err, llm.ErrRateLimited):
		return noticeRateLimited
	case errors.Is(err, llm.ErrBadRequest):
		return noticeBadRequest
	default:
		return noticeGeneric
	}
}

// GetConversation devuelve una página de la conversación en orden
// cronológico, junto al total de mensajes del par.
func (s *MessageService) GetConversation(ctx context.Context, userID, characterID string, page, limit int) (domain.Conversation, error) {
	if s == nil || s.messages == nil || s.characters == nil {
		return domain.Conversation{}, errors.New("message service not configured")
	}
	if page < 1 || limit < 1 || limit > maxPageSize {
		return domain.Conversation{}, ErrInvalidPagination
	}

	character, err := s.characters.GetByID(ctx, characterID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Conversation{}, ErrCharacterNotFound
		}
		return domain.Conversation{}, fmt.Errorf("get character: %w", err)
	}

	offset := (page - 1) * limit
	messages, err := s.messages.ListPage(ctx, userID, characterID, limit, offset)
	if err != nil {
		return domain.Conversation{}, fmt.Errorf("list messages: %w", err)
	}

	// Las páginas se leen en orden descendente y se invierten para entregar
	// del más antiguo al más reciente.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	total, err := s.messages.CountByConversation(ctx, userID, characterID)
	if err != nil {
		return domain.Conversation{}, fmt.Errorf("count messages: %w", err)
	}

	if messages == nil {
		messages = []domain.Message{}
	}
	return domain.Conversation{
		CharacterID:   character.ID,
		CharacterName: character.Name,
		Messages:      messages,
		TotalMessages: total,
	}, nil
}

// ListConversations resume las conversaciones del usuario: por personaje, el
// último mensaje y el total, ordenado por volumen.
func (s *MessageService) ListConversations(ctx context.Context, userID string) ([]domain.Conversation, error) {
	if s == nil || s.messages == nil {
		return nil, errors.New("message service not configured")
	}

	summaries, err := s.messages.ListConversationSummaries(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list conversation summaries: %w", err)
	}

	conversations := make([]domain.Conversation, 0, len(summaries))
	for _, summary := range summaries {
		latest, err := s.messages.ListRecent(ctx, userID, summary.CharacterID, 1)
		if err != nil {
			return nil, fmt.Errorf("load latest message: %w", err)
		}
		conversations = append(conversations, domain.Conversation{
			CharacterID:   summary.CharacterID,
			CharacterName: summary.CharacterName,
			Messages:      latest,
			TotalMessages: summary.TotalMessages,
		})
	}
	return conversations, nil
}

func (s *MessageService) DeleteConversation(ctx context.Context, userID, characterID string) error {
	if s == nil || s.messages == nil {
		return errors.New("message service not configured")
	}
	return s.messages.DeleteByConversation(ctx, userID, characterID)
}

func (s *MessageService) DeleteMessage(ctx context.Context, userID, messageID string) error {
	if s == nil || s.messages == nil {
		return errors.New("message service not configured")
	}

	message, err := s.messages.GetByID(ctx, messageID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrMessageNotFound
		}
		return fmt.Errorf("get message: %w", err)
	}
	if message.UserID != userID {
		return ErrNotMessageOwner
	}
	return s.messages.Delete(ctx, messageID)
}
