package service

import (
	"strings"

	"charchat/internal/domain"
	"charchat/internal/llm"
)

// Reglas fijas de comportamiento que acompañan al prompt de cada personaje.
// El producto responde en coreano; el texto va tal cual al proveedor.
const characterRules = `규칙:
- 항상 캐릭터의 설정에 맞게 응답하세요
- 사용자와 자연스럽고 흥미로운 대화를 나누세요
- 응답은 200자 이내로 간결하게 작성하세요
- 한국어로 응답하세요`

// BuildCharacterSystemPrompt concatena el prompt almacenado del personaje con
// las reglas fijas.
func BuildCharacterSystemPrompt(characterPrompt string) string {
	var sb strings.Builder
	sb.WriteString(strings.TrimSpace(characterPrompt))
	sb.WriteString("\n\n")
	sb.WriteString(characterRules)
	return sb.String()
}

// buildChatHistory convierte mensajes recuperados en orden descendente a un
// historial cronológico etiquetado por rol, descartando el último turno (el
// mensaje del usuario recién insertado) para no duplicarlo en la llamada.
func buildChatHistory(recent []domain.Message) []llm.ChatMessage {
	chronological := make([]domain.Message, len(recent))
	for i, m := range recent {
		chronological[len(recent)-1-i] = m
	}
	if len(chronological) > 0 {
		chronological = chronological[:len(chronological)-1]
	}

	history := make([]llm.ChatMessage, 0, len(chronological))
	for _, m := range chronological {
		role := "assistant"
		if m.IsUser {
			role = "user"
		}
		history = append(history, llm.ChatMessage{Role: role, Content: m.Content})
	}
	return history
}
