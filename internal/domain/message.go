package domain

import "time"

type Message struct {
	ID          string    `json:"id"`
	Content     string    `json:"content"`
	IsUser      bool      `json:"is_user"`
	UserID      string    `json:"user_id"`
	CharacterID string    `json:"character_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// Conversation agrupa los mensajes entre un usuario y un personaje.
type Conversation struct {
	CharacterID   string    `json:"character_id"`
	CharacterName string    `json:"character_name"`
	Messages      []Message `json:"messages"`
	TotalMessages int       `json:"total_messages"`
}
