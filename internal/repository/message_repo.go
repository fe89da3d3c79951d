package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"charchat/internal/domain"
)

// ConversationSummary es una fila agregada por personaje para el listado de
// conversaciones del usuario.
type ConversationSummary struct {
	CharacterID   string
	CharacterName string
	TotalMessages int
}

type MessageRepository interface {
	Create(ctx context.Context, message domain.Message) error
	GetByID(ctx context.Context, id string) (domain.Message, error)
	Delete(ctx context.Context, id string) error
	ListRecent(ctx context.Context, userID, characterID string, limit int) ([]domain.Message, error)
	ListPage(ctx context.Context, userID, characterID string, limit, offset int) ([]domain.Message, error)
	CountByConversation(ctx context.Context, userID, characterID string) (int, error)
	ListConversationSummaries(ctx context.Context, userID string) ([]ConversationSummary, error)
	DeleteByConversation(ctx context.Context, userID, characterID string) error
}

type PgMessageRepository struct {
	pool *pgxpool.Pool
}

func NewPgMessageRepository(pool *pgxpool.Pool) *PgMessageRepository {
	return &PgMessageRepository{pool: pool}
}

func (r *PgMessageRepository) Create(ctx context.Context, message domain.Message) error {
	const query = `
		INSERT INTO messages (id, content, is_user, user_id, character_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.pool.Exec(ctx, query,
		message.ID,
		message.Content,
		message.IsUser,
		message.UserID,
		message.CharacterID,
		message.CreatedAt,
	)
	return err
}

func (r *PgMessageRepository) GetByID(ctx context.Context, id string) (domain.Message, error) {
	const query = `
		SELECT id, content, is_user, user_id, character_id, created_at
		FROM messages
		WHERE id = $1
	`
	var m domain.Message
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&m.ID,
		&m.Content,
		&m.IsUser,
		&m.UserID,
		&m.CharacterID,
		&m.CreatedAt,
	)
	return m, err
}

func (r *PgMessageRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM messages WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, id)
	return err
}

// ListRecent devuelve los últimos mensajes del par (usuario, personaje) en
// orden descendente por fecha.
func (r *PgMessageRepository) ListRecent(ctx context.Context, userID, characterID string, limit int) ([]domain.Message, error) {
	const query = `
		SELECT id, content, is_user, user_id, character_id, created_at
		FROM messages
		WHERE user_id = $1 AND character_id = $2
		ORDER BY created_at DESC
		LIMIT $3
	`
	rows, err := r.pool.Query(ctx, query, userID, characterID, limit)
	if err != nil {
		return nil, err
	}
	return collectMessages(rows)
}

func (r *PgMessageRepository) ListPage(ctx context.Context, userID, characterID string, limit, offset int) ([]domain.Message, error) {
	const query = `
		SELECT id, content, is_user, user_id, character_id, created_at
		FROM messages
		WHERE user_id = $1 AND character_id = $2
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`
	rows, err := r.pool.Query(ctx, query, userID, characterID, limit, offset)
	if err != nil {
		return nil, err
	}
	return collectMessages(rows)
}

func (r *PgMessageRepository) CountByConversation(ctx context.Context, userID, characterID string) (int, error) {
	const query = `
		SELECT COUNT(*)
		FROM messages
		WHERE user_id = $1 AND character_id = $2
	`
	var count int
	err := r.pool.QueryRow(ctx, query, userID, characterID).Scan(&count)
	return count, err
}

// ListConversationSummaries agrupa los mensajes del usuario por personaje,
// ordenando por volumen de conversación.
func (r *PgMessageRepository) ListConversationSummaries(ctx context.Context, userID string) ([]ConversationSummary, error) {
	const query = `
		SELECT c.id, c.name, COUNT(m.id)
		FROM characters c
		JOIN messages m ON m.character_id = c.id
		WHERE m.user_id = $1
		GROUP BY c.id, c.name
		ORDER BY COUNT(m.id) DESC
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []ConversationSummary
	for rows.Next() {
		var s ConversationSummary
		if err := rows.Scan(&s.CharacterID, &s.CharacterName, &s.TotalMessages); err != nil {
			return nil, err
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return summaries, nil
}

func (r *PgMessageRepository) DeleteByConversation(ctx context.Context, userID, characterID string) error {
	const query = `DELETE FROM messages WHERE user_id = $1 AND character_id = $2`
	_, err := r.pool.Exec(ctx, query, userID, characterID)
	return err
}

func collectMessages(rows pgx.Rows) ([]domain.Message, error) {
	defer rows.Close()

	var messages []domain.Message
	for rows.Next() {
		var m domain.Message
		if err := rows.Scan(
			&m.ID,
			&m.Content,
			&m.IsUser,
			&m.UserID,
			&m.CharacterID,
			&m.CreatedAt,
		); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return messages, nil
}
