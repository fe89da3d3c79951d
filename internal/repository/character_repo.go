package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"charchat/internal/domain"
)

type CharacterRepository interface {
	Create(ctx context.Context, character domain.Character) error
	Update(ctx context.Context, character domain.Character) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (domain.Character, error)
	ListVisible(ctx context.Context, userID string) ([]domain.Character, error)
	ListDefaults(ctx context.Context) ([]domain.Character, error)
	ListByOwner(ctx context.Context, userID string) ([]domain.Character, error)
	NameExists(ctx context.Context, userID, name, excludeID string) (bool, error)
}

type PgCharacterRepository struct {
	pool *pgxpool.Pool
}

func NewPgCharacterRepository(pool *pgxpool.Pool) *PgCharacterRepository {
	return &PgCharacterRepository{pool: pool}
}

const characterColumns = `id, name, prompt, thumbnail, is_default, user_id, created_at, updated_at`

func (r *PgCharacterRepository) Create(ctx context.Context, character domain.Character) error {
	const query = `
		INSERT INTO characters (id, name, prompt, thumbnail, is_default, user_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.pool.Exec(ctx, query,
		character.ID,
		character.Name,
		character.Prompt,
		nullableText(character.Thumbnail),
		character.IsDefault,
		nullableText(character.UserID),
		character.CreatedAt,
		character.UpdatedAt,
	)
	return err
}

func (r *PgCharacterRepository) Update(ctx context.Context, character domain.Character) error {
	const query = `
		UPDATE characters
		SET name = $1, prompt = $2, thumbnail = $3, updated_at = $4
		WHERE id = $5
	`
	_, err := r.pool.Exec(ctx, query,
		character.Name,
		character.Prompt,
		nullableText(character.Thumbnail),
		character.UpdatedAt,
		character.ID,
	)
	return err
}

func (r *PgCharacterRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM characters WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, id)
	return err
}

func (r *PgCharacterRepository) GetByID(ctx context.Context, id string) (domain.Character, error) {
	const query = `
		SELECT ` + characterColumns + `
		FROM characters
		WHERE id = $1
	`
	return scanCharacter(r.pool.QueryRow(ctx, query, id))
}

// ListVisible devuelve los personajes base más los del usuario autenticado.
func (r *PgCharacterRepository) ListVisible(ctx context.Context, userID string) ([]domain.Character, error) {
	const query = `
		SELECT ` + characterColumns + `
		FROM characters
		WHERE is_default = TRUE OR user_id = $1
		ORDER BY is_default DESC, created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	return collectCharacters(rows)
}

func (r *PgCharacterRepository) ListDefaults(ctx context.Context) ([]domain.Character, error) {
	const query = `
		SELECT ` + characterColumns + `
		FROM characters
		WHERE is_default = TRUE
		ORDER BY created_at ASC
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	return collectCharacters(rows)
}

func (r *PgCharacterRepository) ListByOwner(ctx context.Context, userID string) ([]domain.Character, error) {
	const query = `
		SELECT ` + characterColumns + `
		FROM characters
		WHERE user_id = $1 AND is_default = FALSE
		ORDER BY created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	return collectCharacters(rows)
}

// NameExists verifica duplicados de nombre dentro de los personajes del dueño,
// excluyendo el registro en edición cuando excludeID no es vacío.
func (r *PgCharacterRepository) NameExists(ctx context.Context, userID, name, excludeID string) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1 FROM characters
			WHERE user_id = $1 AND name = $2 AND is_default = FALSE
			  AND ($3 = '' OR id::text <> $3)
		)
	`
	var exists bool
	err := r.pool.QueryRow(ctx, query, userID, name, excludeID).Scan(&exists)
	return exists, err
}

func scanCharacter(row pgx.Row) (domain.Character, error) {
	var (
		c         domain.Character
		thumbnail *string
		userID    *string
	)
	err := row.Scan(
		&c.ID,
		&c.Name,
		&c.Prompt,
		&thumbnail,
		&c.IsDefault,
		&userID,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return domain.Character{}, err
	}
	if thumbnail != nil {
		c.Thumbnail = *thumbnail
	}
	if userID != nil {
		c.UserID = *userID
	}
	return c, nil
}

func collectCharacters(rows pgx.Rows) ([]domain.Character, error) {
	defer rows.Close()

	var chars []domain.Character
	for rows.Next() {
		c, err := scanCharacter(rows)
		if err != nil {
			return nil, err
		}
		chars = append(chars, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return chars, nil
}

func nullableText(value string) interface{} {
	if value == "" {
		return nil
	}
	return value
}
