package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"charchat/internal/domain"
	"charchat/internal/repository"
)

// CharacterService maneja el CRUD de personajes con las reglas de propiedad:
// los personajes base son inmutables y los de usuario solo los toca su dueño.
type CharacterService struct {
	characters repository.CharacterRepository
}

var (
	ErrCharacterNotFound         = errors.New("character not found")
	ErrDefaultCharacterImmutable = errors.New("default characters cannot be modified")
	ErrNotCharacterOwner         = errors.New("not the character owner")
)

func NewCharacterService(characters repository.CharacterRepository) *CharacterService {
	return &CharacterService{characters: characters}
}

// ListAll devuelve los personajes base y, si hay usuario autenticado, también
// los suyos.
func (s *CharacterService) ListAll(ctx context.Context, userID string) ([]domain.Character, error) {
	if s == nil || s.characters == nil {
		return nil, errors.New("character service not configured")
	}
	if strings.TrimSpace(userID) == "" {
		return s.characters.ListDefaults(ctx)
	}
	return s.characters.ListVisible(ctx, userID)
}

func (s *CharacterService) ListDefaults(ctx context.Context) ([]domain.Character, error) {
	if s == nil || s.characters == nil {
		return nil, errors.New("character service not configured")
	}
	return s.characters.ListDefaults(ctx)
}

func (s *CharacterService) ListOwned(ctx context.Context, userID string) ([]domain.Character, error) {
	if s == nil || s.characters == nil {
		return nil, errors.New("character service not configured")
	}
	return s.characters.ListByOwner(ctx, userID)
}

func (s *CharacterService) Get(ctx context.Context, id string) (domain.Character, error) {
	if s == nil || s.characters == nil {
		return domain.Character{}, errors.New("character service not configured")
	}
	character, err := s.characters.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Character{}, ErrCharacterNotFound
		}
		return domain.Character{}, err
	}
	return character, nil
}

type CreateCharacterInput struct {
	Name      string
	Prompt    string
	Thumbnail string
}

func (s *CharacterService) Create(ctx context.Context, userID string, input CreateCharacterInput) (domain.Character, error) {
	if s == nil || s.characters == nil {
		return domain.Character{}, errors.New("character service not configured")
	}

	now := time.Now().UTC()
	character := domain.Character{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(input.Name),
		Prompt:    strings.TrimSpace(input.Prompt),
		Thumbnail: strings.TrimSpace(input.Thumbnail),
		IsDefault: false,
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.characters.Create(ctx, character); err != nil {
		return domain.Character{}, err
	}
	return character, nil
}

// UpdateCharacterInput aplica cambios parciales: nombre y prompt solo cuando
// vienen no vacíos; thumbnail solo cuando el campo está presente (puntero).
type UpdateCharacterInput struct {
	Name      string
	Prompt    string
	Thumbnail *string
}

func (s *CharacterService) Update(ctx context.Context, userID, characterID string, input UpdateCharacterInput) (domain.Character, error) {
	if s == nil || s.characters == nil {
		return domain.Character{}, errors.New("character service not configured")
	}

	character, err := s.guardOwned(ctx, userID, characterID)
	if err != nil {
		return domain.Character{}, err
	}

	if name := strings.TrimSpace(input.Name); name != "" {
		character.Name = name
	}
	if prompt := strings.TrimSpace(input.Prompt); prompt != "" {
		character.Prompt = prompt
	}
	if input.Thumbnail != nil {
		character.Thumbnail = strings.TrimSpace(*input.Thumbnail)
	}
	character.UpdatedAt = time.Now().UTC()

	if err := s.characters.Update(ctx, character); err != nil {
		return domain.Character{}, err
	}
	return character, nil
}

func (s *CharacterService) Delete(ctx context.Context, userID, characterID string) error {
	if s == nil || s.characters == nil {
		return errors.New("character service not configured")
	}

	if _, err := s.guardOwned(ctx, userID, characterID); err != nil {
		return err
	}
	return s.characters.Delete(ctx, characterID)
}

// NameAvailable verifica unicidad de nombre dentro de los personajes del
// dueño; excludeID permite omitir el registro en edición.
func (s *CharacterService) NameAvailable(ctx context.Context, userID, name, excludeID string) (bool, error) {
	if s == nil || s.characters == nil {
		return false, errors.New("character service not configured")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return false, nil
	}
	exists, err := s.characters.NameExists(ctx, userID, name, strings.TrimSpace(excludeID))
	if err != nil {
		return false, err
	}
	return !exists, nil
}

func (s *CharacterService) guardOwned(ctx context.Context, userID, characterID string) (domain.Character, error) {
	character, err := s.characters.GetByID(ctx, characterID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Character{}, ErrCharacterNotFound
		}
		return domain.Character{}, err
	}
	if character.IsDefault {
		return domain.Character{}, ErrDefaultCharacterImmutable
	}
	if character.UserID != userID {
		return domain.Character{}, ErrNotCharacterOwner
	}
	return character, nil
}
