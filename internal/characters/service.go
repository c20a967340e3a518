package characters

import (
	"context"
	"fmt"

	"github.com/characters-analyzer/backend/internal/repo"
	"github.com/characters-analyzer/backend/pkg/db"
	"github.com/characters-analyzer/backend/pkg/db/models"
	pkgerrors "github.com/characters-analyzer/backend/pkg/errors"
	"github.com/google/uuid"
)

const (
	buildNotFoundMessage     = "character not found"
	buildForbiddenMessage    = "character belongs to another user"
	characterUnknownMessage  = "character does not exist"
	characterConflictMessage = "character already added"
)

// Service defines the behavior needed by the characters controllers.
type Service interface {
	List(ctx context.Context, userID uuid.UUID) ([]FullCharacter, error)
	Catalog(ctx context.Context) ([]CharacterDTO, error)
	Append(ctx context.Context, userID uuid.UUID, req AppendRequest) (*UserCharacterDTO, error)
	Update(ctx context.Context, userID, id uuid.UUID, req UpdateRequest) (*UserCharacterDTO, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

type repository interface {
	ListForUser(ctx context.Context, userID uuid.UUID) ([]FullCharacter, error)
	ListCharacters(ctx context.Context) ([]CharacterDTO, error)
	FindUserCharacter(ctx context.Context, id uuid.UUID) (*models.UserCharacter, error)
	Create(ctx context.Context, uc *models.UserCharacter) error
	UpdateLevels(ctx context.Context, id uuid.UUID, levels Levels) (*models.UserCharacter, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo repository
}

// NewService constructs a characters service.
func NewService(r repository) (Service, error) {
	if r == nil {
		return nil, fmt.Errorf("characters repository is required")
	}
	return &service{repo: r}, nil
}

func (s *service) List(ctx context.Context, userID uuid.UUID) ([]FullCharacter, error) {
	rows, err := s.repo.ListForUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list characters")
	}
	return rows, nil
}

func (s *service) Catalog(ctx context.Context) ([]CharacterDTO, error) {
	rows, err := s.repo.ListCharacters(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list catalog")
	}
	return rows, nil
}

func (s *service) Append(ctx context.Context, userID uuid.UUID, req AppendRequest) (*UserCharacterDTO, error) {
	if req.CharacterID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "validation failed").
			WithDetails(map[string]string{"character_id": "is required"})
	}
	if err := req.Levels.Validate(); err != nil {
		return nil, err
	}

	uc := &models.UserCharacter{UserID: userID, CharacterID: req.CharacterID}
	req.Levels.apply(uc)

	if err := s.repo.Create(ctx, uc); err != nil {
		return nil, classifyWriteError(err, "append character")
	}
	return FromModel(uc), nil
}

func (s *service) Update(ctx context.Context, userID, id uuid.UUID, req UpdateRequest) (*UserCharacterDTO, error) {
	if err := req.Levels.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.owned(ctx, userID, id); err != nil {
		return nil, err
	}

	updated, err := s.repo.UpdateLevels(ctx, id, req.Levels)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, buildNotFoundMessage)
		}
		return nil, classifyWriteError(err, "update character")
	}
	return FromModel(updated), nil
}

func (s *service) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if _, err := s.owned(ctx, userID, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if repo.IsNotFound(err) {
			return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, buildNotFoundMessage)
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete character")
	}
	return nil
}

// owned loads a build and enforces that userID owns it.
func (s *service) owned(ctx context.Context, userID, id uuid.UUID) (*models.UserCharacter, error) {
	uc, err := s.repo.FindUserCharacter(ctx, id)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, buildNotFoundMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load character")
	}
	if uc.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, buildForbiddenMessage)
	}
	return uc, nil
}

func classifyWriteError(err error, step string) error {
	v, ok := db.Classify(err)
	if !ok {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, step)
	}
	switch v.Kind {
	case db.ViolationUnique:
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, characterConflictMessage)
	case db.ViolationForeignKey:
		return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, characterUnknownMessage)
	case db.ViolationCheck:
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "leveling values out of range")
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, step)
}
