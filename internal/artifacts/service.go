package artifacts

import (
	"context"
	"fmt"

	"github.com/characters-analyzer/backend/internal/characters"
	"github.com/characters-analyzer/backend/internal/repo"
	"github.com/characters-analyzer/backend/pkg/db"
	"github.com/characters-analyzer/backend/pkg/db/models"
	pkgerrors "github.com/characters-analyzer/backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service defines the behavior needed by the artifacts controllers.
type Service interface {
	Add(ctx context.Context, userID uuid.UUID, req AddArtifactRequest) (*ArtifactDTO, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]ArtifactDTO, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	tx txRunner
}

// NewService constructs an artifacts service running every write in a transaction.
func NewService(tx txRunner) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("transaction runner is required")
	}
	return &service{tx: tx}, nil
}

func (s *service) Add(ctx context.Context, userID uuid.UUID, req AddArtifactRequest) (*ArtifactDTO, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	var created *ArtifactDTO
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if req.UserCharacterID != nil {
			build, err := characters.NewRepository(tx).FindUserCharacter(ctx, *req.UserCharacterID)
			if err != nil {
				if repo.IsNotFound(err) {
					return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "character not found")
				}
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load character")
			}
			if build.UserID != userID {
				return pkgerrors.New(pkgerrors.CodeForbidden, "character belongs to another user")
			}
		}

		setID, mainStatID := req.SetID, req.MainStatID
		artifact := &models.Artifact{
			UserID:          userID,
			UserCharacterID: req.UserCharacterID,
			SetID:           &setID,
			MainStatID:      &mainStatID,
			MainStatValue:   req.MainStatValue,
		}
		subStats := make([]models.ArtifactSubStat, 0, len(req.SubStats))
		for _, sub := range req.SubStats {
			subStats = append(subStats, models.ArtifactSubStat{SubStatID: sub.StatID, SubStatValue: sub.Value})
		}

		artifacts := NewRepository(tx)
		if err := artifacts.Insert(ctx, artifact, subStats); err != nil {
			return classifyWriteError(err)
		}

		dto, err := artifacts.FindForUser(ctx, userID, artifact.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reload artifact")
		}
		created = dto
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *service) ListForUser(ctx context.Context, userID uuid.UUID) ([]ArtifactDTO, error) {
	var rows []ArtifactDTO
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		var err error
		rows, err = NewRepository(tx).ListForUser(ctx, userID)
		return err
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list artifacts")
	}
	return rows, nil
}

func validateRequest(req AddArtifactRequest) error {
	details := map[string]string{}
	if req.SetID == uuid.Nil {
		details["set_id"] = "is required"
	}
	if req.MainStatID == uuid.Nil {
		details["main_stat_id"] = "is required"
	}
	if req.MainStatValue <= 0 {
		details["main_stat_value"] = "must be positive"
	}
	if len(req.SubStats) > MaxSubStats {
		details["sub_stats"] = fmt.Sprintf("must contain at most %d entries", MaxSubStats)
	}
	seen := make(map[uuid.UUID]struct{}, len(req.SubStats))
	for i, sub := range req.SubStats {
		key := fmt.Sprintf("sub_stats[%d]", i)
		switch {
		case sub.StatID == uuid.Nil:
			details[key] = "stat_id is required"
		case sub.Value <= 0:
			details[key] = "value must be positive"
		}
		if _, dup := seen[sub.StatID]; dup && sub.StatID != uuid.Nil {
			details[key] = "duplicate sub stat"
		}
		seen[sub.StatID] = struct{}{}
	}
	if len(details) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(details)
	}
	return nil
}

func classifyWriteError(err error) error {
	switch {
	case db.IsForeignKeyViolation(err):
		return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "referenced set or stat does not exist")
	case db.IsUniqueViolation(err, ""):
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "duplicate sub stat")
	}
	if _, ok := db.Classify(err); ok {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "artifact rejected by schema")
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "insert artifact")
}
