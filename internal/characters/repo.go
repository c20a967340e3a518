package characters

import (
	"context"

	"github.com/characters-analyzer/backend/internal/repo"
	"github.com/characters-analyzer/backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const referenceColumns = "c.name, c.legendary, w.title AS weapon, e.title AS element, r.title AS region"

// Repository exposes character and build persistence operations. Every read
// resolves reference data through explicit joins.
type Repository struct {
	repo.Base
}

// NewRepository constructs a characters repo bound to the provided GORM DB.
func NewRepository(conn *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(conn)}
}

func withReferenceJoins(q *gorm.DB) *gorm.DB {
	return q.
		Joins("LEFT JOIN weapons w ON w.id = c.weapon_id").
		Joins("LEFT JOIN elements e ON e.id = c.element_id").
		Joins("LEFT JOIN regions r ON r.id = c.region_id")
}

// ListForUser returns the user's builds with character reference data, ordered by name.
func (r *Repository) ListForUser(ctx context.Context, userID uuid.UUID) ([]FullCharacter, error) {
	rows := []FullCharacter{}
	q := r.DB(ctx).
		Table("user_characters AS uc").
		Select("uc.id, uc.character_id, " + referenceColumns +
			", uc.level, uc.constellations, uc.attack_level, uc.skill_level, uc.burst_level").
		Joins("JOIN characters c ON c.id = uc.character_id")
	err := withReferenceJoins(q).
		Where("uc.user_id = ?", userID).
		Order("c.name ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ListCharacters returns the reference catalogue.
func (r *Repository) ListCharacters(ctx context.Context) ([]CharacterDTO, error) {
	rows := []CharacterDTO{}
	q := r.DB(ctx).
		Table("characters AS c").
		Select("c.id, " + referenceColumns)
	if err := withReferenceJoins(q).Order("c.name ASC").Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// FindUserCharacter loads a build by id.
func (r *Repository) FindUserCharacter(ctx context.Context, id uuid.UUID) (*models.UserCharacter, error) {
	var uc models.UserCharacter
	if err := r.DB(ctx).First(&uc, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &uc, nil
}

// Create inserts a build.
func (r *Repository) Create(ctx context.Context, uc *models.UserCharacter) error {
	return r.Tx(ctx, func(tx *gorm.DB) error {
		return tx.Create(uc).Error
	})
}

// UpdateLevels overwrites the leveling fields of a build and returns the stored row.
func (r *Repository) UpdateLevels(ctx context.Context, id uuid.UUID, levels Levels) (*models.UserCharacter, error) {
	var updated models.UserCharacter
	err := r.Tx(ctx, func(tx *gorm.DB) error {
		res := tx.Model(&models.UserCharacter{}).
			Where("id = ?", id).
			Updates(map[string]any{
				"level":          levels.Level,
				"constellations": levels.Constellations,
				"attack_level":   levels.AttackLevel,
				"skill_level":    levels.SkillLevel,
				"burst_level":    levels.BurstLevel,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.First(&updated, "id = ?", id).Error
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// Delete removes a build.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.Tx(ctx, func(tx *gorm.DB) error {
		res := tx.Delete(&models.UserCharacter{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
