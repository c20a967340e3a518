package artifacts

import (
	"context"

	"github.com/characters-analyzer/backend/internal/repo"
	"github.com/characters-analyzer/backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository exposes artifact persistence operations.
type Repository struct {
	repo.Base
}

// NewRepository constructs an artifacts repo bound to the provided GORM DB or transaction.
func NewRepository(conn *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(conn)}
}

// Insert stores the artifact row followed by its sub-stats. Callers wanting
// atomicity pass a transaction to NewRepository.
func (r *Repository) Insert(ctx context.Context, artifact *models.Artifact, subStats []models.ArtifactSubStat) error {
	if err := r.DB(ctx).Omit(clause.Associations).Create(artifact).Error; err != nil {
		return err
	}
	if len(subStats) == 0 {
		return nil
	}
	for i := range subStats {
		subStats[i].ArtifactID = artifact.ID
	}
	return r.DB(ctx).Create(&subStats).Error
}

// ListForUser returns the user's artifacts, newest first.
func (r *Repository) ListForUser(ctx context.Context, userID uuid.UUID) ([]ArtifactDTO, error) {
	return r.list(ctx, "a.user_id = ?", userID)
}

// FindForUser returns a single artifact owned by userID.
func (r *Repository) FindForUser(ctx context.Context, userID, id uuid.UUID) (*ArtifactDTO, error) {
	rows, err := r.list(ctx, "a.user_id = ? AND a.id = ?", userID, id)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &rows[0], nil
}

func (r *Repository) list(ctx context.Context, where string, args ...any) ([]ArtifactDTO, error) {
	rows := []ArtifactDTO{}
	err := r.DB(ctx).
		Table("artifacts AS a").
		Select("a.id, a.user_character_id, a.set_id, s.title AS set_title, a.main_stat_id, st.name AS main_stat_name, a.main_stat_value, a.created_at").
		Joins("LEFT JOIN sets s ON s.id = a.set_id").
		Joins("LEFT JOIN stats st ON st.id = a.main_stat_id").
		Where(where, args...).
		Order("a.created_at DESC, a.id ASC").
		Scan(&rows).Error
	if err != nil || len(rows) == 0 {
		return rows, err
	}

	ids := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}

	var subs []SubStatDTO
	err = r.DB(ctx).
		Table("artifact_sub_stats AS ass").
		Select("ass.artifact_id, ass.sub_stat_id AS stat_id, st.name, ass.sub_stat_value AS value").
		Joins("JOIN stats st ON st.id = ass.sub_stat_id").
		Where("ass.artifact_id IN ?", ids).
		Order("st.name ASC").
		Scan(&subs).Error
	if err != nil {
		return nil, err
	}

	byArtifact := make(map[uuid.UUID][]SubStatDTO, len(rows))
	for _, sub := range subs {
		byArtifact[sub.ArtifactID] = append(byArtifact[sub.ArtifactID], sub)
	}
	for i := range rows {
		rows[i].SubStats = byArtifact[rows[i].ID]
		if rows[i].SubStats == nil {
			rows[i].SubStats = []SubStatDTO{}
		}
	}
	return rows, nil
}
