package users

import (
	"context"
	"fmt"

	"github.com/characters-analyzer/backend/internal/repo"
	"github.com/characters-analyzer/backend/pkg/db"
	"github.com/characters-analyzer/backend/pkg/db/models"
	pkgerrors "github.com/characters-analyzer/backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository exposes user-related persistence operations.
type Repository struct {
	repo.Base
}

// NewRepository constructs a users repo bound to the provided GORM DB.
func NewRepository(conn *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(conn)}
}

// Create inserts a new user and returns the persisted model. Duplicate
// username, email or phone surface as a Conflict naming the column.
func (r *Repository) Create(ctx context.Context, dto CreateUserDTO) (*models.User, error) {
	user := dto.ToModel()
	if err := r.DB(ctx).Create(user).Error; err != nil {
		if !db.IsUniqueViolation(err, "") {
			return nil, err
		}
		v, _ := db.Classify(err)
		column := v.Column
		if column == "" {
			column = "username"
		}
		value := dto.valueOf(column)
		if value == "" {
			value = v.Value
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err,
			fmt.Sprintf("user with %s=%q already exists", column, value)).
			WithDetails(map[string]any{"field": column})
	}
	return user, nil
}

// FindByUsername retrieves the user matching the provided username.
func (r *Repository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.DB(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateRefreshToken overwrites the stored refresh token. A nil token clears it.
func (r *Repository) UpdateRefreshToken(ctx context.Context, username string, token *string) error {
	res := r.DB(ctx).
		Model(&models.User{}).
		Where("username = ?", username).
		UpdateColumn("refresh_token", token)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SwapRefreshToken replaces the stored refresh token only while it still
// equals expected. It reports false when another rotation, a sign-in or a
// sign-out got there first.
func (r *Repository) SwapRefreshToken(ctx context.Context, username, expected, next string) (bool, error) {
	res := r.DB(ctx).
		Model(&models.User{}).
		Where("username = ? AND refresh_token = ?", username, expected).
		UpdateColumn("refresh_token", next)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// UpdatePasswordHash replaces the stored credential hash.
func (r *Repository) UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error {
	return r.DB(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumn("password_hash", hash).Error
}
