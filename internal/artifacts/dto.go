package artifacts

import (
	"time"

	"github.com/google/uuid"
)

// MaxSubStats is the number of secondary stats an artifact can roll.
const MaxSubStats = 4

// SubStatInput is one secondary stat in an append request.
type SubStatInput struct {
	StatID uuid.UUID `json:"stat_id" validate:"required"`
	Value  float64   `json:"value" validate:"gt=0"`
}

// AddArtifactRequest is the payload for POST /artifacts/append.
type AddArtifactRequest struct {
	UserCharacterID *uuid.UUID     `json:"user_character_id,omitempty"`
	SetID           uuid.UUID      `json:"set_id" validate:"required"`
	MainStatID      uuid.UUID      `json:"main_stat_id" validate:"required"`
	MainStatValue   float64        `json:"main_stat_value" validate:"gt=0"`
	SubStats        []SubStatInput `json:"sub_stats" validate:"max=4,dive"`
}

// SubStatDTO is a resolved secondary stat.
type SubStatDTO struct {
	ArtifactID uuid.UUID `json:"-" gorm:"column:artifact_id"`
	StatID     uuid.UUID `json:"stat_id" gorm:"column:stat_id"`
	Name       string    `json:"name" gorm:"column:name"`
	Value      float64   `json:"value" gorm:"column:value"`
}

// ArtifactDTO is an artifact with its set, main stat and sub-stats resolved.
type ArtifactDTO struct {
	ID              uuid.UUID    `json:"id" gorm:"column:id"`
	UserCharacterID *uuid.UUID   `json:"user_character_id" gorm:"column:user_character_id"`
	SetID           *uuid.UUID   `json:"set_id" gorm:"column:set_id"`
	Set             *string      `json:"set" gorm:"column:set_title"`
	MainStatID      *uuid.UUID   `json:"main_stat_id" gorm:"column:main_stat_id"`
	MainStat        *string      `json:"main_stat" gorm:"column:main_stat_name"`
	MainStatValue   float64      `json:"main_stat_value" gorm:"column:main_stat_value"`
	CreatedAt       time.Time    `json:"created_at" gorm:"column:created_at"`
	SubStats        []SubStatDTO `json:"sub_stats" gorm:"-"`
}

// ListResponse wraps the caller's artifacts.
type ListResponse struct {
	Artifacts []ArtifactDTO `json:"artifacts"`
}
