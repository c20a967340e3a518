package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Artifact is an equippable item owned by a user, optionally bound to a build.
type Artifact struct {
	ID              uuid.UUID         `gorm:"type:uuid;primaryKey"`
	UserID          uuid.UUID         `gorm:"column:user_id;type:uuid;not null;index"`
	UserCharacterID *uuid.UUID        `gorm:"column:user_character_id;type:uuid;index"`
	SetID           *uuid.UUID        `gorm:"column:set_id;type:uuid"`
	MainStatID      *uuid.UUID        `gorm:"column:main_stat_id;type:uuid"`
	MainStatValue   float64           `gorm:"column:main_stat_value;not null"`
	CreatedAt       time.Time         `gorm:"column:created_at;autoCreateTime"`
	SubStats        []ArtifactSubStat `gorm:"foreignKey:ArtifactID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

func (a *Artifact) BeforeCreate(*gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// Set is a lookup row for artifact sets.
type Set struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Title       string     `gorm:"column:title;type:varchar(256);not null"`
	Description string     `gorm:"column:description;type:text"`
	Artifacts   []Artifact `gorm:"foreignKey:SetID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`
}

func (s *Set) BeforeCreate(*gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// Stat is a lookup row for artifact main and secondary stats.
type Stat struct {
	ID                uuid.UUID         `gorm:"type:uuid;primaryKey"`
	Name              string            `gorm:"column:name;type:varchar(256);not null"`
	IconURL           string            `gorm:"column:icon_url;type:varchar(256)"`
	MainStatArtifacts []Artifact        `gorm:"foreignKey:MainStatID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`
	SubStatArtifacts  []ArtifactSubStat `gorm:"foreignKey:SubStatID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

func (s *Stat) BeforeCreate(*gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// ArtifactSubStat joins an artifact with one of its secondary stats.
type ArtifactSubStat struct {
	ArtifactID   uuid.UUID `gorm:"column:artifact_id;type:uuid;primaryKey"`
	SubStatID    uuid.UUID `gorm:"column:sub_stat_id;type:uuid;primaryKey"`
	SubStatValue float64   `gorm:"column:sub_stat_value;not null"`
}
