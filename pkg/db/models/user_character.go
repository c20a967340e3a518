package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Leveling bounds enforced on every user character build.
const (
	MinLevel          = 1
	MaxLevel          = 90
	MinConstellations = 1
	MaxConstellations = 6
	MinTalentLevel    = 1
	MaxTalentLevel    = 10
)

// UserCharacter is one user's build of a character.
type UserCharacter struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey"`
	UserID         uuid.UUID  `gorm:"column:user_id;type:uuid;not null;uniqueIndex:idx_user_characters_user_character"`
	CharacterID    uuid.UUID  `gorm:"column:character_id;type:uuid;not null;uniqueIndex:idx_user_characters_user_character"`
	Level          int        `gorm:"column:level;not null;check:chk_user_characters_level,level BETWEEN 1 AND 90"`
	Constellations int        `gorm:"column:constellations;not null;check:chk_user_characters_constellations,constellations BETWEEN 1 AND 6"`
	AttackLevel    int        `gorm:"column:attack_level;not null;check:chk_user_characters_attack_level,attack_level BETWEEN 1 AND 10"`
	SkillLevel     int        `gorm:"column:skill_level;not null;check:chk_user_characters_skill_level,skill_level BETWEEN 1 AND 10"`
	BurstLevel     int        `gorm:"column:burst_level;not null;check:chk_user_characters_burst_level,burst_level BETWEEN 1 AND 10"`
	CreatedAt      time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time  `gorm:"column:updated_at;autoUpdateTime"`
	Artifacts      []Artifact `gorm:"foreignKey:UserCharacterID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`
}

func (uc *UserCharacter) BeforeCreate(*gorm.DB) error {
	if uc.ID == uuid.Nil {
		uc.ID = uuid.New()
	}
	return nil
}
