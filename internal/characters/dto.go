package characters

import (
	"fmt"

	"github.com/characters-analyzer/backend/pkg/db/models"
	pkgerrors "github.com/characters-analyzer/backend/pkg/errors"
	"github.com/google/uuid"
)

// Levels groups the leveling fields a user may set on a build.
type Levels struct {
	Level          int `json:"level" validate:"min=1,max=90"`
	Constellations int `json:"constellations" validate:"min=1,max=6"`
	AttackLevel    int `json:"attack_level" validate:"min=1,max=10"`
	SkillLevel     int `json:"skill_level" validate:"min=1,max=10"`
	BurstLevel     int `json:"burst_level" validate:"min=1,max=10"`
}

// Validate re-checks the leveling ranges independently of request decoding.
func (l Levels) Validate() error {
	details := map[string]string{}
	check := func(field string, value, min, max int) {
		if value < min || value > max {
			details[field] = fmt.Sprintf("must be between %d and %d", min, max)
		}
	}
	check("level", l.Level, models.MinLevel, models.MaxLevel)
	check("constellations", l.Constellations, models.MinConstellations, models.MaxConstellations)
	check("attack_level", l.AttackLevel, models.MinTalentLevel, models.MaxTalentLevel)
	check("skill_level", l.SkillLevel, models.MinTalentLevel, models.MaxTalentLevel)
	check("burst_level", l.BurstLevel, models.MinTalentLevel, models.MaxTalentLevel)
	if len(details) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(details)
	}
	return nil
}

func (l Levels) apply(uc *models.UserCharacter) {
	uc.Level = l.Level
	uc.Constellations = l.Constellations
	uc.AttackLevel = l.AttackLevel
	uc.SkillLevel = l.SkillLevel
	uc.BurstLevel = l.BurstLevel
}

// AppendRequest is the payload for adding a character to the caller's roster.
type AppendRequest struct {
	CharacterID uuid.UUID `json:"character_id" validate:"required"`
	Levels
}

// UpdateRequest overwrites every leveling field of a build.
type UpdateRequest struct {
	Levels
}

// UserCharacterDTO is a single build as returned after a mutation.
type UserCharacterDTO struct {
	ID          uuid.UUID `json:"id"`
	CharacterID uuid.UUID `json:"character_id"`
	Levels
}

func FromModel(uc *models.UserCharacter) *UserCharacterDTO {
	if uc == nil {
		return nil
	}
	return &UserCharacterDTO{
		ID:          uc.ID,
		CharacterID: uc.CharacterID,
		Levels: Levels{
			Level:          uc.Level,
			Constellations: uc.Constellations,
			AttackLevel:    uc.AttackLevel,
			SkillLevel:     uc.SkillLevel,
			BurstLevel:     uc.BurstLevel,
		},
	}
}

// FullCharacter is a build joined with its character reference data.
type FullCharacter struct {
	ID             uuid.UUID `json:"id" gorm:"column:id"`
	CharacterID    uuid.UUID `json:"character_id" gorm:"column:character_id"`
	Name           string    `json:"name" gorm:"column:name"`
	Legendary      bool      `json:"legendary" gorm:"column:legendary"`
	Weapon         *string   `json:"weapon" gorm:"column:weapon"`
	Element        *string   `json:"element" gorm:"column:element"`
	Region         *string   `json:"region" gorm:"column:region"`
	Level          int       `json:"level" gorm:"column:level"`
	Constellations int       `json:"constellations" gorm:"column:constellations"`
	AttackLevel    int       `json:"attack_level" gorm:"column:attack_level"`
	SkillLevel     int       `json:"skill_level" gorm:"column:skill_level"`
	BurstLevel     int       `json:"burst_level" gorm:"column:burst_level"`
}

// CharacterDTO is a reference catalogue entry.
type CharacterDTO struct {
	ID        uuid.UUID `json:"id" gorm:"column:id"`
	Name      string    `json:"name" gorm:"column:name"`
	Legendary bool      `json:"legendary" gorm:"column:legendary"`
	Weapon    *string   `json:"weapon" gorm:"column:weapon"`
	Element   *string   `json:"element" gorm:"column:element"`
	Region    *string   `json:"region" gorm:"column:region"`
}

// ListResponse wraps the caller's roster.
type ListResponse struct {
	Characters []FullCharacter `json:"characters"`
}

// CatalogResponse wraps the reference catalogue.
type CatalogResponse struct {
	Characters []CharacterDTO `json:"characters"`
}
