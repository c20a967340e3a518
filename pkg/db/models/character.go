package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Character is seeded reference data describing a playable character.
type Character struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Name      string          `gorm:"column:name;type:varchar(256);not null"`
	Legendary bool            `gorm:"column:legendary;not null;default:false"`
	WeaponID  *uuid.UUID      `gorm:"column:weapon_id;type:uuid"`
	ElementID *uuid.UUID      `gorm:"column:element_id;type:uuid"`
	RegionID  *uuid.UUID      `gorm:"column:region_id;type:uuid"`
	Builds    []UserCharacter `gorm:"foreignKey:CharacterID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

func (c *Character) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// Weapon is a lookup row for character weapon types.
type Weapon struct {
	ID         uuid.UUID   `gorm:"type:uuid;primaryKey"`
	Title      string      `gorm:"column:title;type:varchar(256);not null"`
	Characters []Character `gorm:"foreignKey:WeaponID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`
}

func (w *Weapon) BeforeCreate(*gorm.DB) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	return nil
}

// Element is a lookup row for character elements.
type Element struct {
	ID         uuid.UUID   `gorm:"type:uuid;primaryKey"`
	Title      string      `gorm:"column:title;type:varchar(256);not null"`
	Characters []Character `gorm:"foreignKey:ElementID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`
}

func (e *Element) BeforeCreate(*gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// Region is a lookup row for a character's nation.
type Region struct {
	ID         uuid.UUID   `gorm:"type:uuid;primaryKey"`
	Title      string      `gorm:"column:title;type:varchar(256);not null"`
	Characters []Character `gorm:"foreignKey:RegionID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`
}

func (r *Region) BeforeCreate(*gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
