package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User represents an account that owns character builds and artifacts.
type User struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Username     string          `gorm:"column:username;type:text;not null;uniqueIndex"`
	PasswordHash string          `gorm:"column:password_hash;not null"`
	Email        *string         `gorm:"column:email;type:text;uniqueIndex"`
	Phone        *string         `gorm:"column:phone;type:text;uniqueIndex"`
	RefreshToken *string         `gorm:"column:refresh_token;type:text"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime"`
	Characters   []UserCharacter `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Artifacts    []Artifact      `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
