package users

import (
	"time"

	"github.com/characters-analyzer/backend/pkg/db/models"
	"github.com/google/uuid"
)

// UserDTO is the transport shape that omits credentials and the refresh token.
type UserDTO struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Email     *string   `json:"email,omitempty"`
	Phone     *string   `json:"phone,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateUserDTO holds the data required by the repo to persist a new user.
type CreateUserDTO struct {
	Username     string
	PasswordHash string
	Email        *string
	Phone        *string
}

func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}
	return &UserDTO{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Phone:     u.Phone,
		CreatedAt: u.CreatedAt,
	}
}

func (c CreateUserDTO) ToModel() *models.User {
	return &models.User{
		Username:     c.Username,
		PasswordHash: c.PasswordHash,
		Email:        c.Email,
		Phone:        c.Phone,
	}
}

// valueOf returns the submitted value for a unique column, used in conflict messages.
func (c CreateUserDTO) valueOf(column string) string {
	switch column {
	case "username":
		return c.Username
	case "email":
		if c.Email != nil {
			return *c.Email
		}
	case "phone":
		if c.Phone != nil {
			return *c.Phone
		}
	}
	return ""
}
