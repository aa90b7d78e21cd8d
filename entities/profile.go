package entities

import (
	"github.com/google/uuid"
)

type Profile struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	Email    string    `gorm:"uniqueIndex" json:"email"`
	Name     string    `json:"name"`
	Password string    `json:"-"`
	Role     string    `json:"role"` // "reviewer", "admin"

	Timestamp
}
