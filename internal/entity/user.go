package entity

import (
	"time"

	"github.com/google/uuid"
)

// User is a registered submitter. PasswordHash never leaves the
// repository/auth boundary.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name,omitempty"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
