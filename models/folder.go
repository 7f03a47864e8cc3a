package models

import (
	"time"

	"github.com/google/uuid"
)

// Folder groups a user's notes. Deleting a folder deletes its notes.
type Folder struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	UserID    uuid.UUID `json:"userId" db:"user_id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// NewFolder creates a new Folder instance
func NewFolder(userID uuid.UUID, name string) *Folder {
	now := time.Now().UTC()
	return &Folder{
		ID:        uuid.New(),
		Name:      name,
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
