package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultNoteTitle is used when a note is created without a title
const DefaultNoteTitle = "Untitled Note"

// Note is a markdown document inside a folder
type Note struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Title     string    `json:"title" db:"title"`
	Content   string    `json:"content" db:"content"`
	FolderID  uuid.UUID `json:"folderId" db:"folder_id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// NewNote creates a new Note instance. A blank title becomes DefaultNoteTitle.
func NewNote(folderID uuid.UUID, title, content string) *Note {
	if strings.TrimSpace(title) == "" {
		title = DefaultNoteTitle
	}
	now := time.Now().UTC()
	return &Note{
		ID:        uuid.New(),
		Title:     title,
		Content:   content,
		FolderID:  folderID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
