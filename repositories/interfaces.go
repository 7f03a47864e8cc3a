package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/synapse-notes/backend/models"
)

var (
	// ErrNotFound is returned when a row does not exist or is not visible to the caller
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate is returned when a unique constraint is violated
	ErrDuplicate = errors.New("duplicate record")
)

// TransactionManager opens database transactions
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// Transaction represents a database transaction
type Transaction interface {
	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error

	// Context returns a context carrying the transaction. Repositories
	// called with it run their queries inside the transaction.
	Context() context.Context
}

// UserRepository handles user data operations
type UserRepository interface {
	// Create creates a new user. Returns ErrDuplicate when the username or email is taken.
	Create(ctx context.Context, user *models.User) error

	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)

	// GetByUsername retrieves a user by username
	GetByUsername(ctx context.Context, username string) (*models.User, error)

	// ExistsByUsernameOrEmail reports whether either value is already registered
	ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error)
}

// FolderRepository handles folder data operations
type FolderRepository interface {
	// Create creates a new folder
	Create(ctx context.Context, folder *models.Folder) error

	// GetByID retrieves a folder owned by userID
	GetByID(ctx context.Context, id, userID uuid.UUID) (*models.Folder, error)

	// ListByUser retrieves a user's folders, newest first
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Folder, error)

	// Rename renames a folder owned by userID and returns it
	Rename(ctx context.Context, id, userID uuid.UUID, name string) (*models.Folder, error)

	// Delete deletes a folder owned by userID and, by cascade, its notes
	Delete(ctx context.Context, id, userID uuid.UUID) error
}

// NoteRepository handles note data operations. Ownership is the owner of the note's folder.
type NoteRepository interface {
	// Create creates a new note
	Create(ctx context.Context, note *models.Note) error

	// GetByID retrieves a note whose folder is owned by userID
	GetByID(ctx context.Context, id, userID uuid.UUID) (*models.Note, error)

	// ListByFolder retrieves a folder's notes, most recently updated first
	ListByFolder(ctx context.Context, folderID, userID uuid.UUID) ([]*models.Note, error)

	// Update saves title and content of a note owned by userID and returns it
	Update(ctx context.Context, id, userID uuid.UUID, title, content string) (*models.Note, error)

	// Delete deletes a note owned by userID
	Delete(ctx context.Context, id, userID uuid.UUID) error
}

// Repositories holds all repository instances
type Repositories struct {
	Users   UserRepository
	Folders FolderRepository
	Notes   NoteRepository
}
