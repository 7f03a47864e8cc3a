package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/synapse-notes/backend/models"
	"github.com/synapse-notes/backend/repositories"
	"go.uber.org/zap"
)

const noteColumns = `n.id, n.title, n.content, n.folder_id, n.created_at, n.updated_at`

// NoteRepository implements the repositories.NoteRepository interface.
// Every read and write joins the note's folder to enforce ownership.
type NoteRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewNoteRepository creates a new note repository
func NewNoteRepository(db *DB, logger *zap.Logger) repositories.NoteRepository {
	return &NoteRepository{
		db:     db,
		logger: logger,
	}
}

// Create creates a new note
func (r *NoteRepository) Create(ctx context.Context, note *models.Note) error {
	query := `
		INSERT INTO notes (id, title, content, folder_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := GetExecutor(ctx, r.db).ExecContext(ctx, query,
		note.ID,
		note.Title,
		note.Content,
		note.FolderID,
		note.CreatedAt,
		note.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create note: %w", translateError(err))
	}

	r.logger.Debug("note created",
		zap.String("id", note.ID.String()),
		zap.String("folder_id", note.FolderID.String()))
	return nil
}

// GetByID retrieves a note whose folder is owned by userID
func (r *NoteRepository) GetByID(ctx context.Context, id, userID uuid.UUID) (*models.Note, error) {
	query := `
		SELECT ` + noteColumns + `
		FROM notes n
		JOIN folders f ON f.id = n.folder_id
		WHERE n.id = $1 AND f.user_id = $2
	`

	note, err := scanNote(GetExecutor(ctx, r.db).QueryRowContext(ctx, query, id, userID))
	if err != nil {
		return nil, fmt.Errorf("failed to get note %s: %w", id, translateError(err))
	}
	return note, nil
}

// ListByFolder retrieves a folder's notes, most recently updated first
func (r *NoteRepository) ListByFolder(ctx context.Context, folderID, userID uuid.UUID) ([]*models.Note, error) {
	query := `
		SELECT ` + noteColumns + `
		FROM notes n
		JOIN folders f ON f.id = n.folder_id
		WHERE n.folder_id = $1 AND f.user_id = $2
		ORDER BY n.updated_at DESC
	`

	rows, err := GetExecutor(ctx, r.db).QueryContext(ctx, query, folderID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	defer rows.Close()

	notes := make([]*models.Note, 0)
	for rows.Next() {
		note, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan note: %w", err)
		}
		notes = append(notes, note)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating notes: %w", err)
	}

	return notes, nil
}

// Update saves title and content of a note owned by userID and returns it
func (r *NoteRepository) Update(ctx context.Context, id, userID uuid.UUID, title, content string) (*models.Note, error) {
	query := `
		UPDATE notes n SET title = $1, content = $2, updated_at = $3
		FROM folders f
		WHERE n.id = $4 AND f.id = n.folder_id AND f.user_id = $5
		RETURNING ` + noteColumns

	note, err := scanNote(GetExecutor(ctx, r.db).QueryRowContext(ctx, query, title, content, time.Now().UTC(), id, userID))
	if err != nil {
		return nil, fmt.Errorf("failed to update note %s: %w", id, translateError(err))
	}
	return note, nil
}

// Delete deletes a note owned by userID
func (r *NoteRepository) Delete(ctx context.Context, id, userID uuid.UUID) error {
	query := `
		DELETE FROM notes n
		USING folders f
		WHERE n.id = $1 AND f.id = n.folder_id AND f.user_id = $2
	`

	result, err := GetExecutor(ctx, r.db).ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}

	if err := requireAffected(result); err != nil {
		return fmt.Errorf("failed to delete note %s: %w", id, err)
	}

	r.logger.Debug("note deleted", zap.String("id", id.String()))
	return nil
}

func scanNote(row rowScanner) (*models.Note, error) {
	note := &models.Note{}
	err := row.Scan(
		&note.ID,
		&note.Title,
		&note.Content,
		&note.FolderID,
		&note.CreatedAt,
		&note.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return note, nil
}

// requireAffected returns ErrNotFound when the statement touched no rows
func requireAffected(result sql.Result) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return repositories.ErrNotFound
	}
	return nil
}
