package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/synapse-notes/backend/models"
	"github.com/synapse-notes/backend/repositories"
	"go.uber.org/zap"
)

const folderColumns = `id, name, user_id, created_at, updated_at`

// FolderRepository implements the repositories.FolderRepository interface
type FolderRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewFolderRepository creates a new folder repository
func NewFolderRepository(db *DB, logger *zap.Logger) repositories.FolderRepository {
	return &FolderRepository{
		db:     db,
		logger: logger,
	}
}

// Create creates a new folder
func (r *FolderRepository) Create(ctx context.Context, folder *models.Folder) error {
	query := `
		INSERT INTO folders (id, name, user_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := GetExecutor(ctx, r.db).ExecContext(ctx, query,
		folder.ID,
		folder.Name,
		folder.UserID,
		folder.CreatedAt,
		folder.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create folder: %w", translateError(err))
	}

	r.logger.Debug("folder created",
		zap.String("id", folder.ID.String()),
		zap.String("user_id", folder.UserID.String()))
	return nil
}

// GetByID retrieves a folder owned by userID
func (r *FolderRepository) GetByID(ctx context.Context, id, userID uuid.UUID) (*models.Folder, error) {
	query := `SELECT ` + folderColumns + ` FROM folders WHERE id = $1 AND user_id = $2`

	folder, err := scanFolder(GetExecutor(ctx, r.db).QueryRowContext(ctx, query, id, userID))
	if err != nil {
		return nil, fmt.Errorf("failed to get folder %s: %w", id, translateError(err))
	}
	return folder, nil
}

// ListByUser retrieves a user's folders, newest first
func (r *FolderRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Folder, error) {
	query := `SELECT ` + folderColumns + ` FROM folders WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := GetExecutor(ctx, r.db).QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list folders: %w", err)
	}
	defer rows.Close()

	folders := make([]*models.Folder, 0)
	for rows.Next() {
		folder, err := scanFolder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan folder: %w", err)
		}
		folders = append(folders, folder)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating folders: %w", err)
	}

	return folders, nil
}

// Rename renames a folder owned by userID and returns it
func (r *FolderRepository) Rename(ctx context.Context, id, userID uuid.UUID, name string) (*models.Folder, error) {
	query := `
		UPDATE folders SET name = $1, updated_at = $2
		WHERE id = $3 AND user_id = $4
		RETURNING ` + folderColumns

	folder, err := scanFolder(GetExecutor(ctx, r.db).QueryRowContext(ctx, query, name, time.Now().UTC(), id, userID))
	if err != nil {
		return nil, fmt.Errorf("failed to rename folder %s: %w", id, translateError(err))
	}
	return folder, nil
}

// Delete deletes a folder owned by userID. Its notes go with it.
func (r *FolderRepository) Delete(ctx context.Context, id, userID uuid.UUID) error {
	query := `DELETE FROM folders WHERE id = $1 AND user_id = $2`

	result, err := GetExecutor(ctx, r.db).ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete folder: %w", err)
	}

	if err := requireAffected(result); err != nil {
		return fmt.Errorf("failed to delete folder %s: %w", id, err)
	}

	r.logger.Debug("folder deleted", zap.String("id", id.String()))
	return nil
}

func scanFolder(row rowScanner) (*models.Folder, error) {
	folder := &models.Folder{}
	err := row.Scan(
		&folder.ID,
		&folder.Name,
		&folder.UserID,
		&folder.CreatedAt,
		&folder.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return folder, nil
}
