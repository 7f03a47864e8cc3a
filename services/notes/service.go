// Package notes manages a user's folders and the notes inside them.
// A folder or note that belongs to someone else is reported as not found.
package notes

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/synapse-notes/backend/models"
	"github.com/synapse-notes/backend/repositories"
	"github.com/synapse-notes/backend/services"
	"go.uber.org/zap"
)

const (
	msgFolderNameRequired = "Folder name required"
	msgNewNameRequired    = "New name is required"
	msgFolderIDRequired   = "Folder ID is required"
)

// CreateNoteInput is the data for a new note. Title and Content are optional.
type CreateNoteInput struct {
	FolderID uuid.UUID
	Title    string
	Content  string
}

// Service implements folder and note operations scoped to an owner
type Service struct {
	folders repositories.FolderRepository
	notes   repositories.NoteRepository
	txMgr   repositories.TransactionManager
	logger  *zap.Logger
}

// NewService creates a new notes service
func NewService(folders repositories.FolderRepository, notes repositories.NoteRepository, txMgr repositories.TransactionManager, logger *zap.Logger) *Service {
	return &Service{
		folders: folders,
		notes:   notes,
		txMgr:   txMgr,
		logger:  logger,
	}
}

// ListFolders returns the owner's folders, newest first
func (s *Service) ListFolders(ctx context.Context, ownerID uuid.UUID) ([]*models.Folder, error) {
	folders, err := s.folders.ListByUser(ctx, ownerID)
	if err != nil {
		return nil, services.WrapInternal("Failed to fetch folders", err)
	}
	return folders, nil
}

// CreateFolder creates a folder for the owner
func (s *Service) CreateFolder(ctx context.Context, ownerID uuid.UUID, name string) (*models.Folder, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, services.NewValidation(msgFolderNameRequired)
	}

	folder := models.NewFolder(ownerID, name)
	if err := s.folders.Create(ctx, folder); err != nil {
		return nil, services.WrapInternal("Failed to create folder", err)
	}

	s.logger.Debug("folder created",
		zap.String("folder_id", folder.ID.String()),
		zap.String("user_id", ownerID.String()))
	return folder, nil
}

// RenameFolder renames one of the owner's folders
func (s *Service) RenameFolder(ctx context.Context, ownerID, folderID uuid.UUID, name string) (*models.Folder, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, services.NewValidation(msgNewNameRequired)
	}

	folder, err := s.folders.Rename(ctx, folderID, ownerID, name)
	if err != nil {
		return nil, folderError(err, "Failed to rename folder")
	}
	return folder, nil
}

// DeleteFolder deletes one of the owner's folders together with its notes
func (s *Service) DeleteFolder(ctx context.Context, ownerID, folderID uuid.UUID) error {
	if err := s.folders.Delete(ctx, folderID, ownerID); err != nil {
		return folderError(err, "Failed to delete folder")
	}

	s.logger.Info("folder deleted",
		zap.String("folder_id", folderID.String()),
		zap.String("user_id", ownerID.String()))
	return nil
}

// ListNotes returns the notes of one of the owner's folders, most recently updated first
func (s *Service) ListNotes(ctx context.Context, ownerID, folderID uuid.UUID) ([]*models.Note, error) {
	if _, err := s.folders.GetByID(ctx, folderID, ownerID); err != nil {
		return nil, folderError(err, "Failed to fetch notes")
	}

	notes, err := s.notes.ListByFolder(ctx, folderID, ownerID)
	if err != nil {
		return nil, services.WrapInternal("Failed to fetch notes", err)
	}
	return notes, nil
}

// CreateNote adds a note to one of the owner's folders. The ownership
// check and the insert run in one transaction.
func (s *Service) CreateNote(ctx context.Context, ownerID uuid.UUID, in CreateNoteInput) (*models.Note, error) {
	if in.FolderID == uuid.Nil {
		return nil, services.NewValidation(msgFolderIDRequired)
	}

	note, err := services.WithTransactionResult(ctx, s.txMgr, func(ctx context.Context, tx repositories.Transaction) (*models.Note, error) {
		if _, err := s.folders.GetByID(ctx, in.FolderID, ownerID); err != nil {
			return nil, folderError(err, "Failed to create note")
		}

		note := models.NewNote(in.FolderID, in.Title, in.Content)
		if err := s.notes.Create(ctx, note); err != nil {
			return nil, services.WrapInternal("Failed to create note", err)
		}
		return note, nil
	})
	if err != nil {
		return nil, ensureDomain(err, "Failed to create note")
	}

	s.logger.Debug("note created",
		zap.String("note_id", note.ID.String()),
		zap.String("folder_id", in.FolderID.String()))
	return note, nil
}

// GetNote returns one of the owner's notes
func (s *Service) GetNote(ctx context.Context, ownerID, noteID uuid.UUID) (*models.Note, error) {
	note, err := s.notes.GetByID(ctx, noteID, ownerID)
	if err != nil {
		return nil, noteError(err, "Failed to fetch note")
	}
	return note, nil
}

// UpdateNote saves the title and content of one of the owner's notes
func (s *Service) UpdateNote(ctx context.Context, ownerID, noteID uuid.UUID, title, content string) (*models.Note, error) {
	if strings.TrimSpace(title) == "" {
		title = models.DefaultNoteTitle
	}

	note, err := s.notes.Update(ctx, noteID, ownerID, title, content)
	if err != nil {
		return nil, noteError(err, "Failed to update note")
	}
	return note, nil
}

// DeleteNote deletes one of the owner's notes
func (s *Service) DeleteNote(ctx context.Context, ownerID, noteID uuid.UUID) error {
	if err := s.notes.Delete(ctx, noteID, ownerID); err != nil {
		return noteError(err, "Failed to delete note")
	}
	return nil
}

func folderError(err error, message string) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return services.ErrFolderNotFound
	}
	return services.WrapInternal(message, err)
}

func noteError(err error, message string) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return services.ErrNoteNotFound
	}
	return services.WrapInternal(message, err)
}

// ensureDomain wraps transaction plumbing failures, which are not DomainErrors
func ensureDomain(err error, message string) error {
	var domainErr *services.DomainError
	if errors.As(err, &domainErr) {
		return err
	}
	return services.WrapInternal(message, err)
}
