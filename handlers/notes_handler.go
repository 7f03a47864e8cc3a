package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/synapse-notes/backend/middleware"
	"github.com/synapse-notes/backend/models"
	"github.com/synapse-notes/backend/services"
	"github.com/synapse-notes/backend/services/notes"
	"github.com/synapse-notes/backend/utils"
	"go.uber.org/zap"
)

const (
	msgFolderDeleted = "Folder deleted successfully"
	msgNoteDeleted   = "Note deleted successfully"
)

// NotesService defines the folder and note operations the handler needs
type NotesService interface {
	ListFolders(ctx context.Context, ownerID uuid.UUID) ([]*models.Folder, error)
	CreateFolder(ctx context.Context, ownerID uuid.UUID, name string) (*models.Folder, error)
	RenameFolder(ctx context.Context, ownerID, folderID uuid.UUID, name string) (*models.Folder, error)
	DeleteFolder(ctx context.Context, ownerID, folderID uuid.UUID) error
	ListNotes(ctx context.Context, ownerID, folderID uuid.UUID) ([]*models.Note, error)
	CreateNote(ctx context.Context, ownerID uuid.UUID, in notes.CreateNoteInput) (*models.Note, error)
	GetNote(ctx context.Context, ownerID, noteID uuid.UUID) (*models.Note, error)
	UpdateNote(ctx context.Context, ownerID, noteID uuid.UUID, title, content string) (*models.Note, error)
	DeleteNote(ctx context.Context, ownerID, noteID uuid.UUID) error
}

// FolderRequest is the body of folder create and rename
type FolderRequest struct {
	Name string `json:"name" validate:"required,max=255"`
}

// CreateNoteRequest is the body of POST /api/notes/notes
type CreateNoteRequest struct {
	Title    string `json:"title" validate:"max=255"`
	Content  string `json:"content"`
	FolderID string `json:"folderId" validate:"omitempty,uuid"`
}

// UpdateNoteRequest is the body of PUT /api/notes/notes/{id}
type UpdateNoteRequest struct {
	Title   string `json:"title" validate:"max=255"`
	Content string `json:"content"`
}

// NotesHandler handles the /api/notes endpoints
type NotesHandler struct {
	service NotesService
	logger  *zap.Logger
}

// NewNotesHandler creates a new NotesHandler
func NewNotesHandler(service NotesService, logger *zap.Logger) *NotesHandler {
	return &NotesHandler{
		service: service,
		logger:  logger,
	}
}

// HandleListFolders handles GET /folders
func (h *NotesHandler) HandleListFolders(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}

	folders, err := h.service.ListFolders(r.Context(), owner)
	if err != nil {
		HandleServiceError(w, r, err, h.logger)
		return
	}
	h.write(w, http.StatusOK, folders)
}

// HandleCreateFolder handles POST /folders
func (h *NotesHandler) HandleCreateFolder(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}

	var req FolderRequest
	if !h.decode(w, r, &req) {
		return
	}

	folder, err := h.service.CreateFolder(r.Context(), owner, req.Name)
	if err != nil {
		HandleServiceError(w, r, err, h.logger)
		return
	}
	h.write(w, http.StatusCreated, folder)
}

// HandleRenameFolder handles PUT /folders/{id}
func (h *NotesHandler) HandleRenameFolder(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}
	folderID, ok := h.pathID(w, r, "id", services.ErrFolderNotFound)
	if !ok {
		return
	}

	var req FolderRequest
	if !h.decode(w, r, &req) {
		return
	}

	folder, err := h.service.RenameFolder(r.Context(), owner, folderID, req.Name)
	if err != nil {
		HandleServiceError(w, r, err, h.logger)
		return
	}
	h.write(w, http.StatusOK, folder)
}

// HandleDeleteFolder handles DELETE /folders/{id}
func (h *NotesHandler) HandleDeleteFolder(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}
	folderID, ok := h.pathID(w, r, "id", services.ErrFolderNotFound)
	if !ok {
		return
	}

	if err := h.service.DeleteFolder(r.Context(), owner, folderID); err != nil {
		HandleServiceError(w, r, err, h.logger)
		return
	}
	h.message(w, msgFolderDeleted)
}

// HandleListNotes handles GET /folders/{folderId}/notes
func (h *NotesHandler) HandleListNotes(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}
	folderID, ok := h.pathID(w, r, "folderId", services.ErrFolderNotFound)
	if !ok {
		return
	}

	list, err := h.service.ListNotes(r.Context(), owner, folderID)
	if err != nil {
		HandleServiceError(w, r, err, h.logger)
		return
	}
	h.write(w, http.StatusOK, list)
}

// HandleCreateNote handles POST /notes
func (h *NotesHandler) HandleCreateNote(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}

	var req CreateNoteRequest
	if !h.decode(w, r, &req) {
		return
	}

	// An empty folder id is left to the service, which reports it as missing.
	// A present one has already passed the uuid tag.
	var folderID uuid.UUID
	if req.FolderID != "" {
		folderID = uuid.MustParse(req.FolderID)
	}

	note, err := h.service.CreateNote(r.Context(), owner, notes.CreateNoteInput{
		FolderID: folderID,
		Title:    req.Title,
		Content:  req.Content,
	})
	if err != nil {
		HandleServiceError(w, r, err, h.logger)
		return
	}
	h.write(w, http.StatusCreated, note)
}

// HandleGetNote handles GET /notes/{id}
func (h *NotesHandler) HandleGetNote(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}
	noteID, ok := h.pathID(w, r, "id", services.ErrNoteNotFound)
	if !ok {
		return
	}

	note, err := h.service.GetNote(r.Context(), owner, noteID)
	if err != nil {
		HandleServiceError(w, r, err, h.logger)
		return
	}
	h.write(w, http.StatusOK, note)
}

// HandleUpdateNote handles PUT /notes/{id}
func (h *NotesHandler) HandleUpdateNote(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}
	noteID, ok := h.pathID(w, r, "id", services.ErrNoteNotFound)
	if !ok {
		return
	}

	var req UpdateNoteRequest
	if !h.decode(w, r, &req) {
		return
	}

	note, err := h.service.UpdateNote(r.Context(), owner, noteID, req.Title, req.Content)
	if err != nil {
		HandleServiceError(w, r, err, h.logger)
		return
	}
	h.write(w, http.StatusOK, note)
}

// HandleDeleteNote handles DELETE /notes/{id}
func (h *NotesHandler) HandleDeleteNote(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}
	noteID, ok := h.pathID(w, r, "id", services.ErrNoteNotFound)
	if !ok {
		return
	}

	if err := h.service.DeleteNote(r.Context(), owner, noteID); err != nil {
		HandleServiceError(w, r, err, h.logger)
		return
	}
	h.message(w, msgNoteDeleted)
}

func (h *NotesHandler) owner(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	principal := middleware.GetPrincipalFromContext(r.Context())
	if principal == nil {
		HandleServiceError(w, r, services.ErrUnauthorized, h.logger)
		return uuid.Nil, false
	}
	return principal.ID, true
}

// pathID parses a UUID path parameter. A malformed id cannot name a visible
// row, so it is reported with the same not-found error.
func (h *NotesHandler) pathID(w http.ResponseWriter, r *http.Request, param string, notFound error) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		HandleServiceError(w, r, notFound, h.logger)
		return uuid.Nil, false
	}
	return id, true
}

func (h *NotesHandler) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	return decodeAndValidate(w, r, dst, h.logger)
}

func (h *NotesHandler) message(w http.ResponseWriter, message string) {
	if err := utils.WriteMessage(w, message); err != nil {
		h.logger.Error("failed to write response", zap.Error(err))
	}
}

func (h *NotesHandler) write(w http.ResponseWriter, status int, body interface{}) {
	if err := utils.WriteJSON(w, status, body); err != nil {
		h.logger.Error("failed to write response", zap.Error(err))
	}
}
