package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"

	"github.com/synapse-notes/backend/middleware"
	"github.com/synapse-notes/backend/services"
	"github.com/synapse-notes/backend/services/extract"
	"github.com/synapse-notes/backend/services/gateway"
	"github.com/synapse-notes/backend/utils"
	"go.uber.org/zap"
)

// DegradedHeader is set on 200 responses whose content is a fallback message
const DegradedHeader = "X-Inference-Degraded"

const msgUnreadableDocument = "Could not read the uploaded document."

// GatewayService defines the AI capabilities the handler exposes
type GatewayService interface {
	Summarize(ctx context.Context, text string) (*gateway.Result, error)
	Transcribe(ctx context.Context, text string) (*gateway.Result, error)
	ImageToNotes(ctx context.Context, data []byte, mimeType string) (*gateway.Result, error)
	Chat(ctx context.Context, message, notesContext string) (*gateway.Result, error)
}

// TextRequest is the JSON body of summarize and transcribe
type TextRequest struct {
	Text string `json:"text"`
}

// ChatRequest is the JSON body of chat
type ChatRequest struct {
	Message string `json:"message"`
	Context string `json:"context,omitempty"`
}

// SummaryResponse is returned by summarize and transcribe.
// Original is only set when a short transcript was returned unchanged.
type SummaryResponse struct {
	Summary  string `json:"summary"`
	Original string `json:"original,omitempty"`
}

// ImageNotesResponse is returned by image-to-notes
type ImageNotesResponse struct {
	FormattedNotes string `json:"formatted_notes"`
	RawText        string `json:"raw_text"`
}

// ChatResponse is returned by chat
type ChatResponse struct {
	Reply string `json:"reply"`
}

// AIHandler handles the /api/ai endpoints
type AIHandler struct {
	service        GatewayService
	maxUploadBytes int64
	logger         *zap.Logger
}

// NewAIHandler creates a new AIHandler
func NewAIHandler(service GatewayService, maxUploadBytes int64, logger *zap.Logger) *AIHandler {
	return &AIHandler{
		service:        service,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

// HandleSummarize handles POST /api/ai/summarize.
// Accepts JSON {text} or a multipart form with a file and an optional text field.
func (h *AIHandler) HandleSummarize(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	text, err := h.readDocument(r)
	if err != nil {
		h.writeInputError(w, r, err)
		return
	}

	result, err := h.service.Summarize(r.Context(), text)
	if err != nil {
		h.fail(w, r, gateway.CapabilitySummarize, err)
		return
	}

	h.respond(w, r, gateway.CapabilitySummarize, result, SummaryResponse{Summary: result.Content})
}

// HandleTranscribe handles POST /api/ai/transcribe
func (h *AIHandler) HandleTranscribe(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	var req TextRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		HandleValidationError(w, err, h.logger)
		return
	}

	result, err := h.service.Transcribe(r.Context(), req.Text)
	if err != nil {
		h.fail(w, r, gateway.CapabilityTranscribe, err)
		return
	}

	h.respond(w, r, gateway.CapabilityTranscribe, result, SummaryResponse{
		Summary:  result.Content,
		Original: result.Original,
	})
}

// HandleImageToNotes handles POST /api/ai/image-to-notes (multipart field "file")
func (h *AIHandler) HandleImageToNotes(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	var data []byte
	var mimeType string
	if isMultipart(r) {
		upload, err := h.readUpload(r)
		if err != nil {
			HandleValidationError(w, err, h.logger)
			return
		}
		if upload != nil {
			data, mimeType = upload.data, upload.contentType
		}
	}

	result, err := h.service.ImageToNotes(r.Context(), data, mimeType)
	if err != nil {
		h.fail(w, r, gateway.CapabilityImageToNotes, err)
		return
	}

	h.respond(w, r, gateway.CapabilityImageToNotes, result, ImageNotesResponse{
		FormattedNotes: result.Content,
		RawText:        fmt.Sprintf("Processed by %s", result.ProviderUsed),
	})
}

// HandleChat handles POST /api/ai/chat
func (h *AIHandler) HandleChat(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		HandleValidationError(w, err, h.logger)
		return
	}

	result, err := h.service.Chat(r.Context(), req.Message, req.Context)
	if err != nil {
		h.fail(w, r, gateway.CapabilityChat, err)
		return
	}

	h.respond(w, r, gateway.CapabilityChat, result, ChatResponse{Reply: result.Content})
}

type upload struct {
	filename    string
	contentType string
	data        []byte
}

// readDocument returns the text to summarize. An uploaded file wins over the text field.
func (h *AIHandler) readDocument(r *http.Request) (string, error) {
	if !isMultipart(r) {
		var req TextRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			return "", err
		}
		return req.Text, nil
	}

	file, err := h.readUpload(r)
	if err != nil {
		return "", err
	}
	if file == nil {
		return r.FormValue("text"), nil
	}

	text, err := extract.Text(file.filename, file.contentType, file.data)
	if err != nil {
		return "", services.NewDomainError(services.ErrorTypeValidation, msgUnreadableDocument, err)
	}
	return text, nil
}

// readUpload parses the multipart form and reads the "file" part. A missing file is (nil, nil).
func (h *AIHandler) readUpload(r *http.Request) (*upload, error) {
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		return nil, err
	}

	file, header, err := r.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}

	return &upload{
		filename:    header.Filename,
		contentType: header.Header.Get("Content-Type"),
		data:        data,
	}, nil
}

func (h *AIHandler) writeInputError(w http.ResponseWriter, r *http.Request, err error) {
	var domainErr *services.DomainError
	if errors.As(err, &domainErr) {
		HandleServiceError(w, r, err, h.logger)
		return
	}
	HandleValidationError(w, err, h.logger)
}

func (h *AIHandler) fail(w http.ResponseWriter, r *http.Request, capability gateway.Capability, err error) {
	h.logger.Debug("ai request failed",
		zap.String("request_id", middleware.GetRequestIDFromContext(r.Context())),
		zap.String("capability", string(capability)),
		zap.Error(err))
	HandleServiceError(w, r, err, h.logger)
}

func (h *AIHandler) respond(w http.ResponseWriter, r *http.Request, capability gateway.Capability, result *gateway.Result, body interface{}) {
	if result.Degraded {
		w.Header().Set(DegradedHeader, "true")
	}

	fields := []zap.Field{
		zap.String("request_id", middleware.GetRequestIDFromContext(r.Context())),
		zap.String("capability", string(capability)),
		zap.String("provider", result.ProviderUsed),
		zap.Bool("degraded", result.Degraded),
	}
	if p := middleware.GetPrincipalFromContext(r.Context()); p != nil {
		fields = append(fields, zap.String("user_id", p.ID.String()))
	}
	h.logger.Debug("ai request served", fields...)

	if err := utils.WriteOK(w, body); err != nil {
		h.logger.Error("failed to write response", zap.Error(err))
	}
}

func isMultipart(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "multipart/form-data"
}
