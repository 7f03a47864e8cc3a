package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/synapse-notes/backend/services"
	"github.com/synapse-notes/backend/utils"
	"go.uber.org/zap"
)

// HandleServiceError maps domain errors to HTTP responses. Only the
// client-safe DomainError message is written; wrapped causes go to the log.
func HandleServiceError(w http.ResponseWriter, r *http.Request, err error, logger *zap.Logger) {
	if err == nil {
		return
	}

	// The client is gone; nothing useful can be written.
	if errors.Is(err, context.Canceled) && r.Context().Err() != nil {
		logger.Info("request canceled by client", zap.Error(err))
		return
	}

	// The request deadline passed; the timeout middleware writes the 504.
	if errors.Is(err, context.DeadlineExceeded) && errors.Is(r.Context().Err(), context.DeadlineExceeded) {
		logger.Warn("request deadline exceeded",
			zap.String("path", r.URL.Path),
			zap.Error(err))
		return
	}

	message := services.GetErrorMessage(err)
	details := services.GetErrorDetails(err)

	var writeErr error
	switch {
	case services.IsValidationError(err):
		writeErr = utils.WriteBadRequest(w, message, details)

	case services.IsUnauthorizedError(err):
		writeErr = utils.WriteUnauthorized(w, message)

	case services.IsNotFoundError(err):
		writeErr = utils.WriteNotFound(w, message)

	case services.IsConflictError(err):
		writeErr = utils.WriteConflict(w, message, nil)

	case services.IsRateLimitError(err):
		writeErr = utils.WriteTooManyRequests(w, message, details)

	case services.IsExternalError(err):
		// Provider detail stays in the log
		logger.Error("upstream failure", zap.Error(err))
		writeErr = utils.WriteInternalServerError(w, message)

	case services.IsInternalError(err):
		logger.Error("internal server error", zap.Error(err))
		writeErr = utils.WriteInternalServerError(w, "An internal error occurred")

	default:
		logger.Error("unhandled error type",
			zap.Error(err),
			zap.String("error_type", string(services.GetErrorType(err))))
		writeErr = utils.WriteInternalServerError(w, "An unexpected error occurred")
	}

	if writeErr != nil {
		logger.Error("failed to write error response", zap.Error(writeErr))
	}
}

// HandleValidationError handles errors from request decoding and struct validation
func HandleValidationError(w http.ResponseWriter, err error, logger *zap.Logger) {
	if utils.IsValidationError(err) {
		fields := utils.GetValidationFields(err)
		details := make(map[string]interface{}, len(fields))
		for k, v := range fields {
			details[k] = v
		}
		if err := utils.WriteBadRequest(w, firstFieldMessage(fields), details); err != nil {
			logger.Error("failed to write validation error response", zap.Error(err))
		}
		return
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		if err := utils.WriteError(w, http.StatusRequestEntityTooLarge, "File too large", nil); err != nil {
			logger.Error("failed to write payload too large response", zap.Error(err))
		}
		return
	}

	if err := utils.WriteBadRequest(w, "Invalid request body", nil); err != nil {
		logger.Error("failed to write validation error response", zap.Error(err))
	}
}

// firstFieldMessage picks a stable single message for the error field
func firstFieldMessage(fields map[string]string) string {
	first := ""
	for field := range fields {
		if first == "" || field < first {
			first = field
		}
	}
	if first == "" {
		return "Validation failed"
	}
	return fields[first]
}
