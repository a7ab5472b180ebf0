package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"bagvo/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const maxBodyBytes = 1 << 20

// Response is the success envelope.
type Response struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log the error but don't expose it to the client
		return
	}
}

func writeSuccess(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, Response{Success: true, Data: data})
}

// writeError writes the error envelope.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, model.ErrorResponse{Success: false, Message: message, Error: code})
}

// statusFor maps a domain error kind onto an HTTP status.
func statusFor(kind model.ErrorKind) int {
	switch kind {
	case model.KindNotFound:
		return http.StatusNotFound
	case model.KindConcurrentModification:
		return http.StatusConflict
	case model.KindValidation, model.KindInsufficientStock, model.KindInvalidState, model.KindRefundExceedsBalance:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// writeServiceError renders err. Domain errors keep their message; anything else is
// logged and reported as a generic internal error.
func writeServiceError(w http.ResponseWriter, err error, logger zerolog.Logger) {
	var de *model.DomainError
	if errors.As(err, &de) {
		status := statusFor(de.Kind)
		if de.Retryable() {
			w.Header().Set("Retry-After", "1")
		}
		logger.Debug().Err(err).Str("code", de.Code).Int("status", status).Msg("request rejected")
		writeError(w, status, de.Code, de.Message)
		return
	}

	logger.Error().Err(err).Msg("handler error")
	writeError(w, http.StatusInternalServerError, model.ErrCodeInternalError, "Internal server error")
}

// decodeBody decodes a JSON request body into dst.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return model.NewValidationError(model.ErrCodeInvalidJSON, "Request body is required")
		}
		return model.NewValidationError(model.ErrCodeInvalidJSON, "Invalid request body")
	}
	return nil
}

func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		return uuid.Nil, model.NewValidationError(model.ErrCodeMissingField, fmt.Sprintf("Invalid %s", name))
	}
	return id, nil
}

// pagination parses the limit and offset query parameters. Range clamping is done by the services.
func pagination(r *http.Request) (limit, offset int, err error) {
	q := r.URL.Query()
	if s := q.Get("limit"); s != "" {
		if limit, err = strconv.Atoi(s); err != nil {
			return 0, 0, model.NewValidationError(model.ErrCodeMissingField, "Invalid limit parameter")
		}
	}
	if s := q.Get("offset"); s != "" {
		if offset, err = strconv.Atoi(s); err != nil {
			return 0, 0, model.NewValidationError(model.ErrCodeMissingField, "Invalid offset parameter")
		}
	}
	return limit, offset, nil
}
