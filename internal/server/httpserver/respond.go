package httpserver

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/dmitrijs2005/passkeeper/internal/common"
)

type errorResponse struct {
	Error  string   `json:"error"`
	Fields []string `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeError maps a service error to its status code. Internal failures are
// logged with detail and answered with an opaque message.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *common.ValidationError

	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: verr.Message, Fields: verr.Fields})
	case errors.Is(err, common.ErrorValidation):
		s.writeMessage(w, http.StatusBadRequest, "invalid request")
	case errors.Is(err, common.ErrorUnauthorized):
		s.writeMessage(w, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, common.ErrorNotFound):
		s.writeMessage(w, http.StatusNotFound, "not found")
	case errors.Is(err, common.ErrorAlreadyExists):
		s.writeMessage(w, http.StatusConflict, "already exists")
	default:
		s.logger.Error(r.Context(), "request failed", "path", r.URL.Path, "error", err)
		s.writeMessage(w, http.StatusInternalServerError, "internal error")
	}
}

// decodeJSON reads a single JSON object from the request body.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return common.NewValidationError("request body is empty")
		}
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return common.NewValidationError("request body is too large")
		}
		return common.NewValidationError("malformed request body")
	}
	if dec.More() {
		return common.NewValidationError("malformed request body")
	}
	return nil
}
