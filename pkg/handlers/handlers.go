// Package handlers provides JSON response helpers shared by HTTP handlers.
package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
)

// ErrInvalidBody indicates the request body could not be decoded.
var ErrInvalidBody = errors.New("invalid request body")

// RespondJSON writes data as a JSON response with the given status code.
func RespondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// RespondError writes an {"error": "..."} JSON response.
// Server errors (5xx) are logged before the response is written.
func RespondError(w http.ResponseWriter, logger *slog.Logger, status int, err error) {
	if status >= http.StatusInternalServerError {
		logger.Error("handler error", "status", status, "error", err)
	}
	RespondJSON(w, status, map[string]string{"error": err.Error()})
}

// DecodeJSON decodes the request body into T, reading at most maxBytes.
// An empty body decodes to the zero value when allowEmpty is set.
func DecodeJSON[T any](w http.ResponseWriter, r *http.Request, maxBytes int64, allowEmpty bool) (T, error) {
	var v T
	if maxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	}

	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		if allowEmpty && errors.Is(err, io.EOF) {
			return v, nil
		}
		return v, errors.Join(ErrInvalidBody, err)
	}
	return v, nil
}
