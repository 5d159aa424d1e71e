package httpx

import (
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/pkg/errors"

	"ordermenu/internal/apperr"
	"ordermenu/internal/logger"
)

const maxBodyBytes = 1 << 20

// ErrorResponse is the JSON body of every failed request
type ErrorResponse struct {
	Error     string              `json:"error"`
	Code      string              `json:"code"`
	Fields    []apperr.FieldError `json:"fields,omitempty"`
	RequestID string              `json:"request_id"`
	Timestamp string              `json:"timestamp"`
}

// WriteJSON writes v with the given status
func WriteJSON(w http.ResponseWriter, r *http.Request, log *logger.Logger, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("response_encoding_failed", "Failed to encode response", RequestID(r.Context()), err, nil)
	}
}

// WriteError maps err to its status and writes the error body. Server
// errors are logged with their full cause and hidden from the client.
func WriteError(w http.ResponseWriter, r *http.Request, log *logger.Logger, err error) {
	requestID := RequestID(r.Context())
	status, code := apperr.Status(err)

	if status == http.StatusInternalServerError {
		log.Error("request_failed", "Request failed", requestID, err, map[string]interface{}{
			"method": r.Method,
			"path":   r.URL.Path,
		})
	} else {
		log.Debug("request_rejected", err.Error(), requestID, map[string]interface{}{
			"status_code": status,
			"code":        code,
		})
	}

	WriteJSON(w, r, log, status, ErrorResponse{
		Error:     apperr.PublicMessage(err),
		Code:      code,
		Fields:    apperr.Fields(err),
		RequestID: requestID,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// DecodeJSON reads a JSON body into v. Wrong content type, malformed JSON and
// unknown fields are reported as validation errors.
func DecodeJSON(r *http.Request, v interface{}) error {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "application/json" {
		return apperr.Invalid("body", "Content-Type must be application/json")
	}

	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.Invalid("body", "request body is empty")
		}
		return apperr.Invalid("body", "invalid JSON: "+err.Error())
	}
	return nil
}

// QueryInt reads a non-negative integer query parameter, def when absent
func QueryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, apperr.Invalid(name, "must be a non-negative integer")
	}
	return n, nil
}

// QueryString returns a pointer to a query parameter, nil when absent
func QueryString(r *http.Request, name string) *string {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil
	}
	return &raw
}
