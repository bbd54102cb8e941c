package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/AdguardTeam/golibs/httphdr"
)

// HdrValApplicationJSON is the Content-Type of every API response.
const HdrValApplicationJSON = "application/json; charset=utf-8"

// ErrorDetail is the "error" object of the error envelope.
type ErrorDetail struct {
	Name    string `json:"name"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
	Issues  any    `json:"issues,omitempty"`
}

// ErrorResponse is the error envelope written for every failed request.
type ErrorResponse struct {
	Success bool        `json:"success"`
	Error   ErrorDetail `json:"error"`
}

// WriteJSON writes v with the status code.  Encoding errors are ignored since
// the header is already sent.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	h := w.Header()
	h.Set(httphdr.ContentType, HdrValApplicationJSON)
	h.Set(httphdr.CacheControl, "no-store")

	w.WriteHeader(code)

	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes the error envelope with the status code.
func WriteError(w http.ResponseWriter, code int, detail ErrorDetail) {
	WriteJSON(w, code, ErrorResponse{Error: detail})
}

func writeUnauthorized(w http.ResponseWriter) {
	WriteError(w, http.StatusUnauthorized, ErrorDetail{
		Name:    "Unauthorized",
		Message: "Authentication required",
	})
}

func writeForbidden(w http.ResponseWriter) {
	WriteError(w, http.StatusForbidden, ErrorDetail{
		Name:    "Forbidden",
		Message: "Admin access required",
	})
}

func writeInternal(w http.ResponseWriter) {
	WriteError(w, http.StatusInternalServerError, ErrorDetail{
		Name:    "InternalServerError",
		Message: "Internal server error",
	})
}
