package server

import (
	"log/slog"
	"net/http"

	"github.com/AdguardTeam/golibs/errors"
	"github.com/AdguardTeam/golibs/logutil/slogutil"
	"github.com/MrEthical07/fittrack"
	"github.com/MrEthical07/fittrack/internal/stores"
	"github.com/MrEthical07/fittrack/middleware"
)

// Error names used in the error envelope.
const (
	errNameAuthFailed   = "AUTHENTICATION_FAILED"
	errNameBadRequest   = "BadRequestError"
	errNameConflict     = "CONSTRAINT_ERROR"
	errNameDuplicate    = "DUPLICATE_RESOURCE"
	errNameForbidden    = "ForbiddenError"
	errNameInternal     = "InternalServerError"
	errNameNotFound     = "NotFoundError"
	errNameRateLimited  = "TOO_MANY_REQUESTS"
	errNameUnauthorized = "Unauthorized"
	errNameValidation   = "ValidationError"
)

// errorStatus maps err onto a status code and envelope.  ok is false for
// errors that are not part of the API contract.
func errorStatus(err error) (code int, detail middleware.ErrorDetail, ok bool) {
	switch {
	case errors.Is(err, stores.ErrDuplicateUsername):
		return http.StatusConflict, middleware.ErrorDetail{
			Name:    errNameDuplicate,
			Message: "A user with this username already exists",
		}, true
	case errors.Is(err, stores.ErrDuplicateEmail):
		return http.StatusConflict, middleware.ErrorDetail{
			Name:    errNameDuplicate,
			Message: "A user with this email already exists",
		}, true
	case errors.Is(err, stores.ErrDuplicateName):
		return http.StatusConflict, middleware.ErrorDetail{
			Name:    errNameDuplicate,
			Message: "A resource with this name already exists",
		}, true
	case errors.Is(err, stores.ErrConflict):
		return http.StatusConflict, middleware.ErrorDetail{
			Name:    errNameConflict,
			Message: "This item conflicts with an existing entry",
		}, true
	case errors.Is(err, stores.ErrNotFound), errors.Is(err, fittrack.ErrUserNotFound):
		return http.StatusNotFound, middleware.ErrorDetail{
			Name:    errNameNotFound,
			Message: "User not found",
		}, true
	case errors.Is(err, fittrack.ErrForbidden):
		return http.StatusForbidden, middleware.ErrorDetail{
			Name:    errNameForbidden,
			Message: "Not authorized to access this resource",
		}, true
	case errors.Is(err, fittrack.ErrUnauthorized), errors.Is(err, fittrack.ErrSessionNotFound):
		return http.StatusUnauthorized, middleware.ErrorDetail{
			Name:    errNameUnauthorized,
			Message: "Authentication required",
		}, true
	default:
		return http.StatusInternalServerError, middleware.ErrorDetail{
			Name:    errNameInternal,
			Message: "Internal server error",
		}, false
	}
}

// writeError writes the envelope for err.  Errors outside the API contract
// are logged and answered with a generic 500.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	code, detail, ok := errorStatus(err)
	if !ok {
		s.logger.ErrorContext(r.Context(), msg, requestIDAttr(r), slogutil.KeyError, err)
	}

	middleware.WriteError(w, code, detail)
}

func writeInternal(w http.ResponseWriter) {
	_, detail, _ := errorStatus(nil)
	middleware.WriteError(w, http.StatusInternalServerError, detail)
}

func writeBadRequest(w http.ResponseWriter, msg string) {
	middleware.WriteError(w, http.StatusBadRequest, middleware.ErrorDetail{
		Name:    errNameBadRequest,
		Message: msg,
	})
}

func writeForbidden(w http.ResponseWriter, msg string) {
	middleware.WriteError(w, http.StatusForbidden, middleware.ErrorDetail{
		Name:    errNameForbidden,
		Message: msg,
	})
}

func requestIDAttr(r *http.Request) (a slog.Attr) {
	id, _ := RequestIDFromContext(r.Context())

	return slog.String("request_id", id)
}
