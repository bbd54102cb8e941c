package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/AdguardTeam/golibs/errors"
	"github.com/MrEthical07/fittrack/middleware"
	"github.com/go-playground/validator/v10"
)

// maxBodySize is the largest request body accepted.
const maxBodySize = 64 * 1024

// issue is one entry of a validation error response.
type issue struct {
	Code    string   `json:"code"`
	Path    []string `json:"path"`
	Message string   `json:"message"`
}

// newValidator returns a validator that names fields by their JSON keys.
func newValidator() (v *validator.Validate) {
	v = validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}

		return name
	})

	return v
}

// decode reads the JSON body of r into dst and validates it.  It writes the
// error response and returns false when the body is unusable.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) (ok bool) {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodySize))
	if err := dec.Decode(dst); err != nil {
		writeValidation(w, []issue{{
			Code:    "invalid_json",
			Path:    []string{},
			Message: "Malformed JSON body",
		}})

		return false
	}

	return s.check(w, dst)
}

// check validates v and writes the 422 response on failure.
func (s *Server) check(w http.ResponseWriter, v any) (ok bool) {
	err := s.validate.Struct(v)
	if err == nil {
		return true
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		writeInternal(w)

		return false
	}

	issues := make([]issue, 0, len(verrs))
	for _, fe := range verrs {
		issues = append(issues, issue{
			Code:    fe.Tag(),
			Path:    []string{fe.Field()},
			Message: issueMessage(fe),
		})
	}
	writeValidation(w, issues)

	return false
}

func writeValidation(w http.ResponseWriter, issues []issue) {
	middleware.WriteError(w, http.StatusUnprocessableEntity, middleware.ErrorDetail{
		Name:    errNameValidation,
		Message: "Validation failed",
		Issues:  issues,
	})
}

func issueMessage(fe validator.FieldError) (msg string) {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "url":
		return fmt.Sprintf("%s must be a valid URL", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "eqfield":
		return fmt.Sprintf("%s must match %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed validation for %s", field, fe.Tag())
	}
}
