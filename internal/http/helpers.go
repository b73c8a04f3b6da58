package http

import (
	"errors"
	"net/http"
	"strings"

	"moneyflow/internal/core"
	"moneyflow/internal/extract"
	"moneyflow/internal/log"
)

// sanitizeInput removes control characters except tab, newline and
// carriage return, and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// pathID returns the sanitized {id} path value.
func pathID(r *http.Request, name string) string {
	return sanitizeInput(r.PathValue(name))
}

// writeError maps a service error to a status code. resource names the
// entity in 404 details, e.g. "Transaction not found".
func writeError(w http.ResponseWriter, r *http.Request, err error, resource string) {
	switch {
	case errors.Is(err, core.ErrNotFound):
		NotFoundError(resource + " not found").Write(w)
	case errors.Is(err, errMalformedBody):
		BadRequestError(err.Error()).Write(w)
	case errors.Is(err, core.ErrValidation):
		UnprocessableEntityError(err.Error()).Write(w)
	case errors.Is(err, extract.ErrNotConfigured):
		InternalServerError(extract.ErrNotConfigured.Error()).Write(w)
	default:
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed",
			log.FieldError, err,
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path)
		InternalServerError("Internal server error").Write(w)
	}
}
