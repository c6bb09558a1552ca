package api

import (
	"errors"
	"log"
	"net/http"

	"github.com/projecthelena/healthlog/internal/db"
)

// ErrValidation matches every error produced by invalid client input.
var ErrValidation = errors.New("validation failed")

const (
	msgMessageRequired = "Message is required"
	msgInvalidBody     = "Invalid request body"
	msgNotFound        = "Message not found"
	msgDatabaseError   = "Database error"
)

type validationError struct {
	msg string
}

func (e *validationError) Error() string { return e.msg }

func (e *validationError) Is(target error) bool { return target == ErrValidation }

func invalid(msg string) error {
	return &validationError{msg: msg}
}

// classify maps an operation failure onto the HTTP status and the message
// exposed to the client. Store failures never leak their details.
func classify(err error) (int, string) {
	var ve *validationError
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest, ve.msg
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest, msgInvalidBody
	case errors.Is(err, db.ErrNotFound):
		return http.StatusNotFound, msgNotFound
	default:
		return http.StatusInternalServerError, msgDatabaseError
	}
}

// writeFailure logs store failures and writes the classified error body.
func writeFailure(w http.ResponseWriter, r *http.Request, logger *log.Logger, err error) {
	status, msg := classify(err)
	if status >= http.StatusInternalServerError {
		logger.Printf("%s %s: %s", r.Method, logSafe(r.URL.Path), logSafe(err.Error()))
	}
	writeError(w, status, msg)
}
