package httppresentation

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Zhima-Mochi/fooddelivery/internal/domain/errs"
	"github.com/Zhima-Mochi/fooddelivery/internal/observability"
	"github.com/Zhima-Mochi/fooddelivery/internal/observability/logctx"
)

const msgInternal = "Internal server error"

var errBadBody = errs.Validation("Invalid request body")

func decodeJSON(r *http.Request, dst any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return errBadBody
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// statusFor is the single mapping from error kinds to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errs.ErrValidation),
		errors.Is(err, errs.ErrInsufficientQuantity),
		errors.Is(err, errs.ErrIncompatibleItems),
		errors.Is(err, errs.ErrOrderAlreadyCompleted):
		return http.StatusBadRequest
	case errors.Is(err, errs.ErrInvalidCredentials),
		errors.Is(err, errs.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, errs.ErrNotAuthorized):
		return http.StatusForbidden
	case errors.Is(err, errs.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, errs.ErrConflict),
		errors.Is(err, errs.ErrConcurrentUpdate):
		return http.StatusConflict
	case errors.Is(err, errs.ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeDomainError hides the message of unclassified errors and logs them instead.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		if logger := logctx.From(r.Context()); logger != nil {
			logger.Error("http_internal_error", observability.Err(err))
		}
		writeError(w, status, msgInternal)
		return
	}
	writeError(w, status, err.Error())
}
