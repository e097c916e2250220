package httputil

import (
	"errors"
	"log/slog"
	"net/http"

	"docvault/internal/domain"
)

// RespondDomainError maps a domain error to an RFC 7807 response.
// Storage failures never leak their detail; consistency failures are logged
// at error level because they need an operator.
func RespondDomainError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	problemFor(r, logger, err).Write(w)
}

func problemFor(r *http.Request, logger *slog.Logger, err error) *Problem {
	var maxBytes *http.MaxBytesError

	switch {
	case errors.Is(err, domain.ErrConsistency):
		logger.Error("storage and catalog diverged",
			"error", err,
			"path", r.URL.Path,
			"method", r.Method,
		)
		return NewProblem(http.StatusInternalServerError,
			"the file store and catalog disagree; an operator has been notified").
			WithCode(CodeConsistency).WithInstance(r)
	case errors.As(err, &maxBytes):
		return NewProblem(http.StatusRequestEntityTooLarge, "request body too large").WithInstance(r)
	case errors.Is(err, domain.ErrStorage):
		logger.Warn("storage failure", "error", err, "path", r.URL.Path)
		return NewProblem(http.StatusInternalServerError, "file storage is unavailable, try again later").
			WithCode(CodeStorage).WithInstance(r)
	case errors.Is(err, domain.ErrValidation):
		return NewProblem(http.StatusBadRequest, err.Error()).WithInstance(r)
	case errors.Is(err, domain.ErrNotFound):
		return NewProblem(http.StatusNotFound, err.Error()).WithInstance(r)
	case errors.Is(err, domain.ErrUnauthorized):
		return NewProblem(http.StatusUnauthorized, err.Error()).WithInstance(r)
	case errors.Is(err, domain.ErrForbidden):
		return NewProblem(http.StatusForbidden, err.Error()).WithInstance(r)
	case errors.Is(err, domain.ErrConflict):
		return NewProblem(http.StatusConflict, err.Error()).WithInstance(r)
	default:
		logger.Error("unexpected error",
			"error", err,
			"path", r.URL.Path,
			"method", r.Method,
		)
		return NewProblem(http.StatusInternalServerError, "internal server error").WithInstance(r)
	}
}
