package portal

import (
	"errors"
	"log/slog"
	"net/http"

	"talentbridge/portal-service/internal/identity"
	"talentbridge/portal-service/internal/respond"
)

// WriteError maps the failure taxonomy onto HTTP statuses. Anything outside
// the taxonomy is a server fault and logs with the cause withheld from the
// caller.
func WriteError(w http.ResponseWriter, err error) {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		respond.Error(w, http.StatusBadRequest, verr.Error())
	case errors.Is(err, identity.ErrInvalidCredentials):
		respond.Error(w, http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, ErrForbidden):
		respond.Error(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, ErrNotFound):
		respond.Error(w, http.StatusNotFound, "record not found")
	case errors.Is(err, ErrConflict):
		respond.Error(w, http.StatusConflict, "record already exists")
	case errors.Is(err, ErrInvalidTransition):
		respond.Error(w, http.StatusUnprocessableEntity, err.Error())
	default:
		slog.Error("request failed", "err", err)
		respond.Error(w, http.StatusInternalServerError, "internal error")
	}
}
