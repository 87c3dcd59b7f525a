package stats

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"talentbridge/portal-service/internal/guard"
	"talentbridge/portal-service/internal/identity"
	"talentbridge/portal-service/internal/portal"
	"talentbridge/portal-service/internal/respond"
)

// defaultTrendMonths is how far back the government trend reaches when the
// caller does not say.
const defaultTrendMonths = 6

// Dashboards is the engine surface the HTTP layer depends on.
type Dashboards interface {
	GovernmentDashboard(ctx context.Context, claims identity.SessionClaims, months int) (GovernmentDashboard, error)
	SchoolDashboard(ctx context.Context, claims identity.SessionClaims, schoolID string) (SchoolDashboard, error)
	PlatformOverview(ctx context.Context, claims identity.SessionClaims) (PlatformOverview, error)
}

var _ Dashboards = (*Engine)(nil)

// Handler serves the dashboard endpoints. Role checks live in the engine;
// the handler only binds claims and shapes responses.
type Handler struct {
	dash Dashboards
}

func NewHandler(dash Dashboards) *Handler {
	return &Handler{dash: dash}
}

// Register mounts the stats routes.
func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/api/stats/government", h.government).Methods(http.MethodGet)
	r.HandleFunc("/api/stats/school", h.school).Methods(http.MethodGet)
	r.HandleFunc("/api/stats/platform", h.platform).Methods(http.MethodGet)
}

func (h *Handler) government(w http.ResponseWriter, r *http.Request) {
	claims, ok := guard.ClaimsFrom(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	months, _ := strconv.Atoi(r.URL.Query().Get("months"))
	if months < 1 || months > 24 {
		months = defaultTrendMonths
	}

	dash, err := h.dash.GovernmentDashboard(r.Context(), claims, months)
	if err != nil {
		portal.WriteError(w, err)
		return
	}
	respond.OK(w, dash)
}

func (h *Handler) school(w http.ResponseWriter, r *http.Request) {
	claims, ok := guard.ClaimsFrom(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	dash, err := h.dash.SchoolDashboard(r.Context(), claims, r.URL.Query().Get("schoolId"))
	if err != nil {
		portal.WriteError(w, err)
		return
	}
	respond.OK(w, dash)
}

func (h *Handler) platform(w http.ResponseWriter, r *http.Request) {
	claims, ok := guard.ClaimsFrom(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	overview, err := h.dash.PlatformOverview(r.Context(), claims)
	if err != nil {
		portal.WriteError(w, err)
		return
	}
	respond.OK(w, overview)
}
