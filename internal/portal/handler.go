package portal

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"talentbridge/portal-service/internal/guard"
	"talentbridge/portal-service/internal/identity"
	"talentbridge/portal-service/internal/respond"
)

// Repository is the store surface the HTTP layer depends on. Tests substitute
// a fake; production wires *Store.
type Repository interface {
	CreateAccount(ctx context.Context, a identity.Account) (identity.Account, error)

	CreateJob(ctx context.Context, claims identity.SessionClaims, job Job) (Job, error)
	UpdateJob(ctx context.Context, claims identity.SessionClaims, job Job) (Job, error)
	ListEnterpriseJobs(ctx context.Context, claims identity.SessionClaims, targetEnterpriseID string, page Page) ([]Job, int, error)
	PublishJob(ctx context.Context, claims identity.SessionClaims, jobID string) (Job, error)
	ListPublishedJobs(ctx context.Context, filter JobFilter, page Page) ([]Job, int, error)
	GetPublishedJob(ctx context.Context, id string) (Job, Enterprise, error)

	ListApplications(ctx context.Context, claims identity.SessionClaims, filter ApplicationFilter, page Page) ([]Application, int, error)
	CreateApplication(ctx context.Context, claims identity.SessionClaims, jobID string, resumeID *string) (Application, error)
	UpdateApplicationStatus(ctx context.Context, claims identity.SessionClaims, appID string, target Status, notes *string) (Application, error)
	WithdrawApplication(ctx context.Context, claims identity.SessionClaims, appID string) (Application, error)
	BatchUpdateStatus(ctx context.Context, claims identity.SessionClaims, ids []string, target Status, notes *string) (int, error)

	CreatePolicy(ctx context.Context, claims identity.SessionClaims, p Policy) (Policy, error)
	PublishPolicy(ctx context.Context, claims identity.SessionClaims, id string) (Policy, error)
	ListPublishedPolicies(ctx context.Context, page Page) ([]Policy, int, error)

	CreateJobPushRecord(ctx context.Context, claims identity.SessionClaims, jobID, schoolID string, targetMajors []string) (JobPushRecord, error)
	ListJobPushRecords(ctx context.Context, claims identity.SessionClaims, targetSchoolID string, page Page) ([]JobPushRecord, int, error)
}

var _ Repository = (*Store)(nil)

// Authenticator issues and validates portal sessions. Satisfied by
// identity.Issuer.
type Authenticator interface {
	Authenticate(ctx context.Context, email, password string) (identity.SessionClaims, string, error)
}

// Handler serves the session-authenticated portal API.
type Handler struct {
	repo          Repository
	auth          Authenticator
	sessionTTL    time.Duration
	secureCookies bool
}

// NewHandler returns a Handler. secureCookies should be true in production so
// the session cookie is never sent over plain HTTP.
func NewHandler(repo Repository, auth Authenticator, sessionTTL time.Duration, secureCookies bool) *Handler {
	return &Handler{repo: repo, auth: auth, sessionTTL: sessionTTL, secureCookies: secureCookies}
}

// Register mounts the portal API routes.
func (h *Handler) Register(r *mux.Router) {
	auth := r.PathPrefix("/api/auth").Subrouter()
	auth.HandleFunc("/login", h.login).Methods(http.MethodPost)
	auth.HandleFunc("/register", h.register).Methods(http.MethodPost)
	auth.HandleFunc("/logout", h.logout).Methods(http.MethodPost)
	auth.HandleFunc("/me", h.me).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/jobs", h.listPublishedJobs).Methods(http.MethodGet)
	api.HandleFunc("/jobs/{id}", h.getPublishedJob).Methods(http.MethodGet)
	api.HandleFunc("/policies", h.listPublishedPolicies).Methods(http.MethodGet)

	api.HandleFunc("/applications", h.listApplications).Methods(http.MethodGet)
	api.HandleFunc("/applications", h.createApplication).Methods(http.MethodPost)
	api.HandleFunc("/applications/batch-status", h.batchUpdateStatus).Methods(http.MethodPatch)
	api.HandleFunc("/applications/{id}/status", h.updateApplicationStatus).Methods(http.MethodPatch)
	api.HandleFunc("/applications/{id}/withdraw", h.withdrawApplication).Methods(http.MethodPost)

	api.HandleFunc("/enterprise/jobs", h.createJob).Methods(http.MethodPost)
	api.HandleFunc("/enterprise/jobs", h.listEnterpriseJobs).Methods(http.MethodGet)
	api.HandleFunc("/enterprise/jobs/{id}", h.updateJob).Methods(http.MethodPut)
	api.HandleFunc("/enterprise/jobs/{id}/publish", h.publishJob).Methods(http.MethodPost)

	api.HandleFunc("/government/policies", h.createPolicy).Methods(http.MethodPost)
	api.HandleFunc("/government/policies/{id}/publish", h.publishPolicy).Methods(http.MethodPost)

	api.HandleFunc("/school/job-pushes", h.createJobPush).Methods(http.MethodPost)
	api.HandleFunc("/school/job-pushes", h.listJobPushes).Methods(http.MethodGet)
}

// claims pulls the bound claim set or writes a 401. Every non-public handler
// starts here.
func (h *Handler) claims(w http.ResponseWriter, r *http.Request) (identity.SessionClaims, bool) {
	claims, ok := guard.ClaimsFrom(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "authentication required")
	}
	return claims, ok
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	UserID     string        `json:"userId"`
	Email      string        `json:"email"`
	Role       identity.Role `json:"role"`
	RedirectTo string        `json:"redirectTo"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decode(w, r, &req) {
		return
	}

	claims, token, err := h.auth.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		WriteError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     guard.SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.sessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	respond.OK(w, sessionResponse{
		UserID:     claims.Subject,
		Email:      claims.Email,
		Role:       claims.Role,
		RedirectTo: claims.Role.DefaultPath(),
	})
}

type registerRequest struct {
	Email        string `json:"email"`
	Password     string `json:"password"`
	Name         string `json:"name"`
	Role         string `json:"role"`
	EnterpriseID string `json:"enterpriseId"`
	SchoolID     string `json:"schoolId"`
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Email == "" || req.Password == "" {
		respond.Error(w, http.StatusBadRequest, "email and password are required")
		return
	}

	role, err := identity.ParseRole(req.Role)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "unknown role")
		return
	}
	if role.Equal(identity.RoleAdmin) {
		// Admin accounts are provisioned out of band, never self-registered.
		respond.Error(w, http.StatusForbidden, "forbidden")
		return
	}

	hash, err := identity.HashPassword(req.Password)
	if err != nil {
		WriteError(w, err)
		return
	}

	account, err := h.repo.CreateAccount(r.Context(), identity.Account{
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: hash,
		Role:         role,
		Status:       "ACTIVE",
		EnterpriseID: req.EnterpriseID,
		SchoolID:     req.SchoolID,
	})
	if err != nil {
		WriteError(w, err)
		return
	}
	respond.OK(w, map[string]any{"userId": account.ID, "email": account.Email, "role": account.Role})
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     guard.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	respond.OK(w, map[string]any{"loggedOut": true})
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.claims(w, r)
	if !ok {
		return
	}
	respond.OK(w, map[string]any{
		"userId":       claims.Subject,
		"email":        claims.Email,
		"role":         claims.Role,
		"enterpriseId": claims.EnterpriseID,
		"schoolId":     claims.SchoolID,
	})
}

func parsePage(r *http.Request) Page {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	size, _ := strconv.Atoi(q.Get("pageSize"))
	return Page{Number: page, Size: size}.Normalize(50)
}
