package openapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"talentbridge/portal-service/internal/portal"
	"talentbridge/portal-service/internal/respond"
)

// maxPageSize is the hard cap on external page sizes, regardless of what the
// caller asks for.
const maxPageSize = 50

// Directory is the slice of the store the open gateway reads from. Only
// globally-published data and external-channel records are reachable.
type Directory interface {
	ListPublishedJobs(ctx context.Context, filter portal.JobFilter, page portal.Page) ([]portal.Job, int, error)
	GetPublishedJob(ctx context.Context, id string) (portal.Job, portal.Enterprise, error)
	ListPublishedPolicies(ctx context.Context, page portal.Page) ([]portal.Policy, int, error)
	GetResumeByExternalUser(ctx context.Context, externalUserID string) (portal.Resume, error)
	SaveConversation(ctx context.Context, c portal.Conversation) (portal.Conversation, error)
	ListConversationsByExternalUser(ctx context.Context, externalUserID string, limit int) ([]portal.Conversation, error)
	SaveInterview(ctx context.Context, iv portal.Interview) (portal.Interview, error)
	GetInterviewByExternal(ctx context.Context, externalInterviewID string) (portal.Interview, error)
	UpdateInterviewProgress(ctx context.Context, externalInterviewID, status string, report []byte, score *float64) (portal.Interview, error)
	ListInterviewsByExternalUser(ctx context.Context, externalUserID string, limit int) ([]portal.Interview, error)
}

var _ Directory = (*portal.Store)(nil)

// Handler serves the /api/open surface.
type Handler struct {
	dir Directory
}

func NewHandler(dir Directory) *Handler {
	return &Handler{dir: dir}
}

// Register mounts the open routes on a subrouter already wrapped by
// RequireAPIKey and RateLimit.
func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/jobs", h.listJobs).Methods(http.MethodGet)
	r.HandleFunc("/jobs/{id}", h.getJob).Methods(http.MethodGet)
	r.HandleFunc("/policies", h.listPolicies).Methods(http.MethodGet)
	r.HandleFunc("/resumes/{userId}", h.getResume).Methods(http.MethodGet)
	r.HandleFunc("/conversations", h.saveConversation).Methods(http.MethodPost)
	r.HandleFunc("/conversations/user/{userId}", h.listConversations).Methods(http.MethodGet)
	r.HandleFunc("/interviews", h.saveInterview).Methods(http.MethodPost)
	r.HandleFunc("/interviews/{id}", h.getInterview).Methods(http.MethodGet)
	r.HandleFunc("/interviews/{id}/progress", h.updateInterviewProgress).Methods(http.MethodPatch)
	r.HandleFunc("/interviews/user/{userId}", h.listInterviews).Methods(http.MethodGet)
}

func parsePage(r *http.Request) portal.Page {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	size, _ := strconv.Atoi(q.Get("pageSize"))
	return portal.Page{Number: page, Size: size}.Normalize(maxPageSize)
}

func (h *Handler) listJobs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := portal.JobFilter{
		Industry: q.Get("industry"),
		Location: q.Get("location"),
		Keyword:  q.Get("keyword"),
	}
	page := parsePage(r)

	jobs, total, err := h.dir.ListPublishedJobs(r.Context(), filter, page)
	if err != nil {
		respond.Error(w, http.StatusInternalServerError, "failed to list jobs")
		return
	}
	respond.OKWithMeta(w, jobViews(jobs), portal.NewPageMeta(page, total))
}

func (h *Handler) getJob(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	job, enterprise, err := h.dir.GetPublishedJob(r.Context(), id)
	if err != nil {
		if errors.Is(err, portal.ErrNotFound) {
			respond.Error(w, http.StatusNotFound, "job not found")
			return
		}
		respond.Error(w, http.StatusInternalServerError, "failed to load job")
		return
	}
	respond.OK(w, jobDetailView(job, enterprise))
}

func (h *Handler) listPolicies(w http.ResponseWriter, r *http.Request) {
	page := parsePage(r)

	policies, total, err := h.dir.ListPublishedPolicies(r.Context(), page)
	if err != nil {
		respond.Error(w, http.StatusInternalServerError, "failed to list policies")
		return
	}
	respond.OKWithMeta(w, policyViews(policies), portal.NewPageMeta(page, total))
}

func (h *Handler) getResume(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]

	resume, err := h.dir.GetResumeByExternalUser(r.Context(), userID)
	if err != nil {
		if errors.Is(err, portal.ErrNotFound) {
			respond.Error(w, http.StatusNotFound, "resume not found")
			return
		}
		respond.Error(w, http.StatusInternalServerError, "failed to load resume")
		return
	}
	respond.OK(w, resumeView(resume))
}

type saveConversationRequest struct {
	UserID         string          `json:"userId"`
	ConversationID string          `json:"conversationId"`
	Title          *string         `json:"title"`
	Status         string          `json:"status"`
	Type           *string         `json:"type"`
	SessionData    json.RawMessage `json:"sessionData"`
}

func (h *Handler) saveConversation(w http.ResponseWriter, r *http.Request) {
	var req saveConversationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	conv, err := h.dir.SaveConversation(r.Context(), portal.Conversation{
		ExternalUserID:         req.UserID,
		ExternalConversationID: req.ConversationID,
		Title:                  req.Title,
		Status:                 req.Status,
		Type:                   req.Type,
		SessionData:            req.SessionData,
	})
	if err != nil {
		var verr *portal.ValidationError
		if errors.As(err, &verr) {
			respond.Error(w, http.StatusBadRequest, verr.Error())
			return
		}
		respond.Error(w, http.StatusInternalServerError, "failed to save conversation")
		return
	}
	respond.OK(w, conversationView(conv))
}

func (h *Handler) listConversations(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	convs, err := h.dir.ListConversationsByExternalUser(r.Context(), userID, limit)
	if err != nil {
		respond.Error(w, http.StatusInternalServerError, "failed to list conversations")
		return
	}
	respond.OK(w, conversationViews(convs))
}

type saveInterviewRequest struct {
	UserID      string          `json:"userId"`
	InterviewID string          `json:"interviewId"`
	JobTitle    *string         `json:"jobTitle"`
	Status      string          `json:"status"`
	Report      json.RawMessage `json:"report"`
	Score       *float64        `json:"score"`
}

func (h *Handler) saveInterview(w http.ResponseWriter, r *http.Request) {
	var req saveInterviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	iv, err := h.dir.SaveInterview(r.Context(), portal.Interview{
		ExternalUserID:      req.UserID,
		ExternalInterviewID: req.InterviewID,
		JobTitle:            req.JobTitle,
		Status:              req.Status,
		Report:              req.Report,
		Score:               req.Score,
	})
	if err != nil {
		var verr *portal.ValidationError
		if errors.As(err, &verr) {
			respond.Error(w, http.StatusBadRequest, verr.Error())
			return
		}
		respond.Error(w, http.StatusInternalServerError, "failed to save interview")
		return
	}
	respond.OK(w, interviewView(iv))
}

func (h *Handler) getInterview(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	iv, err := h.dir.GetInterviewByExternal(r.Context(), id)
	if err != nil {
		if errors.Is(err, portal.ErrNotFound) {
			respond.Error(w, http.StatusNotFound, "interview not found")
			return
		}
		respond.Error(w, http.StatusInternalServerError, "failed to load interview")
		return
	}
	respond.OK(w, interviewView(iv))
}

type interviewProgressRequest struct {
	Status string          `json:"status"`
	Report json.RawMessage `json:"report"`
	Score  *float64        `json:"score"`
}

func (h *Handler) updateInterviewProgress(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req interviewProgressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	iv, err := h.dir.UpdateInterviewProgress(r.Context(), id, req.Status, req.Report, req.Score)
	if err != nil {
		var verr *portal.ValidationError
		if errors.As(err, &verr) {
			respond.Error(w, http.StatusBadRequest, verr.Error())
			return
		}
		if errors.Is(err, portal.ErrNotFound) {
			respond.Error(w, http.StatusNotFound, "interview not found")
			return
		}
		respond.Error(w, http.StatusInternalServerError, "failed to update interview")
		return
	}
	respond.OK(w, interviewView(iv))
}

func (h *Handler) listInterviews(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	ivs, err := h.dir.ListInterviewsByExternalUser(r.Context(), userID, limit)
	if err != nil {
		respond.Error(w, http.StatusInternalServerError, "failed to list interviews")
		return
	}
	respond.OK(w, interviewViews(ivs))
}
