package portal

import (
	"net/http"

	"github.com/gorilla/mux"

	"talentbridge/portal-service/internal/respond"
)

type createPolicyRequest struct {
	Title   string     `json:"title"`
	Type    PolicyType `json:"type"`
	Content string     `json:"content"`
}

func (h *Handler) createPolicy(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.claims(w, r)
	if !ok {
		return
	}
	var req createPolicyRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Title == "" {
		respond.Error(w, http.StatusBadRequest, "title is required")
		return
	}

	policy, err := h.repo.CreatePolicy(r.Context(), claims, Policy{
		Title:   req.Title,
		Type:    req.Type,
		Content: req.Content,
	})
	if err != nil {
		WriteError(w, err)
		return
	}
	respond.OK(w, policy)
}

func (h *Handler) publishPolicy(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.claims(w, r)
	if !ok {
		return
	}

	policy, err := h.repo.PublishPolicy(r.Context(), claims, mux.Vars(r)["id"])
	if err != nil {
		WriteError(w, err)
		return
	}
	respond.OK(w, policy)
}

func (h *Handler) listPublishedPolicies(w http.ResponseWriter, r *http.Request) {
	page := parsePage(r)

	policies, total, err := h.repo.ListPublishedPolicies(r.Context(), page)
	if err != nil {
		WriteError(w, err)
		return
	}
	respond.OKWithMeta(w, policies, NewPageMeta(page, total))
}

type createJobPushRequest struct {
	JobID        string   `json:"jobId"`
	SchoolID     string   `json:"schoolId"`
	TargetMajors []string `json:"targetMajors"`
}

func (h *Handler) createJobPush(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.claims(w, r)
	if !ok {
		return
	}
	var req createJobPushRequest
	if !decode(w, r, &req) {
		return
	}
	if req.JobID == "" {
		respond.Error(w, http.StatusBadRequest, "jobId is required")
		return
	}

	record, err := h.repo.CreateJobPushRecord(r.Context(), claims, req.JobID, req.SchoolID, req.TargetMajors)
	if err != nil {
		WriteError(w, err)
		return
	}
	respond.OK(w, record)
}

func (h *Handler) listJobPushes(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.claims(w, r)
	if !ok {
		return
	}
	page := parsePage(r)

	records, total, err := h.repo.ListJobPushRecords(r.Context(), claims, r.URL.Query().Get("schoolId"), page)
	if err != nil {
		WriteError(w, err)
		return
	}
	respond.OKWithMeta(w, records, NewPageMeta(page, total))
}
