package portal

import (
	"net/http"

	"github.com/gorilla/mux"

	"talentbridge/portal-service/internal/respond"
)

func (h *Handler) listApplications(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.claims(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	filter := ApplicationFilter{
		EnterpriseID: q.Get("enterpriseId"),
		UserID:       q.Get("userId"),
		JobID:        q.Get("jobId"),
	}
	if raw := q.Get("status"); raw != "" {
		status, err := ParseStatus(raw)
		if err != nil {
			respond.Error(w, http.StatusBadRequest, "unknown status")
			return
		}
		filter.Status = status
	}
	page := parsePage(r)

	apps, total, err := h.repo.ListApplications(r.Context(), claims, filter, page)
	if err != nil {
		WriteError(w, err)
		return
	}
	respond.OKWithMeta(w, apps, NewPageMeta(page, total))
}

type createApplicationRequest struct {
	JobID    string  `json:"jobId"`
	ResumeID *string `json:"resumeId"`
}

func (h *Handler) createApplication(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.claims(w, r)
	if !ok {
		return
	}
	var req createApplicationRequest
	if !decode(w, r, &req) {
		return
	}
	if req.JobID == "" {
		respond.Error(w, http.StatusBadRequest, "jobId is required")
		return
	}

	app, err := h.repo.CreateApplication(r.Context(), claims, req.JobID, req.ResumeID)
	if err != nil {
		WriteError(w, err)
		return
	}
	respond.OK(w, app)
}

type updateStatusRequest struct {
	Status string  `json:"status"`
	Notes  *string `json:"notes"`
}

func (h *Handler) updateApplicationStatus(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.claims(w, r)
	if !ok {
		return
	}
	var req updateStatusRequest
	if !decode(w, r, &req) {
		return
	}

	target, err := ParseStatus(req.Status)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "unknown status")
		return
	}

	app, err := h.repo.UpdateApplicationStatus(r.Context(), claims, mux.Vars(r)["id"], target, req.Notes)
	if err != nil {
		WriteError(w, err)
		return
	}
	respond.OK(w, app)
}

func (h *Handler) withdrawApplication(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.claims(w, r)
	if !ok {
		return
	}

	app, err := h.repo.WithdrawApplication(r.Context(), claims, mux.Vars(r)["id"])
	if err != nil {
		WriteError(w, err)
		return
	}
	respond.OK(w, app)
}

type batchStatusRequest struct {
	IDs    []string `json:"ids"`
	Status string   `json:"status"`
	Notes  *string  `json:"notes"`
}

func (h *Handler) batchUpdateStatus(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.claims(w, r)
	if !ok {
		return
	}
	var req batchStatusRequest
	if !decode(w, r, &req) {
		return
	}
	if len(req.IDs) == 0 {
		respond.Error(w, http.StatusBadRequest, "ids are required")
		return
	}

	target, err := ParseStatus(req.Status)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "unknown status")
		return
	}

	updated, err := h.repo.BatchUpdateStatus(r.Context(), claims, req.IDs, target, req.Notes)
	if err != nil {
		WriteError(w, err)
		return
	}
	respond.OK(w, map[string]any{"updated": updated})
}
