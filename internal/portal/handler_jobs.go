package portal

import (
	"net/http"

	"github.com/gorilla/mux"

	"talentbridge/portal-service/internal/respond"
)

type createJobRequest struct {
	EnterpriseID    string   `json:"enterpriseId"`
	Title           string   `json:"title"`
	Industry        string   `json:"industry"`
	Category        string   `json:"category"`
	SalaryMin       int      `json:"salaryMin"`
	SalaryMax       int      `json:"salaryMax"`
	Location        string   `json:"location"`
	Address         string   `json:"address"`
	Description     string   `json:"description"`
	Requirements    string   `json:"requirements"`
	Benefits        string   `json:"benefits"`
	Skills          []string `json:"skills"`
	EducationLevel  string   `json:"educationLevel"`
	ExperienceYears int      `json:"experienceYears"`
	FreshGraduate   bool     `json:"freshGraduate"`
	Headcount       int      `json:"headcount"`
}

func (h *Handler) createJob(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.claims(w, r)
	if !ok {
		return
	}
	var req createJobRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Title == "" {
		respond.Error(w, http.StatusBadRequest, "title is required")
		return
	}

	job, err := h.repo.CreateJob(r.Context(), claims, Job{
		EnterpriseID:    req.EnterpriseID,
		Title:           req.Title,
		Industry:        req.Industry,
		Category:        req.Category,
		SalaryMin:       req.SalaryMin,
		SalaryMax:       req.SalaryMax,
		Location:        req.Location,
		Address:         req.Address,
		Description:     req.Description,
		Requirements:    req.Requirements,
		Benefits:        req.Benefits,
		Skills:          req.Skills,
		EducationLevel:  req.EducationLevel,
		ExperienceYears: req.ExperienceYears,
		FreshGraduate:   req.FreshGraduate,
		Headcount:       req.Headcount,
	})
	if err != nil {
		WriteError(w, err)
		return
	}
	respond.OK(w, job)
}

func (h *Handler) updateJob(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.claims(w, r)
	if !ok {
		return
	}
	var req createJobRequest
	if !decode(w, r, &req) {
		return
	}

	job, err := h.repo.UpdateJob(r.Context(), claims, Job{
		ID:              mux.Vars(r)["id"],
		Title:           req.Title,
		Industry:        req.Industry,
		Category:        req.Category,
		SalaryMin:       req.SalaryMin,
		SalaryMax:       req.SalaryMax,
		Location:        req.Location,
		Address:         req.Address,
		Description:     req.Description,
		Requirements:    req.Requirements,
		Benefits:        req.Benefits,
		Skills:          req.Skills,
		EducationLevel:  req.EducationLevel,
		ExperienceYears: req.ExperienceYears,
		FreshGraduate:   req.FreshGraduate,
		Headcount:       req.Headcount,
	})
	if err != nil {
		WriteError(w, err)
		return
	}
	respond.OK(w, job)
}

func (h *Handler) listEnterpriseJobs(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.claims(w, r)
	if !ok {
		return
	}
	page := parsePage(r)

	jobs, total, err := h.repo.ListEnterpriseJobs(r.Context(), claims, r.URL.Query().Get("enterpriseId"), page)
	if err != nil {
		WriteError(w, err)
		return
	}
	respond.OKWithMeta(w, jobs, NewPageMeta(page, total))
}

func (h *Handler) publishJob(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.claims(w, r)
	if !ok {
		return
	}

	job, err := h.repo.PublishJob(r.Context(), claims, mux.Vars(r)["id"])
	if err != nil {
		WriteError(w, err)
		return
	}
	respond.OK(w, job)
}

func (h *Handler) listPublishedJobs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := JobFilter{
		Industry: q.Get("industry"),
		Location: q.Get("location"),
		Keyword:  q.Get("keyword"),
	}
	page := parsePage(r)

	jobs, total, err := h.repo.ListPublishedJobs(r.Context(), filter, page)
	if err != nil {
		WriteError(w, err)
		return
	}
	respond.OKWithMeta(w, jobs, NewPageMeta(page, total))
}

func (h *Handler) getPublishedJob(w http.ResponseWriter, r *http.Request) {
	job, enterprise, err := h.repo.GetPublishedJob(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		WriteError(w, err)
		return
	}
	respond.OK(w, map[string]any{"job": job, "enterprise": enterprise})
}
