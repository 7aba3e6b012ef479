package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sholas-io/onboard/pkg/models"
	"github.com/sholas-io/onboard/pkg/repository"
)

type JobHandler struct {
	jobRepo         repository.JobRepo
	applicationRepo repository.ApplicationRepo
}

func NewJobHandler(jr repository.JobRepo, ar repository.ApplicationRepo) *JobHandler {
	return &JobHandler{jobRepo: jr, applicationRepo: ar}
}

type saveJobRequest struct {
	Title        string           `json:"title"`
	Description  string           `json:"description"`
	Requirements string           `json:"requirements"`
	Location     string           `json:"location"`
	Salary       string           `json:"salary"`
	Status       models.JobStatus `json:"status,omitempty"`
}

// CreateJob publishes a new posting. New jobs default to active.
func (h *JobHandler) CreateJob(w http.ResponseWriter, r *http.Request) {
	p, _ := PrincipalFrom(r.Context())

	var req saveJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if req.Title == "" {
		http.Error(w, "Missing fields", http.StatusBadRequest)
		return
	}
	if req.Status == "" {
		req.Status = models.JobActive
	}

	job := &models.Job{
		ID:           uuid.NewString(),
		Title:        req.Title,
		Description:  req.Description,
		Requirements: req.Requirements,
		Location:     req.Location,
		Salary:       req.Salary,
		CreatedBy:    p.UserID,
		Created:      time.Now().UTC().UnixMilli(),
		Status:       req.Status,
	}
	if err := h.jobRepo.SaveJob(r.Context(), job); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, job, http.StatusCreated)
}

// UpdateJob rewrites an existing posting in place, keeping its author and
// creation time.
func (h *JobHandler) UpdateJob(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["jobID"]

	var req saveJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	job, err := h.jobRepo.GetJob(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if job == nil {
		writeDomainError(w, repository.ErrNotFound)
		return
	}

	job.Title = req.Title
	job.Description = req.Description
	job.Requirements = req.Requirements
	job.Location = req.Location
	job.Salary = req.Salary
	if req.Status != "" {
		job.Status = req.Status
	}
	if err := h.jobRepo.SaveJob(r.Context(), job); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, job, http.StatusOK)
}

func (h *JobHandler) DeleteJob(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["jobID"]

	if err := h.jobRepo.DeleteJob(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListJobs returns postings. Candidates see active jobs only; admins can pass
// ?status= to filter or omit it for everything.
func (h *JobHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	p, _ := PrincipalFrom(r.Context())

	status := models.JobStatus(r.URL.Query().Get("status"))
	if p.Role != models.RoleAdmin {
		status = models.JobActive
	}

	jobs, err := h.jobRepo.ListJobs(r.Context(), status)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if jobs == nil {
		jobs = []models.Job{}
	}
	writeJSON(w, map[string]any{"items": jobs, "total": len(jobs)}, http.StatusOK)
}

// Apply records the caller's application for a job. A second application to
// the same job is a conflict.
func (h *JobHandler) Apply(w http.ResponseWriter, r *http.Request) {
	p, _ := PrincipalFrom(r.Context())
	jobID := mux.Vars(r)["jobID"]

	job, err := h.jobRepo.GetJob(r.Context(), jobID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if job == nil || job.Status != models.JobActive {
		writeDomainError(w, repository.ErrNotFound)
		return
	}

	app := &models.Application{
		ID:          uuid.NewString(),
		JobID:       jobID,
		CandidateID: p.UserID,
		Applied:     time.Now().UTC().UnixMilli(),
		Status:      models.ApplicationPending,
	}
	if err := h.applicationRepo.CreateApplication(r.Context(), app); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, app, http.StatusCreated)
}

// MyApplications lists the caller's own applications.
func (h *JobHandler) MyApplications(w http.ResponseWriter, r *http.Request) {
	p, _ := PrincipalFrom(r.Context())

	apps, err := h.applicationRepo.ListApplicationsByCandidate(r.Context(), p.UserID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if apps == nil {
		apps = []models.Application{}
	}
	writeJSON(w, map[string]any{"items": apps, "total": len(apps)}, http.StatusOK)
}
