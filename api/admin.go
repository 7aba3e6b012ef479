package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"log/slog"

	"github.com/gorilla/mux"
	"github.com/sholas-io/onboard/internal/lifecycle"
	"github.com/sholas-io/onboard/internal/tasks"
	"github.com/sholas-io/onboard/pkg/models"
	"github.com/sholas-io/onboard/pkg/repository"
)

// TaskEnqueuer schedules deferred work (promotion, notification emails).
type TaskEnqueuer interface {
	Enqueue(ctx context.Context, typ string, payload any, delay time.Duration, maxAttempts int) (int64, error)
}

type AdminHandler struct {
	profileRepo     repository.ProfileRepo
	applicationRepo repository.ApplicationRepo
	tasks           TaskEnqueuer
	promotionDelay  time.Duration
}

func NewAdminHandler(pr repository.ProfileRepo, ar repository.ApplicationRepo, te TaskEnqueuer, promotionDelay time.Duration) *AdminHandler {
	return &AdminHandler{profileRepo: pr, applicationRepo: ar, tasks: te, promotionDelay: promotionDelay}
}

// ListProfiles returns review queues; status and kind are optional filters.
func (h *AdminHandler) ListProfiles(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	status := models.Status(q.Get("status"))
	kind := models.ProfileKind(q.Get("kind"))

	profiles, err := h.profileRepo.ListProfiles(r.Context(), status, kind)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if profiles == nil {
		profiles = []models.Profile{}
	}
	writeJSON(w, map[string]any{"items": profiles, "total": len(profiles)}, http.StatusOK)
}

func (h *AdminHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userID"]

	profile, err := h.profileRepo.GetProfile(r.Context(), userID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if profile == nil {
		writeDomainError(w, repository.ErrNotFound)
		return
	}
	writeJSON(w, profile, http.StatusOK)
}

// ApproveQuiz signs off a passed quiz, moving the profile to
// documents_pending. Scores below the threshold cannot be approved.
func (h *AdminHandler) ApproveQuiz(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(p *models.Profile) error {
		return lifecycle.ApproveQuiz(p)
	})
}

// ResetQuiz sends the candidate back to the quiz regardless of score.
func (h *AdminHandler) ResetQuiz(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(p *models.Profile) error {
		return lifecycle.ResetQuiz(p)
	})
}

// ApproveDocuments approves a reviewed submission. The employee promotion
// and the congratulations email run as background tasks after a configured
// delay; a pending promotion survives a restart.
func (h *AdminHandler) ApproveDocuments(w http.ResponseWriter, r *http.Request) {
	profile := h.transition(w, r, func(p *models.Profile) error {
		return lifecycle.ApproveDocuments(p)
	})
	if profile == nil {
		return
	}

	ctx := r.Context()
	if _, err := h.tasks.Enqueue(ctx, tasks.TypePromoteEmployee, tasks.PromotePayload{UserID: profile.UserID}, h.promotionDelay, 3); err != nil {
		logger.Error("enqueue promotion", slog.Any("err", err))
	}
	notify := tasks.NotifyPayload{UserID: profile.UserID, Email: profile.Personal.Email, Template: "congratulations"}
	if _, err := h.tasks.Enqueue(ctx, tasks.TypeNotifyEmail, notify, h.promotionDelay, 3); err != nil {
		logger.Error("enqueue notification", slog.Any("err", err))
	}
}

type rejectRequest struct {
	Reason string `json:"reason"`
}

// RejectDocuments records a rejection with a mandatory reason. The profile
// goes back to documents_pending with the reason visible to the candidate.
func (h *AdminHandler) RejectDocuments(w http.ResponseWriter, r *http.Request) {
	var req rejectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	profile := h.transition(w, r, func(p *models.Profile) error {
		return lifecycle.RejectDocuments(p, req.Reason)
	})
	if profile == nil {
		return
	}

	notify := tasks.NotifyPayload{UserID: profile.UserID, Email: profile.Personal.Email, Template: "documents_rejected", Reason: profile.DocsRejectionReason}
	if _, err := h.tasks.Enqueue(r.Context(), tasks.TypeNotifyEmail, notify, 0, 3); err != nil {
		logger.Error("enqueue notification", slog.Any("err", err))
	}
}

func (h *AdminHandler) ListApplications(w http.ResponseWriter, r *http.Request) {
	apps, err := h.applicationRepo.ListApplications(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if apps == nil {
		apps = []models.Application{}
	}
	writeJSON(w, map[string]any{"items": apps, "total": len(apps)}, http.StatusOK)
}

// transition loads the addressed profile, applies fn and persists. On
// success the updated profile is both written to the response and returned;
// on failure it writes the error and returns nil.
func (h *AdminHandler) transition(w http.ResponseWriter, r *http.Request, fn func(*models.Profile) error) *models.Profile {
	userID := mux.Vars(r)["userID"]

	profile, err := h.profileRepo.GetProfile(r.Context(), userID)
	if err != nil {
		writeDomainError(w, err)
		return nil
	}
	if profile == nil {
		writeDomainError(w, repository.ErrNotFound)
		return nil
	}

	if err := fn(profile); err != nil {
		writeDomainError(w, err)
		return nil
	}
	if err := h.profileRepo.UpdateProfile(r.Context(), profile); err != nil {
		writeDomainError(w, err)
		return nil
	}
	writeJSON(w, profile, http.StatusOK)
	return profile
}
