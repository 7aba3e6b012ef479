package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/sholas-io/onboard/internal/lifecycle"
	"github.com/sholas-io/onboard/internal/storage"
	"github.com/sholas-io/onboard/pkg/models"
	"github.com/sholas-io/onboard/pkg/repository"
)

type ProfileHandler struct {
	profileRepo repository.ProfileRepo
	blobs       *storage.BlobStore
}

func NewProfileHandler(pr repository.ProfileRepo, blobs *storage.BlobStore) *ProfileHandler {
	return &ProfileHandler{profileRepo: pr, blobs: blobs}
}

// GetProfile returns the caller's own profile.
func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	p, _ := PrincipalFrom(r.Context())

	profile, err := h.profileRepo.GetProfile(r.Context(), p.UserID)
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

type saveProfileRequest struct {
	Personal   models.Personal   `json:"personal"`
	Passport   models.Passport   `json:"passport"`
	Experience models.Experience `json:"experience"`
}

// SaveProfile applies a profile-setup save. A filled passport number moves
// the profile from incomplete to quiz_pending; edits are rejected once the
// quiz has been passed.
func (h *ProfileHandler) SaveProfile(w http.ResponseWriter, r *http.Request) {
	p, _ := PrincipalFrom(r.Context())

	var req saveProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	profile, err := h.profileRepo.GetProfile(r.Context(), p.UserID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if profile == nil {
		writeDomainError(w, repository.ErrNotFound)
		return
	}

	profile.Personal = req.Personal
	profile.Passport = req.Passport
	profile.Experience = req.Experience
	if err := lifecycle.ApplyProfileSave(profile); err != nil {
		writeDomainError(w, err)
		return
	}

	if err := h.profileRepo.UpdateProfile(r.Context(), profile); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, profile, http.StatusOK)
}

type submitDocumentsRequest struct {
	Agreements models.Agreements `json:"agreements"`
	Documents  models.Documents  `json:"documents"`
}

// SubmitDocuments moves a profile to under_review. All three agreements and
// the four required documents must be present; otherwise nothing is written.
func (h *ProfileHandler) SubmitDocuments(w http.ResponseWriter, r *http.Request) {
	p, _ := PrincipalFrom(r.Context())

	var req submitDocumentsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	if err := h.checkBlobs(req.Documents); err != nil {
		http.Error(w, "Unknown document reference", http.StatusBadRequest)
		return
	}

	profile, err := h.profileRepo.GetProfile(r.Context(), p.UserID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if profile == nil {
		writeDomainError(w, repository.ErrNotFound)
		return
	}

	profile.Agreements = req.Agreements
	profile.Documents = req.Documents
	if err := lifecycle.ApplyDocumentSubmission(profile, time.Now().UTC().UnixMilli()); err != nil {
		writeDomainError(w, err)
		return
	}

	if err := h.profileRepo.UpdateProfile(r.Context(), profile); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, profile, http.StatusOK)
}

// checkBlobs verifies that every referenced blob id exists in the store.
func (h *ProfileHandler) checkBlobs(d models.Documents) error {
	if h.blobs == nil {
		return nil
	}
	for _, id := range []string{d.ExperienceCertificate, d.PCC, d.ITR, d.TravelTickets, d.HealthCertificates, d.VSFProof} {
		if id == "" {
			continue
		}
		ok, err := h.blobs.Exists(id)
		if err != nil {
			return err
		}
		if !ok {
			return storage.ErrInvalidID
		}
	}
	return nil
}
