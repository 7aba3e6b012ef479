package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/qri-io/jsonschema"
	"github.com/sholas-io/onboard/pkg/models"
	"github.com/sholas-io/onboard/pkg/repository"
)

type QuestionHandler struct {
	questionRepo repository.QuestionRepo
	importSchema *jsonschema.Schema
}

// NewQuestionHandler compiles the bulk-import schema once at startup.
// schemaJSON may be nil to disable import validation (tests).
func NewQuestionHandler(qr repository.QuestionRepo, schemaJSON []byte) (*QuestionHandler, error) {
	h := &QuestionHandler{questionRepo: qr}
	if schemaJSON != nil {
		rs := &jsonschema.Schema{}
		if err := json.Unmarshal(schemaJSON, rs); err != nil {
			return nil, fmt.Errorf("compile import schema: %w", err)
		}
		h.importSchema = rs
	}
	return h, nil
}

type questionRequest struct {
	Question      string             `json:"question"`
	Image         string             `json:"image,omitempty"`
	Options       []string           `json:"options"`
	CorrectAnswer int                `json:"correct_answer"`
	Kind          models.ProfileKind `json:"kind"`
}

func (req questionRequest) validate() error {
	if req.Question == "" {
		return fmt.Errorf("question text required")
	}
	if len(req.Options) < 2 {
		return fmt.Errorf("at least two options required")
	}
	if req.CorrectAnswer < 0 || req.CorrectAnswer >= len(req.Options) {
		return fmt.Errorf("correct_answer out of range")
	}
	if req.Kind != models.KindDriver && req.Kind != models.KindWelder {
		return fmt.Errorf("unknown question kind %q", req.Kind)
	}
	return nil
}

func (h *QuestionHandler) CreateQuestion(w http.ResponseWriter, r *http.Request) {
	p, _ := PrincipalFrom(r.Context())

	var req questionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if err := req.validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	q := &models.QuizQuestion{
		ID:            uuid.NewString(),
		Question:      req.Question,
		Image:         req.Image,
		Options:       req.Options,
		CorrectAnswer: req.CorrectAnswer,
		Kind:          req.Kind,
		CreatedBy:     p.UserID,
		Created:       time.Now().UTC().UnixMilli(),
	}
	if err := h.questionRepo.CreateQuestion(r.Context(), q); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, q, http.StatusCreated)
}

func (h *QuestionHandler) UpdateQuestion(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["questionID"]

	var req questionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if err := req.validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	q, err := h.questionRepo.GetQuestion(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if q == nil {
		writeDomainError(w, repository.ErrNotFound)
		return
	}

	q.Question = req.Question
	q.Image = req.Image
	q.Options = req.Options
	q.CorrectAnswer = req.CorrectAnswer
	q.Kind = req.Kind
	if err := h.questionRepo.UpdateQuestion(r.Context(), q); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, q, http.StatusOK)
}

func (h *QuestionHandler) DeleteQuestion(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["questionID"]

	if err := h.questionRepo.DeleteQuestion(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListQuestions returns the full bank, correct answers included. Admin only;
// candidates get their questions through the quiz session.
func (h *QuestionHandler) ListQuestions(w http.ResponseWriter, r *http.Request) {
	kind := models.ProfileKind(r.URL.Query().Get("kind"))

	questions, err := h.questionRepo.ListQuestions(r.Context(), kind)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if questions == nil {
		questions = []models.QuizQuestion{}
	}
	writeJSON(w, map[string]any{"items": questions, "total": len(questions)}, http.StatusOK)
}

type importRequest struct {
	Questions []questionRequest `json:"questions"`
}

type importResponse struct {
	Imported int `json:"imported"`
}

// ImportQuestions bulk-loads a question batch. The payload is validated
// against the import schema before anything is written; a batch with any bad
// entry is rejected whole.
func (h *QuestionHandler) ImportQuestions(w http.ResponseWriter, r *http.Request) {
	p, _ := PrincipalFrom(r.Context())

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	if h.importSchema != nil {
		keyErrs, err := h.importSchema.ValidateBytes(ctx, body)
		if err != nil {
			http.Error(w, "Invalid request", http.StatusBadRequest)
			return
		}
		if len(keyErrs) > 0 {
			writeJSON(w, errorResponse{Error: keyErrs[0].Error()}, http.StatusBadRequest)
			return
		}
	}

	var req importRequest
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if len(req.Questions) == 0 {
		http.Error(w, "Empty batch", http.StatusBadRequest)
		return
	}
	for i, qr := range req.Questions {
		if err := qr.validate(); err != nil {
			http.Error(w, fmt.Sprintf("question %d: %v", i, err), http.StatusBadRequest)
			return
		}
	}

	now := time.Now().UTC().UnixMilli()
	for _, qr := range req.Questions {
		q := &models.QuizQuestion{
			ID:            uuid.NewString(),
			Question:      qr.Question,
			Image:         qr.Image,
			Options:       qr.Options,
			CorrectAnswer: qr.CorrectAnswer,
			Kind:          qr.Kind,
			CreatedBy:     p.UserID,
			Created:       now,
		}
		if err := h.questionRepo.CreateQuestion(ctx, q); err != nil {
			writeDomainError(w, err)
			return
		}
	}
	writeJSON(w, importResponse{Imported: len(req.Questions)}, http.StatusCreated)
}
