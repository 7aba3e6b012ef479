package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"log/slog"

	"github.com/sholas-io/onboard/internal/lifecycle"
	"github.com/sholas-io/onboard/internal/quiz"
	"github.com/sholas-io/onboard/pkg/models"
	"github.com/sholas-io/onboard/pkg/repository"
)

type QuizHandler struct {
	profileRepo  repository.ProfileRepo
	questionRepo repository.QuestionRepo
	sessions     *quiz.Manager
}

// NewQuizHandler wires the timed session manager to the profile store so
// deadline-forced submits persist through the same lifecycle path as manual
// ones.
func NewQuizHandler(pr repository.ProfileRepo, qr repository.QuestionRepo, duration time.Duration, l *slog.Logger) *QuizHandler {
	h := &QuizHandler{profileRepo: pr, questionRepo: qr}
	h.sessions = quiz.NewManager(duration, h.persistExpired, l)
	return h
}

// Sessions exposes the manager so the server can release timers on shutdown.
func (h *QuizHandler) Sessions() *quiz.Manager { return h.sessions }

// quizQuestionView is a question as shown to candidates: no correct answer.
type quizQuestionView struct {
	ID       string   `json:"id"`
	Question string   `json:"question"`
	Image    string   `json:"image,omitempty"`
	Options  []string `json:"options"`
}

type quizStateResponse struct {
	Remaining int                `json:"remaining"`
	Questions []quizQuestionView `json:"questions"`
}

// Start opens a fresh attempt. The profile must be set up (name and passport
// number) and in a state where taking the quiz is meaningful. Starting again
// discards any previous unfinished attempt.
func (h *QuizHandler) Start(w http.ResponseWriter, r *http.Request) {
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
	if profile.Personal.FirstName == "" || profile.Passport.Number == "" {
		http.Error(w, "Complete your profile first", http.StatusBadRequest)
		return
	}
	switch profile.Status {
	case models.StatusQuizPending, models.StatusDocumentsPending:
	default:
		writeDomainError(w, lifecycle.ErrIllegalTransition)
		return
	}

	questions, err := h.questionRepo.ListQuestions(r.Context(), profile.Kind)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if len(questions) == 0 {
		http.Error(w, "No questions available", http.StatusConflict)
		return
	}

	s := h.sessions.Start(p.UserID, questions)
	writeJSON(w, quizStateResponse{Remaining: s.Remaining(), Questions: viewQuestions(s.Questions())}, http.StatusCreated)
}

// Questions returns the active attempt's questions and remaining time.
func (h *QuizHandler) Questions(w http.ResponseWriter, r *http.Request) {
	p, _ := PrincipalFrom(r.Context())

	s, err := h.sessions.Get(p.UserID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, quizStateResponse{Remaining: s.Remaining(), Questions: viewQuestions(s.Questions())}, http.StatusOK)
}

type answerRequest struct {
	Question int `json:"question"`
	Option   int `json:"option"`
}

// Answer records one selected option; selecting again overwrites.
func (h *QuizHandler) Answer(w http.ResponseWriter, r *http.Request) {
	p, _ := PrincipalFrom(r.Context())

	var req answerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	s, err := h.sessions.Get(p.UserID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if err := s.Answer(req.Question, req.Option); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, map[string]any{"remaining": s.Remaining()}, http.StatusOK)
}

type submitResponse struct {
	quiz.Result
	Status models.Status `json:"status"`
}

// Submit grades the attempt and applies the lifecycle transition: pass moves
// the profile to documents_pending, fail holds it at quiz_pending. Retakes
// overwrite the stored score.
func (h *QuizHandler) Submit(w http.ResponseWriter, r *http.Request) {
	p, _ := PrincipalFrom(r.Context())

	res, err := h.sessions.Submit(p.UserID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	profile, err := h.applyResult(r.Context(), p.UserID, res)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, submitResponse{Result: res, Status: profile.Status}, http.StatusOK)
}

func (h *QuizHandler) applyResult(ctx context.Context, userID string, res quiz.Result) (*models.Profile, error) {
	profile, err := h.profileRepo.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, repository.ErrNotFound
	}
	if err := lifecycle.ApplyQuizResult(profile, res.Percent); err != nil {
		return nil, err
	}
	if err := h.profileRepo.UpdateProfile(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// persistExpired runs on the session timer goroutine when the deadline
// forces a submit.
func (h *QuizHandler) persistExpired(userID string, res quiz.Result) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := h.applyResult(ctx, userID, res); err != nil {
		logger.Error("persist expired quiz result",
			slog.String("user_id", userID),
			slog.Any("err", err),
		)
	}
}

func viewQuestions(qs []models.QuizQuestion) []quizQuestionView {
	out := make([]quizQuestionView, len(qs))
	for i, q := range qs {
		out[i] = quizQuestionView{ID: q.ID, Question: q.Question, Image: q.Image, Options: q.Options}
	}
	return out
}
