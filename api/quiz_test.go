package api_test

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/sholas-io/onboard/api"
	"github.com/sholas-io/onboard/pkg/models"
	"github.com/sholas-io/onboard/pkg/repository/mock"
)

func seedQuestions(m *mock.Mocks, kind models.ProfileKind, n int) {
	for i := 0; i < n; i++ {
		m.Questions.Stored = append(m.Questions.Stored, &models.QuizQuestion{
			ID:            fmt.Sprintf("%s-q%d", kind, i),
			Question:      fmt.Sprintf("question %d", i),
			Options:       []string{"a", "b", "c", "d"},
			CorrectAnswer: i % 4,
			Kind:          kind,
		})
	}
}

func quizSetup(t *testing.T, mocks *mock.Mocks) (http.Handler, *api.QuizHandler) {
	t.Helper()
	handler := api.NewQuizHandler(mocks.Profiles, mocks.Questions, time.Minute, nil)
	t.Cleanup(func() { handler.Sessions().Close() })
	r := newProtectedRouter(func(r *mux.Router) {
		r.HandleFunc("/v1/quiz/session", handler.Start).Methods("POST")
		r.HandleFunc("/v1/quiz/session", handler.Questions).Methods("GET")
		r.HandleFunc("/v1/quiz/session/answer", handler.Answer).Methods("POST")
		r.HandleFunc("/v1/quiz/session/submit", handler.Submit).Methods("POST")
	})
	return r, handler
}

func readyProfile(userID string) *models.Profile {
	return &models.Profile{
		UserID:   userID,
		Kind:     models.KindDriver,
		Personal: models.Personal{FirstName: "Ravi"},
		Passport: models.Passport{Number: "P1"},
		Status:   models.StatusQuizPending,
	}
}

func TestQuizStartGuards(t *testing.T) {
	tok := signToken(t, "u1", "a@example.com", models.RoleCandidate)

	t.Run("incomplete profile", func(t *testing.T) {
		mocks := mock.NewMocks()
		mocks.Profiles.Seed(&models.Profile{UserID: "u1", Status: models.StatusIncomplete})
		seedQuestions(mocks, models.KindDriver, 4)
		r, _ := quizSetup(t, mocks)

		w := doJSON(t, r, http.MethodPost, "/v1/quiz/session", tok, nil)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("wrong lifecycle state", func(t *testing.T) {
		mocks := mock.NewMocks()
		p := readyProfile("u1")
		p.Status = models.StatusUnderReview
		mocks.Profiles.Seed(p)
		seedQuestions(mocks, models.KindDriver, 4)
		r, _ := quizSetup(t, mocks)

		w := doJSON(t, r, http.MethodPost, "/v1/quiz/session", tok, nil)
		if w.Code != http.StatusConflict {
			t.Fatalf("expected 409 got %d", w.Code)
		}
	})

	t.Run("empty question bank", func(t *testing.T) {
		mocks := mock.NewMocks()
		mocks.Profiles.Seed(readyProfile("u1"))
		r, _ := quizSetup(t, mocks)

		w := doJSON(t, r, http.MethodPost, "/v1/quiz/session", tok, nil)
		if w.Code != http.StatusConflict {
			t.Fatalf("expected 409 got %d", w.Code)
		}
	})

	t.Run("welder gets the welder bank", func(t *testing.T) {
		mocks := mock.NewMocks()
		p := readyProfile("u1")
		p.Kind = models.KindWelder
		mocks.Profiles.Seed(p)
		seedQuestions(mocks, models.KindDriver, 4)
		// no welder questions seeded
		r, _ := quizSetup(t, mocks)

		w := doJSON(t, r, http.MethodPost, "/v1/quiz/session", tok, nil)
		if w.Code != http.StatusConflict {
			t.Fatalf("expected 409 for empty welder bank, got %d", w.Code)
		}
	})
}

func TestQuizFlow(t *testing.T) {
	mocks := mock.NewMocks()
	mocks.Profiles.Seed(readyProfile("u1"))
	seedQuestions(mocks, models.KindDriver, 10)
	r, _ := quizSetup(t, mocks)
	tok := signToken(t, "u1", "a@example.com", models.RoleCandidate)

	// start
	w := doJSON(t, r, http.MethodPost, "/v1/quiz/session", tok, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("start: expected 201 got %d: %s", w.Code, w.Body.String())
	}
	if strings.Contains(w.Body.String(), "correct_answer") {
		t.Fatalf("correct answers leaked to candidate: %s", w.Body.String())
	}
	var state struct {
		Remaining int `json:"remaining"`
		Questions []struct {
			ID      string   `json:"id"`
			Options []string `json:"options"`
		} `json:"questions"`
	}
	decodeBody(t, w, &state)
	if len(state.Questions) != 10 || state.Remaining <= 0 {
		t.Fatalf("unexpected session state %+v", state)
	}

	// answer 7 of 10 correctly (correct answer is i % 4 by construction)
	for i := 0; i < 10; i++ {
		opt := i % 4
		if i >= 7 {
			opt = (i + 1) % 4
		}
		w = doJSON(t, r, http.MethodPost, "/v1/quiz/session/answer", tok, map[string]int{"question": i, "option": opt})
		if w.Code != http.StatusOK {
			t.Fatalf("answer %d: expected 200 got %d: %s", i, w.Code, w.Body.String())
		}
	}

	// out-of-range answers
	w = doJSON(t, r, http.MethodPost, "/v1/quiz/session/answer", tok, map[string]int{"question": 99, "option": 0})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad question, got %d", w.Code)
	}
	w = doJSON(t, r, http.MethodPost, "/v1/quiz/session/answer", tok, map[string]int{"question": 0, "option": 9})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad option, got %d", w.Code)
	}

	// submit
	w = doJSON(t, r, http.MethodPost, "/v1/quiz/session/submit", tok, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("submit: expected 200 got %d: %s", w.Code, w.Body.String())
	}
	var res struct {
		Correct int           `json:"correct"`
		Percent int           `json:"percent"`
		Passed  bool          `json:"passed"`
		Status  models.Status `json:"status"`
	}
	decodeBody(t, w, &res)
	if res.Correct != 7 || res.Percent != 70 || !res.Passed {
		t.Fatalf("unexpected result %+v", res)
	}
	if res.Status != models.StatusDocumentsPending {
		t.Fatalf("expected documents_pending, got %s", res.Status)
	}

	// persisted
	stored, _ := mocks.Profiles.GetProfile(context.Background(), "u1")
	if stored.QuizScore == nil || *stored.QuizScore != 70 || stored.Status != models.StatusDocumentsPending {
		t.Fatalf("result not persisted: %#v", stored)
	}

	// session is gone
	w = doJSON(t, r, http.MethodGet, "/v1/quiz/session", tok, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after submit, got %d", w.Code)
	}
}

func TestQuizFailedAttemptAllowsRetake(t *testing.T) {
	mocks := mock.NewMocks()
	mocks.Profiles.Seed(readyProfile("u1"))
	seedQuestions(mocks, models.KindDriver, 10)
	r, _ := quizSetup(t, mocks)
	tok := signToken(t, "u1", "a@example.com", models.RoleCandidate)

	// submit with nothing answered: 0 percent, fail
	w := doJSON(t, r, http.MethodPost, "/v1/quiz/session", tok, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("start: %d", w.Code)
	}
	w = doJSON(t, r, http.MethodPost, "/v1/quiz/session/submit", tok, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("submit: %d: %s", w.Code, w.Body.String())
	}
	var res struct {
		Percent int           `json:"percent"`
		Passed  bool          `json:"passed"`
		Status  models.Status `json:"status"`
	}
	decodeBody(t, w, &res)
	if res.Passed || res.Status != models.StatusQuizPending {
		t.Fatalf("expected failed attempt to hold quiz_pending, got %+v", res)
	}

	// retake is permitted
	w = doJSON(t, r, http.MethodPost, "/v1/quiz/session", tok, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("retake: expected 201 got %d", w.Code)
	}
}

func TestQuizNoSession(t *testing.T) {
	mocks := mock.NewMocks()
	mocks.Profiles.Seed(readyProfile("u1"))
	r, _ := quizSetup(t, mocks)
	tok := signToken(t, "u1", "a@example.com", models.RoleCandidate)

	for _, probe := range []struct {
		method, path string
	}{
		{http.MethodGet, "/v1/quiz/session"},
		{http.MethodPost, "/v1/quiz/session/submit"},
	} {
		w := doJSON(t, r, probe.method, probe.path, tok, nil)
		if w.Code != http.StatusNotFound {
			t.Fatalf("%s %s: expected 404 got %d", probe.method, probe.path, w.Code)
		}
	}

	w := doJSON(t, r, http.MethodPost, "/v1/quiz/session/answer", tok, map[string]int{"question": 0, "option": 0})
	if w.Code != http.StatusNotFound {
		t.Fatalf("answer without session: expected 404 got %d", w.Code)
	}
}
