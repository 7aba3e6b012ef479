package api_test

import (
	"net/http"
	"testing"

	"github.com/gorilla/mux"
	"github.com/sholas-io/onboard/api"
	dbembed "github.com/sholas-io/onboard/db"
	"github.com/sholas-io/onboard/pkg/models"
	"github.com/sholas-io/onboard/pkg/repository/mock"
)

func questionSetup(t *testing.T, mocks *mock.Mocks) http.Handler {
	t.Helper()
	schema, err := dbembed.SeedFiles.ReadFile("seed/question_import_v1.json")
	if err != nil {
		t.Fatalf("read import schema: %v", err)
	}
	handler, err := api.NewQuestionHandler(mocks.Questions, schema)
	if err != nil {
		t.Fatalf("new question handler: %v", err)
	}
	return newAdminRouter(func(r *mux.Router) {
		r.HandleFunc("/v1/admin/questions", handler.ListQuestions).Methods("GET")
		r.HandleFunc("/v1/admin/questions", handler.CreateQuestion).Methods("POST")
		r.HandleFunc("/v1/admin/questions/import", handler.ImportQuestions).Methods("POST")
		r.HandleFunc("/v1/admin/questions/{questionID}", handler.UpdateQuestion).Methods("PUT")
		r.HandleFunc("/v1/admin/questions/{questionID}", handler.DeleteQuestion).Methods("DELETE")
	})
}

func questionBody(kind string, correct int) map[string]any {
	return map[string]any{
		"question":       "Minimum following distance on highways?",
		"options":        []string{"1 second", "3 seconds", "10 seconds"},
		"correct_answer": correct,
		"kind":           kind,
	}
}

func TestQuestionCRUD(t *testing.T) {
	mocks := mock.NewMocks()
	r := questionSetup(t, mocks)
	tok := adminToken(t)

	// create
	w := doJSON(t, r, http.MethodPost, "/v1/admin/questions", tok, questionBody("driver", 1))
	if w.Code != http.StatusCreated {
		t.Fatalf("create: expected 201 got %d: %s", w.Code, w.Body.String())
	}
	var q models.QuizQuestion
	decodeBody(t, w, &q)
	if q.ID == "" || q.Kind != models.KindDriver || q.CreatedBy != api.AdminUserID {
		t.Fatalf("unexpected question %#v", q)
	}

	// validation failures
	for name, body := range map[string]map[string]any{
		"out of range answer": questionBody("driver", 3),
		"negative answer":     questionBody("driver", -1),
		"bad kind":            questionBody("cook", 0),
		"too few options": {
			"question":       "q",
			"options":        []string{"only one"},
			"correct_answer": 0,
			"kind":           "driver",
		},
	} {
		w = doJSON(t, r, http.MethodPost, "/v1/admin/questions", tok, body)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400 got %d", name, w.Code)
		}
	}

	// update
	upd := questionBody("welder", 2)
	w = doJSON(t, r, http.MethodPut, "/v1/admin/questions/"+q.ID, tok, upd)
	if w.Code != http.StatusOK {
		t.Fatalf("update: expected 200 got %d", w.Code)
	}
	var got models.QuizQuestion
	decodeBody(t, w, &got)
	if got.Kind != models.KindWelder || got.CorrectAnswer != 2 {
		t.Fatalf("update not applied: %#v", got)
	}

	w = doJSON(t, r, http.MethodPut, "/v1/admin/questions/ghost", tok, upd)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", w.Code)
	}

	// list includes correct answers for admins
	w = doJSON(t, r, http.MethodGet, "/v1/admin/questions?kind=welder", tok, nil)
	var list struct {
		Items []models.QuizQuestion `json:"items"`
		Total int                   `json:"total"`
	}
	decodeBody(t, w, &list)
	if list.Total != 1 || list.Items[0].CorrectAnswer != 2 {
		t.Fatalf("unexpected list %+v", list)
	}

	// delete
	w = doJSON(t, r, http.MethodDelete, "/v1/admin/questions/"+q.ID, tok, nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("delete: expected 204 got %d", w.Code)
	}
}

func TestImportQuestions(t *testing.T) {
	tok := adminToken(t)

	t.Run("valid batch", func(t *testing.T) {
		mocks := mock.NewMocks()
		r := questionSetup(t, mocks)

		body := map[string]any{"questions": []map[string]any{
			questionBody("driver", 0),
			{
				"question":       "Which gas shields a TIG arc?",
				"options":        []string{"Argon", "Oxygen"},
				"correct_answer": 0,
				"kind":           "welder",
			},
		}}
		w := doJSON(t, r, http.MethodPost, "/v1/admin/questions/import", tok, body)
		if w.Code != http.StatusCreated {
			t.Fatalf("expected 201 got %d: %s", w.Code, w.Body.String())
		}
		var res struct {
			Imported int `json:"imported"`
		}
		decodeBody(t, w, &res)
		if res.Imported != 2 || len(mocks.Questions.Stored) != 2 {
			t.Fatalf("expected 2 imported, got %d / %d stored", res.Imported, len(mocks.Questions.Stored))
		}
	})

	t.Run("schema rejects bad kind", func(t *testing.T) {
		mocks := mock.NewMocks()
		r := questionSetup(t, mocks)

		body := map[string]any{"questions": []map[string]any{questionBody("pilot", 0)}}
		w := doJSON(t, r, http.MethodPost, "/v1/admin/questions/import", tok, body)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 got %d", w.Code)
		}
		if len(mocks.Questions.Stored) != 0 {
			t.Fatalf("rejected batch must write nothing")
		}
	})

	t.Run("schema rejects missing questions key", func(t *testing.T) {
		mocks := mock.NewMocks()
		r := questionSetup(t, mocks)

		w := doJSON(t, r, http.MethodPost, "/v1/admin/questions/import", tok, map[string]any{"items": []any{}})
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 got %d", w.Code)
		}
	})

	t.Run("whole batch rejected on one bad entry", func(t *testing.T) {
		mocks := mock.NewMocks()
		r := questionSetup(t, mocks)

		// second entry's answer is out of range, which only the handler
		// check catches
		body := map[string]any{"questions": []map[string]any{
			questionBody("driver", 0),
			questionBody("driver", 9),
		}}
		w := doJSON(t, r, http.MethodPost, "/v1/admin/questions/import", tok, body)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 got %d", w.Code)
		}
		if len(mocks.Questions.Stored) != 0 {
			t.Fatalf("rejected batch must write nothing, got %d", len(mocks.Questions.Stored))
		}
	})
}
