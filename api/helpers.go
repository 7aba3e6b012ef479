package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"log/slog"

	"github.com/sholas-io/onboard/internal/lifecycle"
	"github.com/sholas-io/onboard/internal/quiz"
	"github.com/sholas-io/onboard/pkg/repository"
)

func writeJSON(w http.ResponseWriter, v any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("encode response", slog.Any("err", err))
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeDomainError maps domain and persistence errors onto HTTP statuses.
// Validation problems are 400, conflicts and illegal transitions 409,
// missing records 404, everything else a 500 with a generic message.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, lifecycle.ErrAgreementsRequired),
		errors.Is(err, lifecycle.ErrMissingDocuments),
		errors.Is(err, lifecycle.ErrReasonRequired),
		errors.Is(err, lifecycle.ErrQuizNotPassed),
		errors.Is(err, quiz.ErrBadQuestion),
		errors.Is(err, quiz.ErrBadOption):
		writeJSON(w, errorResponse{Error: err.Error()}, http.StatusBadRequest)
	case errors.Is(err, lifecycle.ErrIllegalTransition),
		errors.Is(err, lifecycle.ErrProfileLocked),
		errors.Is(err, repository.ErrDuplicate),
		errors.Is(err, quiz.ErrSessionClosed):
		writeJSON(w, errorResponse{Error: err.Error()}, http.StatusConflict)
	case errors.Is(err, repository.ErrNotFound),
		errors.Is(err, quiz.ErrNoSession):
		writeJSON(w, errorResponse{Error: err.Error()}, http.StatusNotFound)
	default:
		logger.Error("internal error", slog.Any("err", err))
		writeJSON(w, errorResponse{Error: "internal error"}, http.StatusInternalServerError)
	}
}
