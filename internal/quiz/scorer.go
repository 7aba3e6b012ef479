// Package quiz grades multiple-choice submissions and runs timed quiz
// sessions with a hard wall-clock deadline.
package quiz

import (
	"math"

	"github.com/sholas-io/onboard/internal/lifecycle"
	"github.com/sholas-io/onboard/pkg/models"
)

// Unanswered marks a question with no selected option. It never matches a
// correct-answer index, so unanswered questions count as wrong.
const Unanswered = -1

// Result is the outcome of grading one submission.
type Result struct {
	Correct int  `json:"correct"`
	Total   int  `json:"total"`
	Percent int  `json:"percent"`
	Passed  bool `json:"passed"`
}

// Score grades selected option indices against the question bank. selected[i]
// answers questions[i]; missing trailing entries count as unanswered.
func Score(selected []int, questions []models.QuizQuestion) Result {
	res := Result{Total: len(questions)}
	if res.Total == 0 {
		return res
	}
	for i, q := range questions {
		if i < len(selected) && selected[i] == q.CorrectAnswer {
			res.Correct++
		}
	}
	res.Percent = int(math.Round(float64(res.Correct) / float64(res.Total) * 100))
	res.Passed = res.Percent >= lifecycle.PassScore
	return res
}
