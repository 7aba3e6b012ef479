// Package lifecycle implements the onboarding state machine for profiles.
//
// States advance incomplete -> quiz_pending -> documents_pending ->
// under_review -> approved -> employee. Admin actions may move a profile back
// to quiz_pending or documents_pending, and clearing the passport number
// during profile setup moves quiz_pending back to incomplete. Transition
// legality is enforced here and again at the repository boundary, so an
// out-of-band write cannot skip a guard.
package lifecycle

import (
	"errors"
	"strings"

	"github.com/sholas-io/onboard/pkg/models"
)

// PassScore is the minimum quiz percentage required to advance.
const PassScore = 70

var (
	ErrIllegalTransition  = errors.New("illegal status transition")
	ErrProfileLocked      = errors.New("profile can no longer be edited")
	ErrQuizNotPassed      = errors.New("quiz score below passing threshold")
	ErrAgreementsRequired = errors.New("all agreements must be accepted")
	ErrMissingDocuments   = errors.New("required documents missing")
	ErrReasonRequired     = errors.New("rejection reason is required")
)

// transitions lists the legal forward edges. Self-transitions are always
// allowed so that a record can be rewritten without a status change.
var transitions = map[models.Status][]models.Status{
	models.StatusIncomplete:       {models.StatusQuizPending},
	models.StatusQuizPending:      {models.StatusDocumentsPending, models.StatusIncomplete},
	models.StatusDocumentsPending: {models.StatusUnderReview, models.StatusQuizPending},
	models.StatusUnderReview:      {models.StatusApproved, models.StatusDocumentsPending},
	models.StatusApproved:         {models.StatusEmployee},
	models.StatusRejected:         nil,
	models.StatusEmployee:         nil,
}

// CanTransition reports whether moving from -> to is legal.
func CanTransition(from, to models.Status) bool {
	if from == to {
		return true
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ApplyProfileSave applies a candidate profile-setup save. A non-empty
// passport number advances incomplete -> quiz_pending; without one the
// profile stays incomplete. Edits are only permitted before the quiz has
// been passed.
func ApplyProfileSave(p *models.Profile) error {
	switch p.Status {
	case models.StatusIncomplete, models.StatusQuizPending, "":
	default:
		return ErrProfileLocked
	}
	if strings.TrimSpace(p.Passport.Number) != "" {
		p.Status = models.StatusQuizPending
	} else {
		p.Status = models.StatusIncomplete
	}
	return nil
}

// ApplyQuizResult records a quiz score. Retakes are allowed: the score is
// overwritten and the status is always re-evaluated against the threshold.
func ApplyQuizResult(p *models.Profile, score int) error {
	switch p.Status {
	case models.StatusQuizPending, models.StatusDocumentsPending:
	default:
		return ErrIllegalTransition
	}
	p.QuizScore = &score
	if score >= PassScore {
		p.Status = models.StatusDocumentsPending
	} else {
		p.Status = models.StatusQuizPending
	}
	return nil
}

// ApplyDocumentSubmission moves a profile to under_review once every
// agreement is accepted and every required document is uploaded. On failure
// the profile is left untouched.
func ApplyDocumentSubmission(p *models.Profile, now int64) error {
	if p.Status != models.StatusDocumentsPending {
		return ErrIllegalTransition
	}
	if !p.Agreements.All() {
		return ErrAgreementsRequired
	}
	if len(p.Documents.Missing()) > 0 {
		return ErrMissingDocuments
	}
	p.Status = models.StatusUnderReview
	p.DocsStatus = models.DocsPending
	p.DocsRejectionReason = ""
	p.CompletedAt = &now
	return nil
}

// ApproveQuiz is the admin sign-off on a passed quiz.
func ApproveQuiz(p *models.Profile) error {
	if p.Status != models.StatusQuizPending {
		return ErrIllegalTransition
	}
	if !p.QuizPassed(PassScore) {
		return ErrQuizNotPassed
	}
	p.Status = models.StatusDocumentsPending
	return nil
}

// ResetQuiz sends a profile back to quiz_pending regardless of score. Admins
// use it as a reject/redo signal.
func ResetQuiz(p *models.Profile) error {
	switch p.Status {
	case models.StatusQuizPending, models.StatusDocumentsPending:
	default:
		return ErrIllegalTransition
	}
	p.Status = models.StatusQuizPending
	return nil
}

// ApproveDocuments marks a reviewed submission as approved. The promotion to
// employee happens later through a background task.
func ApproveDocuments(p *models.Profile) error {
	if p.Status != models.StatusUnderReview {
		return ErrIllegalTransition
	}
	if !p.Agreements.All() {
		return ErrAgreementsRequired
	}
	if len(p.Documents.Missing()) > 0 {
		return ErrMissingDocuments
	}
	p.Status = models.StatusApproved
	p.DocsStatus = models.DocsApproved
	p.DocsRejectionReason = ""
	return nil
}

// RejectDocuments records a rejection with a mandatory reason and sends the
// profile back to documents_pending so the candidate can fix and resubmit.
// This is the single canonical rejection policy; nothing produces the
// terminal rejected status.
func RejectDocuments(p *models.Profile, reason string) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return ErrReasonRequired
	}
	switch p.Status {
	case models.StatusUnderReview, models.StatusDocumentsPending:
	default:
		return ErrIllegalTransition
	}
	p.Status = models.StatusDocumentsPending
	p.DocsStatus = models.DocsRejected
	p.DocsRejectionReason = reason
	return nil
}

// Promote finishes onboarding: approved -> employee.
func Promote(p *models.Profile) error {
	if p.Status != models.StatusApproved {
		return ErrIllegalTransition
	}
	p.Status = models.StatusEmployee
	return nil
}
