package repository

import (
	"context"
	"errors"

	"github.com/sholas-io/onboard/pkg/models"
)

// Repository interfaces for domain entities. These are the public contracts
// consumers should depend on; concrete implementations live under internal/.
//
// Lookup methods return (nil, nil) on a miss: an absent record is an empty
// state, not a fault. Writes surface real errors so callers can distinguish
// conflicts and illegal transitions from storage failures.

var (
	// ErrDuplicate signals a uniqueness violation (email, phone, repeat
	// application).
	ErrDuplicate = errors.New("record already exists")
	// ErrNotFound signals a write addressed to a record that does not exist.
	ErrNotFound = errors.New("record not found")
)

type UserRepo interface {
	CreateUser(ctx context.Context, u *models.User) error
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	// GetUserByLogin matches identifier against email or phone, restricted
	// to the given role.
	GetUserByLogin(ctx context.Context, identifier string, role models.Role) (*models.User, error)
	// DeleteUser removes a user record. Deleting a missing user is a no-op.
	DeleteUser(ctx context.Context, id string) error
}

type ProfileRepo interface {
	CreateProfile(ctx context.Context, p *models.Profile) error
	GetProfile(ctx context.Context, userID string) (*models.Profile, error)
	// UpdateProfile rewrites the record. Status changes must be legal
	// lifecycle transitions from the stored status or the update fails with
	// lifecycle.ErrIllegalTransition.
	UpdateProfile(ctx context.Context, p *models.Profile) error
	// ListProfiles filters by status and kind; the zero value of either
	// filter matches everything.
	ListProfiles(ctx context.Context, status models.Status, kind models.ProfileKind) ([]models.Profile, error)
}

type JobRepo interface {
	SaveJob(ctx context.Context, j *models.Job) error
	GetJob(ctx context.Context, id string) (*models.Job, error)
	ListJobs(ctx context.Context, status models.JobStatus) ([]models.Job, error)
	DeleteJob(ctx context.Context, id string) error
}

type QuestionRepo interface {
	CreateQuestion(ctx context.Context, q *models.QuizQuestion) error
	UpdateQuestion(ctx context.Context, q *models.QuizQuestion) error
	DeleteQuestion(ctx context.Context, id string) error
	GetQuestion(ctx context.Context, id string) (*models.QuizQuestion, error)
	ListQuestions(ctx context.Context, kind models.ProfileKind) ([]models.QuizQuestion, error)
}

type ApplicationRepo interface {
	CreateApplication(ctx context.Context, a *models.Application) error
	ListApplications(ctx context.Context) ([]models.Application, error)
	ListApplicationsByCandidate(ctx context.Context, candidateID string) ([]models.Application, error)
}
