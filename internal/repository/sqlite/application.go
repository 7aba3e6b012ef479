package sqlite

import (
	"context"
	"fmt"

	"github.com/sholas-io/onboard/pkg/models"
	"github.com/sholas-io/onboard/pkg/repository"
)

func (r *SQLiteRepo) CreateApplication(ctx context.Context, a *models.Application) error {
	if a == nil {
		return fmt.Errorf("application is nil")
	}
	if a.Status == "" {
		a.Status = models.ApplicationPending
	}

	_, err := r.conn.Exec(ctx,
		`INSERT INTO applications (id, job_id, candidate_id, applied, status) VALUES (?, ?, ?, ?, ?)`,
		a.ID, a.JobID, a.CandidateID, a.Applied, string(a.Status))
	if isUniqueViolation(err) {
		return repository.ErrDuplicate
	}
	return err
}

func (r *SQLiteRepo) ListApplications(ctx context.Context) ([]models.Application, error) {
	return r.listApplications(ctx, `SELECT id, job_id, candidate_id, applied, status FROM applications ORDER BY applied DESC`)
}

func (r *SQLiteRepo) ListApplicationsByCandidate(ctx context.Context, candidateID string) ([]models.Application, error) {
	return r.listApplications(ctx, `SELECT id, job_id, candidate_id, applied, status FROM applications WHERE candidate_id = ? ORDER BY applied DESC`, candidateID)
}

func (r *SQLiteRepo) listApplications(ctx context.Context, q string, args ...any) ([]models.Application, error) {
	rows, err := r.conn.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Application
	for rows.Next() {
		var a models.Application
		var status string
		if err := rows.Scan(&a.ID, &a.JobID, &a.CandidateID, &a.Applied, &status); err != nil {
			return nil, err
		}
		a.Status = models.ApplicationStatus(status)
		out = append(out, a)
	}
	return out, rows.Err()
}
