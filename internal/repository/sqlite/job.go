package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sholas-io/onboard/pkg/models"
)

func (r *SQLiteRepo) SaveJob(ctx context.Context, j *models.Job) error {
	if j == nil {
		return fmt.Errorf("job is nil")
	}
	if j.Status == "" {
		j.Status = models.JobActive
	}

	// upsert: replace the posting when the id already exists
	_, err := r.conn.Exec(ctx,
		`INSERT INTO jobs (id, title, description, requirements, location, salary, created_by, created, status) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET title = excluded.title, description = excluded.description, requirements = excluded.requirements, location = excluded.location, salary = excluded.salary, status = excluded.status`,
		j.ID, j.Title, j.Description, j.Requirements, j.Location, j.Salary, j.CreatedBy, j.Created, string(j.Status))
	return err
}

func (r *SQLiteRepo) GetJob(ctx context.Context, id string) (*models.Job, error) {
	row := r.conn.QueryRow(ctx, `SELECT id, title, description, requirements, location, salary, created_by, created, status FROM jobs WHERE id = ?`, id)
	var j models.Job
	var status string
	if err := row.Scan(&j.ID, &j.Title, &j.Description, &j.Requirements, &j.Location, &j.Salary, &j.CreatedBy, &j.Created, &status); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}

		return nil, err
	}
	j.Status = models.JobStatus(status)

	return &j, nil
}

func (r *SQLiteRepo) ListJobs(ctx context.Context, status models.JobStatus) ([]models.Job, error) {
	q := `SELECT id, title, description, requirements, location, salary, created_by, created, status FROM jobs`
	args := []any{}
	if status != "" {
		q += ` WHERE status = ?`
		args = append(args, string(status))
	}
	q += ` ORDER BY created DESC`

	rows, err := r.conn.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Job
	for rows.Next() {
		var j models.Job
		var s string
		if err := rows.Scan(&j.ID, &j.Title, &j.Description, &j.Requirements, &j.Location, &j.Salary, &j.CreatedBy, &j.Created, &s); err != nil {
			return nil, err
		}
		j.Status = models.JobStatus(s)
		out = append(out, j)
	}
	return out, rows.Err()
}

func (r *SQLiteRepo) DeleteJob(ctx context.Context, id string) error {
	_, err := r.conn.Exec(ctx, `DELETE FROM jobs WHERE id = ?`, id)
	return err
}
