package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/sholas-io/onboard/pkg/models"
	"github.com/sholas-io/onboard/pkg/repository"
)

func (r *SQLiteRepo) CreateQuestion(ctx context.Context, q *models.QuizQuestion) error {
	if q == nil {
		return fmt.Errorf("question is nil")
	}

	opts, err := json.Marshal(q.Options)
	if err != nil {
		return fmt.Errorf("marshal options: %w", err)
	}

	_, err = r.conn.Exec(ctx,
		`INSERT INTO quiz_questions (id, question, image, options, correct_answer, kind, created_by, created) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		q.ID, q.Question, q.Image, string(opts), q.CorrectAnswer, string(q.Kind), q.CreatedBy, q.Created)
	if isUniqueViolation(err) {
		return repository.ErrDuplicate
	}
	return err
}

func (r *SQLiteRepo) UpdateQuestion(ctx context.Context, q *models.QuizQuestion) error {
	if q == nil {
		return fmt.Errorf("question is nil")
	}

	opts, err := json.Marshal(q.Options)
	if err != nil {
		return fmt.Errorf("marshal options: %w", err)
	}

	res, err := r.conn.Exec(ctx,
		`UPDATE quiz_questions SET question = ?, image = ?, options = ?, correct_answer = ?, kind = ? WHERE id = ?`,
		q.Question, q.Image, string(opts), q.CorrectAnswer, string(q.Kind), q.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepo) DeleteQuestion(ctx context.Context, id string) error {
	_, err := r.conn.Exec(ctx, `DELETE FROM quiz_questions WHERE id = ?`, id)
	return err
}

func (r *SQLiteRepo) GetQuestion(ctx context.Context, id string) (*models.QuizQuestion, error) {
	row := r.conn.QueryRow(ctx, `SELECT id, question, image, options, correct_answer, kind, created_by, created FROM quiz_questions WHERE id = ?`, id)
	return scanQuestionRow(row)
}

func (r *SQLiteRepo) ListQuestions(ctx context.Context, kind models.ProfileKind) ([]models.QuizQuestion, error) {
	q := `SELECT id, question, image, options, correct_answer, kind, created_by, created FROM quiz_questions`
	args := []any{}
	if kind != "" {
		q += ` WHERE kind = ?`
		args = append(args, string(kind))
	}
	q += ` ORDER BY created ASC, id ASC`

	rows, err := r.conn.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.QuizQuestion
	for rows.Next() {
		var qq models.QuizQuestion
		var kindStr, opts string
		if err := rows.Scan(&qq.ID, &qq.Question, &qq.Image, &opts, &qq.CorrectAnswer, &kindStr, &qq.CreatedBy, &qq.Created); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(opts), &qq.Options); err != nil {
			return nil, fmt.Errorf("unmarshal options: %w", err)
		}
		qq.Kind = models.ProfileKind(kindStr)
		out = append(out, qq)
	}
	return out, rows.Err()
}

func scanQuestionRow(row *sql.Row) (*models.QuizQuestion, error) {
	var q models.QuizQuestion
	var kind, opts string
	if err := row.Scan(&q.ID, &q.Question, &q.Image, &opts, &q.CorrectAnswer, &kind, &q.CreatedBy, &q.Created); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}

		return nil, err
	}
	if err := json.Unmarshal([]byte(opts), &q.Options); err != nil {
		return nil, fmt.Errorf("unmarshal options: %w", err)
	}
	q.Kind = models.ProfileKind(kind)

	return &q, nil
}
