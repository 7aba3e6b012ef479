package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/sholas-io/onboard/internal/lifecycle"
	"github.com/sholas-io/onboard/pkg/models"
	"github.com/sholas-io/onboard/pkg/repository"
)

func (r *SQLiteRepo) CreateProfile(ctx context.Context, p *models.Profile) error {
	if p == nil {
		return fmt.Errorf("profile is nil")
	}
	if p.Status == "" {
		p.Status = models.StatusIncomplete
	}
	if p.DocsStatus == "" {
		p.DocsStatus = models.DocsPending
	}

	personal, passport, experience, agreements, documents, err := marshalProfileBlobs(p)
	if err != nil {
		return err
	}

	_, err = r.conn.Exec(ctx,
		`INSERT INTO profiles (user_id, kind, personal, passport, experience, quiz_score, agreements, documents, status, docs_status, docs_rejection_reason, completed_at, updated)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.UserID, string(p.Kind), personal, passport, experience, p.QuizScore, agreements, documents,
		string(p.Status), string(p.DocsStatus), p.DocsRejectionReason, p.CompletedAt, now())
	if isUniqueViolation(err) {
		return repository.ErrDuplicate
	}
	return err
}

func (r *SQLiteRepo) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	rows, err := r.conn.Query(ctx, profileSelect+` WHERE user_id = ?`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	p, err := scanProfile(rows)
	if err != nil {
		return nil, err
	}
	return p, rows.Err()
}

// UpdateProfile rewrites the whole record with a compare-and-set on the
// stored status, so an out-of-band write cannot skip a lifecycle guard and a
// rapid double-submit cannot lose an update.
func (r *SQLiteRepo) UpdateProfile(ctx context.Context, p *models.Profile) error {
	if p == nil {
		return fmt.Errorf("profile is nil")
	}

	cur, err := r.GetProfile(ctx, p.UserID)
	if err != nil {
		return err
	}
	if cur == nil {
		return repository.ErrNotFound
	}
	if !lifecycle.CanTransition(cur.Status, p.Status) {
		return lifecycle.ErrIllegalTransition
	}

	personal, passport, experience, agreements, documents, err := marshalProfileBlobs(p)
	if err != nil {
		return err
	}

	res, err := r.conn.Exec(ctx,
		`UPDATE profiles SET kind = ?, personal = ?, passport = ?, experience = ?, quiz_score = ?, agreements = ?, documents = ?, status = ?, docs_status = ?, docs_rejection_reason = ?, completed_at = ?, updated = ?
		 WHERE user_id = ? AND status = ?`,
		string(p.Kind), personal, passport, experience, p.QuizScore, agreements, documents,
		string(p.Status), string(p.DocsStatus), p.DocsRejectionReason, p.CompletedAt, now(),
		p.UserID, string(cur.Status))
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// status moved underneath us; the caller must re-read and retry
		return lifecycle.ErrIllegalTransition
	}
	return nil
}

func (r *SQLiteRepo) ListProfiles(ctx context.Context, status models.Status, kind models.ProfileKind) ([]models.Profile, error) {
	q := profileSelect + ` WHERE 1=1`
	args := []any{}
	if status != "" {
		q += ` AND status = ?`
		args = append(args, string(status))
	}
	if kind != "" {
		q += ` AND kind = ?`
		args = append(args, string(kind))
	}
	q += ` ORDER BY updated DESC`

	rows, err := r.conn.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

const profileSelect = `SELECT user_id, kind, personal, passport, experience, quiz_score, agreements, documents, status, docs_status, docs_rejection_reason, completed_at, updated FROM profiles`

func marshalProfileBlobs(p *models.Profile) (personal, passport, experience, agreements, documents string, err error) {
	blobs := []struct {
		v   any
		dst *string
	}{
		{p.Personal, &personal},
		{p.Passport, &passport},
		{p.Experience, &experience},
		{p.Agreements, &agreements},
		{p.Documents, &documents},
	}
	for _, b := range blobs {
		raw, mErr := json.Marshal(b.v)
		if mErr != nil {
			err = fmt.Errorf("marshal profile blob: %w", mErr)
			return
		}
		*b.dst = string(raw)
	}
	return
}

func scanProfile(rows *sql.Rows) (*models.Profile, error) {
	var p models.Profile
	var kind, status, docsStatus string
	var personal, passport, experience, agreements, documents string
	var quizScore sql.NullInt64
	var completedAt sql.NullInt64

	if err := rows.Scan(&p.UserID, &kind, &personal, &passport, &experience, &quizScore,
		&agreements, &documents, &status, &docsStatus, &p.DocsRejectionReason, &completedAt, &p.Updated); err != nil {
		return nil, err
	}

	p.Kind = models.ProfileKind(kind)
	p.Status = models.Status(status)
	p.DocsStatus = models.DocsStatus(docsStatus)
	if quizScore.Valid {
		v := int(quizScore.Int64)
		p.QuizScore = &v
	}
	if completedAt.Valid {
		v := completedAt.Int64
		p.CompletedAt = &v
	}

	// Older records may miss newly added fields; unmarshal leaves them zero.
	for _, b := range []struct {
		raw string
		dst any
	}{
		{personal, &p.Personal},
		{passport, &p.Passport},
		{experience, &p.Experience},
		{agreements, &p.Agreements},
		{documents, &p.Documents},
	} {
		if b.raw == "" {
			continue
		}
		if err := json.Unmarshal([]byte(b.raw), b.dst); err != nil {
			return nil, fmt.Errorf("unmarshal profile blob: %w", err)
		}
	}

	return &p, nil
}
