package db

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// Migrate applies migrations and optional seed files found in the repository.
// It creates a `schema_migrations` table to track applied migrations and applies
// any SQL files in `db/migrations/` that have not yet been recorded. Seed files
// in seedFS are applied idempotently where possible.
func Migrate(ctx context.Context, d *DB, migrationFS embed.FS, seedFS embed.FS) error {
	// ensure migrations table exists
	if _, err := d.Exec(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (version TEXT PRIMARY KEY, applied INTEGER NOT NULL)`); err != nil {
		return fmt.Errorf("ensure schema_migrations: %w", err)
	}
	// embedded migrations are provided under "migrations/..." in the top-level db package
	migDir := "migrations"

	entries, err := fs.ReadDir(migrationFS, migDir)
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}

	// collect .sql files and sort
	files := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasSuffix(strings.ToLower(name), ".sql") {
			files = append(files, name)
		}
	}
	sort.Strings(files)

	for _, fname := range files {
		// use filename (without extension) as migration version key
		version := strings.TrimSuffix(fname, path.Ext(fname))

		// check if already applied
		var count int
		row := d.QueryRow(ctx, `SELECT COUNT(1) FROM schema_migrations WHERE version = ?`, version)
		if err := row.Scan(&count); err != nil {
			return fmt.Errorf("scan migration applied count: %w", err)
		}
		if count > 0 {
			// already applied
			continue
		}

		// read and execute migration from embedded FS (use posix path.Join)
		p := path.Join(migDir, fname)
		b, err := fs.ReadFile(migrationFS, p)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", fname, err)
		}
		if _, err := d.Exec(ctx, string(b)); err != nil {
			return fmt.Errorf("exec migration %s: %w", fname, err)
		}

		// record migration
		if _, err := d.Exec(ctx, `INSERT INTO schema_migrations (version, applied) VALUES (?, strftime('%s','now'))`, version); err != nil {
			return fmt.Errorf("record migration %s: %w", fname, err)
		}
	}

	// seed the default question bank only when no questions exist yet
	return seedQuestions(ctx, d, seedFS)
}

type seedQuestion struct {
	Question      string   `json:"question"`
	Image         string   `json:"image,omitempty"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correct_answer"`
	Kind          string   `json:"kind"`
}

func seedQuestions(ctx context.Context, d *DB, seedFS embed.FS) error {
	b, err := fs.ReadFile(seedFS, path.Join("seed", "questions_driver_v1.json"))
	if err != nil {
		// seed file is optional
		return nil
	}

	var count int
	if err := d.QueryRow(ctx, `SELECT COUNT(1) FROM quiz_questions`).Scan(&count); err != nil {
		return fmt.Errorf("count quiz questions: %w", err)
	}
	if count > 0 {
		return nil
	}

	var questions []seedQuestion
	if err := json.Unmarshal(b, &questions); err != nil {
		return fmt.Errorf("parse question seed: %w", err)
	}

	for _, q := range questions {
		opts, err := json.Marshal(q.Options)
		if err != nil {
			return fmt.Errorf("marshal seed options: %w", err)
		}
		kind := q.Kind
		if kind == "" {
			kind = "driver"
		}
		if _, err := d.Exec(ctx,
			`INSERT INTO quiz_questions (id, question, image, options, correct_answer, kind, created_by, created) VALUES (?, ?, ?, ?, ?, ?, 'seed', strftime('%s','now'))`,
			uuid.NewString(), q.Question, q.Image, string(opts), q.CorrectAnswer, kind,
		); err != nil {
			return fmt.Errorf("seed question exec: %w", err)
		}
	}

	return nil
}
