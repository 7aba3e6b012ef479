package db_test

import (
	"context"
	"testing"

	dbembed "github.com/sholas-io/onboard/db"
	"github.com/sholas-io/onboard/internal/db"
)

func openMigrated(t *testing.T) (*db.DB, func()) {
	t.Helper()
	ctx := context.Background()
	d, err := db.New(ctx, "file::memory:?cache=shared")
	if err != nil {
		t.Fatalf("db.New: %v", err)
	}
	if err := db.Migrate(ctx, d, dbembed.Migrations, dbembed.SeedFiles); err != nil {
		d.Close()
		t.Fatalf("migrate: %v", err)
	}
	return d, func() { d.Close() }
}

func TestMigrateCreatesSchema(t *testing.T) {
	d, cleanup := openMigrated(t)
	defer cleanup()
	ctx := context.Background()

	for _, table := range []string{"users", "profiles", "jobs", "quiz_questions", "applications", "tasks", "dead_letter_tasks"} {
		var name string
		row := d.QueryRow(ctx, `SELECT name FROM sqlite_master WHERE type='table' AND name = ?`, table)
		if err := row.Scan(&name); err != nil {
			t.Fatalf("table %s missing: %v", table, err)
		}
	}

	// migrations are recorded
	var count int
	if err := d.QueryRow(ctx, `SELECT COUNT(1) FROM schema_migrations`).Scan(&count); err != nil {
		t.Fatalf("scan schema_migrations: %v", err)
	}
	if count == 0 {
		t.Fatalf("no migrations recorded")
	}
}

func TestMigrateIsIdempotentAndSeedsOnce(t *testing.T) {
	d, cleanup := openMigrated(t)
	defer cleanup()
	ctx := context.Background()

	var seeded int
	if err := d.QueryRow(ctx, `SELECT COUNT(1) FROM quiz_questions`).Scan(&seeded); err != nil {
		t.Fatalf("count questions: %v", err)
	}
	if seeded != 10 {
		t.Fatalf("expected 10 seeded driver questions, got %d", seeded)
	}

	// a second run applies nothing and does not duplicate the seed
	if err := db.Migrate(ctx, d, dbembed.Migrations, dbembed.SeedFiles); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
	var again int
	if err := d.QueryRow(ctx, `SELECT COUNT(1) FROM quiz_questions`).Scan(&again); err != nil {
		t.Fatalf("count questions: %v", err)
	}
	if again != seeded {
		t.Fatalf("seed duplicated: %d -> %d", seeded, again)
	}
}

func TestSeedSkippedWhenQuestionsExist(t *testing.T) {
	ctx := context.Background()
	d, err := db.New(ctx, "file::memory:?cache=shared")
	if err != nil {
		t.Fatalf("db.New: %v", err)
	}
	defer d.Close()

	if err := db.Migrate(ctx, d, dbembed.Migrations, dbembed.SeedFiles); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	// replace the bank with a single admin question, then re-run
	if _, err := d.Exec(ctx, `DELETE FROM quiz_questions`); err != nil {
		t.Fatalf("clear questions: %v", err)
	}
	if _, err := d.Exec(ctx,
		`INSERT INTO quiz_questions (id, question, image, options, correct_answer, kind, created_by, created) VALUES ('q1', 'custom', '', '["a","b"]', 0, 'driver', 'admin-1', 1)`); err != nil {
		t.Fatalf("insert custom question: %v", err)
	}
	if err := db.Migrate(ctx, d, dbembed.Migrations, dbembed.SeedFiles); err != nil {
		t.Fatalf("re-migrate: %v", err)
	}

	var count int
	if err := d.QueryRow(ctx, `SELECT COUNT(1) FROM quiz_questions`).Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("seed must not run over an existing bank, got %d questions", count)
	}
}
