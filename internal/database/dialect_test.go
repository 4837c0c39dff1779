package database

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func TestPostgresRewriteQuery(t *testing.T) {
	d := NewPostgresDialect()
	tests := []struct {
		query string
		want  string
	}{
		{"SELECT * FROM activities WHERE id = ?", "SELECT * FROM activities WHERE id = $1"},
		{"INSERT INTO t (a, b, c) VALUES (?, ?, ?)", "INSERT INTO t (a, b, c) VALUES ($1, $2, $3)"},
		{"SELECT 1", "SELECT 1"},
	}
	for _, tt := range tests {
		if got := d.RewriteQuery(tt.query); got != tt.want {
			t.Errorf("RewriteQuery(%q) = %q, want %q", tt.query, got, tt.want)
		}
	}
}

func TestSQLiteRewriteQueryIsIdentity(t *testing.T) {
	q := "SELECT * FROM activities WHERE id = ? AND child_id = ?"
	if got := NewSQLiteDialect().RewriteQuery(q); got != q {
		t.Errorf("RewriteQuery = %q, want unchanged", got)
	}
}

func TestSQLiteDSN(t *testing.T) {
	d := NewSQLiteDialect()
	tests := []struct {
		dsn  string
		want string
	}{
		{"cradle.db", "cradle.db?_time_format=sqlite"},
		{"file:cradle.db?cache=shared", "file:cradle.db?cache=shared&_time_format=sqlite"},
		{"cradle.db?_time_format=sqlite", "cradle.db?_time_format=sqlite"},
	}
	for _, tt := range tests {
		if got := d.DSN(tt.dsn); got != tt.want {
			t.Errorf("DSN(%q) = %q, want %q", tt.dsn, got, tt.want)
		}
	}
}

func TestDialectFor(t *testing.T) {
	for _, name := range []string{"postgres", "postgresql", "sqlite", "SQLite3"} {
		if _, err := DialectFor(name); err != nil {
			t.Errorf("DialectFor(%q) error = %v", name, err)
		}
	}
	if _, err := DialectFor("mysql"); err == nil {
		t.Error("DialectFor(mysql) error = nil, want error")
	}
}

func TestPostgresIsUniqueViolation_OtherErrors(t *testing.T) {
	if NewPostgresDialect().IsUniqueViolation(errors.New("boom")) {
		t.Error("plain error reported as unique violation")
	}
}

func TestOpenSQLite_AppliesSchemaAndDetectsDuplicates(t *testing.T) {
	ctx := context.Background()
	db, err := Open(ctx, "sqlite", filepath.Join(t.TempDir(), "cradle.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer db.Close()

	insert := "INSERT INTO children (id, user_id, name, date_of_birth, created_at) VALUES (?, ?, ?, ?, ?)"
	now := Timestamp(time.Now())
	if _, err := db.ExecContext(ctx, insert, "child-1", "user-1", "Ada", "2024-01-31", now); err != nil {
		t.Fatalf("first insert error = %v", err)
	}

	_, err = db.ExecContext(ctx, insert, "child-1", "user-1", "Ada", "2024-01-31", now)
	if err == nil {
		t.Fatal("duplicate insert error = nil, want constraint error")
	}
	if !db.IsUniqueViolation(err) {
		t.Errorf("IsUniqueViolation(%v) = false, want true", err)
	}

	// Schema is idempotent
	if err := db.applySchema(ctx); err != nil {
		t.Errorf("applySchema() second run error = %v", err)
	}
}

func TestOpen_RequiresDSN(t *testing.T) {
	if _, err := Open(context.Background(), "sqlite", ""); err == nil {
		t.Error("Open with empty dsn error = nil, want error")
	}
}
