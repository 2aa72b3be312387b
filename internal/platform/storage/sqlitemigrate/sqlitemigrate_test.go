package sqlitemigrate

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"
	"testing/fstest"

	_ "modernc.org/sqlite"
)

func openDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func tableExists(t *testing.T, db *sql.DB, name string) bool {
	t.Helper()
	var found string
	err := db.QueryRow("SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", name).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return false
	}
	if err != nil {
		t.Fatalf("query sqlite_master: %v", err)
	}
	return true
}

func TestApplyRunsPendingInOrder(t *testing.T) {
	db := openDB(t)
	fsys := fstest.MapFS{
		"002_slots.sql":    {Data: []byte("-- +migrate Up\nALTER TABLE accounts ADD COLUMN slot INTEGER;\n-- +migrate Down\nDROP TABLE nope;")},
		"001_accounts.sql": {Data: []byte("-- +migrate Up\nCREATE TABLE accounts(key TEXT PRIMARY KEY);")},
		"README.md":        {Data: []byte("not sql")},
	}

	applied, err := Apply(context.Background(), db, fsys)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if strings.Join(applied, ",") != "001_accounts.sql,002_slots.sql" {
		t.Fatalf("applied = %v, want both files in order", applied)
	}
	if !tableExists(t, db, "accounts") {
		t.Fatal("expected accounts table")
	}

	again, err := Apply(context.Background(), db, fsys)
	if err != nil {
		t.Fatalf("reapply: %v", err)
	}
	if len(again) != 0 {
		t.Fatalf("reapplied = %v, want none", again)
	}
}

func TestApplyRejectsChangedMigration(t *testing.T) {
	db := openDB(t)
	first := fstest.MapFS{"001_accounts.sql": {Data: []byte("CREATE TABLE accounts(key TEXT PRIMARY KEY);")}}
	if _, err := Apply(context.Background(), db, first); err != nil {
		t.Fatalf("apply: %v", err)
	}

	changed := fstest.MapFS{"001_accounts.sql": {Data: []byte("CREATE TABLE accounts(key BLOB PRIMARY KEY);")}}
	if _, err := Apply(context.Background(), db, changed); err == nil {
		t.Fatal("expected changed migration to be rejected")
	}
}

func TestApplyRollsBackFailedMigration(t *testing.T) {
	db := openDB(t)
	fsys := fstest.MapFS{"001_broken.sql": {Data: []byte("CREATE TABLE ok(id INTEGER); THIS IS NOT SQL;")}}

	if _, err := Apply(context.Background(), db, fsys); err == nil {
		t.Fatal("expected broken migration to fail")
	}
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count); err != nil {
		t.Fatalf("count migrations: %v", err)
	}
	if count != 0 {
		t.Fatalf("recorded = %d, want 0", count)
	}
}

func TestUpSection(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{name: "no markers", content: "CREATE TABLE a(x);", want: "CREATE TABLE a(x);"},
		{name: "up only", content: "-- +migrate Up\nCREATE TABLE a(x);", want: "\nCREATE TABLE a(x);"},
		{name: "up and down", content: "-- +migrate Up\nCREATE TABLE a(x);\n-- +migrate Down\nDROP TABLE a;", want: "\nCREATE TABLE a(x);\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UpSection(tt.content); got != tt.want {
				t.Fatalf("UpSection = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestApplyRequiresDB(t *testing.T) {
	if _, err := Apply(context.Background(), nil, fstest.MapFS{}); err == nil {
		t.Fatal("expected error for nil db")
	}
}
