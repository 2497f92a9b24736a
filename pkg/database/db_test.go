package database

import "testing"

func TestIsPostgresURL(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"postgres://u:p@localhost:5432/rm", true},
		{"postgresql://u:p@localhost:5432/rm", true},
		{"host=localhost user=postgres dbname=rm", true},
		{"/tmp/rickmorty.db", false},
		{"file:test?mode=memory&cache=shared", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsPostgresURL(tt.url); got != tt.want {
			t.Errorf("IsPostgresURL(%q) = %v, want %v", tt.url, got, tt.want)
		}
	}
}

func TestNormalizePostgresURL(t *testing.T) {
	got := normalizePostgresURL("postgres://u:p@db:5432/rm")
	if got != "postgresql://u:p@db:5432/rm" {
		t.Errorf("normalizePostgresURL() = %q", got)
	}
}

func TestSQLiteDSN(t *testing.T) {
	tests := []struct{ in, want string }{
		{"/tmp/rickmorty.db", "/tmp/rickmorty.db?_foreign_keys=on"},
		{"sqlite:///tmp/test.db", "/tmp/test.db?_foreign_keys=on"},
		{"file:x?mode=memory", "file:x?mode=memory&_foreign_keys=on"},
		{"file:x?_foreign_keys=off", "file:x?_foreign_keys=off"},
	}
	for _, tt := range tests {
		if got := sqliteDSN(tt.in); got != tt.want {
			t.Errorf("sqliteDSN(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestOpen_SQLiteMemory(t *testing.T) {
	db, err := Open(Options{SQLitePath: "file:open_test?mode=memory&cache=shared", MaxOpenConns: 1})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	var one int
	if err := db.Raw("SELECT 1").Scan(&one).Error; err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if one != 1 {
		t.Errorf("SELECT 1 = %d", one)
	}
}
