package pg

import (
	"errors"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestParseMigrationName(t *testing.T) {
	version, name, err := parseMigrationName("0002_telegram_users.sql")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if version != 2 || name != "telegram_users" {
		t.Errorf("expected (2, telegram_users), got (%d, %s)", version, name)
	}

	for _, bad := range []string{"init.sql", "abc_init.sql", "0000_zero.sql", "0003_.sql"} {
		if _, _, err := parseMigrationName(bad); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}

func TestLoadMigrations_SortedAndEmbedded(t *testing.T) {
	migrations, err := loadMigrations()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(migrations) < 2 {
		t.Fatalf("expected at least 2 migrations, got %d", len(migrations))
	}
	for i := 1; i < len(migrations); i++ {
		if migrations[i-1].Version >= migrations[i].Version {
			t.Errorf("migrations not sorted: %d before %d", migrations[i-1].Version, migrations[i].Version)
		}
	}

	var users string
	for _, m := range migrations {
		if m.Name == "telegram_users" {
			users = m.Content
		}
	}
	if !strings.Contains(users, "UNIQUE (external_id)") {
		t.Error("telegram_users migration must declare a unique external_id")
	}
}

func TestIsUniqueViolation(t *testing.T) {
	if !IsUniqueViolation(&pgconn.PgError{Code: "23505"}) {
		t.Error("expected 23505 to be a unique violation")
	}
	if IsUniqueViolation(&pgconn.PgError{Code: "23503"}) {
		t.Error("foreign key violation is not a unique violation")
	}
	if IsUniqueViolation(errors.New("boom")) {
		t.Error("plain error is not a unique violation")
	}
}
