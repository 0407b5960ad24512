package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/TheRealPress1/roamiii-backend/pkg/migrate"
)

func TestVotesMigrationContainsConstraints(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_proposals_and_votes.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no proposals/votes migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE IF NOT EXISTS votes",
		"FOREIGN KEY (proposal_id) REFERENCES proposals(id) ON DELETE CASCADE",
		"CHECK (kind IS NOT NULL OR score IS NOT NULL)",
		"CHECK (score IS NULL OR (score >= 0 AND score <= 100))",
		"CREATE UNIQUE INDEX IF NOT EXISTS ux_votes_proposal_user ON votes (proposal_id, user_id)",
		"DROP TABLE IF EXISTS votes",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestExpensesMigrationContainsConstraints(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_expenses.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no expenses migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE IF NOT EXISTS expenses",
		"CHECK (amount > 0)",
		"FOREIGN KEY (expense_id) REFERENCES expenses(id) ON DELETE CASCADE",
		"CREATE UNIQUE INDEX IF NOT EXISTS ux_expense_splits_expense_user ON expense_splits (expense_id, user_id)",
		"DROP TABLE IF EXISTS expense_splits",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestAllMigrationsValidate(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("migrations dir invalid: %v", err)
	}
}
