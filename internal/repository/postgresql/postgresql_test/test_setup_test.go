package postgresql_test

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/cmlabs-hris/performance-review-backend-go/internal/pkg/database"
)

// TestDatabaseSetup holds a migrated connection to the test database
type TestDatabaseSetup struct {
	DB *database.DB
}

// NewTestDatabase connects to TEST_DATABASE_URL and applies migrations.
// Tests are skipped when the variable is not set.
func NewTestDatabase(t *testing.T) *TestDatabaseSetup {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping repository integration tests")
	}

	db, err := database.NewPostgreSQLDB(context.Background(), dsn, database.PoolOptions{MaxConns: 4})
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}

	setup := &TestDatabaseSetup{DB: db}
	ctx := context.Background()
	if err := db.Migrate(ctx); err != nil {
		db.Close()
		t.Fatalf("failed to migrate test database: %v", err)
	}
	if err := setup.TruncateAllTables(ctx); err != nil {
		db.Close()
		t.Fatalf("failed to truncate test database: %v", err)
	}

	t.Cleanup(setup.Close)
	return setup
}

// TruncateAllTables removes every row from the application tables
func (t *TestDatabaseSetup) TruncateAllTables(ctx context.Context) error {
	tx, err := t.DB.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tables := []string{
		"email_notifications",
		"development_goals",
		"skill_evaluations",
		"performance_kpis",
		"performance_reviews",
		"supervisor_employees",
		"refresh_tokens",
		"user_roles",
		"users",
	}

	for _, table := range tables {
		_, err := tx.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table))
		if err != nil {
			return fmt.Errorf("failed to truncate table %s: %w", table, err)
		}
	}

	return tx.Commit(ctx)
}

// Close closes the database connection
func (t *TestDatabaseSetup) Close() {
	t.DB.Close()
}
