//go:build integration

package postgres

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"MathBot/internal/adapters/security"
	"MathBot/internal/core/domain"
	"MathBot/internal/core/ports"

	"github.com/rs/zerolog"
)

var (
	testDB     *DB
	testSecSvc ports.SecurityPort
)

// TestMain connects to the database named by DATABASE_URL and applies the
// embedded migrations before running the integration tests.
func TestMain(m *testing.M) {
	connString := os.Getenv("DATABASE_URL")
	if connString == "" {
		log.Println("TestMain: DATABASE_URL is not set, skipping postgres tests")
		os.Exit(0)
	}

	nopLogger := zerolog.Nop()

	var err error
	testSecSvc, err = security.NewAESServiceFromHex(
		"000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f", &nopLogger)
	if err != nil {
		log.Fatalf("TestMain: Failed to create security service: %v", err)
	}

	migrator, err := NewMigrator(connString, &nopLogger)
	if err != nil {
		log.Fatalf("TestMain: Failed to create migrator: %v", err)
	}
	if err := migrator.Up(); err != nil {
		log.Fatalf("TestMain: Failed to migrate: %v", err)
	}
	_ = migrator.Close()

	testDB, err = NewDB(context.Background(), connString, &nopLogger)
	if err != nil {
		log.Fatalf("TestMain: Failed to connect to test database: %v", err)
	}

	code := m.Run()

	testDB.Close()
	os.Exit(code)
}

// uniqueUserID returns an id that will not collide with other test runs.
func uniqueUserID() int64 {
	return time.Now().UnixNano()
}

func createTestUser(t *testing.T, repo ports.UserRepository) *domain.User {
	t.Helper()
	first := "Test"
	user, err := repo.GetOrCreate(t.Context(), &domain.User{ID: uniqueUserID(), FirstName: &first})
	if err != nil {
		t.Fatalf("createTestUser failed: %v", err)
	}
	t.Cleanup(func() { cleanupTestUser(t, user.ID) })
	return user
}

func cleanupTestUser(t *testing.T, id int64) {
	ctx := context.Background()
	if _, err := testDB.pool.Exec(ctx, "DELETE FROM reports WHERE user_id = $1", id); err != nil {
		t.Logf("Warning: Failed to cleanup reports of user %d: %v", id, err)
	}
	if _, err := testDB.pool.Exec(ctx, "DELETE FROM users WHERE id = $1", id); err != nil {
		t.Logf("Warning: Failed to cleanup user %d: %v", id, err)
	}
}
