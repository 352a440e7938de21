// Package testutil provides shared test helpers for databases and accounts.
package testutil

import (
	"context"
	"os"
	"testing"

	"github.com/starford/scholarsync/internal/models"
	"github.com/starford/scholarsync/internal/store"
)

// TestDB creates a temporary SQLite database that is automatically cleaned up.
func TestDB(t *testing.T) *store.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "scholarsync-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := store.Open(store.DriverSQLite, dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// SeedUser inserts a user with the given email and no usable password.
func SeedUser(t *testing.T, db store.Store, email string) *models.User {
	t.Helper()
	u, err := db.CreateUser(context.Background(), models.User{Email: email, Name: "Test Student"})
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}
