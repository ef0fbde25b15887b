//go:build integration

package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/saltyorg/studentdb/internal/config"
)

func TestStudents_Postgres(t *testing.T) {
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx, "postgres:17-alpine",
		postgres.WithDatabase("school"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	testcontainers.CleanupContainer(t, pgContainer)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	db, err := New(config.Database{Driver: config.DriverPostgres, DSN: dsn})
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := db.Migrate(); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	if err := db.InitializeDefaults(); err != nil {
		t.Fatalf("failed to initialize settings: %v", err)
	}

	repo := NewStudents(db)
	runStudentLifecycle(t, repo)

	if err := repo.Create(&Student{ID: 1, Name: "Ann", Department: "CS", Marks: 88.5}); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if err := repo.Create(&Student{ID: 1, Name: "Ann", Department: "CS", Marks: 88.5}); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict for duplicate ID, got %v", err)
	}
	if err := repo.Update(&Student{ID: 2, Name: "Bob", Department: "EE", Marks: 70}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
