//go:build integration

package postgres_test

import (
	"errors"
	"testing"

	"github.com/cleancodehq/usermgmt/internal/domain/users"
	"github.com/cleancodehq/usermgmt/internal/storage/postgres"
)

func TestUserRepositorySaveAndFind(t *testing.T) {
	db := setupTestDB(t)
	repo := postgres.NewUserRepository(db)

	saved, err := repo.Save(users.User{Name: "Integration", Email: "Integration@Example.com", Active: true})
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if saved.ID == 0 {
		t.Fatalf("expected ID to be assigned")
	}

	byID, err := repo.FindByID(saved.ID)
	if err != nil {
		t.Fatalf("find by id failed: %v", err)
	}
	if byID.Email != "integration@example.com" {
		t.Fatalf("expected lowercased email, got %s", byID.Email)
	}

	if _, err := repo.FindByEmail("INTEGRATION@example.com"); err != nil {
		t.Fatalf("expected case-insensitive match, got %v", err)
	}

	if _, err := repo.FindByID(saved.ID + 1000); !errors.Is(err, users.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUserRepositoryUpdate(t *testing.T) {
	db := setupTestDB(t)
	repo := postgres.NewUserRepository(db)

	saved, err := repo.Save(users.User{Name: "Before", Email: "update@example.com", Active: true})
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	saved.Name = "After"
	saved.Active = false
	updated, err := repo.Save(saved)
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.CreatedAt.IsZero() {
		t.Fatalf("expected created_at to be preserved on update")
	}

	got, err := repo.FindByID(saved.ID)
	if err != nil {
		t.Fatalf("find failed: %v", err)
	}
	if got.Name != "After" || got.Active {
		t.Fatalf("update not persisted: %+v", got)
	}
}

func TestUserRepositoryList(t *testing.T) {
	db := setupTestDB(t)
	repo := postgres.NewUserRepository(db)

	emails := []string{"a@example.com", "b@example.com"}
	for _, email := range emails {
		if _, err := repo.Save(users.User{Name: "U", Email: email, Active: true}); err != nil {
			t.Fatalf("save failed: %v", err)
		}
	}

	all, err := repo.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 users, got %d", len(all))
	}
	if all[0].ID > all[1].ID {
		t.Fatalf("expected list ordered by id, got %+v", all)
	}
}
