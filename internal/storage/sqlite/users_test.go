package sqlite_test

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/cleancodehq/usermgmt/internal/domain/users"
	"github.com/cleancodehq/usermgmt/internal/storage/sqlite"
)

func openTestRepo(t *testing.T) *sqlite.UserRepository {
	t.Helper()
	repo, err := sqlite.Open(filepath.Join(t.TempDir(), "users.db"))
	if err != nil {
		t.Fatalf("open sqlite store: %v", err)
	}
	t.Cleanup(func() {
		if err := repo.Close(); err != nil {
			t.Errorf("close sqlite store: %v", err)
		}
	})
	return repo
}

func TestSaveAssignsSequentialIDs(t *testing.T) {
	repo := openTestRepo(t)

	first, err := repo.Save(users.User{Name: "First", Email: "first@example.com", Active: true})
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	second, err := repo.Save(users.User{Name: "Second", Email: "second@example.com", Active: true})
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if first.ID != 1 || second.ID != 2 {
		t.Fatalf("expected ids 1,2; got %d,%d", first.ID, second.ID)
	}
}

func TestFindByIDAndEmail(t *testing.T) {
	repo := openTestRepo(t)

	saved, err := repo.Save(users.User{Name: "Finder", Email: "Finder@Example.com", Active: true})
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	byID, err := repo.FindByID(saved.ID)
	if err != nil {
		t.Fatalf("find by id failed: %v", err)
	}
	if byID.Email != "finder@example.com" {
		t.Fatalf("expected stored email to be lowercased, got %s", byID.Email)
	}

	if _, err := repo.FindByEmail("FINDER@example.com"); err != nil {
		t.Fatalf("expected case-insensitive email match, got %v", err)
	}

	if _, err := repo.FindByID(999); !errors.Is(err, users.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateRoundTripsActiveFlag(t *testing.T) {
	repo := openTestRepo(t)

	saved, err := repo.Save(users.User{Name: "Flip", Email: "flip@example.com", Active: true})
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	saved.Active = false
	if _, err := repo.Save(saved); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	got, err := repo.FindByID(saved.ID)
	if err != nil {
		t.Fatalf("find failed: %v", err)
	}
	if got.Active {
		t.Fatalf("expected active=false after update")
	}
}

func TestUpdateUnknownIDFails(t *testing.T) {
	repo := openTestRepo(t)

	_, err := repo.Save(users.User{ID: 42, Name: "Ghost", Email: "ghost@example.com"})
	if !errors.Is(err, users.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListOrdersByID(t *testing.T) {
	repo := openTestRepo(t)

	emails := []string{"a@example.com", "b@example.com", "c@example.com"}
	for _, email := range emails {
		if _, err := repo.Save(users.User{Name: "U", Email: email, Active: true}); err != nil {
			t.Fatalf("save failed: %v", err)
		}
	}

	all, err := repo.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 users, got %d", len(all))
	}
	for i, u := range all {
		if u.ID != int64(i+1) {
			t.Fatalf("expected ordered ids, got %+v", all)
		}
	}
}
