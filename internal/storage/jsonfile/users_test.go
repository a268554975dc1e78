package jsonfile_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/cleancodehq/usermgmt/internal/domain/users"
	"github.com/cleancodehq/usermgmt/internal/storage/jsonfile"
)

func tempStorePath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "users.json")
}

func TestOpenMissingFileStartsEmpty(t *testing.T) {
	repo, err := jsonfile.Open(tempStorePath(t))
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}

	all, err := repo.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(all) != 0 {
		t.Fatalf("expected empty store, got %d records", len(all))
	}
}

func TestOpenCorruptFileFails(t *testing.T) {
	path := tempStorePath(t)
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}

	if _, err := jsonfile.Open(path); err == nil {
		t.Fatalf("expected error opening corrupt store")
	}
}

func TestSaveAndReload(t *testing.T) {
	path := tempStorePath(t)

	repo, err := jsonfile.Open(path)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}

	first, err := repo.Save(users.User{Name: "First", Email: "first@example.com", Active: true})
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	second, err := repo.Save(users.User{Name: "Second", Email: "second@example.com", Active: true})
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if first.ID != 1 || second.ID != 2 {
		t.Fatalf("expected sequential ids 1,2; got %d,%d", first.ID, second.ID)
	}

	// A fresh repository over the same file sees the persisted records.
	reopened, err := jsonfile.Open(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	all, err := reopened.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 records after reload, got %d", len(all))
	}
	if all[0].Email != "first@example.com" || all[1].Email != "second@example.com" {
		t.Fatalf("unexpected records after reload: %+v", all)
	}
	if all[0].CreatedAt.IsZero() {
		t.Fatalf("expected timestamps to survive reload")
	}
}

func TestIDsContinueAfterReload(t *testing.T) {
	path := tempStorePath(t)

	repo, err := jsonfile.Open(path)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	if _, err := repo.Save(users.User{Name: "A", Email: "a@example.com", Active: true}); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	reopened, err := jsonfile.Open(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	next, err := reopened.Save(users.User{Name: "B", Email: "b@example.com", Active: true})
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if next.ID != 2 {
		t.Fatalf("expected ID 2 after reload, got %d", next.ID)
	}
}

func TestUpdatePersistsActiveFlag(t *testing.T) {
	path := tempStorePath(t)

	repo, err := jsonfile.Open(path)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	saved, err := repo.Save(users.User{Name: "Flip", Email: "flip@example.com", Active: true})
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	saved.Active = false
	if _, err := repo.Save(saved); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	reopened, err := jsonfile.Open(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	got, err := reopened.FindByID(saved.ID)
	if err != nil {
		t.Fatalf("find failed: %v", err)
	}
	if got.Active {
		t.Fatalf("expected active=false to be persisted")
	}
}

func TestFindByEmailCaseInsensitive(t *testing.T) {
	repo, err := jsonfile.Open(tempStorePath(t))
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	if _, err := repo.Save(users.User{Name: "Case", Email: "case@example.com", Active: true}); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	if _, err := repo.FindByEmail("CASE@EXAMPLE.COM"); err != nil {
		t.Fatalf("expected case-insensitive match, got %v", err)
	}
	if _, err := repo.FindByEmail("absent@example.com"); !errors.Is(err, users.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSaveUnknownIDFails(t *testing.T) {
	repo, err := jsonfile.Open(tempStorePath(t))
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}

	_, err = repo.Save(users.User{ID: 42, Name: "Ghost", Email: "ghost@example.com"})
	if !errors.Is(err, users.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
