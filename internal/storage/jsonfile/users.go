// Package jsonfile persists users in a single JSON file. The whole store is
// loaded at open and every mutation rewrites the file atomically, so it is
// only suitable for small local datasets.
package jsonfile

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/cleancodehq/usermgmt/internal/domain/users"
)

type record struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserRepository implements users.Repository on top of a JSON file.
type UserRepository struct {
	mu      sync.Mutex
	path    string
	records []record
}

// Open loads the store at path. A missing file starts an empty store; a file
// that exists but cannot be parsed is an error rather than silent data loss.
func Open(path string) (*UserRepository, error) {
	repo := &UserRepository{path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return repo, nil
		}
		return nil, errors.Wrap(err, "failed to open users file")
	}

	if err := json.Unmarshal(data, &repo.records); err != nil {
		return nil, errors.Wrapf(err, "invalid JSON in %s", path)
	}

	sort.Slice(repo.records, func(i, j int) bool {
		return repo.records[i].ID < repo.records[j].ID
	})
	return repo, nil
}

// Path reports the backing file location.
func (r *UserRepository) Path() string {
	return r.path
}

func (r *UserRepository) FindByID(id int64) (users.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range r.records {
		if rec.ID == id {
			return toUser(rec), nil
		}
	}
	return users.User{}, users.ErrNotFound
}

func (r *UserRepository) FindByEmail(email string) (users.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range r.records {
		if strings.EqualFold(rec.Email, email) {
			return toUser(rec), nil
		}
	}
	return users.User{}, users.ErrNotFound
}

func (r *UserRepository) Save(user users.User) (users.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	if user.ID == 0 {
		user.ID = r.nextID()
		user.CreatedAt = now
		user.UpdatedAt = now
		r.records = append(r.records, toRecord(user))
	} else {
		idx := -1
		for i, rec := range r.records {
			if rec.ID == user.ID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return users.User{}, users.ErrNotFound
		}
		if user.CreatedAt.IsZero() {
			user.CreatedAt = r.records[idx].CreatedAt
		}
		user.UpdatedAt = now
		r.records[idx] = toRecord(user)
	}

	if err := r.flush(); err != nil {
		return users.User{}, err
	}
	return user, nil
}

func (r *UserRepository) List() ([]users.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	res := make([]users.User, 0, len(r.records))
	for _, rec := range r.records {
		res = append(res, toUser(rec))
	}
	return res, nil
}

// flush rewrites the file via a temp file and rename so a crash mid-write
// never leaves a truncated store behind. Caller holds the lock.
func (r *UserRepository) flush() error {
	data, err := json.MarshalIndent(r.records, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to encode users")
	}

	dir := filepath.Dir(r.path)
	tmp, err := os.CreateTemp(dir, ".users-*.json")
	if err != nil {
		return errors.Wrap(err, "failed to create temp file")
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return errors.Wrap(err, "failed to write users file")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return errors.Wrap(err, "failed to close temp file")
	}

	if err := os.Rename(tmp.Name(), r.path); err != nil {
		os.Remove(tmp.Name())
		return errors.Wrap(err, "failed to replace users file")
	}
	return nil
}

func (r *UserRepository) nextID() int64 {
	var max int64
	for _, rec := range r.records {
		if rec.ID > max {
			max = rec.ID
		}
	}
	return max + 1
}

func toUser(rec record) users.User {
	return users.User{
		ID:        rec.ID,
		Name:      rec.Name,
		Email:     rec.Email,
		Active:    rec.Active,
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
	}
}

func toRecord(u users.User) record {
	return record{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Active:    u.Active,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

var _ users.Repository = (*UserRepository)(nil)
