package memory

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cleancodehq/usermgmt/internal/domain/users"
)

// UserRepository implements users.Repository in-memory.
type UserRepository struct {
	mu    sync.RWMutex
	store map[int64]users.User
}

// NewUserRepository constructs repository.
func NewUserRepository() *UserRepository {
	return &UserRepository{store: make(map[int64]users.User)}
}

func (r *UserRepository) FindByID(id int64) (users.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.store[id]
	if !ok {
		return users.User{}, users.ErrNotFound
	}
	return user, nil
}

func (r *UserRepository) FindByEmail(email string) (users.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.store {
		if strings.EqualFold(u.Email, email) {
			return u, nil
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
	} else if existing, ok := r.store[user.ID]; ok {
		if user.CreatedAt.IsZero() {
			user.CreatedAt = existing.CreatedAt
		}
	}
	user.UpdatedAt = now
	r.store[user.ID] = user
	return user, nil
}

func (r *UserRepository) List() ([]users.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res := make([]users.User, 0, len(r.store))
	for _, u := range r.store {
		res = append(res, u)
	}
	sort.Slice(res, func(i, j int) bool {
		return res[i].ID < res[j].ID
	})
	return res, nil
}

// nextID assigns sequential ids as max(existing)+1. Caller holds the lock.
func (r *UserRepository) nextID() int64 {
	var max int64
	for id := range r.store {
		if id > max {
			max = id
		}
	}
	return max + 1
}

// Ensure interface satisfaction at compile time.
var _ users.Repository = (*UserRepository)(nil)
