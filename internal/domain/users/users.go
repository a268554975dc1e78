package users

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrNotImplemented = errors.New("users repository: not implemented")
	ErrNotFound       = errors.New("user not found")
	ErrEmailExists    = errors.New("email already in use")

	// ErrInvalidInput wraps validation failures so callers can map them to
	// client errors instead of server faults.
	ErrInvalidInput = errors.New("invalid input")
)

// User represents a managed user record.
type User struct {
	ID        int64
	Name      string
	Email     string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Repository defines persistence behaviour for users.
type Repository interface {
	FindByID(id int64) (User, error)
	FindByEmail(email string) (User, error)
	Save(user User) (User, error)
	List() ([]User, error)
}

// NullRepository can be used when no storage is configured.
type NullRepository struct{}

func (NullRepository) FindByID(int64) (User, error)     { return User{}, ErrNotImplemented }
func (NullRepository) FindByEmail(string) (User, error) { return User{}, ErrNotImplemented }
func (NullRepository) Save(User) (User, error)          { return User{}, ErrNotImplemented }
func (NullRepository) List() ([]User, error)            { return nil, ErrNotImplemented }

// Service exposes business operations over users.
type Service interface {
	Create(input CreateInput) (User, error)
	Get(id int64) (User, error)
	List(activeOnly bool) ([]User, error)
	Update(id int64, input UpdateInput) (User, error)
	Deactivate(id int64) error
	Reactivate(id int64) error
}

// CreateInput captures data required to create a user.
type CreateInput struct {
	Name  string
	Email string
}

// UpdateInput defines data for a partial user update.
type UpdateInput struct {
	Name  *string
	Email *string
}

type service struct {
	repo Repository
}

// NewService constructs a user service.
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Create(input CreateInput) (User, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return User{}, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}

	email, err := normalizeEmail(input.Email)
	if err != nil {
		return User{}, err
	}

	if err := s.checkEmailFree(email, 0); err != nil {
		return User{}, err
	}

	user := User{
		Name:   name,
		Email:  email,
		Active: true,
	}

	saved, err := s.repo.Save(user)
	if err != nil {
		return User{}, err
	}
	return saved, nil
}

func (s *service) Get(id int64) (User, error) {
	return s.repo.FindByID(id)
}

func (s *service) List(activeOnly bool) ([]User, error) {
	all, err := s.repo.List()
	if err != nil {
		return nil, err
	}
	if !activeOnly {
		return all, nil
	}
	active := make([]User, 0, len(all))
	for _, u := range all {
		if u.Active {
			active = append(active, u)
		}
	}
	return active, nil
}

func (s *service) Update(id int64, input UpdateInput) (User, error) {
	user, err := s.repo.FindByID(id)
	if err != nil {
		return User{}, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return User{}, fmt.Errorf("%w: name is required", ErrInvalidInput)
		}
		user.Name = name
	}

	if input.Email != nil {
		email, err := normalizeEmail(*input.Email)
		if err != nil {
			return User{}, err
		}
		if !strings.EqualFold(email, user.Email) {
			if err := s.checkEmailFree(email, id); err != nil {
				return User{}, err
			}
		}
		user.Email = email
	}

	return s.repo.Save(user)
}

func (s *service) Deactivate(id int64) error {
	return s.setActive(id, false)
}

func (s *service) Reactivate(id int64) error {
	return s.setActive(id, true)
}

func (s *service) setActive(id int64, active bool) error {
	user, err := s.repo.FindByID(id)
	if err != nil {
		return err
	}
	if user.Active == active {
		return nil
	}
	user.Active = active
	_, err = s.repo.Save(user)
	return err
}

// checkEmailFree returns ErrEmailExists when a different user already owns email.
func (s *service) checkEmailFree(email string, selfID int64) error {
	existing, err := s.repo.FindByEmail(email)
	if err == nil {
		if existing.ID != selfID {
			return ErrEmailExists
		}
		return nil
	}
	if !errors.Is(err, ErrNotFound) && !errors.Is(err, ErrNotImplemented) {
		return err
	}
	return nil
}

func normalizeEmail(email string) (string, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return "", fmt.Errorf("%w: email is required", ErrInvalidInput)
	}
	if !strings.Contains(email, "@") {
		return "", fmt.Errorf("%w: email must contain @", ErrInvalidInput)
	}
	return email, nil
}
