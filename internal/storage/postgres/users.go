package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cleancodehq/usermgmt/internal/domain/users"
)

// UserRepository persists users in Postgres.
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository constructs a postgres-backed user repository.
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) FindByID(id int64) (users.User, error) {
	const query = `
        SELECT id, name, email, active, created_at, updated_at
          FROM users
         WHERE id = $1
    `
	var u users.User
	err := r.db.QueryRow(query, id).Scan(&u.ID, &u.Name, &u.Email, &u.Active, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return users.User{}, users.ErrNotFound
		}
		return users.User{}, fmt.Errorf("find user: %w", err)
	}
	return u, nil
}

func (r *UserRepository) FindByEmail(email string) (users.User, error) {
	const query = `
        SELECT id, name, email, active, created_at, updated_at
          FROM users
         WHERE LOWER(email) = LOWER($1)
    `
	var u users.User
	err := r.db.QueryRow(query, email).Scan(&u.ID, &u.Name, &u.Email, &u.Active, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return users.User{}, users.ErrNotFound
		}
		return users.User{}, fmt.Errorf("find user by email: %w", err)
	}
	return u, nil
}

func (r *UserRepository) Save(user users.User) (users.User, error) {
	now := time.Now().UTC()

	if user.ID == 0 {
		const insert = `
            INSERT INTO users (name, email, active, created_at, updated_at)
            VALUES ($1,$2,$3,$4,$5)
            RETURNING id
        `
		if err := r.db.QueryRow(insert,
			user.Name,
			strings.ToLower(user.Email),
			user.Active,
			now,
			now,
		).Scan(&user.ID); err != nil {
			return users.User{}, fmt.Errorf("insert user: %w", err)
		}
		user.CreatedAt = now
		user.UpdatedAt = now
		return user, nil
	}

	const update = `
        UPDATE users
           SET name = $2,
               email = $3,
               active = $4,
               updated_at = $5
         WHERE id = $1
        RETURNING created_at
    `
	var created time.Time
	err := r.db.QueryRow(update,
		user.ID,
		user.Name,
		strings.ToLower(user.Email),
		user.Active,
		now,
	).Scan(&created)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return users.User{}, users.ErrNotFound
		}
		return users.User{}, fmt.Errorf("update user: %w", err)
	}
	user.CreatedAt = created
	user.UpdatedAt = now
	return user, nil
}

func (r *UserRepository) List() ([]users.User, error) {
	const query = `
        SELECT id, name, email, active, created_at, updated_at
          FROM users
         ORDER BY id
    `
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var res []users.User
	for rows.Next() {
		var u users.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Active, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		res = append(res, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return res, nil
}

var _ users.Repository = (*UserRepository)(nil)
