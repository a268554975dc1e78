// Package sqlite persists users in a local SQLite database file.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/cleancodehq/usermgmt/internal/domain/users"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL,
    email TEXT NOT NULL UNIQUE,
    active INTEGER NOT NULL DEFAULT 1,
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL
)`

// UserRepository persists users in SQLite.
type UserRepository struct {
	db *sql.DB
}

// Open creates or opens the database at path and ensures the schema exists.
func Open(path string) (*UserRepository, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create users table: %w", err)
	}
	return &UserRepository{db: db}, nil
}

// NewUserRepository wraps an existing connection.
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Close releases the underlying connection.
func (r *UserRepository) Close() error {
	return r.db.Close()
}

func (r *UserRepository) FindByID(id int64) (users.User, error) {
	const query = `
        SELECT id, name, email, active, created_at, updated_at
          FROM users
         WHERE id = ?
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
         WHERE LOWER(email) = LOWER(?)
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
            VALUES (?,?,?,?,?)
        `
		res, err := r.db.Exec(insert, user.Name, strings.ToLower(user.Email), user.Active, now, now)
		if err != nil {
			return users.User{}, fmt.Errorf("insert user: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return users.User{}, fmt.Errorf("insert user id: %w", err)
		}
		user.ID = id
		user.CreatedAt = now
		user.UpdatedAt = now
		return user, nil
	}

	const update = `
        UPDATE users
           SET name = ?,
               email = ?,
               active = ?,
               updated_at = ?
         WHERE id = ?
    `
	res, err := r.db.Exec(update, user.Name, strings.ToLower(user.Email), user.Active, now, user.ID)
	if err != nil {
		return users.User{}, fmt.Errorf("update user: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return users.User{}, fmt.Errorf("update user result: %w", err)
	}
	if affected == 0 {
		return users.User{}, users.ErrNotFound
	}
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
