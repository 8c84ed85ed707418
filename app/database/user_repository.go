package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

type UserStore struct {
	db *DB
}

func NewUserRepository(db *DB) *UserStore {
	return &UserStore{db: db}
}

func (r *UserStore) GetUserByName(ctx context.Context, name string) (*User, error) {
	return r.getUser(ctx, "name = ?", name)
}

func (r *UserStore) GetUserByID(ctx context.Context, id int64) (*User, error) {
	return r.getUser(ctx, "id = ?", id)
}

func (r *UserStore) getUser(ctx context.Context, condition string, arg any) (*User, error) {
	var user User
	err := r.db.QueryRowContext(ctx,
		"SELECT id, name, password_hash, created_at FROM users WHERE "+condition, arg,
	).Scan(&user.ID, &user.Name, &user.PasswordHash, &user.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &user, nil
}

func (r *UserStore) CreateUser(ctx context.Context, name, passwordHash string) (*User, error) {
	result, err := r.db.ExecContext(ctx,
		"INSERT INTO users (name, password_hash, created_at) VALUES (?, ?, ?)",
		name, passwordHash, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get created user id: %w", err)
	}

	return r.GetUserByID(ctx, id)
}

func (r *UserStore) GetUserCount(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get user count: %w", err)
	}
	return count, nil
}
