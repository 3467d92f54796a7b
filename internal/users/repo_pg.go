package users

import (
	"context"
	"database/sql"
	"errors"
)

type PGRepo struct {
	DB *sql.DB
}

func (r *PGRepo) Create(ctx context.Context, user User) error {
	// ON CONFLICT DO NOTHING works on both backends and turns an account
	// collision into zero affected rows instead of a driver-specific error.
	const query = `
INSERT INTO users (id, account, name, role, college, is_active, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (account) DO NOTHING`
	res, err := r.DB.ExecContext(ctx, query,
		user.ID,
		user.Account,
		user.Name,
		user.Role,
		user.College,
		user.Active,
		user.CreatedAt,
	)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrDuplicateAccount
	}
	return nil
}

func (r *PGRepo) GetByID(ctx context.Context, userID string) (User, error) {
	const query = `
SELECT id, account, name, role, college, is_active, created_at
FROM users
WHERE id = $1
LIMIT 1`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, userID))
}

func (r *PGRepo) GetByAccount(ctx context.Context, account string) (User, error) {
	const query = `
SELECT id, account, name, role, college, is_active, created_at
FROM users
WHERE account = $1
LIMIT 1`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, account))
}

func (r *PGRepo) scanOne(row *sql.Row) (User, error) {
	var user User
	err := row.Scan(
		&user.ID,
		&user.Account,
		&user.Name,
		&user.Role,
		&user.College,
		&user.Active,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	return user, nil
}

var _ Repo = (*PGRepo)(nil)
