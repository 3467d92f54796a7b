package sysconfig

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

type PGRepo struct {
	DB *sql.DB
}

func (r *PGRepo) Get(ctx context.Context, key string) (string, error) {
	const query = `
SELECT config_value
FROM system_config
WHERE config_key = $1
LIMIT 1`
	var value string
	err := r.DB.QueryRowContext(ctx, query, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}
	return value, nil
}

func (r *PGRepo) Set(ctx context.Context, key, value string) error {
	const query = `
INSERT INTO system_config (config_key, config_value, updated_at)
VALUES ($1, $2, $3)
ON CONFLICT (config_key) DO UPDATE SET
  config_value = EXCLUDED.config_value,
  updated_at = EXCLUDED.updated_at`
	_, err := r.DB.ExecContext(ctx, query, key, value, time.Now().UTC())
	return err
}

var _ Repo = (*PGRepo)(nil)
