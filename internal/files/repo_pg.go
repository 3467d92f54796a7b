package files

import (
	"context"
	"database/sql"
	"errors"
)

// PGRepo implements Repo over database/sql. The queries stick to
// placeholder syntax both supported backends accept.
type PGRepo struct {
	DB *sql.DB
}

func (r *PGRepo) Create(ctx context.Context, file File) error {
	const query = `
INSERT INTO files (id, user_id, file_name, storage_key, file_kind, size_bytes, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.DB.ExecContext(ctx, query,
		file.ID,
		file.UserID,
		file.FileName,
		file.StorageKey,
		file.Kind,
		file.SizeBytes,
		file.CreatedAt,
	)
	return err
}

func (r *PGRepo) GetByID(ctx context.Context, fileID string) (File, error) {
	const query = `
SELECT id, user_id, file_name, storage_key, file_kind, size_bytes, created_at
FROM files
WHERE id = $1
LIMIT 1`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, fileID))
}

func (r *PGRepo) FindDuplicate(ctx context.Context, userID, fileName string, sizeBytes int64) (File, error) {
	const query = `
SELECT id, user_id, file_name, storage_key, file_kind, size_bytes, created_at
FROM files
WHERE user_id = $1 AND file_name = $2 AND size_bytes = $3
ORDER BY created_at DESC
LIMIT 1`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, userID, fileName, sizeBytes))
}

func (r *PGRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]File, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	const query = `
SELECT id, user_id, file_name, storage_key, file_kind, size_bytes, created_at
FROM files
WHERE user_id = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`
	rows, err := r.DB.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []File
	for rows.Next() {
		var file File
		if err := rows.Scan(
			&file.ID,
			&file.UserID,
			&file.FileName,
			&file.StorageKey,
			&file.Kind,
			&file.SizeBytes,
			&file.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, file)
	}
	return out, rows.Err()
}

func (r *PGRepo) Delete(ctx context.Context, fileID string) error {
	const query = `DELETE FROM files WHERE id = $1`
	res, err := r.DB.ExecContext(ctx, query, fileID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepo) scanOne(row *sql.Row) (File, error) {
	var file File
	err := row.Scan(
		&file.ID,
		&file.UserID,
		&file.FileName,
		&file.StorageKey,
		&file.Kind,
		&file.SizeBytes,
		&file.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return File{}, ErrNotFound
		}
		return File{}, err
	}
	return file, nil
}

var _ Repo = (*PGRepo)(nil)
