package certificates

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/mona5211005/certificate-system/internal/vision"
)

// PGRepo implements Repo over database/sql. Statements stick to syntax
// both supported backends accept.
type PGRepo struct {
	DB *sql.DB
}

const certColumns = `id, user_id, file_id,
	student_college, competition_project, student_id, student_name,
	award_category, award_level, competition_type, organizer, award_time, tutor_name,
	submitted, submitted_at, created_at, updated_at`

func (r *PGRepo) Create(ctx context.Context, cert Certificate) error {
	// ON CONFLICT DO NOTHING works on both backends and turns a second
	// record for the same file into zero affected rows instead of a
	// driver-specific constraint error.
	const query = `
INSERT INTO certificates (id, user_id, file_id,
	student_college, competition_project, student_id, student_name,
	award_category, award_level, competition_type, organizer, award_time, tutor_name,
	submitted, submitted_at, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
ON CONFLICT (file_id) DO NOTHING`
	res, err := r.DB.ExecContext(ctx, query,
		cert.ID,
		cert.UserID,
		cert.FileID,
		cert.Fields.StudentCollege,
		cert.Fields.CompetitionProject,
		cert.Fields.StudentID,
		cert.Fields.StudentName,
		cert.Fields.AwardCategory,
		cert.Fields.AwardLevel,
		cert.Fields.CompetitionType,
		cert.Fields.Organizer,
		cert.Fields.AwardTime,
		cert.Fields.TutorName,
		cert.Submitted,
		cert.SubmittedAt,
		cert.CreatedAt,
		cert.UpdatedAt,
	)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrDuplicateRecord
	}
	return nil
}

func (r *PGRepo) GetByID(ctx context.Context, certID string) (Certificate, error) {
	const query = `
SELECT ` + certColumns + `
FROM certificates
WHERE id = $1
LIMIT 1`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, certID))
}

func (r *PGRepo) GetByFile(ctx context.Context, fileID string) (Certificate, error) {
	const query = `
SELECT ` + certColumns + `
FROM certificates
WHERE file_id = $1
LIMIT 1`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, fileID))
}

func (r *PGRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Certificate, error) {
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
SELECT ` + certColumns + `
FROM certificates
WHERE user_id = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`
	rows, err := r.DB.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Certificate
	for rows.Next() {
		cert, err := scanCert(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, cert)
	}
	return out, rows.Err()
}

func (r *PGRepo) UpdateFields(ctx context.Context, certID, userID string, fields vision.Fields, updatedAt time.Time) (bool, error) {
	const query = `
UPDATE certificates
SET student_college = $1, competition_project = $2, student_id = $3, student_name = $4,
    award_category = $5, award_level = $6, competition_type = $7, organizer = $8,
    award_time = $9, tutor_name = $10, updated_at = $11
WHERE id = $12 AND user_id = $13 AND submitted = FALSE`
	res, err := r.DB.ExecContext(ctx, query,
		fields.StudentCollege,
		fields.CompetitionProject,
		fields.StudentID,
		fields.StudentName,
		fields.AwardCategory,
		fields.AwardLevel,
		fields.CompetitionType,
		fields.Organizer,
		fields.AwardTime,
		fields.TutorName,
		updatedAt,
		certID,
		userID,
	)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *PGRepo) Promote(ctx context.Context, certID, userID string, submittedAt time.Time) (bool, error) {
	const query = `
UPDATE certificates
SET submitted = TRUE, submitted_at = $1, updated_at = $2
WHERE id = $3 AND user_id = $4 AND submitted = FALSE`
	res, err := r.DB.ExecContext(ctx, query, submittedAt, submittedAt, certID, userID)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *PGRepo) PromoteAllByUser(ctx context.Context, userID string, submittedAt time.Time) (int64, error) {
	const query = `
UPDATE certificates
SET submitted = TRUE, submitted_at = $1, updated_at = $2
WHERE user_id = $3 AND submitted = FALSE`
	res, err := r.DB.ExecContext(ctx, query, submittedAt, submittedAt, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *PGRepo) CountByUser(ctx context.Context, userID string) (Status, error) {
	const query = `
SELECT
	COUNT(CASE WHEN submitted = FALSE THEN 1 END),
	COUNT(CASE WHEN submitted = TRUE THEN 1 END)
FROM certificates
WHERE user_id = $1`
	var status Status
	err := r.DB.QueryRowContext(ctx, query, userID).Scan(&status.DraftCount, &status.SubmittedCount)
	if err != nil {
		return Status{}, err
	}
	return status, nil
}

func (r *PGRepo) DeleteByFile(ctx context.Context, fileID string) error {
	const query = `DELETE FROM certificates WHERE file_id = $1`
	_, err := r.DB.ExecContext(ctx, query, fileID)
	return err
}

func (r *PGRepo) SubmittedByFile(ctx context.Context, fileID string) (bool, error) {
	const query = `SELECT submitted FROM certificates WHERE file_id = $1 LIMIT 1`
	var submitted bool
	err := r.DB.QueryRowContext(ctx, query, fileID).Scan(&submitted)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return submitted, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCert(row rowScanner) (Certificate, error) {
	var cert Certificate
	var submittedAt sql.NullTime
	err := row.Scan(
		&cert.ID,
		&cert.UserID,
		&cert.FileID,
		&cert.Fields.StudentCollege,
		&cert.Fields.CompetitionProject,
		&cert.Fields.StudentID,
		&cert.Fields.StudentName,
		&cert.Fields.AwardCategory,
		&cert.Fields.AwardLevel,
		&cert.Fields.CompetitionType,
		&cert.Fields.Organizer,
		&cert.Fields.AwardTime,
		&cert.Fields.TutorName,
		&cert.Submitted,
		&submittedAt,
		&cert.CreatedAt,
		&cert.UpdatedAt,
	)
	if err != nil {
		return Certificate{}, err
	}
	if submittedAt.Valid {
		t := submittedAt.Time
		cert.SubmittedAt = &t
	}
	return cert, nil
}

func (r *PGRepo) scanOne(row *sql.Row) (Certificate, error) {
	cert, err := scanCert(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Certificate{}, ErrNotFound
		}
		return Certificate{}, err
	}
	return cert, nil
}

var _ Repo = (*PGRepo)(nil)
