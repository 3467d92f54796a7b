package certificates

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func newPGRepoTest(t *testing.T) (*PGRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return &PGRepo{DB: db}, mock
}

var certColumnNames = []string{
	"id", "user_id", "file_id",
	"student_college", "competition_project", "student_id", "student_name",
	"award_category", "award_level", "competition_type", "organizer", "award_time", "tutor_name",
	"submitted", "submitted_at", "created_at", "updated_at",
}

func certRow(cert Certificate) *sqlmock.Rows {
	var submittedAt any
	if cert.SubmittedAt != nil {
		submittedAt = *cert.SubmittedAt
	}
	return sqlmock.NewRows(certColumnNames).AddRow(
		cert.ID, cert.UserID, cert.FileID,
		cert.Fields.StudentCollege, cert.Fields.CompetitionProject, cert.Fields.StudentID, cert.Fields.StudentName,
		cert.Fields.AwardCategory, cert.Fields.AwardLevel, cert.Fields.CompetitionType, cert.Fields.Organizer,
		cert.Fields.AwardTime, cert.Fields.TutorName,
		cert.Submitted, submittedAt, cert.CreatedAt, cert.UpdatedAt,
	)
}

func sampleCert() Certificate {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	return Certificate{
		ID:        "cert-1",
		UserID:    "user-1",
		FileID:    "file-1",
		Fields:    strictFields(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestPGRepoCreateInsertsAllColumns(t *testing.T) {
	repo, mock := newPGRepoTest(t)
	cert := sampleCert()

	mock.ExpectExec("INSERT INTO certificates").
		WithArgs(
			cert.ID, cert.UserID, cert.FileID,
			cert.Fields.StudentCollege, cert.Fields.CompetitionProject, cert.Fields.StudentID, cert.Fields.StudentName,
			cert.Fields.AwardCategory, cert.Fields.AwardLevel, cert.Fields.CompetitionType, cert.Fields.Organizer,
			cert.Fields.AwardTime, cert.Fields.TutorName,
			cert.Submitted, nil, sqlmock.AnyArg(), sqlmock.AnyArg(),
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Create(context.Background(), cert); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPGRepoCreateReportsDuplicateFile(t *testing.T) {
	repo, mock := newPGRepoTest(t)

	// ON CONFLICT DO NOTHING swallows the second insert; zero affected
	// rows is the duplicate signal.
	mock.ExpectExec("INSERT INTO certificates").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Create(context.Background(), sampleCert())
	if !errors.Is(err, ErrDuplicateRecord) {
		t.Fatalf("error = %v, want ErrDuplicateRecord", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPGRepoGetByIDScansSubmittedAt(t *testing.T) {
	repo, mock := newPGRepoTest(t)
	cert := sampleCert()
	submittedAt := time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)
	cert.Submitted = true
	cert.SubmittedAt = &submittedAt

	mock.ExpectQuery("SELECT (.+) FROM certificates").
		WithArgs(cert.ID).
		WillReturnRows(certRow(cert))

	got, err := repo.GetByID(context.Background(), cert.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if !got.Submitted || got.SubmittedAt == nil || !got.SubmittedAt.Equal(submittedAt) {
		t.Fatalf("submission state = %v %v", got.Submitted, got.SubmittedAt)
	}
	if got.Fields.StudentName != cert.Fields.StudentName {
		t.Fatalf("fields = %+v", got.Fields)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPGRepoGetByIDMiss(t *testing.T) {
	repo, mock := newPGRepoTest(t)

	mock.ExpectQuery("SELECT (.+) FROM certificates").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPGRepoUpdateFieldsConditional(t *testing.T) {
	repo, mock := newPGRepoTest(t)
	fields := strictFields()
	updatedAt := time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)

	mock.ExpectExec("UPDATE certificates").
		WithArgs(
			fields.StudentCollege, fields.CompetitionProject, fields.StudentID, fields.StudentName,
			fields.AwardCategory, fields.AwardLevel, fields.CompetitionType, fields.Organizer,
			fields.AwardTime, fields.TutorName,
			updatedAt, "cert-1", "user-1",
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	updated, err := repo.UpdateFields(context.Background(), "cert-1", "user-1", fields, updatedAt)
	if err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}
	if !updated {
		t.Fatal("updated = false, want true")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPGRepoPromoteZeroRows(t *testing.T) {
	repo, mock := newPGRepoTest(t)
	submittedAt := time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)

	// The WHERE clause filters out submitted and foreign records, so the
	// losing side of a promotion race reads as zero rows, not an error.
	mock.ExpectExec("UPDATE certificates").
		WithArgs(submittedAt, submittedAt, "cert-1", "user-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	promoted, err := repo.Promote(context.Background(), "cert-1", "user-1", submittedAt)
	if err != nil {
		t.Fatalf("Promote: %v", err)
	}
	if promoted {
		t.Fatal("promoted = true, want false")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPGRepoPromoteAllCountsAffected(t *testing.T) {
	repo, mock := newPGRepoTest(t)
	submittedAt := time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)

	mock.ExpectExec("UPDATE certificates").
		WithArgs(submittedAt, submittedAt, "user-1").
		WillReturnResult(sqlmock.NewResult(0, 3))

	affected, err := repo.PromoteAllByUser(context.Background(), "user-1", submittedAt)
	if err != nil {
		t.Fatalf("PromoteAllByUser: %v", err)
	}
	if affected != 3 {
		t.Fatalf("affected = %d, want 3", affected)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPGRepoCountByUser(t *testing.T) {
	repo, mock := newPGRepoTest(t)

	mock.ExpectQuery("SELECT").
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"drafts", "submitted"}).AddRow(int64(4), int64(2)))

	status, err := repo.CountByUser(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("CountByUser: %v", err)
	}
	if status.DraftCount != 4 || status.SubmittedCount != 2 {
		t.Fatalf("status = %+v", status)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPGRepoListByUserClampsPaging(t *testing.T) {
	repo, mock := newPGRepoTest(t)
	cert := sampleCert()

	mock.ExpectQuery("SELECT (.+) FROM certificates").
		WithArgs("user-1", 100, 0).
		WillReturnRows(certRow(cert))

	certs, err := repo.ListByUser(context.Background(), "user-1", 500, -3)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(certs) != 1 || certs[0].ID != cert.ID {
		t.Fatalf("certs = %+v", certs)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPGRepoSubmittedByFileMissingRecord(t *testing.T) {
	repo, mock := newPGRepoTest(t)

	mock.ExpectQuery("SELECT submitted FROM certificates").
		WithArgs("file-1").
		WillReturnError(sql.ErrNoRows)

	submitted, err := repo.SubmittedByFile(context.Background(), "file-1")
	if err != nil {
		t.Fatalf("SubmittedByFile: %v", err)
	}
	if submitted {
		t.Fatal("submitted = true for a file without a record")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPGRepoDeleteByFileIgnoresMissingRows(t *testing.T) {
	repo, mock := newPGRepoTest(t)

	mock.ExpectExec("DELETE FROM certificates").
		WithArgs("file-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.DeleteByFile(context.Background(), "file-1"); err != nil {
		t.Fatalf("DeleteByFile: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
