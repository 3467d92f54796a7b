package certificates

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mona5211005/certificate-system/internal/files"
	"github.com/mona5211005/certificate-system/internal/intake"
	"github.com/mona5211005/certificate-system/internal/raster"
	"github.com/mona5211005/certificate-system/internal/shared/metrics"
	"github.com/mona5211005/certificate-system/internal/shared/telemetry"
	"github.com/mona5211005/certificate-system/internal/sysconfig"
	"github.com/mona5211005/certificate-system/internal/users"
	"github.com/mona5211005/certificate-system/internal/vision"
)

// Upload carries one multipart file through the pipeline.
type Upload struct {
	FileName string
	Data     []byte
}

// Service orchestrates the submission pipeline: file persistence behind
// the duplicate guard, the draft/submitted lifecycle, and the deadline
// gate on every promotion path.
type Service struct {
	Repo      Repo
	Files     *files.Service
	Users     *users.Service
	Config    *sysconfig.Service
	Validator *Validator
	Renderer  *raster.Renderer
	Extractor *vision.Extractor

	MaxUploadBytes int64
}

// SaveDraft validates loosely, persists the upload, and parks the record
// as an editable draft. Drafts are not deadline-gated.
func (s *Service) SaveDraft(ctx context.Context, userID string, upload Upload, fields vision.Fields) (Certificate, error) {
	if err := s.Validator.CheckDraft(fields); err != nil {
		return Certificate{}, err
	}
	cert, err := s.persist(ctx, userID, upload, fields, false, time.Now().UTC())
	if err != nil {
		return Certificate{}, err
	}
	metrics.IncCertificateDrafted()
	telemetry.Info("certificates.draft_saved", map[string]any{
		"certificate_id": cert.ID,
		"user_id":        userID,
		"file_id":        cert.FileID,
	})
	return cert, nil
}

// Submit validates strictly and persists the record already promoted.
// The deadline gate runs before any file or record mutation and ignores
// field validity.
func (s *Service) Submit(ctx context.Context, userID, role string, upload Upload, fields vision.Fields) (Certificate, error) {
	if err := s.gateDeadline(ctx, role); err != nil {
		return Certificate{}, err
	}
	if err := s.Validator.CheckSubmit(fields); err != nil {
		return Certificate{}, err
	}
	cert, err := s.persist(ctx, userID, upload, fields, true, time.Now().UTC())
	if err != nil {
		return Certificate{}, err
	}
	metrics.AddCertificatesSubmitted(1)
	telemetry.Info("certificates.submitted", map[string]any{
		"certificate_id": cert.ID,
		"user_id":        userID,
		"file_id":        cert.FileID,
	})
	return cert, nil
}

// UpdateDraft rewrites a draft's fields under loose validation. The
// update is conditional on the record still being a draft.
func (s *Service) UpdateDraft(ctx context.Context, userID, certID string, fields vision.Fields) (Certificate, error) {
	if err := s.Validator.CheckDraft(fields); err != nil {
		return Certificate{}, err
	}
	updated, err := s.Repo.UpdateFields(ctx, certID, userID, fields, time.Now().UTC())
	if err != nil {
		return Certificate{}, err
	}
	if !updated {
		return Certificate{}, s.explainNoRows(ctx, userID, certID)
	}
	cert, err := s.Repo.GetByID(ctx, certID)
	if err != nil {
		return Certificate{}, err
	}
	telemetry.Info("certificates.draft_updated", map[string]any{
		"certificate_id": certID,
		"user_id":        userID,
	})
	return cert, nil
}

// PromoteDraft flips one draft to submitted after strict validation of
// its stored fields. The conditional update makes concurrent promotion
// race-safe: a second caller sees the record as already submitted.
func (s *Service) PromoteDraft(ctx context.Context, userID, role, certID string) (Certificate, error) {
	if err := s.gateDeadline(ctx, role); err != nil {
		return Certificate{}, err
	}

	cert, err := s.Repo.GetByID(ctx, certID)
	if err != nil {
		return Certificate{}, err
	}
	if cert.UserID != userID {
		return Certificate{}, ErrNotFound
	}
	if cert.Submitted {
		return Certificate{}, ErrNotEditable
	}
	if err := s.Validator.CheckSubmit(cert.Fields); err != nil {
		return Certificate{}, err
	}

	promoted, err := s.Repo.Promote(ctx, certID, userID, time.Now().UTC())
	if err != nil {
		return Certificate{}, err
	}
	if !promoted {
		return Certificate{}, s.explainNoRows(ctx, userID, certID)
	}
	metrics.AddCertificatesSubmitted(1)
	telemetry.Info("certificates.promoted", map[string]any{
		"certificate_id": certID,
		"user_id":        userID,
	})
	return s.Repo.GetByID(ctx, certID)
}

// BatchSubmitDrafts promotes every draft the user owns with one shared
// timestamp. Zero eligible drafts is a no-op, not an error.
func (s *Service) BatchSubmitDrafts(ctx context.Context, userID, role string) (int64, error) {
	if err := s.gateDeadline(ctx, role); err != nil {
		return 0, err
	}
	affected, err := s.Repo.PromoteAllByUser(ctx, userID, time.Now().UTC())
	if err != nil {
		return 0, err
	}
	if affected > 0 {
		metrics.AddCertificatesSubmitted(int(affected))
	}
	telemetry.Info("certificates.batch_submitted", map[string]any{
		"user_id":  userID,
		"affected": affected,
	})
	return affected, nil
}

// Status reports draft and submitted counts for the batch-submit
// decision.
func (s *Service) Status(ctx context.Context, userID string) (Status, error) {
	if userID == "" {
		return Status{}, errors.New("userID is required")
	}
	return s.Repo.CountByUser(ctx, userID)
}

// GetByFile returns the certificate attached to an upload, for
// re-opening a parked draft in the review form.
func (s *Service) GetByFile(ctx context.Context, userID, role, fileID string) (Certificate, error) {
	cert, err := s.Repo.GetByFile(ctx, fileID)
	if err != nil {
		return Certificate{}, err
	}
	if cert.UserID != userID && role != users.RoleAdmin {
		return Certificate{}, ErrNotFound
	}
	return cert, nil
}

// ListByUser returns the user's records newest-first.
func (s *Service) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Certificate, error) {
	if userID == "" {
		return nil, errors.New("userID is required")
	}
	return s.Repo.ListByUser(ctx, userID, limit, offset)
}

// persist runs the shared tail of SaveDraft and Submit: intake check,
// file storage behind the duplicate guard, then the record insert. A
// freshly written file is rolled back when the insert fails; a reused
// one is left alone because it already has its own record.
func (s *Service) persist(ctx context.Context, userID string, upload Upload, fields vision.Fields, submitted bool, now time.Time) (Certificate, error) {
	kind, err := intake.Inspect(upload.FileName, upload.Data, s.MaxUploadBytes)
	if err != nil {
		return Certificate{}, err
	}

	user, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return Certificate{}, fmt.Errorf("resolve account: %w", err)
	}

	file, reused, err := s.Files.Store(ctx, userID, user.Account, upload.FileName, upload.Data, string(kind))
	if err != nil {
		return Certificate{}, err
	}

	cert := Certificate{
		ID:        uuid.NewString(),
		UserID:    userID,
		FileID:    file.ID,
		Fields:    fields,
		Submitted: submitted,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if submitted {
		t := now
		cert.SubmittedAt = &t
	}

	if err := s.Repo.Create(ctx, cert); err != nil {
		if !reused {
			if discardErr := s.Files.Discard(ctx, file.ID); discardErr != nil {
				telemetry.Error("certificates.rollback_failed", map[string]any{
					"file_id": file.ID,
					"error":   discardErr.Error(),
				})
			}
		}
		return Certificate{}, err
	}
	return cert, nil
}

// explainNoRows turns a zero-row conditional update into the caller's
// error: the record is either missing, foreign, or already submitted.
func (s *Service) explainNoRows(ctx context.Context, userID, certID string) error {
	cert, err := s.Repo.GetByID(ctx, certID)
	if err != nil {
		return err
	}
	if cert.UserID != userID {
		return ErrNotFound
	}
	if cert.Submitted {
		return ErrNotEditable
	}
	return ErrNotFound
}

func (s *Service) gateDeadline(ctx context.Context, role string) error {
	if role == users.RoleAdmin {
		return nil
	}
	deadline, err := s.Config.Deadline(ctx)
	if err != nil {
		return fmt.Errorf("read deadline: %w", err)
	}
	if time.Now().UTC().After(deadline) {
		return ErrDeadlinePassed
	}
	return nil
}
