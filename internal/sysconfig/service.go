package sysconfig

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/mona5211005/certificate-system/internal/shared/telemetry"
)

const (
	KeySubmitDeadline = "submit_deadline"
	KeyVisionAPIKey   = "vision_api_key"
)

// DeadlineLayout is the only accepted deadline format.
const DeadlineLayout = "2006-01-02 15:04:05"

// DefaultDeadline applies when the stored value is missing or damaged, so
// submissions are never blocked by configuration problems.
var DefaultDeadline = time.Date(2025, 12, 31, 23, 59, 59, 0, time.UTC)

// ErrInvalidDeadline carries the user-facing format hint.
var ErrInvalidDeadline = errors.New("时间格式错误！请使用YYYY-MM-DD HH:MM:SS格式（如：2025-12-31 23:59:59）")

var ErrEmptyKey = errors.New("api key must not be empty")

type Service struct {
	Repo Repo
}

func NewService(repo Repo) *Service {
	return &Service{Repo: repo}
}

// Deadline returns the global submission cutoff. The value is read through
// on every call so an admin update takes effect immediately. All times are
// interpreted as UTC.
func (s *Service) Deadline(ctx context.Context) (time.Time, error) {
	raw, err := s.Repo.Get(ctx, KeySubmitDeadline)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return DefaultDeadline, nil
		}
		return time.Time{}, err
	}
	parsed, err := time.ParseInLocation(DeadlineLayout, strings.TrimSpace(raw), time.UTC)
	if err != nil {
		telemetry.Warn("sysconfig.deadline_unparseable", map[string]any{"value": raw})
		return DefaultDeadline, nil
	}
	return parsed, nil
}

// SetDeadline validates the format before writing; a malformed value is
// rejected outright rather than stored for Deadline to patch over later.
func (s *Service) SetDeadline(ctx context.Context, value string) error {
	value = strings.TrimSpace(value)
	if _, err := time.ParseInLocation(DeadlineLayout, value, time.UTC); err != nil {
		return ErrInvalidDeadline
	}
	return s.Repo.Set(ctx, KeySubmitDeadline, value)
}

// VisionKey returns the extraction credential, empty when unset. Callers
// resolve it per request; nothing caches it between requests.
func (s *Service) VisionKey(ctx context.Context) (string, error) {
	raw, err := s.Repo.Get(ctx, KeyVisionAPIKey)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(raw), nil
}

func (s *Service) SetVisionKey(ctx context.Context, key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return ErrEmptyKey
	}
	return s.Repo.Set(ctx, KeyVisionAPIKey, key)
}
