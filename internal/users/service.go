package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mona5211005/certificate-system/internal/shared/util"
)

// Service owns user lookups and registration. Authentication itself is
// external; this layer only keeps the ownership records the pipeline
// references.
type Service struct {
	Repo Repo

	// Account shapes per role: students carry long student numbers, staff
	// carry short work numbers.
	StudentAccountLen int
	StaffAccountLen   int
}

func NewService(repo Repo) *Service {
	return &Service{Repo: repo, StudentAccountLen: 13, StaffAccountLen: 8}
}

func (s *Service) Create(ctx context.Context, account, name, role, college string) (User, error) {
	if s == nil || s.Repo == nil {
		return User{}, errors.New("users service not configured")
	}
	account = strings.TrimSpace(account)
	name = strings.TrimSpace(name)
	role = strings.TrimSpace(role)
	if role == "" {
		role = RoleStudent
	}
	if name == "" {
		return User{}, errors.New("name is required")
	}
	if err := s.validateAccount(account, role); err != nil {
		return User{}, err
	}
	user := User{
		ID:        uuid.NewString(),
		Account:   account,
		Name:      name,
		Role:      role,
		College:   strings.TrimSpace(college),
		Active:    true,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.Repo.Create(ctx, user); err != nil {
		return User{}, err
	}
	return user, nil
}

func (s *Service) GetByID(ctx context.Context, userID string) (User, error) {
	if s == nil || s.Repo == nil {
		return User{}, errors.New("users service not configured")
	}
	if strings.TrimSpace(userID) == "" {
		return User{}, errors.New("user id is required")
	}
	return s.Repo.GetByID(ctx, userID)
}

func (s *Service) GetByAccount(ctx context.Context, account string) (User, error) {
	if s == nil || s.Repo == nil {
		return User{}, errors.New("users service not configured")
	}
	if strings.TrimSpace(account) == "" {
		return User{}, errors.New("account is required")
	}
	return s.Repo.GetByAccount(ctx, account)
}

func (s *Service) validateAccount(account, role string) error {
	var want int
	switch role {
	case RoleStudent:
		want = s.StudentAccountLen
	case RoleTeacher, RoleAdmin:
		want = s.StaffAccountLen
	default:
		return fmt.Errorf("unknown role %q", role)
	}
	if len(account) != want || !util.AllDigits(account) {
		return fmt.Errorf("account for role %s must be %d digits", role, want)
	}
	return nil
}
