package directory

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"leavetracker/internal/domain"
	"leavetracker/internal/shared/apperror"
)

var ErrUserNotFound = apperror.New(
	apperror.CodeNotFound,
	"user not found",
	http.StatusNotFound,
)

// Service is the read-only organisational lookup surface the approval engine
// depends on: who has which role, which department a user belongs to, and
// which person fills a specific approval level for a department.
//
//go:generate mockgen -source=directory_service.go -destination=mock/directory_service_mock.go -package=mock
type Service interface {
	RoleOf(ctx context.Context, userID uuid.UUID) (string, error)
	DepartmentOf(ctx context.Context, userID uuid.UUID) (*uuid.UUID, error)
	MembersOfRole(ctx context.Context, role string) ([]uuid.UUID, error)
	SpecificApproverFor(ctx context.Context, level string, departmentID uuid.UUID) (*uuid.UUID, error)
}

type service struct {
	repo   Repository
	logger *zap.Logger
}

func NewService(repo Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("directory.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("directory.service")
	}
	return &service{repo: repo, logger: l}
}

func (s *service) RoleOf(ctx context.Context, userID uuid.UUID) (string, error) {
	u, err := s.repo.FindUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrUserNotFound
		}
		return "", err
	}
	return u.Role, nil
}

func (s *service) DepartmentOf(ctx context.Context, userID uuid.UUID) (*uuid.UUID, error) {
	u, err := s.repo.FindUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u.DepartmentID, nil
}

func (s *service) MembersOfRole(ctx context.Context, role string) ([]uuid.UUID, error) {
	users, err := s.repo.FindActiveUsersByRoles(ctx, []string{role})
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, len(users))
	for i, u := range users {
		ids[i] = u.ID
	}
	return ids, nil
}

// SpecificApproverFor resolves a person-bound approval level. A nil result
// with nil error means the level is unfilled (e.g. department without a head);
// callers decide whether that is fatal.
func (s *service) SpecificApproverFor(ctx context.Context, level string, departmentID uuid.UUID) (*uuid.UUID, error) {
	switch level {
	case domain.LevelHeadOfDepartment, domain.LevelDean:
		dept, err := s.repo.FindDepartmentByID(ctx, departmentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, nil
			}
			return nil, err
		}
		if level == domain.LevelHeadOfDepartment {
			return dept.HeadID, nil
		}
		return dept.DeanID, nil

	case domain.LevelPrincipal:
		// The principal is institution-wide, not a department attribute.
		users, err := s.repo.FindActiveUsersByRoles(ctx, []string{domain.RolePrincipal})
		if err != nil {
			return nil, err
		}
		if len(users) == 0 {
			return nil, nil
		}
		id := users[0].ID
		return &id, nil

	default:
		s.logger.Warn("specific approver lookup for non person-bound level",
			zap.String("level", level),
		)
		return nil, nil
	}
}
