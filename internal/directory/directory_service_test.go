package directory_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"leavetracker/internal/directory"
	"leavetracker/internal/domain"
)

type fakeDirectoryRepository struct {
	findUserByIDFn           func(ctx context.Context, id uuid.UUID) (*directory.User, error)
	findDepartmentByIDFn     func(ctx context.Context, id uuid.UUID) (*directory.Department, error)
	findActiveUsersByRolesFn func(ctx context.Context, roles []string) ([]directory.User, error)
}

func (f *fakeDirectoryRepository) FindUserByID(ctx context.Context, id uuid.UUID) (*directory.User, error) {
	if f.findUserByIDFn != nil {
		return f.findUserByIDFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeDirectoryRepository) FindDepartmentByID(ctx context.Context, id uuid.UUID) (*directory.Department, error) {
	if f.findDepartmentByIDFn != nil {
		return f.findDepartmentByIDFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeDirectoryRepository) FindActiveUsersByRoles(ctx context.Context, roles []string) ([]directory.User, error) {
	if f.findActiveUsersByRolesFn != nil {
		return f.findActiveUsersByRolesFn(ctx, roles)
	}
	return nil, nil
}

func (f *fakeDirectoryRepository) UserRoles(ctx context.Context) ([]directory.UserRoleRow, error) {
	return nil, nil
}

func TestDirectoryService_RoleOf(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		userID := uuid.New()
		repo := &fakeDirectoryRepository{
			findUserByIDFn: func(ctx context.Context, id uuid.UUID) (*directory.User, error) {
				assert.Equal(t, userID, id)
				return &directory.User{ID: id, Role: domain.RoleDean, Active: true}, nil
			},
		}
		svc := directory.NewService(repo, zap.NewNop())

		role, err := svc.RoleOf(ctx, userID)

		assert.NoError(t, err)
		assert.Equal(t, domain.RoleDean, role)
	})

	t.Run("negative unknown user", func(t *testing.T) {
		svc := directory.NewService(&fakeDirectoryRepository{}, zap.NewNop())

		_, err := svc.RoleOf(ctx, uuid.New())

		assert.ErrorIs(t, err, directory.ErrUserNotFound)
	})
}

func TestDirectoryService_SpecificApproverFor(t *testing.T) {
	ctx := context.Background()
	deptID := uuid.New()

	t.Run("success head and dean come from the department row", func(t *testing.T) {
		headID := uuid.New()
		deanID := uuid.New()
		repo := &fakeDirectoryRepository{
			findDepartmentByIDFn: func(ctx context.Context, id uuid.UUID) (*directory.Department, error) {
				return &directory.Department{ID: id, Name: "Mathematics", HeadID: &headID, DeanID: &deanID}, nil
			},
		}
		svc := directory.NewService(repo, zap.NewNop())

		head, err := svc.SpecificApproverFor(ctx, domain.LevelHeadOfDepartment, deptID)
		assert.NoError(t, err)
		assert.Equal(t, headID, *head)

		dean, err := svc.SpecificApproverFor(ctx, domain.LevelDean, deptID)
		assert.NoError(t, err)
		assert.Equal(t, deanID, *dean)
	})

	t.Run("success unfilled seat is nil without error", func(t *testing.T) {
		repo := &fakeDirectoryRepository{
			findDepartmentByIDFn: func(ctx context.Context, id uuid.UUID) (*directory.Department, error) {
				return &directory.Department{ID: id, Name: "Physics"}, nil
			},
		}
		svc := directory.NewService(repo, zap.NewNop())

		head, err := svc.SpecificApproverFor(ctx, domain.LevelHeadOfDepartment, deptID)

		assert.NoError(t, err)
		assert.Nil(t, head)
	})

	t.Run("success principal is institution-wide", func(t *testing.T) {
		principalID := uuid.New()
		repo := &fakeDirectoryRepository{
			findActiveUsersByRolesFn: func(ctx context.Context, roles []string) ([]directory.User, error) {
				assert.Equal(t, []string{domain.RolePrincipal}, roles)
				return []directory.User{{ID: principalID, Role: domain.RolePrincipal, Active: true}}, nil
			},
		}
		svc := directory.NewService(repo, zap.NewNop())

		principal, err := svc.SpecificApproverFor(ctx, domain.LevelPrincipal, deptID)

		assert.NoError(t, err)
		assert.Equal(t, principalID, *principal)
	})

	t.Run("success pooled level resolves to nobody", func(t *testing.T) {
		svc := directory.NewService(&fakeDirectoryRepository{}, zap.NewNop())

		approver, err := svc.SpecificApproverFor(ctx, domain.LevelAdminPool, deptID)

		assert.NoError(t, err)
		assert.Nil(t, approver)
	})
}

func TestDirectoryService_MembersOfRole(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		a, b := uuid.New(), uuid.New()
		repo := &fakeDirectoryRepository{
			findActiveUsersByRolesFn: func(ctx context.Context, roles []string) ([]directory.User, error) {
				assert.Equal(t, []string{domain.RoleHRAdmin}, roles)
				return []directory.User{{ID: a}, {ID: b}}, nil
			},
		}
		svc := directory.NewService(repo, zap.NewNop())

		members, err := svc.MembersOfRole(ctx, domain.RoleHRAdmin)

		assert.NoError(t, err)
		assert.Equal(t, []uuid.UUID{a, b}, members)
	})
}
