package policy_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"leavetracker/internal/domain"
	"leavetracker/internal/policy"
)

type fakePolicyRepository struct {
	findPolicyFn     func(ctx context.Context, leaveType string) (*policy.LeavePolicy, error)
	findChainStepsFn func(ctx context.Context, role string) ([]policy.ApprovalChainStep, error)
}

func (f *fakePolicyRepository) FindPolicy(ctx context.Context, leaveType string) (*policy.LeavePolicy, error) {
	if f.findPolicyFn != nil {
		return f.findPolicyFn(ctx, leaveType)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakePolicyRepository) FindChainSteps(ctx context.Context, role string) ([]policy.ApprovalChainStep, error) {
	if f.findChainStepsFn != nil {
		return f.findChainStepsFn(ctx, role)
	}
	return nil, nil
}

func TestPolicyService_ApprovalChainFor(t *testing.T) {
	ctx := context.Background()

	t.Run("success database rows override defaults", func(t *testing.T) {
		repo := &fakePolicyRepository{
			findChainStepsFn: func(ctx context.Context, role string) ([]policy.ApprovalChainStep, error) {
				return []policy.ApprovalChainStep{
					{Role: role, Position: 1, Level: domain.LevelDean},
					{Role: role, Position: 2, Level: domain.LevelAdminPool},
				}, nil
			},
		}
		svc := policy.NewService(repo, 0, zap.NewNop())

		chain, err := svc.ApprovalChainFor(ctx, domain.RoleStaff)

		assert.NoError(t, err)
		assert.Equal(t, []string{domain.LevelDean, domain.LevelAdminPool}, chain)
	})

	t.Run("success compiled-in defaults per role", func(t *testing.T) {
		svc := policy.NewService(&fakePolicyRepository{}, 0, zap.NewNop())

		staff, err := svc.ApprovalChainFor(ctx, domain.RoleStaff)
		assert.NoError(t, err)
		assert.Equal(t, []string{domain.LevelHeadOfDepartment, domain.LevelHRAdmin}, staff)

		head, err := svc.ApprovalChainFor(ctx, domain.RoleHeadOfDepartment)
		assert.NoError(t, err)
		assert.Equal(t, []string{domain.LevelDean, domain.LevelHRAdmin}, head)

		principal, err := svc.ApprovalChainFor(ctx, domain.RolePrincipal)
		assert.NoError(t, err)
		assert.Equal(t, []string{domain.LevelAdminPool}, principal)
	})

	t.Run("success unknown role falls back to staff chain", func(t *testing.T) {
		svc := policy.NewService(&fakePolicyRepository{}, 0, zap.NewNop())

		chain, err := svc.ApprovalChainFor(ctx, "contractor")

		assert.NoError(t, err)
		assert.Equal(t, []string{domain.LevelHeadOfDepartment, domain.LevelHRAdmin}, chain)
	})
}

func TestPolicyService_Limits(t *testing.T) {
	ctx := context.Background()

	t.Run("success database policy overrides default", func(t *testing.T) {
		repo := &fakePolicyRepository{
			findPolicyFn: func(ctx context.Context, leaveType string) (*policy.LeavePolicy, error) {
				return &policy.LeavePolicy{
					LeaveType:          leaveType,
					AnnualAllocation:   decimal.NewFromInt(25),
					MaxConsecutiveDays: decimal.NewFromInt(12),
				}, nil
			},
		}
		svc := policy.NewService(repo, 0, zap.NewNop())

		allocation, err := svc.AnnualAllocationFor(ctx, policy.TypeAnnual)
		assert.NoError(t, err)
		assert.True(t, allocation.Equal(decimal.NewFromInt(25)))

		maxDays, err := svc.MaxConsecutiveDaysFor(ctx, policy.TypeAnnual)
		assert.NoError(t, err)
		assert.True(t, maxDays.Equal(decimal.NewFromInt(12)))
	})

	t.Run("success defaults when no row exists", func(t *testing.T) {
		svc := policy.NewService(&fakePolicyRepository{}, 0, zap.NewNop())

		allocation, err := svc.AnnualAllocationFor(ctx, policy.TypeSick)
		assert.NoError(t, err)
		assert.True(t, allocation.Equal(decimal.NewFromInt(10)))

		maxDays, err := svc.MaxConsecutiveDaysFor(ctx, policy.TypeUnpaid)
		assert.NoError(t, err)
		assert.True(t, maxDays.Equal(decimal.NewFromInt(30)))
	})

	t.Run("negative advance notice never below zero", func(t *testing.T) {
		svc := policy.NewService(&fakePolicyRepository{}, -3, zap.NewNop())

		assert.Equal(t, 0, svc.MinAdvanceNoticeDays(ctx))
	})
}

func TestPolicyService_KnownLeaveType(t *testing.T) {
	svc := policy.NewService(&fakePolicyRepository{}, 0, zap.NewNop())

	assert.True(t, svc.KnownLeaveType(policy.TypeAnnual))
	assert.True(t, svc.KnownLeaveType(policy.TypeSick))
	assert.True(t, svc.KnownLeaveType(policy.TypeUnpaid))
	assert.False(t, svc.KnownLeaveType("SABBATICAL"))
}
