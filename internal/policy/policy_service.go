package policy

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"leavetracker/internal/domain"
)

// Leave types accepted on submission.
const (
	TypeAnnual = "ANNUAL"
	TypeSick   = "SICK"
	TypeUnpaid = "UNPAID"
)

// Compiled-in fallbacks used when no policy row exists for a leave type.
var defaultPolicies = map[string]LeavePolicy{
	TypeAnnual: {LeaveType: TypeAnnual, AnnualAllocation: decimal.NewFromInt(20), MaxConsecutiveDays: decimal.NewFromInt(15)},
	TypeSick:   {LeaveType: TypeSick, AnnualAllocation: decimal.NewFromInt(10), MaxConsecutiveDays: decimal.NewFromInt(10)},
	TypeUnpaid: {LeaveType: TypeUnpaid, AnnualAllocation: decimal.NewFromInt(30), MaxConsecutiveDays: decimal.NewFromInt(30)},
}

// defaultChains is the fallback chain per applicant role. The director branch
// is resolved by the chain resolver before configuration is consulted, so it
// has no entry here.
var defaultChains = map[string][]string{
	domain.RoleStaff:            {domain.LevelHeadOfDepartment, domain.LevelHRAdmin},
	domain.RoleHeadOfDepartment: {domain.LevelDean, domain.LevelHRAdmin},
	domain.RoleDean:             {domain.LevelPrincipal, domain.LevelHRAdmin},
	domain.RolePrincipal:        {domain.LevelAdminPool},
	domain.RoleHRAdmin:          {domain.LevelAdminPool},
	domain.RoleAdmin:            {domain.LevelAdminPool},
}

// Service is the configuration surface the engine reads: approval chains per
// role and the submission-time limits.
//
//go:generate mockgen -source=policy_service.go -destination=mock/policy_service_mock.go -package=mock
type Service interface {
	ApprovalChainFor(ctx context.Context, role string) ([]string, error)
	MinAdvanceNoticeDays(ctx context.Context) int
	MaxConsecutiveDaysFor(ctx context.Context, leaveType string) (decimal.Decimal, error)
	AnnualAllocationFor(ctx context.Context, leaveType string) (decimal.Decimal, error)
	KnownLeaveType(leaveType string) bool
}

type service struct {
	repo             Repository
	minAdvanceNotice int
	logger           *zap.Logger
}

// NewService builds the policy service. minAdvanceNoticeDays comes from
// deployment configuration (env) rather than the database since it is an
// institution-wide constant.
func NewService(repo Repository, minAdvanceNoticeDays int, logger ...*zap.Logger) Service {
	l := zap.L().Named("policy.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("policy.service")
	}
	if minAdvanceNoticeDays < 0 {
		minAdvanceNoticeDays = 0
	}
	return &service{repo: repo, minAdvanceNotice: minAdvanceNoticeDays, logger: l}
}

func (s *service) ApprovalChainFor(ctx context.Context, role string) ([]string, error) {
	steps, err := s.repo.FindChainSteps(ctx, role)
	if err != nil {
		return nil, err
	}
	if len(steps) > 0 {
		levels := make([]string, len(steps))
		for i, st := range steps {
			levels[i] = st.Level
		}
		return levels, nil
	}

	if chain, ok := defaultChains[role]; ok {
		return chain, nil
	}
	s.logger.Warn("no approval chain configured for role, using staff default",
		zap.String("role", role),
	)
	return defaultChains[domain.RoleStaff], nil
}

func (s *service) MinAdvanceNoticeDays(ctx context.Context) int {
	return s.minAdvanceNotice
}

func (s *service) MaxConsecutiveDaysFor(ctx context.Context, leaveType string) (decimal.Decimal, error) {
	p, err := s.findPolicy(ctx, leaveType)
	if err != nil {
		return decimal.Zero, err
	}
	return p.MaxConsecutiveDays, nil
}

func (s *service) AnnualAllocationFor(ctx context.Context, leaveType string) (decimal.Decimal, error) {
	p, err := s.findPolicy(ctx, leaveType)
	if err != nil {
		return decimal.Zero, err
	}
	return p.AnnualAllocation, nil
}

func (s *service) KnownLeaveType(leaveType string) bool {
	_, ok := defaultPolicies[leaveType]
	return ok
}

func (s *service) findPolicy(ctx context.Context, leaveType string) (LeavePolicy, error) {
	p, err := s.repo.FindPolicy(ctx, leaveType)
	if err == nil {
		return *p, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if def, ok := defaultPolicies[leaveType]; ok {
			return def, nil
		}
		return defaultPolicies[TypeAnnual], nil
	}
	return LeavePolicy{}, err
}
