package leave

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"leavetracker/internal/directory"
	"leavetracker/internal/domain"
	leaveerrors "leavetracker/internal/leave/errors"
	"leavetracker/internal/policy"
)

// ApproverLevel is one resolved position of an approval chain. A nil
// ApproverID marks a pooled level: any active member of the level's role pool
// may act. Otherwise the level binds to exactly that person.
type ApproverLevel struct {
	Level      string
	ApproverID *uuid.UUID
}

// Pooled reports whether any member of the level's role pool may act.
func (l ApproverLevel) Pooled() bool {
	return l.ApproverID == nil
}

// ChainResolver computes the ordered approval chain for an applicant from
// their role and department. Resolution is atomic: if any person-bound level
// has nobody assigned, no partial chain is returned.
type ChainResolver struct {
	directory directory.Service
	policy    policy.Service
	logger    *zap.Logger
}

func NewChainResolver(dir directory.Service, policySvc policy.Service, logger ...*zap.Logger) *ChainResolver {
	l := zap.L().Named("leave.chain_resolver")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leave.chain_resolver")
	}
	return &ChainResolver{directory: dir, policy: policySvc, logger: l}
}

func (r *ChainResolver) Resolve(ctx context.Context, applicantID uuid.UUID) ([]ApproverLevel, error) {
	role, err := r.directory.RoleOf(ctx, applicantID)
	if err != nil {
		return nil, err
	}

	// A director has no department-local supervisor, so the chain must not
	// depend on a department at all: one pooled admin step.
	if role == domain.RoleDirector {
		return []ApproverLevel{{Level: domain.LevelAdminPool}}, nil
	}

	tags, err := r.policy.ApprovalChainFor(ctx, role)
	if err != nil {
		return nil, err
	}

	var departmentID *uuid.UUID
	departmentLoaded := false

	chain := make([]ApproverLevel, 0, len(tags))
	for _, tag := range tags {
		if domain.PoolRolesFor(tag) != nil {
			chain = append(chain, ApproverLevel{Level: tag})
			continue
		}

		if !departmentLoaded {
			departmentID, err = r.directory.DepartmentOf(ctx, applicantID)
			if err != nil {
				return nil, err
			}
			departmentLoaded = true
		}
		if departmentID == nil {
			r.logger.Warn("chain resolution failed: applicant has no department",
				zap.String("applicant_id", applicantID.String()),
				zap.String("level", tag),
			)
			return nil, leaveerrors.ErrChainUnresolved
		}

		approverID, err := r.directory.SpecificApproverFor(ctx, tag, *departmentID)
		if err != nil {
			return nil, err
		}
		if approverID == nil {
			r.logger.Warn("chain resolution failed: level has no assigned approver",
				zap.String("applicant_id", applicantID.String()),
				zap.String("department_id", departmentID.String()),
				zap.String("level", tag),
			)
			return nil, leaveerrors.ErrChainUnresolved
		}
		chain = append(chain, ApproverLevel{Level: tag, ApproverID: approverID})
	}

	return chain, nil
}
