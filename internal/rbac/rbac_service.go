package rbac

import (
	"sync"

	"github.com/casbin/casbin/v2"
	"go.uber.org/zap"

	"leavetracker/internal/domain"
)

// rolePermissions is the fixed permission policy. Roles here are intrinsic
// user attributes, so there is no management surface: the table changes only
// with the code.
var rolePermissions = map[string][][2]string{
	domain.RoleStaff: {
		{"leave", "create"}, {"leave", "read"}, {"balance", "read"},
	},
	domain.RoleHeadOfDepartment: {
		{"leave", "create"}, {"leave", "read"}, {"leave", "approve"}, {"balance", "read"},
	},
	domain.RoleDean: {
		{"leave", "create"}, {"leave", "read"}, {"leave", "approve"}, {"balance", "read"},
	},
	domain.RolePrincipal: {
		{"leave", "create"}, {"leave", "read"}, {"leave", "approve"}, {"balance", "read"},
	},
	domain.RoleDirector: {
		{"leave", "create"}, {"leave", "read"}, {"balance", "read"},
	},
	domain.RoleHRAdmin: {
		{"leave", "create"}, {"leave", "read"}, {"leave", "approve"}, {"leave", "revoke"}, {"balance", "read"},
	},
	domain.RoleAdmin: {
		{"leave", "create"}, {"leave", "read"}, {"leave", "approve"}, {"leave", "revoke"}, {"balance", "read"},
	},
}

//go:generate mockgen -source=rbac_service.go -destination=mock/rbac_service_mock.go -package=mock
type Service interface {
	LoadPolicy() error
	Enforce(req domain.EnforceRequest) (bool, error)
}

type service struct {
	repo     Repository
	enforcer *casbin.Enforcer
	mu       sync.Mutex
	logger   *zap.Logger
}

func NewService(repo Repository, enforcer *casbin.Enforcer, logger ...*zap.Logger) Service {
	l := zap.L().Named("rbac.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("rbac.service")
	}
	return &service{
		repo:     repo,
		enforcer: enforcer,
		logger:   l,
	}
}

func (s *service) LoadPolicy() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.loadPolicyUnlocked()
}

func (s *service) loadPolicyUnlocked() error {
	s.enforcer.ClearPolicy()

	userRoles, err := s.repo.UserRoles()
	if err != nil {
		return err
	}
	s.logger.Debug("rbac load policy", zap.Int("user_roles", len(userRoles)))

	for _, ur := range userRoles {
		if _, err := s.enforcer.AddGroupingPolicy(ur.UserID, ur.Role); err != nil {
			return err
		}
	}

	for role, perms := range rolePermissions {
		for _, p := range perms {
			if _, err := s.enforcer.AddPolicy(role, p[0], p[1]); err != nil {
				return err
			}
		}
	}

	return nil
}

func (s *service) Enforce(req domain.EnforceRequest) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Reload per decision so role changes in the directory take effect
	// without a restart. The policy is small; this is cheap.
	if err := s.loadPolicyUnlocked(); err != nil {
		return false, err
	}

	allowed, err := s.enforcer.Enforce(req.UserID, req.Resource, req.Action)
	if err != nil {
		s.logger.Error("rbac enforce failed",
			zap.String("user_id", req.UserID),
			zap.String("resource", req.Resource),
			zap.String("action", req.Action),
			zap.Error(err),
		)
		return false, err
	}

	s.logger.Debug("rbac enforce result",
		zap.String("user_id", req.UserID),
		zap.String("resource", req.Resource),
		zap.String("action", req.Action),
		zap.Bool("allowed", allowed),
	)

	return allowed, nil
}
