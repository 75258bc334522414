package policy

import (
	"context"

	"gorm.io/gorm"
)

//go:generate mockgen -source=policy_repo.go -destination=mock/policy_repo_mock.go -package=mock
type Repository interface {
	FindPolicy(ctx context.Context, leaveType string) (*LeavePolicy, error)
	FindChainSteps(ctx context.Context, role string) ([]ApprovalChainStep, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) FindPolicy(ctx context.Context, leaveType string) (*LeavePolicy, error) {
	var p LeavePolicy
	err := r.db.WithContext(ctx).First(&p, "leave_type = ?", leaveType).Error
	return &p, err
}

func (r *repository) FindChainSteps(ctx context.Context, role string) ([]ApprovalChainStep, error) {
	var steps []ApprovalChainStep
	err := r.db.WithContext(ctx).
		Where("role = ?", role).
		Order("position ASC").
		Find(&steps).Error
	return steps, err
}
