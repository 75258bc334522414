package balance

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	balanceerrors "leavetracker/internal/balance/errors"
	"leavetracker/internal/policy"
)

//go:generate mockgen -source=balance_service.go -destination=mock/balance_service_mock.go -package=mock
type Service interface {
	// GetForUser returns the user's balances for a year, lazily provisioning
	// default allocations for leave types that have no row yet.
	GetForUser(ctx context.Context, userID string, year int) ([]BalanceResponse, error)
}

type service struct {
	db     *sql.DB
	repo   Repository
	policy policy.Service
	logger *zap.Logger
}

func NewService(db *sql.DB, repo Repository, policySvc policy.Service, logger ...*zap.Logger) Service {
	l := zap.L().Named("balance.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("balance.service")
	}
	return &service{db: db, repo: repo, policy: policySvc, logger: l}
}

func (s *service) GetForUser(ctx context.Context, userID string, year int) ([]BalanceResponse, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, balanceerrors.ErrInvalidUserID
	}
	if year < 2000 || year > time.Now().UTC().Year()+1 {
		return nil, balanceerrors.ErrInvalidYear
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("balance provision begin tx failed", zap.Error(err))
		return nil, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	for _, leaveType := range []string{policy.TypeAnnual, policy.TypeSick, policy.TypeUnpaid} {
		allocation, err := s.policy.AnnualAllocationFor(ctx, leaveType)
		if err != nil {
			s.logger.Error("balance provision allocation lookup failed",
				zap.String("leave_type", leaveType),
				zap.Error(err),
			)
			return nil, err
		}
		if _, err := qtx.Provision(ctx, uid, leaveType, year, allocation); err != nil {
			s.logger.Error("balance provision failed",
				zap.String("user_id", userID),
				zap.String("leave_type", leaveType),
				zap.Error(err),
			)
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		s.logger.Error("balance provision commit failed", zap.Error(err))
		return nil, err
	}

	balances, err := s.repo.FindByUserAndYear(ctx, uid, year)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(balances), nil
}
