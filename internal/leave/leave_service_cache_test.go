package leave_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"leavetracker/internal/domain"
	"leavetracker/internal/leave"
)

func TestLeaveService_PendingStepsForCaching(t *testing.T) {
	ctx := context.Background()
	actor := uuid.New()
	cacheKey := "leave:pending:" + actor.String()

	app := &leave.LeaveApplication{
		ID:          uuid.New(),
		ApplicantID: uuid.New(),
		LeaveType:   "ANNUAL",
		StartDate:   time.Date(2027, 3, 1, 0, 0, 0, 0, time.UTC),
		EndDate:     time.Date(2027, 3, 3, 0, 0, 0, 0, time.UTC),
		Days:        decimal.NewFromInt(3),
		Status:      leave.StatusPending,
		CreatedAt:   time.Date(2027, 1, 15, 10, 0, 0, 0, time.UTC),
	}
	step := leave.ApprovalStep{
		ID: uuid.New(), ApplicationID: app.ID, Sequence: 2,
		Level: domain.LevelHRAdmin, Status: leave.StepPending,
	}

	expected := []leave.PendingStepResponse{
		{
			Application: leave.ApplicationResponse{
				ID:          app.ID.String(),
				ApplicantID: app.ApplicantID.String(),
				LeaveType:   "ANNUAL",
				StartDate:   "2027-03-01",
				EndDate:     "2027-03-03",
				Days:        "3",
				Status:      leave.StatusPending,
				CreatedAt:   "2027-01-15T10:00:00Z",
			},
			Step: leave.StepResponse{
				ID:       step.ID.String(),
				Sequence: 2,
				Level:    domain.LevelHRAdmin,
				Status:   leave.StepPending,
			},
		},
	}
	payload, err := json.Marshal(expected)
	assert.NoError(t, err)

	newCachedService := func(t *testing.T) (*leaveServiceDeps, redismock.ClientMock, func()) {
		t.Helper()

		db, sqlMock, err := sqlmock.New()
		assert.NoError(t, err)

		rdb, redisMock := redismock.NewClientMock()

		apps := &fakeApplicationRepository{}
		steps := &fakeStepRepository{}
		dir := &fakeDirectoryService{}
		policySvc := &fakePolicyService{}

		resolver := leave.NewChainResolver(dir, policySvc, zap.NewNop())
		svc := leave.NewServiceWithRedis(db, apps, steps, &fakeBalanceRepository{}, &fakeOutboxRepository{}, resolver, dir, policySvc, &captureAuditSink{}, rdb, zap.NewNop())

		deps := &leaveServiceDeps{
			db: db, sqlMock: sqlMock, service: svc,
			apps: apps, steps: steps, directory: dir, policy: policySvc,
		}
		return deps, redisMock, func() { db.Close() }
	}

	t.Run("miss queries and writes cache", func(t *testing.T) {
		deps, redisMock, cleanup := newCachedService(t)
		defer cleanup()

		redisMock.ExpectGet(cacheKey).RedisNil()
		redisMock.ExpectSet(cacheKey, payload, 30*time.Second).SetVal("OK")

		deps.directory.roleOfFn = func(ctx context.Context, userID uuid.UUID) (string, error) {
			return domain.RoleHRAdmin, nil
		}
		queried := 0
		deps.steps.listActionableForFn = func(ctx context.Context, actorID uuid.UUID, poolLevels []string) ([]leave.ApprovalStep, error) {
			queried++
			return []leave.ApprovalStep{step}, nil
		}
		deps.apps.findByIDFn = func(ctx context.Context, id uuid.UUID) (*leave.LeaveApplication, error) {
			return app, nil
		}

		resp, err := deps.service.PendingStepsFor(ctx, actor.String())

		assert.NoError(t, err)
		assert.Equal(t, expected, resp)
		assert.Equal(t, 1, queried)
		assert.NoError(t, redisMock.ExpectationsWereMet())
	})

	t.Run("hit skips the database entirely", func(t *testing.T) {
		deps, redisMock, cleanup := newCachedService(t)
		defer cleanup()

		redisMock.ExpectGet(cacheKey).SetVal(string(payload))

		deps.steps.listActionableForFn = func(ctx context.Context, actorID uuid.UUID, poolLevels []string) ([]leave.ApprovalStep, error) {
			t.Fatal("cache hit must not query steps")
			return nil, nil
		}

		resp, err := deps.service.PendingStepsFor(ctx, actor.String())

		assert.NoError(t, err)
		assert.Equal(t, expected, resp)
		assert.NoError(t, redisMock.ExpectationsWereMet())
	})

	t.Run("cancel drops the actionable step from the approver's cache", func(t *testing.T) {
		deps, redisMock, cleanup := newCachedService(t)
		defer cleanup()

		applicant := uuid.New()
		approver := uuid.New()
		cancelApp := &leave.LeaveApplication{
			ID:          uuid.New(),
			ApplicantID: applicant,
			LeaveType:   "ANNUAL",
			StartDate:   time.Date(2027, 4, 1, 0, 0, 0, 0, time.UTC),
			EndDate:     time.Date(2027, 4, 2, 0, 0, 0, 0, time.UTC),
			Days:        decimal.NewFromInt(2),
			Status:      leave.StatusPending,
			CreatedAt:   time.Now().UTC(),
		}
		actionable := &leave.ApprovalStep{
			ID: uuid.New(), ApplicationID: cancelApp.ID, Sequence: 1,
			Level: domain.LevelHeadOfDepartment, ApproverID: &approver, Status: leave.StepPending,
		}

		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectCommit()
		redisMock.ExpectDel("leave:pending:" + approver.String()).SetVal(1)

		deps.apps.findByIDFn = func(ctx context.Context, id uuid.UUID) (*leave.LeaveApplication, error) {
			return cancelApp, nil
		}
		deps.apps.transitionStatusFn = func(ctx context.Context, id uuid.UUID, from, to string) (bool, error) {
			return true, nil
		}
		deps.steps.findActionableFn = func(ctx context.Context, applicationID uuid.UUID) (*leave.ApprovalStep, error) {
			return actionable, nil
		}

		resp, err := deps.service.Cancel(ctx, applicant.String(), cancelApp.ID.String())

		assert.NoError(t, err)
		assert.Equal(t, leave.StatusCancelled, resp.Status)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
		assert.NoError(t, redisMock.ExpectationsWereMet())
	})
}
