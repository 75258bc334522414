package leave

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"

	"leavetracker/internal/audit"
	"leavetracker/internal/balance"
	"leavetracker/internal/directory"
	"leavetracker/internal/domain"
	"leavetracker/internal/events"
	leaveerrors "leavetracker/internal/leave/errors"
	"leavetracker/internal/messaging/kafka"
	"leavetracker/internal/policy"
	"leavetracker/internal/shared/contextutil"
)

const (
	DecisionApprove = "approve"
	DecisionReject  = "reject"
)

const pendingCacheTTL = 30 * time.Second

//go:generate mockgen -source=leave_service.go -destination=mock/leave_service_mock.go -package=mock
type Service interface {
	Submit(ctx context.Context, applicantID string, req SubmitApplicationRequest) (ApplicationResponse, error)
	Act(ctx context.Context, actorID, applicationID, decision, comments string) (ApplicationResponse, error)
	Cancel(ctx context.Context, applicantID, applicationID string) (ApplicationResponse, error)
	Revoke(ctx context.Context, actorID, applicationID string) (ApplicationResponse, error)
	GetByID(ctx context.Context, id string) (ApplicationResponse, error)
	ListByApplicant(ctx context.Context, applicantID string) ([]ApplicationResponse, error)
	PendingStepsFor(ctx context.Context, actorID string) ([]PendingStepResponse, error)
}

type service struct {
	db        *sql.DB
	apps      ApplicationRepository
	steps     StepRepository
	balances  balance.Repository
	outbox    kafka.OutboxRepository
	resolver  *ChainResolver
	directory directory.Service
	policy    policy.Service
	audit     audit.Sink
	rdb       *redis.Client
	sf        *singleflight.Group
	logger    *zap.Logger
}

func NewService(
	db *sql.DB,
	apps ApplicationRepository,
	steps StepRepository,
	balances balance.Repository,
	outbox kafka.OutboxRepository,
	resolver *ChainResolver,
	dir directory.Service,
	policySvc policy.Service,
	auditSink audit.Sink,
	logger ...*zap.Logger,
) Service {
	return NewServiceWithRedis(db, apps, steps, balances, outbox, resolver, dir, policySvc, auditSink, nil, logger...)
}

func NewServiceWithRedis(
	db *sql.DB,
	apps ApplicationRepository,
	steps StepRepository,
	balances balance.Repository,
	outbox kafka.OutboxRepository,
	resolver *ChainResolver,
	dir directory.Service,
	policySvc policy.Service,
	auditSink audit.Sink,
	rdb *redis.Client,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("leave.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leave.service")
	}
	return &service{
		db:        db,
		apps:      apps,
		steps:     steps,
		balances:  balances,
		outbox:    outbox,
		resolver:  resolver,
		directory: dir,
		policy:    policySvc,
		audit:     auditSink,
		rdb:       rdb,
		sf:        &singleflight.Group{},
		logger:    l,
	}
}

func (s *service) Submit(ctx context.Context, applicantID string, req SubmitApplicationRequest) (ApplicationResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("submit application requested",
		zap.String("request_id", rid),
		zap.String("applicant_id", applicantID),
		zap.String("leave_type", req.LeaveType),
		zap.String("start_date", req.StartDate),
		zap.String("end_date", req.EndDate),
	)

	applicantUUID, err := uuid.Parse(applicantID)
	if err != nil {
		return ApplicationResponse{}, leaveerrors.ErrInvalidApplicantID
	}
	if !s.policy.KnownLeaveType(req.LeaveType) {
		return ApplicationResponse{}, leaveerrors.ErrInvalidLeaveType
	}

	startDate, err := parseDate(req.StartDate)
	if err != nil {
		return ApplicationResponse{}, err
	}
	endDate, err := parseDate(req.EndDate)
	if err != nil {
		return ApplicationResponse{}, err
	}
	if startDate.After(endDate) {
		return ApplicationResponse{}, leaveerrors.ErrInvalidDateRange
	}

	days, err := resolveDays(req.Days, startDate, endDate)
	if err != nil {
		return ApplicationResponse{}, err
	}

	if notice := s.policy.MinAdvanceNoticeDays(ctx); notice > 0 {
		earliestStart := time.Now().UTC().Truncate(24 * time.Hour).AddDate(0, 0, notice)
		if startDate.Before(earliestStart) {
			s.logger.Warn("submit application inside advance-notice window",
				zap.String("applicant_id", applicantID),
				zap.String("start_date", req.StartDate),
				zap.Int("min_advance_days", notice),
			)
			return ApplicationResponse{}, leaveerrors.ErrInsufficientNotice
		}
	}

	maxConsecutive, err := s.policy.MaxConsecutiveDaysFor(ctx, req.LeaveType)
	if err != nil {
		s.logger.Error("submit application policy lookup failed", zap.Error(err))
		return ApplicationResponse{}, err
	}
	if days.GreaterThan(maxConsecutive) {
		return ApplicationResponse{}, leaveerrors.ErrExceedsMaxConsecutive
	}

	// The chain is resolved before anything is written: a dangling approval
	// level must fail the submission with nothing persisted.
	chain, err := s.resolver.Resolve(ctx, applicantUUID)
	if err != nil {
		s.logger.Warn("submit application chain resolution failed",
			zap.String("applicant_id", applicantID),
			zap.Error(err),
		)
		return ApplicationResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("submit application begin tx failed", zap.Error(err))
		return ApplicationResponse{}, err
	}
	defer tx.Rollback()

	qtxApps := s.apps.WithTx(tx)
	qtxSteps := s.steps.WithTx(tx)

	overlap, err := qtxApps.HasOverlappingApplication(ctx, applicantUUID, startDate, endDate)
	if err != nil {
		s.logger.Error("submit application overlap check failed", zap.Error(err))
		return ApplicationResponse{}, err
	}
	if overlap {
		s.logger.Warn("submit application overlap detected",
			zap.String("applicant_id", applicantID),
			zap.String("start_date", req.StartDate),
			zap.String("end_date", req.EndDate),
		)
		return ApplicationResponse{}, leaveerrors.ErrOverlappingApplication
	}

	app := &LeaveApplication{
		ID:          uuid.New(),
		ApplicantID: applicantUUID,
		LeaveType:   req.LeaveType,
		StartDate:   startDate,
		EndDate:     endDate,
		Days:        days,
		Reason:      req.Reason,
		Status:      StatusPending,
		CreatedAt:   time.Now().UTC(),
	}
	if err := mapRepositoryError(qtxApps.Create(ctx, app)); err != nil {
		if !errors.Is(err, leaveerrors.ErrOverlappingApplication) {
			s.logger.Error("submit application persist failed", zap.Error(err))
		}
		return ApplicationResponse{}, err
	}

	steps := make([]ApprovalStep, len(chain))
	for i, level := range chain {
		steps[i] = ApprovalStep{
			ID:            uuid.New(),
			ApplicationID: app.ID,
			Sequence:      i + 1,
			Level:         level.Level,
			ApproverID:    level.ApproverID,
			Status:        StepPending,
		}
	}
	if err := qtxSteps.CreateAll(ctx, steps); err != nil {
		s.logger.Error("submit application steps persist failed", zap.Error(err))
		return ApplicationResponse{}, err
	}

	if err := s.queueStepPending(ctx, tx, app, steps[0]); err != nil {
		return ApplicationResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("submit application commit failed", zap.Error(err))
		return ApplicationResponse{}, err
	}
	s.logger.Info("submit application success",
		zap.String("application_id", app.ID.String()),
		zap.String("applicant_id", applicantID),
		zap.Int("chain_length", len(steps)),
	)

	s.recordAudit(ctx, applicantID, "leave.submit", app.ID)
	s.invalidatePendingFor(ctx, &steps[0])

	resp := mapToResponse(*app)
	for _, st := range steps {
		resp.Steps = append(resp.Steps, mapStepToResponse(st))
	}
	return resp, nil
}

func (s *service) Act(ctx context.Context, actorID, applicationID, decision, comments string) (ApplicationResponse, error) {
	s.logger.Debug("act on application requested",
		zap.String("request_id", contextutil.GetRequestID(ctx)),
		zap.String("application_id", applicationID),
		zap.String("actor_id", actorID),
		zap.String("decision", decision),
	)

	actorUUID, err := uuid.Parse(actorID)
	if err != nil {
		return ApplicationResponse{}, leaveerrors.ErrInvalidActorID
	}
	appUUID, err := uuid.Parse(applicationID)
	if err != nil {
		return ApplicationResponse{}, leaveerrors.ErrInvalidApplicationID
	}
	if decision != DecisionApprove && decision != DecisionReject {
		return ApplicationResponse{}, leaveerrors.ErrInvalidDecision
	}
	if decision == DecisionReject && comments == "" {
		return ApplicationResponse{}, leaveerrors.ErrCommentsRequired
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("act begin tx failed", zap.Error(err))
		return ApplicationResponse{}, err
	}
	defer tx.Rollback()

	qtxApps := s.apps.WithTx(tx)
	qtxSteps := s.steps.WithTx(tx)

	app, err := qtxApps.FindByID(ctx, appUUID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ApplicationResponse{}, leaveerrors.ErrApplicationNotFound
		}
		return ApplicationResponse{}, err
	}
	if app.IsTerminal() {
		return ApplicationResponse{}, leaveerrors.ErrAlreadyFinalized
	}

	step, err := qtxSteps.FindActionable(ctx, app.ID)
	if err != nil {
		s.logger.Error("act actionable step lookup failed", zap.Error(err))
		return ApplicationResponse{}, err
	}
	if step == nil {
		return ApplicationResponse{}, leaveerrors.ErrNotAuthorized
	}

	authorized, err := s.mayResolve(ctx, actorUUID, step)
	if err != nil {
		return ApplicationResponse{}, err
	}
	if !authorized {
		s.logger.Warn("act not authorized",
			zap.String("application_id", applicationID),
			zap.String("actor_id", actorID),
			zap.String("level", step.Level),
		)
		return ApplicationResponse{}, leaveerrors.ErrNotAuthorized
	}

	stepStatus := StepApproved
	if decision == DecisionReject {
		stepStatus = StepRejected
	}
	var commentsPtr *string
	if comments != "" {
		commentsPtr = &comments
	}

	// Compare-and-set: the step is only written while still PENDING. A
	// second pool member racing on the same step loses here, inside the same
	// transaction that would have written its mutation.
	resolved, err := qtxSteps.ResolvePending(ctx, step.ID, stepStatus, actorUUID, commentsPtr)
	if err != nil {
		s.logger.Error("act step transition failed", zap.Error(err))
		return ApplicationResponse{}, err
	}
	if !resolved {
		s.logger.Warn("act lost step race",
			zap.String("application_id", applicationID),
			zap.String("step_id", step.ID.String()),
			zap.String("actor_id", actorID),
		)
		return ApplicationResponse{}, leaveerrors.ErrStepAlreadyResolved
	}

	overdraft := false
	var nextStep *ApprovalStep

	if decision == DecisionReject {
		changed, err := qtxApps.TransitionStatus(ctx, app.ID, StatusPending, StatusRejected)
		if err != nil {
			return ApplicationResponse{}, err
		}
		if !changed {
			return ApplicationResponse{}, leaveerrors.ErrAlreadyFinalized
		}
		app.Status = StatusRejected
		if err := s.queueFinalized(ctx, tx, app, StatusRejected); err != nil {
			return ApplicationResponse{}, err
		}
	} else {
		remaining, err := qtxSteps.CountPending(ctx, app.ID)
		if err != nil {
			return ApplicationResponse{}, err
		}
		if remaining == 0 {
			changed, err := qtxApps.TransitionStatus(ctx, app.ID, StatusPending, StatusApproved)
			if err != nil {
				return ApplicationResponse{}, err
			}
			if !changed {
				return ApplicationResponse{}, leaveerrors.ErrAlreadyFinalized
			}
			app.Status = StatusApproved

			allocation, err := s.policy.AnnualAllocationFor(ctx, app.LeaveType)
			if err != nil {
				return ApplicationResponse{}, err
			}
			b, err := s.balances.WithTx(tx).Deduct(ctx, app.ApplicantID, app.LeaveType, app.StartDate.Year(), app.Days, allocation)
			if err != nil {
				s.logger.Error("act balance deduct failed",
					zap.String("application_id", applicationID),
					zap.Error(err),
				)
				return ApplicationResponse{}, err
			}
			if b.UsedDays.GreaterThan(b.TotalDays) {
				overdraft = true
				s.logger.Warn("act balance overdrawn",
					zap.String("applicant_id", app.ApplicantID.String()),
					zap.String("leave_type", app.LeaveType),
					zap.String("used_days", b.UsedDays.String()),
					zap.String("total_days", b.TotalDays.String()),
				)
			}
			if err := s.queueFinalized(ctx, tx, app, StatusApproved); err != nil {
				return ApplicationResponse{}, err
			}
		} else {
			// The successor becomes actionable implicitly; surface it to
			// its approver through the notification outbox.
			nextStep, err = qtxSteps.FindActionable(ctx, app.ID)
			if err != nil {
				return ApplicationResponse{}, err
			}
			if nextStep != nil {
				if err := s.queueStepPending(ctx, tx, app, *nextStep); err != nil {
					return ApplicationResponse{}, err
				}
			}
		}
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("act commit failed", zap.Error(err))
		return ApplicationResponse{}, err
	}
	s.logger.Info("act on application success",
		zap.String("application_id", applicationID),
		zap.String("actor_id", actorID),
		zap.String("decision", decision),
		zap.String("status", app.Status),
	)

	s.recordAudit(ctx, actorID, "leave."+decision, app.ID)
	s.invalidatePendingKey(ctx, actorUUID)
	s.invalidatePendingFor(ctx, nextStep)

	resp := mapToResponse(*app)
	resp.OverdraftWarning = overdraft
	if steps, err := s.steps.FindByApplication(ctx, app.ID); err == nil {
		for _, st := range steps {
			resp.Steps = append(resp.Steps, mapStepToResponse(st))
		}
	}
	return resp, nil
}

func (s *service) Cancel(ctx context.Context, applicantID, applicationID string) (ApplicationResponse, error) {
	applicantUUID, err := uuid.Parse(applicantID)
	if err != nil {
		return ApplicationResponse{}, leaveerrors.ErrInvalidApplicantID
	}
	appUUID, err := uuid.Parse(applicationID)
	if err != nil {
		return ApplicationResponse{}, leaveerrors.ErrInvalidApplicationID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("cancel begin tx failed", zap.Error(err))
		return ApplicationResponse{}, err
	}
	defer tx.Rollback()

	qtxApps := s.apps.WithTx(tx)

	app, err := qtxApps.FindByID(ctx, appUUID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ApplicationResponse{}, leaveerrors.ErrApplicationNotFound
		}
		return ApplicationResponse{}, err
	}
	if app.ApplicantID != applicantUUID {
		return ApplicationResponse{}, leaveerrors.ErrNotAuthorized
	}
	if app.IsTerminal() {
		return ApplicationResponse{}, leaveerrors.ErrAlreadyFinalized
	}

	// No ledger mutation here: deduction only ever happens on final
	// approval, which a pending application has not reached. Steps already
	// approved stay as historical record.
	changed, err := qtxApps.TransitionStatus(ctx, app.ID, StatusPending, StatusCancelled)
	if err != nil {
		return ApplicationResponse{}, err
	}
	if !changed {
		return ApplicationResponse{}, leaveerrors.ErrAlreadyFinalized
	}
	app.Status = StatusCancelled

	// The actionable step's audience still has this application on their
	// pending dashboards; capture it before commit so the cache entries can
	// be dropped.
	actionable, err := s.steps.WithTx(tx).FindActionable(ctx, app.ID)
	if err != nil {
		return ApplicationResponse{}, err
	}

	if err := s.queueFinalized(ctx, tx, app, StatusCancelled); err != nil {
		return ApplicationResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("cancel commit failed", zap.Error(err))
		return ApplicationResponse{}, err
	}
	s.logger.Info("cancel application success",
		zap.String("application_id", applicationID),
		zap.String("applicant_id", applicantID),
	)

	s.recordAudit(ctx, applicantID, "leave.cancel", app.ID)
	s.invalidatePendingFor(ctx, actionable)

	return mapToResponse(*app), nil
}

func (s *service) Revoke(ctx context.Context, actorID, applicationID string) (ApplicationResponse, error) {
	actorUUID, err := uuid.Parse(actorID)
	if err != nil {
		return ApplicationResponse{}, leaveerrors.ErrInvalidActorID
	}
	appUUID, err := uuid.Parse(applicationID)
	if err != nil {
		return ApplicationResponse{}, leaveerrors.ErrInvalidApplicationID
	}

	role, err := s.directory.RoleOf(ctx, actorUUID)
	if err != nil {
		return ApplicationResponse{}, err
	}
	if role != domain.RoleAdmin && role != domain.RoleHRAdmin {
		return ApplicationResponse{}, leaveerrors.ErrNotAuthorized
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("revoke begin tx failed", zap.Error(err))
		return ApplicationResponse{}, err
	}
	defer tx.Rollback()

	qtxApps := s.apps.WithTx(tx)

	app, err := qtxApps.FindByID(ctx, appUUID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ApplicationResponse{}, leaveerrors.ErrApplicationNotFound
		}
		return ApplicationResponse{}, err
	}
	if app.Status != StatusApproved {
		return ApplicationResponse{}, leaveerrors.ErrNotRevocable
	}

	changed, err := qtxApps.TransitionStatus(ctx, app.ID, StatusApproved, StatusRevoked)
	if err != nil {
		return ApplicationResponse{}, err
	}
	if !changed {
		return ApplicationResponse{}, leaveerrors.ErrNotRevocable
	}
	app.Status = StatusRevoked

	_, previousUsed, err := s.balances.WithTx(tx).Reverse(ctx, app.ApplicantID, app.LeaveType, app.StartDate.Year(), app.Days)
	if err != nil {
		s.logger.Error("revoke balance reverse failed",
			zap.String("application_id", applicationID),
			zap.Error(err),
		)
		return ApplicationResponse{}, err
	}
	if previousUsed.LessThan(app.Days) {
		// Reversal is floored at zero in the ledger; used_days below the
		// application's own deduction means the ledger and the application
		// history disagree.
		s.logger.Error("revoke balance underflow detected",
			zap.String("application_id", applicationID),
			zap.String("previous_used", previousUsed.String()),
			zap.String("days", app.Days.String()),
		)
	}

	if err := s.queueFinalized(ctx, tx, app, StatusRevoked); err != nil {
		return ApplicationResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("revoke commit failed", zap.Error(err))
		return ApplicationResponse{}, err
	}
	s.logger.Info("revoke application success",
		zap.String("application_id", applicationID),
		zap.String("actor_id", actorID),
	)

	s.recordAudit(ctx, actorID, "leave.revoke", app.ID)

	return mapToResponse(*app), nil
}

func (s *service) GetByID(ctx context.Context, id string) (ApplicationResponse, error) {
	appUUID, err := uuid.Parse(id)
	if err != nil {
		return ApplicationResponse{}, leaveerrors.ErrInvalidApplicationID
	}

	app, err := s.apps.FindByID(ctx, appUUID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ApplicationResponse{}, leaveerrors.ErrApplicationNotFound
		}
		return ApplicationResponse{}, err
	}

	resp := mapToResponse(*app)
	steps, err := s.steps.FindByApplication(ctx, app.ID)
	if err != nil {
		return ApplicationResponse{}, err
	}
	for _, st := range steps {
		resp.Steps = append(resp.Steps, mapStepToResponse(st))
	}
	return resp, nil
}

func (s *service) ListByApplicant(ctx context.Context, applicantID string) ([]ApplicationResponse, error) {
	applicantUUID, err := uuid.Parse(applicantID)
	if err != nil {
		return nil, leaveerrors.ErrInvalidApplicantID
	}
	apps, err := s.apps.ListByApplicant(ctx, applicantUUID)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(apps), nil
}

func (s *service) PendingStepsFor(ctx context.Context, actorID string) ([]PendingStepResponse, error) {
	actorUUID, err := uuid.Parse(actorID)
	if err != nil {
		return nil, leaveerrors.ErrInvalidActorID
	}

	cacheKey := pendingCacheKey(actorUUID)
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, cacheKey).Result(); err == nil {
			var resp []PendingStepResponse
			if err := json.Unmarshal([]byte(cached), &resp); err == nil {
				return resp, nil
			}
		}
	}

	// Concurrent dashboard refreshes for the same approver collapse into
	// one query.
	result, err, _ := s.sf.Do(cacheKey, func() (any, error) {
		return s.loadPendingSteps(ctx, actorUUID)
	})
	if err != nil {
		return nil, err
	}
	resp := result.([]PendingStepResponse)

	if s.rdb != nil {
		if payload, err := json.Marshal(resp); err == nil {
			if err := s.rdb.Set(ctx, cacheKey, payload, pendingCacheTTL).Err(); err != nil {
				s.logger.Warn("pending steps cache write failed", zap.Error(err))
			}
		}
	}
	return resp, nil
}

func (s *service) loadPendingSteps(ctx context.Context, actorUUID uuid.UUID) ([]PendingStepResponse, error) {
	role, err := s.directory.RoleOf(ctx, actorUUID)
	if err != nil {
		return nil, err
	}

	steps, err := s.steps.ListActionableFor(ctx, actorUUID, domain.PoolLevelsFor(role))
	if err != nil {
		return nil, err
	}

	resp := make([]PendingStepResponse, 0, len(steps))
	for _, st := range steps {
		app, err := s.apps.FindByID(ctx, st.ApplicationID)
		if err != nil {
			return nil, err
		}
		resp = append(resp, PendingStepResponse{
			Application: mapToResponse(*app),
			Step:        mapStepToResponse(st),
		})
	}
	return resp, nil
}

// mayResolve decides whether the actor can act on the step: direct assignment
// for person-bound steps, role membership for pooled ones. Pool assignment is
// advisory only; any member of the pool may act. Membership goes through the
// directory's active-user view, so a deactivated account keeps its role row
// but loses its pool authority.
func (s *service) mayResolve(ctx context.Context, actorUUID uuid.UUID, step *ApprovalStep) (bool, error) {
	if step.ApproverID != nil {
		return *step.ApproverID == actorUUID, nil
	}
	for _, role := range domain.PoolRolesFor(step.Level) {
		members, err := s.directory.MembersOfRole(ctx, role)
		if err != nil {
			return false, err
		}
		for _, m := range members {
			if m == actorUUID {
				return true, nil
			}
		}
	}
	return false, nil
}

func (s *service) queueStepPending(ctx context.Context, tx *sql.Tx, app *LeaveApplication, step ApprovalStep) error {
	if s.outbox == nil {
		return nil
	}
	event := events.StepPendingEvent{
		EventType:     events.TypeStepPending,
		RequestID:     contextutil.GetRequestID(ctx),
		ApplicationID: app.ID.String(),
		ApplicantID:   app.ApplicantID.String(),
		StepID:        step.ID.String(),
		Sequence:      step.Sequence,
		Level:         step.Level,
		OccurredAt:    time.Now().UTC(),
	}
	if step.ApproverID != nil {
		v := step.ApproverID.String()
		event.ApproverID = &v
	}
	return s.queueOutbox(ctx, tx, app, event.EventType, event)
}

func (s *service) queueFinalized(ctx context.Context, tx *sql.Tx, app *LeaveApplication, outcome string) error {
	if s.outbox == nil {
		return nil
	}
	event := events.ApplicationFinalizedEvent{
		EventType:     events.TypeApplicationFinalized,
		RequestID:     contextutil.GetRequestID(ctx),
		ApplicationID: app.ID.String(),
		ApplicantID:   app.ApplicantID.String(),
		Outcome:       outcome,
		LeaveType:     app.LeaveType,
		Days:          app.Days.String(),
		OccurredAt:    time.Now().UTC(),
	}
	return s.queueOutbox(ctx, tx, app, event.EventType, event)
}

func (s *service) queueOutbox(ctx context.Context, tx *sql.Tx, app *LeaveApplication, eventType string, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		s.logger.Error("marshal workflow event failed", zap.Error(err))
		return err
	}
	if err := s.outbox.WithTx(tx).Create(ctx, kafka.OutboxEvent{
		ID:            uuid.NewString(),
		RequestID:     contextutil.GetRequestID(ctx),
		AggregateType: "leave_application",
		AggregateID:   app.ID.String(),
		EventType:     eventType,
		Topic:         events.LeaveWorkflowTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	}); err != nil {
		s.logger.Error("queue workflow event failed",
			zap.String("application_id", app.ID.String()),
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func (s *service) recordAudit(ctx context.Context, actor, action string, entityID uuid.UUID) {
	if s.audit == nil {
		return
	}
	s.audit.Record(ctx, audit.Entry{
		Actor:      actor,
		Action:     action,
		EntityType: "leave_application",
		EntityID:   entityID.String(),
	})
}

func pendingCacheKey(actorID uuid.UUID) string {
	return "leave:pending:" + actorID.String()
}

func (s *service) invalidatePendingKey(ctx context.Context, actorID uuid.UUID) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, pendingCacheKey(actorID)).Err(); err != nil {
		s.logger.Warn("pending steps cache invalidation failed", zap.Error(err))
	}
}

// invalidatePendingFor drops the cached dashboards of everyone who could act
// on the step, so a newly actionable step shows up without waiting out the
// cache TTL.
func (s *service) invalidatePendingFor(ctx context.Context, step *ApprovalStep) {
	if s.rdb == nil || step == nil {
		return
	}
	var ids []uuid.UUID
	if step.ApproverID != nil {
		ids = append(ids, *step.ApproverID)
	} else {
		for _, role := range domain.PoolRolesFor(step.Level) {
			members, err := s.directory.MembersOfRole(ctx, role)
			if err != nil {
				s.logger.Warn("pending steps pool invalidation lookup failed",
					zap.String("level", step.Level),
					zap.Error(err),
				)
				continue
			}
			ids = append(ids, members...)
		}
	}
	if len(ids) == 0 {
		return
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = pendingCacheKey(id)
	}
	if err := s.rdb.Del(ctx, keys...).Err(); err != nil {
		s.logger.Warn("pending steps cache invalidation failed", zap.Error(err))
	}
}

func parseDate(v string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return time.Time{}, leaveerrors.ErrInvalidDateFormat
	}
	return t, nil
}

// resolveDays computes the application's day count. The default is the
// inclusive calendar span; an explicit override allows half days but must be
// a positive multiple of 0.5 within the span.
func resolveDays(raw string, startDate, endDate time.Time) (decimal.Decimal, error) {
	span := decimal.NewFromInt(int64(endDate.Sub(startDate).Hours()/24) + 1)
	if raw == "" {
		return span, nil
	}

	days, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, leaveerrors.ErrInvalidDays
	}
	if !days.IsPositive() || days.GreaterThan(span) {
		return decimal.Zero, leaveerrors.ErrInvalidDays
	}
	if !days.Mod(decimal.NewFromFloat(0.5)).IsZero() {
		return decimal.Zero, leaveerrors.ErrInvalidDays
	}
	return days, nil
}
