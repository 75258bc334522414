package consumer

import (
	"context"
	"encoding/json"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"leavetracker/internal/directory"
	"leavetracker/internal/domain"
	"leavetracker/internal/events"
)

// ConsumeLeaveWorkflow turns workflow events into notifications. Delivery is
// best-effort: a message that cannot be decoded or addressed is committed and
// dropped, never replayed against the workflow.
func ConsumeLeaveWorkflow(
	ctx context.Context,
	reader *kafkago.Reader,
	dir directory.Service,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.leave_workflow")
	log.Info("leave workflow consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("leave workflow consumer stopped")
				return
			}
			log.Error("fetch leave workflow message failed", zap.Error(err))
			continue
		}

		eventType := headerValue(msg, "event_type")
		switch eventType {
		case events.TypeStepPending:
			handleStepPending(ctx, msg.Value, dir, log)
		case events.TypeApplicationFinalized:
			handleFinalized(msg.Value, log)
		default:
			log.Warn("unknown leave workflow event, skipping", zap.String("event_type", eventType))
		}

		_ = reader.CommitMessages(ctx, msg)
	}
}

func handleStepPending(ctx context.Context, payload []byte, dir directory.Service, log *zap.Logger) {
	var event events.StepPendingEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		log.Error("decode step pending event failed", zap.Error(err))
		return
	}

	recipients := make([]string, 0, 1)
	if event.ApproverID != nil {
		recipients = append(recipients, *event.ApproverID)
	} else {
		for _, role := range domain.PoolRolesFor(event.Level) {
			members, err := dir.MembersOfRole(ctx, role)
			if err != nil {
				log.Error("resolve pool recipients failed",
					zap.String("level", event.Level),
					zap.String("role", role),
					zap.Error(err),
				)
				continue
			}
			for _, m := range members {
				recipients = append(recipients, m.String())
			}
		}
	}

	log.Info("approval step notification dispatched",
		zap.String("application_id", event.ApplicationID),
		zap.String("step_id", event.StepID),
		zap.String("level", event.Level),
		zap.Strings("recipients", recipients),
	)
}

func handleFinalized(payload []byte, log *zap.Logger) {
	var event events.ApplicationFinalizedEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		log.Error("decode finalized event failed", zap.Error(err))
		return
	}

	log.Info("application outcome notification dispatched",
		zap.String("application_id", event.ApplicationID),
		zap.String("applicant_id", event.ApplicantID),
		zap.String("outcome", event.Outcome),
	)
}

func headerValue(msg kafkago.Message, key string) string {
	for _, h := range msg.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}
