package audit

import (
	"context"
	"time"

	"go.uber.org/zap"

	"leavetracker/internal/shared/contextutil"
)

// Entry is one audit fact: who did what to which entity. The engine emits
// one entry per committed transition; durable storage of the trail lives
// outside this service.
type Entry struct {
	Actor      string
	Action     string
	EntityType string
	EntityID   string
}

type Sink interface {
	Record(ctx context.Context, entry Entry)
}

type ZapSink struct {
	logger *zap.Logger
}

func NewZapSink(logger ...*zap.Logger) *ZapSink {
	l := zap.L().Named("audit")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("audit")
	}
	return &ZapSink{logger: l}
}

func (s *ZapSink) Record(ctx context.Context, entry Entry) {
	s.logger.Info("audit event",
		zap.String("timestamp", time.Now().UTC().Format(time.RFC3339)),
		zap.String("request_id", contextutil.GetRequestID(ctx)),
		zap.String("actor", entry.Actor),
		zap.String("action", entry.Action),
		zap.String("entity_type", entry.EntityType),
		zap.String("entity_id", entry.EntityID),
	)
}
