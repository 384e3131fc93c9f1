package consumer

import (
	"context"
	"encoding/json"

	"go-leavedesk/internal/bootstrap"
	"go-leavedesk/internal/events"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// ConsumeLeaveDecided turns decision events into audit entries. The
// audit sink is a side effect the API never waits on; a decision is
// final once its transaction commits.
func ConsumeLeaveDecided(
	ctx context.Context,
	reader *kafkago.Reader,
	audit bootstrap.AuditLogger,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.leave_decided")
	log.Info("leave decided consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("leave decided consumer stopped")
				return
			}
			log.Error("fetch leave decided message failed", zap.Error(err))
			continue
		}

		var event events.LeaveDecidedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			log.Error("decode leave decided event failed", zap.Error(err))
			_ = reader.CommitMessages(ctx, msg)
			continue
		}

		audit.Log(ctx, bootstrap.AuditLog{
			Action:  event.EventType,
			Message: "leave request " + event.Status,
			Meta: map[string]any{
				"leave_id":       event.LeaveID,
				"requester_id":   event.RequesterID,
				"decided_by":     event.DecidedBy,
				"status":         event.Status,
				"days_requested": event.DaysRequested,
				"occurred_at":    event.OccurredAt,
			},
		})

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit leave decided message failed", zap.Error(err))
			continue
		}

		log.Info("leave decided event consumed",
			zap.String("leave_id", event.LeaveID),
			zap.String("status", event.Status),
		)
	}
}
