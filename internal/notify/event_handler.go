package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/taskroster-api/internal/events"
	"github.com/phrazzld/taskroster-api/internal/jobs"
	"github.com/phrazzld/taskroster-api/internal/platform/logger"
)

// JobSubmitter accepts background jobs without blocking.
type JobSubmitter interface {
	Submit(ctx context.Context, job jobs.Job) error
}

// EventHandler turns task.assigned events into background dispatch jobs.
type EventHandler struct {
	dispatcher TaskDispatcher
	runner     JobSubmitter
	logger     *slog.Logger
}

var _ events.EventHandler = (*EventHandler)(nil)

// NewEventHandler creates an EventHandler.
func NewEventHandler(dispatcher TaskDispatcher, runner JobSubmitter, logger *slog.Logger) *EventHandler {
	return &EventHandler{
		dispatcher: dispatcher,
		runner:     runner,
		logger:     logger.With("component", "notify_event_handler"),
	}
}

// HandleEvent submits a dispatch job for task.assigned events and ignores
// other types. A rejected submission is logged and swallowed.
func (h *EventHandler) HandleEvent(ctx context.Context, event *events.Event) error {
	log := logger.FromContextOrDefault(ctx, h.logger)

	if event.Type != events.TypeTaskAssigned {
		log.Debug("ignoring event with unsupported type",
			"event_type", event.Type,
			"event_id", event.ID)
		return nil
	}

	var payload events.TaskAssigned
	if err := event.UnmarshalPayload(&payload); err != nil {
		log.Error("failed to unmarshal payload", "error", err, "event_id", event.ID)
		return fmt.Errorf("failed to unmarshal task.assigned payload: %w", err)
	}

	job := NewJob(&payload.Task, h.dispatcher)
	if err := h.runner.Submit(ctx, job); err != nil {
		log.Warn("notification job rejected, assignee will not be notified",
			"error", err,
			"task_id", payload.Task.ID,
			"event_id", event.ID)
		return nil
	}

	log.Debug("notification job submitted",
		"job_id", job.ID(),
		"task_id", payload.Task.ID,
		"event_id", event.ID)
	return nil
}
