package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/taskroster-api/internal/config"
	"github.com/phrazzld/taskroster-api/internal/domain"
	"github.com/phrazzld/taskroster-api/internal/platform/logger"
	"github.com/phrazzld/taskroster-api/internal/redact"
	"github.com/phrazzld/taskroster-api/internal/store"
)

const defaultTimeout = 10 * time.Second

// TaskDispatcher announces a task to its assignee.
type TaskDispatcher interface {
	DispatchTask(ctx context.Context, task *domain.Task) (*domain.Notification, error)
}

// Dispatcher sends rendered messages through a Sender and records every attempt.
type Dispatcher struct {
	sender        Sender
	notifications store.NotificationStore
	timeout       time.Duration
	timeFunc      func() time.Time
	logger        *slog.Logger
}

var _ TaskDispatcher = (*Dispatcher)(nil)

// NewDispatcher creates a Dispatcher. The send timeout comes from cfg.TimeoutSeconds.
func NewDispatcher(
	sender Sender,
	notifications store.NotificationStore,
	cfg config.NotifyConfig,
	logger *slog.Logger,
) *Dispatcher {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Dispatcher{
		sender:        sender,
		notifications: notifications,
		timeout:       timeout,
		timeFunc:      time.Now,
		logger:        logger.With("component", "notify_dispatcher"),
	}
}

// Notify makes a single delivery attempt bounded by the dispatcher timeout.
// It reports success and never returns an error or panics; failures are logged.
func (d *Dispatcher) Notify(ctx context.Context, to, message string) (delivered bool) {
	log := logger.FromContextOrDefault(ctx, d.logger)

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			log.Error("notification sender panicked",
				"error", fmt.Errorf("%w: panic: %v", ErrDispatchFailed, r),
				"to", redact.Phone(to))
			delivered = false
		}
	}()

	if err := d.sender.Send(ctx, to, message); err != nil {
		err = fmt.Errorf("%w: %w", ErrDispatchFailed, err)
		log.Warn("notification not delivered",
			"error", redact.Error(err),
			"to", redact.Phone(to))
		return false
	}

	log.Info("notification delivered", "to", redact.Phone(to))
	return true
}

// DispatchTask renders and sends the assignment message for task, then records
// the outcome. Custom tasks are announced immediately; their scheduled time is
// only logged. The returned error concerns recording, not delivery.
func (d *Dispatcher) DispatchTask(ctx context.Context, task *domain.Task) (*domain.Notification, error) {
	log := logger.FromContextOrDefault(ctx, d.logger).With("task_id", task.ID)

	if task.Assignee == nil || task.Assignee.PhoneNumber == "" {
		log.Error("cannot dispatch task without assignee phone number")
		return nil, fmt.Errorf("%w: %s", ErrNoRecipient, task.ID)
	}
	to := task.Assignee.PhoneNumber

	if task.Type == domain.TaskTypeCustom && task.ScheduledDate != nil {
		log.Info("custom task announced now, delivery at scheduled time is not supported",
			"scheduled_for", task.ScheduledDate.UTC())
	}

	message := RenderMessage(task)
	delivered := d.Notify(ctx, to, message)

	n := domain.NewNotification(task.ID, to, message, delivered, d.timeFunc())
	if err := d.notifications.Create(ctx, n); err != nil {
		log.Error("failed to record notification",
			"error", redact.Error(err),
			"status", n.Status)
		return n, fmt.Errorf("failed to record notification: %w", err)
	}

	return n, nil
}
