package domain

import (
	"time"

	"github.com/google/uuid"
)

// NotificationStatus is the outcome of one dispatch attempt.
type NotificationStatus string

const (
	NotificationSent   NotificationStatus = "sent"
	NotificationFailed NotificationStatus = "failed"
)

// Notification is an immutable audit record of one message sent (or not)
// about a task.
type Notification struct {
	ID              uuid.UUID          `json:"id"`
	TaskID          uuid.UUID          `json:"task_id"`
	Message         string             `json:"message"`
	RecipientNumber string             `json:"recipient_number"`
	Status          NotificationStatus `json:"status"`
	SentAt          time.Time          `json:"sent_at"`
}

// NewNotification records a dispatch attempt made at sentAt.
func NewNotification(taskID uuid.UUID, recipient, message string, delivered bool, sentAt time.Time) *Notification {
	status := NotificationFailed
	if delivered {
		status = NotificationSent
	}
	return &Notification{
		ID:              uuid.New(),
		TaskID:          taskID,
		Message:         message,
		RecipientNumber: recipient,
		Status:          status,
		SentAt:          sentAt.UTC(),
	}
}
