package domain

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// TaskType distinguishes instantly notified tasks from date-scheduled ones.
type TaskType string

const (
	TaskTypeImmediate TaskType = "immediate"
	TaskTypeCustom    TaskType = "custom"
)

// Valid reports whether t is a known task type.
func (t TaskType) Valid() bool {
	return t == TaskTypeImmediate || t == TaskTypeCustom
}

// Frequency says whether a task happens once or recurs.
type Frequency string

const (
	FrequencyOneTime  Frequency = "one_time"
	FrequencyRepeated Frequency = "repeated"
)

// Valid reports whether f is a known frequency.
func (f Frequency) Valid() bool {
	return f == FrequencyOneTime || f == FrequencyRepeated
}

// RepeatUnit is the interval unit of a repeated task.
type RepeatUnit string

const (
	RepeatDays   RepeatUnit = "days"
	RepeatWeeks  RepeatUnit = "weeks"
	RepeatMonths RepeatUnit = "months"
)

// Valid reports whether u is a known repeat unit.
func (u RepeatUnit) Valid() bool {
	return u == RepeatDays || u == RepeatWeeks || u == RepeatMonths
}

// Field limits.
const (
	MaxTitleLength             = 255
	MaxDescriptionLength       = 2000
	MaxCompletionMessageLength = 1000
)

// Task is a unit of work delegated by an administrator to a standard user.
// Completion is one-way: Pending -> Completed.
type Task struct {
	ID                uuid.UUID   `json:"id"`
	Title             string      `json:"title"`
	Description       string      `json:"description"`
	AssignedTo        uuid.UUID   `json:"assigned_to"`
	CreatedBy         uuid.UUID   `json:"created_by"`
	Type              TaskType    `json:"task_type"`
	Frequency         Frequency   `json:"frequency"`
	DueDate           *time.Time  `json:"due_date"`
	ScheduledDate     *time.Time  `json:"scheduled_date"`
	RepeatInterval    *RepeatUnit `json:"repeat_interval"`
	RepeatCount       *int        `json:"repeat_count"`
	RepeatEndDate     *time.Time  `json:"repeat_end_date"`
	IsCompleted       bool        `json:"is_completed"`
	CompletedAt       *time.Time  `json:"completed_at"`
	CompletionMessage *string     `json:"completion_message"`
	CompletionImage   *string     `json:"completion_image"`
	IsPaymentTask     bool        `json:"is_payment_task"`
	CreatedAt         time.Time   `json:"created_at"`
	UpdatedAt         time.Time   `json:"updated_at"`

	Assignee *UserSummary `json:"assigned_user,omitempty"`
	Creator  *UserSummary `json:"creator,omitempty"`
}

// TaskSpec holds the caller-supplied fields of a new task.
type TaskSpec struct {
	Title          string
	Description    string
	AssignedTo     uuid.UUID
	CreatedBy      uuid.UUID
	Type           TaskType
	Frequency      Frequency
	DueDate        *time.Time
	ScheduledDate  *time.Time
	RepeatInterval *RepeatUnit
	RepeatCount    *int
	RepeatEndDate  *time.Time
	IsPaymentTask  bool
}

// NewTask builds a pending task from spec and validates it against now.
func NewTask(spec TaskSpec, now time.Time) (*Task, error) {
	now = now.UTC()
	task := &Task{
		ID:             uuid.New(),
		Title:          strings.TrimSpace(spec.Title),
		Description:    strings.TrimSpace(spec.Description),
		AssignedTo:     spec.AssignedTo,
		CreatedBy:      spec.CreatedBy,
		Type:           spec.Type,
		Frequency:      spec.Frequency,
		DueDate:        utcPtr(spec.DueDate),
		ScheduledDate:  utcPtr(spec.ScheduledDate),
		RepeatInterval: spec.RepeatInterval,
		RepeatCount:    spec.RepeatCount,
		RepeatEndDate:  utcPtr(spec.RepeatEndDate),
		IsPaymentTask:  spec.IsPaymentTask,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := task.Validate(now); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks the creation rules of a task relative to now.
// Every failure is a *ValidationError wrapping ErrInvalidTaskSpec.
func (t *Task) Validate(now time.Time) error {
	if t.ID == uuid.Nil {
		return invalidTask("id", "task ID cannot be empty")
	}

	titleLen := utf8.RuneCountInString(t.Title)
	if titleLen == 0 {
		return invalidTask("title", "title cannot be empty")
	}
	if titleLen > MaxTitleLength {
		return invalidTask("title", "title must be at most 255 characters")
	}
	if utf8.RuneCountInString(t.Description) > MaxDescriptionLength {
		return invalidTask("description", "description must be at most 2000 characters")
	}

	if t.AssignedTo == uuid.Nil {
		return invalidTask("assigned_to", "assignee is required")
	}
	if t.CreatedBy == uuid.Nil {
		return invalidTask("created_by", "creator is required")
	}

	if !t.Type.Valid() {
		return invalidTask("task_type", "task type must be immediate or custom")
	}
	if !t.Frequency.Valid() {
		return invalidTask("frequency", "frequency must be one_time or repeated")
	}

	if t.Type == TaskTypeCustom {
		if t.ScheduledDate == nil {
			return invalidTask("scheduled_date", "scheduled date is required for custom tasks")
		}
		if !t.ScheduledDate.After(now) {
			return invalidTask("scheduled_date", "scheduled date must be in the future for custom tasks")
		}
	}

	if t.RepeatInterval != nil && !t.RepeatInterval.Valid() {
		return invalidTask("repeat_interval", "repeat interval must be days, weeks or months")
	}
	if t.RepeatCount != nil && *t.RepeatCount < 1 {
		return invalidTask("repeat_count", "repeat count must be at least 1")
	}

	if t.Frequency == FrequencyRepeated {
		if t.RepeatInterval == nil {
			return invalidTask("repeat_interval", "repeat interval is required for repeated tasks")
		}
		if *t.RepeatInterval == RepeatDays && t.RepeatCount == nil {
			return invalidTask("repeat_count", "repeat count is required when repeating in days")
		}
	}

	if t.RepeatEndDate != nil {
		if !t.RepeatEndDate.After(now) {
			return invalidTask("repeat_end_date", "repeat end date must be in the future")
		}
		if t.ScheduledDate != nil && !t.RepeatEndDate.After(*t.ScheduledDate) {
			return invalidTask("repeat_end_date", "repeat end date must be after the scheduled date")
		}
	}

	return nil
}

// Complete marks a pending task done at the given time. It fails with
// ErrAlreadyCompleted, leaving the task untouched, if the task is already done.
func (t *Task) Complete(at time.Time, message, image *string) error {
	if t.IsCompleted {
		return ErrAlreadyCompleted
	}
	if err := ValidateCompletionMessage(message); err != nil {
		return err
	}

	at = at.UTC()
	t.IsCompleted = true
	t.CompletedAt = &at
	t.CompletionMessage = message
	t.CompletionImage = image
	t.UpdatedAt = at
	return nil
}

// IsOverdue reports whether the task is pending past its due date.
func (t *Task) IsOverdue(now time.Time) bool {
	return !t.IsCompleted && t.DueDate != nil && t.DueDate.Before(now)
}

// CompletedOnTime reports whether the task was completed no later than its due date.
func (t *Task) CompletedOnTime() bool {
	return t.IsCompleted && t.DueDate != nil && t.CompletedAt != nil && !t.CompletedAt.After(*t.DueDate)
}

// ValidateCompletionMessage checks the length bound of a completion message.
func ValidateCompletionMessage(message *string) error {
	if message != nil && utf8.RuneCountInString(*message) > MaxCompletionMessageLength {
		return NewValidationError("completion_message", "completion message must be at most 1000 characters")
	}
	return nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
