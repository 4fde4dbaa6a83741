package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskroster-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvent(t *testing.T) {
	type testPayload struct {
		ID     uuid.UUID `json:"id"`
		Action string    `json:"action"`
	}

	payload := testPayload{
		ID:     uuid.New(),
		Action: "test_action",
	}

	event, err := NewEvent("test_event", payload)

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, event.ID)
	assert.Equal(t, "test_event", event.Type)
	assert.WithinDuration(t, time.Now(), event.CreatedAt, 2*time.Second)

	var decodedPayload testPayload
	err = json.Unmarshal(event.Payload, &decodedPayload)
	require.NoError(t, err)
	assert.Equal(t, payload, decodedPayload)
}

func TestNewEventRejectsUnmarshalablePayload(t *testing.T) {
	_, err := NewEvent("bad", make(chan int))
	assert.Error(t, err)
}

func TestNewTaskAssignedEvent(t *testing.T) {
	task := &domain.Task{
		ID:        uuid.New(),
		Title:     "Fix login",
		Type:      domain.TaskTypeImmediate,
		Frequency: domain.FrequencyOneTime,
		Assignee:  &domain.UserSummary{ID: uuid.New(), Username: "bob", PhoneNumber: "+15550000002"},
	}

	event, err := NewTaskAssignedEvent(task)
	require.NoError(t, err)
	assert.Equal(t, TypeTaskAssigned, event.Type)

	var got TaskAssigned
	require.NoError(t, event.UnmarshalPayload(&got))
	assert.Equal(t, task.ID, got.Task.ID)
	assert.Equal(t, task.Title, got.Task.Title)
	require.NotNil(t, got.Task.Assignee)
	assert.Equal(t, "+15550000002", got.Task.Assignee.PhoneNumber)
}

// MockEventHandler implements the EventHandler interface for testing
type MockEventHandler struct {
	// The last event received by this handler
	LastEvent *Event
	// Error to return from HandleEvent
	HandlerError error
	// Count of events handled
	HandledCount int
}

// HandleEvent implements the EventHandler interface
func (h *MockEventHandler) HandleEvent(ctx context.Context, event *Event) error {
	h.LastEvent = event
	h.HandledCount++
	return h.HandlerError
}

func TestEventHandler(t *testing.T) {
	handler := &MockEventHandler{}

	event, err := NewEvent("test_type", map[string]string{"key": "value"})
	require.NoError(t, err)

	err = handler.HandleEvent(context.Background(), event)
	assert.NoError(t, err)
	assert.Equal(t, 1, handler.HandledCount)
	assert.Equal(t, event, handler.LastEvent)

	expectedErr := errors.New("handler error")
	handler.HandlerError = expectedErr
	err = handler.HandleEvent(context.Background(), event)
	assert.Equal(t, expectedErr, err)
	assert.Equal(t, 2, handler.HandledCount)
}
