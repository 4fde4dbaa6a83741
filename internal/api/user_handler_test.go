package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskroster-api/internal/domain"
	"github.com/phrazzld/taskroster-api/internal/mocks"
	"github.com/phrazzld/taskroster-api/internal/service"
	"github.com/phrazzld/taskroster-api/internal/store"
	"github.com/phrazzld/taskroster-api/internal/upload"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pngHeader is enough of a PNG for content sniffing.
var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

// completionFake completes one pending task owned by owner, recording the
// params of the last call.
type completionFake struct {
	owner     uuid.UUID
	task      *domain.Task
	lastMsg   *string
	lastImage []byte
}

func newCompletionFake(t *testing.T, owner, creator uuid.UUID) *completionFake {
	t.Helper()
	task, err := domain.NewTask(domain.TaskSpec{
		Title:      "Sweep the porch",
		AssignedTo: owner,
		CreatedBy:  creator,
		Type:       domain.TaskTypeImmediate,
		Frequency:  domain.FrequencyOneTime,
	}, time.Now())
	require.NoError(t, err)
	return &completionFake{owner: owner, task: task}
}

func (f *completionFake) complete(_ context.Context, userID, taskID uuid.UUID, p service.CompleteTaskParams) (*domain.Task, error) {
	if userID != f.owner || taskID != f.task.ID {
		return nil, fmt.Errorf("complete: %w", store.ErrTaskNotFound)
	}
	f.lastMsg = p.Message

	var image *string
	if p.Image != nil {
		data, err := io.ReadAll(p.Image.Reader)
		if err != nil {
			return nil, err
		}
		if len(data) == 0 {
			return nil, upload.ErrEmptyFile
		}
		if !bytes.HasPrefix(data, pngHeader[:4]) {
			return nil, upload.ErrUnsupportedType
		}
		f.lastImage = data
		path := "uploads/" + p.Image.Name
		image = &path
	}

	if err := f.task.Complete(time.Now(), p.Message, image); err != nil {
		return nil, err
	}
	copied := *f.task
	return &copied, nil
}

func TestListMyTasks(t *testing.T) {
	admin := mustUser(t, "admin", "+10000000000", true)
	bob := mustUser(t, "bob", "+10000000001", false)
	fake := newCompletionFake(t, bob.ID, admin.ID)

	var listedFor uuid.UUID
	tasks := &mocks.MockTaskService{
		ListTasksForUserFn: func(_ context.Context, id uuid.UUID, _ service.TaskFilter, _ store.Page) ([]*domain.Task, error) {
			listedFor = id
			return []*domain.Task{fake.task}, nil
		},
		ListTasksFn: func(context.Context, service.TaskFilter, store.Page) ([]*domain.Task, error) {
			t.Fatal("user listing must never fall back to the global list")
			return nil, nil
		},
	}
	h := NewUserHandler(tasks, 1<<20, testLogger())

	rr := httptest.NewRecorder()
	h.ListMyTasks(rr, newJSONRequest(t, http.MethodGet, "/user/tasks", nil, bob))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, bob.ID, listedFor)
	assert.Len(t, decodeBody[[]map[string]any](t, rr), 1)

	listedFor = uuid.Nil
	rr = httptest.NewRecorder()
	h.ListMyTasks(rr, newJSONRequest(t, http.MethodGet, "/user/tasks", nil, admin))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, uuid.Nil, listedFor, "admins hold no tasks")
	assert.JSONEq(t, `[]`, rr.Body.String())
}

func TestCompleteTaskHandler(t *testing.T) {
	admin := mustUser(t, "admin", "+10000000000", true)
	bob := mustUser(t, "bob", "+10000000001", false)
	eve := mustUser(t, "eve", "+10000000002", false)

	fake := newCompletionFake(t, bob.ID, admin.ID)
	h := NewUserHandler(&mocks.MockTaskService{CompleteTaskFn: fake.complete}, 1<<20, testLogger())
	path := "/user/tasks/" + fake.task.ID.String() + "/complete"

	rr := httptest.NewRecorder()
	h.CompleteTask(rr, newJSONRequest(t, http.MethodPut, path, nil, eve, "id", fake.task.ID.String()))
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "Task not found or not assigned to you", errorMessage(t, rr))

	rr = httptest.NewRecorder()
	h.CompleteTask(rr, newJSONRequest(t, http.MethodPut, path,
		map[string]string{"completion_message": "Done, porch is clean"}, bob, "id", fake.task.ID.String()))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	got := decodeBody[map[string]any](t, rr)
	assert.Equal(t, true, got["is_completed"])
	assert.Equal(t, "Done, porch is clean", got["completion_message"])
	assert.NotNil(t, got["completed_at"])

	rr = httptest.NewRecorder()
	h.CompleteTask(rr, newJSONRequest(t, http.MethodPut, path, nil, bob, "id", fake.task.ID.String()))
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, "Task already completed", errorMessage(t, rr))
}

func TestCompleteTaskHandlerWithoutBody(t *testing.T) {
	admin := mustUser(t, "admin", "+10000000000", true)
	bob := mustUser(t, "bob", "+10000000001", false)
	fake := newCompletionFake(t, bob.ID, admin.ID)
	h := NewUserHandler(&mocks.MockTaskService{CompleteTaskFn: fake.complete}, 1<<20, testLogger())

	rr := httptest.NewRecorder()
	h.CompleteTask(rr, newJSONRequest(t, http.MethodPut, "/user/tasks/x/complete", nil, bob, "id", fake.task.ID.String()))

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Nil(t, fake.lastMsg)
}

func multipartRequest(t *testing.T, fields map[string]string, fileName string, file []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if fileName != "" {
		fw, err := mw.CreateFormFile("image", fileName)
		require.NoError(t, err)
		_, err = fw.Write(file)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestCompleteTaskWithImageHandler(t *testing.T) {
	admin := mustUser(t, "admin", "+10000000000", true)
	bob := mustUser(t, "bob", "+10000000001", false)

	tests := []struct {
		name     string
		fields   map[string]string
		fileName string
		file     []byte
		maxBytes int64
		status   int
		message  string
	}{
		{
			name:     "photo and message",
			fields:   map[string]string{"completion_message": "See photo"},
			fileName: "porch.png",
			file:     pngHeader,
			maxBytes: 1 << 20,
			status:   http.StatusOK,
		},
		{
			name:     "missing image",
			fields:   map[string]string{"completion_message": "No photo"},
			maxBytes: 1 << 20,
			status:   http.StatusBadRequest,
			message:  "Invalid image: required field",
		},
		{
			name:     "not an image",
			fileName: "notes.txt",
			file:     []byte("just some text"),
			maxBytes: 1 << 20,
			status:   http.StatusBadRequest,
			message:  "File must be an image",
		},
		{
			name:     "empty file",
			fileName: "empty.png",
			file:     []byte{},
			maxBytes: 1 << 20,
			status:   http.StatusBadRequest,
			message:  "Image file is empty",
		},
		{
			name:     "body over the limit",
			fileName: "huge.png",
			file:     append(append([]byte{}, pngHeader...), make([]byte, multipartMemory+2048)...),
			maxBytes: 1024,
			status:   http.StatusRequestEntityTooLarge,
			message:  "Image is too large",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := newCompletionFake(t, bob.ID, admin.ID)
			h := NewUserHandler(&mocks.MockTaskService{CompleteTaskFn: fake.complete}, tt.maxBytes, testLogger())

			body, contentType := multipartRequest(t, tt.fields, tt.fileName, tt.file)
			req := httptest.NewRequest(http.MethodPut, "/user/tasks/x/complete-with-image", body)
			req.Header.Set("Content-Type", contentType)
			req = withContext(req, bob, "id", fake.task.ID.String())
			rr := httptest.NewRecorder()

			h.CompleteTaskWithImage(rr, req)

			require.Equal(t, tt.status, rr.Code, rr.Body.String())
			if tt.message != "" {
				assert.Equal(t, tt.message, errorMessage(t, rr))
				assert.False(t, fake.task.IsCompleted)
				return
			}

			got := decodeBody[map[string]any](t, rr)
			assert.Equal(t, "uploads/porch.png", got["completion_image"])
			assert.Equal(t, "See photo", got["completion_message"])
			assert.Equal(t, pngHeader, fake.lastImage)
		})
	}
}
