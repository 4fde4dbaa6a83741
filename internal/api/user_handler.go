package api

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/phrazzld/taskroster-api/internal/api/shared"
	"github.com/phrazzld/taskroster-api/internal/domain"
	"github.com/phrazzld/taskroster-api/internal/platform/logger"
	"github.com/phrazzld/taskroster-api/internal/service"
	"github.com/phrazzld/taskroster-api/internal/store"
	"github.com/phrazzld/taskroster-api/internal/upload"
)

// multipartMemory is how much of a multipart body is held in memory
// before spilling to temporary files.
const multipartMemory = 4 << 20

// UserHandler serves the endpoints an assignee uses to see and complete
// their own tasks.
type UserHandler struct {
	tasks          service.TaskService
	maxUploadBytes int64
	logger         *slog.Logger
}

// NewUserHandler creates a new UserHandler. Multipart bodies larger than
// maxUploadBytes plus form overhead are refused.
func NewUserHandler(tasks service.TaskService, maxUploadBytes int64, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		tasks:          tasks,
		maxUploadBytes: maxUploadBytes,
		logger:         logger.With("component", "user_handler"),
	}
}

// ListMyTasks handles GET /user/tasks.
func (h *UserHandler) ListMyTasks(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	filter, page, ok := listParams(w, r)
	if !ok {
		return
	}

	tasks, err := h.scoped(r, user, filter, page)
	respondTasks(w, r, tasks, err)
}

// scoped lists the caller's tasks. Administrators hold no tasks.
func (h *UserHandler) scoped(
	r *http.Request,
	user *domain.User,
	filter service.TaskFilter,
	page store.Page,
) ([]*domain.Task, error) {
	if !user.CanBeAssigned() {
		return []*domain.Task{}, nil
	}
	return h.tasks.ListTasksForUser(r.Context(), user.ID, filter, page)
}

// CompleteTask handles PUT /user/tasks/{id}/complete.
func (h *UserHandler) CompleteTask(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	taskID, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	// The body is optional; an empty one completes without a message.
	var req CompleteTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	task, err := h.tasks.CompleteTask(r.Context(), user.ID, taskID, service.CompleteTaskParams{
		Message: req.CompletionMessage,
	})
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, task)
}

// CompleteTaskWithImage handles PUT /user/tasks/{id}/complete-with-image.
// The body is multipart with an optional completion_message field and a
// required image file.
func (h *UserHandler) CompleteTaskWithImage(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	taskID, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+multipartMemory)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			HandleAPIError(w, r, upload.ErrTooLarge, "")
			return
		}
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid multipart form")
		return
	}
	defer func() {
		if err := r.MultipartForm.RemoveAll(); err != nil {
			log.Warn("failed to remove multipart temp files", "error", err)
		}
	}()

	file, header, err := r.FormFile("image")
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid image: required field")
		return
	}
	defer func() { _ = file.Close() }()

	params := service.CompleteTaskParams{
		Image: &upload.File{Name: header.Filename, Reader: file},
	}
	if msg, ok := r.MultipartForm.Value["completion_message"]; ok && len(msg) > 0 {
		params.Message = &msg[0]
	}

	task, err := h.tasks.CompleteTask(r.Context(), user.ID, taskID, params)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	log.Debug("task completed with image", "task_id", task.ID, "size", header.Size)
	shared.RespondWithJSON(w, r, http.StatusOK, task)
}
