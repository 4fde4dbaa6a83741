package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/taskroster-api/internal/api/shared"
	"github.com/phrazzld/taskroster-api/internal/domain"
	"github.com/phrazzld/taskroster-api/internal/platform/logger"
	"github.com/phrazzld/taskroster-api/internal/service"
	"github.com/phrazzld/taskroster-api/internal/store"
)

// AdminHandler serves the administrator endpoints. Every route is behind
// RequireAdmin.
type AdminHandler struct {
	accounts service.AccountService
	tasks    service.TaskService
	logger   *slog.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(accounts service.AccountService, tasks service.TaskService, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		accounts: accounts,
		tasks:    tasks,
		logger:   logger.With("component", "admin_handler"),
	}
}

// ListUsers handles GET /admin/users.
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	page, err := parsePage(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	users, err := h.accounts.ListUsers(r.Context(), page)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	if users == nil {
		users = []domain.UserWithStats{}
	}
	shared.RespondWithJSON(w, r, http.StatusOK, users)
}

// SetUserStatus handles PATCH /admin/users/{userId}/status.
func (h *AdminHandler) SetUserStatus(w http.ResponseWriter, r *http.Request) {
	userID, err := getPathUUID(r, "userId")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	var req SetUserStatusRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	user, err := h.accounts.SetActive(r.Context(), userID, *req.IsActive)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, user)
}

// CreateTask handles POST /admin/tasks.
func (h *AdminHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	admin, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req CreateTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	task, err := h.tasks.CreateTask(r.Context(), admin.ID, req.params())
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	logger.FromContextOrDefault(r.Context(), h.logger).Debug("task created via api",
		"task_id", task.ID, "admin_id", admin.ID)
	shared.RespondWithJSON(w, r, http.StatusCreated, task)
}

func (req CreateTaskRequest) params() service.CreateTaskParams {
	p := service.CreateTaskParams{
		Title:         req.Title,
		Description:   req.Description,
		AssignedTo:    req.AssignedTo,
		Type:          domain.TaskTypeImmediate,
		Frequency:     domain.FrequencyOneTime,
		DueDate:       req.DueDate,
		ScheduledDate: req.ScheduledDate,
		RepeatCount:   req.RepeatCount,
		RepeatEndDate: req.RepeatEndDate,
		IsPaymentTask: req.IsPaymentTask,
	}
	if req.TaskType != "" {
		p.Type = domain.TaskType(req.TaskType)
	}
	if req.Frequency != "" {
		p.Frequency = domain.Frequency(req.Frequency)
	}
	if req.RepeatInterval != nil {
		unit := domain.RepeatUnit(*req.RepeatInterval)
		p.RepeatInterval = &unit
	}
	return p
}

// ListTasks handles GET /admin/tasks.
func (h *AdminHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	filter, page, ok := listParams(w, r)
	if !ok {
		return
	}
	tasks, err := h.tasks.ListTasks(r.Context(), filter, page)
	respondTasks(w, r, tasks, err)
}

// ListUserTasks handles GET /admin/tasks/{id}, where id names an account.
func (h *AdminHandler) ListUserTasks(w http.ResponseWriter, r *http.Request) {
	userID, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	filter, page, ok := listParams(w, r)
	if !ok {
		return
	}
	tasks, err := h.tasks.ListTasksForUser(r.Context(), userID, filter, page)
	respondTasks(w, r, tasks, err)
}

// ListTaskNotifications handles GET /admin/tasks/{id}/notifications.
func (h *AdminHandler) ListTaskNotifications(w http.ResponseWriter, r *http.Request) {
	taskID, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	notes, err := h.tasks.ListNotifications(r.Context(), taskID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	if notes == nil {
		notes = []*domain.Notification{}
	}
	shared.RespondWithJSON(w, r, http.StatusOK, notes)
}

// ListCompletedTasks handles GET /admin/completed-tasks.
func (h *AdminHandler) ListCompletedTasks(w http.ResponseWriter, r *http.Request) {
	days, err := parseIntQuery(r, "days")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	page, err := parsePage(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	tasks, err := h.tasks.ListCompletedTasks(r.Context(), days, page)
	respondTasks(w, r, tasks, err)
}

// TaskStats handles GET /admin/tasks-stats.
func (h *AdminHandler) TaskStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.tasks.TaskStatistics(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, stats)
}

// UserStats handles GET /admin/user-stats/{userId}.
func (h *AdminHandler) UserStats(w http.ResponseWriter, r *http.Request) {
	userID, err := getPathUUID(r, "userId")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	stats, err := h.tasks.UserStatistics(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, stats)
}

func listParams(w http.ResponseWriter, r *http.Request) (service.TaskFilter, store.Page, bool) {
	filter, err := parseTaskFilter(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return filter, store.Page{}, false
	}
	page, err := parsePage(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return filter, page, false
	}
	return filter, page, true
}

func respondTasks(w http.ResponseWriter, r *http.Request, tasks []*domain.Task, err error) {
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	if tasks == nil {
		tasks = []*domain.Task{}
	}
	shared.RespondWithJSON(w, r, http.StatusOK, tasks)
}
