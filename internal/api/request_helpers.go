package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/taskroster-api/internal/api/shared"
	"github.com/phrazzld/taskroster-api/internal/domain"
	"github.com/phrazzld/taskroster-api/internal/service"
	"github.com/phrazzld/taskroster-api/internal/store"
)

// currentUser returns the account placed in the context by the auth
// middleware, writing a 401 when there is none.
func currentUser(w http.ResponseWriter, r *http.Request) (*domain.User, bool) {
	user, ok := shared.UserFromContext(r.Context())
	if !ok {
		HandleAPIError(w, r, domain.ErrUnauthorized, "")
		return nil, false
	}
	return user, true
}

// getPathUUID parses a UUID path parameter.
func getPathUUID(r *http.Request, paramName string) (uuid.UUID, error) {
	pathParam := chi.URLParam(r, paramName)
	if pathParam == "" {
		return uuid.Nil, domain.NewValidationError(paramName, "is required")
	}

	id, err := uuid.Parse(pathParam)
	if err != nil {
		return uuid.Nil, domain.NewValidationError(paramName, "must be a valid UUID")
	}
	return id, nil
}

// parsePage reads the skip and limit query parameters. Absent values are
// left zero; range checks belong to the service.
func parsePage(r *http.Request) (store.Page, error) {
	var page store.Page
	q := r.URL.Query()

	if v := q.Get("skip"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return page, domain.NewValidationError("skip", "must be an integer")
		}
		page.Offset = n
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return page, domain.NewValidationError("limit", "must be an integer")
		}
		if n == 0 {
			return page, domain.NewValidationError("limit", "must be between 1 and 1000")
		}
		page.Limit = n
	}
	return page, nil
}

// parseTaskFilter reads the completed and task_type query parameters.
func parseTaskFilter(r *http.Request) (service.TaskFilter, error) {
	var filter service.TaskFilter
	q := r.URL.Query()

	if v := q.Get("completed"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return filter, domain.NewValidationError("completed", "must be true or false")
		}
		filter.Completed = &b
	}
	if v := q.Get("task_type"); v != "" {
		tt := domain.TaskType(v)
		filter.Type = &tt
	}
	return filter, nil
}

// parseIntQuery reads an optional integer query parameter.
func parseIntQuery(r *http.Request, name string) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, domain.NewValidationError(name, "must be an integer")
	}
	return n, nil
}
