package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/taskroster-api/internal/api/shared"
	"github.com/phrazzld/taskroster-api/internal/domain"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func mustUser(t *testing.T, username, phone string, admin bool) *domain.User {
	t.Helper()
	u, err := domain.NewUser(username, phone, "hash")
	require.NoError(t, err)
	u.IsAdmin = admin
	return u
}

// newJSONRequest builds a request with an optional JSON body, acting user
// and chi URL parameters given as name/value pairs.
func newJSONRequest(t *testing.T, method, target string, body any, user *domain.User, params ...string) *http.Request {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return withContext(req, user, params...)
}

func withContext(req *http.Request, user *domain.User, params ...string) *http.Request {
	ctx := req.Context()
	if user != nil {
		ctx = shared.WithUser(ctx, user)
	}
	if len(params) > 0 {
		rctx := chi.NewRouteContext()
		for i := 0; i+1 < len(params); i += 2 {
			rctx.URLParams.Add(params[i], params[i+1])
		}
		ctx = context.WithValue(ctx, chi.RouteCtxKey, rctx)
	}
	return req.WithContext(ctx)
}

func decodeBody[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

func errorMessage(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	return decodeBody[shared.ErrorResponse](t, rr).Error
}
