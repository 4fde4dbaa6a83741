package api

import (
	"log/slog"
	"mime"
	"net/http"

	"github.com/phrazzld/taskroster-api/internal/api/shared"
	"github.com/phrazzld/taskroster-api/internal/platform/logger"
	"github.com/phrazzld/taskroster-api/internal/service"
)

// AuthHandler handles login and account provisioning requests.
type AuthHandler struct {
	accounts service.AccountService
	logger   *slog.Logger
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
func NewAuthHandler(accounts service.AccountService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		accounts: accounts,
		logger:   logger.With("component", "auth_handler"),
	}
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	req, err := decodeLogin(r)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	result, err := h.accounts.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		status := MapErrorToStatusCode(err)
		shared.RespondWithErrorAndLog(w, r, status, GetSafeErrorMessage(err), err, shared.WithElevatedLogLevel())
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, LoginResponse{
		AccessToken: result.Token,
		TokenType:   "bearer",
		UserType:    userType(result.User),
		ExpiresAt:   result.ExpiresAt,
	})
}

// decodeLogin accepts an OAuth2 password form or a JSON body.
func decodeLogin(r *http.Request) (LoginRequest, error) {
	var req LoginRequest
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/x-www-form-urlencoded" {
		if err := r.ParseForm(); err != nil {
			return req, err
		}
		req.Username = r.PostForm.Get("username")
		req.Password = r.PostForm.Get("password")
		return req, nil
	}
	err := shared.DecodeJSON(r, &req)
	return req, err
}

// CreateUser handles POST /auth/admin/create-user.
func (h *AuthHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req CreateUserRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	user, err := h.accounts.CreateAccount(r.Context(), service.NewAccountParams{
		Username:           req.Username,
		Password:           req.Password,
		PhoneNumber:        req.PhoneNumber,
		IsPaymentCollector: req.IsPaymentCollector,
	})
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	log.Info("account provisioned", "user_id", user.ID)
	shared.RespondWithJSON(w, r, http.StatusCreated, user)
}

// Me handles GET /auth/me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, user)
}
