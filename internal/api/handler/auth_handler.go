package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"system_sentinel/internal/api/middleware"
	"system_sentinel/internal/app/service"
	"system_sentinel/internal/common"
	"system_sentinel/internal/domain/model"

	"github.com/go-chi/chi/v5"
)

type AuthHandler struct {
	authService *service.AuthService
	userService *service.UserService
}

func NewAuthHandler(authService *service.AuthService, userService *service.UserService) *AuthHandler {
	return &AuthHandler{authService: authService, userService: userService}
}

func (h *AuthHandler) RegisterPublicRoutes(r chi.Router) {
	r.Post("/auth/register", h.register)
	r.Post("/auth/login", h.login)
}

func (h *AuthHandler) RegisterProtectedRoutes(r chi.Router) {
	r.Get("/auth/me", h.me)
	r.Put("/auth/me", h.updateMe)
}

func (h *AuthHandler) register(w http.ResponseWriter, r *http.Request) {
	var req service.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	user, err := h.userService.Create(r.Context(), req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, user)
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// login accepts the OAuth2 password form: username + password, where the
// username field may also hold an email.
func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid form payload")
		return
	}
	identifier := r.PostFormValue("username")
	password := r.PostFormValue("password")

	user, err := h.authService.Login(r.Context(), identifier, password)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	token, err := h.authService.IssueToken(user)
	if err != nil {
		common.RespondWithError(w, http.StatusInternalServerError, "Failed to issue token")
		return
	}
	common.RespondWithJSON(w, http.StatusOK, tokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
	})
}

func (h *AuthHandler) me(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Could not validate credentials")
		return
	}
	common.RespondWithJSON(w, http.StatusOK, user)
}

func (h *AuthHandler) updateMe(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Could not validate credentials")
		return
	}

	var patch model.UserPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	updated, err := h.userService.Update(r.Context(), user.ID, patch)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, updated)
}

// respondServiceError maps a service error to its status. Unauthorized
// results always carry the same generic message so the internal failure
// reason never leaks; other client errors keep their descriptive text.
func respondServiceError(w http.ResponseWriter, err error) {
	status := common.HTTPStatusFromError(err)
	switch status {
	case http.StatusUnauthorized:
		common.RespondWithError(w, status, "Could not validate credentials")
	case http.StatusInternalServerError:
		common.RespondWithError(w, status, "Internal server error")
	default:
		common.RespondWithError(w, status, clientMessage(err))
	}
}

func clientMessage(err error) string {
	switch {
	case errors.Is(err, service.ErrEmailTaken):
		return "Email already registered"
	case errors.Is(err, service.ErrUsernameTaken):
		return "Username already taken"
	case errors.Is(err, common.ErrSelfDeletion):
		return "Users cannot delete themselves"
	case errors.Is(err, common.ErrNotFound):
		return "User not found"
	default:
		return err.Error()
	}
}
