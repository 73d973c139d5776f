package identity

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/andela-jare/CP3-DMS/internal/pkg/httputil"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

// Pagination constants.
const (
	DefaultUsersLimit = 10
	MaxUsersLimit     = 100
)

// validationMessages maps violated constraints to the messages the API
// contract promises.
var validationMessages = map[string]string{
	"Password.min": "Password must be at least 6 characters.",
}

// Handler handles HTTP requests for the identity module.
type Handler struct {
	service   *Service
	validator *validator.Validate
}

// NewHandler creates a new identity handler.
func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(),
	}
}

// RegisterPublicRoutes registers routes that do not require a session.
func (h *Handler) RegisterPublicRoutes(r chi.Router) {
	r.Post("/users", h.Signup)
	r.Post("/login", h.Login)
}

// RegisterProtectedRoutes registers routes that require authentication.
func (h *Handler) RegisterProtectedRoutes(r chi.Router) {
	r.Post("/logout", h.Logout)
	r.Get("/users", h.ListUsers)
	r.Get("/users/{id}", h.GetUser)
	r.Put("/users/{id}", h.UpdateUser)
	r.Delete("/users/{id}", h.DeleteUser)
}

// RegisterAdminRoutes registers routes that require the admin role.
func (h *Handler) RegisterAdminRoutes(r chi.Router) {
	r.Route("/roles", func(r chi.Router) {
		r.Get("/", h.ListRoles)
		r.Post("/", h.CreateRole)
	})
}

// SignupRequest represents the signup request body. ID is decoded only so
// client-supplied ids can be rejected.
type SignupRequest struct {
	ID        string `json:"id"`
	Username  string `json:"username" validate:"required"`
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=6"`
	RoleID    string `json:"roleId"`
}

// Signup handles POST /users.
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	if req.ID != "" {
		httputil.Error(w, http.StatusBadRequest, "Sorry, You can't pass an id.")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err, validationMessages)
		return
	}

	user, token, err := h.service.Register(r.Context(), RegisterInput{
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
		RoleID:    req.RoleID,
	})
	if err != nil {
		httputil.HandleError(r.Context(), w, err, []httputil.ErrorMapping{
			{Error: ErrAdminSignup, Status: http.StatusBadRequest, Message: "You can't sign up as an admin."},
			{Error: ErrRoleNotFound, Status: http.StatusBadRequest, Message: "Role does not exist."},
			{Error: ErrUsernameExists, Status: http.StatusBadRequest, Message: "Username already exists."},
			{Error: ErrEmailExists, Status: http.StatusBadRequest, Message: "Email already exists."},
			{Error: ErrDuplicateUser, Status: http.StatusBadRequest, Message: "A user with these details already exists."},
		})
		return
	}

	httputil.JSON(w, http.StatusCreated, map[string]interface{}{
		"message": "You have successfully signed up!",
		"token":   token,
		"data":    user,
	})
}

// LoginRequest represents the login request body.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Login handles POST /login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err, validationMessages)
		return
	}

	user, token, err := h.service.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		httputil.HandleError(r.Context(), w, err, []httputil.ErrorMapping{
			{Error: ErrUserNotFound, Status: http.StatusUnauthorized, Message: "User does not exist."},
			{Error: ErrInvalidCredentials, Status: http.StatusUnauthorized, Message: "Incorrect username and password combination!"},
		})
		return
	}

	httputil.JSON(w, http.StatusOK, map[string]interface{}{
		"message": "You have successfully signed in!",
		"token":   token,
		"data":    user,
	})
}

// Logout handles POST /logout.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r.Context())
	if err := h.service.Logout(r.Context(), userID); err != nil {
		httputil.HandleError(r.Context(), w, err, nil)
		return
	}

	httputil.JSON(w, http.StatusOK, map[string]string{
		"message": "You have successfully logged out",
	})
}

// ListUsers handles GET /users.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	limit, offset, ok := h.pageParams(w, r)
	if !ok {
		return
	}

	users, total, err := h.service.ListUsers(r.Context(), limit, offset)
	if err != nil {
		httputil.HandleError(r.Context(), w, err, nil)
		return
	}

	httputil.JSON(w, http.StatusOK, map[string]interface{}{
		"data":     users,
		"metaData": httputil.NewPagination(total, limit, offset),
	})
}

// GetUser handles GET /users/{id}.
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.GetUser(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.HandleError(r.Context(), w, err, []httputil.ErrorMapping{
			{Error: ErrUserNotFound, Status: http.StatusNotFound, Message: "User not found."},
		})
		return
	}

	httputil.Success(w, http.StatusOK, user)
}

// UpdateUserRequest represents the user update request body. Which fields
// apply depends on who the requester is; see Service.UpdateUser.
type UpdateUserRequest struct {
	Username  string `json:"username"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email" validate:"omitempty,email"`
	Password  string `json:"password" validate:"omitempty,min=6"`
	RoleID    string `json:"roleId"`
}

// UpdateUser handles PUT /users/{id}.
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var req UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err, validationMessages)
		return
	}

	user, err := h.service.UpdateUser(r.Context(), httputil.GetRequester(r.Context()), chi.URLParam(r, "id"), UpdateUserInput(req))
	if err != nil {
		httputil.HandleError(r.Context(), w, err, []httputil.ErrorMapping{
			{Error: ErrUserNotFound, Status: http.StatusNotFound, Message: "User not found."},
			{Error: ErrNotOwner, Status: http.StatusForbidden, Message: "You are restricted from performing this action."},
			{Error: ErrRoleNotFound, Status: http.StatusBadRequest, Message: "Role does not exist."},
			{Error: ErrUsernameExists, Status: http.StatusBadRequest, Message: "Username already exists."},
			{Error: ErrEmailExists, Status: http.StatusBadRequest, Message: "Email already exists."},
			{Error: ErrDuplicateUser, Status: http.StatusBadRequest, Message: "A user with these details already exists."},
		})
		return
	}

	httputil.Success(w, http.StatusOK, user)
}

// DeleteUser handles DELETE /users/{id}.
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	err := h.service.DeleteUser(r.Context(), httputil.GetRequester(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		httputil.HandleError(r.Context(), w, err, []httputil.ErrorMapping{
			{Error: ErrUserNotFound, Status: http.StatusNotFound, Message: "User not found."},
			{Error: ErrAdminProtected, Status: http.StatusForbidden, Message: "You can not delete an admin!"},
			{Error: ErrNotOwner, Status: http.StatusForbidden, Message: "You are restricted from performing this action."},
		})
		return
	}

	httputil.JSON(w, http.StatusOK, map[string]string{
		"message": "User deleted successfully.",
	})
}

// CreateRoleRequest represents the role creation request body.
type CreateRoleRequest struct {
	Title string `json:"title" validate:"required"`
}

// CreateRole handles POST /roles.
func (h *Handler) CreateRole(w http.ResponseWriter, r *http.Request) {
	var req CreateRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err, validationMessages)
		return
	}

	role, err := h.service.CreateRole(r.Context(), req.Title)
	if err != nil {
		httputil.HandleError(r.Context(), w, err, []httputil.ErrorMapping{
			{Error: ErrEmptyRoleTitle, Status: http.StatusBadRequest, Message: "title cannot be empty."},
			{Error: ErrRoleTitleExists, Status: http.StatusBadRequest, Message: "Role title already exists."},
		})
		return
	}

	httputil.Success(w, http.StatusCreated, role)
}

// ListRoles handles GET /roles.
func (h *Handler) ListRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.service.ListRoles(r.Context())
	if err != nil {
		httputil.HandleError(r.Context(), w, err, nil)
		return
	}

	httputil.Success(w, http.StatusOK, roles)
}

func (h *Handler) pageParams(w http.ResponseWriter, r *http.Request) (limit, offset int, ok bool) {
	limit = DefaultUsersLimit
	offset = 0

	if l := r.URL.Query().Get("limit"); l != "" {
		parsed, err := strconv.Atoi(l)
		if err != nil || parsed < 1 {
			httputil.Error(w, http.StatusBadRequest, "limit must be a positive integer")
			return 0, 0, false
		}
		if parsed > MaxUsersLimit {
			parsed = MaxUsersLimit
		}
		limit = parsed
	}

	if o := r.URL.Query().Get("offset"); o != "" {
		parsed, err := strconv.Atoi(o)
		if err != nil || parsed < 0 {
			httputil.Error(w, http.StatusBadRequest, "offset must be a non-negative integer")
			return 0, 0, false
		}
		offset = parsed
	}

	return limit, offset, true
}
