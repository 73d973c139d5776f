// Package identity provides user registration, login, session handling,
// and the user/role directory.
package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/andela-jare/CP3-DMS/internal/domain"
	"github.com/andela-jare/CP3-DMS/internal/pkg/httputil"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Authenticator issues and verifies session tokens.
type Authenticator interface {
	Issue(userID, role string) (string, error)
	Verify(token string) (userID, role string, err error)
}

// Service implements identity business logic.
type Service struct {
	repo Repository
	auth Authenticator
}

// NewService creates a new identity service.
func NewService(repo Repository, auth Authenticator) *Service {
	return &Service{repo: repo, auth: auth}
}

// RegisterInput holds data for creating a user.
type RegisterInput struct {
	Username  string
	FirstName string
	LastName  string
	Email     string
	Password  string
	RoleID    string // optional; must not resolve to the admin role
}

// Register creates a user and issues a session token. Signing up with the
// admin role is rejected; the default role is "regular".
func (s *Service) Register(ctx context.Context, input RegisterInput) (*domain.User, string, error) {
	var role *domain.Role
	var err error

	if input.RoleID != "" {
		role, err = s.repo.GetRoleByID(ctx, input.RoleID)
		if err != nil {
			return nil, "", err
		}
		if role.IsAdmin() {
			return nil, "", ErrAdminSignup
		}
	} else {
		role, err = s.repo.GetRoleByTitle(ctx, domain.RoleRegular)
		if err != nil {
			return nil, "", fmt.Errorf("resolve default role: %w", err)
		}
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		ID:           uuid.NewString(),
		Username:     input.Username,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Email:        strings.ToLower(input.Email),
		Password:     string(hashed),
		SessionToken: domain.SessionRegistered,
		RoleID:       role.ID,
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, "", err
	}

	token, err := s.auth.Issue(user.ID, role.Title)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}
	return user, token, nil
}

// Login verifies credentials, issues a token, and stores it as the user's
// single active session.
func (s *Service) Login(ctx context.Context, username, password string) (*domain.User, string, error) {
	user, err := s.repo.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	role, err := s.repo.GetRoleByID(ctx, user.RoleID)
	if err != nil {
		return nil, "", fmt.Errorf("resolve role: %w", err)
	}

	token, err := s.auth.Issue(user.ID, role.Title)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}

	if err := s.repo.SetSessionToken(ctx, user.ID, token); err != nil {
		return nil, "", fmt.Errorf("store session token: %w", err)
	}
	user.SessionToken = token

	return user, token, nil
}

// Logout revokes the user's stored session marker. Previously issued
// tokens fail authentication until the next login.
func (s *Service) Logout(ctx context.Context, userID string) error {
	return s.repo.SetSessionToken(ctx, userID, domain.SessionRevoked)
}

// AuthenticateToken implements httputil.TokenAuthenticator. It verifies the
// token, re-reads the user row, and enforces the single-session marker. The
// returned role comes from the user row, so role changes apply immediately.
func (s *Service) AuthenticateToken(ctx context.Context, token string) (domain.Requester, error) {
	userID, _, err := s.auth.Verify(token)
	if err != nil {
		return domain.Requester{}, httputil.ErrInvalidToken
	}

	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return domain.Requester{}, httputil.ErrInvalidToken
		}
		return domain.Requester{}, fmt.Errorf("look up user: %w", err)
	}

	if !user.AcceptsToken(token) {
		return domain.Requester{}, httputil.ErrSessionInvalidated
	}

	role, err := s.repo.GetRoleByID(ctx, user.RoleID)
	if err != nil {
		return domain.Requester{}, fmt.Errorf("resolve role: %w", err)
	}

	return domain.Requester{UserID: user.ID, Role: role.Title}, nil
}

// GetUser retrieves a user by id.
func (s *Service) GetUser(ctx context.Context, id string) (*domain.User, error) {
	return s.repo.GetUserByID(ctx, id)
}

// ListUsers returns a page of users and the total count.
func (s *Service) ListUsers(ctx context.Context, limit, offset int) ([]domain.User, int, error) {
	return s.repo.ListUsers(ctx, limit, offset)
}

// UpdateUserInput holds updatable user fields. Empty fields are left
// unchanged.
type UpdateUserInput struct {
	Username  string
	FirstName string
	LastName  string
	Email     string
	Password  string
	RoleID    string
}

// UpdateUser applies changes to a user. Only the user themselves or an
// admin may update. An admin updating another user's record applies the
// role change only; all other submitted fields are ignored. This is the
// sole path by which roles are reassigned.
func (s *Service) UpdateUser(ctx context.Context, requester domain.Requester, targetID string, input UpdateUserInput) (*domain.User, error) {
	user, err := s.repo.GetUserByID(ctx, targetID)
	if err != nil {
		return nil, err
	}

	if requester.UserID != user.ID && !requester.IsAdmin() {
		return nil, ErrNotOwner
	}

	if requester.IsAdmin() && requester.UserID != user.ID {
		if input.RoleID != "" {
			role, err := s.repo.GetRoleByID(ctx, input.RoleID)
			if err != nil {
				return nil, err
			}
			user.RoleID = role.ID
		}
	} else {
		if input.Username != "" {
			user.Username = input.Username
		}
		if input.FirstName != "" {
			user.FirstName = input.FirstName
		}
		if input.LastName != "" {
			user.LastName = input.LastName
		}
		if input.Email != "" {
			user.Email = strings.ToLower(input.Email)
		}
		if input.Password != "" {
			hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
			if err != nil {
				return nil, fmt.Errorf("hash password: %w", err)
			}
			user.Password = string(hashed)
		}
	}

	if err := s.repo.UpdateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteUser removes a user. Only the user themselves or an admin may
// delete, and accounts holding the admin role cannot be deleted by anyone.
// Deleting a user cascades to their documents.
func (s *Service) DeleteUser(ctx context.Context, requester domain.Requester, targetID string) error {
	user, err := s.repo.GetUserByID(ctx, targetID)
	if err != nil {
		return err
	}

	if requester.UserID != user.ID && !requester.IsAdmin() {
		return ErrNotOwner
	}

	role, err := s.repo.GetRoleByID(ctx, user.RoleID)
	if err != nil {
		return fmt.Errorf("resolve role: %w", err)
	}
	if role.IsAdmin() {
		return ErrAdminProtected
	}

	return s.repo.DeleteUser(ctx, user.ID)
}

// CreateRole creates a role with a unique, non-empty title.
func (s *Service) CreateRole(ctx context.Context, title string) (*domain.Role, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrEmptyRoleTitle
	}

	role := &domain.Role{
		ID:    uuid.NewString(),
		Title: title,
	}
	if err := s.repo.CreateRole(ctx, role); err != nil {
		return nil, err
	}
	return role, nil
}

// ListRoles returns all roles.
func (s *Service) ListRoles(ctx context.Context) ([]domain.Role, error) {
	return s.repo.ListRoles(ctx)
}
