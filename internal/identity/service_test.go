package identity

import (
	"context"
	"errors"
	"testing"

	"github.com/andela-jare/CP3-DMS/internal/domain"
	"github.com/andela-jare/CP3-DMS/internal/pkg/httputil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// mockRepository implements Repository for testing.
type mockRepository struct {
	users         map[string]*domain.User
	roles         map[string]*domain.Role
	createUserErr error
	deletedUsers  []string
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		users: make(map[string]*domain.User),
		roles: map[string]*domain.Role{
			"role-admin":   {ID: "role-admin", Title: domain.RoleAdmin},
			"role-regular": {ID: "role-regular", Title: domain.RoleRegular},
		},
	}
}

func (m *mockRepository) addUser(user *domain.User) *domain.User {
	m.users[user.ID] = user
	return user
}

func (m *mockRepository) CreateUser(_ context.Context, user *domain.User) error {
	if m.createUserErr != nil {
		return m.createUserErr
	}
	for _, u := range m.users {
		if u.Username == user.Username {
			return ErrUsernameExists
		}
		if u.Email == user.Email {
			return ErrEmailExists
		}
	}
	m.users[user.ID] = user
	return nil
}

func (m *mockRepository) GetUserByID(_ context.Context, id string) (*domain.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, ErrUserNotFound
}

func (m *mockRepository) GetUserByUsername(_ context.Context, username string) (*domain.User, error) {
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, ErrUserNotFound
}

func (m *mockRepository) ListUsers(_ context.Context, limit, offset int) ([]domain.User, int, error) {
	all := make([]domain.User, 0, len(m.users))
	for _, u := range m.users {
		all = append(all, *u)
	}
	return all, len(all), nil
}

func (m *mockRepository) UpdateUser(_ context.Context, user *domain.User) error {
	if _, ok := m.users[user.ID]; !ok {
		return ErrUserNotFound
	}
	m.users[user.ID] = user
	return nil
}

func (m *mockRepository) DeleteUser(_ context.Context, id string) error {
	if _, ok := m.users[id]; !ok {
		return ErrUserNotFound
	}
	delete(m.users, id)
	m.deletedUsers = append(m.deletedUsers, id)
	return nil
}

func (m *mockRepository) SetSessionToken(_ context.Context, userID, token string) error {
	u, ok := m.users[userID]
	if !ok {
		return ErrUserNotFound
	}
	u.SessionToken = token
	return nil
}

func (m *mockRepository) CreateRole(_ context.Context, role *domain.Role) error {
	for _, r := range m.roles {
		if r.Title == role.Title {
			return ErrRoleTitleExists
		}
	}
	m.roles[role.ID] = role
	return nil
}

func (m *mockRepository) GetRoleByID(_ context.Context, id string) (*domain.Role, error) {
	if r, ok := m.roles[id]; ok {
		return r, nil
	}
	return nil, ErrRoleNotFound
}

func (m *mockRepository) GetRoleByTitle(_ context.Context, title string) (*domain.Role, error) {
	for _, r := range m.roles {
		if r.Title == title {
			return r, nil
		}
	}
	return nil, ErrRoleNotFound
}

func (m *mockRepository) ListRoles(_ context.Context) ([]domain.Role, error) {
	all := make([]domain.Role, 0, len(m.roles))
	for _, r := range m.roles {
		all = append(all, *r)
	}
	return all, nil
}

// mockAuthenticator implements Authenticator for testing. Issued tokens
// encode nothing; Verify returns the configured user.
type mockAuthenticator struct {
	issued   string
	verifyID string
	verifyOK bool
}

func (m *mockAuthenticator) Issue(userID, role string) (string, error) {
	if m.issued != "" {
		return m.issued, nil
	}
	return "token-for-" + userID, nil
}

func (m *mockAuthenticator) Verify(token string) (string, string, error) {
	if !m.verifyOK {
		return "", "", errors.New("invalid token")
	}
	return m.verifyID, "", nil
}

func hashPassword(t *testing.T, password string) string {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hashed)
}

func TestRegister_DefaultsToRegularRole(t *testing.T) {
	// Arrange
	repo := newMockRepository()
	service := NewService(repo, &mockAuthenticator{})

	// Act
	user, token, err := service.Register(context.Background(), RegisterInput{
		Username:  "walter",
		FirstName: "Walter",
		LastName:  "White",
		Email:     "Walter@Example.com",
		Password:  "password123",
	})

	// Assert
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, "role-regular", user.RoleID)
	assert.Equal(t, "walter@example.com", user.Email, "email should be lowercased")
	assert.Equal(t, domain.SessionRegistered, user.SessionToken)
	assert.NotEqual(t, "password123", user.Password, "password must be hashed")
}

func TestRegister_RejectsAdminRole(t *testing.T) {
	// Arrange
	repo := newMockRepository()
	service := NewService(repo, &mockAuthenticator{})

	// Act
	user, _, err := service.Register(context.Background(), RegisterInput{
		Username: "mallory",
		Email:    "mallory@example.com",
		Password: "password123",
		RoleID:   "role-admin",
	})

	// Assert
	assert.Nil(t, user)
	assert.ErrorIs(t, err, ErrAdminSignup)
}

func TestRegister_UnknownRole(t *testing.T) {
	repo := newMockRepository()
	service := NewService(repo, &mockAuthenticator{})

	user, _, err := service.Register(context.Background(), RegisterInput{
		Username: "bob",
		Email:    "bob@example.com",
		Password: "password123",
		RoleID:   "no-such-role",
	})

	assert.Nil(t, user)
	assert.ErrorIs(t, err, ErrRoleNotFound)
}

func TestRegister_UsernameAlreadyExists(t *testing.T) {
	repo := newMockRepository()
	repo.addUser(&domain.User{ID: "u1", Username: "taken", Email: "taken@example.com"})
	service := NewService(repo, &mockAuthenticator{})

	user, _, err := service.Register(context.Background(), RegisterInput{
		Username: "taken",
		Email:    "new@example.com",
		Password: "password123",
	})

	assert.Nil(t, user)
	assert.ErrorIs(t, err, ErrUsernameExists)
}

func TestLogin_Succeeds(t *testing.T) {
	// Arrange
	repo := newMockRepository()
	repo.addUser(&domain.User{
		ID:       "u1",
		Username: "walter",
		Password: hashPassword(t, "password123"),
		RoleID:   "role-regular",
	})
	service := NewService(repo, &mockAuthenticator{issued: "session-token"})

	// Act
	user, token, err := service.Login(context.Background(), "walter", "password123")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "session-token", token)
	assert.Equal(t, "session-token", repo.users["u1"].SessionToken,
		"login should store the issued token as the active session")
	assert.Equal(t, "u1", user.ID)
}

func TestLogin_WrongPassword(t *testing.T) {
	repo := newMockRepository()
	repo.addUser(&domain.User{
		ID:       "u1",
		Username: "walter",
		Password: hashPassword(t, "password123"),
		RoleID:   "role-regular",
	})
	service := NewService(repo, &mockAuthenticator{})

	_, _, err := service.Login(context.Background(), "walter", "wrong")

	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_UnknownUser(t *testing.T) {
	repo := newMockRepository()
	service := NewService(repo, &mockAuthenticator{})

	_, _, err := service.Login(context.Background(), "ghost", "password123")

	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestLogout_RevokesSession(t *testing.T) {
	repo := newMockRepository()
	repo.addUser(&domain.User{ID: "u1", SessionToken: "some-token", RoleID: "role-regular"})
	service := NewService(repo, &mockAuthenticator{})

	err := service.Logout(context.Background(), "u1")

	require.NoError(t, err)
	assert.Equal(t, domain.SessionRevoked, repo.users["u1"].SessionToken)
}

func TestAuthenticateToken_RegisteredMarkerAcceptsAnyValidToken(t *testing.T) {
	// Arrange — a fresh signup has the registered marker, not a stored token
	repo := newMockRepository()
	repo.addUser(&domain.User{ID: "u1", SessionToken: domain.SessionRegistered, RoleID: "role-regular"})
	service := NewService(repo, &mockAuthenticator{verifyOK: true, verifyID: "u1"})

	// Act
	requester, err := service.AuthenticateToken(context.Background(), "any-valid-token")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "u1", requester.UserID)
	assert.Equal(t, domain.RoleRegular, requester.Role)
}

func TestAuthenticateToken_StoredTokenMustMatch(t *testing.T) {
	repo := newMockRepository()
	repo.addUser(&domain.User{ID: "u1", SessionToken: "current-session", RoleID: "role-regular"})
	service := NewService(repo, &mockAuthenticator{verifyOK: true, verifyID: "u1"})

	_, err := service.AuthenticateToken(context.Background(), "stale-session")

	assert.ErrorIs(t, err, httputil.ErrSessionInvalidated)
}

func TestAuthenticateToken_RevokedSession(t *testing.T) {
	repo := newMockRepository()
	repo.addUser(&domain.User{ID: "u1", SessionToken: domain.SessionRevoked, RoleID: "role-regular"})
	service := NewService(repo, &mockAuthenticator{verifyOK: true, verifyID: "u1"})

	_, err := service.AuthenticateToken(context.Background(), "previously-issued")

	assert.ErrorIs(t, err, httputil.ErrSessionInvalidated)
}

func TestAuthenticateToken_BadToken(t *testing.T) {
	repo := newMockRepository()
	service := NewService(repo, &mockAuthenticator{verifyOK: false})

	_, err := service.AuthenticateToken(context.Background(), "garbage")

	assert.ErrorIs(t, err, httputil.ErrInvalidToken)
}

func TestAuthenticateToken_DeletedUser(t *testing.T) {
	repo := newMockRepository()
	service := NewService(repo, &mockAuthenticator{verifyOK: true, verifyID: "gone"})

	_, err := service.AuthenticateToken(context.Background(), "token-for-deleted-user")

	assert.ErrorIs(t, err, httputil.ErrInvalidToken)
}

func TestAuthenticateToken_RoleReadFromUserRow(t *testing.T) {
	// Arrange — requester's effective role follows the stored row, so a
	// reassignment applies to tokens issued before it
	repo := newMockRepository()
	repo.addUser(&domain.User{ID: "u1", SessionToken: domain.SessionRegistered, RoleID: "role-admin"})
	service := NewService(repo, &mockAuthenticator{verifyOK: true, verifyID: "u1"})

	requester, err := service.AuthenticateToken(context.Background(), "valid")

	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, requester.Role)
	assert.True(t, requester.IsAdmin())
}

func TestUpdateUser_OwnerUpdatesOwnFields(t *testing.T) {
	// Arrange
	repo := newMockRepository()
	repo.addUser(&domain.User{ID: "u1", Username: "old", FirstName: "Old", RoleID: "role-regular"})
	service := NewService(repo, &mockAuthenticator{})
	requester := domain.Requester{UserID: "u1", Role: domain.RoleRegular}

	// Act
	user, err := service.UpdateUser(context.Background(), requester, "u1", UpdateUserInput{
		Username:  "new",
		FirstName: "New",
	})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "new", user.Username)
	assert.Equal(t, "New", user.FirstName)
	assert.Equal(t, "role-regular", user.RoleID, "owner updates never change the role")
}

func TestUpdateUser_OwnerCannotChangeOwnRole(t *testing.T) {
	repo := newMockRepository()
	repo.addUser(&domain.User{ID: "u1", RoleID: "role-regular"})
	service := NewService(repo, &mockAuthenticator{})
	requester := domain.Requester{UserID: "u1", Role: domain.RoleRegular}

	user, err := service.UpdateUser(context.Background(), requester, "u1", UpdateUserInput{
		RoleID: "role-admin",
	})

	require.NoError(t, err)
	assert.Equal(t, "role-regular", user.RoleID)
}

func TestUpdateUser_AdminAppliesRoleChangeOnly(t *testing.T) {
	// Arrange
	repo := newMockRepository()
	repo.addUser(&domain.User{ID: "u2", Username: "target", FirstName: "Target", RoleID: "role-regular"})
	service := NewService(repo, &mockAuthenticator{})
	admin := domain.Requester{UserID: "u1", Role: domain.RoleAdmin}

	// Act — the admin submits profile fields alongside the role
	user, err := service.UpdateUser(context.Background(), admin, "u2", UpdateUserInput{
		Username:  "hijacked",
		FirstName: "Hijacked",
		RoleID:    "role-admin",
	})

	// Assert — only the role change lands
	require.NoError(t, err)
	assert.Equal(t, "role-admin", user.RoleID)
	assert.Equal(t, "target", user.Username)
	assert.Equal(t, "Target", user.FirstName)
}

func TestUpdateUser_NonOwnerForbidden(t *testing.T) {
	repo := newMockRepository()
	repo.addUser(&domain.User{ID: "u2", RoleID: "role-regular"})
	service := NewService(repo, &mockAuthenticator{})
	requester := domain.Requester{UserID: "u1", Role: domain.RoleRegular}

	user, err := service.UpdateUser(context.Background(), requester, "u2", UpdateUserInput{
		Username: "hacked",
	})

	assert.Nil(t, user)
	assert.ErrorIs(t, err, ErrNotOwner)
}

func TestUpdateUser_RehashesPassword(t *testing.T) {
	repo := newMockRepository()
	repo.addUser(&domain.User{ID: "u1", Password: hashPassword(t, "old-password"), RoleID: "role-regular"})
	service := NewService(repo, &mockAuthenticator{})
	requester := domain.Requester{UserID: "u1", Role: domain.RoleRegular}

	user, err := service.UpdateUser(context.Background(), requester, "u1", UpdateUserInput{
		Password: "new-password",
	})

	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("new-password")))
}

func TestDeleteUser_OwnerDeletesSelf(t *testing.T) {
	repo := newMockRepository()
	repo.addUser(&domain.User{ID: "u1", RoleID: "role-regular"})
	service := NewService(repo, &mockAuthenticator{})
	requester := domain.Requester{UserID: "u1", Role: domain.RoleRegular}

	err := service.DeleteUser(context.Background(), requester, "u1")

	require.NoError(t, err)
	assert.Contains(t, repo.deletedUsers, "u1")
}

func TestDeleteUser_AdminAccountsUndeletable(t *testing.T) {
	// Arrange — even an admin cannot delete another admin
	repo := newMockRepository()
	repo.addUser(&domain.User{ID: "u2", RoleID: "role-admin"})
	service := NewService(repo, &mockAuthenticator{})
	admin := domain.Requester{UserID: "u1", Role: domain.RoleAdmin}

	// Act
	err := service.DeleteUser(context.Background(), admin, "u2")

	// Assert
	assert.ErrorIs(t, err, ErrAdminProtected)
	assert.Empty(t, repo.deletedUsers)
}

func TestDeleteUser_NonOwnerForbidden(t *testing.T) {
	repo := newMockRepository()
	repo.addUser(&domain.User{ID: "u2", RoleID: "role-regular"})
	service := NewService(repo, &mockAuthenticator{})
	requester := domain.Requester{UserID: "u1", Role: domain.RoleRegular}

	err := service.DeleteUser(context.Background(), requester, "u2")

	assert.ErrorIs(t, err, ErrNotOwner)
}

func TestCreateRole_TrimsTitle(t *testing.T) {
	repo := newMockRepository()
	service := NewService(repo, &mockAuthenticator{})

	role, err := service.CreateRole(context.Background(), "  editor  ")

	require.NoError(t, err)
	assert.Equal(t, "editor", role.Title)
}

func TestCreateRole_EmptyTitle(t *testing.T) {
	repo := newMockRepository()
	service := NewService(repo, &mockAuthenticator{})

	role, err := service.CreateRole(context.Background(), "   ")

	assert.Nil(t, role)
	assert.ErrorIs(t, err, ErrEmptyRoleTitle)
}

func TestCreateRole_DuplicateTitle(t *testing.T) {
	repo := newMockRepository()
	service := NewService(repo, &mockAuthenticator{})

	role, err := service.CreateRole(context.Background(), domain.RoleAdmin)

	assert.Nil(t, role)
	assert.ErrorIs(t, err, ErrRoleTitleExists)
}
