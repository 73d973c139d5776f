// Package postgres provides the PostgreSQL implementation of the identity
// repository.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/andela-jare/CP3-DMS/internal/domain"
	"github.com/andela-jare/CP3-DMS/internal/identity"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

// Repository implements the identity.Repository interface using PostgreSQL.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const userColumns = `id, username, first_name, last_name, email, password, session_token, role_id, created_at, updated_at`

func scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.FirstName,
		&user.LastName,
		&user.Email,
		&user.Password,
		&user.SessionToken,
		&user.RoleID,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, identity.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// CreateUser inserts a new user.
func (r *Repository) CreateUser(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (id, username, first_name, last_name, email, password, session_token, role_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query,
		user.ID,
		user.Username,
		user.FirstName,
		user.LastName,
		user.Email,
		user.Password,
		user.SessionToken,
		user.RoleID,
	).Scan(&user.CreatedAt, &user.UpdatedAt)

	if err != nil {
		if uniqueErr := mapUserUniqueViolation(err); uniqueErr != nil {
			return uniqueErr
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// GetUserByID retrieves a user by id.
func (r *Repository) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	user, err := scanUser(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, identity.ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("get user by id: %w", err)
	}
	return user, nil
}

// GetUserByUsername retrieves a user by username.
func (r *Repository) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	user, err := scanUser(r.db.QueryRow(ctx, query, username))
	if err != nil {
		if errors.Is(err, identity.ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("get user by username: %w", err)
	}
	return user, nil
}

// ListUsers retrieves a page of users ordered by creation time and the
// total user count.
func (r *Repository) ListUsers(ctx context.Context, limit, offset int) ([]domain.User, int, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := make([]domain.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, *user)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate users: %w", err)
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	return users, total, nil
}

// UpdateUser updates an existing user.
func (r *Repository) UpdateUser(ctx context.Context, user *domain.User) error {
	query := `
		UPDATE users
		SET username = $2, first_name = $3, last_name = $4, email = $5, password = $6, role_id = $7, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	err := r.db.QueryRow(ctx, query,
		user.ID,
		user.Username,
		user.FirstName,
		user.LastName,
		user.Email,
		user.Password,
		user.RoleID,
	).Scan(&user.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return identity.ErrUserNotFound
		}
		if uniqueErr := mapUserUniqueViolation(err); uniqueErr != nil {
			return uniqueErr
		}
		return fmt.Errorf("update user: %w", err)
	}
	return nil
}

// DeleteUser deletes a user. Documents owned by the user are removed by
// the schema's ON DELETE CASCADE.
func (r *Repository) DeleteUser(ctx context.Context, id string) error {
	result, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if result.RowsAffected() == 0 {
		return identity.ErrUserNotFound
	}
	return nil
}

// SetSessionToken stores the user's session marker.
func (r *Repository) SetSessionToken(ctx context.Context, userID, token string) error {
	result, err := r.db.Exec(ctx,
		`UPDATE users SET session_token = $2, updated_at = NOW() WHERE id = $1`,
		userID, token,
	)
	if err != nil {
		return fmt.Errorf("set session token: %w", err)
	}
	if result.RowsAffected() == 0 {
		return identity.ErrUserNotFound
	}
	return nil
}

// CreateRole inserts a new role.
func (r *Repository) CreateRole(ctx context.Context, role *domain.Role) error {
	query := `
		INSERT INTO roles (id, title)
		VALUES ($1, $2)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query, role.ID, role.Title).
		Scan(&role.CreatedAt, &role.UpdatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return identity.ErrRoleTitleExists
		}
		return fmt.Errorf("create role: %w", err)
	}
	return nil
}

// GetRoleByID retrieves a role by id.
func (r *Repository) GetRoleByID(ctx context.Context, id string) (*domain.Role, error) {
	return r.getRole(ctx, `SELECT id, title, created_at, updated_at FROM roles WHERE id = $1`, id)
}

// GetRoleByTitle retrieves a role by its unique title.
func (r *Repository) GetRoleByTitle(ctx context.Context, title string) (*domain.Role, error) {
	return r.getRole(ctx, `SELECT id, title, created_at, updated_at FROM roles WHERE title = $1`, title)
}

func (r *Repository) getRole(ctx context.Context, query string, arg interface{}) (*domain.Role, error) {
	var role domain.Role
	err := r.db.QueryRow(ctx, query, arg).
		Scan(&role.ID, &role.Title, &role.CreatedAt, &role.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, identity.ErrRoleNotFound
		}
		return nil, fmt.Errorf("get role: %w", err)
	}
	return &role, nil
}

// ListRoles retrieves all roles ordered by title.
func (r *Repository) ListRoles(ctx context.Context) ([]domain.Role, error) {
	rows, err := r.db.Query(ctx, `SELECT id, title, created_at, updated_at FROM roles ORDER BY title`)
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	defer rows.Close()

	roles := make([]domain.Role, 0)
	for rows.Next() {
		var role domain.Role
		if err := rows.Scan(&role.ID, &role.Title, &role.CreatedAt, &role.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan role: %w", err)
		}
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate roles: %w", err)
	}
	return roles, nil
}

// mapUserUniqueViolation translates unique constraint violations on the
// users table into domain errors. Returns nil for other errors.
func mapUserUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return nil
	}
	switch pgErr.ConstraintName {
	case "users_username_key":
		return identity.ErrUsernameExists
	case "users_email_key":
		return identity.ErrEmailExists
	}
	// Unrecognized constraint names still mean the caller sent a
	// duplicate value, not that the server failed.
	return identity.ErrDuplicateUser
}
