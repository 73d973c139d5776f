package domain

import "time"

// Role titles with reserved meaning. Both are seeded by migration; "admin"
// carries elevated privileges, "regular" is assigned on signup.
const (
	RoleAdmin   = "admin"
	RoleRegular = "regular"
)

// Session marker states stored on the user row. A user who has never logged
// in accepts any valid token. After login only the stored token is accepted.
// After logout nothing is accepted until the next login.
const (
	SessionRegistered = "registered"
	SessionRevoked    = "revoked"
)

// User represents an account in the directory.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	Email        string    `json:"email"`
	Password     string    `json:"-"`
	SessionToken string    `json:"-"`
	RoleID       string    `json:"roleId"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// AcceptsToken reports whether the stored session marker allows the
// presented token.
func (u *User) AcceptsToken(token string) bool {
	return u.SessionToken == SessionRegistered || u.SessionToken == token
}

// Role is a named privilege level referenced by users.
type Role struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// IsAdmin reports whether the role carries elevated privileges.
func (r *Role) IsAdmin() bool {
	return r.Title == RoleAdmin
}

// Requester identifies the authenticated caller of an operation.
// Role holds the role title resolved from the user row, not the token,
// so a role change takes effect on the next request.
type Requester struct {
	UserID string
	Role   string
}

// IsAdmin reports whether the requester holds the admin role.
func (r Requester) IsAdmin() bool {
	return r.Role == RoleAdmin
}
