package identity

import "errors"

// Service errors.
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrRoleNotFound       = errors.New("role not found")
	ErrUsernameExists     = errors.New("username already exists")
	ErrEmailExists        = errors.New("email already exists")
	ErrRoleTitleExists    = errors.New("role title already exists")
	ErrDuplicateUser      = errors.New("user field already exists")
	ErrEmptyRoleTitle     = errors.New("role title cannot be empty")
	ErrInvalidCredentials = errors.New("incorrect username and password combination")
	ErrNotOwner           = errors.New("requester is neither the user nor an admin")
	ErrAdminProtected     = errors.New("admin accounts cannot be deleted")
	ErrAdminSignup        = errors.New("cannot sign up as an admin")
)
