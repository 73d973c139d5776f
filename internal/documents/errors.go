package documents

import "errors"

// Service errors.
var (
	ErrDocumentNotFound = errors.New("document not found")
	ErrNotOwner         = errors.New("requester is neither the owner nor an admin")
	ErrOwnerImmutable   = errors.New("document owner cannot be changed")
	ErrPrivateDocument  = errors.New("document is private")
	ErrInvalidAccess    = errors.New("invalid access level")
)
