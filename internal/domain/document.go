package domain

import "time"

// Access is a document's visibility tier.
type Access string

// Visibility tiers. Private documents are visible to the owner and admins
// only; public and role documents are visible to any authenticated user.
const (
	AccessPrivate Access = "private"
	AccessPublic  Access = "public"
	AccessRole    Access = "role"
)

// IsValid checks if the access tier is valid.
func (a Access) IsValid() bool {
	switch a {
	case AccessPrivate, AccessPublic, AccessRole:
		return true
	}
	return false
}

// SharedAccessTiers returns the tiers visible to non-owners.
func SharedAccessTiers() []Access {
	return []Access{AccessPublic, AccessRole}
}

// Document represents a stored document. OwnerID references the creating
// user and is immutable after creation.
type Document struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Access    Access    `json:"access"`
	OwnerID   string    `json:"ownerId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
